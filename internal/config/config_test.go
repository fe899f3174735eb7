package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroSession(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load on a missing file should not error, got %v", err)
	}
	if s != (Session{}) {
		t.Fatalf("Load on a missing file should return the zero Session, got %+v", s)
	}
}

func TestLoadParsesSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rgpu.toml")
	body := `
use_debug_layers = true
no_thread_safety = false
exit_on_error = true
log_errors = true
shader_hot_reload = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.UseDebugLayers || s.NoThreadSafety || !s.ExitOnError || !s.LogErrors || !s.ShaderHotReload {
		t.Fatalf("parsed session does not match fixture: %+v", s)
	}
}

func TestFlagsComposesOverBase(t *testing.T) {
	s := Session{UseDebugLayers: true, ExitOnError: true}
	const base = uint32(1) // stands in for rgpu.BackendOpenGL
	got := s.Flags(base)

	if got&base == 0 {
		t.Fatalf("Flags must preserve the base bit")
	}
	if got&uint32(1<<2) == 0 {
		t.Fatalf("Flags must set the debug-layers bit")
	}
	if got&uint32(1<<3) != 0 {
		t.Fatalf("Flags must not set the no-thread-safety bit when unset")
	}
	if got&uint32(1<<5) == 0 {
		t.Fatalf("Flags must set the exit-on-error bit")
	}
}
