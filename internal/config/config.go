// Package config loads optional Gpu session settings from a TOML file,
// the same way the teacher's assets/loaders/shader.go loads a
// .shadercfg file with pelletier/go-toml/v2 — generalized here from
// shader config to session config (see SPEC_FULL.md, "Configuration").
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Session mirrors the subset of Gpu creation flags (spec §6) that are
// reasonable to externalize: debug layers, thread-safety opt-out, and
// the error-handling policy.
type Session struct {
	UseDebugLayers bool `toml:"use_debug_layers"`
	NoThreadSafety bool `toml:"no_thread_safety"`
	ExitOnError    bool `toml:"exit_on_error"`
	LogErrors      bool `toml:"log_errors"`

	// ShaderHotReload is parsed from the file but has no Gpu flag bit:
	// Flags ignores it. The fsnotify watch of shaders constructed via
	// ShaderNewForFiles follows use_debug_layers, not this field.
	ShaderHotReload bool `toml:"shader_hot_reload"`
}

// Flags composes the session settings into Gpu creation bits. base is
// ORed in first so callers can force bits (e.g. BACKEND_OPENGL) that
// have no TOML counterpart.
func (s Session) Flags(base uint32) uint32 {
	f := base
	if s.UseDebugLayers {
		f |= useDebugLayers
	}
	if s.NoThreadSafety {
		f |= noThreadSafety
	}
	if s.ExitOnError {
		f |= exitOnError
	}
	if s.LogErrors {
		f |= logErrors
	}
	return f
}

// Bit positions mirror rgpu.Flags; duplicated here (rather than
// importing rgpu) because config must stay leaf-level and dependency-free
// for loaders run before a Gpu exists.
const (
	useDebugLayers uint32 = 1 << 2
	noThreadSafety uint32 = 1 << 3
	exitOnError    uint32 = 1 << 5
	logErrors      uint32 = 1 << 6
)

// Load reads and parses a TOML session file. A missing file is not an
// error: it returns the zero Session so callers can layer programmatic
// flags on top unconditionally.
func Load(path string) (Session, error) {
	var s Session
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}
