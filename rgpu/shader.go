package rgpu

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/vitrailgpu/rgpu/internal/rlog"
)

// Shader owns an init descriptor (vertex + fragment source) plus
// lazily-populated backend state, reflection tables for which live in
// the owning Backend (spec §3 Shader).
type Shader struct {
	gpu  *Gpu
	refs int32

	VertexSourceCode   string
	FragmentSourceCode string

	mu      sync.Mutex
	dirty   bool // forces EnsureShader to recompile (hot reload)
	backend interface{}

	watcher *fsnotify.Watcher
}

// ShaderNewForCode constructs a Shader init descriptor from in-memory
// GLSL sources (spec §6 shader_new_for_code). No driver calls are made
// until the shader is first used in a compiled Commands (spec §4.2
// "Ensure shader").
func ShaderNewForCode(gpu *Gpu, vertexSrc, fragmentSrc string) *Shader {
	if gpu == nil {
		critical("shader_new_for_code", "nil gpu")
		return nil
	}
	gpu.Ref()
	return &Shader{
		gpu:                gpu,
		refs:               1,
		VertexSourceCode:   vertexSrc,
		FragmentSourceCode: fragmentSrc,
	}
}

// ShaderNewForFiles reads vsPath and fsPath into a Shader's init
// descriptor (SPEC_FULL.md supplemented feature). When gpu carries
// UseDebugLayers, the two files are watched with fsnotify; a write to
// either marks the shader dirty so the next EnsureShader recompiles it.
func ShaderNewForFiles(gpu *Gpu, vsPath, fsPath string) (*Shader, error) {
	vs, err := readFile(vsPath)
	if err != nil {
		return nil, newError(FailedShaderGen, nil, "read vertex source %s: %v", vsPath, err)
	}
	fs, err := readFile(fsPath)
	if err != nil {
		return nil, newError(FailedShaderGen, nil, "read fragment source %s: %v", fsPath, err)
	}
	sh := ShaderNewForCode(gpu, vs, fs)
	if sh == nil {
		return nil, newError(FailedShaderGen, nil, "shader construction failed")
	}
	if gpu.flags&UseDebugLayers != 0 {
		if w, err := fsnotify.NewWatcher(); err == nil {
			_ = w.Add(vsPath)
			_ = w.Add(fsPath)
			sh.watcher = w
			go sh.watchLoop(vsPath, fsPath)
		} else {
			rlog.Warnf("shader hot-reload: watcher unavailable for %s: %v", vsPath, err)
		}
	}
	return sh, nil
}

func (sh *Shader) watchLoop(vsPath, fsPath string) {
	for event := range sh.watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		vs, errV := readFile(vsPath)
		fs, errF := readFile(fsPath)
		if errV != nil || errF != nil {
			continue
		}
		sh.mu.Lock()
		sh.VertexSourceCode = vs
		sh.FragmentSourceCode = fs
		sh.dirty = true
		sh.mu.Unlock()
		rlog.Infof("shader hot-reload: %s / %s queued for recompile", vsPath, fsPath)
	}
}

// ref/unref implement the reference-counting discipline of spec §5.
func (sh *Shader) ref() { atomic.AddInt32(&sh.refs, 1) }

func (sh *Shader) unref() {
	if atomic.AddInt32(&sh.refs, -1) != 0 {
		return
	}
	for _, e := range sh.gpu.backend.ReleaseShader(sh) {
		sh.gpu.pushDestroy(e)
	}
	if sh.watcher != nil {
		_ = sh.watcher.Close()
	}
	sh.gpu.Unref()
}

// Unref is the exported form of the ref-count decrement (spec §6
// shader_unref).
func (sh *Shader) Unref() { sh.unref() }

// Ref is the exported form of the ref-count increment (spec §6
// shader_ref).
func (sh *Shader) Ref() *Shader {
	sh.ref()
	return sh
}

// Backend returns the opaque backend-owned extension state, or nil if
// the shader has never been ensured. Exposed so backend implementations
// can stash/retrieve state without the frontend knowing its shape.
func (sh *Shader) Backend() interface{} {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.backend
}

// SetBackend stores the backend's opaque extension state.
func (sh *Shader) SetBackend(v interface{}) {
	sh.mu.Lock()
	sh.backend = v
	sh.mu.Unlock()
}

// Dirty reports whether the shader's cached backend program should be
// recompiled (either never compiled, or hot-reload marked it dirty).
func (sh *Shader) Dirty() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.backend == nil || sh.dirty
}

// ClearDirty is called by EnsureShader after a successful (re)compile.
func (sh *Shader) ClearDirty() {
	sh.mu.Lock()
	sh.dirty = false
	sh.mu.Unlock()
}
