// Package opengl implements the rgpu.Driver/rgpu.Backend pair against
// desktop OpenGL 3.3 core, using go-gl/gl for bindings (spec §4.4
// "Backend vtable"). It is the default, and only fully implemented,
// backend (spec §1: Vulkan is a reserved placeholder).
package opengl

import (
	"fmt"
	"sync"
	"unsafe"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/internal/rlog"
	"github.com/vitrailgpu/rgpu/rgpu"
)

// Driver is the rgpu.Driver for desktop OpenGL 3.3 core. The zero value
// is ready to use.
type Driver struct{}

func (Driver) Name() string { return "opengl" }

// IsThreadSafe is always false: GL contexts are current on exactly one
// OS thread at a time (spec §4.4, §5 "serialized backend, the default
// for GL").
func (Driver) IsThreadSafe() bool { return false }

// Open initializes GL function pointers against loader (glfw's
// glfw.GetProcAddress, passed by the caller as a
// func(string) unsafe.Pointer) and returns a ready Backend (spec §6
// "backend_init_data"). A nil loader makes go-gl resolve the entry
// points itself via gl.Init.
func (Driver) Open(flags rgpu.Flags, loader interface{}) (rgpu.Backend, error) {
	if loader == nil {
		if err := gl.Init(); err != nil {
			return nil, fmt.Errorf("opengl: init: %w", err)
		}
	} else {
		getProcAddr, ok := loader.(func(string) unsafe.Pointer)
		if !ok || getProcAddr == nil {
			return nil, fmt.Errorf("opengl: loader must be nil or a func(string) unsafe.Pointer (e.g. glfw.GetProcAddress)")
		}
		if err := gl.InitWithProcAddrFunc(getProcAddr); err != nil {
			return nil, fmt.Errorf("opengl: init: %w", err)
		}
	}

	b := &Backend{
		flags:        flags,
		shaderExtCol: make(map[*rgpu.Shader]*shaderExt),
		bufferExtCol: make(map[*rgpu.Buffer]*bufferExt),
		textureExtCol: make(map[*rgpu.Texture]*textureExt),
	}
	rlog.Debugf("opengl: backend opened, vendor=%s renderer=%s version=%s",
		b.Info("vendor"), b.Info("renderer"), b.Info("version"))
	return b, nil
}

// Backend is the per-Gpu OpenGL extension state (spec §4.4 "the backend
// extends each object with its own trailing state"). A Backend is bound
// to exactly one GL context and must only be driven from the goroutine
// that currently holds that context current.
type Backend struct {
	flags rgpu.Flags

	mu sync.Mutex

	claimedHint bool // set by StealThisThread, cleared by ReleaseThisThread; not read elsewhere

	// Trailing extension state, keyed by frontend object identity. A real
	// C backend stores this inline in a shared header; Go's type system
	// has no portable "extend this struct" trick across package
	// boundaries, so a side table keyed by pointer identity is this
	// backend's equivalent (see DESIGN.md).
	shaderExtCol  map[*rgpu.Shader]*shaderExt
	bufferExtCol  map[*rgpu.Buffer]*bufferExt
	textureExtCol map[*rgpu.Texture]*textureExt

	framebuffers []uint32 // framebuffer_stack of spec §4.2 step 3

	errTags []string // drained synchronous GL error queue, spec §4.5
}

// Info answers gpu_get_info (spec §6).
func (b *Backend) Info(key string) string {
	switch key {
	case "vendor":
		return glGetString(gl.VENDOR)
	case "renderer":
		return glGetString(gl.RENDERER)
	case "version":
		return glGetString(gl.VERSION)
	case "shading language version":
		return glGetString(gl.SHADING_LANGUAGE_VERSION)
	default:
		return ""
	}
}

func glGetString(name uint32) string {
	s := gl.GoStr(gl.GetString(name))
	return s
}

// StealThisThread / ReleaseThisThread are no-ops beyond bookkeeping: the
// GL context itself is made current by the caller (typically via glfw)
// before NewGpu/StealThisThread; this backend only records whether it
// believes itself claimed in claimedHint (spec §5 "claim").
func (b *Backend) StealThisThread() {
	b.mu.Lock()
	b.claimedHint = true
	b.mu.Unlock()
}

func (b *Backend) ReleaseThisThread() {
	b.mu.Lock()
	b.claimedHint = false
	b.mu.Unlock()
}

// drainGLErrors pulls every pending GL error into a symbolic tag slice
// (spec §4.5 "a drained queue of GL error tags").
func drainGLErrors() []string {
	var tags []string
	for {
		e := gl.GetError()
		if e == gl.NO_ERROR {
			break
		}
		tags = append(tags, glErrorTag(e))
	}
	return tags
}

func glErrorTag(e uint32) string {
	switch e {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("GL_ERROR_0x%X", e)
	}
}

// GrowFramebufferStack ensures at least n framebuffer object names exist
// (spec §4.2 step 3).
func (b *Backend) GrowFramebufferStack(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.framebuffers) < n {
		var fb uint32
		gl.GenFramebuffers(1, &fb)
		if fb == 0 {
			return fmt.Errorf("glGenFramebuffers returned 0: %v", drainGLErrors())
		}
		b.framebuffers = append(b.framebuffers, fb)
	}
	return nil
}

// Destroy frees one deferred driver handle (spec §5 "actually freed at
// the next flush").
func (b *Backend) Destroy(entry rgpu.DestroyEntry) {
	h := entry.Handle
	switch entry.Kind {
	case rgpu.DestroyProgram:
		gl.DeleteProgram(h)
	case rgpu.DestroyBuffer:
		gl.DeleteBuffers(1, &h)
	case rgpu.DestroyVertexArray:
		gl.DeleteVertexArrays(1, &h)
	case rgpu.DestroyTexture:
		gl.DeleteTextures(1, &h)
	case rgpu.DestroyFramebuffer:
		gl.DeleteFramebuffers(1, &h)
	}
}
