package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

// bufferExt is the GL-side trailing state for a Buffer (spec §3 Buffer).
// A vertex-role buffer additionally owns a VAO; a uniform-role buffer
// does not.
type bufferExt struct {
	vbo   uint32
	vao   uint32 // 0 unless role == RoleVertex
	role  rgpu.BufferRole
	bytes int
}

// EnsureBuffer lazily realizes buf under role, generating a VAO+VBO for
// a vertex buffer or a plain UBO-shaped buffer for a uniform buffer
// (spec §3 Buffer, §4.2 "ensure each buffer as a vertex-role buffer").
func (b *Backend) EnsureBuffer(buf *rgpu.Buffer, role rgpu.BufferRole) error {
	ok, prior := buf.FixRole(role)
	if !ok {
		return fmt.Errorf("buffer already fixed as %s, cannot use as %s", prior, role)
	}

	b.mu.Lock()
	ext, exists := b.bufferExtCol[buf]
	b.mu.Unlock()
	if exists && ext.bytes == len(buf.Bytes) {
		return nil
	}

	target := uint32(gl.ARRAY_BUFFER)
	if role == rgpu.RoleUniform {
		target = gl.UNIFORM_BUFFER
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return fmt.Errorf("glGenBuffers returned 0: %v", drainGLErrors())
	}
	gl.BindBuffer(target, vbo)
	size := len(buf.Bytes)
	var dataPtr unsafe.Pointer
	if size > 0 {
		dataPtr = gl.Ptr(buf.Bytes)
	}
	gl.BufferData(target, size, dataPtr, gl.STATIC_DRAW)
	gl.BindBuffer(target, 0)

	newExt := &bufferExt{vbo: vbo, role: role, bytes: size}

	if role == rgpu.RoleVertex {
		var vao uint32
		gl.GenVertexArrays(1, &vao)
		if vao == 0 {
			return fmt.Errorf("glGenVertexArrays returned 0: %v", drainGLErrors())
		}
		newExt.vao = vao
	}

	b.mu.Lock()
	if exists {
		gl.DeleteBuffers(1, &ext.vbo)
		if ext.vao != 0 {
			gl.DeleteVertexArrays(1, &ext.vao)
		}
	}
	b.bufferExtCol[buf] = newExt
	b.mu.Unlock()

	buf.SetBackend(newExt)
	return nil
}

// ReleaseBuffer returns the deferred-destroy entries for buf's VBO and,
// if present, VAO (spec §5 deferred destruction).
func (b *Backend) ReleaseBuffer(buf *rgpu.Buffer) []rgpu.DestroyEntry {
	ext, ok := buf.Backend().(*bufferExt)
	if !ok || ext == nil {
		return nil
	}
	var entries []rgpu.DestroyEntry
	if ext.vbo != 0 {
		entries = append(entries, rgpu.DestroyEntry{Kind: rgpu.DestroyBuffer, Handle: ext.vbo})
	}
	if ext.vao != 0 {
		entries = append(entries, rgpu.DestroyEntry{Kind: rgpu.DestroyVertexArray, Handle: ext.vao})
	}
	return entries
}
