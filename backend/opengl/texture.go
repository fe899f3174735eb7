package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

// textureExt is the GL-side trailing state for a Texture.
type textureExt struct {
	handle uint32
	target uint32 // gl.TEXTURE_2D, gl.TEXTURE_CUBE_MAP, or gl.TEXTURE_2D_MULTISAMPLE
}

func glInternalFormat(f rgpu.TextureFormat) (internal int32, format, pixType uint32) {
	switch f {
	case rgpu.FormatR8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case rgpu.FormatRA8:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE
	case rgpu.FormatRGB8:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case rgpu.FormatRGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case rgpu.FormatR32:
		return gl.R32F, gl.RED, gl.FLOAT
	case rgpu.FormatRGB32:
		return gl.RGB32F, gl.RGB, gl.FLOAT
	case rgpu.FormatRGBA32:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case rgpu.FormatDepth:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

// EnsureTexture lazily realizes tex's driver handle and uploads its
// initial pixels (spec §3 Texture, §4.2 "Ensure target textures").
func (b *Backend) EnsureTexture(tex *rgpu.Texture) error {
	if tex.Backend() != nil {
		return nil
	}

	internal, format, pixType := glInternalFormat(tex.Format)

	var handle uint32
	gl.GenTextures(1, &handle)
	if handle == 0 {
		return fmt.Errorf("glGenTextures returned 0: %v", drainGLErrors())
	}

	var target uint32
	switch {
	case tex.IsMultisample():
		target = gl.TEXTURE_2D_MULTISAMPLE
		gl.BindTexture(target, handle)
		gl.TexImage2DMultisample(target, int32(tex.MSAASamples), uint32(internal), int32(tex.Width), int32(tex.Height), true)
	case tex.IsCubemap:
		target = gl.TEXTURE_CUBE_MAP
		gl.BindTexture(target, handle)
		faceBytes := tex.Width * tex.Height * tex.Format.BytesPerPixel()
		for face := 0; face < 6; face++ {
			var data unsafe.Pointer
			if len(tex.Pixels) >= (face+1)*faceBytes {
				data = gl.Ptr(tex.Pixels[face*faceBytes : (face+1)*faceBytes])
			}
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, internal,
				int32(tex.Width), int32(tex.Height), 0, format, pixType, data)
		}
		gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	default:
		target = gl.TEXTURE_2D
		gl.BindTexture(target, handle)
		var data unsafe.Pointer
		if len(tex.Pixels) > 0 {
			data = gl.Ptr(tex.Pixels)
		}
		gl.TexImage2D(target, 0, internal, int32(tex.Width), int32(tex.Height), 0, format, pixType, data)
		if tex.MipmapCount > 0 {
			gl.GenerateMipmap(target)
			gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		} else {
			gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		}
		gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.BindTexture(target, 0)

	ext := &textureExt{handle: handle, target: target}
	b.mu.Lock()
	b.textureExtCol[tex] = ext
	b.mu.Unlock()
	tex.SetBackend(ext)
	return nil
}

// EnsureShadow realizes the driver handle for tex's shadow sibling,
// already allocated by Texture.Shadow before this is called (spec §3
// Texture invariant, §4.3 "MSAA resolve").
func (b *Backend) EnsureShadow(tex *rgpu.Texture) error {
	shadow := tex.ShadowPeek()
	if shadow == nil {
		return fmt.Errorf("opengl: EnsureShadow called before a shadow was allocated")
	}
	return b.EnsureTexture(shadow)
}

// ReleaseTexture returns tex's deferred-destroy entry, if ever realized
// (spec §5 deferred destruction).
func (b *Backend) ReleaseTexture(tex *rgpu.Texture) []rgpu.DestroyEntry {
	ext, ok := tex.Backend().(*textureExt)
	if !ok || ext == nil {
		return nil
	}
	return []rgpu.DestroyEntry{{Kind: rgpu.DestroyTexture, Handle: ext.handle}}
}
