package rgpu

import (
	"sync"
	"sync/atomic"
)

// TextureFormat is the closed set of pixel formats (spec §6 "Formats"),
// plus the internal DEPTH sentinel used for depth targets.
type TextureFormat int

const (
	FormatR8 TextureFormat = iota
	FormatRA8
	FormatRGB8
	FormatRGBA8
	FormatR32
	FormatRGB32
	FormatRGBA32
	FormatDepth // internal sentinel, never constructed by users directly
)

// BytesPerPixel reports the per-pixel byte size of a color format (spec
// §6). FormatDepth has no defined pixel size and returns 0.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRA8:
		return 2
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	case FormatR32:
		return 4
	case FormatRGB32:
		return 12
	case FormatRGBA32:
		return 16
	default:
		return 0
	}
}

// Texture owns an init descriptor plus lazily-realized backend state
// (spec §3 Texture). Dimensions, format, and sample count are immutable
// after creation.
type Texture struct {
	gpu  *Gpu
	refs int32

	IsCubemap    bool
	Pixels       []byte
	Width        int
	Height       int
	Format       TextureFormat
	MipmapCount  int
	MSAASamples  int

	mu      sync.Mutex
	backend interface{}
	// shadow is the lazily-created non-msaa sibling used when this
	// texture is sampled as a uniform (spec §3 Texture invariant,
	// glossary "Shadow texture").
	shadow *Texture
}

func newTexture(gpu *Gpu, cubemap bool, pixels []byte, w, h int, format TextureFormat, mipmaps, msaa int) *Texture {
	if gpu == nil {
		critical("texture_new", "nil gpu")
		return nil
	}
	cp := make([]byte, len(pixels))
	copy(cp, pixels)
	gpu.Ref()
	return &Texture{
		gpu: gpu, refs: 1,
		IsCubemap: cubemap, Pixels: cp,
		Width: w, Height: h, Format: format,
		MipmapCount: mipmaps, MSAASamples: msaa,
	}
}

// TextureNewForData constructs a 2D texture init descriptor, copying
// pixels (spec §6 texture_new_for_data).
func TextureNewForData(gpu *Gpu, pixels []byte, w, h int, format TextureFormat, mipmaps, msaa int) *Texture {
	return newTexture(gpu, false, pixels, w, h, format, mipmaps, msaa)
}

// TextureNewForDataTake is identical but takes ownership of pixels
// without copying (spec §6 texture_new_for_data_take).
func TextureNewForDataTake(gpu *Gpu, pixels []byte, w, h int, format TextureFormat, mipmaps, msaa int) *Texture {
	if gpu == nil {
		critical("texture_new_for_data_take", "nil gpu")
		return nil
	}
	gpu.Ref()
	return &Texture{gpu: gpu, refs: 1, Pixels: pixels, Width: w, Height: h, Format: format, MipmapCount: mipmaps, MSAASamples: msaa}
}

// TextureNewCubemapForData constructs a cubemap from six face images
// stored back-to-back: +X, -X, +Y, -Y, +Z, -Z (spec §6
// texture_new_cubemap_for_data).
func TextureNewCubemapForData(gpu *Gpu, pixels []byte, faceEdge int, format TextureFormat) *Texture {
	return newTexture(gpu, true, pixels, faceEdge, faceEdge, format, 0, 0)
}

// TextureNewCubemapForDataTake is identical to TextureNewCubemapForData
// but takes ownership of pixels without copying (spec §6
// texture_new_cubemap_for_data_take). Callers must not mutate pixels
// afterward.
func TextureNewCubemapForDataTake(gpu *Gpu, pixels []byte, faceEdge int, format TextureFormat) *Texture {
	if gpu == nil {
		critical("texture_new_cubemap_for_data_take", "nil gpu")
		return nil
	}
	gpu.Ref()
	return &Texture{
		gpu: gpu, refs: 1,
		IsCubemap: true, Pixels: pixels,
		Width: faceEdge, Height: faceEdge, Format: format,
	}
}

// TextureNewDepth constructs a depth target (spec §6 texture_new_depth).
func TextureNewDepth(gpu *Gpu, w, h, msaa int) *Texture {
	return newTexture(gpu, false, nil, w, h, FormatDepth, 0, msaa)
}

func (t *Texture) ref() { atomic.AddInt32(&t.refs, 1) }

func (t *Texture) unref() {
	if atomic.AddInt32(&t.refs, -1) != 0 {
		return
	}
	if t.shadow != nil {
		t.shadow.unref()
	}
	for _, e := range t.gpu.backend.ReleaseTexture(t) {
		t.gpu.pushDestroy(e)
	}
	t.gpu.Unref()
}

func (t *Texture) Unref() { t.unref() }
func (t *Texture) Ref() *Texture {
	t.ref()
	return t
}

func (t *Texture) Backend() interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.backend
}

func (t *Texture) SetBackend(v interface{}) {
	t.mu.Lock()
	t.backend = v
	t.mu.Unlock()
}

// IsMultisample reports whether this texture targets a multisample
// attachment (spec §3 "MSAA samples > 0 selects a multisample target").
func (t *Texture) IsMultisample() bool { return t.MSAASamples > 0 }

// Shadow returns the lazily-created non-msaa shadow sibling, creating it
// (via backend.EnsureShadow) on first call. Only valid for multisample
// textures (spec §3 Texture invariant, §4.2 "lazily instantiate its
// non-msaa shadow").
func (t *Texture) Shadow() (*Texture, error) {
	if !t.IsMultisample() {
		return nil, newError(FailedTextureGen, nil, "Shadow: texture is not multisample")
	}
	t.mu.Lock()
	if t.shadow == nil {
		t.shadow = &Texture{
			gpu: t.gpu.Ref(), refs: 1,
			IsCubemap: t.IsCubemap, Width: t.Width, Height: t.Height,
			Format: t.Format, MipmapCount: t.MipmapCount, MSAASamples: 0,
		}
	}
	t.mu.Unlock()

	if err := t.gpu.backend.EnsureShadow(t); err != nil {
		return nil, err
	}
	return t.shadow, nil
}

// ShadowPeek returns the already-allocated shadow sibling without
// creating one, or nil. Used by a Backend's EnsureShadow implementation
// to realize the driver handle Shadow already allocated (spec §4.2
// "lazily instantiate its non-msaa shadow").
func (t *Texture) ShadowPeek() *Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shadow
}
