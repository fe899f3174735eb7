package rgpu

import "testing"

func TestTextureShadowOnlyForMultisample(t *testing.T) {
	gpu := newTestGpu()
	tex := TextureNewForData(gpu, nil, 4, 4, FormatRGBA8, 0, 0)

	if _, err := tex.Shadow(); err == nil {
		t.Fatalf("Shadow() on a non-multisample texture should fail")
	}
}

func TestTextureShadowCreatesSiblingOnce(t *testing.T) {
	gpu := newTestGpu()
	tex := TextureNewForData(gpu, nil, 4, 4, FormatRGBA8, 0, 4)

	if tex.ShadowPeek() != nil {
		t.Fatalf("ShadowPeek before Shadow() should be nil")
	}

	s1, err := tex.Shadow()
	if err != nil {
		t.Fatalf("Shadow(): %v", err)
	}
	if s1.MSAASamples != 0 {
		t.Fatalf("shadow sibling must not itself be multisample")
	}
	if s1.Width != tex.Width || s1.Height != tex.Height || s1.Format != tex.Format {
		t.Fatalf("shadow sibling must match the original's dimensions/format")
	}

	s2, err := tex.Shadow()
	if err != nil {
		t.Fatalf("Shadow() second call: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("Shadow() must return the same sibling on repeated calls")
	}
	if tex.ShadowPeek() != s1 {
		t.Fatalf("ShadowPeek after Shadow() should return the realized sibling")
	}
}

func TestTextureBytesPerPixel(t *testing.T) {
	cases := map[TextureFormat]int{
		FormatR8:     1,
		FormatRA8:    2,
		FormatRGB8:   3,
		FormatRGBA8:  4,
		FormatR32:    4,
		FormatRGB32:  12,
		FormatRGBA32: 16,
		FormatDepth:  0,
	}
	for f, want := range cases {
		if got := f.BytesPerPixel(); got != want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", f, got, want)
		}
	}
}
