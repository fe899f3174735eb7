package opengl

import (
	"testing"

	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

func TestGLBlendFactorCoversClosedSet(t *testing.T) {
	cases := map[rgpu.Blend]uint32{
		rgpu.BlendZero:              gl.ZERO,
		rgpu.BlendOne:               gl.ONE,
		rgpu.BlendSrcAlpha:          gl.SRC_ALPHA,
		rgpu.BlendOneMinusSrcAlpha:  gl.ONE_MINUS_SRC_ALPHA,
		rgpu.BlendSrc1Color:         gl.SRC1_COLOR,
		rgpu.BlendOneMinusSrc1Alpha: gl.ONE_MINUS_SRC1_ALPHA,
		rgpu.BlendSrcAlphaSaturate:  gl.SRC_ALPHA_SATURATE,
	}
	for in, want := range cases {
		if got := glBlendFactor(in); got != want {
			t.Errorf("glBlendFactor(%v) = %#x, want %#x", in, got, want)
		}
	}
}

func TestGLDepthFuncCoversClosedSet(t *testing.T) {
	cases := map[rgpu.TestFunc]uint32{
		rgpu.TestNever:    gl.NEVER,
		rgpu.TestLEqual:   gl.LEQUAL,
		rgpu.TestGEqual:   gl.GEQUAL,
		rgpu.TestNotEqual: gl.NOTEQUAL,
	}
	for in, want := range cases {
		if got := glDepthFunc(in); got != want {
			t.Errorf("glDepthFunc(%v) = %#x, want %#x", in, got, want)
		}
	}
}

func TestGLScalarType(t *testing.T) {
	if got := glScalarType(rgpu.ScalarFloat); got != gl.FLOAT {
		t.Errorf("glScalarType(Float) = %#x, want FLOAT", got)
	}
	if got := glScalarType(rgpu.ScalarInt); got != gl.INT {
		t.Errorf("glScalarType(Int) = %#x, want INT", got)
	}
	if got := glScalarType(rgpu.ScalarUInt); got != gl.UNSIGNED_INT {
		t.Errorf("glScalarType(UInt) = %#x, want UNSIGNED_INT", got)
	}
}
