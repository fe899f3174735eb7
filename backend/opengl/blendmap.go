package opengl

import (
	gl "github.com/go-gl/gl/v3.3-core/gl"

	"github.com/vitrailgpu/rgpu/rgpu"
)

func glBlendFactor(b rgpu.Blend) uint32 {
	switch b {
	case rgpu.BlendZero:
		return gl.ZERO
	case rgpu.BlendOne:
		return gl.ONE
	case rgpu.BlendSrcColor:
		return gl.SRC_COLOR
	case rgpu.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case rgpu.BlendDstColor:
		return gl.DST_COLOR
	case rgpu.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case rgpu.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case rgpu.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case rgpu.BlendDstAlpha:
		return gl.DST_ALPHA
	case rgpu.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case rgpu.BlendConstantColor:
		return gl.CONSTANT_COLOR
	case rgpu.BlendOneMinusConstantColor:
		return gl.ONE_MINUS_CONSTANT_COLOR
	case rgpu.BlendConstantAlpha:
		return gl.CONSTANT_ALPHA
	case rgpu.BlendOneMinusConstantAlpha:
		return gl.ONE_MINUS_CONSTANT_ALPHA
	case rgpu.BlendSrcAlphaSaturate:
		return gl.SRC_ALPHA_SATURATE
	case rgpu.BlendSrc1Color:
		return gl.SRC1_COLOR
	case rgpu.BlendOneMinusSrc1Color:
		return gl.ONE_MINUS_SRC1_COLOR
	case rgpu.BlendSrc1Alpha:
		return gl.SRC1_ALPHA
	case rgpu.BlendOneMinusSrc1Alpha:
		return gl.ONE_MINUS_SRC1_ALPHA
	default:
		return gl.ONE
	}
}

func glDepthFunc(f rgpu.TestFunc) uint32 {
	switch f {
	case rgpu.TestNever:
		return gl.NEVER
	case rgpu.TestAlways:
		return gl.ALWAYS
	case rgpu.TestLess:
		return gl.LESS
	case rgpu.TestLEqual:
		return gl.LEQUAL
	case rgpu.TestGreater:
		return gl.GREATER
	case rgpu.TestGEqual:
		return gl.GEQUAL
	case rgpu.TestEqual:
		return gl.EQUAL
	case rgpu.TestNotEqual:
		return gl.NOTEQUAL
	default:
		return gl.LEQUAL
	}
}

func glScalarType(s rgpu.ScalarType) uint32 {
	switch s {
	case rgpu.ScalarFloat:
		return gl.FLOAT
	case rgpu.ScalarInt:
		return gl.INT
	case rgpu.ScalarUInt:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}
