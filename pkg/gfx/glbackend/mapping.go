package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"postfx/pkg/gfx"
)

func glCompare(fn gfx.CompareFunc) uint32 {
	switch fn {
	case gfx.Never:
		return gl.NEVER
	case gfx.Less:
		return gl.LESS
	case gfx.Equal:
		return gl.EQUAL
	case gfx.LessEqual:
		return gl.LEQUAL
	case gfx.Greater:
		return gl.GREATER
	case gfx.NotEqual:
		return gl.NOTEQUAL
	case gfx.GreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func glStencilOp(op gfx.StencilOp) uint32 {
	switch op {
	case gfx.Zero:
		return gl.ZERO
	case gfx.Replace:
		return gl.REPLACE
	case gfx.Incr:
		return gl.INCR
	case gfx.Decr:
		return gl.DECR
	case gfx.Invert:
		return gl.INVERT
	default:
		return gl.KEEP
	}
}

func glFactor(f gfx.BlendFactor) uint32 {
	switch f {
	case gfx.FactorOne:
		return gl.ONE
	case gfx.FactorSrcColor:
		return gl.SRC_COLOR
	case gfx.FactorSrcAlpha:
		return gl.SRC_ALPHA
	case gfx.FactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gfx.FactorDstColor:
		return gl.DST_COLOR
	case gfx.FactorDstAlpha:
		return gl.DST_ALPHA
	case gfx.FactorOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	default:
		return gl.ZERO
	}
}

func glEquation(e gfx.BlendEquation) uint32 {
	switch e {
	case gfx.EquationSubtract:
		return gl.FUNC_SUBTRACT
	case gfx.EquationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	default:
		return gl.FUNC_ADD
	}
}
