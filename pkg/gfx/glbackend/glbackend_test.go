package glbackend

import (
	"strings"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"

	"postfx/pkg/gfx"
)

func TestInjectDefines(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		defines map[string]string
		want    string
	}{
		{
			name:   "no defines",
			source: "\n#version 410 core\nvoid main() {}\n",
			want:   "\n#version 410 core\nvoid main() {}\n",
		},
		{
			name:    "after version",
			source:  "\n#version 410 core\nvoid main() {}\n",
			defines: map[string]string{"TAPS": "25", "BLUR": "1"},
			want:    "\n#version 410 core\n#define BLUR 1\n#define TAPS 25\nvoid main() {}\n",
		},
		{
			name:    "no version line",
			source:  "void main() {}\n",
			defines: map[string]string{"N": "2"},
			want:    "#define N 2\nvoid main() {}\n",
		},
		{
			name:    "version without newline",
			source:  "#version 410 core",
			defines: map[string]string{"N": "2"},
			want:    "#version 410 core\n#define N 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := injectDefines(tt.source, tt.defines); got != tt.want {
				t.Errorf("injectDefines =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestInjectDefinesIsStable(t *testing.T) {
	defines := map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"}
	first := injectDefines("#version 410 core\n", defines)
	for i := 0; i < 20; i++ {
		if got := injectDefines("#version 410 core\n", defines); got != first {
			t.Fatalf("define order changed between calls:\n%s\n%s", first, got)
		}
	}
	if !strings.HasPrefix(first, "#version") {
		t.Error("#version must stay the first line")
	}
}

func TestMappings(t *testing.T) {
	compare := map[gfx.CompareFunc]uint32{
		gfx.Never:        gl.NEVER,
		gfx.Less:         gl.LESS,
		gfx.Equal:        gl.EQUAL,
		gfx.LessEqual:    gl.LEQUAL,
		gfx.Greater:      gl.GREATER,
		gfx.NotEqual:     gl.NOTEQUAL,
		gfx.GreaterEqual: gl.GEQUAL,
		gfx.Always:       gl.ALWAYS,
	}
	for fn, want := range compare {
		if got := glCompare(fn); got != want {
			t.Errorf("glCompare(%d) = 0x%x, want 0x%x", fn, got, want)
		}
	}

	ops := map[gfx.StencilOp]uint32{
		gfx.Keep:    gl.KEEP,
		gfx.Zero:    gl.ZERO,
		gfx.Replace: gl.REPLACE,
		gfx.Incr:    gl.INCR,
		gfx.Decr:    gl.DECR,
		gfx.Invert:  gl.INVERT,
	}
	for op, want := range ops {
		if got := glStencilOp(op); got != want {
			t.Errorf("glStencilOp(%d) = 0x%x, want 0x%x", op, got, want)
		}
	}

	if got := glFactor(gfx.FactorOneMinusSrcAlpha); got != gl.ONE_MINUS_SRC_ALPHA {
		t.Errorf("glFactor(OneMinusSrcAlpha) = 0x%x", got)
	}
	if got := glFactor(gfx.BlendFactor(99)); got != gl.ZERO {
		t.Errorf("unknown factor = 0x%x, want ZERO", got)
	}
	if got := glEquation(gfx.EquationReverseSubtract); got != gl.FUNC_REVERSE_SUBTRACT {
		t.Errorf("glEquation(ReverseSubtract) = 0x%x", got)
	}
	if got := glEquation(gfx.BlendEquation(99)); got != gl.FUNC_ADD {
		t.Errorf("unknown equation = 0x%x, want FUNC_ADD", got)
	}
}

func TestTextureParameters(t *testing.T) {
	formats := []struct {
		f        gfx.Format
		internal int32
		xtype    uint32
	}{
		{gfx.RGBA8, gl.RGBA8, gl.UNSIGNED_BYTE},
		{gfx.RGBA16F, gl.RGBA16F, gl.HALF_FLOAT},
		{gfx.RGBA32F, gl.RGBA32F, gl.FLOAT},
	}
	for _, tt := range formats {
		internal, xtype := glFormat(tt.f)
		if internal != tt.internal || xtype != tt.xtype {
			t.Errorf("glFormat(%s) = 0x%x/0x%x", tt.f, internal, xtype)
		}
	}

	if minF, magF := glFilter(gfx.Linear, true); minF != gl.LINEAR_MIPMAP_LINEAR || magF != gl.LINEAR {
		t.Errorf("mipmapped linear = 0x%x/0x%x", minF, magF)
	}
	if minF, magF := glFilter(gfx.Nearest, true); minF != gl.NEAREST || magF != gl.NEAREST {
		t.Errorf("nearest = 0x%x/0x%x", minF, magF)
	}
	if glWrap(gfx.Repeat) != gl.REPEAT || glWrap(gfx.ClampToEdge) != gl.CLAMP_TO_EDGE {
		t.Error("wrap mapping")
	}
}

func TestOwnedTextureDisposeIsNoop(t *testing.T) {
	tex := &texture{id: 7, owned: true}
	tex.Dispose()
	if tex.id != 7 {
		t.Error("target-owned texture released on its own")
	}
}
