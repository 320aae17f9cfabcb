package postfx

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/noise"
	"postfx/pkg/gfx"
	"postfx/pkg/gfx/gfxtest"
)

func TestGenerateKernel(t *testing.T) {
	for _, size := range []int{1, 16, 32, 64} {
		k := GenerateKernel(size, noise.NewGenerator(5))
		if len(k) != size {
			t.Fatalf("len = %d, want %d", len(k), size)
		}
		for i, v := range k {
			if v.Z() < 0 {
				t.Errorf("size %d sample %d below the hemisphere: %v", size, i, v)
			}
			if v.Len() > 1+1e-5 {
				t.Errorf("size %d sample %d longer than 1: %v", size, i, v.Len())
			}
			if v.Len() < 0.1-1e-5 {
				t.Errorf("size %d sample %d shorter than the minimum scale: %v", size, i, v.Len())
			}
		}
	}
}

func TestGenerateKernelSeeded(t *testing.T) {
	a := GenerateKernel(32, noise.NewGenerator(1234))
	b := GenerateKernel(32, noise.NewGenerator(1234))
	c := GenerateKernel(32, noise.NewGenerator(4321))

	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs for the same seed: %v != %v", i, a[i], b[i])
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical kernels")
	}
}

func TestParseSSAOOutput(t *testing.T) {
	tests := []struct {
		in      string
		want    SSAOOutput
		wantErr bool
	}{
		{"", OutputDefault, false},
		{"default", OutputDefault, false},
		{"SSAO", OutputSSAO, false},
		{"blur", OutputBlur, false},
		{"Beauty", OutputBeauty, false},
		{"depth", OutputDepth, false},
		{"normal", OutputNormal, false},
		{"occlusion", OutputDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseSSAOOutput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSSAOOutput(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSSAOOutput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if OutputNormal.Next() != OutputDefault {
		t.Error("Next should wrap to default")
	}
	if OutputBlur.String() != "blur" {
		t.Errorf("String() = %q", OutputBlur.String())
	}
}

func newSSAOComposer(t *testing.T, withRender bool) (*gfxtest.Context, *Composer, *SSAOPass) {
	t.Helper()
	ctx, c := newTestComposer(t)
	if withRender {
		render, err := NewRenderPass(ctx)
		if err != nil {
			t.Fatal(err)
		}
		c.AddPass(render)
	}
	w, h := c.scaledSize()
	p, err := NewSSAOPass(ctx, w, h, 16, noise.NewGenerator(3))
	if err != nil {
		t.Fatal(err)
	}
	c.AddPass(p)
	return ctx, c, p
}

func TestSSAODefaultComposite(t *testing.T) {
	ctx, c, _ := newSSAOComposer(t, false)
	defer c.Dispose()

	mustRender(t, c)

	occlusion := "ssao(scene,data1,normal(scene))"
	want := "screen(copy(scene) * copy(ssao_blur(" + occlusion + ")))"
	if ctx.Screen.Content != want {
		t.Errorf("screen = %q, want %q", ctx.Screen.Content, want)
	}
	if n := ctx.Count(gfxtest.EventDraw, ShaderNormal); n != 1 {
		t.Errorf("normal draws = %d, want 1", n)
	}
	if got := c.Stats().Swaps; got != 1 {
		t.Errorf("swaps = %d, want 1", got)
	}
}

func TestSSAOReusesGBuffer(t *testing.T) {
	ctx, c, p := newSSAOComposer(t, true)
	defer c.Dispose()

	mustRender(t, c)

	if n := ctx.Count(gfxtest.EventDraw, ShaderNormal); n != 1 {
		t.Errorf("normal draws = %d, want only the render pass prepass", n)
	}
	if got := content(p.normalRT); got != "" {
		t.Errorf("private normal target was drawn: %q", got)
	}
	tex, _ := p.ssaoMaterial.Uniforms.Get("tNormal")
	if tex != c.GBuffer().Normal.Texture() {
		t.Error("occlusion did not sample the gbuffer normals")
	}

	// a stale gbuffer falls back to the private target
	c.GBuffer().SetSize(8, 8)
	p.SetSize(c.scaledSize())
	if err := p.Render(&Frame{
		Ctx: ctx, Scene: gfx.NewScene(), Camera: gfx.NewPerspectiveCamera(60, 1, 0.1, 10),
		GBuffer: c.GBuffer(), Index: 99,
	}, c.WriteBuffer(), c.ReadBuffer(), false); err != nil {
		t.Fatal(err)
	}
	if got := content(p.normalRT); got != "normal(scene)" {
		t.Errorf("fallback normals = %q", got)
	}
}

func TestSSAOOutputModes(t *testing.T) {
	occlusion := "ssao(scene,data1,normal(scene))"
	tests := []struct {
		output SSAOOutput
		want   string
	}{
		{OutputSSAO, "copy(" + occlusion + ")"},
		{OutputBlur, "copy(ssao_blur(" + occlusion + "))"},
		{OutputBeauty, "copy(scene)"},
		{OutputNormal, "copy(normal(scene))"},
		{OutputDepth, "ssao_depth(scene)"},
	}
	for _, tt := range tests {
		t.Run(tt.output.String(), func(t *testing.T) {
			ctx, c, p := newSSAOComposer(t, false)
			defer c.Dispose()
			p.Output = tt.output

			mustRender(t, c)
			if want := "screen(" + tt.want + ")"; ctx.Screen.Content != want {
				t.Errorf("screen = %q, want %q", ctx.Screen.Content, want)
			}
		})
	}
}

func TestSSAOSetSize(t *testing.T) {
	ctx := gfxtest.New(64, 64)
	p, err := NewSSAOPass(ctx, 64, 64, 8, noise.NewGenerator(1))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Dispose()

	p.SetSize(200, 100)
	for _, rt := range []gfx.RenderTarget{p.beautyRT, p.normalRT, p.ssaoRT, p.blurRT} {
		if rt.Width() != 200 || rt.Height() != 100 {
			t.Errorf("%s is %dx%d, want 200x100", rt.(*gfxtest.Target).Label, rt.Width(), rt.Height())
		}
	}
	if v, _ := p.ssaoMaterial.Uniforms.Get("resolution"); v != (mgl32.Vec2{200, 100}) {
		t.Errorf("resolution = %v", v)
	}
	if v, _ := p.blurMaterial.Uniforms.Get("resolution"); v != (mgl32.Vec2{200, 100}) {
		t.Errorf("blur resolution = %v", v)
	}
	if got := p.ssaoMaterial.Defines["KERNEL_SIZE"]; got != "8" {
		t.Errorf("KERNEL_SIZE = %q", got)
	}
}

func TestSSAOUnderMask(t *testing.T) {
	ctx, c, p := newSSAOComposer(t, true)
	defer c.Dispose()

	if err := c.InsertPass(NewMaskPass(), 1); err != nil {
		t.Fatal(err)
	}
	c.AddPass(NewClearMaskPass())
	mustRender(t, c)

	// private targets must not pick up the stencil lineage
	if got := content(p.blurRT); strings.Contains(got, "|") {
		t.Errorf("blur target composed under the mask: %q", got)
	}
	if !strings.Contains(ctx.Screen.Content, " | ") {
		t.Errorf("screen %q shows no masked composite", ctx.Screen.Content)
	}
	if ctx.State().Stencil.Test {
		t.Error("stencil left on after clear mask")
	}
}
