package postfx

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"postfx/internal/logger"
	"postfx/pkg/gfx"
	"postfx/pkg/gfx/gfxtest"
)

// stubPass records how the composer drives it
type stubPass struct {
	Base
	name    string
	err     error
	renders int
	masks   []bool
	sizes   [][2]int
	check   func(write, read gfx.RenderTarget)
}

func newStub(name string, needsSwap bool) *stubPass {
	return &stubPass{Base: Base{Enabled: true, NeedsSwap: needsSwap}, name: name}
}

func (p *stubPass) Name() string { return p.name }

func (p *stubPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	p.renders++
	p.masks = append(p.masks, maskActive)
	if p.check != nil {
		p.check(write, read)
	}
	return p.err
}

func (p *stubPass) SetSize(width, height int) { p.sizes = append(p.sizes, [2]int{width, height}) }
func (p *stubPass) Dispose() { p.markDisposed() }

func stepClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func newTestComposer(t *testing.T, opts ...Option) (*gfxtest.Context, *Composer) {
	t.Helper()
	ctx := gfxtest.New(320, 240)
	opts = append([]Option{WithClock(stepClock(16 * time.Millisecond))}, opts...)
	c, err := NewComposer(ctx, nil, opts...)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return ctx, c
}

func testScene() (*gfx.Scene, gfx.Camera) {
	return gfx.NewScene(), gfx.NewPerspectiveCamera(60, 4.0/3.0, 0.1, 100)
}

func mustRender(t *testing.T, c *Composer) {
	t.Helper()
	scene, camera := testScene()
	if err := c.Render(scene, camera); err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func content(rt gfx.RenderTarget) string {
	return rt.(*gfxtest.Target).Content
}

func TestBloomPipelineScenario(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	render, err := NewRenderPass(ctx)
	if err != nil {
		t.Fatal(err)
	}
	bloom, err := NewBloomPass(ctx, 1, 25, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	copyPass, err := NewShaderPass(ctx, CopyShader(), "")
	if err != nil {
		t.Fatal(err)
	}
	c.AddPass(render)
	c.AddPass(bloom)
	c.AddPass(copyPass)

	mustRender(t, c)

	if got := c.Stats().Swaps; got != 2 {
		t.Errorf("swaps = %d, want 2", got)
	}
	want := "screen(copy(bloom(convolution(convolution(scene)),scene)))"
	if ctx.Screen.Content != want {
		t.Errorf("screen = %q, want %q", ctx.Screen.Content, want)
	}

	bloom.Enabled = false
	ctx.Reset()
	mustRender(t, c)

	if got := c.Stats().Swaps; got != 1 {
		t.Errorf("swaps with bloom disabled = %d, want 1", got)
	}
	if want := "screen(copy(scene))"; ctx.Screen.Content != want {
		t.Errorf("screen with bloom disabled = %q, want %q", ctx.Screen.Content, want)
	}
	if n := ctx.Count(gfxtest.EventQuad, ShaderConvolution); n != 0 {
		t.Errorf("disabled bloom still blurred %d times", n)
	}
}

func TestSwapCountMatchesEnabledSwappingPasses(t *testing.T) {
	tests := []struct {
		name      string
		needsSwap []bool
		enabled   []bool
		want      int
	}{
		{"empty", nil, nil, 0},
		{"no swaps", []bool{false, false}, []bool{true, true}, 0},
		{"all swap", []bool{true, true, true}, []bool{true, true, true}, 3},
		{"disabled swapper", []bool{true, true, true}, []bool{true, false, true}, 2},
		{"mixed", []bool{false, true, false, true}, []bool{true, true, true, false}, 1},
		{"all disabled", []bool{true, true}, []bool{false, false}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestComposer(t)
			defer c.Dispose()

			var stubs []*stubPass
			for i, swap := range tt.needsSwap {
				p := newStub("stub", swap)
				p.Enabled = tt.enabled[i]
				p.check = func(write, read gfx.RenderTarget) {
					if write == read {
						t.Errorf("write and read are the same target")
					}
					pair := map[gfx.RenderTarget]bool{write: true, read: true}
					if !pair[c.RenderTarget1()] || !pair[c.RenderTarget2()] {
						t.Errorf("buffers are not the owned pair")
					}
				}
				c.AddPass(p)
				stubs = append(stubs, p)
			}

			for frame := 0; frame < 3; frame++ {
				mustRender(t, c)
				if got := c.Stats().Swaps; got != tt.want {
					t.Errorf("frame %d: swaps = %d, want %d", frame, got, tt.want)
				}
			}

			for i, p := range stubs {
				if !tt.enabled[i] && p.renders != 0 {
					t.Errorf("disabled pass %d rendered %d times", i, p.renders)
				}
			}
			if c.ReadBuffer() == c.WriteBuffer() {
				t.Error("read and write buffers alias after render")
			}
		})
	}
}

func TestMaskedFrame(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	render, err := NewRenderPass(ctx)
	if err != nil {
		t.Fatal(err)
	}
	film, err := NewFilmPass(ctx, 0.35, 0.025, 648, false)
	if err != nil {
		t.Fatal(err)
	}
	probe := newStub("probe", false)
	copyPass, err := NewShaderPass(ctx, CopyShader(), "")
	if err != nil {
		t.Fatal(err)
	}

	c.AddPass(render)
	c.AddPass(NewMaskPass())
	c.AddPass(probe)
	c.AddPass(film)
	c.AddPass(NewClearMaskPass())
	c.AddPass(copyPass)

	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	mustRender(t, c)

	if len(probe.masks) != 1 || !probe.masks[0] {
		t.Errorf("pass after mask saw maskActive = %v, want [true]", probe.masks)
	}
	for _, rt := range []gfx.RenderTarget{c.RenderTarget1(), c.RenderTarget2()} {
		if got := rt.(*gfxtest.Target).Stencil; got != "1:scene" {
			t.Errorf("%s stencil = %q, want 1:scene", rt.(*gfxtest.Target).Label, got)
		}
	}

	state := ctx.State()
	if state.Stencil.Test || state.Stencil.Locked {
		t.Errorf("stencil test still on after clear mask: %+v", state.Stencil)
	}
	if c.Stats().MaskActive {
		t.Error("stats report mask active after a paired frame")
	}
	if got := c.Stats().Swaps; got != 2 {
		t.Errorf("swaps = %d, want 2", got)
	}
	// one bridging copy for film under the mask, one copy pass
	if got := ctx.Count(gfxtest.EventQuad, ShaderCopy); got != 2 {
		t.Errorf("copy draws = %d, want 2", got)
	}
	if want := "screen(copy(film(scene) | copy(scene)))"; ctx.Screen.Content != want {
		t.Errorf("screen = %q, want %q", ctx.Screen.Content, want)
	}
}

func TestInverseMaskWritesZero(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	mask := NewMaskPass()
	mask.Inverse = true
	c.AddPass(mask)
	c.AddPass(NewClearMaskPass())
	mustRender(t, c)

	if got := content(c.RenderTarget1()); got != "" {
		t.Errorf("mask pass wrote colour %q", got)
	}
	if got := c.RenderTarget1().(*gfxtest.Target).Stencil; got != "0:scene" {
		t.Errorf("stencil = %q, want 0:scene", got)
	}
	if ctx.State().Stencil.Clear != 1 {
		t.Errorf("stencil clear = %d, want 1", ctx.State().Stencil.Clear)
	}
}

func TestUnpairedMaskWarns(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("warn")
	log.SetOutput(&buf)

	ctx, c := newTestComposer(t, WithLogger(log))
	defer c.Dispose()

	c.AddPass(NewMaskPass())
	c.AddPass(newStub("after", true))

	if err := c.Validate(); !errors.Is(err, ErrUnpairedMask) {
		t.Errorf("Validate = %v, want ErrUnpairedMask", err)
	}
	mustRender(t, c)

	if !c.Stats().MaskActive {
		t.Error("stats should report the mask still active")
	}
	if !ctx.State().Stencil.Test {
		t.Error("stencil test should stay enabled without a clear mask pass")
	}
	if !strings.Contains(buf.String(), "stencil mask active") {
		t.Errorf("missing warning, log was %q", buf.String())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		passes []Pass
		ok     bool
	}{
		{"empty", nil, true},
		{"paired", []Pass{NewMaskPass(), NewClearMaskPass()}, true},
		{"nested", []Pass{NewMaskPass(), NewMaskPass(), NewClearMaskPass(), NewClearMaskPass()}, true},
		{"open", []Pass{NewMaskPass()}, false},
		{"clear first", []Pass{NewClearMaskPass(), NewMaskPass()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestComposer(t)
			defer c.Dispose()
			for _, p := range tt.passes {
				c.AddPass(p)
			}
			err := c.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnpairedMask) {
				t.Errorf("Validate = %v, want ErrUnpairedMask", err)
			}
		})
	}
}

func TestSetSizePropagation(t *testing.T) {
	_, c := newTestComposer(t, WithPixelRatio(2))
	defer c.Dispose()

	p := newStub("stub", true)
	c.AddPass(p)

	for _, rt := range []gfx.RenderTarget{c.RenderTarget1(), c.RenderTarget2()} {
		if rt.Width() != 640 || rt.Height() != 480 {
			t.Errorf("initial target size %dx%d, want 640x480", rt.Width(), rt.Height())
		}
	}

	c.SetSize(300, 200)
	for _, rt := range []gfx.RenderTarget{c.RenderTarget1(), c.RenderTarget2()} {
		if rt.Width() != 600 || rt.Height() != 400 {
			t.Errorf("target size %dx%d, want 600x400", rt.Width(), rt.Height())
		}
	}
	if last := p.sizes[len(p.sizes)-1]; last != [2]int{600, 400} {
		t.Errorf("pass SetSize(%v), want [600 400]", last)
	}
	if g := c.GBuffer(); g.Normal.Width() != 600 || g.Depth.Height() != 400 {
		t.Errorf("gbuffer not resized: %dx%d", g.Normal.Width(), g.Depth.Height())
	}

	c.SetPixelRatio(1)
	if rt := c.RenderTarget1(); rt.Width() != 300 || rt.Height() != 200 {
		t.Errorf("after ratio 1: %dx%d, want 300x200", rt.Width(), rt.Height())
	}
	if last := p.sizes[len(p.sizes)-1]; last != [2]int{300, 200} {
		t.Errorf("pass SetSize(%v), want [300 200]", last)
	}
}

func TestReset(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	old1, old2 := c.RenderTarget1(), c.RenderTarget2()
	oldNormal := c.GBuffer().Normal

	ctx.Resize(100, 80)
	c.Reset(nil)

	for _, old := range []gfx.RenderTarget{old1, old2, oldNormal} {
		if n := old.(*gfxtest.Target).Disposals(); n != 1 {
			t.Errorf("%s disposed %d times, want 1", old.(*gfxtest.Target).Label, n)
		}
	}
	if c.RenderTarget1() == old1 || c.RenderTarget2() == old2 {
		t.Error("reset kept the old targets")
	}
	if c.WriteBuffer() != c.RenderTarget1() || c.ReadBuffer() != c.RenderTarget2() {
		t.Error("reset should start with write = target 1, read = target 2")
	}
	if rt := c.RenderTarget2(); rt.Width() != 100 || rt.Height() != 80 {
		t.Errorf("new target %dx%d, want 100x80", rt.Width(), rt.Height())
	}

	supplied := ctx.NewRenderTarget(50, 50, gfx.TargetOptions{Format: gfx.RGBA16F})
	c.Reset(supplied)
	if c.RenderTarget1() != supplied {
		t.Error("reset did not adopt the supplied target")
	}
	if c.RenderTarget2().Options().Format != gfx.RGBA16F {
		t.Error("second target should copy the supplied options")
	}
	if w, h := c.Size(); w != 50 || h != 50 {
		t.Errorf("size after adopting a target = %dx%d, want 50x50", w, h)
	}
	if c.PixelRatio() != 1 {
		t.Errorf("pixel ratio after adopting a target = %v, want 1", c.PixelRatio())
	}

	c.SetPixelRatio(2)
	for _, rt := range []gfx.RenderTarget{c.RenderTarget1(), c.RenderTarget2()} {
		if rt.Width() != 100 || rt.Height() != 100 {
			t.Errorf("target %dx%d after SetPixelRatio(2), want 100x100", rt.Width(), rt.Height())
		}
	}
}

func TestPassListEditing(t *testing.T) {
	_, c := newTestComposer(t)
	defer c.Dispose()

	a, b, d := newStub("a", true), newStub("b", true), newStub("d", true)
	c.AddPass(a)
	c.AddPass(d)
	if err := c.InsertPass(b, 1); err != nil {
		t.Fatalf("InsertPass: %v", err)
	}
	if err := c.InsertPass(newStub("x", true), 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("InsertPass out of range = %v", err)
	}

	var names []string
	for _, p := range c.Passes() {
		names = append(names, p.Name())
	}
	if got := strings.Join(names, ","); got != "a,b,d" {
		t.Errorf("order = %s, want a,b,d", got)
	}

	d.Enabled = false
	if !c.IsLastEnabledPass(1) {
		t.Error("b should be the last enabled pass")
	}
	if c.IsLastEnabledPass(0) {
		t.Error("a is followed by enabled b")
	}

	if err := c.RemovePass(b); err != nil {
		t.Fatalf("RemovePass: %v", err)
	}
	if err := c.RemovePass(b); !errors.Is(err, ErrUnknownPass) {
		t.Errorf("second RemovePass = %v, want ErrUnknownPass", err)
	}
	if len(c.Passes()) != 2 {
		t.Errorf("passes = %d, want 2", len(c.Passes()))
	}
	if b.Disposed() {
		t.Error("RemovePass must not dispose the pass")
	}
}

func TestRenderErrorAbortsFrame(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	render, err := NewRenderPass(ctx)
	if err != nil {
		t.Fatal(err)
	}
	bloom, err := NewBloomPass(ctx, 1, 25, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	after := newStub("after", true)
	c.AddPass(render)
	c.AddPass(bloom)
	c.AddPass(after)

	boom := errors.New("boom")
	ctx.DrawError = boom
	ctx.DrawErrorOn = ShaderConvolution

	before := ctx.State()
	scene, camera := testScene()
	err = c.Render(scene, camera)
	if !errors.Is(err, boom) {
		t.Fatalf("Render = %v, want boom", err)
	}
	if !strings.HasPrefix(err.Error(), "bloom:") {
		t.Errorf("error %q should name the failing pass", err)
	}
	if after.renders != 0 {
		t.Error("pass after the failure ran")
	}
	if n := ctx.Count(gfxtest.EventQuad, ShaderScreen); n != 0 {
		t.Errorf("screen blit ran %d times after failure", n)
	}
	if ctx.Screen.Content != "" {
		t.Errorf("screen = %q, want untouched", ctx.Screen.Content)
	}
	if got := ctx.State(); got != before {
		t.Errorf("state not restored after failure:\n got %+v\nwant %+v", got, before)
	}
}

func TestRenderRestoresBoundTarget(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	c.AddPass(newStub("a", true))
	mine := ctx.NewRenderTarget(8, 8, gfx.TargetOptions{})
	ctx.SetRenderTarget(mine)
	ctx.SetAutoClear(true)

	mustRender(t, c)

	if ctx.RenderTarget() != mine {
		t.Error("composer did not rebind the caller's target")
	}
	if !ctx.State().AutoClear {
		t.Error("composer did not restore auto clear")
	}
}

func TestFrameDeltaFeedsFilm(t *testing.T) {
	ctx, c := newTestComposer(t)
	defer c.Dispose()

	film, err := NewFilmPass(ctx, 0.5, 0.05, 4096, true)
	if err != nil {
		t.Fatal(err)
	}
	c.AddPass(film)
	mustRender(t, c)
	mustRender(t, c)

	if got := film.Time(); got < 0.031 || got > 0.033 {
		t.Errorf("film time = %v, want 0.032", got)
	}
	if c.Stats().Frame != 1 {
		t.Errorf("frame index = %d, want 1", c.Stats().Frame)
	}
}

func TestDispose(t *testing.T) {
	ctx, c := newTestComposer(t)
	p := newStub("a", true)
	c.AddPass(p)

	c.Dispose()
	c.Dispose()

	for _, rt := range ctx.Targets {
		if n := rt.Disposals(); n != 1 {
			t.Errorf("%s disposed %d times, want 1", rt.Label, n)
		}
	}
	for _, prog := range ctx.Programs {
		if n := prog.Disposals(); n != 1 {
			t.Errorf("program %s disposed %d times, want 1", prog.Name, n)
		}
	}
	if !p.Disposed() {
		t.Error("composer did not dispose its passes")
	}

	scene, camera := testScene()
	if err := c.Render(scene, camera); !errors.Is(err, ErrDisposed) {
		t.Errorf("Render after Dispose = %v, want ErrDisposed", err)
	}
}

func TestNewComposerCompileFailure(t *testing.T) {
	ctx := gfxtest.New(64, 64)
	boom := errors.New("link failed")
	ctx.CompileErrors = map[string]error{ShaderScreen: boom}

	if _, err := NewComposer(ctx, nil); !errors.Is(err, boom) {
		t.Fatalf("NewComposer = %v, want link failure", err)
	}
	if live := ctx.Live(); len(live) != 0 {
		t.Errorf("%d targets leaked", len(live))
	}
}
