package postfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// RenderPass draws the live scene into the read buffer so later passes take
// it as their input. It also fills the frame's G-buffer with packed depth
// and view-space normals.
type RenderPass struct {
	Base

	// OverrideMaterial, when set, replaces every object's material
	OverrideMaterial *gfx.Material
	// ClearColor, when set, is used instead of the backend's clear colour
	ClearColor *mgl32.Vec3
	ClearAlpha float32
	ClearDepth bool
	// FillGBuffer controls the depth/normal prepass
	FillGBuffer bool

	depthMaterial  *gfx.Material
	normalMaterial *gfx.Material
}

func NewRenderPass(ctx gfx.Context) (*RenderPass, error) {
	p := &RenderPass{
		Base:        Base{Enabled: true, Clear: true},
		FillGBuffer: true,
	}

	var err error
	if p.depthMaterial, err = compile(ctx, p.Name(), DepthShader()); err != nil {
		return nil, err
	}
	p.depthMaterial.Blending = gfx.NoBlending
	if p.normalMaterial, err = compile(ctx, p.Name(), NormalShader()); err != nil {
		disposeAll(p.depthMaterial)
		return nil, err
	}
	p.normalMaterial.Blending = gfx.NoBlending
	return p, nil
}

func (p *RenderPass) Name() string { return "render" }

func (p *RenderPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()

	if p.FillGBuffer && f.GBuffer != nil {
		if err := p.renderGBuffer(f); err != nil {
			return err
		}
	}

	if p.OverrideMaterial != nil {
		defer f.Scene.Override(p.OverrideMaterial)()
	}
	if p.ClearColor != nil {
		ctx.SetClearColor(*p.ClearColor, p.ClearAlpha)
	}

	ctx.SetRenderTarget(read)
	if p.ClearDepth {
		ctx.Clear(false, true, false)
	}
	if p.Clear {
		// keep the stencil mask intact while it is in use
		ctx.Clear(true, true, !maskActive)
	}
	return ctx.Draw(f.Scene, f.Camera)
}

func (p *RenderPass) renderGBuffer(f *Frame) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()
	ctx.SetBlendOverride(gfx.BlendOverride{Active: true, Mode: gfx.NoBlending})

	if err := drawOverride(f, p.depthMaterial, f.GBuffer.Depth, mgl32.Vec3{1, 1, 1}, 1); err != nil {
		return err
	}
	if err := drawOverride(f, p.normalMaterial, f.GBuffer.Normal, mgl32.Vec3{0.5, 0.5, 1}, 1); err != nil {
		return err
	}
	f.GBuffer.MarkFilled(f.Index)
	return nil
}

// drawOverride clears target to clearColor and draws the scene into it with
// every material replaced by m. Private targets carry no mask, so the
// stencil test is off for the draw.
func drawOverride(f *Frame, m *gfx.Material, target gfx.RenderTarget, clearColor mgl32.Vec3, clearAlpha float32) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()
	defer f.Scene.Override(m)()

	ctx.LockStencil(false)
	ctx.SetStencilTest(false)
	ctx.SetRenderTarget(target)
	ctx.SetAutoClear(false)
	ctx.SetClearColor(clearColor, clearAlpha)
	ctx.Clear(true, true, true)
	return ctx.Draw(f.Scene, f.Camera)
}

// SetSize is a no-op; the G-buffer belongs to the composer.
func (p *RenderPass) SetSize(width, height int) {}

func (p *RenderPass) Dispose() {
	if !p.markDisposed() {
		return
	}
	disposeAll(p.depthMaterial, p.normalMaterial)
}

// MaskPass writes the scene's silhouette into the stencil buffer of both
// ping-pong targets and leaves the stencil test enabled and locked so later
// passes only touch the masked region.
type MaskPass struct {
	Base
	Inverse bool
}

func NewMaskPass() *MaskPass {
	return &MaskPass{Base: Base{Enabled: true, Clear: true}}
}

func (p *MaskPass) Name() string { return "mask" }

func (p *MaskPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx
	restore := gfx.Preserve(ctx)

	ctx.SetColorWrite(false)
	ctx.SetDepthWrite(false)
	ctx.LockColor(true)
	ctx.LockDepth(true)

	writeValue, clearValue := 1, 0
	if p.Inverse {
		writeValue, clearValue = 0, 1
	}

	ctx.SetStencilTest(true)
	ctx.SetStencilOp(gfx.Replace, gfx.Replace, gfx.Replace)
	ctx.SetStencilFunc(gfx.Always, writeValue, 0xffffffff)
	ctx.SetStencilClear(clearValue)
	ctx.LockStencil(true)

	for _, target := range []gfx.RenderTarget{read, write} {
		ctx.SetRenderTarget(target)
		if p.Clear {
			ctx.Clear(true, true, true)
		}
		if err := ctx.Draw(f.Scene, f.Camera); err != nil {
			restore()
			return err
		}
	}

	ctx.LockColor(false)
	ctx.LockDepth(false)
	ctx.SetColorWrite(true)
	ctx.SetDepthWrite(true)

	ctx.LockStencil(false)
	ctx.SetStencilFunc(gfx.Equal, 1, 0xffffffff)
	ctx.SetStencilOp(gfx.Keep, gfx.Keep, gfx.Keep)
	ctx.LockStencil(true)
	return nil
}

func (p *MaskPass) SetSize(width, height int) {}
func (p *MaskPass) Dispose() { p.markDisposed() }

// ClearMaskPass ends the region started by a MaskPass
type ClearMaskPass struct {
	Base
}

func NewClearMaskPass() *ClearMaskPass {
	return &ClearMaskPass{Base: Base{Enabled: true}}
}

func (p *ClearMaskPass) Name() string { return "clear_mask" }

func (p *ClearMaskPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	f.Ctx.LockStencil(false)
	f.Ctx.SetStencilTest(false)
	return nil
}

func (p *ClearMaskPass) SetSize(width, height int) {}
func (p *ClearMaskPass) Dispose() { p.markDisposed() }
