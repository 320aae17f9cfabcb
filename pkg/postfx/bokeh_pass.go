package postfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// BokehPass blurs the image by distance from the focal plane. Depth comes
// from the frame's G-buffer when it is fresh, otherwise the pass renders
// its own.
type BokehPass struct {
	Base
	Focus    float32
	Aperture float32
	MaxBlur  float32

	aspect   float32
	depthRT  gfx.RenderTarget
	depth    *gfx.Material
	material *gfx.Material
	quad     *FullScreenQuad
}

func NewBokehPass(ctx gfx.Context, width, height int, focus, aperture, maxBlur float32) (*BokehPass, error) {
	depth, err := compile(ctx, "bokeh", DepthShader())
	if err != nil {
		return nil, err
	}
	depth.Blending = gfx.NoBlending

	m, err := compile(ctx, "bokeh", BokehShader())
	if err != nil {
		disposeAll(depth)
		return nil, err
	}

	p := &BokehPass{
		Base:     Base{Enabled: true, NeedsSwap: true},
		Focus:    focus,
		Aperture: aperture,
		MaxBlur:  maxBlur,
		depthRT:  ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Nearest, Depth: true}),
		depth:    depth,
		material: m,
		quad:     NewFullScreenQuad(m),
	}
	p.SetSize(width, height)
	return p, nil
}

func (p *BokehPass) Name() string { return "bokeh" }

func (p *BokehPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx

	depthTarget := p.depthRT
	if f.GBuffer.Fresh(f.Index, p.depthRT.Width(), p.depthRT.Height()) {
		depthTarget = f.GBuffer.Depth
	} else if err := drawOverride(f, p.depth, p.depthRT, mgl32.Vec3{1, 1, 1}, 1); err != nil {
		return err
	}

	u := p.material.Uniforms
	u.Set("tColor", read.Texture())
	u.Set("tDepth", depthTarget.Texture())
	u.Set("focus", p.Focus)
	u.Set("aspect", p.aspect)
	u.Set("aperture", p.Aperture)
	u.Set("maxblur", p.MaxBlur)
	u.Set("nearClip", f.Camera.Near())
	u.Set("farClip", f.Camera.Far())

	ctx.SetRenderTarget(write)
	if p.Clear {
		ctx.Clear(true, true, false)
	}
	return p.quad.Render(ctx)
}

func (p *BokehPass) SetSize(width, height int) {
	p.depthRT.SetSize(width, height)
	if height > 0 {
		p.aspect = float32(width) / float32(height)
	}
}

func (p *BokehPass) Dispose() {
	if !p.markDisposed() {
		return
	}
	p.depthRT.Dispose()
	disposeAll(p.depth, p.material)
}
