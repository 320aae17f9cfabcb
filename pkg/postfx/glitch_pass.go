package postfx

import (
	"math"

	"postfx/internal/noise"
	"postfx/pkg/gfx"
)

// GlitchPass shifts and tears the image in bursts. Between bursts frames
// pass through untouched unless GoWild is set.
type GlitchPass struct {
	Base
	GoWild bool

	rng      *noise.Generator
	frame    int
	trigger  int
	disp     gfx.Texture
	material *gfx.Material
	quad     *FullScreenQuad
}

// NewGlitchPass creates the pass with a dtSize x dtSize random
// displacement map drawn from rng.
func NewGlitchPass(ctx gfx.Context, dtSize int, rng *noise.Generator) (*GlitchPass, error) {
	m, err := compile(ctx, "glitch", GlitchShader())
	if err != nil {
		return nil, err
	}
	p := &GlitchPass{
		Base:     Base{Enabled: true, NeedsSwap: true},
		rng:      rng,
		material: m,
		quad:     NewFullScreenQuad(m),
	}
	p.disp = ctx.NewDataTexture(dtSize, dtSize, heightMap(dtSize, rng), gfx.TextureOptions{
		Format: gfx.RGBA32F,
		Filter: gfx.Nearest,
		Wrap:   gfx.Repeat,
	})
	m.Uniforms.Set("tDisp", p.disp)
	p.nextTrigger()
	return p, nil
}

func heightMap(size int, rng *noise.Generator) []float32 {
	data := make([]float32, size*size*4)
	for i := 0; i < size*size; i++ {
		v := float32(rng.Float())
		data[i*4] = v
		data[i*4+1] = v
		data[i*4+2] = v
		data[i*4+3] = 1
	}
	return data
}

// nextTrigger picks the frame count until the next burst, 120 to 240
func (p *GlitchPass) nextTrigger() {
	p.trigger = 120 + int(p.rng.Float()*121)
}

func (p *GlitchPass) Name() string { return "glitch" }

func (p *GlitchPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	u := p.material.Uniforms
	u.Set("tDiffuse", read.Texture())
	u.Set("seed", float32(p.rng.Float()))
	u.Set("byp", int32(0))

	switch {
	case p.frame%p.trigger == 0 || p.GoWild:
		u.Set("amount", float32(p.rng.Float()/30))
		u.Set("angle", float32(p.rng.Range(-math.Pi, math.Pi)))
		u.Set("seed_x", float32(p.rng.Range(-1, 1)))
		u.Set("seed_y", float32(p.rng.Range(-1, 1)))
		u.Set("distortion_x", float32(p.rng.Float()))
		u.Set("distortion_y", float32(p.rng.Float()))
		p.frame = 0
		p.nextTrigger()
	case p.frame%p.trigger < p.trigger/5:
		u.Set("amount", float32(p.rng.Float()/90))
		u.Set("angle", float32(p.rng.Range(-math.Pi, math.Pi)))
		u.Set("distortion_x", float32(p.rng.Float()))
		u.Set("distortion_y", float32(p.rng.Float()))
		u.Set("seed_x", float32(p.rng.Range(-0.3, 0.3)))
		u.Set("seed_y", float32(p.rng.Range(-0.3, 0.3)))
	default:
		u.Set("byp", int32(1))
	}
	p.frame++

	f.Ctx.SetRenderTarget(write)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *GlitchPass) SetSize(width, height int) {}

func (p *GlitchPass) Dispose() {
	if !p.markDisposed() {
		return
	}
	p.material.Dispose()
	p.disp.Dispose()
}
