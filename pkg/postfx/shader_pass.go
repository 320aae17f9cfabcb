package postfx

import (
	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// ShaderPass runs one full-screen shader over the read buffer into the
// write buffer.
type ShaderPass struct {
	Base
	// TextureID is the sampler uniform fed with the read buffer
	TextureID string
	Material  *gfx.Material

	quad *FullScreenQuad
}

// NewShaderPass compiles src. An empty textureID defaults to "tDiffuse".
func NewShaderPass(ctx gfx.Context, src gfx.ShaderSource, textureID string) (*ShaderPass, error) {
	if textureID == "" {
		textureID = "tDiffuse"
	}
	m, err := compile(ctx, src.Name, src)
	if err != nil {
		return nil, err
	}
	return &ShaderPass{
		Base:      Base{Enabled: true, NeedsSwap: true},
		TextureID: textureID,
		Material:  m,
		quad:      NewFullScreenQuad(m),
	}, nil
}

func (p *ShaderPass) Name() string { return p.Material.Name }

func (p *ShaderPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	p.Material.Uniforms.Set(p.TextureID, read.Texture())
	f.Ctx.SetRenderTarget(write)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *ShaderPass) SetSize(width, height int) {}

func (p *ShaderPass) Dispose() {
	if p.markDisposed() {
		p.Material.Dispose()
	}
}

// ToScreenPass blits the latest image to the visible framebuffer. The
// composer runs it after the pass list on every frame.
type ToScreenPass struct {
	Base
	material *gfx.Material
	quad     *FullScreenQuad
}

func NewToScreenPass(ctx gfx.Context) (*ToScreenPass, error) {
	m, err := compile(ctx, "to screen", ScreenShader())
	if err != nil {
		return nil, err
	}
	return &ToScreenPass{
		Base:     Base{Enabled: true},
		material: m,
		quad:     NewFullScreenQuad(m),
	}, nil
}

func (p *ToScreenPass) Name() string { return "to_screen" }

// Render samples read, which holds the newest image once the composer has
// swapped after the last producing pass.
func (p *ToScreenPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	p.material.Uniforms.Set("tDiffuse", read.Texture())
	f.Ctx.SetRenderTarget(nil)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *ToScreenPass) SetSize(width, height int) {}

func (p *ToScreenPass) Dispose() {
	if p.markDisposed() {
		p.material.Dispose()
	}
}

// TexturePass blends a texture over the read buffer in place.
type TexturePass struct {
	Base
	Texture gfx.Texture
	Opacity float32

	ownsTexture bool
	material    *gfx.Material
	quad        *FullScreenQuad
}

// NewTexturePass overlays tex at opacity. The pass does not take ownership
// of tex.
func NewTexturePass(ctx gfx.Context, tex gfx.Texture, opacity float32) (*TexturePass, error) {
	m, err := compile(ctx, "texture", CopyShader())
	if err != nil {
		return nil, err
	}
	m.Transparent = true
	m.Blending = gfx.NormalBlending
	m.DepthTest = false
	m.DepthWrite = false
	return &TexturePass{
		Base:     Base{Enabled: true},
		Texture:  tex,
		Opacity:  opacity,
		material: m,
		quad:     NewFullScreenQuad(m),
	}, nil
}

func (p *TexturePass) Name() string { return "texture" }

func (p *TexturePass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()

	p.material.Uniforms.Set("tDiffuse", p.Texture)
	p.material.Uniforms.Set("opacity", p.Opacity)
	ctx.SetRenderTarget(read)
	if p.Clear {
		ctx.Clear(true, true, false)
	}
	return p.quad.Render(ctx)
}

func (p *TexturePass) SetSize(width, height int) {}

func (p *TexturePass) Dispose() {
	if !p.markDisposed() {
		return
	}
	p.material.Dispose()
	if p.ownsTexture && p.Texture != nil {
		p.Texture.Dispose()
	}
}

// FilmPass adds animated grain and scanlines
type FilmPass struct {
	Base
	Noise         float32
	Scanlines     float32
	ScanlineCount float32
	Grayscale     bool

	time     float32
	material *gfx.Material
	quad     *FullScreenQuad
}

func NewFilmPass(ctx gfx.Context, noise, scanlines, scanlineCount float32, grayscale bool) (*FilmPass, error) {
	m, err := compile(ctx, "film", FilmShader())
	if err != nil {
		return nil, err
	}
	return &FilmPass{
		Base:          Base{Enabled: true, NeedsSwap: true},
		Noise:         noise,
		Scanlines:     scanlines,
		ScanlineCount: scanlineCount,
		Grayscale:     grayscale,
		material:      m,
		quad:          NewFullScreenQuad(m),
	}, nil
}

func (p *FilmPass) Name() string { return "film" }

// Time is the accumulated animation time in seconds
func (p *FilmPass) Time() float32 { return p.time }

func (p *FilmPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	p.time += f.Delta

	u := p.material.Uniforms
	u.Set("tDiffuse", read.Texture())
	u.Set("time", p.time)
	u.Set("nIntensity", p.Noise)
	u.Set("sIntensity", p.Scanlines)
	u.Set("sCount", p.ScanlineCount)
	u.Set("grayscale", p.Grayscale)

	f.Ctx.SetRenderTarget(write)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *FilmPass) SetSize(width, height int) {}

func (p *FilmPass) Dispose() {
	if p.markDisposed() {
		p.material.Dispose()
	}
}

// DotScreenPass renders the image as a rotated monochrome dot pattern
type DotScreenPass struct {
	Base
	Center mgl32.Vec2
	Angle  float32
	Scale  float32

	material *gfx.Material
	quad     *FullScreenQuad
}

func NewDotScreenPass(ctx gfx.Context, center mgl32.Vec2, angle, scale float32) (*DotScreenPass, error) {
	m, err := compile(ctx, "dotscreen", DotScreenShader())
	if err != nil {
		return nil, err
	}
	return &DotScreenPass{
		Base:     Base{Enabled: true, NeedsSwap: true},
		Center:   center,
		Angle:    angle,
		Scale:    scale,
		material: m,
		quad:     NewFullScreenQuad(m),
	}, nil
}

func (p *DotScreenPass) Name() string { return "dotscreen" }

func (p *DotScreenPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	u := p.material.Uniforms
	u.Set("tDiffuse", read.Texture())
	u.Set("center", p.Center)
	u.Set("angle", p.Angle)
	u.Set("scale", p.Scale)

	f.Ctx.SetRenderTarget(write)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *DotScreenPass) SetSize(width, height int) {
	p.material.Uniforms.Set("tSize", mgl32.Vec2{float32(width), float32(height)})
}

func (p *DotScreenPass) Dispose() {
	if p.markDisposed() {
		p.material.Dispose()
	}
}

// HalftoneShape selects the halftone dot shape
type HalftoneShape int32

const (
	HalftoneDot HalftoneShape = iota + 1
	HalftoneEllipse
	HalftoneLine
	HalftoneSquare
)

// HalftoneBlend selects how the pattern is mixed with the source image
type HalftoneBlend int32

const (
	BlendLinear HalftoneBlend = iota + 1
	BlendMultiply
	BlendAdd
	BlendLighter
	BlendDarker
)

// HalftoneParams are the tunable halftone settings
type HalftoneParams struct {
	Shape        HalftoneShape
	Radius       float32
	RotateR      float32
	RotateG      float32
	RotateB      float32
	Scatter      float32
	Blending     float32
	BlendingMode HalftoneBlend
	Greyscale    bool
	Disable      bool
}

// DefaultHalftoneParams returns CMY-style dots rotated 15/30/45 degrees
func DefaultHalftoneParams() HalftoneParams {
	return HalftoneParams{
		Shape:        HalftoneDot,
		Radius:       4,
		RotateR:      mgl32.DegToRad(15),
		RotateG:      mgl32.DegToRad(30),
		RotateB:      mgl32.DegToRad(45),
		Blending:     1,
		BlendingMode: BlendLinear,
	}
}

// HalftonePass simulates print halftoning per colour channel
type HalftonePass struct {
	Base
	Params HalftoneParams

	material *gfx.Material
	quad     *FullScreenQuad
}

func NewHalftonePass(ctx gfx.Context, width, height int, params HalftoneParams) (*HalftonePass, error) {
	m, err := compile(ctx, "halftone", HalftoneShader())
	if err != nil {
		return nil, err
	}
	p := &HalftonePass{
		Base:     Base{Enabled: true, NeedsSwap: true},
		Params:   params,
		material: m,
		quad:     NewFullScreenQuad(m),
	}
	p.SetSize(width, height)
	return p, nil
}

func (p *HalftonePass) Name() string { return "halftone" }

func (p *HalftonePass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	u := p.material.Uniforms
	u.Set("tDiffuse", read.Texture())
	u.Set("shape", int32(p.Params.Shape))
	u.Set("radius", p.Params.Radius)
	u.Set("rotateR", p.Params.RotateR)
	u.Set("rotateG", p.Params.RotateG)
	u.Set("rotateB", p.Params.RotateB)
	u.Set("scatter", p.Params.Scatter)
	u.Set("blending", p.Params.Blending)
	u.Set("blendingMode", int32(p.Params.BlendingMode))
	u.Set("greyscale", p.Params.Greyscale)
	u.Set("disable", p.Params.Disable)

	f.Ctx.SetRenderTarget(write)
	if p.Clear {
		f.Ctx.Clear(true, true, false)
	}
	return p.quad.Render(f.Ctx)
}

func (p *HalftonePass) SetSize(width, height int) {
	p.material.Uniforms.Set("width", float32(width))
	p.material.Uniforms.Set("height", float32(height))
}

func (p *HalftonePass) Dispose() {
	if p.markDisposed() {
		p.material.Dispose()
	}
}
