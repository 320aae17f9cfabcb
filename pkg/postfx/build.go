package postfx

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/logger"
	"postfx/internal/noise"
	"postfx/pkg/config"
	"postfx/pkg/gfx"
)

// Build creates a composer sized to the viewport and fills it with the
// passes described by cfg.Pipeline, in order.
func Build(ctx gfx.Context, cfg *config.Config, log *logger.Logger) (*Composer, error) {
	if log == nil {
		log = logger.Discard()
	}

	format := gfx.RGBA8
	if cfg.Graphics.HDR {
		format = gfx.RGBA16F
	}
	composer, err := NewComposer(ctx, nil,
		WithLogger(log),
		WithPixelRatio(cfg.Graphics.PixelRatio),
		WithTargetOptions(gfx.TargetOptions{Format: format, Filter: gfx.Linear, Depth: true}),
	)
	if err != nil {
		return nil, err
	}

	rng := noise.NewGenerator(cfg.Seed)
	log.WithPrefix("build").Debugf("seed %d", rng.Seed())

	w, h := composer.scaledSize()
	for i, pc := range cfg.Pipeline {
		pass, err := NewPass(ctx, pc, w, h, rng)
		if err != nil {
			composer.Dispose()
			return nil, fmt.Errorf("pipeline[%d]: %w", i, err)
		}
		pass.Flags().Enabled = pc.Enabled
		composer.AddPass(pass)
	}

	if err := composer.Validate(); err != nil {
		composer.Dispose()
		return nil, err
	}
	log.WithPrefix("build").Infof("pipeline ready with %d passes", len(cfg.Pipeline))
	return composer, nil
}

// NewPass creates one pass from its description. width and height are the
// scaled target size; rng feeds passes that need random data.
func NewPass(ctx gfx.Context, pc config.PassConfig, width, height int, rng *noise.Generator) (Pass, error) {
	if err := pc.ValidateParams(); err != nil {
		return nil, err
	}
	defaults := config.DefaultPass(pc.Type)

	switch pc.Type {
	case config.PassRender:
		params := orDefault(pc.Render, defaults.Render)
		p, err := NewRenderPass(ctx)
		if err != nil {
			return nil, err
		}
		p.Clear = params.Clear
		p.ClearDepth = params.ClearDepth
		p.ClearAlpha = float32(params.ClearAlpha)
		if len(params.ClearColor) >= 3 {
			c := mgl32.Vec3{float32(params.ClearColor[0]), float32(params.ClearColor[1]), float32(params.ClearColor[2])}
			p.ClearColor = &c
		}
		return p, nil

	case config.PassMask:
		params := orDefault(pc.Mask, defaults.Mask)
		p := NewMaskPass()
		p.Inverse = params.Inverse
		return p, nil

	case config.PassClearMask:
		return NewClearMaskPass(), nil

	case config.PassCopy:
		params := orDefault(pc.Copy, defaults.Copy)
		p, err := NewShaderPass(ctx, CopyShader(), "tDiffuse")
		if err != nil {
			return nil, err
		}
		p.Material.Uniforms.Set("opacity", float32(params.Opacity))
		return p, nil

	case config.PassTexture:
		params := orDefault(pc.Texture, defaults.Texture)
		tex := ctx.NewDataTexture(params.Size, params.Size, vignette(params.Size, params.Vignette), gfx.TextureOptions{
			Format: gfx.RGBA32F,
			Filter: gfx.Linear,
			Wrap:   gfx.ClampToEdge,
		})
		p, err := NewTexturePass(ctx, tex, float32(params.Opacity))
		if err != nil {
			tex.Dispose()
			return nil, err
		}
		p.ownsTexture = true
		return p, nil

	case config.PassBloom:
		params := orDefault(pc.Bloom, defaults.Bloom)
		return NewBloomPass(ctx, float32(params.Strength), params.KernelSize, params.Sigma, params.Resolution)

	case config.PassFilm:
		params := orDefault(pc.Film, defaults.Film)
		return NewFilmPass(ctx, float32(params.Noise), float32(params.Scanlines), float32(params.ScanlineCount), params.Grayscale)

	case config.PassDotScreen:
		params := orDefault(pc.DotScreen, defaults.DotScreen)
		center := mgl32.Vec2{float32(params.CenterX), float32(params.CenterY)}
		return NewDotScreenPass(ctx, center, float32(params.Angle), float32(params.Scale))

	case config.PassHalftone:
		params := orDefault(pc.Halftone, defaults.Halftone)
		return NewHalftonePass(ctx, width, height, HalftoneParams{
			Shape:        HalftoneShape(params.Shape),
			Radius:       float32(params.Radius),
			RotateR:      float32(params.RotateR),
			RotateG:      float32(params.RotateG),
			RotateB:      float32(params.RotateB),
			Scatter:      float32(params.Scatter),
			Blending:     float32(params.Blending),
			BlendingMode: HalftoneBlend(params.BlendingMode),
			Greyscale:    params.Greyscale,
		})

	case config.PassGlitch:
		params := orDefault(pc.Glitch, defaults.Glitch)
		p, err := NewGlitchPass(ctx, params.DTSize, rng)
		if err != nil {
			return nil, err
		}
		p.GoWild = params.GoWild
		return p, nil

	case config.PassBokeh:
		params := orDefault(pc.Bokeh, defaults.Bokeh)
		return NewBokehPass(ctx, width, height, float32(params.Focus), float32(params.Aperture), float32(params.MaxBlur))

	case config.PassSSAO:
		params := orDefault(pc.SSAO, defaults.SSAO)
		output, err := ParseSSAOOutput(params.Output)
		if err != nil {
			return nil, err
		}
		p, err := NewSSAOPass(ctx, width, height, params.KernelSize, rng)
		if err != nil {
			return nil, err
		}
		p.KernelRadius = float32(params.KernelRadius)
		p.MinDistance = float32(params.MinDistance)
		p.MaxDistance = float32(params.MaxDistance)
		p.Output = output
		return p, nil
	}

	return nil, fmt.Errorf("%q: %w", pc.Type, ErrUnknownPass)
}

func orDefault[T any](v, def *T) *T {
	if v != nil {
		return v
	}
	return def
}

// vignette builds a size x size RGBA overlay that is transparent in the
// centre and darkens towards the corners by strength.
func vignette(size int, strength float64) []float32 {
	data := make([]float32, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x)+0.5)/float64(size)*2 - 1
			dy := (float64(y)+0.5)/float64(size)*2 - 1
			d := math.Min(math.Sqrt(dx*dx+dy*dy)/math.Sqrt2, 1)
			i := (y*size + x) * 4
			data[i+3] = float32(strength * d * d)
		}
	}
	return data
}
