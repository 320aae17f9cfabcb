package postfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// maxKernelSize caps the convolution taps
const maxKernelSize = 25

var (
	blurX = mgl32.Vec2{0.001953125, 0}
	blurY = mgl32.Vec2{0, 0.001953125}
)

// BuildKernel returns normalised Gaussian weights for sigma, using
// 2*ceil(3*sigma)+1 taps capped at maxSize and 25.
func BuildKernel(sigma float64, maxSize int) []float32 {
	size := 2*int(math.Ceil(sigma*3)) + 1
	if size > maxSize {
		size = maxSize
	}
	if size > maxKernelSize {
		size = maxKernelSize
	}
	if size < 1 {
		size = 1
	}

	half := float64(size-1) * 0.5
	values := make([]float32, size)
	var sum float64
	for i := range values {
		x := float64(i) - half
		v := math.Exp(-(x * x) / (2 * sigma * sigma))
		values[i] = float32(v)
		sum += v
	}
	for i := range values {
		values[i] = float32(float64(values[i]) / sum)
	}
	return values
}

// BloomPass blurs the read buffer horizontally then vertically in two
// fixed-size private targets and adds the result back onto the image.
type BloomPass struct {
	Base
	Strength float32

	resolution  int
	kernel      []float32
	rtX, rtY    gfx.RenderTarget
	convolution *gfx.Material
	combine     *gfx.Material
	quad        *FullScreenQuad
}

// NewBloomPass creates the pass. resolution is the side of the square blur
// targets and does not follow the viewport.
func NewBloomPass(ctx gfx.Context, strength float32, kernelSize int, sigma float64, resolution int) (*BloomPass, error) {
	kernel := BuildKernel(sigma, kernelSize)

	convolution, err := compile(ctx, "bloom", ConvolutionShader(len(kernel)))
	if err != nil {
		return nil, err
	}
	convolution.Uniforms.Set("cKernel", kernel)

	combine, err := compile(ctx, "bloom", BloomShader())
	if err != nil {
		disposeAll(convolution)
		return nil, err
	}

	opts := gfx.TargetOptions{Format: gfx.RGBA16F, Filter: gfx.Linear}
	return &BloomPass{
		Base:        Base{Enabled: true, NeedsSwap: true},
		Strength:    strength,
		resolution:  resolution,
		kernel:      kernel,
		rtX:         ctx.NewRenderTarget(resolution, resolution, opts),
		rtY:         ctx.NewRenderTarget(resolution, resolution, opts),
		convolution: convolution,
		combine:     combine,
		quad:        NewFullScreenQuad(convolution),
	}, nil
}

func (p *BloomPass) Name() string { return "bloom" }

// Kernel returns the convolution weights
func (p *BloomPass) Kernel() []float32 { return p.kernel }

func (p *BloomPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()

	resume := suspendMask(ctx, maskActive)

	p.quad.Material = p.convolution
	p.convolution.Uniforms.Set("tDiffuse", read.Texture())
	p.convolution.Uniforms.Set("uImageIncrement", blurX)
	ctx.SetRenderTarget(p.rtX)
	ctx.Clear(true, false, false)
	if err := p.quad.Render(ctx); err != nil {
		return err
	}

	p.convolution.Uniforms.Set("tDiffuse", p.rtX.Texture())
	p.convolution.Uniforms.Set("uImageIncrement", blurY)
	ctx.SetRenderTarget(p.rtY)
	ctx.Clear(true, false, false)
	if err := p.quad.Render(ctx); err != nil {
		return err
	}

	resume()

	p.quad.Material = p.combine
	p.combine.Uniforms.Set("tDiffuse", read.Texture())
	p.combine.Uniforms.Set("tBloom", p.rtY.Texture())
	p.combine.Uniforms.Set("strength", p.Strength)
	ctx.SetRenderTarget(write)
	if p.Clear {
		ctx.Clear(true, true, false)
	}
	return p.quad.Render(ctx)
}

// SetSize is a no-op; the blur targets keep their fixed resolution.
func (p *BloomPass) SetSize(width, height int) {}

func (p *BloomPass) Dispose() {
	if !p.markDisposed() {
		return
	}
	p.rtX.Dispose()
	p.rtY.Dispose()
	disposeAll(p.convolution, p.combine)
}
