package postfx

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/noise"
	"postfx/internal/util"
	"postfx/pkg/gfx"
)

// SSAOOutput selects what SSAOPass writes to its destination
type SSAOOutput int

const (
	OutputDefault SSAOOutput = iota // beauty darkened by blurred occlusion
	OutputSSAO
	OutputBlur
	OutputBeauty
	OutputDepth
	OutputNormal
)

var ssaoOutputNames = []string{"default", "ssao", "blur", "beauty", "depth", "normal"}

func (o SSAOOutput) String() string {
	if o < 0 || int(o) >= len(ssaoOutputNames) {
		return fmt.Sprintf("SSAOOutput(%d)", int(o))
	}
	return ssaoOutputNames[o]
}

// ParseSSAOOutput maps a config name to an output mode. Empty means default.
func ParseSSAOOutput(s string) (SSAOOutput, error) {
	if s == "" {
		return OutputDefault, nil
	}
	for i, name := range ssaoOutputNames {
		if strings.EqualFold(s, name) {
			return SSAOOutput(i), nil
		}
	}
	return OutputDefault, fmt.Errorf("unknown ssao output %q", s)
}

// Next cycles through the output modes
func (o SSAOOutput) Next() SSAOOutput {
	return SSAOOutput((int(o) + 1) % len(ssaoOutputNames))
}

const noiseTileSize = 4

// SSAOPass estimates screen-space ambient occlusion. Each frame it renders
// beauty and normals, computes raw occlusion from a hemisphere kernel,
// blurs it and composites according to Output.
type SSAOPass struct {
	Base
	KernelRadius float32
	MinDistance  float32
	MaxDistance  float32
	Output       SSAOOutput

	width, height int
	kernel        []mgl32.Vec3
	noiseTexture  gfx.Texture

	beautyRT gfx.RenderTarget
	normalRT gfx.RenderTarget
	ssaoRT   gfx.RenderTarget
	blurRT   gfx.RenderTarget

	ssaoMaterial   *gfx.Material
	normalMaterial *gfx.Material
	blurMaterial   *gfx.Material
	depthMaterial  *gfx.Material
	copyMaterial   *gfx.Material
	quad           *FullScreenQuad
}

// NewSSAOPass creates the pass with kernelSize samples. Kernel and noise
// are drawn from rng.
func NewSSAOPass(ctx gfx.Context, width, height, kernelSize int, rng *noise.Generator) (*SSAOPass, error) {
	p := &SSAOPass{
		Base:         Base{Enabled: true, NeedsSwap: true, Clear: true},
		KernelRadius: 8,
		MinDistance:  0.005,
		MaxDistance:  0.1,
		width:        width,
		height:       height,
		kernel:       GenerateKernel(kernelSize, rng),
	}

	var err error
	if p.ssaoMaterial, err = compile(ctx, p.Name(), SSAOShader(kernelSize)); err != nil {
		return nil, err
	}
	if p.normalMaterial, err = compile(ctx, p.Name(), NormalShader()); err != nil {
		p.disposeMaterials()
		return nil, err
	}
	if p.blurMaterial, err = compile(ctx, p.Name(), SSAOBlurShader()); err != nil {
		p.disposeMaterials()
		return nil, err
	}
	if p.depthMaterial, err = compile(ctx, p.Name(), SSAODepthShader()); err != nil {
		p.disposeMaterials()
		return nil, err
	}
	if p.copyMaterial, err = compile(ctx, p.Name(), CopyShader()); err != nil {
		p.disposeMaterials()
		return nil, err
	}
	p.normalMaterial.Blending = gfx.NoBlending
	p.copyMaterial.Transparent = true
	p.copyMaterial.DepthTest = false
	p.copyMaterial.DepthWrite = false
	p.quad = NewFullScreenQuad(p.copyMaterial)

	p.noiseTexture = ctx.NewDataTexture(noiseTileSize, noiseTileSize, rng.RotationTile(noiseTileSize, noiseTileSize), gfx.TextureOptions{
		Format: gfx.RGBA32F,
		Filter: gfx.Nearest,
		Wrap:   gfx.Repeat,
	})

	p.beautyRT = ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Linear, Depth: true})
	p.normalRT = ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Nearest, Depth: true})
	p.ssaoRT = ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Linear})
	p.blurRT = ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Linear})

	p.ssaoMaterial.Uniforms.Set("kernel", p.kernel)
	p.ssaoMaterial.Uniforms.Set("tNoise", p.noiseTexture)
	p.ssaoMaterial.Uniforms.Set("tDepth", p.beautyRT.DepthTexture())
	p.depthMaterial.Uniforms.Set("tDepth", p.beautyRT.DepthTexture())
	p.SetSize(width, height)
	return p, nil
}

// GenerateKernel returns size hemisphere samples (z >= 0, length <= 1)
// scaled so later samples reach further from the origin.
func GenerateKernel(size int, rng *noise.Generator) []mgl32.Vec3 {
	kernel := make([]mgl32.Vec3, size)
	for i := range kernel {
		sample := mgl32.Vec3{
			float32(rng.Float()*2 - 1),
			float32(rng.Float()*2 - 1),
			float32(rng.Float()),
		}
		if sample.Len() == 0 {
			sample = mgl32.Vec3{0, 0, 1}
		}
		sample = sample.Normalize()

		scale := float64(i) / float64(size)
		scale = util.Lerp(0.1, 1, scale*scale)
		kernel[i] = sample.Mul(float32(scale))
	}
	return kernel
}

func (p *SSAOPass) Name() string { return "ssao" }

// Kernel returns the sample kernel
func (p *SSAOPass) Kernel() []mgl32.Vec3 { return p.kernel }

func (p *SSAOPass) Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error {
	ctx := f.Ctx
	defer gfx.Preserve(ctx)()
	ctx.SetAutoClear(false)
	resume := suspendMask(ctx, maskActive)

	// beauty
	ctx.SetRenderTarget(p.beautyRT)
	ctx.Clear(true, true, true)
	if err := ctx.Draw(f.Scene, f.Camera); err != nil {
		return err
	}

	// normals, reusing the G-buffer when it already holds this frame
	normals := p.normalRT
	if f.GBuffer.Fresh(f.Index, p.width, p.height) {
		normals = f.GBuffer.Normal
	} else if err := p.renderNormals(f); err != nil {
		return err
	}

	// occlusion
	proj := f.Camera.ProjectionMatrix()
	u := p.ssaoMaterial.Uniforms
	u.Set("tNormal", normals.Texture())
	u.Set("cameraNear", f.Camera.Near())
	u.Set("cameraFar", f.Camera.Far())
	u.Set("cameraProjectionMatrix", proj)
	u.Set("cameraInverseProjectionMatrix", proj.Inv())
	u.Set("kernelRadius", p.KernelRadius)
	u.Set("minDistance", p.MinDistance)
	u.Set("maxDistance", p.MaxDistance)
	if err := p.renderQuad(ctx, p.ssaoMaterial, p.ssaoRT, true); err != nil {
		return err
	}

	// blur
	p.blurMaterial.Uniforms.Set("tDiffuse", p.ssaoRT.Texture())
	if err := p.renderQuad(ctx, p.blurMaterial, p.blurRT, true); err != nil {
		return err
	}

	resume()
	switch p.Output {
	case OutputSSAO:
		return p.copyTo(ctx, p.ssaoRT, write, gfx.NoBlending)
	case OutputBlur:
		return p.copyTo(ctx, p.blurRT, write, gfx.NoBlending)
	case OutputBeauty:
		return p.copyTo(ctx, p.beautyRT, write, gfx.NoBlending)
	case OutputNormal:
		return p.copyTo(ctx, normals, write, gfx.NoBlending)
	case OutputDepth:
		p.depthMaterial.Uniforms.Set("cameraNear", f.Camera.Near())
		p.depthMaterial.Uniforms.Set("cameraFar", f.Camera.Far())
		return p.renderQuad(ctx, p.depthMaterial, write, p.Clear)
	default:
		if err := p.copyTo(ctx, p.beautyRT, write, gfx.NoBlending); err != nil {
			return err
		}
		return p.copyTo(ctx, p.blurRT, write, gfx.CustomBlending)
	}
}

// renderNormals draws the scene with the normal material into normalRT
// with blending forced off.
func (p *SSAOPass) renderNormals(f *Frame) error {
	defer gfx.Preserve(f.Ctx)()
	f.Ctx.SetBlendOverride(gfx.BlendOverride{Active: true, Mode: gfx.NoBlending})
	return drawOverride(f, p.normalMaterial, p.normalRT, mgl32.Vec3{0.5, 0.5, 1}, 1)
}

// copyTo draws src into dst with the copy material. CustomBlending
// multiplies the destination by the source.
func (p *SSAOPass) copyTo(ctx gfx.Context, src, dst gfx.RenderTarget, blending gfx.BlendMode) error {
	m := p.copyMaterial
	m.Uniforms.Set("tDiffuse", src.Texture())
	m.Uniforms.Set("opacity", float32(1))
	m.Blending = blending
	if blending == gfx.CustomBlending {
		m.BlendSrc = gfx.FactorDstColor
		m.BlendDst = gfx.FactorZero
		m.BlendEquation = gfx.EquationAdd
	}
	return p.renderQuad(ctx, m, dst, blending == gfx.NoBlending && p.Clear)
}

func (p *SSAOPass) renderQuad(ctx gfx.Context, m *gfx.Material, dst gfx.RenderTarget, clear bool) error {
	ctx.SetRenderTarget(dst)
	if clear {
		ctx.SetClearColor(mgl32.Vec3{0, 0, 0}, 1)
		ctx.Clear(true, true, false)
	}
	p.quad.Material = m
	return p.quad.Render(ctx)
}

func (p *SSAOPass) SetSize(width, height int) {
	p.width, p.height = width, height

	p.beautyRT.SetSize(width, height)
	p.normalRT.SetSize(width, height)
	p.ssaoRT.SetSize(width, height)
	p.blurRT.SetSize(width, height)

	resolution := mgl32.Vec2{float32(width), float32(height)}
	p.ssaoMaterial.Uniforms.Set("resolution", resolution)
	p.blurMaterial.Uniforms.Set("resolution", resolution)
}

func (p *SSAOPass) Dispose() {
	if !p.markDisposed() {
		return
	}
	p.beautyRT.Dispose()
	p.normalRT.Dispose()
	p.ssaoRT.Dispose()
	p.blurRT.Dispose()
	p.noiseTexture.Dispose()
	p.disposeMaterials()
}

func (p *SSAOPass) disposeMaterials() {
	disposeAll(p.ssaoMaterial, p.normalMaterial, p.blurMaterial, p.depthMaterial, p.copyMaterial)
}
