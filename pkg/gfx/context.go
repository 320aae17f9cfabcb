package gfx

import "github.com/go-gl/mathgl/mgl32"

// CompareFunc is a depth/stencil comparison function
type CompareFunc int

const (
	Never CompareFunc = iota
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

// StencilOp is the action taken on the stencil buffer
type StencilOp int

const (
	Keep StencilOp = iota
	Zero
	Replace
	Incr
	Decr
	Invert
)

// StencilState mirrors the backend's stencil configuration. While Locked,
// SetStencilTest is ignored; function and op changes still apply.
type StencilState struct {
	Test   bool
	Func   CompareFunc
	Ref    int
	Mask   uint32
	Fail   StencilOp
	ZFail  StencilOp
	ZPass  StencilOp
	Clear  int
	Locked bool
}

// BlendMode selects a preset blend equation
type BlendMode int

const (
	NoBlending BlendMode = iota
	NormalBlending
	AdditiveBlending
	MultiplyBlending
	CustomBlending
)

// BlendFactor is a source/destination blend factor for CustomBlending
type BlendFactor int

const (
	FactorZero BlendFactor = iota
	FactorOne
	FactorSrcColor
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstColor
	FactorDstAlpha
	FactorOneMinusDstColor
)

// BlendEquation combines source and destination terms
type BlendEquation int

const (
	EquationAdd BlendEquation = iota
	EquationSubtract
	EquationReverseSubtract
)

// BlendOverride forces a blend mode on every draw while Active, ignoring
// the materials' own settings.
type BlendOverride struct {
	Active bool
	Mode   BlendMode
}

// State is a snapshot of everything a pass may change on the backend.
type State struct {
	Target      RenderTarget // nil is the visible framebuffer
	ClearColor  mgl32.Vec3
	ClearAlpha  float32
	AutoClear   bool
	ColorWrite  bool
	DepthWrite  bool
	ColorLocked bool
	DepthLocked bool
	Stencil     StencilState
	Blend       BlendOverride
}

// DefaultState is the state a freshly created backend starts in.
func DefaultState() State {
	return State{
		ClearAlpha: 1,
		AutoClear:  true,
		ColorWrite: true,
		DepthWrite: true,
		Stencil: StencilState{
			Func: Always,
			Mask: 0xffffffff,
		},
	}
}

// Context is the graphics backend. It is not safe for concurrent use; all
// calls happen on the thread that owns the GL context.
type Context interface {
	// Resource creation
	NewRenderTarget(width, height int, opts TargetOptions) RenderTarget
	NewMaterial(src ShaderSource) (*Material, error)
	NewDataTexture(width, height int, data []float32, opts TextureOptions) Texture

	// ViewportSize is the size of the visible framebuffer in pixels.
	ViewportSize() (width, height int)

	RenderTarget() RenderTarget
	SetRenderTarget(target RenderTarget)

	Clear(color, depth, stencil bool)
	SetClearColor(color mgl32.Vec3, alpha float32)
	SetAutoClear(enabled bool)

	SetColorWrite(enabled bool)
	SetDepthWrite(enabled bool)
	LockColor(locked bool)
	LockDepth(locked bool)

	SetStencilTest(enabled bool)
	SetStencilFunc(fn CompareFunc, ref int, mask uint32)
	SetStencilOp(fail, zfail, zpass StencilOp)
	SetStencilClear(value int)
	LockStencil(locked bool)

	SetBlendOverride(o BlendOverride)

	// State returns a snapshot; SetState applies one verbatim, ignoring locks.
	State() State
	SetState(s State)

	// Draw renders every visible object of scene with camera into the bound
	// target. The scene's override material, when set, replaces each
	// object's material. With AutoClear set the target is cleared first.
	Draw(scene *Scene, camera Camera) error
	// DrawFullScreen draws a single full-screen quad with material.
	DrawFullScreen(material *Material) error
}

// Preserve snapshots the backend state and returns a function restoring it.
// Use as `defer gfx.Preserve(ctx)()`.
func Preserve(ctx Context) func() {
	saved := ctx.State()
	return func() {
		ctx.SetState(saved)
	}
}
