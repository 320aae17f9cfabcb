package postfx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"postfx/pkg/gfx"
)

var (
	ErrUnknownPass     = errors.New("unknown pass")
	ErrUnpairedMask    = errors.New("mask pass without matching clear mask pass")
	ErrIndexOutOfRange = errors.New("pass index out of range")
	ErrDisposed        = errors.New("composer disposed")
)

// Pass is one stage of the pipeline. The set of passes is closed: every
// implementation embeds Base.
type Pass interface {
	// Name identifies the pass in logs and errors
	Name() string
	// Render performs the pass's GPU work. Input comes from read (or the
	// live scene for scene passes); output goes to write unless the pass
	// documents another destination.
	Render(f *Frame, write, read gfx.RenderTarget, maskActive bool) error
	// SetSize resizes private targets and size-dependent uniforms.
	SetSize(width, height int)
	// Dispose releases owned targets and materials. Safe to call twice.
	Dispose()
	// Flags exposes the flags the composer acts on
	Flags() *Base

	sealed()
}

// Base carries the flags shared by every pass.
type Base struct {
	Enabled   bool
	NeedsSwap bool
	Clear     bool
	// AutoClear is applied to the backend while the pass renders
	AutoClear bool

	disposed bool
}

func (b *Base) Flags() *Base { return b }
func (b *Base) sealed() {}

// markDisposed reports whether this is the first call
func (b *Base) markDisposed() bool {
	if b.disposed {
		return false
	}
	b.disposed = true
	return true
}

// Disposed reports whether Dispose has run
func (b *Base) Disposed() bool { return b.disposed }

// Frame is what the composer hands every pass for one Render call. Passes
// must not keep it after returning.
type Frame struct {
	Ctx     gfx.Context
	Scene   *gfx.Scene
	Camera  gfx.Camera
	GBuffer *GBuffer
	Index   uint64
	Delta   float32 // seconds since the previous frame
}

// GBuffer holds the composer-owned packed-depth and view-normal targets.
// RenderPass fills them; later passes may sample them.
type GBuffer struct {
	Depth  gfx.RenderTarget
	Normal gfx.RenderTarget

	filled uint64 // frame index + 1 of the last fill, 0 if never
}

func newGBuffer(ctx gfx.Context, width, height int) *GBuffer {
	return &GBuffer{
		Depth:  ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Nearest, Depth: true}),
		Normal: ctx.NewRenderTarget(width, height, gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Nearest, Depth: true}),
	}
}

func (g *GBuffer) SetSize(width, height int) {
	g.Depth.SetSize(width, height)
	g.Normal.SetSize(width, height)
	g.filled = 0
}

// MarkFilled records that the targets hold the scene of frame index
func (g *GBuffer) MarkFilled(index uint64) {
	g.filled = index + 1
}

// Fresh reports whether the targets were filled during frame index at the
// given size.
func (g *GBuffer) Fresh(index uint64, width, height int) bool {
	if g == nil || g.filled != index+1 {
		return false
	}
	return g.Normal.Width() == width && g.Normal.Height() == height
}

func (g *GBuffer) Dispose() {
	g.Depth.Dispose()
	g.Normal.Dispose()
}

// FullScreenQuad draws one screen-covering quad with a material.
type FullScreenQuad struct {
	Material *gfx.Material
}

func NewFullScreenQuad(material *gfx.Material) *FullScreenQuad {
	return &FullScreenQuad{Material: material}
}

func (q *FullScreenQuad) Render(ctx gfx.Context) error {
	return ctx.DrawFullScreen(q.Material)
}

// suspendMask turns the stencil test off for renders into private targets,
// which carry no mask. The returned function turns it back on.
func suspendMask(ctx gfx.Context, maskActive bool) func() {
	if !maskActive {
		return func() {}
	}
	ctx.LockStencil(false)
	ctx.SetStencilTest(false)
	return func() {
		ctx.SetStencilTest(true)
		ctx.LockStencil(true)
	}
}

// compile builds a material and tags failures with the owning pass
func compile(ctx gfx.Context, pass string, src gfx.ShaderSource) (*gfx.Material, error) {
	m, err := ctx.NewMaterial(src)
	if err != nil {
		return nil, fmt.Errorf("%s: compiling %s shader: %w", pass, src.Name, err)
	}
	return m, nil
}

// disposeAll releases materials, skipping nils left by a failed constructor
func disposeAll(materials ...*gfx.Material) {
	for _, m := range materials {
		if m != nil {
			m.Dispose()
		}
	}
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	// NaN and Inf are returned unchanged
	if strings.ContainsAny(s, ".IN") {
		return s
	}
	return s + ".0"
}
