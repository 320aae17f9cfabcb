package postfx

import (
	"fmt"
	"time"

	"postfx/internal/logger"
	"postfx/internal/util"
	"postfx/pkg/gfx"
)

// Stats summarises the last rendered frame
type Stats struct {
	Frame      uint64
	Passes     int // enabled passes that ran
	Swaps      int
	MaskActive bool // mask still active when the pass list ended
}

// Option configures a Composer
type Option func(*Composer)

// WithLogger sets the logger; the composer logs under a "composer" prefix.
func WithLogger(log *logger.Logger) Option {
	return func(c *Composer) {
		if log != nil {
			c.log = log.WithPrefix("composer")
		}
	}
}

// WithPixelRatio sets the initial device pixel ratio
func WithPixelRatio(ratio float64) Option {
	return func(c *Composer) {
		if ratio > 0 {
			c.pixelRatio = ratio
		}
	}
}

// WithClock replaces time.Now for frame delta computation
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.clock = now
	}
}

// WithTargetOptions sets the format of ping-pong targets the composer
// allocates itself.
func WithTargetOptions(opts gfx.TargetOptions) Option {
	return func(c *Composer) {
		c.targetOpts = opts
	}
}

// Composer runs an ordered list of passes over two ping-pong render
// targets and blits the result to the screen. Not safe for concurrent use.
type Composer struct {
	ctx gfx.Context
	log *logger.Logger

	rt1, rt2    gfx.RenderTarget
	write, read gfx.RenderTarget
	gbuffer     *GBuffer
	targetOpts  gfx.TargetOptions

	passes   []Pass
	copyPass *ShaderPass
	toScreen *ToScreenPass

	width, height int
	pixelRatio    float64

	clock    func() time.Time
	last     time.Time
	frame    uint64
	stats    Stats
	disposed bool
}

// NewComposer creates a composer drawing through ctx. When target is nil
// both ping-pong targets are allocated at the viewport size; otherwise
// target is adopted as the first one and the second copies its options.
func NewComposer(ctx gfx.Context, target gfx.RenderTarget, opts ...Option) (*Composer, error) {
	c := &Composer{
		ctx:        ctx,
		log:        logger.Discard(),
		targetOpts: gfx.TargetOptions{Format: gfx.RGBA8, Filter: gfx.Linear, Depth: true},
		pixelRatio: 1,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if target == nil {
		c.width, c.height = ctx.ViewportSize()
		target = ctx.NewRenderTarget(util.Scaled(c.width, c.pixelRatio), util.Scaled(c.height, c.pixelRatio), c.targetOpts)
	} else {
		c.width, c.height = target.Width(), target.Height()
		c.pixelRatio = 1
		c.targetOpts = target.Options()
	}
	c.adopt(target)
	c.gbuffer = newGBuffer(ctx, target.Width(), target.Height())

	var err error
	if c.copyPass, err = NewShaderPass(ctx, CopyShader(), "tDiffuse"); err != nil {
		c.release()
		return nil, err
	}
	if c.toScreen, err = NewToScreenPass(ctx); err != nil {
		c.release()
		return nil, err
	}

	c.last = c.clock()
	c.log.Infof("created %dx%d (ratio %.2f, %s)", target.Width(), target.Height(), c.pixelRatio, c.targetOpts.Format)
	return c, nil
}

func (c *Composer) adopt(target gfx.RenderTarget) {
	c.rt1 = target
	c.rt2 = c.ctx.NewRenderTarget(target.Width(), target.Height(), target.Options())
	c.write = c.rt1
	c.read = c.rt2
}

// SwapBuffers exchanges the read and write labels
func (c *Composer) SwapBuffers() {
	c.write, c.read = c.read, c.write
}

func (c *Composer) ReadBuffer() gfx.RenderTarget { return c.read }
func (c *Composer) WriteBuffer() gfx.RenderTarget { return c.write }
func (c *Composer) RenderTarget1() gfx.RenderTarget { return c.rt1 }
func (c *Composer) RenderTarget2() gfx.RenderTarget { return c.rt2 }
func (c *Composer) GBuffer() *GBuffer { return c.gbuffer }
func (c *Composer) Stats() Stats { return c.stats }
func (c *Composer) PixelRatio() float64 { return c.pixelRatio }

// Size returns the unscaled size last passed to SetSize
func (c *Composer) Size() (int, int) { return c.width, c.height }

// Passes returns a copy of the pass list in execution order
func (c *Composer) Passes() []Pass {
	return append([]Pass(nil), c.passes...)
}

func (c *Composer) scaledSize() (int, int) {
	return util.Scaled(c.width, c.pixelRatio), util.Scaled(c.height, c.pixelRatio)
}

// AddPass appends pass and sizes it to the current targets
func (c *Composer) AddPass(pass Pass) {
	c.passes = append(c.passes, pass)
	pass.SetSize(c.scaledSize())
}

// InsertPass places pass at index, shifting later passes back
func (c *Composer) InsertPass(pass Pass, index int) error {
	if index < 0 || index > len(c.passes) {
		return fmt.Errorf("insert at %d of %d: %w", index, len(c.passes), ErrIndexOutOfRange)
	}
	c.passes = append(c.passes, nil)
	copy(c.passes[index+1:], c.passes[index:])
	c.passes[index] = pass
	pass.SetSize(c.scaledSize())
	return nil
}

// RemovePass takes pass out of the list without disposing it
func (c *Composer) RemovePass(pass Pass) error {
	for i, p := range c.passes {
		if p == pass {
			c.passes = append(c.passes[:i], c.passes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %s: %w", pass.Name(), ErrUnknownPass)
}

// IsLastEnabledPass reports whether no pass after index is enabled
func (c *Composer) IsLastEnabledPass(index int) bool {
	for i := index + 1; i < len(c.passes); i++ {
		if c.passes[i].Flags().Enabled {
			return false
		}
	}
	return true
}

// Validate checks that every MaskPass is closed by a later ClearMaskPass
func (c *Composer) Validate() error {
	open := 0
	for i, p := range c.passes {
		switch p.(type) {
		case *MaskPass:
			open++
		case *ClearMaskPass:
			if open == 0 {
				return fmt.Errorf("pass %d: clear mask without mask: %w", i, ErrUnpairedMask)
			}
			open--
		}
	}
	if open > 0 {
		return fmt.Errorf("%d open mask(s): %w", open, ErrUnpairedMask)
	}
	return nil
}

// Render runs every enabled pass over scene and camera, then blits the
// result to the screen. The previously bound target is rebound on return.
// A pass error aborts the frame, including the screen blit.
func (c *Composer) Render(scene *gfx.Scene, camera gfx.Camera) error {
	if c.disposed {
		return ErrDisposed
	}

	now := c.clock()
	delta := float32(now.Sub(c.last).Seconds())
	c.last = now

	prevTarget := c.ctx.RenderTarget()
	prevAutoClear := c.ctx.State().AutoClear
	defer func() {
		c.ctx.SetAutoClear(prevAutoClear)
		c.ctx.SetRenderTarget(prevTarget)
	}()

	f := &Frame{
		Ctx:     c.ctx,
		Scene:   scene,
		Camera:  camera,
		GBuffer: c.gbuffer,
		Index:   c.frame,
		Delta:   delta,
	}
	c.frame++
	stats := Stats{Frame: f.Index}
	defer func() { c.stats = stats }()

	maskActive := false
	for _, pass := range c.passes {
		flags := pass.Flags()
		if !flags.Enabled {
			continue
		}

		c.ctx.SetAutoClear(flags.AutoClear)
		c.ctx.SetRenderTarget(c.write)
		if err := pass.Render(f, c.write, c.read, maskActive); err != nil {
			return fmt.Errorf("%s: %w", pass.Name(), err)
		}
		stats.Passes++

		if flags.NeedsSwap {
			if maskActive {
				if err := c.copyOutsideMask(f); err != nil {
					return fmt.Errorf("%s: %w", pass.Name(), err)
				}
			}
			c.SwapBuffers()
			stats.Swaps++
		}

		switch pass.(type) {
		case *MaskPass:
			maskActive = true
		case *ClearMaskPass:
			maskActive = false
		}
	}

	stats.MaskActive = maskActive
	if maskActive {
		c.log.Warnf("frame %d ended with the stencil mask active", f.Index)
	}

	c.ctx.SetAutoClear(c.toScreen.AutoClear)
	if err := c.toScreen.Render(f, c.write, c.read, maskActive); err != nil {
		return fmt.Errorf("%s: %w", c.toScreen.Name(), err)
	}

	if c.log.Enabled(logger.DEBUG) {
		c.log.Debugf("frame %d: %d passes, %d swaps, %.1fms", f.Index, stats.Passes, stats.Swaps, delta*1000)
	}
	return nil
}

// copyOutsideMask carries the read image into write wherever the stencil
// mask did not pass, so the swap keeps unmasked pixels.
func (c *Composer) copyOutsideMask(f *Frame) error {
	c.ctx.SetStencilFunc(gfx.NotEqual, 1, 0xffffffff)
	err := c.copyPass.Render(f, c.write, c.read, true)
	c.ctx.SetStencilFunc(gfx.Equal, 1, 0xffffffff)
	return err
}

// SetSize resizes the ping-pong targets and G-buffer to width x height
// scaled by the pixel ratio and forwards the scaled size to every pass.
func (c *Composer) SetSize(width, height int) {
	c.width, c.height = width, height
	w, h := c.scaledSize()

	c.rt1.SetSize(w, h)
	c.rt2.SetSize(w, h)
	c.gbuffer.SetSize(w, h)
	for _, pass := range c.passes {
		pass.SetSize(w, h)
	}
	c.log.Infof("resized to %dx%d", w, h)
}

// SetPixelRatio changes the device pixel ratio and resizes everything
func (c *Composer) SetPixelRatio(ratio float64) {
	if ratio <= 0 {
		return
	}
	c.pixelRatio = ratio
	c.SetSize(c.width, c.height)
}

// Reset disposes both ping-pong targets and the G-buffer and allocates new
// ones. A nil target allocates at the current viewport size with the
// previous options. A supplied target sets the size and a pixel ratio of 1,
// as in NewComposer.
func (c *Composer) Reset(target gfx.RenderTarget) {
	if target == nil {
		c.width, c.height = c.ctx.ViewportSize()
		w, h := c.scaledSize()
		target = c.ctx.NewRenderTarget(w, h, c.rt1.Options())
	} else {
		c.width, c.height = target.Width(), target.Height()
		c.pixelRatio = 1
	}

	c.rt1.Dispose()
	c.rt2.Dispose()
	c.gbuffer.Dispose()

	c.targetOpts = target.Options()
	c.adopt(target)
	c.gbuffer = newGBuffer(c.ctx, target.Width(), target.Height())
	for _, pass := range c.passes {
		pass.SetSize(target.Width(), target.Height())
	}
	c.log.Infof("reset to %dx%d", target.Width(), target.Height())
}

// Dispose releases the ping-pong targets, the G-buffer, the internal
// passes and every pass still in the list. Safe to call twice.
func (c *Composer) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for _, pass := range c.passes {
		pass.Dispose()
	}
	c.release()
}

func (c *Composer) release() {
	if c.copyPass != nil {
		c.copyPass.Dispose()
	}
	if c.toScreen != nil {
		c.toScreen.Dispose()
	}
	c.gbuffer.Dispose()
	c.rt1.Dispose()
	c.rt2.Dispose()
}
