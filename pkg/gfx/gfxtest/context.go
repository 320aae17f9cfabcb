// Package gfxtest provides an in-memory gfx.Context for tests. Instead of
// pixels every target carries a Content string describing the lineage of
// the image drawn into it, e.g. "copy(bloom(convolution(scene),scene))".
package gfxtest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
)

// Event kinds
const (
	EventBind  = "bind"
	EventClear = "clear"
	EventDraw  = "draw"
	EventQuad  = "quad"
)

// Event is one recorded backend call
type Event struct {
	Kind     string
	Target   string
	Material string
	Content  string
}

// Program is a fake compiled program
type Program struct {
	Name      string
	disposals int
}

func (p *Program) Dispose() { p.disposals++ }

// Disposals reports how many times Dispose ran
func (p *Program) Disposals() int { return p.disposals }

// Texture is a fake sampleable image
type Texture struct {
	Label     string
	Data      []float32
	Options   gfx.TextureOptions
	target    *Target
	w, h      int
	disposals int
}

func (t *Texture) Size() (int, int) {
	if t.target != nil {
		return t.target.w, t.target.h
	}
	return t.w, t.h
}

func (t *Texture) Dispose() { t.disposals++ }

// Disposals reports how many times Dispose ran
func (t *Texture) Disposals() int { return t.disposals }

// Content is the lineage of the image this texture samples
func (t *Texture) Content() string {
	if t.target != nil {
		return t.target.Content
	}
	return t.Label
}

// Target is a fake render target
type Target struct {
	Label   string
	Content string
	Stencil string
	Resizes int

	w, h      int
	opts      gfx.TargetOptions
	color     *Texture
	depth     *Texture
	disposals int
}

func (t *Target) Width() int { return t.w }
func (t *Target) Height() int { return t.h }
func (t *Target) Options() gfx.TargetOptions { return t.opts }
func (t *Target) Texture() gfx.Texture { return t.color }
func (t *Target) Dispose() { t.disposals++ }
func (t *Target) Disposals() int { return t.disposals }
func (t *Target) SetSize(width, height int) {
	t.w, t.h = width, height
	t.Resizes++
}

func (t *Target) DepthTexture() gfx.Texture {
	if t.depth == nil {
		return nil
	}
	return t.depth
}

// Context records every call and tracks image lineage per target.
type Context struct {
	Screen   *Target
	Targets  []*Target
	Programs []*Program
	Textures []*Texture
	Events   []Event

	// CompileErrors fails NewMaterial for the named shaders.
	CompileErrors map[string]error
	// DrawError, when set, is returned by the next draw whose material (or
	// "scene") matches DrawErrorOn, or by every draw if DrawErrorOn is empty.
	DrawError   error
	DrawErrorOn string

	state         gfx.State
	width, height int
}

// New creates a context whose visible framebuffer is width x height.
func New(width, height int) *Context {
	return &Context{
		Screen: &Target{Label: "screen", w: width, h: height},
		state:  gfx.DefaultState(),
		width:  width,
		height: height,
	}
}

// Resize changes the visible framebuffer size
func (c *Context) Resize(width, height int) {
	c.width, c.height = width, height
	c.Screen.w, c.Screen.h = width, height
}

func (c *Context) ViewportSize() (int, int) { return c.width, c.height }

func (c *Context) NewRenderTarget(width, height int, opts gfx.TargetOptions) gfx.RenderTarget {
	t := &Target{
		Label: fmt.Sprintf("rt%d", len(c.Targets)+1),
		w:     width,
		h:     height,
		opts:  opts,
	}
	t.color = &Texture{Label: t.Label, target: t}
	if opts.Depth {
		t.depth = &Texture{Label: t.Label + ".depth", target: t}
	}
	c.Targets = append(c.Targets, t)
	return t
}

func (c *Context) NewMaterial(src gfx.ShaderSource) (*gfx.Material, error) {
	if err, ok := c.CompileErrors[src.Name]; ok {
		return nil, err
	}
	p := &Program{Name: src.Name}
	c.Programs = append(c.Programs, p)
	return gfx.NewMaterial(p, src), nil
}

func (c *Context) NewDataTexture(width, height int, data []float32, opts gfx.TextureOptions) gfx.Texture {
	t := &Texture{
		Label:   fmt.Sprintf("data%d", len(c.Textures)+1),
		Data:    append([]float32(nil), data...),
		Options: opts,
		w:       width,
		h:       height,
	}
	c.Textures = append(c.Textures, t)
	return t
}

func (c *Context) RenderTarget() gfx.RenderTarget { return c.state.Target }

func (c *Context) SetRenderTarget(target gfx.RenderTarget) {
	c.state.Target = target
	c.record(EventBind, "", c.bound().Content)
}

func (c *Context) Clear(color, depth, stencil bool) {
	t := c.bound()
	if color && c.state.ColorWrite {
		t.Content = ""
	}
	if stencil {
		t.Stencil = ""
	}
	c.record(EventClear, fmt.Sprintf("color=%t depth=%t stencil=%t", color, depth, stencil), t.Content)
}

func (c *Context) SetClearColor(color mgl32.Vec3, alpha float32) {
	c.state.ClearColor = color
	c.state.ClearAlpha = alpha
}

func (c *Context) SetAutoClear(enabled bool) { c.state.AutoClear = enabled }

func (c *Context) SetColorWrite(enabled bool) {
	if !c.state.ColorLocked {
		c.state.ColorWrite = enabled
	}
}

func (c *Context) SetDepthWrite(enabled bool) {
	if !c.state.DepthLocked {
		c.state.DepthWrite = enabled
	}
}

func (c *Context) LockColor(locked bool) { c.state.ColorLocked = locked }
func (c *Context) LockDepth(locked bool) { c.state.DepthLocked = locked }

func (c *Context) SetStencilTest(enabled bool) {
	if !c.state.Stencil.Locked {
		c.state.Stencil.Test = enabled
	}
}

func (c *Context) SetStencilFunc(fn gfx.CompareFunc, ref int, mask uint32) {
	c.state.Stencil.Func = fn
	c.state.Stencil.Ref = ref
	c.state.Stencil.Mask = mask
}

func (c *Context) SetStencilOp(fail, zfail, zpass gfx.StencilOp) {
	c.state.Stencil.Fail = fail
	c.state.Stencil.ZFail = zfail
	c.state.Stencil.ZPass = zpass
}

func (c *Context) SetStencilClear(value int) { c.state.Stencil.Clear = value }
func (c *Context) LockStencil(locked bool) { c.state.Stencil.Locked = locked }
func (c *Context) SetBlendOverride(o gfx.BlendOverride) { c.state.Blend = o }
func (c *Context) State() gfx.State { return c.state }
func (c *Context) SetState(s gfx.State) { c.state = s }

func (c *Context) Draw(scene *gfx.Scene, camera gfx.Camera) error {
	label := "scene"
	material := "scene"
	if scene.OverrideMaterial != nil {
		material = scene.OverrideMaterial.Name
		label = material + "(scene)"
	}
	if err := c.drawError(material); err != nil {
		return err
	}

	t := c.bound()
	if c.state.AutoClear {
		c.Clear(true, true, true)
	}
	if !c.state.ColorWrite {
		if c.state.Stencil.Test && c.state.Stencil.ZPass == gfx.Replace {
			t.Stencil = fmt.Sprintf("%d:%s", c.state.Stencil.Ref, label)
		}
		c.record(EventDraw, material, t.Content)
		return nil
	}

	mode := gfx.NoBlending
	if c.state.Blend.Active {
		mode = c.state.Blend.Mode
	}
	c.compose(t, label, mode, false)
	c.record(EventDraw, material, t.Content)
	return nil
}

func (c *Context) DrawFullScreen(m *gfx.Material) error {
	if err := c.drawError(m.Name); err != nil {
		return err
	}

	var inputs []string
	for _, name := range m.Uniforms.Names() {
		v, _ := m.Uniforms.Get(name)
		if tex, ok := v.(*Texture); ok && tex != nil {
			inputs = append(inputs, tex.Content())
		}
	}
	result := m.Name + "(" + strings.Join(inputs, ",") + ")"

	t := c.bound()
	mode := m.Blending
	if c.state.Blend.Active {
		mode = c.state.Blend.Mode
	}
	if c.state.ColorWrite {
		c.compose(t, result, mode, m.Transparent)
	}
	c.record(EventQuad, m.Name, t.Content)
	return nil
}

func (c *Context) compose(t *Target, result string, mode gfx.BlendMode, transparent bool) {
	prev := t.Content
	next := result
	if prev != "" {
		switch {
		case mode == gfx.AdditiveBlending:
			next = prev + " + " + result
		case mode == gfx.MultiplyBlending || mode == gfx.CustomBlending:
			next = prev + " * " + result
		case mode == gfx.NormalBlending && transparent:
			next = prev + " over " + result
		}
		if c.state.Stencil.Test {
			next = prev + " | " + next
		}
	}
	t.Content = next
}

func (c *Context) drawError(material string) error {
	if c.DrawError == nil {
		return nil
	}
	if c.DrawErrorOn == "" || c.DrawErrorOn == material {
		return c.DrawError
	}
	return nil
}

func (c *Context) bound() *Target {
	if c.state.Target == nil {
		return c.Screen
	}
	return c.state.Target.(*Target)
}

func (c *Context) record(kind, material, content string) {
	c.Events = append(c.Events, Event{
		Kind:     kind,
		Target:   c.bound().Label,
		Material: material,
		Content:  content,
	})
}

// Count returns how many events of kind were recorded, optionally filtered
// by material name.
func (c *Context) Count(kind, material string) int {
	n := 0
	for _, e := range c.Events {
		if e.Kind == kind && (material == "" || e.Material == material) {
			n++
		}
	}
	return n
}

// Live returns the targets that have not been disposed
func (c *Context) Live() []*Target {
	var live []*Target
	for _, t := range c.Targets {
		if t.disposals == 0 {
			live = append(live, t)
		}
	}
	return live
}

// Reset clears the recorded events
func (c *Context) Reset() {
	c.Events = nil
}
