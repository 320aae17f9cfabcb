// Package glbackend implements gfx.Context on OpenGL 4.1 core through go-gl.
// Every call must happen on the thread that owns the current GL context.
package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/logger"
	"postfx/pkg/gfx"
)

var quadVertices = []float32{
	// Positions   // Texture coords
	-1.0, -1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 0.0,
	1.0, 1.0, 0.0, 1.0, 1.0,
	-1.0, 1.0, 0.0, 0.0, 1.0,
}

// Context drives OpenGL. The visible framebuffer size is read from
// framebufferSize on every bind of the default framebuffer.
type Context struct {
	log             *logger.Logger
	framebufferSize func() (int, int)

	state   gfx.State
	quadVAO uint32
	quadVBO uint32

	// first resource creation error, reported by the next draw
	err error
}

var _ gfx.Context = (*Context)(nil)

// New initialises the GL function pointers for the current context and
// applies the default state.
func New(framebufferSize func() (int, int), log *logger.Logger) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %v", err)
	}
	if log == nil {
		log = logger.Discard()
	}
	c := &Context{
		log:             log.WithPrefix("gl"),
		framebufferSize: framebufferSize,
	}
	c.log.Infof("OpenGL %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	gl.DepthFunc(gl.LEQUAL)
	c.setupScreenQuad()
	c.SetState(gfx.DefaultState())
	return c, nil
}

// setupScreenQuad creates the full-screen quad used by DrawFullScreen
func (c *Context) setupScreenQuad() {
	gl.GenVertexArrays(1, &c.quadVAO)
	gl.GenBuffers(1, &c.quadVBO)
	gl.BindVertexArray(c.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	// Position attribute
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	// Texture coord attribute
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
}

// Close releases the backend's own GL objects
func (c *Context) Close() {
	gl.DeleteVertexArrays(1, &c.quadVAO)
	gl.DeleteBuffers(1, &c.quadVBO)
}

func (c *Context) fail(err error) {
	c.log.Error(err)
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) NewRenderTarget(width, height int, opts gfx.TargetOptions) gfx.RenderTarget {
	rt, err := newRenderTarget(width, height, opts)
	if err != nil {
		c.fail(fmt.Errorf("render target %dx%d %s: %w", width, height, opts.Format, err))
	}
	c.bindFramebuffer()
	return rt
}

func (c *Context) NewMaterial(src gfx.ShaderSource) (*gfx.Material, error) {
	id, err := createShaderProgram(injectDefines(src.Vertex, src.Defines), injectDefines(src.Fragment, src.Defines))
	if err != nil {
		return nil, err
	}
	c.log.Debugf("compiled %s", src.Name)
	return gfx.NewMaterial(&program{id: id, locations: map[string]int32{}}, src), nil
}

func (c *Context) NewDataTexture(width, height int, data []float32, opts gfx.TextureOptions) gfx.Texture {
	t := &texture{w: width, h: height, format: opts.Format}
	internal, _ := glFormat(opts.Format)
	minFilter, magFilter := glFilter(opts.Filter, false)

	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(opts.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(opts.Wrap))

	if len(data) < width*height*4 {
		c.fail(fmt.Errorf("data texture %dx%d: got %d floats", width, height, len(data)))
		data = make([]float32, width*height*4)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t
}

func (c *Context) ViewportSize() (int, int) { return c.framebufferSize() }

func (c *Context) RenderTarget() gfx.RenderTarget { return c.state.Target }

func (c *Context) SetRenderTarget(target gfx.RenderTarget) {
	if prev, ok := c.state.Target.(*renderTarget); ok && prev != target && prev.opts.Mipmaps {
		gl.BindTexture(gl.TEXTURE_2D, prev.color.id)
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	c.state.Target = target
	c.bindFramebuffer()
}

func (c *Context) bindFramebuffer() {
	if rt, ok := c.state.Target.(*renderTarget); ok && rt != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
		gl.Viewport(0, 0, int32(rt.w), int32(rt.h))
		return
	}
	w, h := c.framebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (c *Context) Clear(color, depth, stencil bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		// draws may have narrowed the depth mask for their material
		gl.DepthMask(c.state.DepthWrite)
		gl.Clear(mask)
	}
}

func (c *Context) SetClearColor(color mgl32.Vec3, alpha float32) {
	c.state.ClearColor = color
	c.state.ClearAlpha = alpha
	gl.ClearColor(color[0], color[1], color[2], alpha)
}

func (c *Context) SetAutoClear(enabled bool) { c.state.AutoClear = enabled }

func (c *Context) SetColorWrite(enabled bool) {
	if c.state.ColorLocked {
		return
	}
	c.state.ColorWrite = enabled
	gl.ColorMask(enabled, enabled, enabled, enabled)
}

func (c *Context) SetDepthWrite(enabled bool) {
	if c.state.DepthLocked {
		return
	}
	c.state.DepthWrite = enabled
	gl.DepthMask(enabled)
}

func (c *Context) LockColor(locked bool) { c.state.ColorLocked = locked }
func (c *Context) LockDepth(locked bool) { c.state.DepthLocked = locked }

func (c *Context) SetStencilTest(enabled bool) {
	if c.state.Stencil.Locked {
		return
	}
	c.state.Stencil.Test = enabled
	setCapability(gl.STENCIL_TEST, enabled)
}

func (c *Context) SetStencilFunc(fn gfx.CompareFunc, ref int, mask uint32) {
	c.state.Stencil.Func = fn
	c.state.Stencil.Ref = ref
	c.state.Stencil.Mask = mask
	gl.StencilFunc(glCompare(fn), int32(ref), mask)
}

func (c *Context) SetStencilOp(fail, zfail, zpass gfx.StencilOp) {
	c.state.Stencil.Fail = fail
	c.state.Stencil.ZFail = zfail
	c.state.Stencil.ZPass = zpass
	gl.StencilOp(glStencilOp(fail), glStencilOp(zfail), glStencilOp(zpass))
}

func (c *Context) SetStencilClear(value int) {
	c.state.Stencil.Clear = value
	gl.ClearStencil(int32(value))
}

func (c *Context) LockStencil(locked bool) { c.state.Stencil.Locked = locked }

func (c *Context) SetBlendOverride(o gfx.BlendOverride) { c.state.Blend = o }

func (c *Context) State() gfx.State { return c.state }

// SetState applies s verbatim, ignoring locks.
func (c *Context) SetState(s gfx.State) {
	c.state = s
	c.bindFramebuffer()

	gl.ClearColor(s.ClearColor[0], s.ClearColor[1], s.ClearColor[2], s.ClearAlpha)
	gl.ColorMask(s.ColorWrite, s.ColorWrite, s.ColorWrite, s.ColorWrite)
	gl.DepthMask(s.DepthWrite)

	setCapability(gl.STENCIL_TEST, s.Stencil.Test)
	gl.StencilFunc(glCompare(s.Stencil.Func), int32(s.Stencil.Ref), s.Stencil.Mask)
	gl.StencilOp(glStencilOp(s.Stencil.Fail), glStencilOp(s.Stencil.ZFail), glStencilOp(s.Stencil.ZPass))
	gl.ClearStencil(int32(s.Stencil.Clear))
}

// Draw renders every visible object of scene. Objects must carry a *Mesh.
func (c *Context) Draw(scene *gfx.Scene, camera gfx.Camera) error {
	if c.err != nil {
		return c.err
	}
	if c.state.AutoClear {
		c.Clear(true, true, true)
	}

	view := camera.ViewMatrix()
	projection := camera.ProjectionMatrix()
	for _, obj := range scene.Objects {
		if !obj.Visible {
			continue
		}
		mesh, ok := obj.Mesh.(*Mesh)
		if !ok {
			return fmt.Errorf("object %q: mesh was not created by this backend", obj.Name)
		}
		m := obj.Material
		if scene.OverrideMaterial != nil {
			m = scene.OverrideMaterial
		}
		if m == nil {
			continue
		}

		modelView := view.Mul4(obj.Transform)
		m.Uniforms.Set("modelMatrix", obj.Transform)
		m.Uniforms.Set("viewMatrix", view)
		m.Uniforms.Set("projectionMatrix", projection)
		m.Uniforms.Set("normalMatrix", modelView.Mat3().Inv().Transpose())

		if err := c.apply(m, true); err != nil {
			return err
		}
		mesh.draw()
	}
	return checkError("draw scene")
}

// DrawFullScreen draws the screen quad with m. Depth testing is off.
func (c *Context) DrawFullScreen(m *gfx.Material) error {
	if c.err != nil {
		return c.err
	}
	if err := c.apply(m, false); err != nil {
		return err
	}
	gl.BindVertexArray(c.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.BindVertexArray(0)
	return checkError(m.Name)
}

// apply uploads m and sets its depth and blend state for one draw
func (c *Context) apply(m *gfx.Material, depth bool) error {
	if m.Disposed() {
		return fmt.Errorf("material %s used after dispose", m.Name)
	}
	if err := c.upload(m); err != nil {
		return err
	}

	setCapability(gl.DEPTH_TEST, depth && m.DepthTest)
	gl.DepthMask(c.state.DepthWrite && m.DepthWrite)

	mode := m.Blending
	if c.state.Blend.Active {
		mode = c.state.Blend.Mode
	}
	applyBlending(mode, m)
	return nil
}

func applyBlending(mode gfx.BlendMode, m *gfx.Material) {
	if mode == gfx.NoBlending {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	switch mode {
	case gfx.NormalBlending:
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	case gfx.AdditiveBlending:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case gfx.MultiplyBlending:
		gl.BlendFunc(gl.ZERO, gl.SRC_COLOR)
	case gfx.CustomBlending:
		gl.BlendEquation(glEquation(m.BlendEquation))
		gl.BlendFunc(glFactor(m.BlendSrc), glFactor(m.BlendDst))
	}
}

func setCapability(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

var errNames = map[uint32]string{
	gl.INVALID_ENUM:                  "invalid enum",
	gl.INVALID_VALUE:                 "invalid value",
	gl.INVALID_OPERATION:             "invalid operation",
	gl.INVALID_FRAMEBUFFER_OPERATION: "invalid framebuffer operation",
	gl.OUT_OF_MEMORY:                 "out of memory",
}

// ErrGL wraps every error reported by glGetError
var ErrGL = errors.New("opengl error")

func checkError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	// drain the queue so the next call starts clean
	for gl.GetError() != gl.NO_ERROR {
	}
	name, ok := errNames[code]
	if !ok {
		name = fmt.Sprintf("0x%x", code)
	}
	return fmt.Errorf("%s: %w: %s", op, ErrGL, name)
}
