package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"postfx/pkg/gfx"
)

// texture is a GL 2D texture. Target-owned textures are released with
// their target.
type texture struct {
	id     uint32
	w, h   int
	owned  bool
	format gfx.Format
}

func (t *texture) Size() (int, int) { return t.w, t.h }

func (t *texture) Dispose() {
	if t.owned || t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// glFormat maps a pixel format to GL internal format and upload type
func glFormat(f gfx.Format) (internal int32, xtype uint32) {
	switch f {
	case gfx.RGBA16F:
		return gl.RGBA16F, gl.HALF_FLOAT
	case gfx.RGBA32F:
		return gl.RGBA32F, gl.FLOAT
	default:
		return gl.RGBA8, gl.UNSIGNED_BYTE
	}
}

func glFilter(f gfx.Filter, mipmaps bool) (minFilter, magFilter int32) {
	switch {
	case f == gfx.Nearest:
		return gl.NEAREST, gl.NEAREST
	case mipmaps:
		return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	default:
		return gl.LINEAR, gl.LINEAR
	}
}

func glWrap(w gfx.Wrap) int32 {
	if w == gfx.Repeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

// renderTarget is a framebuffer with a colour texture and either a sampleable
// depth-stencil texture or a depth-stencil renderbuffer.
type renderTarget struct {
	fbo   uint32
	rbo   uint32
	color *texture
	depth *texture
	opts  gfx.TargetOptions
	w, h  int
}

func newRenderTarget(width, height int, opts gfx.TargetOptions) (*renderTarget, error) {
	rt := &renderTarget{opts: opts}

	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	rt.color = &texture{owned: true, format: opts.Format}
	gl.GenTextures(1, &rt.color.id)
	gl.BindTexture(gl.TEXTURE_2D, rt.color.id)
	minFilter, magFilter := glFilter(opts.Filter, opts.Mipmaps)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if opts.Depth {
		rt.depth = &texture{owned: true}
		gl.GenTextures(1, &rt.depth.id)
		gl.BindTexture(gl.TEXTURE_2D, rt.depth.id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	} else {
		gl.GenRenderbuffers(1, &rt.rbo)
	}

	rt.allocate(width, height)

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.color.id, 0)
	if rt.depth != nil {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.TEXTURE_2D, rt.depth.id, 0)
	} else {
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rt.rbo)
	}

	// an incomplete target is still returned so callers can dispose it
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return rt, fmt.Errorf("framebuffer not complete: 0x%x", status)
	}
	return rt, nil
}

// allocate (re)creates storage for every attachment at width x height
func (rt *renderTarget) allocate(width, height int) {
	rt.w, rt.h = width, height
	rt.color.w, rt.color.h = width, height

	internal, xtype := glFormat(rt.opts.Format)
	gl.BindTexture(gl.TEXTURE_2D, rt.color.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, gl.RGBA, xtype, nil)
	if rt.opts.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	if rt.depth != nil {
		rt.depth.w, rt.depth.h = width, height
		gl.BindTexture(gl.TEXTURE_2D, rt.depth.id)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH24_STENCIL8, int32(width), int32(height), 0, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8, nil)
	} else {
		gl.BindRenderbuffer(gl.RENDERBUFFER, rt.rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (rt *renderTarget) Width() int { return rt.w }
func (rt *renderTarget) Height() int { return rt.h }
func (rt *renderTarget) Options() gfx.TargetOptions { return rt.opts }
func (rt *renderTarget) Texture() gfx.Texture { return rt.color }

func (rt *renderTarget) DepthTexture() gfx.Texture {
	if rt.depth == nil {
		return nil
	}
	return rt.depth
}

func (rt *renderTarget) SetSize(width, height int) {
	if width == rt.w && height == rt.h {
		return
	}
	rt.allocate(width, height)
}

func (rt *renderTarget) Dispose() {
	if rt.fbo == 0 {
		return
	}
	gl.DeleteTextures(1, &rt.color.id)
	if rt.depth != nil {
		gl.DeleteTextures(1, &rt.depth.id)
	}
	if rt.rbo != 0 {
		gl.DeleteRenderbuffers(1, &rt.rbo)
	}
	gl.DeleteFramebuffers(1, &rt.fbo)
	rt.fbo = 0
}

// Mesh is indexed triangle geometry with interleaved position and normal
type Mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// NewMesh uploads positions and normals (xyz each) and triangle indices.
func NewMesh(positions, normals []float32, indices []uint32) (*Mesh, error) {
	if len(positions) != len(normals) || len(positions)%3 != 0 {
		return nil, fmt.Errorf("mesh: %d positions and %d normals", len(positions), len(normals))
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("mesh: no indices")
	}

	vertices := make([]float32, 0, len(positions)*2)
	for i := 0; i < len(positions); i += 3 {
		vertices = append(vertices, positions[i:i+3]...)
		vertices = append(vertices, normals[i:i+3]...)
	}

	m := &Mesh{count: int32(len(indices))}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attribute
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	// Normal attribute
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return m, nil
}

func (m *Mesh) draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (m *Mesh) Dispose() {
	if m.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	m.vao = 0
}
