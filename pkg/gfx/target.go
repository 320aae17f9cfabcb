package gfx

// Format is the pixel format of a render target or data texture
type Format int

const (
	RGBA8 Format = iota
	RGBA16F
	RGBA32F
)

func (f Format) String() string {
	switch f {
	case RGBA8:
		return "rgba8"
	case RGBA16F:
		return "rgba16f"
	case RGBA32F:
		return "rgba32f"
	default:
		return "unknown"
	}
}

// Filter is a texture sampling filter
type Filter int

const (
	Linear Filter = iota
	Nearest
)

// Wrap is a texture addressing mode
type Wrap int

const (
	ClampToEdge Wrap = iota
	Repeat
)

// TargetOptions describes a render target's attachments
type TargetOptions struct {
	Format  Format
	Filter  Filter
	Depth   bool // sampleable depth+stencil attachment
	Mipmaps bool
}

// TextureOptions describes a data texture
type TextureOptions struct {
	Format Format
	Filter Filter
	Wrap   Wrap
}

// Texture is a sampleable image owned by a render target or created from data.
type Texture interface {
	Size() (width, height int)
	Dispose()
}

// RenderTarget is an offscreen colour (+ optional depth/stencil) buffer.
type RenderTarget interface {
	Width() int
	Height() int
	Options() TargetOptions
	// SetSize reallocates storage; contents become undefined.
	SetSize(width, height int)
	Texture() Texture
	// DepthTexture is nil unless the target was created with Depth.
	DepthTexture() Texture
	Dispose()
}
