package gfx

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniform holds one shader parameter. Supported values: float32, int32,
// bool, mgl32.Vec2/Vec3/Vec4, mgl32.Mat3/Mat4, []mgl32.Vec3, []float32 and
// Texture (nil leaves the sampler unbound).
type Uniform struct {
	Value interface{}
}

// Uniforms is a material's parameter set keyed by GLSL name
type Uniforms map[string]*Uniform

// Set assigns value to an existing uniform. Names the shader does not
// declare are skipped and reported as false.
func (u Uniforms) Set(name string, value interface{}) bool {
	un, ok := u[name]
	if !ok {
		return false
	}
	un.Value = value
	return true
}

// Get returns the value of a uniform
func (u Uniforms) Get(name string) (interface{}, bool) {
	un, ok := u[name]
	if !ok {
		return nil, false
	}
	return un.Value, true
}

// Float returns a float32 uniform value, or 0 when absent or of another type.
func (u Uniforms) Float(name string) float32 {
	v, _ := u.Get(name)
	f, _ := v.(float32)
	return f
}

// Has reports whether name is declared
func (u Uniforms) Has(name string) bool {
	_, ok := u[name]
	return ok
}

// Names returns the declared uniform names in sorted order
func (u Uniforms) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone copies the set so two materials built from one source do not share
// values. Slice values are copied; textures are shared.
func (u Uniforms) Clone() Uniforms {
	out := make(Uniforms, len(u))
	for name, un := range u {
		v := un.Value
		switch s := v.(type) {
		case []mgl32.Vec3:
			v = append([]mgl32.Vec3(nil), s...)
		case []float32:
			v = append([]float32(nil), s...)
		}
		out[name] = &Uniform{Value: v}
	}
	return out
}

// ShaderSource describes a shader program and its default uniforms
type ShaderSource struct {
	Name     string
	Defines  map[string]string
	Uniforms Uniforms
	Vertex   string
	Fragment string
}

// Program is a compiled, backend-specific shader program
type Program interface {
	Dispose()
}

// Material binds a compiled program to uniform values and fixed-function state.
type Material struct {
	Name     string
	Uniforms Uniforms
	Defines  map[string]string

	Blending      BlendMode
	BlendSrc      BlendFactor
	BlendDst      BlendFactor
	BlendEquation BlendEquation
	Transparent   bool
	DepthTest     bool
	DepthWrite    bool

	program  Program
	disposed bool
}

// NewMaterial wraps a compiled program. Backends call this from
// Context.NewMaterial; uniforms are cloned from src.
func NewMaterial(program Program, src ShaderSource) *Material {
	uniforms := src.Uniforms.Clone()
	if uniforms == nil {
		uniforms = Uniforms{}
	}
	defines := make(map[string]string, len(src.Defines))
	for k, v := range src.Defines {
		defines[k] = v
	}
	return &Material{
		Name:       src.Name,
		Uniforms:   uniforms,
		Defines:    defines,
		DepthTest:  true,
		DepthWrite: true,
		program:    program,
	}
}

// Program returns the compiled program
func (m *Material) Program() Program {
	return m.program
}

// Disposed reports whether Dispose has run
func (m *Material) Disposed() bool {
	return m.disposed
}

// Dispose releases the program. Safe to call more than once.
func (m *Material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.program != nil {
		m.program.Dispose()
	}
}
