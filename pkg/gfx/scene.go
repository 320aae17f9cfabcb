package gfx

import "github.com/go-gl/mathgl/mgl32"

// Mesh is backend-specific vertex data
type Mesh interface {
	Dispose()
}

// Object is one drawable in a scene
type Object struct {
	Name      string
	Mesh      Mesh
	Material  *Material
	Transform mgl32.Mat4
	Visible   bool
}

// Scene is the set of objects drawn by Context.Draw. The pipeline treats it
// as opaque except for the override material.
type Scene struct {
	Objects          []*Object
	OverrideMaterial *Material
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{}
}

// Add appends a visible object with an identity transform if none is set.
func (s *Scene) Add(obj *Object) {
	if obj.Transform == (mgl32.Mat4{}) {
		obj.Transform = mgl32.Ident4()
	}
	s.Objects = append(s.Objects, obj)
}

// Override replaces the override material and returns a function restoring
// the previous one.
func (s *Scene) Override(m *Material) func() {
	prev := s.OverrideMaterial
	s.OverrideMaterial = m
	return func() {
		s.OverrideMaterial = prev
	}
}

// Camera supplies view and projection for scene draws
type Camera interface {
	ProjectionMatrix() mgl32.Mat4
	ViewMatrix() mgl32.Mat4
	Near() float32
	Far() float32
}

// PerspectiveCamera is a look-at camera with a perspective projection
type PerspectiveCamera struct {
	Fov      float32 // vertical, degrees
	Aspect   float32
	ZNear    float32
	ZFar     float32
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// NewPerspectiveCamera creates a camera at the origin looking down -Z
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	return &PerspectiveCamera{
		Fov:    fov,
		Aspect: aspect,
		ZNear:  near,
		ZFar:   far,
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
	}
}

func (c *PerspectiveCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.ZNear, c.ZFar)
}

func (c *PerspectiveCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *PerspectiveCamera) Near() float32 { return c.ZNear }
func (c *PerspectiveCamera) Far() float32 { return c.ZFar }
