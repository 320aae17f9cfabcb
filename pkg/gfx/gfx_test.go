package gfx_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"postfx/pkg/gfx"
	"postfx/pkg/gfx/gfxtest"
)

func testSource() gfx.ShaderSource {
	return gfx.ShaderSource{
		Name:    "test",
		Defines: map[string]string{"TAPS": "4"},
		Uniforms: gfx.Uniforms{
			"opacity": {Value: float32(1)},
			"kernel":  {Value: []float32{1, 2}},
			"tInput":  {Value: nil},
		},
	}
}

func TestUniforms(t *testing.T) {
	u := testSource().Uniforms

	if !u.Set("opacity", float32(0.5)) {
		t.Error("Set on a declared uniform returned false")
	}
	if u.Set("missing", float32(1)) {
		t.Error("Set on an undeclared uniform returned true")
	}
	if u.Has("missing") {
		t.Error("Set declared a new uniform")
	}
	if got := u.Float("opacity"); got != 0.5 {
		t.Errorf("Float = %v, want 0.5", got)
	}
	if got := u.Float("kernel"); got != 0 {
		t.Errorf("Float on a slice = %v, want 0", got)
	}

	names := u.Names()
	want := []string{"kernel", "opacity", "tInput"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestUniformsClone(t *testing.T) {
	u := testSource().Uniforms
	c := u.Clone()

	c.Set("opacity", float32(0.25))
	v, _ := c.Get("kernel")
	v.([]float32)[0] = 9

	if u.Float("opacity") != 1 {
		t.Error("clone shares scalar values")
	}
	orig, _ := u.Get("kernel")
	if orig.([]float32)[0] != 1 {
		t.Error("clone shares slice storage")
	}
}

func TestMaterialsFromOneSourceAreIndependent(t *testing.T) {
	ctx := gfxtest.New(4, 4)
	a, err := ctx.NewMaterial(testSource())
	if err != nil {
		t.Fatal(err)
	}
	b, err := ctx.NewMaterial(testSource())
	if err != nil {
		t.Fatal(err)
	}

	a.Uniforms.Set("opacity", float32(0))
	a.Defines["TAPS"] = "8"
	if b.Uniforms.Float("opacity") != 1 || b.Defines["TAPS"] != "4" {
		t.Error("materials share state")
	}
	if !a.DepthTest || !a.DepthWrite {
		t.Error("new materials should depth test and write")
	}

	a.Dispose()
	a.Dispose()
	if n := ctx.Programs[0].Disposals(); n != 1 {
		t.Errorf("program disposed %d times, want 1", n)
	}
	if !a.Disposed() || b.Disposed() {
		t.Error("Disposed reports the wrong material")
	}
}

func TestPreserve(t *testing.T) {
	ctx := gfxtest.New(8, 8)
	rt := ctx.NewRenderTarget(8, 8, gfx.TargetOptions{})
	before := ctx.State()

	func() {
		defer gfx.Preserve(ctx)()
		ctx.SetRenderTarget(rt)
		ctx.SetClearColor(mgl32.Vec3{1, 0, 1}, 0)
		ctx.SetAutoClear(false)
		ctx.SetColorWrite(false)
		ctx.LockColor(true)
		ctx.SetStencilTest(true)
		ctx.SetStencilFunc(gfx.Equal, 1, 0xff)
		ctx.LockStencil(true)
		ctx.SetBlendOverride(gfx.BlendOverride{Active: true, Mode: gfx.AdditiveBlending})
	}()

	if got := ctx.State(); got != before {
		t.Errorf("state not restored:\n got %+v\nwant %+v", got, before)
	}
	if ctx.RenderTarget() != nil {
		t.Error("target not restored")
	}
}

func TestLocks(t *testing.T) {
	ctx := gfxtest.New(8, 8)

	ctx.SetStencilTest(true)
	ctx.LockStencil(true)
	ctx.SetStencilTest(false)
	if !ctx.State().Stencil.Test {
		t.Error("locked stencil test changed")
	}
	ctx.SetStencilFunc(gfx.NotEqual, 1, 0xffffffff)
	if ctx.State().Stencil.Func != gfx.NotEqual {
		t.Error("stencil function should change while locked")
	}

	ctx.SetColorWrite(false)
	ctx.LockColor(true)
	ctx.SetColorWrite(true)
	if ctx.State().ColorWrite {
		t.Error("locked colour write changed")
	}
}

func TestSceneOverride(t *testing.T) {
	ctx := gfxtest.New(4, 4)
	outer, _ := ctx.NewMaterial(gfx.ShaderSource{Name: "outer"})
	inner, _ := ctx.NewMaterial(gfx.ShaderSource{Name: "inner"})

	s := gfx.NewScene()
	restoreOuter := s.Override(outer)
	restoreInner := s.Override(inner)
	if s.OverrideMaterial != inner {
		t.Fatal("override not applied")
	}
	restoreInner()
	if s.OverrideMaterial != outer {
		t.Error("inner restore did not bring back the outer override")
	}
	restoreOuter()
	if s.OverrideMaterial != nil {
		t.Error("override not cleared")
	}
}

func TestSceneAdd(t *testing.T) {
	s := gfx.NewScene()
	obj := &gfx.Object{Name: "box", Visible: true}
	s.Add(obj)
	if obj.Transform != mgl32.Ident4() {
		t.Error("zero transform not replaced by identity")
	}

	moved := &gfx.Object{Transform: mgl32.Translate3D(1, 2, 3)}
	s.Add(moved)
	if moved.Transform != mgl32.Translate3D(1, 2, 3) {
		t.Error("explicit transform overwritten")
	}
	if len(s.Objects) != 2 {
		t.Errorf("objects = %d, want 2", len(s.Objects))
	}
}

func TestPerspectiveCamera(t *testing.T) {
	cam := gfx.NewPerspectiveCamera(60, 2, 0.5, 50)
	if cam.Near() != 0.5 || cam.Far() != 50 {
		t.Errorf("near/far = %v/%v", cam.Near(), cam.Far())
	}

	want := mgl32.Perspective(mgl32.DegToRad(60), 2, 0.5, 50)
	if cam.ProjectionMatrix() != want {
		t.Error("projection mismatch")
	}

	// a point straight ahead stays on the view axis
	p := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, -5, 1})
	if p.X() != 0 || p.Y() != 0 || p.Z() >= 0 {
		t.Errorf("point ahead maps to %v", p)
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    gfx.Format
		want string
	}{
		{gfx.RGBA8, "rgba8"},
		{gfx.RGBA16F, "rgba16f"},
		{gfx.RGBA32F, "rgba32f"},
		{gfx.Format(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.f), got, tt.want)
		}
	}
}
