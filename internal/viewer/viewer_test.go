package viewer

import (
	"math"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"postfx/internal/logger"
	"postfx/internal/scenegen"
	"postfx/pkg/config"
	"postfx/pkg/gfx"
	"postfx/pkg/gfx/gfxtest"
	"postfx/pkg/postfx"
)

type fakeKeys map[glfw.Key]bool

func (k fakeKeys) GetKey(key glfw.Key) glfw.Action {
	if k[key] {
		return glfw.Press
	}
	return glfw.Release
}

func TestInputEdges(t *testing.T) {
	keys := fakeKeys{}
	in := newInputHandler(keys)

	keys[glfw.KeyO] = true
	in.Update()
	if !in.IsKeyPressed(glfw.KeyO) || !in.IsKeyDown(glfw.KeyO) {
		t.Fatal("first frame of a press not reported")
	}

	in.Update()
	if in.IsKeyPressed(glfw.KeyO) {
		t.Error("held key reported as a new press")
	}
	if !in.IsKeyDown(glfw.KeyO) {
		t.Error("held key not down")
	}

	keys[glfw.KeyO] = false
	in.Update()
	keys[glfw.KeyO] = true
	in.Update()
	if !in.IsKeyPressed(glfw.KeyO) {
		t.Error("second press not reported")
	}
}

func TestWheelDeltaResets(t *testing.T) {
	in := newInputHandler(fakeKeys{})
	in.addScroll(1.5)
	in.addScroll(-0.5)
	if got := in.WheelDelta(); got != 1 {
		t.Errorf("WheelDelta = %v, want 1", got)
	}
	if got := in.WheelDelta(); got != 0 {
		t.Errorf("WheelDelta after read = %v, want 0", got)
	}
}

func newTestComposer(t *testing.T, pipeline ...config.PassConfig) *postfx.Composer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = 1
	if len(pipeline) > 0 {
		cfg.Pipeline = pipeline
	}
	c, err := postfx.Build(gfxtest.New(64, 64), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(c.Dispose)
	return c
}

// press runs one frame with keys held, after a frame with nothing held
func press(keys ...glfw.Key) *InputHandler {
	held := fakeKeys{}
	in := newInputHandler(held)
	in.Update()
	for _, k := range keys {
		held[k] = true
	}
	in.Update()
	return in
}

func TestHandleControlsTogglesPasses(t *testing.T) {
	c := newTestComposer(t)
	passes := c.Passes()

	req := handleControls(press(glfw.Key3, glfw.Key4), c, logger.Discard())
	if req.quit || req.togglePause || req.regenerate {
		t.Errorf("unexpected requests %+v", req)
	}
	if passes[2].Flags().Enabled || passes[3].Flags().Enabled {
		t.Error("passes 3 and 4 should be disabled")
	}
	if !passes[0].Flags().Enabled || !passes[1].Flags().Enabled {
		t.Error("untouched passes changed")
	}

	handleControls(press(glfw.Key3), c, logger.Discard())
	if !passes[2].Flags().Enabled {
		t.Error("second press should re-enable pass 3")
	}

	// keys past the end of the pipeline do nothing
	handleControls(press(glfw.Key9), c, logger.Discard())
}

func TestHandleControlsKeepsMaskPairs(t *testing.T) {
	c := newTestComposer(t,
		config.DefaultPass(config.PassRender),
		config.DefaultPass(config.PassMask),
		config.DefaultPass(config.PassFilm),
		config.DefaultPass(config.PassClearMask),
	)
	handleControls(press(glfw.Key2, glfw.Key4), c, logger.Discard())
	for i, p := range c.Passes() {
		if !p.Flags().Enabled {
			t.Errorf("pass %d (%s) was toggled", i+1, p.Name())
		}
	}
}

func TestHandleControlsCyclesSSAO(t *testing.T) {
	c := newTestComposer(t)
	ssao := c.Passes()[1].(*postfx.SSAOPass)
	start := ssao.Output

	handleControls(press(glfw.KeyO), c, logger.Discard())
	if ssao.Output != start.Next() {
		t.Errorf("output = %s, want %s", ssao.Output, start.Next())
	}
}

func TestHandleControlsRequests(t *testing.T) {
	c := newTestComposer(t)
	in := press(glfw.KeyEscape, glfw.KeySpace, glfw.KeyR)
	in.addScroll(2)

	req := handleControls(in, c, logger.Discard())
	if !req.quit || !req.togglePause || !req.regenerate || req.zoom != 2 {
		t.Errorf("requests = %+v", req)
	}
}

func TestPlaceCamera(t *testing.T) {
	cfg := config.DefaultConfig().Scene
	cfg.TerrainSize = 16
	layout := scenegen.Generate(cfg, 9)
	cam := gfx.NewPerspectiveCamera(60, 1, 0.1, 100)

	for _, angle := range []float64{0, math.Pi / 2, math.Pi} {
		placeCamera(cam, layout, angle, 10)

		horizontal := math.Hypot(float64(cam.Position.X()), float64(cam.Position.Z()))
		if math.Abs(horizontal-10) > 1e-4 {
			t.Errorf("angle %v: orbit radius %v, want 10", angle, horizontal)
		}
		ground := layout.HeightAt(float64(cam.Position.X()), float64(cam.Position.Z())) * scenegen.HeightScale
		if float64(cam.Position.Y()) <= ground {
			t.Errorf("angle %v: camera at y=%v is below ground %v", angle, cam.Position.Y(), ground)
		}
		if cam.Target.X() != 0 || cam.Target.Z() != 0 {
			t.Errorf("camera looks at %v, want the centre", cam.Target)
		}
	}
}

func TestAspect(t *testing.T) {
	if got := aspect(1280, 720); math.Abs(float64(got)-16.0/9) > 1e-6 {
		t.Errorf("aspect = %v", got)
	}
	if got := aspect(100, 0); got != 1 {
		t.Errorf("aspect with zero height = %v, want 1", got)
	}
}
