// Package viewer opens a window and drives the post-processing pipeline
// over the procedural scene.
package viewer

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"postfx/internal/logger"
	"postfx/internal/scenegen"
	"postfx/internal/util"
	"postfx/pkg/config"
	"postfx/pkg/gfx"
	"postfx/pkg/gfx/glbackend"
	"postfx/pkg/postfx"
)

const orbitSpeed = 0.15 // radians per second

// Viewer owns the window, GL context, scene and composer
type Viewer struct {
	window   *glfw.Window
	config   *config.Config
	log      *logger.Logger
	ctx      *glbackend.Context
	composer *postfx.Composer
	world    *scenegen.World
	camera   *gfx.PerspectiveCamera
	input    *InputHandler

	isRunning  bool
	paused     bool
	orbit      float64
	radius     float64
	lastUpdate time.Time
	frameRate  int
}

// New creates the window and GL context, generates the scene and builds
// the pipeline described by cfg.
func New(cfg *config.Config, log *logger.Logger) (*Viewer, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Graphics.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	window, err := glfw.CreateWindow(cfg.Graphics.Width, cfg.Graphics.Height, "postfx", monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}
	window.MakeContextCurrent()
	if cfg.Graphics.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	v := &Viewer{
		window:    window,
		config:    cfg,
		log:       log.WithPrefix("viewer"),
		input:     NewInputHandler(window),
		frameRate: cfg.Graphics.FrameRate,
	}

	v.ctx, err = glbackend.New(window.GetFramebufferSize, log)
	if err != nil {
		v.cleanup()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	w, h := window.GetFramebufferSize()
	v.camera = gfx.NewPerspectiveCamera(float32(cfg.Scene.Fov), aspect(w, h), float32(cfg.Scene.Near), float32(cfg.Scene.Far))

	if err := v.generate(cfg.Seed); err != nil {
		v.cleanup()
		return nil, err
	}

	v.composer, err = postfx.Build(v.ctx, cfg, log)
	if err != nil {
		v.cleanup()
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		v.resize(width, height)
	})
	return v, nil
}

// generate replaces the scene with a fresh layout
func (v *Viewer) generate(seed int64) error {
	layout := scenegen.Generate(v.config.Scene, seed)
	world, err := scenegen.Build(v.ctx, layout, uploadMesh)
	if err != nil {
		return fmt.Errorf("failed to build scene: %w", err)
	}
	if v.world != nil {
		v.world.Dispose()
	}
	v.world = world
	v.radius = float64(layout.Extent()) * 1.2
	v.log.Infof("scene seed %d: %d objects", layout.Seed, len(world.Scene.Objects))
	return nil
}

func uploadMesh(g scenegen.Geometry) (gfx.Mesh, error) {
	m, err := glbackend.NewMesh(g.Positions, g.Normals, g.Indices)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// resize follows the framebuffer. Sizes are device pixels, so the
// composer's pixel ratio acts as a supersampling factor on top of any
// HiDPI scale. A minimised window reports zero and is ignored.
func (v *Viewer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.composer.SetSize(width, height)
	v.camera.Aspect = aspect(width, height)
	v.log.Debugf("resized to %dx%d", width, height)
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// Run drives frames until the window closes, Escape is pressed or a frame
// fails.
func (v *Viewer) Run() error {
	defer v.cleanup()

	v.isRunning = true
	v.lastUpdate = time.Now()

	for v.isRunning && !v.window.ShouldClose() {
		currentTime := time.Now()
		deltaTime := currentTime.Sub(v.lastUpdate).Seconds()
		v.lastUpdate = currentTime

		v.processInput()
		v.update(deltaTime)

		if err := v.composer.Render(v.world.Scene, v.camera); err != nil {
			return fmt.Errorf("frame %d: %w", v.composer.Stats().Frame, err)
		}

		v.window.SwapBuffers()
		glfw.PollEvents()

		if v.frameRate > 0 {
			frameTime := time.Since(currentTime)
			targetFrameTime := time.Second / time.Duration(v.frameRate)
			if frameTime < targetFrameTime {
				time.Sleep(targetFrameTime - frameTime)
			}
		}
	}
	return nil
}

func (v *Viewer) processInput() {
	v.input.Update()
	req := handleControls(v.input, v.composer, v.log)

	if req.quit {
		v.isRunning = false
	}
	if req.togglePause {
		v.paused = !v.paused
	}
	if req.regenerate {
		if err := v.generate(0); err != nil {
			v.log.Errorf("regenerate: %v", err)
		}
	}
	if req.zoom != 0 {
		extent := float64(v.world.Layout.Extent())
		v.radius = util.Clamp(v.radius*math.Pow(0.9, req.zoom), 2, extent*4)
	}
}

func (v *Viewer) update(deltaTime float64) {
	if !v.paused {
		v.orbit = math.Mod(v.orbit+deltaTime*orbitSpeed, 2*math.Pi)
	}
	placeCamera(v.camera, v.world.Layout, v.orbit, v.radius)
}

// placeCamera puts camera on a circle of radius around the terrain centre,
// above the ground beneath it, looking at the centre.
func placeCamera(camera *gfx.PerspectiveCamera, layout *scenegen.Layout, angle, radius float64) {
	x := math.Cos(angle) * radius
	z := math.Sin(angle) * radius
	ground := layout.HeightAt(x, z) * scenegen.HeightScale

	camera.Position = mgl32.Vec3{float32(x), float32(ground + 2 + radius*0.35), float32(z)}
	camera.Target = mgl32.Vec3{0, float32(layout.HeightAt(0, 0)*scenegen.HeightScale) + 1, 0}
}

// cleanup releases GPU resources before the context goes away
func (v *Viewer) cleanup() {
	v.log.Info("Shutting down viewer...")
	if v.composer != nil {
		v.composer.Dispose()
	}
	if v.world != nil {
		v.world.Dispose()
	}
	if v.ctx != nil {
		v.ctx.Close()
	}
	v.window.Destroy()
	glfw.Terminate()
}
