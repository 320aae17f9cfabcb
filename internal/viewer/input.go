package viewer

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// keyReader is the part of *glfw.Window the input handler polls
type keyReader interface {
	GetKey(key glfw.Key) glfw.Action
}

// watchedKeys are the keys the viewer reacts to
var watchedKeys = []glfw.Key{
	glfw.KeyEscape, glfw.KeySpace, glfw.KeyO, glfw.KeyR,
	glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4, glfw.Key5,
	glfw.Key6, glfw.Key7, glfw.Key8, glfw.Key9,
}

// InputHandler tracks key edges and scroll between frames
type InputHandler struct {
	keys         keyReader
	currentKeys  map[glfw.Key]bool
	previousKeys map[glfw.Key]bool
	wheelDelta   float64
}

// NewInputHandler polls window and records its scroll wheel
func NewInputHandler(window *glfw.Window) *InputHandler {
	handler := newInputHandler(window)
	window.SetScrollCallback(func(_ *glfw.Window, _, yoffset float64) {
		handler.addScroll(yoffset)
	})
	return handler
}

func newInputHandler(keys keyReader) *InputHandler {
	return &InputHandler{
		keys:         keys,
		currentKeys:  make(map[glfw.Key]bool),
		previousKeys: make(map[glfw.Key]bool),
	}
}

func (ih *InputHandler) addScroll(delta float64) {
	ih.wheelDelta += delta
}

// Update samples the watched keys. Call once per frame after PollEvents.
func (ih *InputHandler) Update() {
	ih.previousKeys, ih.currentKeys = ih.currentKeys, ih.previousKeys
	for _, key := range watchedKeys {
		ih.currentKeys[key] = ih.keys.GetKey(key) == glfw.Press
	}
}

// IsKeyDown reports whether key is held
func (ih *InputHandler) IsKeyDown(key glfw.Key) bool {
	return ih.currentKeys[key]
}

// IsKeyPressed reports whether key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// WheelDelta returns the scroll accumulated since the last call
func (ih *InputHandler) WheelDelta() float64 {
	delta := ih.wheelDelta
	ih.wheelDelta = 0
	return delta
}
