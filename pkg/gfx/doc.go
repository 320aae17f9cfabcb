// Package gfx defines the graphics backend contract used by the post-processing
// pipeline: render targets, textures, shader materials, scene and camera
// handles, and the mutable pipeline state (bound target, clear colour,
// colour/depth write masks, stencil and blend) with scoped save/restore.
//
// Implementations live in sub-packages: glbackend drives OpenGL 4.1 through
// go-gl, gfxtest records calls in memory for tests.
package gfx
