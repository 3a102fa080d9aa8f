// Package opengl provides a gpucore.Device on OpenGL 3.3 core via go-gl.
//
// The package is built with the opengl tag and needs cgo:
//
//	go build -tags opengl
//
// A Device issues GL calls directly, so every method must run on the
// goroutine (OS thread) that owns the current GL context. Resource IDs
// map to GL object names; render passes bind a framebuffer object for
// texture targets or framebuffer 0 for the window.
//
// # Binding Model
//
// WebGPU bind groups are flattened onto GL binding points: uniform
// buffers go to uniform block binding 0, samplers and sampled textures
// to texture unit 0. Programs get their Uniforms block and ui_texture
// sampler wired to those points at link time. This covers the renderer's
// two-group layout, not arbitrary layouts.
//
// # Coordinates
//
// Viewport and scissor rectangles arrive with a top-left origin and are
// flipped against the target height.
package opengl
