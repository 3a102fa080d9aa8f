// Package uirender draws the output of an immediate-mode UI library on the
// GPU.
//
// # Overview
//
// A UI library produces one [DrawData] per frame: a set of [DrawList]
// values, each with its own vertex buffer, 16-bit index buffer and an
// ordered list of [DrawCmd] values. Every command either draws a range of
// indices with one texture under one clip rectangle, or runs a
// [DrawCallback] supplied by the application.
//
// A [Renderer] turns that description into GPU commands recorded into a
// render pass owned by the application:
//
//	r, err := uirender.New(device, gputypes.TextureFormatBGRA8UnormSrgb)
//	if err != nil {
//	    return err
//	}
//	defer r.Destroy()
//
//	fontAtlas, err := r.Textures().CreateTexture(atlasImage)
//
//	// every frame
//	if err := r.NewFrame(); err != nil {
//	    return err
//	}
//	stats, err := r.Render(drawData, pass)
//
// # Devices
//
// The renderer talks to the GPU through [gpucore.Device]. Backends in
// backend/native (gogpu/wgpu HAL) and backend/opengl (OpenGL 3.3 core,
// build tag opengl) implement it. [NewFromProvider] picks the default
// registered backend for a host application's gpucontext.DeviceProvider.
//
// # Frames in flight
//
// Vertex and index data are uploaded into one of NumFramesInFlight buffer
// slots, so the CPU can fill the next frame while the GPU still reads the
// previous ones. Slots grow on demand and never shrink.
//
// # Textures
//
// [TextureID] zero is a built-in 1x1 white texture used for untextured
// geometry. Other IDs come from the [TextureManager]: either textures it
// uploads itself or views owned by the application. Commands naming an
// unknown texture are skipped.
//
// # Color
//
// Vertex colors and textures are straight (non-premultiplied) alpha. The
// fragment shader raises its output to a gamma exponent of 2.2 on sRGB
// targets and 1.0 otherwise; see [GammaMode].
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route its
// diagnostics to a log/slog handler.
package uirender

// Version is the current version of the library.
const Version = "0.1.0"
