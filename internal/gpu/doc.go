// Package gpu implements the device-facing core of the uirender draw-data
// renderer.
//
// This is an internal package used by the uirender root package. Every
// GPU call goes through the [gpucore.Device] abstraction, so the same code
// drives the WebGPU HAL backend and the OpenGL backend.
//
// # Components
//
//   - Uniforms: orthographic projection and gamma scalar, encoded for upload
//   - PipelineCache: compiled shader module and one render pipeline per
//     (color format, sample count, depth-stencil format)
//   - RenderResources: sampler, uniform buffer, common bind group and the
//     per-texture image bind group cache
//   - FramePool: ring of per-frame vertex/index buffer slots with grow-only
//     capacity
//
// The render pass executor that ties these together lives in the root
// package, next to the draw data model it consumes.
//
// # Bind Group Layout
//
//	group 0: binding 0 uniform buffer (vertex+fragment), binding 1 sampler
//	group 1: binding 0 texture_2d<f32>
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The owning renderer
// serializes all calls per frame.
package gpu
