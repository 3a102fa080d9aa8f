// Package gpucore provides the graphics API abstraction for the uirender
// draw-data renderer.
//
// This package defines the [Device] interface, which abstracts over
// different graphics backends, allowing the same renderer core to work with:
//   - gogpu/wgpu (Pure Go WebGPU via HAL), see backend/native
//   - OpenGL 3.3 core via go-gl, see backend/opengl
//
// # Architecture
//
// The renderer core (uniforms, pipelines, resources, frame pool, pass
// executor) is implemented once in internal/gpu against [Device], while
// thin backends translate between the [Device] interface and a specific
// graphics API.
//
//	               +------------------+
//	               |  renderer core   |
//	               |  (internal/gpu)  |
//	               +--------+---------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|  native device  |          |  opengl device  |
//	|  (hal.Device)   |          |   (go-gl/gl)    |
//	+--------+--------+          +--------+--------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|   gogpu/wgpu    |          |   OpenGL 3.3    |
//	|   (Pure Go)     |          |   core profile  |
//	+-----------------+          +-----------------+
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([BufferID], [TextureViewID],
// [BindGroupID], etc.). The [Device] interface provides creation and
// destruction methods for each resource type. Devices are responsible
// for tracking the mapping between IDs and actual backend resources.
// [InvalidID] is never handed out.
//
// # Recording
//
// Draw commands are recorded into a [RenderPassEncoder]. The encoder is
// either created by [Device.BeginRenderPass] or supplied by the host
// application when the renderer draws into a pass it does not own.
package gpucore
