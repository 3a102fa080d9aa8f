// Package native provides the gpucore.Device implementation on top of the
// gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES, software and noop).
//
// The package registers itself as the "native" backend on import:
//
//	import _ "github.com/gogpu/uirender/backend/native"
//
// Applications that already own a hal.Device can skip the registry and
// call NewDevice directly. Views of textures the application owns (the
// surface texture, offscreen targets) are made visible to the renderer
// with Device.ImportTextureView, and render passes the application has
// already begun are adapted with WrapRenderPass.
package native
