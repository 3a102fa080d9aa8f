// Package backend provides the registry of graphics backends for uirender.
//
// A backend turns the device of a host application into a gpucore.Device.
// Backends live in sub-packages and register themselves from init(), so
// an application selects them with a blank import:
//
//	import _ "github.com/gogpu/uirender/backend/native"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b := backend.Default()
//	dev, err := b.NewDevice(provider)
//
// uirender.NewFromProvider does this for you.
//
// # Available Backends
//
//   - "native": gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES, software)
//   - "opengl": OpenGL 3.3 core via go-gl (build tag opengl)
package backend
