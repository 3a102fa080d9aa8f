package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/uirender/gpucore"
)

// Backend name constants.
const (
	// BackendNative is the name of the Pure Go WebGPU backend (gogpu/wgpu HAL).
	BackendNative = "native"
	// BackendOpenGL is the name of the OpenGL 3.3 core backend (go-gl).
	BackendOpenGL = "opengl"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrUnsupportedProvider is returned when a device provider does not
	// expose the handles a backend needs.
	ErrUnsupportedProvider = errors.New("backend: unsupported device provider")
)

// RenderBackend creates gpucore devices for one graphics API.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type RenderBackend interface {
	// Name returns the backend identifier (e.g., "native", "opengl").
	Name() string

	// NewDevice wraps the device of a host application.
	// Returns ErrUnsupportedProvider if provider does not carry handles
	// this backend understands.
	NewDevice(provider gpucontext.DeviceProvider) (gpucore.Device, error)
}
