//go:build opengl

package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/uirender/backend"
	"github.com/gogpu/uirender/gpucore"
)

func init() {
	backend.Register(backend.BackendOpenGL, func() backend.RenderBackend {
		return Backend{}
	})
}

// Backend is the registry entry for the OpenGL device.
type Backend struct{}

// Name returns "opengl".
func (Backend) Name() string { return backend.BackendOpenGL }

// NewDevice makes the provider's GL context current and wraps it. The
// provider must have a MakeContextCurrent method, as *glfw.Window does.
func (Backend) NewDevice(provider gpucontext.DeviceProvider) (gpucore.Device, error) {
	ctx, ok := provider.(interface{ MakeContextCurrent() })
	if !ok {
		return nil, fmt.Errorf("opengl: provider has no GL context: %w", backend.ErrUnsupportedProvider)
	}
	ctx.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	backend.Logger().Info("opengl: context initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return NewDevice(), nil
}
