package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirender/backend"
	"github.com/gogpu/uirender/gpucore"
)

func init() {
	backend.Register(backend.BackendNative, func() backend.RenderBackend {
		return Backend{}
	})
}

// Backend is the registry entry for the native device.
type Backend struct{}

// Name returns "native".
func (Backend) Name() string { return backend.BackendNative }

// NewDevice wraps the HAL device of a provider. The provider must expose
// HalDevice() and HalQueue() returning hal.Device and hal.Queue, as
// gogpu windows do.
func (Backend) NewDevice(provider gpucontext.DeviceProvider) (gpucore.Device, error) {
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}
	backend.Logger().Debug("native: device created from provider")
	return NewDevice(device, queue), nil
}

func halFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("native: provider does not expose HAL types: %w", backend.ErrUnsupportedProvider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("native: provider HalDevice is not hal.Device: %w", backend.ErrUnsupportedProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("native: provider HalQueue is not hal.Queue: %w", backend.ErrUnsupportedProvider)
	}
	return device, queue, nil
}
