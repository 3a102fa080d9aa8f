package gpu

import "errors"

// Renderer core errors.
var (
	// ErrShaderCompilation is returned when the UI shader fails to compile.
	ErrShaderCompilation = errors.New("gpu: shader compilation failed")

	// ErrPipelineCreation is returned when a render pipeline cannot be built.
	ErrPipelineCreation = errors.New("gpu: pipeline creation failed")

	// ErrBufferCreation is returned when a vertex, index or uniform buffer
	// cannot be allocated.
	ErrBufferCreation = errors.New("gpu: buffer creation failed")

	// ErrBindGroupCreation is returned when a bind group cannot be built.
	ErrBindGroupCreation = errors.New("gpu: bind group creation failed")

	// ErrNotInitialized is returned when resources are used before Init.
	ErrNotInitialized = errors.New("gpu: resources not initialized")

	// ErrAlreadyInitialized is returned when Init is called twice without
	// an intervening Destroy.
	ErrAlreadyInitialized = errors.New("gpu: resources already initialized")

	// ErrInvalidFramesInFlight is returned for a frame pool of size zero.
	ErrInvalidFramesInFlight = errors.New("gpu: frames in flight must be at least 1")

	// ErrInvalidTargetFormat is returned for a color target format that
	// the pipeline cannot render to.
	ErrInvalidTargetFormat = errors.New("gpu: invalid render target format")

	// ErrHostBufferTooSmall is returned when an upload exceeds the slot's
	// staging capacity. Callers must ensure capacity first.
	ErrHostBufferTooSmall = errors.New("gpu: host staging buffer too small")
)
