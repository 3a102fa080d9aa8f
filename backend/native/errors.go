package native

import "errors"

var (
	// ErrUnknownResource is returned when an ID does not name a live
	// resource of this device.
	ErrUnknownResource = errors.New("native: unknown resource")

	// ErrEmptyShader is returned when a shader module descriptor carries
	// neither SPIR-V nor WGSL.
	ErrEmptyShader = errors.New("native: shader module has no SPIR-V or WGSL source")

	// ErrPassOpen is returned by Submit while a render pass is still
	// recording.
	ErrPassOpen = errors.New("native: render pass not ended")
)
