package uirender

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/internal/gpu"
)

// DefaultFramesInFlight is the default number of per-frame buffer slots.
const DefaultFramesInFlight = 3

// GammaMode selects the gamma exponent applied by the fragment shader.
type GammaMode = gpu.GammaMode

// Gamma modes.
const (
	// GammaAuto uses 2.2 for sRGB render targets and 1.0 otherwise.
	GammaAuto = gpu.GammaModeAuto

	// GammaLinear always uses 1.0.
	GammaLinear = gpu.GammaModeLinear

	// GammaSRGB always uses 2.2.
	GammaSRGB = gpu.GammaModeSRGB
)

// Config holds the renderer configuration.
type Config struct {
	// NumFramesInFlight is the number of vertex/index buffer slots.
	NumFramesInFlight uint32

	// RenderTargetFormat is the color format of the passes the renderer
	// draws into.
	RenderTargetFormat gputypes.TextureFormat

	// DepthStencilFormat is the depth-stencil format of the pass, or
	// gputypes.TextureFormatUndefined if the pass has none.
	DepthStencilFormat gputypes.TextureFormat

	// SampleCount is the multisample count of the color target.
	SampleCount uint32

	// GammaMode selects the output gamma.
	GammaMode GammaMode
}

// DefaultConfig returns the default configuration for format.
func DefaultConfig(format gputypes.TextureFormat) Config {
	return Config{
		NumFramesInFlight:  DefaultFramesInFlight,
		RenderTargetFormat: format,
		DepthStencilFormat: gputypes.TextureFormatUndefined,
		SampleCount:        1,
		GammaMode:          GammaAuto,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.NumFramesInFlight == 0 {
		return fmt.Errorf("%w: frames in flight must be at least 1", ErrInvalidRenderState)
	}
	if c.SampleCount == 0 {
		return fmt.Errorf("%w: sample count must be at least 1", ErrInvalidRenderState)
	}
	if err := gpu.ValidateTargetFormat(c.RenderTargetFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRenderState, err)
	}
	if c.GammaMode > GammaSRGB {
		return fmt.Errorf("%w: unknown gamma mode %d", ErrInvalidRenderState, c.GammaMode)
	}
	return nil
}

func (c *Config) pipelineKey() gpu.PipelineKey {
	return gpu.PipelineKey{
		ColorFormat:        c.RenderTargetFormat,
		SampleCount:        c.SampleCount,
		DepthStencilFormat: c.DepthStencilFormat,
	}
}

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := uirender.New(dev, gputypes.TextureFormatBGRA8UnormSrgb,
//	    uirender.WithFramesInFlight(2),
//	    uirender.WithDepthStencil(gputypes.TextureFormatDepth24PlusStencil8),
//	)
type Option func(*Config)

// WithFramesInFlight sets the number of per-frame buffer slots.
func WithFramesInFlight(n uint32) Option {
	return func(c *Config) {
		c.NumFramesInFlight = n
	}
}

// WithDepthStencil declares the depth-stencil format of the target pass.
// The UI pipeline never writes depth or stencil.
func WithDepthStencil(format gputypes.TextureFormat) Option {
	return func(c *Config) {
		c.DepthStencilFormat = format
	}
}

// WithSampleCount sets the multisample count of the target pass.
func WithSampleCount(n uint32) Option {
	return func(c *Config) {
		c.SampleCount = n
	}
}

// WithGammaMode overrides the gamma chosen from the target format.
func WithGammaMode(m GammaMode) Option {
	return func(c *Config) {
		c.GammaMode = m
	}
}

// WithConfig replaces the whole configuration. Options after it still
// apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
