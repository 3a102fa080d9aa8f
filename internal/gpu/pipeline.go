package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
)

// VertexStride is the byte size of one packed UI vertex:
// position (2xf32), uv (2xf32), color (4xu8).
const VertexStride = 20

// PipelineKey identifies a render pipeline variant. Pipelines are only
// compatible with render passes whose attachments match the key.
type PipelineKey struct {
	ColorFormat        gputypes.TextureFormat
	SampleCount        uint32
	DepthStencilFormat gputypes.TextureFormat
}

// ValidateTargetFormat reports whether format can be used as the color
// target of the UI pipeline.
func ValidateTargetFormat(format gputypes.TextureFormat) error {
	switch format {
	case gputypes.TextureFormatUndefined:
		return fmt.Errorf("%w: undefined", ErrInvalidTargetFormat)
	case gputypes.TextureFormatStencil8,
		gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return fmt.Errorf("%w: depth-stencil format %v", ErrInvalidTargetFormat, format)
	}
	return nil
}

// UIBlendState returns straight-alpha blending for color and
// one/one-minus-src-alpha for alpha.
func UIBlendState() gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

// UIVertexAttributes returns the vertex layout matching VertexStride.
func UIVertexAttributes() []gpucore.VertexAttribute {
	return []gpucore.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
		{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
		{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2}, // color
	}
}

// PipelineCache owns the UI shader module and pipeline layout, and
// creates render pipelines lazily, one per PipelineKey.
type PipelineCache struct {
	device gpucore.Device

	module gpucore.ShaderModuleID
	layout gpucore.PipelineLayoutID

	pipelines map[PipelineKey]gpucore.RenderPipelineID
}

// NewPipelineCache compiles the UI shader and creates the pipeline layout
// from the given bind group layouts (group 0 first).
//
// Shader compilation failure is fatal and returns ErrShaderCompilation.
func NewPipelineCache(device gpucore.Device, groups []gpucore.BindGroupLayoutID) (*PipelineCache, error) {
	desc, err := shaderModuleDesc()
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompilation, err)
	}

	layout, err := device.CreatePipelineLayout("ui_pipeline_layout", groups)
	if err != nil {
		device.DestroyShaderModule(module)
		return nil, fmt.Errorf("%w: pipeline layout: %w", ErrPipelineCreation, err)
	}

	return &PipelineCache{
		device:    device,
		module:    module,
		layout:    layout,
		pipelines: make(map[PipelineKey]gpucore.RenderPipelineID),
	}, nil
}

// Get returns the pipeline for key, creating it on first use.
func (c *PipelineCache) Get(key PipelineKey) (gpucore.RenderPipelineID, error) {
	if key.SampleCount == 0 {
		key.SampleCount = 1
	}
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	if err := ValidateTargetFormat(key.ColorFormat); err != nil {
		return gpucore.InvalidID, err
	}

	blend := UIBlendState()
	p, err := c.device.CreateRenderPipeline(&gpucore.RenderPipelineDesc{
		Label:              fmt.Sprintf("ui_pipeline_%v_x%d", key.ColorFormat, key.SampleCount),
		Layout:             c.layout,
		Module:             c.module,
		VertexEntryPoint:   VertexEntryPoint,
		FragmentEntryPoint: FragmentEntryPoint,
		VertexStride:       VertexStride,
		Attributes:         UIVertexAttributes(),
		ColorFormat:        key.ColorFormat,
		Blend:              &blend,
		DepthStencilFormat: key.DepthStencilFormat,
		SampleCount:        key.SampleCount,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: %w", ErrPipelineCreation, err)
	}

	slogger().Debug("ui pipeline created",
		"format", key.ColorFormat,
		"samples", key.SampleCount,
		"depth_stencil", key.DepthStencilFormat,
	)
	c.pipelines[key] = p
	return p, nil
}

// Len returns the number of cached pipelines.
func (c *PipelineCache) Len() int { return len(c.pipelines) }

// Destroy releases all pipelines, the layout and the shader module.
func (c *PipelineCache) Destroy() {
	for k, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
	if c.layout != gpucore.InvalidID {
		c.device.DestroyPipelineLayout(c.layout)
		c.layout = gpucore.InvalidID
	}
	if c.module != gpucore.InvalidID {
		c.device.DestroyShaderModule(c.module)
		c.module = gpucore.InvalidID
	}
}
