package gpucore

import "github.com/gogpu/gputypes"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// TextureViewID is an opaque handle to a view of a GPU texture.
type TextureViewID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// RenderPipelineID is an opaque handle to a render pipeline.
type RenderPipelineID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// ShaderStage is a bitmask of programmable pipeline stages.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// BindingType specifies the type of a shader binding.
type BindingType uint32

// Binding types.
const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota + 1

	// BindingTypeSampler is a filtering texture sampler binding.
	BindingTypeSampler

	// BindingTypeSampledTexture is a filterable float texture_2d binding.
	BindingTypeSampledTexture
)

// String returns the binding type name.
func (t BindingType) String() string {
	switch t {
	case BindingTypeUniformBuffer:
		return "UniformBuffer"
	case BindingTypeSampler:
		return "Sampler"
	case BindingTypeSampledTexture:
		return "SampledTexture"
	default:
		return "Unknown"
	}
}

// BufferDesc describes a GPU buffer.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes. Must be a multiple of 4.
	Size uint64

	// Usage is a bitmask of gputypes.BufferUsage flags.
	Usage gputypes.BufferUsage
}

// TextureDesc describes a 2D texture with a single mip level.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height uint32

	// Format is the texel format.
	Format gputypes.TextureFormat

	// Usage is a bitmask of gputypes.TextureUsage flags.
	Usage gputypes.TextureUsage
}

// SamplerDesc describes a texture sampler. The address mode applies
// to all three axes.
type SamplerDesc struct {
	Label        string
	AddressMode  gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
}

// ShaderModuleDesc carries shader sources for every backend.
// A device uses the first representation it understands:
// SPIR-V or WGSL for WebGPU-style devices, GLSL for OpenGL.
type ShaderModuleDesc struct {
	Label string

	// WGSL is the WGSL source of the module.
	WGSL string

	// SPIRV is the WGSL source compiled by naga. Optional.
	SPIRV []uint32

	// GLSLVertex and GLSLFragment are GLSL 330 core sources.
	GLSLVertex   string
	GLSLFragment string
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindGroupLayoutEntry
}

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Visibility is the set of shader stages that see the binding.
	Visibility ShaderStage

	// Type is the type of resource bound at this index.
	Type BindingType
}

// BindGroupEntry describes a single binding in a bind group.
// Exactly one of Buffer, Sampler or TextureView is set.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Offset is the offset into the buffer.
	Offset uint64

	// Size is the size of the buffer range to bind.
	Size uint64

	// Sampler is the sampler to bind (for sampler bindings).
	Sampler SamplerID

	// TextureView is the view to bind (for texture bindings).
	TextureView TextureViewID
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout.
	Layout BindGroupLayoutID

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// VertexAttribute describes one attribute of the single interleaved
// vertex buffer.
type VertexAttribute struct {
	Format         gputypes.VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// RenderPipelineDesc describes a render pipeline with one interleaved
// vertex buffer and one color target.
type RenderPipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the pipeline layout.
	Layout PipelineLayoutID

	// Module holds both entry points.
	Module             ShaderModuleID
	VertexEntryPoint   string
	FragmentEntryPoint string

	// VertexStride is the byte stride of the vertex buffer.
	VertexStride uint64
	Attributes   []VertexAttribute

	// ColorFormat is the format of the color target.
	ColorFormat gputypes.TextureFormat

	// Blend is the color target blend state. Nil disables blending.
	Blend *gputypes.BlendState

	// DepthStencilFormat is the depth-stencil attachment format, or
	// gputypes.TextureFormatUndefined when the pass has none.
	DepthStencilFormat gputypes.TextureFormat

	// SampleCount is the multisample count. Zero means 1.
	SampleCount uint32
}

// RenderPassDesc describes a render pass with one color attachment.
type RenderPassDesc struct {
	// Label is an optional debug label.
	Label string

	// ColorView is the color attachment.
	ColorView TextureViewID

	// ResolveView receives the resolved samples of a multisampled
	// ColorView. Optional.
	ResolveView TextureViewID

	// LoadOp is the color load operation.
	LoadOp gputypes.LoadOp

	// ClearColor is used when LoadOp is gputypes.LoadOpClear.
	ClearColor gputypes.Color

	// DepthStencilView is the depth-stencil attachment. Optional.
	DepthStencilView TextureViewID
}
