package gpucore

import "github.com/gogpu/gputypes"

// Device abstracts over different graphics API implementations.
//
// This interface is the core abstraction that allows the draw-data
// renderer to work with multiple backends (gogpu/wgpu HAL, OpenGL).
// Renderer code never touches backend handles directly; everything goes
// through opaque IDs.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying an unknown or already destroyed ID is a no-op
//   - IDs become invalid after destruction and are never reused
type Device interface {
	// Name returns the backend identifier (e.g. "native", "opengl").
	Name() string

	// === Shader Compilation ===

	// CreateShaderModule creates a shader module from the representation
	// in desc that the backend understands.
	CreateShaderModule(desc *ShaderModuleDesc) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// === Buffer Management ===

	// CreateBuffer creates a GPU buffer.
	// Returns an error if allocation fails.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer writes data to a buffer through the queue.
	// Both offset and len(data) must be multiples of 4.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// === Texture Management ===

	// CreateTexture creates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// WriteTexture replaces the full contents of a texture.
	// data is tightly packed rows of the texture's format.
	WriteTexture(id TextureID, data []byte) error

	// WriteTextureRegion replaces a width x height rectangle at (x, y).
	// data is tightly packed rows of the rectangle.
	WriteTextureRegion(id TextureID, x, y, width, height uint32, data []byte) error

	// CreateTextureView creates a default 2D view of a texture.
	CreateTextureView(texture TextureID) (TextureViewID, error)

	// DestroyTextureView releases a texture view.
	DestroyTextureView(id TextureViewID)

	// CreateSampler creates a texture sampler.
	CreateSampler(desc *SamplerDesc) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// === Pipeline Management ===

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreatePipelineLayout combines bind group layouts, in group order.
	CreatePipelineLayout(label string, layouts []BindGroupLayoutID) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateBindGroup creates a bind group.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// === Command Recording and Execution ===

	// BeginRenderPass begins a render pass on the device's frame encoder.
	// The returned encoder must be ended with RenderPassEncoder.End()
	// before Submit is called.
	BeginRenderPass(desc *RenderPassDesc) (RenderPassEncoder, error)

	// Submit submits recorded commands to the GPU.
	Submit() error

	// WaitIdle waits for all GPU operations to complete.
	// Use sparingly as this causes a full GPU-CPU synchronization.
	WaitIdle()
}

// RenderPassEncoder records draw commands.
//
// Usage:
//  1. Obtain encoder from Device.BeginRenderPass() or from the host
//  2. Set pipeline, bind groups, vertex and index buffers
//  3. Set scissor rects and issue indexed draws
//  4. Call End() to finish recording
//  5. Call Device.Submit() to execute
//
// The encoder is single-use and cannot be reused after End().
// It is NOT safe for concurrent use.
type RenderPassEncoder interface {
	// SetPipeline sets the active render pipeline.
	SetPipeline(pipeline RenderPipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// SetVertexBuffer binds a vertex buffer to a slot.
	SetVertexBuffer(slot uint32, buffer BufferID, offset uint64)

	// SetIndexBuffer binds the index buffer.
	SetIndexBuffer(buffer BufferID, format gputypes.IndexFormat, offset uint64)

	// SetViewport sets the viewport transformation.
	SetViewport(x, y, width, height, minDepth, maxDepth float32)

	// SetScissorRect sets the scissor rectangle in framebuffer pixels,
	// origin top-left.
	SetScissorRect(x, y, width, height uint32)

	// DrawIndexed draws indexed primitives.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End finishes the render pass.
	// After this call, the encoder cannot be used again.
	End()
}
