package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirender/gpucore"
)

// renderPass implements gpucore.RenderPassEncoder over a hal render pass,
// resolving gpucore IDs through the owning Device. Unknown IDs are
// ignored, matching the hal encoders, which validate at End.
type renderPass struct {
	device *Device
	pass   hal.RenderPassEncoder
	ended  bool
	onEnd  func()
}

// WrapRenderPass adapts a render pass begun by the application so the
// renderer can record into it. Ending the pass stays the application's
// job unless it calls End on the returned encoder. Report the submission
// of the application's encoder with TrackSubmission.
func (d *Device) WrapRenderPass(pass hal.RenderPassEncoder) gpucore.RenderPassEncoder {
	return &renderPass{device: d, pass: pass}
}

// SetPipeline sets the active render pipeline.
func (p *renderPass) SetPipeline(pipeline gpucore.RenderPipelineID) {
	if p.ended {
		return
	}
	p.device.mu.RLock()
	halPipeline, ok := p.device.pipelines[pipeline]
	p.device.mu.RUnlock()

	if ok {
		p.pass.SetPipeline(halPipeline)
	}
}

// SetBindGroup sets a bind group at the specified index.
func (p *renderPass) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	if p.ended {
		return
	}
	p.device.mu.RLock()
	halGroup, ok := p.device.bindGroups[group]
	p.device.mu.RUnlock()

	if ok {
		p.pass.SetBindGroup(index, halGroup, nil)
	}
}

// SetVertexBuffer binds a vertex buffer to a slot.
func (p *renderPass) SetVertexBuffer(slot uint32, buffer gpucore.BufferID, offset uint64) {
	if p.ended {
		return
	}
	p.device.mu.RLock()
	buf, ok := p.device.buffers[buffer]
	p.device.mu.RUnlock()

	if ok {
		p.pass.SetVertexBuffer(slot, buf, offset)
	}
}

// SetIndexBuffer binds the index buffer.
func (p *renderPass) SetIndexBuffer(buffer gpucore.BufferID, format gputypes.IndexFormat, offset uint64) {
	if p.ended {
		return
	}
	p.device.mu.RLock()
	buf, ok := p.device.buffers[buffer]
	p.device.mu.RUnlock()

	if ok {
		p.pass.SetIndexBuffer(buf, format, offset)
	}
}

// SetViewport sets the viewport transformation.
func (p *renderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	if !p.ended {
		p.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
	}
}

// SetScissorRect sets the scissor rectangle.
func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	if !p.ended {
		p.pass.SetScissorRect(x, y, width, height)
	}
}

// DrawIndexed draws indexed primitives.
func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if !p.ended {
		p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	}
}

// End finishes the render pass. Calling End twice is a no-op.
func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.pass.End()
	if p.onEnd != nil {
		p.onEnd()
	}
}

// Compile-time interface check.
var _ gpucore.RenderPassEncoder = (*renderPass)(nil)
