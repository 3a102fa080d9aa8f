//go:build opengl

package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
)

// renderPass implements gpucore.RenderPassEncoder by issuing GL calls
// immediately. Vertex attribute pointers depend on both the pipeline and
// the vertex buffer, so they are applied lazily at the next draw.
type renderPass struct {
	device       *Device
	targetHeight int32
	ended        bool

	pipeline    *glPipeline
	vertex      *glBuffer
	vertexOff   uint64
	index       *glBuffer
	indexOff    uint64
	indexType   uint32
	indexSize   uint64
	vertexDirty bool
}

// SetPipeline binds the program, its vertex array and blend state.
func (p *renderPass) SetPipeline(pipeline gpucore.RenderPipelineID) {
	pl, ok := p.device.pipelines[pipeline]
	if p.ended || !ok {
		return
	}
	p.pipeline = pl
	p.vertexDirty = true
	gl.UseProgram(pl.program)
	gl.BindVertexArray(pl.vao)
	if p.index != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.index.name)
	}

	if pl.blend == nil {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendEquationSeparate(
		convertBlendOperation(pl.blend.Color.Operation),
		convertBlendOperation(pl.blend.Alpha.Operation),
	)
	gl.BlendFuncSeparate(
		convertBlendFactor(pl.blend.Color.SrcFactor),
		convertBlendFactor(pl.blend.Color.DstFactor),
		convertBlendFactor(pl.blend.Alpha.SrcFactor),
		convertBlendFactor(pl.blend.Alpha.DstFactor),
	)
}

// SetBindGroup binds uniform buffers to block binding 0 and samplers and
// textures to unit 0. The group index does not matter for GL.
func (p *renderPass) SetBindGroup(_ uint32, group gpucore.BindGroupID) {
	g, ok := p.device.bindGroups[group]
	if p.ended || !ok {
		return
	}
	if g.uniform != 0 {
		gl.BindBufferRange(gl.UNIFORM_BUFFER, 0, g.uniform, int(g.uniformOffset), int(g.uniformSize))
	}
	if g.sampler != 0 {
		gl.BindSampler(0, g.sampler)
	}
	if g.texture != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, g.texture)
	}
}

// SetVertexBuffer records the vertex buffer. Only slot 0 is supported.
func (p *renderPass) SetVertexBuffer(slot uint32, buffer gpucore.BufferID, offset uint64) {
	b, ok := p.device.buffers[buffer]
	if p.ended || !ok || slot != 0 {
		return
	}
	p.vertex, p.vertexOff = b, offset
	p.vertexDirty = true
}

// SetIndexBuffer binds the element buffer to the current vertex array.
func (p *renderPass) SetIndexBuffer(buffer gpucore.BufferID, format gputypes.IndexFormat, offset uint64) {
	b, ok := p.device.buffers[buffer]
	if p.ended || !ok {
		return
	}
	p.index, p.indexOff = b, offset
	p.indexType, p.indexSize = convertIndexFormat(format)
	if p.pipeline != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.name)
	}
}

// SetViewport sets the viewport, flipping y to GL's bottom-left origin.
func (p *renderPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	if p.ended {
		return
	}
	gl.Viewport(int32(x), flipRect(int32(y), int32(height), p.targetHeight), int32(width), int32(height))
	gl.DepthRange(float64(minDepth), float64(maxDepth))
}

// SetScissorRect sets the scissor box, flipping y to GL's bottom-left
// origin.
func (p *renderPass) SetScissorRect(x, y, width, height uint32) {
	if p.ended {
		return
	}
	gl.Scissor(int32(x), flipRect(int32(y), int32(height), p.targetHeight), int32(width), int32(height))
}

// DrawIndexed issues glDrawElementsInstancedBaseVertex.
func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.ended || p.pipeline == nil || p.vertex == nil || p.index == nil || firstInstance != 0 {
		return
	}
	if p.vertexDirty {
		p.applyVertexLayout()
	}
	indices := ptrOffset(p.indexOff + uint64(firstIndex)*p.indexSize)
	if instanceCount == 1 {
		gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(indexCount), p.indexType, indices, baseVertex)
		return
	}
	gl.DrawElementsInstancedBaseVertex(gl.TRIANGLES, int32(indexCount), p.indexType, indices, int32(instanceCount), baseVertex)
}

func (p *renderPass) applyVertexLayout() {
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vertex.name)
	for _, a := range p.pipeline.attrs {
		f, err := convertVertexFormat(a.Format)
		if err != nil {
			continue
		}
		gl.EnableVertexAttribArray(a.ShaderLocation)
		gl.VertexAttribPointer(a.ShaderLocation, f.size, f.xtype, f.normalized, p.pipeline.stride, ptrOffset(p.vertexOff+a.Offset))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	p.vertexDirty = false
}

// End unbinds the state the pass changed.
func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.BindSampler(0, 0)
	gl.Disable(gl.SCISSOR_TEST)
	gl.Disable(gl.BLEND)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Compile-time interface check.
var _ gpucore.RenderPassEncoder = (*renderPass)(nil)
