// Package gputest provides a recording gpucore.Device for tests.
//
// The device allocates IDs, keeps buffer contents written through
// WriteBuffer, and records every render pass command. Each DrawIndexed
// call captures a snapshot of the pass state so tests can assert on the
// pipeline, bind groups and scissor rect a draw actually used.
package gputest

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
)

// ErrInjected is returned by create methods whose failure flag is set.
var ErrInjected = errors.New("gputest: injected failure")

// Resource kinds used as keys of Device.Live.
const (
	KindShader          = "shader"
	KindBuffer          = "buffer"
	KindTexture         = "texture"
	KindTextureView     = "texture_view"
	KindSampler         = "sampler"
	KindBindGroupLayout = "bind_group_layout"
	KindPipelineLayout  = "pipeline_layout"
	KindBindGroup       = "bind_group"
	KindPipeline        = "pipeline"
)

// Buffer is a recorded buffer.
type Buffer struct {
	Desc gpucore.BufferDesc
	Data []byte
}

// BufferWrite records one WriteBuffer call.
type BufferWrite struct {
	Buffer gpucore.BufferID
	Offset uint64
	Size   int
}

// Device is a recording gpucore.Device. The zero value is not usable;
// call NewDevice.
type Device struct {
	nextID uint64

	// Failure injection. When set, the matching create method fails.
	FailBuffers   bool
	FailPipelines bool
	FailShaders   bool
	FailTextures  bool

	// FailBufferLabel makes only buffers with this label fail.
	FailBufferLabel string

	Buffers        map[gpucore.BufferID]*Buffer
	Textures       map[gpucore.TextureID]gpucore.TextureDesc
	TextureData    map[gpucore.TextureID][]byte
	Views          map[gpucore.TextureViewID]gpucore.TextureID
	Pipelines      map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc
	BindGroups     map[gpucore.BindGroupID]gpucore.BindGroupDesc
	ShaderModules  map[gpucore.ShaderModuleID]gpucore.ShaderModuleDesc
	Writes         []BufferWrite
	Passes         []*Pass
	Submits        int
	RegionWrites   int
	WaitIdleCalls  int
	PipelineDescs  []gpucore.RenderPipelineDesc
	BindGroupDescs []gpucore.BindGroupDesc

	live map[string]int
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Buffers:       make(map[gpucore.BufferID]*Buffer),
		Textures:      make(map[gpucore.TextureID]gpucore.TextureDesc),
		TextureData:   make(map[gpucore.TextureID][]byte),
		Views:         make(map[gpucore.TextureViewID]gpucore.TextureID),
		Pipelines:     make(map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc),
		BindGroups:    make(map[gpucore.BindGroupID]gpucore.BindGroupDesc),
		ShaderModules: make(map[gpucore.ShaderModuleID]gpucore.ShaderModuleDesc),
		live:          make(map[string]int),
	}
}

var _ gpucore.Device = (*Device)(nil)

func (d *Device) newID(kind string) uint64 {
	d.nextID++
	d.live[kind]++
	return d.nextID
}

// Live returns the number of live resources of kind.
func (d *Device) Live(kind string) int { return d.live[kind] }

// LiveTotal returns the number of live resources of every kind.
func (d *Device) LiveTotal() int {
	n := 0
	for _, c := range d.live {
		n += c
	}
	return n
}

// Name implements gpucore.Device.
func (d *Device) Name() string { return "gputest" }

// CreateShaderModule implements gpucore.Device.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDesc) (gpucore.ShaderModuleID, error) {
	if d.FailShaders {
		return gpucore.InvalidID, fmt.Errorf("shader %q: %w", desc.Label, ErrInjected)
	}
	id := gpucore.ShaderModuleID(d.newID(KindShader))
	d.ShaderModules[id] = *desc
	return id, nil
}

// DestroyShaderModule implements gpucore.Device.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	if _, ok := d.ShaderModules[id]; ok {
		delete(d.ShaderModules, id)
		d.live[KindShader]--
	}
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if d.FailBuffers || (d.FailBufferLabel != "" && desc.Label == d.FailBufferLabel) {
		return gpucore.InvalidID, fmt.Errorf("buffer %q: %w", desc.Label, ErrInjected)
	}
	if desc.Size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("buffer %q: size %d not a multiple of 4", desc.Label, desc.Size)
	}
	id := gpucore.BufferID(d.newID(KindBuffer))
	d.Buffers[id] = &Buffer{Desc: *desc, Data: make([]byte, desc.Size)}
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	if _, ok := d.Buffers[id]; ok {
		delete(d.Buffers, id)
		d.live[KindBuffer]--
	}
}

// WriteBuffer implements gpucore.Device. Writes to unknown buffers or
// past the end of a buffer panic, as they would fail validation on a
// real device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	b, ok := d.Buffers[id]
	if !ok {
		panic(fmt.Sprintf("gputest: write to unknown buffer %d", id))
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		panic(fmt.Sprintf("gputest: unaligned write offset=%d size=%d", offset, len(data)))
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows buffer %q (%d bytes)",
			len(data), offset, b.Desc.Label, len(b.Data)))
	}
	copy(b.Data[offset:], data)
	d.Writes = append(d.Writes, BufferWrite{Buffer: id, Offset: offset, Size: len(data)})
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if d.FailTextures {
		return gpucore.InvalidID, fmt.Errorf("texture %q: %w", desc.Label, ErrInjected)
	}
	id := gpucore.TextureID(d.newID(KindTexture))
	d.Textures[id] = *desc
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	if _, ok := d.Textures[id]; ok {
		delete(d.Textures, id)
		delete(d.TextureData, id)
		d.live[KindTexture]--
	}
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	desc, ok := d.Textures[id]
	if !ok {
		return fmt.Errorf("gputest: texture %d not found", id)
	}
	if want := int(desc.Width * desc.Height * 4); len(data) != want {
		return fmt.Errorf("gputest: texture data %d bytes, want %d", len(data), want)
	}
	d.TextureData[id] = append([]byte(nil), data...)
	return nil
}

// WriteTextureRegion implements gpucore.Device. Regions are copied into
// TextureData, which must hold the full texture already.
func (d *Device) WriteTextureRegion(id gpucore.TextureID, x, y, width, height uint32, data []byte) error {
	desc, ok := d.Textures[id]
	if !ok {
		return fmt.Errorf("gputest: texture %d not found", id)
	}
	if width == 0 || height == 0 || x+width > desc.Width || y+height > desc.Height {
		return fmt.Errorf("gputest: region %dx%d at (%d,%d) outside %dx%d texture", width, height, x, y, desc.Width, desc.Height)
	}
	if len(data) != int(width*height*4) {
		return fmt.Errorf("gputest: region data %d bytes, want %d", len(data), width*height*4)
	}
	full := d.TextureData[id]
	if full == nil {
		full = make([]byte, desc.Width*desc.Height*4)
		d.TextureData[id] = full
	}
	row := int(width * 4)
	for r := range int(height) {
		dst := (int(y)+r)*int(desc.Width*4) + int(x*4)
		copy(full[dst:dst+row], data[r*row:(r+1)*row])
	}
	d.RegionWrites++
	return nil
}

// CreateTextureView implements gpucore.Device.
func (d *Device) CreateTextureView(texture gpucore.TextureID) (gpucore.TextureViewID, error) {
	if _, ok := d.Textures[texture]; !ok {
		return gpucore.InvalidID, fmt.Errorf("gputest: texture %d not found", texture)
	}
	id := gpucore.TextureViewID(d.newID(KindTextureView))
	d.Views[id] = texture
	return id, nil
}

// NewExternalView registers a view that is not backed by a texture of
// this device, the way a host application's surface view would be.
func (d *Device) NewExternalView() gpucore.TextureViewID {
	id := gpucore.TextureViewID(d.newID(KindTextureView))
	d.Views[id] = gpucore.InvalidID
	return id
}

// DestroyTextureView implements gpucore.Device.
func (d *Device) DestroyTextureView(id gpucore.TextureViewID) {
	if _, ok := d.Views[id]; ok {
		delete(d.Views, id)
		d.live[KindTextureView]--
	}
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(*gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	return gpucore.SamplerID(d.newID(KindSampler)), nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(gpucore.SamplerID) { d.live[KindSampler]-- }

// CreateBindGroupLayout implements gpucore.Device.
func (d *Device) CreateBindGroupLayout(*gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	return gpucore.BindGroupLayoutID(d.newID(KindBindGroupLayout)), nil
}

// DestroyBindGroupLayout implements gpucore.Device.
func (d *Device) DestroyBindGroupLayout(gpucore.BindGroupLayoutID) { d.live[KindBindGroupLayout]-- }

// CreatePipelineLayout implements gpucore.Device.
func (d *Device) CreatePipelineLayout(string, []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	return gpucore.PipelineLayoutID(d.newID(KindPipelineLayout)), nil
}

// DestroyPipelineLayout implements gpucore.Device.
func (d *Device) DestroyPipelineLayout(gpucore.PipelineLayoutID) { d.live[KindPipelineLayout]-- }

// CreateBindGroup implements gpucore.Device.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	for _, e := range desc.Entries {
		if e.TextureView != gpucore.InvalidID {
			if _, ok := d.Views[e.TextureView]; !ok {
				return gpucore.InvalidID, fmt.Errorf("gputest: texture view %d not found", e.TextureView)
			}
		}
	}
	id := gpucore.BindGroupID(d.newID(KindBindGroup))
	d.BindGroups[id] = *desc
	d.BindGroupDescs = append(d.BindGroupDescs, *desc)
	return id, nil
}

// DestroyBindGroup implements gpucore.Device.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	if _, ok := d.BindGroups[id]; ok {
		delete(d.BindGroups, id)
		d.live[KindBindGroup]--
	}
}

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if d.FailPipelines {
		return gpucore.InvalidID, fmt.Errorf("pipeline %q: %w", desc.Label, ErrInjected)
	}
	id := gpucore.RenderPipelineID(d.newID(KindPipeline))
	d.Pipelines[id] = *desc
	d.PipelineDescs = append(d.PipelineDescs, *desc)
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	if _, ok := d.Pipelines[id]; ok {
		delete(d.Pipelines, id)
		d.live[KindPipeline]--
	}
}

// BeginRenderPass implements gpucore.Device.
func (d *Device) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	if _, ok := d.Views[desc.ColorView]; !ok {
		return nil, fmt.Errorf("gputest: color view %d not found", desc.ColorView)
	}
	p := &Pass{Desc: *desc}
	d.Passes = append(d.Passes, p)
	return p, nil
}

// NewPass returns a pass that is not owned by the device, as a host
// application would supply it.
func (d *Device) NewPass() *Pass {
	p := &Pass{}
	d.Passes = append(d.Passes, p)
	return p
}

// Submit implements gpucore.Device.
func (d *Device) Submit() error {
	for _, p := range d.Passes {
		if !p.Ended {
			return errors.New("gputest: submit with an open render pass")
		}
	}
	d.Submits++
	return nil
}

// WaitIdle implements gpucore.Device.
func (d *Device) WaitIdle() { d.WaitIdleCalls++ }

// Rect is a scissor or viewport rectangle.
type Rect struct {
	X, Y, W, H uint32
}

// Viewport is a recorded SetViewport call.
type Viewport struct {
	X, Y, W, H, MinDepth, MaxDepth float32
}

// DrawCall is one DrawIndexed call with the pass state at that moment.
type DrawCall struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32

	Pipeline     gpucore.RenderPipelineID
	BindGroups   [2]gpucore.BindGroupID
	VertexBuffer gpucore.BufferID
	IndexBuffer  gpucore.BufferID
	IndexFormat  gputypes.IndexFormat
	Scissor      Rect
	HasScissor   bool
}

// Pass is a recording gpucore.RenderPassEncoder.
type Pass struct {
	Desc gpucore.RenderPassDesc

	// Calls lists the command names in order, e.g. "SetPipeline".
	Calls []string

	Draws     []DrawCall
	Viewports []Viewport
	Scissors  []Rect
	Ended     bool

	pipeline     gpucore.RenderPipelineID
	groups       [2]gpucore.BindGroupID
	vertexBuffer gpucore.BufferID
	indexBuffer  gpucore.BufferID
	indexFormat  gputypes.IndexFormat
	scissor      Rect
	hasScissor   bool
}

var _ gpucore.RenderPassEncoder = (*Pass)(nil)

func (p *Pass) record(name string) {
	if p.Ended {
		panic("gputest: " + name + " after End")
	}
	p.Calls = append(p.Calls, name)
}

// Count returns how many times the named command was recorded.
func (p *Pass) Count(name string) int {
	n := 0
	for _, c := range p.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// SetPipeline implements gpucore.RenderPassEncoder.
func (p *Pass) SetPipeline(pipeline gpucore.RenderPipelineID) {
	p.record("SetPipeline")
	p.pipeline = pipeline
}

// SetBindGroup implements gpucore.RenderPassEncoder.
func (p *Pass) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	p.record("SetBindGroup")
	if int(index) < len(p.groups) {
		p.groups[index] = group
	}
}

// SetVertexBuffer implements gpucore.RenderPassEncoder.
func (p *Pass) SetVertexBuffer(_ uint32, buffer gpucore.BufferID, _ uint64) {
	p.record("SetVertexBuffer")
	p.vertexBuffer = buffer
}

// SetIndexBuffer implements gpucore.RenderPassEncoder.
func (p *Pass) SetIndexBuffer(buffer gpucore.BufferID, format gputypes.IndexFormat, _ uint64) {
	p.record("SetIndexBuffer")
	p.indexBuffer = buffer
	p.indexFormat = format
}

// SetViewport implements gpucore.RenderPassEncoder.
func (p *Pass) SetViewport(x, y, w, h, minDepth, maxDepth float32) {
	p.record("SetViewport")
	p.Viewports = append(p.Viewports, Viewport{x, y, w, h, minDepth, maxDepth})
}

// SetScissorRect implements gpucore.RenderPassEncoder.
func (p *Pass) SetScissorRect(x, y, w, h uint32) {
	p.record("SetScissorRect")
	p.scissor = Rect{x, y, w, h}
	p.hasScissor = true
	p.Scissors = append(p.Scissors, p.scissor)
}

// DrawIndexed implements gpucore.RenderPassEncoder.
func (p *Pass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record("DrawIndexed")
	p.Draws = append(p.Draws, DrawCall{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
		Pipeline:      p.pipeline,
		BindGroups:    p.groups,
		VertexBuffer:  p.vertexBuffer,
		IndexBuffer:   p.indexBuffer,
		IndexFormat:   p.indexFormat,
		Scissor:       p.scissor,
		HasScissor:    p.hasScissor,
	})
}

// End implements gpucore.RenderPassEncoder.
func (p *Pass) End() {
	p.record("End")
	p.Ended = true
}
