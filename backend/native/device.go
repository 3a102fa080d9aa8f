package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/uirender/backend"
	"github.com/gogpu/uirender/gpucore"
)

// maxPendingSubmits bounds the command buffers kept alive for the GPU.
// Submit waits for the queue to drain when the bound is exceeded.
const maxPendingSubmits = 3

type textureEntry struct {
	texture hal.Texture
	width   uint32
	height  uint32
	format  gputypes.TextureFormat
}

type viewEntry struct {
	view     hal.TextureView
	imported bool
}

type pendingSubmit struct {
	cmd   hal.CommandBuffer
	index uint64
}

// retired is a destroyed hal object the GPU may still read. It is released
// once the queue completes submission after. Objects retired while the
// frame encoder is open wait for that encoder's submission.
type retired struct {
	after       uint64
	awaitSubmit bool
	release     func()
}

// Device implements gpucore.Device using gogpu/wgpu/hal directly.
//
// Thread Safety: resource creation and destruction are protected by a
// mutex. Command recording (BeginRenderPass, the returned encoder, Submit)
// must happen on one goroutine.
type Device struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	// ID generation
	nextID atomic.Uint64

	// Resource tracking maps gpucore IDs to hal resources
	buffers          map[gpucore.BufferID]hal.Buffer
	textures         map[gpucore.TextureID]*textureEntry
	views            map[gpucore.TextureViewID]*viewEntry
	samplers         map[gpucore.SamplerID]hal.Sampler
	shaderModules    map[gpucore.ShaderModuleID]hal.ShaderModule
	bindGroupLayouts map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	pipelineLayouts  map[gpucore.PipelineLayoutID]hal.PipelineLayout
	bindGroups       map[gpucore.BindGroupID]hal.BindGroup
	pipelines        map[gpucore.RenderPipelineID]hal.RenderPipeline

	// Command encoder for the current frame
	encoder    hal.CommandEncoder
	hasEncoder bool
	openPasses int

	pending []pendingSubmit

	// guarded by mu
	lastSubmit uint64
	inFlight   int
	retired    []retired
}

// NewDevice wraps a hal device and queue. The device does not take
// ownership: Destroy releases the resources created through it, not the
// hal device itself.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	d := &Device{
		device:           device,
		queue:            queue,
		buffers:          make(map[gpucore.BufferID]hal.Buffer),
		textures:         make(map[gpucore.TextureID]*textureEntry),
		views:            make(map[gpucore.TextureViewID]*viewEntry),
		samplers:         make(map[gpucore.SamplerID]hal.Sampler),
		shaderModules:    make(map[gpucore.ShaderModuleID]hal.ShaderModule),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		pipelineLayouts:  make(map[gpucore.PipelineLayoutID]hal.PipelineLayout),
		bindGroups:       make(map[gpucore.BindGroupID]hal.BindGroup),
		pipelines:        make(map[gpucore.RenderPipelineID]hal.RenderPipeline),
	}

	// Start ID generation at 1 (0 is invalid)
	d.nextID.Store(1)
	return d
}

// newID generates a unique resource ID.
func (d *Device) newID() uint64 {
	return d.nextID.Add(1) - 1
}

// Name returns "native".
func (d *Device) Name() string { return backend.BackendNative }

// HalDevice returns the wrapped hal.Device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the wrapped hal.Queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// === Shader Compilation ===

// CreateShaderModule creates a shader module, preferring SPIR-V over WGSL.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDesc) (gpucore.ShaderModuleID, error) {
	var src hal.ShaderSource
	switch {
	case len(desc.SPIRV) > 0:
		src.SPIRV = desc.SPIRV
	case desc.WGSL != "":
		src.WGSL = desc.WGSL
	default:
		return gpucore.InvalidID, ErrEmptyShader
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: src,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create shader module %s: %w", desc.Label, err)
	}

	id := gpucore.ShaderModuleID(d.newID())
	d.mu.Lock()
	d.shaderModules[id] = module
	d.mu.Unlock()
	return id, nil
}

// DestroyShaderModule releases a shader module.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	d.mu.Lock()
	module, ok := d.shaderModules[id]
	delete(d.shaderModules, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroyShaderModule(module) })
	}
}

// === Buffer Management ===

// CreateBuffer creates a GPU buffer.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc.Size == 0 || desc.Size%4 != 0 {
		return gpucore.InvalidID, fmt.Errorf("buffer %s: size %d is not a positive multiple of 4", desc.Label, desc.Size)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create buffer %s: %w", desc.Label, err)
	}

	id := gpucore.BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = buf
	d.mu.Unlock()
	return id, nil
}

// DestroyBuffer releases a GPU buffer once no submitted work uses it.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	buf, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroyBuffer(buf) })
	}
}

// WriteBuffer writes data to a buffer through the queue.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	d.mu.RLock()
	buf, ok := d.buffers[id]
	d.mu.RUnlock()

	if !ok || len(data) == 0 {
		return
	}
	if err := d.queue.WriteBuffer(buf, offset, data); err != nil {
		backend.Logger().Warn("native: write buffer failed", "buffer", id, "err", err)
	}
}

// === Texture Management ===

// CreateTexture creates a 2D texture with one mip level.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("texture %s: dimensions must be positive", desc.Label)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create texture %s: %w", desc.Label, err)
	}

	id := gpucore.TextureID(d.newID())
	d.mu.Lock()
	d.textures[id] = &textureEntry{texture: tex, width: desc.Width, height: desc.Height, format: desc.Format}
	d.mu.Unlock()
	return id, nil
}

// DestroyTexture releases a texture once no submitted work uses it.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	e, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroyTexture(e.texture) })
	}
}

// WriteTexture replaces the full contents of a 4-byte-per-texel texture.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	d.mu.RLock()
	e, ok := d.textures[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("texture %d: %w", id, ErrUnknownResource)
	}
	bytesPerRow := e.width * 4
	if want := int(bytesPerRow) * int(e.height); len(data) != want {
		return fmt.Errorf("texture %d: got %d bytes, want %d", id, len(data), want)
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  e.texture,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: e.height,
		},
		&hal.Extent3D{Width: e.width, Height: e.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture %d: %w", id, err)
	}
	return nil
}

// WriteTextureRegion writes a rectangle of a 4-byte-per-texel texture.
func (d *Device) WriteTextureRegion(id gpucore.TextureID, x, y, width, height uint32, data []byte) error {
	d.mu.RLock()
	e, ok := d.textures[id]
	d.mu.RUnlock()

	if !ok {
		return fmt.Errorf("texture %d: %w", id, ErrUnknownResource)
	}
	if width == 0 || height == 0 || x+width > e.width || y+height > e.height {
		return fmt.Errorf("texture %d: region %dx%d at (%d,%d) outside %dx%d", id, width, height, x, y, e.width, e.height)
	}
	if want := int(width) * int(height) * 4; len(data) != want {
		return fmt.Errorf("texture %d: got %d bytes, want %d", id, len(data), want)
	}

	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  e.texture,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: x, Y: y, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("write texture %d region: %w", id, err)
	}
	return nil
}

// CreateTextureView creates a default 2D view of a texture.
func (d *Device) CreateTextureView(texture gpucore.TextureID) (gpucore.TextureViewID, error) {
	d.mu.RLock()
	e, ok := d.textures[texture]
	d.mu.RUnlock()

	if !ok {
		return gpucore.InvalidID, fmt.Errorf("texture %d: %w", texture, ErrUnknownResource)
	}
	view, err := d.device.CreateTextureView(e.texture, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("texture_%d_view", texture),
		Format:        e.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create view of texture %d: %w", texture, err)
	}
	return d.addView(view, false), nil
}

// ImportTextureView makes a view owned by the application usable as a
// render target or sampled texture. DestroyTextureView forgets the ID
// without destroying the view.
func (d *Device) ImportTextureView(view hal.TextureView) gpucore.TextureViewID {
	if view == nil {
		return gpucore.InvalidID
	}
	return d.addView(view, true)
}

func (d *Device) addView(view hal.TextureView, imported bool) gpucore.TextureViewID {
	id := gpucore.TextureViewID(d.newID())
	d.mu.Lock()
	d.views[id] = &viewEntry{view: view, imported: imported}
	d.mu.Unlock()
	return id
}

// DestroyTextureView releases a texture view.
func (d *Device) DestroyTextureView(id gpucore.TextureViewID) {
	d.mu.Lock()
	e, ok := d.views[id]
	delete(d.views, id)
	d.mu.Unlock()

	if ok && !e.imported {
		d.retire(func() { d.device.DestroyTextureView(e.view) })
	}
}

// CreateSampler creates a texture sampler.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.AddressMode,
		AddressModeV: desc.AddressMode,
		AddressModeW: desc.AddressMode,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MipmapFilter,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create sampler %s: %w", desc.Label, err)
	}

	id := gpucore.SamplerID(d.newID())
	d.mu.Lock()
	d.samplers[id] = s
	d.mu.Unlock()
	return id, nil
}

// DestroySampler releases a sampler.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	d.mu.Lock()
	s, ok := d.samplers[id]
	delete(d.samplers, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroySampler(s) })
	}
}

// === Pipeline Management ===

// CreateBindGroupLayout creates a bind group layout.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entries = append(entries, convertLayoutEntry(e))
	}
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create bind group layout %s: %w", desc.Label, err)
	}

	id := gpucore.BindGroupLayoutID(d.newID())
	d.mu.Lock()
	d.bindGroupLayouts[id] = layout
	d.mu.Unlock()
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	d.mu.Lock()
	layout, ok := d.bindGroupLayouts[id]
	delete(d.bindGroupLayouts, id)
	d.mu.Unlock()

	if ok {
		d.device.DestroyBindGroupLayout(layout)
	}
}

// CreatePipelineLayout creates a pipeline layout from bind group layouts.
func (d *Device) CreatePipelineLayout(label string, layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	d.mu.RLock()
	halLayouts := make([]hal.BindGroupLayout, 0, len(layouts))
	for _, id := range layouts {
		l, ok := d.bindGroupLayouts[id]
		if !ok {
			d.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("bind group layout %d: %w", id, ErrUnknownResource)
		}
		halLayouts = append(halLayouts, l)
	}
	d.mu.RUnlock()

	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: halLayouts,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create pipeline layout %s: %w", label, err)
	}

	id := gpucore.PipelineLayoutID(d.newID())
	d.mu.Lock()
	d.pipelineLayouts[id] = layout
	d.mu.Unlock()
	return id, nil
}

// DestroyPipelineLayout releases a pipeline layout.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	d.mu.Lock()
	layout, ok := d.pipelineLayouts[id]
	delete(d.pipelineLayouts, id)
	d.mu.Unlock()

	if ok {
		d.device.DestroyPipelineLayout(layout)
	}
}

// CreateBindGroup creates a bind group.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	d.mu.RLock()
	layout, ok := d.bindGroupLayouts[desc.Layout]
	if !ok {
		d.mu.RUnlock()
		return gpucore.InvalidID, fmt.Errorf("bind group %s: layout %d: %w", desc.Label, desc.Layout, ErrUnknownResource)
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry, err := d.convertBindGroupEntry(e)
		if err != nil {
			d.mu.RUnlock()
			return gpucore.InvalidID, fmt.Errorf("bind group %s: %w", desc.Label, err)
		}
		entries = append(entries, entry)
	}
	d.mu.RUnlock()

	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create bind group %s: %w", desc.Label, err)
	}

	id := gpucore.BindGroupID(d.newID())
	d.mu.Lock()
	d.bindGroups[id] = group
	d.mu.Unlock()
	return id, nil
}

// DestroyBindGroup releases a bind group.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	d.mu.Lock()
	group, ok := d.bindGroups[id]
	delete(d.bindGroups, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroyBindGroup(group) })
	}
}

// CreateRenderPipeline creates a render pipeline.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	d.mu.RLock()
	layout, okLayout := d.pipelineLayouts[desc.Layout]
	module, okModule := d.shaderModules[desc.Module]
	d.mu.RUnlock()
	if !okLayout {
		return gpucore.InvalidID, fmt.Errorf("pipeline %s: layout %d: %w", desc.Label, desc.Layout, ErrUnknownResource)
	}
	if !okModule {
		return gpucore.InvalidID, fmt.Errorf("pipeline %s: module %d: %w", desc.Label, desc.Module, ErrUnknownResource)
	}

	attrs := make([]gputypes.VertexAttribute, 0, len(desc.Attributes))
	for _, a := range desc.Attributes {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		})
	}
	sampleCount := desc.SampleCount
	if sampleCount == 0 {
		sampleCount = 1
	}

	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntryPoint,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: desc.VertexStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    desc.ColorFormat,
				Blend:     desc.Blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthStencilFormat != gputypes.TextureFormatUndefined {
		// UI draws ignore depth and stencil but must match the pass.
		face := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		halDesc.DepthStencil = &hal.DepthStencilState{
			Format:            desc.DepthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0,
		}
	}

	pipeline, err := d.device.CreateRenderPipeline(halDesc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create render pipeline %s: %w", desc.Label, err)
	}

	id := gpucore.RenderPipelineID(d.newID())
	d.mu.Lock()
	d.pipelines[id] = pipeline
	d.mu.Unlock()
	return id, nil
}

// DestroyRenderPipeline releases a render pipeline.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	d.mu.Lock()
	pipeline, ok := d.pipelines[id]
	delete(d.pipelines, id)
	d.mu.Unlock()

	if ok {
		d.retire(func() { d.device.DestroyRenderPipeline(pipeline) })
	}
}

// === Command Recording and Execution ===

// BeginRenderPass begins a render pass on the frame encoder, creating the
// encoder on first use after Submit.
func (d *Device) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	d.mu.RLock()
	color, ok := d.views[desc.ColorView]
	var resolve, depth *viewEntry
	if desc.ResolveView != gpucore.InvalidID {
		resolve = d.views[desc.ResolveView]
	}
	if desc.DepthStencilView != gpucore.InvalidID {
		depth = d.views[desc.DepthStencilView]
	}
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render pass %s: color view %d: %w", desc.Label, desc.ColorView, ErrUnknownResource)
	}
	if (desc.ResolveView != gpucore.InvalidID && resolve == nil) ||
		(desc.DepthStencilView != gpucore.InvalidID && depth == nil) {
		return nil, fmt.Errorf("render pass %s: attachment: %w", desc.Label, ErrUnknownResource)
	}

	if !d.hasEncoder {
		encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
			Label: "uirender_encoder",
		})
		if err != nil {
			return nil, fmt.Errorf("create command encoder: %w", err)
		}
		if err := encoder.BeginEncoding("uirender_frame"); err != nil {
			return nil, fmt.Errorf("begin encoding: %w", err)
		}
		d.mu.Lock()
		d.encoder = encoder
		d.hasEncoder = true
		d.mu.Unlock()
	}

	attachment := hal.RenderPassColorAttachment{
		View:       color.view,
		LoadOp:     desc.LoadOp,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: desc.ClearColor,
	}
	if resolve != nil {
		attachment.ResolveTarget = resolve.view
	}
	rpDesc := &hal.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	}
	if depth != nil {
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depth.view,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}

	d.openPasses++
	pass := &renderPass{device: d, pass: d.encoder.BeginRenderPass(rpDesc), onEnd: func() { d.openPasses-- }}
	return pass, nil
}

// Submit ends the frame encoder and submits it. It blocks only when
// more than maxPendingSubmits command buffers are still in flight.
func (d *Device) Submit() error {
	if !d.hasEncoder {
		return nil
	}
	if d.openPasses > 0 {
		return ErrPassOpen
	}
	encoder := d.encoder

	cmd, err := encoder.EndEncoding()
	if err != nil {
		d.closeEncoder(0, false)
		return fmt.Errorf("end encoding: %w", err)
	}

	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.closeEncoder(0, false)
		d.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("submit: %w", err)
	}
	d.pending = append(d.pending, pendingSubmit{cmd: cmd, index: index})
	d.closeEncoder(index, true)
	d.maintain(d.queue.PollCompleted())

	if len(d.pending) > maxPendingSubmits {
		if err := d.device.WaitIdle(); err != nil {
			return fmt.Errorf("wait for GPU: %w", err)
		}
		d.maintain(index)
	}
	return nil
}

// TrackSubmission records a queue submission the application made with
// its own encoder, e.g. one holding a pass from WrapRenderPass. Objects
// destroyed afterwards are kept until the queue completes index.
func (d *Device) TrackSubmission(index uint64) {
	d.pending = append(d.pending, pendingSubmit{index: index})
	d.mu.Lock()
	d.lastSubmit = max(d.lastSubmit, index)
	d.inFlight++
	d.mu.Unlock()
	d.maintain(d.queue.PollCompleted())
}

// closeEncoder forgets the frame encoder. When it was submitted, objects
// retired while it was open wait for index; otherwise they wait for the
// last submission like any other.
func (d *Device) closeEncoder(index uint64, submitted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.encoder = nil
	d.hasEncoder = false
	if submitted {
		d.lastSubmit = index
		d.inFlight++
	}
	for i := range d.retired {
		if d.retired[i].awaitSubmit {
			d.retired[i].awaitSubmit = false
			d.retired[i].after = d.lastSubmit
		}
	}
}

// retire destroys an object through release once the GPU can no longer
// use it. With no open encoder and nothing in flight it runs immediately.
func (d *Device) retire(release func()) {
	d.mu.Lock()
	switch {
	case d.hasEncoder:
		d.retired = append(d.retired, retired{awaitSubmit: true, release: release})
	case d.inFlight > 0:
		d.retired = append(d.retired, retired{after: d.lastSubmit, release: release})
	default:
		d.mu.Unlock()
		release()
		return
	}
	d.mu.Unlock()
}

// maintain frees every command buffer and retired object whose submission
// index is at or below completed.
func (d *Device) maintain(completed uint64) {
	n := 0
	for _, p := range d.pending {
		if p.index > completed {
			break
		}
		if p.cmd != nil {
			d.device.FreeCommandBuffer(p.cmd)
		}
		n++
	}
	d.pending = d.pending[n:]

	var ready []func()
	d.mu.Lock()
	d.inFlight = len(d.pending)
	kept := d.retired[:0]
	for _, r := range d.retired {
		if !r.awaitSubmit && r.after <= completed {
			ready = append(ready, r.release)
			continue
		}
		kept = append(kept, r)
	}
	clear(d.retired[len(kept):])
	d.retired = kept
	d.mu.Unlock()

	for _, release := range ready {
		release()
	}
}

// releaseRetired runs every retired release regardless of submissions.
// The GPU must be idle.
func (d *Device) releaseRetired() {
	d.mu.Lock()
	ready := d.retired
	d.retired = nil
	d.mu.Unlock()
	for _, r := range ready {
		r.release()
	}
}

// WaitIdle submits pending work and waits for the GPU to finish it.
func (d *Device) WaitIdle() {
	if err := d.Submit(); err != nil {
		backend.Logger().Warn("native: submit before wait failed", "err", err)
	}
	if len(d.pending) == 0 {
		d.maintain(d.lastCompleted())
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		backend.Logger().Warn("native: wait idle failed", "err", err)
		return
	}
	d.maintain(d.pending[len(d.pending)-1].index)
}

func (d *Device) lastCompleted() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastSubmit
}

// Destroy waits for the GPU and releases every resource created through
// the device. Imported views are forgotten, not destroyed.
func (d *Device) Destroy() {
	d.WaitIdle()
	if d.hasEncoder {
		d.encoder.DiscardEncoding()
		d.closeEncoder(0, false)
	}
	d.releaseRetired()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, p := range d.pipelines {
		d.device.DestroyRenderPipeline(p)
		delete(d.pipelines, id)
	}
	for id, g := range d.bindGroups {
		d.device.DestroyBindGroup(g)
		delete(d.bindGroups, id)
	}
	for id, l := range d.pipelineLayouts {
		d.device.DestroyPipelineLayout(l)
		delete(d.pipelineLayouts, id)
	}
	for id, l := range d.bindGroupLayouts {
		d.device.DestroyBindGroupLayout(l)
		delete(d.bindGroupLayouts, id)
	}
	for id, m := range d.shaderModules {
		d.device.DestroyShaderModule(m)
		delete(d.shaderModules, id)
	}
	for id, s := range d.samplers {
		d.device.DestroySampler(s)
		delete(d.samplers, id)
	}
	for id, v := range d.views {
		if !v.imported {
			d.device.DestroyTextureView(v.view)
		}
		delete(d.views, id)
	}
	for id, t := range d.textures {
		d.device.DestroyTexture(t.texture)
		delete(d.textures, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b)
		delete(d.buffers, id)
	}
}

// === Type Conversion Helpers ===

// convertLayoutEntry converts gpucore.BindGroupLayoutEntry to
// gputypes.BindGroupLayoutEntry.
func convertLayoutEntry(entry gpucore.BindGroupLayoutEntry) gputypes.BindGroupLayoutEntry {
	result := gputypes.BindGroupLayoutEntry{Binding: entry.Binding}
	if entry.Visibility&gpucore.ShaderStageVertex != 0 {
		result.Visibility |= gputypes.ShaderStageVertex
	}
	if entry.Visibility&gpucore.ShaderStageFragment != 0 {
		result.Visibility |= gputypes.ShaderStageFragment
	}

	switch entry.Type {
	case gpucore.BindingTypeUniformBuffer:
		result.Buffer = &gputypes.BufferBindingLayout{
			Type: gputypes.BufferBindingTypeUniform,
		}
	case gpucore.BindingTypeSampler:
		result.Sampler = &gputypes.SamplerBindingLayout{
			Type: gputypes.SamplerBindingTypeFiltering,
		}
	case gpucore.BindingTypeSampledTexture:
		result.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	}

	return result
}

// convertBindGroupEntry converts gpucore.BindGroupEntry to
// gputypes.BindGroupEntry. Must be called with mu.RLock held.
func (d *Device) convertBindGroupEntry(entry gpucore.BindGroupEntry) (gputypes.BindGroupEntry, error) {
	result := gputypes.BindGroupEntry{Binding: entry.Binding}

	switch {
	case entry.Buffer != gpucore.InvalidID:
		buf, ok := d.buffers[entry.Buffer]
		if !ok {
			return result, fmt.Errorf("buffer %d: %w", entry.Buffer, ErrUnknownResource)
		}
		result.Resource = gputypes.BufferBinding{
			Buffer: buf.NativeHandle(),
			Offset: entry.Offset,
			Size:   entry.Size,
		}
	case entry.Sampler != gpucore.InvalidID:
		s, ok := d.samplers[entry.Sampler]
		if !ok {
			return result, fmt.Errorf("sampler %d: %w", entry.Sampler, ErrUnknownResource)
		}
		result.Resource = gputypes.SamplerBinding{
			Sampler: s.NativeHandle(),
		}
	case entry.TextureView != gpucore.InvalidID:
		v, ok := d.views[entry.TextureView]
		if !ok {
			return result, fmt.Errorf("texture view %d: %w", entry.TextureView, ErrUnknownResource)
		}
		result.Resource = gputypes.TextureViewBinding{
			TextureView: v.view.NativeHandle(),
		}
	default:
		return result, fmt.Errorf("binding %d has no resource", entry.Binding)
	}

	return result, nil
}

// Compile-time interface check.
var _ gpucore.Device = (*Device)(nil)
