package uirender

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/backend"
	"github.com/gogpu/uirender/gpucore"
	"github.com/gogpu/uirender/internal/gpu"
)

// Renderer draws DrawData frames with a gpucore.Device.
//
// A Renderer is not safe for concurrent use. All calls, including those on
// the TextureManager returned by Textures, must come from one goroutine
// or be serialized by the caller.
type Renderer struct {
	device gpucore.Device
	cfg    Config

	resources gpu.RenderResources
	pipelines *gpu.PipelineCache
	frames    *gpu.FramePool
	textures  *TextureManager

	created bool
	state   ExecState

	frameCount   uint64
	skippedCount uint64
	lastFrame    FrameStats
}

// New creates a renderer that draws into passes with the given color
// format. Device objects are created immediately; shader or pipeline
// failures are returned here.
func New(device gpucore.Device, format gputypes.TextureFormat, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, newError("New", KindInvalidRenderState, errors.New("nil device"))
	}
	cfg := DefaultConfig(format)
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.RenderTargetFormat = format
	if err := cfg.Validate(); err != nil {
		return nil, newError("New", KindInvalidRenderState, err)
	}

	r := &Renderer{device: device, cfg: cfg}
	r.textures = newTextureManager(device, &r.resources)
	if err := r.CreateDeviceObjects(); err != nil {
		return nil, err
	}
	Logger().Info("uirender: renderer created",
		"backend", device.Name(),
		"format", format,
		"frames_in_flight", cfg.NumFramesInFlight,
		"gamma", gpu.ResolveGamma(cfg.GammaMode, format),
	)
	return r, nil
}

// NewFromProvider creates a renderer on the device of a host application,
// using the default registered backend and the provider's surface format.
//
// The backend is selected by blank import, e.g.
//
//	import _ "github.com/gogpu/uirender/backend/native"
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, newError("NewFromProvider", KindInvalidRenderState, errors.New("nil provider"))
	}
	b := backend.Default()
	if b == nil {
		return nil, newError("NewFromProvider", KindGeneric, backend.ErrBackendNotAvailable)
	}
	device, err := b.NewDevice(provider)
	if err != nil {
		return nil, newError("NewFromProvider", KindGeneric, fmt.Errorf("backend %s: %w", b.Name(), err))
	}
	return New(device, provider.SurfaceFormat(), opts...)
}

// CreateDeviceObjects creates the shared resources, the UI pipeline for
// the configured target, the frame pool and the white texture. It is a
// no-op when the objects already exist.
func (r *Renderer) CreateDeviceObjects() (err error) {
	if r.created {
		return nil
	}
	defer func() {
		if err != nil {
			r.InvalidateDeviceObjects()
		}
	}()

	if err := r.resources.Init(r.device); err != nil {
		return newError("CreateDeviceObjects", KindGeneric, err)
	}
	r.pipelines, err = gpu.NewPipelineCache(r.device, r.resources.Layouts())
	if err != nil {
		return newError("CreateDeviceObjects", KindGeneric, err)
	}
	// Build the pipeline now so link failures surface at creation.
	if _, err := r.pipelines.Get(r.cfg.pipelineKey()); err != nil {
		return newError("CreateDeviceObjects", KindGeneric, err)
	}
	r.frames, err = gpu.NewFramePool(r.device, int(r.cfg.NumFramesInFlight))
	if err != nil {
		return newError("CreateDeviceObjects", KindInvalidRenderState, err)
	}
	if err := r.textures.createWhite(); err != nil {
		return newError("CreateDeviceObjects", KindTextureCreationFailed, err)
	}

	r.created = true
	Logger().Debug("uirender: device objects created")
	return nil
}

// InvalidateDeviceObjects releases every device object, including all
// textures. Registered external textures are forgotten. Call it when the
// device is lost, then CreateDeviceObjects (or NewFrame) to rebuild.
func (r *Renderer) InvalidateDeviceObjects() {
	r.textures.clear()
	if r.frames != nil {
		r.frames.Destroy()
		r.frames = nil
	}
	if r.pipelines != nil {
		r.pipelines.Destroy()
		r.pipelines = nil
	}
	r.resources.Destroy()
	if r.created {
		Logger().Info("uirender: device objects invalidated")
	}
	r.created = false
	r.state = ExecIdle
}

// NewFrame prepares the renderer for a new UI frame, recreating device
// objects after InvalidateDeviceObjects.
func (r *Renderer) NewFrame() error {
	return r.CreateDeviceObjects()
}

// Render records data into pass, a render pass owned by the caller whose
// attachments match the renderer's configuration. The framebuffer size is
// DisplaySize scaled by FramebufferScale.
//
// Frames with an empty framebuffer or no geometry are skipped without
// error.
func (r *Renderer) Render(data *DrawData, pass gpucore.RenderPassEncoder) (FrameStats, error) {
	if data == nil {
		return r.finish(FrameStats{Skipped: true}, nil)
	}
	w, h := data.FramebufferSize()
	return r.render(data, frameTarget{pass: pass, fbWidth: w, fbHeight: h})
}

// RenderWithFramebufferSize is Render with an explicit framebuffer size
// in pixels, for targets whose size differs from the scaled display.
func (r *Renderer) RenderWithFramebufferSize(data *DrawData, pass gpucore.RenderPassEncoder, width, height uint32) (FrameStats, error) {
	if data == nil {
		return r.finish(FrameStats{Skipped: true}, nil)
	}
	return r.render(data, frameTarget{pass: pass, fbWidth: float32(width), fbHeight: float32(height)})
}

// RenderToView begins a render pass on view, records data, ends the pass
// and submits it. A nil clear color loads the existing contents.
func (r *Renderer) RenderToView(data *DrawData, view gpucore.TextureViewID, clearColor *gputypes.Color) (FrameStats, error) {
	if !r.created {
		return FrameStats{}, newError("RenderToView", KindDeviceLost, nil)
	}
	desc := &gpucore.RenderPassDesc{
		Label:     "ui_pass",
		ColorView: view,
		LoadOp:    gputypes.LoadOpLoad,
	}
	if clearColor != nil {
		desc.LoadOp = gputypes.LoadOpClear
		desc.ClearColor = *clearColor
	}
	pass, err := r.device.BeginRenderPass(desc)
	if err != nil {
		return FrameStats{}, newError("RenderToView", KindGeneric, err)
	}

	var stats FrameStats
	if data != nil {
		w, h := data.FramebufferSize()
		stats, err = r.render(data, frameTarget{pass: pass, fbWidth: w, fbHeight: h})
	} else {
		stats, err = r.finish(FrameStats{Skipped: true}, nil)
	}
	pass.End()
	if err != nil {
		return stats, err
	}
	if err := r.device.Submit(); err != nil {
		return stats, newError("RenderToView", KindGeneric, err)
	}
	return stats, nil
}

func (r *Renderer) render(data *DrawData, target frameTarget) (FrameStats, error) {
	if !r.created {
		return FrameStats{}, newError("Render", KindDeviceLost, nil)
	}
	if target.pass == nil {
		return FrameStats{}, newError("Render", KindInvalidRenderState, errors.New("nil render pass"))
	}
	stats, err := r.execute(data, target)
	if err != nil {
		Logger().Warn("uirender: frame failed", "state", r.state, "err", err)
		return stats, err
	}
	if !stats.Skipped {
		r.frames.NextFrame()
	}
	return r.finish(stats, nil)
}

func (r *Renderer) finish(stats FrameStats, err error) (FrameStats, error) {
	r.frameCount++
	if stats.Skipped {
		r.skippedCount++
	}
	r.lastFrame = stats
	return stats, err
}

// Textures returns the renderer's texture manager.
func (r *Renderer) Textures() *TextureManager { return r.textures }

// Device returns the device the renderer draws with.
func (r *Renderer) Device() gpucore.Device { return r.device }

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.cfg }

// State returns the executor state of the most recent frame. A frame that
// failed leaves the state it failed in.
func (r *Renderer) State() ExecState { return r.state }

// Stats returns a snapshot of the renderer's resource usage.
func (r *Renderer) Stats() Stats {
	s := Stats{
		Frames:          r.frameCount,
		SkippedFrames:   r.skippedCount,
		LastFrame:       r.lastFrame,
		Textures:        r.textures.Len(),
		ImageBindGroups: r.resources.Stats().ImageBindGroups,
	}
	if r.pipelines != nil {
		s.Pipelines = r.pipelines.Len()
	}
	if r.frames != nil {
		s.CurrentFrame = r.frames.Frame()
		s.Slots = r.frames.Stats()
	}
	return s
}

// Destroy releases all device objects. The renderer must not be used
// afterwards.
func (r *Renderer) Destroy() {
	r.InvalidateDeviceObjects()
	Logger().Info("uirender: renderer destroyed")
}
