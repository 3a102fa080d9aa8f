package uirender

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
	"github.com/gogpu/uirender/internal/gpu"
)

// ExecState is the state of the render pass executor within one frame.
type ExecState uint8

// Executor states, in the order a frame passes through them.
const (
	ExecIdle ExecState = iota
	ExecSlotSelected
	ExecBuffersUploaded
	ExecRecording
	ExecDone
)

// String returns the state name.
func (s ExecState) String() string {
	switch s {
	case ExecIdle:
		return "Idle"
	case ExecSlotSelected:
		return "SlotSelected"
	case ExecBuffersUploaded:
		return "BuffersUploaded"
	case ExecRecording:
		return "Recording"
	case ExecDone:
		return "Done"
	default:
		return fmt.Sprintf("ExecState(%d)", uint8(s))
	}
}

// FrameStats describes what one Render call recorded.
type FrameStats struct {
	// Skipped is true when the frame had nothing to draw.
	Skipped bool

	Lists    int
	Vertices int
	Indices  int

	DrawCalls             int
	Callbacks             int
	SkippedMissingTexture int
	SkippedScissor        int

	// TextureRequests counts texture requests applied this frame.
	TextureRequests int
}

// frameTarget is the pass a frame is recorded into.
type frameTarget struct {
	pass     gpucore.RenderPassEncoder
	fbWidth  float32
	fbHeight float32
}

// recorder holds the per-frame state of one execute call.
type recorder struct {
	r      *Renderer
	data   *DrawData
	target frameTarget
	slot   *gpu.FrameSlot

	pipeline gpucore.RenderPipelineID
	stats    FrameStats
}

// execute records data into target.pass. It does not begin, end or submit
// the pass.
func (r *Renderer) execute(data *DrawData, target frameTarget) (FrameStats, error) {
	r.state = ExecIdle
	rec := recorder{r: r, data: data, target: target}
	rec.stats.TextureRequests = r.textures.handleRequests(data.Textures)

	totalVtx := data.TotalVtxCount()
	totalIdx := data.TotalIdxCount()
	if target.fbWidth <= 0 || target.fbHeight <= 0 || totalVtx == 0 || totalIdx == 0 {
		r.state = ExecDone
		rec.stats.Skipped = true
		return rec.stats, nil
	}
	if totalVtx > math.MaxInt32 || totalIdx > math.MaxUint32/gpu.IndexSize {
		return rec.stats, newError("Render", KindInvalidRenderState,
			fmt.Errorf("frame too large: %d vertices, %d indices", totalVtx, totalIdx))
	}

	rec.slot = r.frames.Current()
	r.state = ExecSlotSelected

	if err := rec.upload(totalVtx, totalIdx); err != nil {
		return rec.stats, newError("Render", KindGeneric, err)
	}
	r.state = ExecBuffersUploaded

	u := gpu.BuildUniforms(data.DisplayPos, data.DisplaySize, r.cfg.RenderTargetFormat, r.cfg.GammaMode)
	if err := r.resources.UpdateUniforms(&u); err != nil {
		return rec.stats, newError("Render", KindGeneric, err)
	}
	pipeline, err := r.pipelines.Get(r.cfg.pipelineKey())
	if err != nil {
		return rec.stats, newError("Render", KindGeneric, err)
	}
	rec.pipeline = pipeline

	r.state = ExecRecording
	rec.setupRenderState()
	if err := rec.drawLists(); err != nil {
		return rec.stats, err
	}
	r.state = ExecDone
	return rec.stats, nil
}

// upload grows the slot buffers as needed and writes every list's
// vertices and indices, packed back to back, with one write each.
func (rec *recorder) upload(totalVtx, totalIdx int) error {
	frames := rec.r.frames
	slot := rec.slot
	if err := frames.EnsureCapacity(slot, uint32(totalVtx), uint32(totalIdx)); err != nil {
		return err
	}

	vb := slot.VertexStaging(totalVtx)
	ib := slot.IndexStaging(totalIdx)
	vi, ii := 0, 0
	for _, list := range rec.data.Lists {
		if list == nil {
			continue
		}
		for _, v := range list.VtxBuffer {
			gpu.PutVertex(vb, vi, v.Pos, v.UV, v.Col)
			vi++
		}
		for _, idx := range list.IdxBuffer {
			gpu.PutIndex(ib, ii, idx)
			ii++
		}
		rec.stats.Lists++
	}
	rec.stats.Vertices = totalVtx
	rec.stats.Indices = totalIdx

	if err := frames.UploadVertices(slot, vb); err != nil {
		return err
	}
	return frames.UploadIndices(slot, ib)
}

// setupRenderState binds the frame's pipeline, common bind group and
// buffers, and resets the viewport to the full framebuffer.
func (rec *recorder) setupRenderState() {
	pass := rec.target.pass
	pass.SetViewport(0, 0, rec.target.fbWidth, rec.target.fbHeight, 0, 1)
	pass.SetPipeline(rec.pipeline)
	pass.SetBindGroup(0, rec.r.resources.CommonBindGroup())
	pass.SetVertexBuffer(0, rec.slot.VertexBuffer, 0)
	pass.SetIndexBuffer(rec.slot.IndexBuffer, gputypes.IndexFormatUint32, 0)
}

func (rec *recorder) drawLists() error {
	var globalVtx, globalIdx uint64
	for _, list := range rec.data.Lists {
		if list == nil {
			continue
		}
		var listIdx uint64
		for i := range list.CmdBuffer {
			cmd := &list.CmdBuffer[i]
			if err := rec.drawCmd(list, cmd, globalVtx, globalIdx, listIdx); err != nil {
				return err
			}
			listIdx += uint64(cmd.ElemCount)
		}
		globalVtx += uint64(len(list.VtxBuffer))
		globalIdx += uint64(len(list.IdxBuffer))
	}
	return nil
}

// drawCmd records one command. listIdx is the command's first index
// within list; globalIdx is where list starts in the frame's index buffer.
func (rec *recorder) drawCmd(list *DrawList, cmd *DrawCmd, baseVtx, globalIdx, listIdx uint64) error {
	if cmd.UserCallback != nil {
		rec.invoke(list, cmd)
		return nil
	}
	if cmd.ElemCount == 0 {
		return nil
	}

	group, ok, err := rec.r.textures.bindGroup(cmd.TextureID)
	if err != nil {
		return newError("Render", KindGeneric, err)
	}
	if !ok {
		rec.stats.SkippedMissingTexture++
		Logger().Debug("uirender: draw skipped, unknown texture", "texture", uint64(cmd.TextureID))
		return nil
	}

	x, y, w, h, visible := rec.scissor(cmd.ClipRect)
	if !visible {
		rec.stats.SkippedScissor++
		return nil
	}

	base := baseVtx + uint64(cmd.VtxOffset)
	end := listIdx + uint64(cmd.ElemCount)
	if base > math.MaxInt32 || end > uint64(len(list.IdxBuffer)) {
		return newError("Render", KindInvalidRenderState,
			fmt.Errorf("draw out of range: base vertex %d, indices [%d, %d) of list with %d",
				base, listIdx, end, len(list.IdxBuffer)))
	}
	firstIdx := globalIdx + listIdx

	pass := rec.target.pass
	pass.SetBindGroup(1, group)
	pass.SetScissorRect(x, y, w, h)
	pass.DrawIndexed(cmd.ElemCount, 1, uint32(firstIdx), int32(base), 0)
	rec.stats.DrawCalls++
	return nil
}

// scissor projects a clip rect into framebuffer pixels and clamps it to
// the framebuffer. visible is false for an empty result.
func (rec *recorder) scissor(clip [4]float32) (x, y, w, h uint32, visible bool) {
	off := rec.data.DisplayPos
	scale := rec.data.FramebufferScale
	fbW, fbH := rec.target.fbWidth, rec.target.fbHeight

	minX := clampf((clip[0]-off[0])*scale[0], 0, fbW)
	minY := clampf((clip[1]-off[1])*scale[1], 0, fbH)
	maxX := clampf((clip[2]-off[0])*scale[0], 0, fbW)
	maxY := clampf((clip[3]-off[1])*scale[1], 0, fbH)
	if maxX <= minX || maxY <= minY {
		return 0, 0, 0, 0, false
	}

	x, y = uint32(minX), uint32(minY)
	w, h = uint32(maxX-minX), uint32(maxY-minY)
	if w == 0 || h == 0 {
		return 0, 0, 0, 0, false
	}
	return x, y, w, h, true
}

// invoke runs a user callback with a RenderState scoped to the call.
func (rec *recorder) invoke(list *DrawList, cmd *DrawCmd) {
	if isResetRenderState(cmd.UserCallback) {
		rec.setupRenderState()
		return
	}
	if fn, ok := cmd.UserCallback.(CallbackFunc); ok && fn == nil {
		Logger().Warn("uirender: nil callback function ignored")
		return
	}

	state := &RenderState{
		device:   rec.r.device,
		pass:     rec.target.pass,
		pipeline: rec.pipeline,
		common:   rec.r.resources.CommonBindGroup(),
		fbWidth:  uint32(rec.target.fbWidth),
		fbHeight: uint32(rec.target.fbHeight),
		live:     true,
	}
	defer func() { state.live = false }()

	cmd.UserCallback.Invoke(list, cmd, state)
	rec.stats.Callbacks++
}

func clampf(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
