package uirender

import (
	"github.com/gogpu/uirender/gpucore"
)

// DrawCallback is invoked in place of a draw when set on a DrawCmd.
//
// The callback runs synchronously while the frame is being recorded and
// may record its own commands into the pass exposed by state.
type DrawCallback interface {
	Invoke(list *DrawList, cmd *DrawCmd, state *RenderState)
}

// CallbackFunc adapts a function to DrawCallback.
type CallbackFunc func(list *DrawList, cmd *DrawCmd, state *RenderState)

// Invoke calls f.
func (f CallbackFunc) Invoke(list *DrawList, cmd *DrawCmd, state *RenderState) {
	f(list, cmd, state)
}

type resetRenderState struct{}

func (resetRenderState) Invoke(*DrawList, *DrawCmd, *RenderState) {}

// ResetRenderState is a sentinel callback. A command carrying it makes the
// renderer re-apply its pipeline, bind groups, buffers and viewport, e.g.
// after a previous callback changed pass state.
var ResetRenderState DrawCallback = resetRenderState{}

func isResetRenderState(cb DrawCallback) bool {
	_, ok := cb.(resetRenderState)
	return ok
}

// RenderState exposes the renderer's pass state to a DrawCallback.
//
// A RenderState is only valid for the duration of the callback that
// receives it. Accessors return zero values once the callback returns.
type RenderState struct {
	device   gpucore.Device
	pass     gpucore.RenderPassEncoder
	pipeline gpucore.RenderPipelineID
	common   gpucore.BindGroupID
	fbWidth  uint32
	fbHeight uint32
	live     bool
}

// Valid reports whether the state may still be used.
func (s *RenderState) Valid() bool { return s != nil && s.live }

// Device returns the renderer's device.
func (s *RenderState) Device() gpucore.Device {
	if !s.Valid() {
		return nil
	}
	return s.device
}

// Pass returns the render pass being recorded.
func (s *RenderState) Pass() gpucore.RenderPassEncoder {
	if !s.Valid() {
		return nil
	}
	return s.pass
}

// Pipeline returns the UI pipeline bound for this frame.
func (s *RenderState) Pipeline() gpucore.RenderPipelineID {
	if !s.Valid() {
		return gpucore.InvalidID
	}
	return s.pipeline
}

// CommonBindGroup returns the bind group set at group 0.
func (s *RenderState) CommonBindGroup() gpucore.BindGroupID {
	if !s.Valid() {
		return gpucore.InvalidID
	}
	return s.common
}

// FramebufferSize returns the framebuffer size in pixels.
func (s *RenderState) FramebufferSize() (width, height uint32) {
	if !s.Valid() {
		return 0, 0
	}
	return s.fbWidth, s.fbHeight
}
