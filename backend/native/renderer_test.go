package native_test

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/backend/native"
	"github.com/gogpu/uirender/gpucore"
)

func TestRenderer_NoopEndToEnd(t *testing.T) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("noop: no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer openDev.Device.Destroy()

	dev := native.NewDevice(openDev.Device, openDev.Queue)
	defer dev.Destroy()

	r, err := uirender.New(dev, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatalf("uirender.New() error = %v", err)
	}
	defer r.Destroy()

	target, err := dev.CreateTexture(&gpucore.TextureDesc{
		Label:  "target",
		Width:  64,
		Height: 64,
		Format: gputypes.TextureFormatBGRA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	view, err := dev.CreateTextureView(target)
	if err != nil {
		t.Fatalf("CreateTextureView() error = %v", err)
	}

	font, err := r.Textures().CreateTextureRGBA(2, 2, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTextureRGBA() error = %v", err)
	}

	data := &uirender.DrawData{
		Lists: []*uirender.DrawList{{
			VtxBuffer: []uirender.DrawVert{
				{Pos: [2]float32{0, 0}, Col: 0xFFFFFFFF},
				{Pos: [2]float32{32, 0}, Col: 0xFFFFFFFF},
				{Pos: [2]float32{32, 32}, Col: 0xFFFFFFFF},
			},
			IdxBuffer: []uirender.DrawIdx{0, 1, 2, 0, 2, 1},
			CmdBuffer: []uirender.DrawCmd{
				{ClipRect: [4]float32{0, 0, 64, 64}, TextureID: uirender.WhiteTexture, ElemCount: 3},
				{ClipRect: [4]float32{0, 0, 64, 64}, TextureID: font, ElemCount: 3},
			},
		}},
		DisplaySize:      [2]float32{64, 64},
		FramebufferScale: [2]float32{1, 1},
	}

	clearColor := gputypes.Color{R: 0, G: 0, B: 0, A: 1}
	for frame := 0; frame < 4; frame++ {
		stats, err := r.RenderToView(data, view, &clearColor)
		if err != nil {
			t.Fatalf("frame %d: RenderToView() error = %v", frame, err)
		}
		if stats.DrawCalls != 2 {
			t.Errorf("frame %d: DrawCalls = %d, want 2", frame, stats.DrawCalls)
		}
	}
	dev.WaitIdle()
}
