//go:build !opengl

package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/backend/native"
	"github.com/gogpu/uirender/gpucore"
)

// run renders the scene on the noop HAL device, exercising the full
// renderer without a GPU.
func run(scene *Scene, logger *slog.Logger, opts options) error {
	uirender.SetLogger(logger)

	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open adapter: %w", err)
	}
	defer openDev.Device.Destroy()

	dev := native.NewDevice(openDev.Device, openDev.Queue)
	defer dev.Destroy()

	const format = gputypes.TextureFormatBGRA8UnormSrgb
	r, err := uirender.New(dev, format)
	if err != nil {
		return err
	}
	defer r.Destroy()

	fbw, fbh := scene.Display.Width*scene.Display.Scale, scene.Display.Height*scene.Display.Scale
	target, err := dev.CreateTexture(&gpucore.TextureDesc{
		Label:  "demo_target",
		Width:  uint32(fbw),
		Height: uint32(fbh),
		Format: format,
		Usage:  gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	view, err := dev.CreateTextureView(target)
	if err != nil {
		return fmt.Errorf("create target view: %w", err)
	}

	textures, err := scene.UploadTextures(r.Textures())
	if err != nil {
		return err
	}

	frames := opts.frames
	if frames <= 0 {
		frames = 5
	}
	clearColor := scene.Clear.gpuColor()
	for i := 0; i < frames; i++ {
		if err := r.NewFrame(); err != nil {
			return err
		}
		stats, err := r.RenderToView(scene.DrawData(textures, logger), view, &clearColor)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		logger.Info("frame rendered",
			"frame", i,
			"lists", stats.Lists,
			"vertices", stats.Vertices,
			"indices", stats.Indices,
			"draws", stats.DrawCalls,
			"callbacks", stats.Callbacks,
			"skipped_texture", stats.SkippedMissingTexture,
		)
	}
	dev.WaitIdle()

	s := r.Stats()
	logger.Info("done", "frames", s.Frames, "textures", s.Textures, "bind_groups", s.ImageBindGroups, "pipelines", s.Pipelines)
	return nil
}
