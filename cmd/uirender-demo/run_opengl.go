//go:build opengl

package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/backend/opengl"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// run opens a window and draws the scene every frame until the window
// is closed or opts.frames frames were shown.
func run(scene *Scene, logger *slog.Logger, opts options) error {
	uirender.SetLogger(logger)

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	win, err := glfw.CreateWindow(int(scene.Display.Width), int(scene.Display.Height), "uirender demo", nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	dev := opengl.NewDevice()
	defer dev.Destroy()

	// The default framebuffer is linear RGBA; shaders output as-is.
	r, err := uirender.New(dev, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	defer r.Destroy()

	textures, err := scene.UploadTextures(r.Textures())
	if err != nil {
		return err
	}

	clearColor := scene.Clear.gpuColor()
	for frame := 0; !win.ShouldClose(); frame++ {
		if opts.frames > 0 && frame >= opts.frames {
			break
		}
		glfw.PollEvents()

		w, h := win.GetSize()
		fbw, fbh := win.GetFramebufferSize()
		if w == 0 || h == 0 {
			continue
		}
		data := scene.DrawData(textures, logger)
		data.DisplaySize = [2]float32{float32(w), float32(h)}
		data.FramebufferScale = [2]float32{float32(fbw) / float32(w), float32(fbh) / float32(h)}

		if err := r.NewFrame(); err != nil {
			return err
		}
		if _, err := r.RenderToView(data, dev.WindowView(fbw, fbh), &clearColor); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		win.SwapBuffers()
	}
	return nil
}
