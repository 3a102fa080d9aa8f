//go:build opengl

package opengl

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender"
	"github.com/gogpu/uirender/gpucore"
)

// hasContext is false when no GL 3.3 context could be created, e.g. on
// headless CI.
var hasContext bool

func TestMain(m *testing.M) {
	runtime.LockOSThread()
	os.Exit(runWithContext(m))
}

func runWithContext(m *testing.M) int {
	if err := glfw.Init(); err != nil {
		return m.Run()
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	win, err := glfw.CreateWindow(64, 64, "uirender-test", nil, nil)
	if err != nil {
		return m.Run()
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return m.Run()
	}
	hasContext = true
	return m.Run()
}

func requireContext(t *testing.T) *Device {
	t.Helper()
	if !hasContext {
		t.Skip("no OpenGL 3.3 context available")
	}
	d := NewDevice()
	t.Cleanup(d.Destroy)
	return d
}

func TestDevice_ShaderNeedsGLSL(t *testing.T) {
	d := requireContext(t)
	if _, err := d.CreateShaderModule(&gpucore.ShaderModuleDesc{WGSL: "fn main() {}"}); !errors.Is(err, ErrNoGLSL) {
		t.Errorf("CreateShaderModule(WGSL only) error = %v, want ErrNoGLSL", err)
	}
}

func TestDevice_TextureWrite(t *testing.T) {
	d := requireContext(t)
	tex, err := d.CreateTexture(&gpucore.TextureDesc{
		Width: 2, Height: 2,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if err := d.WriteTexture(tex, make([]byte, 16)); err != nil {
		t.Errorf("WriteTexture() error = %v", err)
	}
	if err := d.WriteTexture(tex, make([]byte, 3)); err == nil {
		t.Error("WriteTexture(short) error = nil, want error")
	}
	if err := d.WriteTextureRegion(tex, 1, 0, 1, 2, make([]byte, 8)); err != nil {
		t.Errorf("WriteTextureRegion() error = %v", err)
	}
	if err := d.WriteTextureRegion(tex, 1, 1, 2, 1, make([]byte, 8)); err == nil {
		t.Error("WriteTextureRegion(out of bounds) error = nil, want error")
	}
	d.DestroyTexture(tex)
	if err := d.WriteTexture(tex, make([]byte, 16)); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("WriteTexture(destroyed) error = %v, want ErrUnknownResource", err)
	}
}

func TestRenderer_DrawsIntoTexture(t *testing.T) {
	d := requireContext(t)

	r, err := uirender.New(d, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatalf("uirender.New() error = %v", err)
	}
	defer r.Destroy()

	target, err := d.CreateTexture(&gpucore.TextureDesc{
		Width: 16, Height: 16,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	view, err := d.CreateTextureView(target)
	if err != nil {
		t.Fatalf("CreateTextureView() error = %v", err)
	}

	const red = 0xFF0000FF
	data := &uirender.DrawData{
		Lists: []*uirender.DrawList{{
			VtxBuffer: []uirender.DrawVert{
				{Pos: [2]float32{0, 0}, Col: red},
				{Pos: [2]float32{16, 0}, Col: red},
				{Pos: [2]float32{16, 16}, Col: red},
				{Pos: [2]float32{0, 16}, Col: red},
			},
			IdxBuffer: []uirender.DrawIdx{0, 1, 2, 0, 2, 3},
			CmdBuffer: []uirender.DrawCmd{
				{ClipRect: [4]float32{0, 0, 16, 16}, TextureID: uirender.WhiteTexture, ElemCount: 6},
			},
		}},
		DisplaySize:      [2]float32{16, 16},
		FramebufferScale: [2]float32{1, 1},
	}

	clearColor := gputypes.Color{A: 1}
	stats, err := r.RenderToView(data, view, &clearColor)
	if err != nil {
		t.Fatalf("RenderToView() error = %v", err)
	}
	if stats.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1", stats.DrawCalls)
	}
	d.WaitIdle()

	gl.BindFramebuffer(gl.FRAMEBUFFER, d.views[view].fbo)
	px := make([]byte, 4)
	gl.ReadPixels(8, 8, 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(px))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if px[0] != 0xFF || px[1] != 0 || px[2] != 0 || px[3] != 0xFF {
		t.Errorf("center pixel = %v, want [255 0 0 255]", px)
	}
}
