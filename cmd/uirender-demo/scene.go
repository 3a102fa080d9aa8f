package main

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/uirender"
)

// Scene is a static UI frame described in YAML.
type Scene struct {
	Display  Display       `yaml:"display"`
	Clear    Color         `yaml:"clear"`
	Textures []TextureSpec `yaml:"textures"`
	Windows  []Window      `yaml:"windows"`
}

// Display is the logical display size and framebuffer scale.
type Display struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	Scale  float32 `yaml:"scale"`
}

// TextureSpec describes a generated checkerboard texture.
type TextureSpec struct {
	Name string `yaml:"name"`
	Size int    `yaml:"size"`
	Cell int    `yaml:"cell"`
	A    Color  `yaml:"a"`
	B    Color  `yaml:"b"`
}

// Window becomes one draw list clipped to Clip.
type Window struct {
	Name      string     `yaml:"name"`
	Clip      [4]float32 `yaml:"clip"`
	Rects     []Rect     `yaml:"rects"`
	Callbacks []string   `yaml:"callbacks"`
}

// Rect is a solid or textured rectangle: x, y, width, height.
type Rect struct {
	Rect    [4]float32 `yaml:"rect"`
	Color   Color      `yaml:"color"`
	Texture string     `yaml:"texture"`
}

// Color is an RGBA color written as "#rrggbb" or "#rrggbbaa".
type Color color.NRGBA

// UnmarshalYAML implements yaml.Unmarshaler for Color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := parseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func parseColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 6 {
		h += "ff"
	}
	b, err := hex.DecodeString(h)
	if err != nil || len(b) != 4 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// packed returns the color as a DrawVert color: R in the low byte.
func (c Color) packed() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// LoadScene reads a scene from a YAML file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	return ParseScene(data)
}

// ParseScene parses a YAML scene and applies defaults.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	if s.Display.Scale == 0 {
		s.Display.Scale = 1
	}
	if s.Display.Width <= 0 || s.Display.Height <= 0 {
		return nil, fmt.Errorf("scene display must be positive, got %vx%v", s.Display.Width, s.Display.Height)
	}
	return &s, nil
}

// checkerboard renders a texture spec.
func (t TextureSpec) checkerboard() *image.NRGBA {
	size, cell := max(t.Size, 1), max(t.Cell, 1)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := t.A
			if (x/cell+y/cell)%2 == 1 {
				c = t.B
			}
			img.SetNRGBA(x, y, color.NRGBA(c))
		}
	}
	return img
}

// UploadTextures creates the scene textures and returns their IDs by name.
func (s *Scene) UploadTextures(tm *uirender.TextureManager) (map[string]uirender.TextureID, error) {
	ids := make(map[string]uirender.TextureID, len(s.Textures))
	for _, t := range s.Textures {
		id, err := tm.CreateTexture(t.checkerboard())
		if err != nil {
			return nil, fmt.Errorf("texture %s: %w", t.Name, err)
		}
		ids[t.Name] = id
	}
	return ids, nil
}

// missingTexture is used for texture names the scene does not define.
const missingTexture uirender.TextureID = 1 << 62

// DrawData builds the frame. Consecutive rects sharing a texture are
// merged into one command.
func (s *Scene) DrawData(textures map[string]uirender.TextureID, log *slog.Logger) *uirender.DrawData {
	data := &uirender.DrawData{
		DisplaySize:      [2]float32{s.Display.Width, s.Display.Height},
		FramebufferScale: [2]float32{s.Display.Scale, s.Display.Scale},
	}
	for _, w := range s.Windows {
		data.Lists = append(data.Lists, w.drawList(textures, log))
	}
	return data
}

func (w Window) drawList(textures map[string]uirender.TextureID, log *slog.Logger) *uirender.DrawList {
	list := &uirender.DrawList{}
	for _, r := range w.Rects {
		tex := uirender.WhiteTexture
		if r.Texture != "" {
			id, ok := textures[r.Texture]
			if !ok {
				id = missingTexture
			}
			tex = id
		}

		base := uirender.DrawIdx(len(list.VtxBuffer))
		x0, y0 := r.Rect[0], r.Rect[1]
		x1, y1 := x0+r.Rect[2], y0+r.Rect[3]
		col := r.Color.packed()
		list.VtxBuffer = append(list.VtxBuffer,
			uirender.DrawVert{Pos: [2]float32{x0, y0}, UV: [2]float32{0, 0}, Col: col},
			uirender.DrawVert{Pos: [2]float32{x1, y0}, UV: [2]float32{1, 0}, Col: col},
			uirender.DrawVert{Pos: [2]float32{x1, y1}, UV: [2]float32{1, 1}, Col: col},
			uirender.DrawVert{Pos: [2]float32{x0, y1}, UV: [2]float32{0, 1}, Col: col},
		)
		list.IdxBuffer = append(list.IdxBuffer, base, base+1, base+2, base, base+2, base+3)

		n := len(list.CmdBuffer)
		if n > 0 && list.CmdBuffer[n-1].TextureID == tex && list.CmdBuffer[n-1].UserCallback == nil {
			list.CmdBuffer[n-1].ElemCount += 6
			continue
		}
		list.CmdBuffer = append(list.CmdBuffer, uirender.DrawCmd{
			ClipRect:  w.Clip,
			TextureID: tex,
			ElemCount: 6,
		})
	}

	for _, name := range w.Callbacks {
		switch name {
		case "reset":
			list.CmdBuffer = append(list.CmdBuffer, uirender.DrawCmd{UserCallback: uirender.ResetRenderState})
		case "marker":
			window := w.Name
			list.CmdBuffer = append(list.CmdBuffer, uirender.DrawCmd{
				UserCallback: uirender.CallbackFunc(func(_ *uirender.DrawList, _ *uirender.DrawCmd, st *uirender.RenderState) {
					fbw, fbh := st.FramebufferSize()
					log.Debug("demo: marker callback", "window", window, "fb_width", fbw, "fb_height", fbh)
				}),
			})
		default:
			log.Warn("demo: unknown callback", "window", w.Name, "callback", name)
		}
	}
	return list
}

// gpuColor converts the color to a clear value.
func (c Color) gpuColor() gputypes.Color {
	return gputypes.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}
