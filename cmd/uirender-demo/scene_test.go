package main

import (
	"log/slog"
	"testing"

	"github.com/gogpu/uirender"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff8040", Color{R: 0xFF, G: 0x80, B: 0x40, A: 0xFF}, false},
		{"#00000080", Color{A: 0x80}, false},
		{"ffffff", Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, false},
		{"#fff", Color{}, true},
		{"#zzzzzz", Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColor_Packed(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	if got := c.packed(); got != 0x44332211 {
		t.Errorf("packed() = 0x%08X, want 0x44332211", got)
	}
}

func TestParseScene_Default(t *testing.T) {
	s, err := ParseScene(defaultScene)
	if err != nil {
		t.Fatalf("ParseScene(default) error = %v", err)
	}
	if len(s.Windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(s.Windows))
	}
	if s.Display.Scale != 1 {
		t.Errorf("scale = %v, want 1", s.Display.Scale)
	}
}

func TestParseScene_Invalid(t *testing.T) {
	if _, err := ParseScene([]byte("display: {width: 0, height: 10}")); err == nil {
		t.Error("zero width: error = nil, want error")
	}
	if _, err := ParseScene([]byte("clear: 12")); err == nil {
		t.Error("numeric color: error = nil, want error")
	}
}

func TestScene_DrawData(t *testing.T) {
	s, err := ParseScene([]byte(`
display: {width: 100, height: 50, scale: 2}
windows:
  - name: w
    clip: [0, 0, 100, 50]
    rects:
      - {rect: [0, 0, 10, 10], color: "#ffffff"}
      - {rect: [10, 0, 10, 10], color: "#ffffff"}
      - {rect: [20, 0, 10, 10], color: "#ffffff", texture: tex}
      - {rect: [30, 0, 10, 10], color: "#ffffff", texture: nope}
    callbacks: [reset, bogus]
`))
	if err != nil {
		t.Fatal(err)
	}

	data := s.DrawData(map[string]uirender.TextureID{"tex": 7}, discardLogger())
	if data.FramebufferScale != [2]float32{2, 2} {
		t.Errorf("FramebufferScale = %v", data.FramebufferScale)
	}
	if len(data.Lists) != 1 {
		t.Fatalf("lists = %d, want 1", len(data.Lists))
	}
	list := data.Lists[0]
	if len(list.VtxBuffer) != 16 || len(list.IdxBuffer) != 24 {
		t.Errorf("vertices/indices = %d/%d, want 16/24", len(list.VtxBuffer), len(list.IdxBuffer))
	}

	// Two white rects merge; the unknown callback is dropped.
	wantTex := []uirender.TextureID{uirender.WhiteTexture, 7, missingTexture}
	wantElems := []uint32{12, 6, 6}
	if len(list.CmdBuffer) != 4 {
		t.Fatalf("commands = %d, want 4", len(list.CmdBuffer))
	}
	for i := range wantTex {
		cmd := list.CmdBuffer[i]
		if cmd.TextureID != wantTex[i] || cmd.ElemCount != wantElems[i] {
			t.Errorf("cmd %d = {tex %d, elems %d}, want {tex %d, elems %d}",
				i, cmd.TextureID, cmd.ElemCount, wantTex[i], wantElems[i])
		}
	}
	if list.CmdBuffer[3].UserCallback != uirender.ResetRenderState {
		t.Error("last command is not ResetRenderState")
	}
	if list.IdxBuffer[6] != 4 {
		t.Errorf("second rect first index = %d, want 4", list.IdxBuffer[6])
	}
}

func TestTextureSpec_Checkerboard(t *testing.T) {
	spec := TextureSpec{Size: 4, Cell: 2, A: Color{R: 255, A: 255}, B: Color{B: 255, A: 255}}
	img := spec.checkerboard()
	if got := img.NRGBAAt(0, 0); got.R != 255 {
		t.Errorf("(0,0) = %v, want A", got)
	}
	if got := img.NRGBAAt(2, 0); got.B != 255 {
		t.Errorf("(2,0) = %v, want B", got)
	}
	if got := img.NRGBAAt(2, 2); got.R != 255 {
		t.Errorf("(2,2) = %v, want A", got)
	}
}
