package uirender

import (
	"encoding/binary"
	"math"
	"testing"
)

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func TestDrawDataTotals(t *testing.T) {
	d := frame(quadList(2, WhiteTexture, fullClip), nil, quadList(1, WhiteTexture, fullClip))
	if got := d.TotalVtxCount(); got != 12 {
		t.Errorf("TotalVtxCount() = %d, want 12", got)
	}
	if got := d.TotalIdxCount(); got != 18 {
		t.Errorf("TotalIdxCount() = %d, want 18", got)
	}
}

func TestDrawDataValid(t *testing.T) {
	tests := []struct {
		name  string
		data  *DrawData
		valid bool
		w, h  float32
	}{
		{"nil", nil, false, 0, 0},
		{"normal", &DrawData{DisplaySize: [2]float32{800, 600}, FramebufferScale: [2]float32{1, 1}}, true, 800, 600},
		{"retina", &DrawData{DisplaySize: [2]float32{800, 600}, FramebufferScale: [2]float32{2, 2}}, true, 1600, 1200},
		{"minimized", &DrawData{DisplaySize: [2]float32{0, 0}, FramebufferScale: [2]float32{1, 1}}, false, 0, 0},
		{"no scale", &DrawData{DisplaySize: [2]float32{800, 600}}, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if tt.data == nil {
				return
			}
			if w, h := tt.data.FramebufferSize(); w != tt.w || h != tt.h {
				t.Errorf("FramebufferSize() = %v, %v, want %v, %v", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestRenderNilListsIgnored(t *testing.T) {
	r, dev := newTestRenderer(t)
	pass := dev.NewPass()

	stats, err := r.Render(frame(nil, quadList(1, WhiteTexture, fullClip), nil), pass)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if stats.Lists != 1 || stats.DrawCalls != 1 {
		t.Errorf("stats = %+v, want 1 list, 1 draw", stats)
	}
}
