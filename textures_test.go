package uirender

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/uirender/gpucore"
	"github.com/gogpu/uirender/internal/gputest"
)

func TestCreateTexture(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 64, G: 64, B: 64, A: 128})

	id, err := m.CreateTexture(img)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if id == WhiteTexture {
		t.Fatal("CreateTexture() returned the white texture ID")
	}
	if w, h, ok := m.Size(id); !ok || w != 2 || h != 1 {
		t.Errorf("Size() = %d, %d, %v, want 2, 1, true", w, h, ok)
	}

	view, ok := m.View(id)
	if !ok {
		t.Fatal("View() not found")
	}
	tex := dev.Views[view]
	// Premultiplied RGBA is converted to straight alpha.
	want := []byte{255, 0, 0, 255, 127, 127, 127, 128}
	if got := dev.TextureData[tex]; !bytes.Equal(got, want) {
		t.Errorf("texture data = %v, want %v", got, want)
	}
}

func TestCreateTextureSubImage(t *testing.T) {
	r, dev := newTestRenderer(t)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = byte(i)
	}
	sub := src.SubImage(image.Rect(1, 1, 3, 3))

	id, err := r.Textures().CreateTexture(sub)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	view, _ := r.Textures().View(id)
	got := dev.TextureData[dev.Views[view]]
	if len(got) != 16 {
		t.Fatalf("texture data = %d bytes, want 16", len(got))
	}
	// Row 1, column 1 of the source.
	if !bytes.Equal(got[:4], src.Pix[20:24]) {
		t.Errorf("first pixel = %v, want %v", got[:4], src.Pix[20:24])
	}
}

func TestCreateTextureRGBAErrors(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		pixels []byte
		want   error
	}{
		{"zero size", 0, 1, nil, ErrBadTexture},
		{"negative size", -1, 1, nil, ErrBadTexture},
		{"short data", 2, 2, make([]byte, 15), ErrBadTexture},
		{"long data", 1, 1, make([]byte, 8), ErrBadTexture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRenderer(t)
			id, err := r.Textures().CreateTextureRGBA(tt.w, tt.h, tt.pixels)
			if !errors.Is(err, tt.want) {
				t.Errorf("CreateTextureRGBA() error = %v, want %v", err, tt.want)
			}
			if id != WhiteTexture {
				t.Errorf("CreateTextureRGBA() id = %d on error, want WhiteTexture", id)
			}
		})
	}
}

func TestCreateTextureDeviceFailure(t *testing.T) {
	r, dev := newTestRenderer(t)
	dev.FailTextures = true

	_, err := r.Textures().CreateTextureRGBA(1, 1, make([]byte, 4))
	if !errors.Is(err, ErrTextureCreation) {
		t.Errorf("CreateTextureRGBA() error = %v, want ErrTextureCreation", err)
	}
	if got := r.Textures().Len(); got != 1 {
		t.Errorf("Len() = %d after failure, want 1", got)
	}
}

func TestUpdateTexture(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()

	id, err := m.CreateTextureRGBA(1, 1, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("CreateTextureRGBA() error = %v", err)
	}
	if _, _, err := m.bindGroup(id); err != nil {
		t.Fatalf("bindGroup() error = %v", err)
	}
	view, _ := m.View(id)

	// Same size: contents replaced in place, bind group dropped.
	if err := m.UpdateTextureRGBA(id, 1, 1, []byte{5, 6, 7, 8}); err != nil {
		t.Fatalf("UpdateTextureRGBA() error = %v", err)
	}
	if v, _ := m.View(id); v != view {
		t.Error("same-size update recreated the texture")
	}
	if got := dev.TextureData[dev.Views[view]]; !bytes.Equal(got, []byte{5, 6, 7, 8}) {
		t.Errorf("texture data = %v", got)
	}
	if r.Stats().ImageBindGroups != 0 {
		t.Error("update kept a stale bind group")
	}

	// New size: texture recreated, old one released.
	liveTextures := dev.Live(gputest.KindTexture)
	if err := m.UpdateTexture(id, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}
	if v, _ := m.View(id); v == view {
		t.Error("resize kept the old view")
	}
	if w, h, _ := m.Size(id); w != 2 || h != 2 {
		t.Errorf("Size() = %dx%d, want 2x2", w, h)
	}
	if got := dev.Live(gputest.KindTexture); got != liveTextures {
		t.Errorf("live textures = %d, want %d", got, liveTextures)
	}
}

func TestUpdateTextureErrors(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()

	ext, err := m.RegisterTexture(dev.NewExternalView())
	if err != nil {
		t.Fatalf("RegisterTexture() error = %v", err)
	}
	tests := []struct {
		name string
		id   TextureID
	}{
		{"unknown", 42},
		{"external", ext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.UpdateTextureRGBA(tt.id, 1, 1, make([]byte, 4))
			if !errors.Is(err, ErrBadTexture) {
				t.Errorf("UpdateTextureRGBA() error = %v, want ErrBadTexture", err)
			}
		})
	}
}

func TestRegisterTexture(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()
	view := dev.NewExternalView()

	id, err := m.RegisterTexture(view)
	if err != nil {
		t.Fatalf("RegisterTexture() error = %v", err)
	}
	if v, ok := m.View(id); !ok || v != view {
		t.Errorf("View() = %d, %v, want %d, true", v, ok, view)
	}
	if _, _, ok := m.Size(id); ok {
		t.Error("Size() ok for an external texture")
	}

	pass := dev.NewPass()
	l := quadList(1, id, fullClip)
	if _, err := r.Render(frame(l), pass); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	group := pass.Draws[0].BindGroups[1]
	if got := dev.BindGroups[group].Entries[0].TextureView; got != view {
		t.Errorf("bind group view = %d, want %d", got, view)
	}

	// Pointing at a new view drops the cached bind group.
	view2 := dev.NewExternalView()
	if err := m.UpdateTextureView(id, view2); err != nil {
		t.Fatalf("UpdateTextureView() error = %v", err)
	}
	if _, ok := dev.BindGroups[group]; ok {
		t.Error("stale bind group not destroyed")
	}

	if err := m.UnregisterTexture(id); err != nil {
		t.Fatalf("UnregisterTexture() error = %v", err)
	}
	if m.Contains(id) {
		t.Error("texture still known after UnregisterTexture")
	}
	if _, ok := dev.Views[view2]; !ok {
		t.Error("UnregisterTexture destroyed an application-owned view")
	}

	if _, err := m.RegisterTexture(gpucore.InvalidID); !errors.Is(err, ErrBadTexture) {
		t.Errorf("RegisterTexture(invalid) error = %v, want ErrBadTexture", err)
	}
}

func TestUnregisterTextureErrors(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()

	if err := m.UnregisterTexture(WhiteTexture); !errors.Is(err, ErrBadTexture) {
		t.Errorf("UnregisterTexture(white) error = %v, want ErrBadTexture", err)
	}
	if err := m.UnregisterTexture(77); !errors.Is(err, ErrBadTexture) {
		t.Errorf("UnregisterTexture(unknown) error = %v, want ErrBadTexture", err)
	}
	ext, _ := m.RegisterTexture(dev.NewExternalView())
	if err := m.DestroyTexture(ext); !errors.Is(err, ErrBadTexture) {
		t.Errorf("DestroyTexture(external) error = %v, want ErrBadTexture", err)
	}
	if err := m.UpdateTextureView(WhiteTexture, dev.NewExternalView()); !errors.Is(err, ErrBadTexture) {
		t.Errorf("UpdateTextureView(owned) error = %v, want ErrBadTexture", err)
	}
}

func TestDestroyTexture(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()
	before := dev.LiveTotal()

	id, err := m.CreateTextureRGBA(1, 1, make([]byte, 4))
	if err != nil {
		t.Fatalf("CreateTextureRGBA() error = %v", err)
	}
	if _, _, err := m.bindGroup(id); err != nil {
		t.Fatalf("bindGroup() error = %v", err)
	}
	if err := m.DestroyTexture(id); err != nil {
		t.Fatalf("DestroyTexture() error = %v", err)
	}
	if got := dev.LiveTotal(); got != before {
		t.Errorf("LiveTotal() = %d after destroy, want %d", got, before)
	}
}

func TestTextureIDsNotReused(t *testing.T) {
	r, _ := newTestRenderer(t)
	m := r.Textures()

	a, _ := m.CreateTextureRGBA(1, 1, make([]byte, 4))
	if err := m.DestroyTexture(a); err != nil {
		t.Fatalf("DestroyTexture() error = %v", err)
	}
	b, _ := m.CreateTextureRGBA(1, 1, make([]byte, 4))
	if a == b {
		t.Errorf("ID %d reused after destroy", a)
	}
}

func TestUpdateTextureRegion(t *testing.T) {
	r, dev := newTestRenderer(t)
	m := r.Textures()

	id, err := m.CreateTextureRGBA(3, 2, make([]byte, 3*2*4))
	if err != nil {
		t.Fatalf("CreateTextureRGBA() error = %v", err)
	}
	view, _ := m.View(id)
	if _, err := r.Render(frame(quadList(1, id, fullClip)), dev.NewPass()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	groups := r.Stats().ImageBindGroups

	patch := bytes.Repeat([]byte{9}, 2*1*4)
	if err := m.UpdateTextureRegion(id, image.Rect(1, 1, 3, 2), patch); err != nil {
		t.Fatalf("UpdateTextureRegion() error = %v", err)
	}
	data := dev.TextureData[dev.Views[view]]
	for i, b := range data {
		px := i / 4
		x, y := px%3, px/3
		want := byte(0)
		if y == 1 && x >= 1 {
			want = 9
		}
		if b != want {
			t.Fatalf("texel (%d,%d) byte %d = %d, want %d", x, y, i%4, b, want)
		}
	}
	if got, _ := m.View(id); got != view {
		t.Error("region update replaced the view")
	}
	if got := r.Stats().ImageBindGroups; got != groups {
		t.Errorf("image bind groups = %d, want %d", got, groups)
	}

	tests := []struct {
		name   string
		id     TextureID
		rect   image.Rectangle
		pixels []byte
	}{
		{"unknown", 999, image.Rect(0, 0, 1, 1), make([]byte, 4)},
		{"outside", id, image.Rect(2, 1, 4, 2), make([]byte, 8)},
		{"empty", id, image.Rect(1, 1, 1, 2), nil},
		{"short data", id, image.Rect(0, 0, 2, 2), make([]byte, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.UpdateTextureRegion(tt.id, tt.rect, tt.pixels); !errors.Is(err, ErrBadTexture) {
				t.Errorf("UpdateTextureRegion() error = %v, want ErrBadTexture", err)
			}
		})
	}
}

func TestRenderTextureRequests(t *testing.T) {
	r, dev := newTestRenderer(t)

	pixels := make([]byte, 4*4*4)
	atlas := &TextureRequest{Status: TextureWantCreate, Width: 4, Height: 4, Pixels: pixels}
	data := frame(quadList(1, WhiteTexture, fullClip))
	data.Textures = []*TextureRequest{atlas, nil}

	stats, err := r.Render(data, dev.NewPass())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if atlas.Status != TextureOK || atlas.ID == WhiteTexture || !r.Textures().Contains(atlas.ID) {
		t.Fatalf("create request = %v id %d, want OK with a new texture", atlas.Status, atlas.ID)
	}
	if stats.TextureRequests != 1 {
		t.Errorf("TextureRequests = %d, want 1", stats.TextureRequests)
	}
	view, _ := r.Textures().View(atlas.ID)
	tex := dev.Views[view]

	// Sub-rectangle update: only the changed rows reach the device.
	for i := 8 * 4; i < 16*4; i++ {
		pixels[i] = 0xAB
	}
	atlas.Status = TextureWantUpdates
	atlas.Updates = []image.Rectangle{image.Rect(0, 2, 4, 4)}
	if _, err := r.Render(data, dev.NewPass()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if atlas.Status != TextureOK || dev.RegionWrites != 1 {
		t.Errorf("update request = %v with %d region writes, want OK with 1", atlas.Status, dev.RegionWrites)
	}
	if got := dev.TextureData[tex]; !bytes.Equal(got, pixels) {
		t.Error("texture contents differ from the request pixels after a region update")
	}

	// Size change falls back to recreating the texture.
	atlas.Status = TextureWantUpdates
	atlas.Width, atlas.Height, atlas.Pixels = 2, 2, make([]byte, 16)
	if _, err := r.Render(data, dev.NewPass()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if w, h, _ := r.Textures().Size(atlas.ID); atlas.Status != TextureOK || w != 2 || h != 2 {
		t.Errorf("resize request = %v size %dx%d, want OK 2x2", atlas.Status, w, h)
	}

	// Destroy waits until the texture is unused.
	atlas.Status = TextureWantDestroy
	if _, err := r.Render(data, dev.NewPass()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if atlas.Status != TextureWantDestroy || !r.Textures().Contains(atlas.ID) {
		t.Fatal("texture destroyed while still in use")
	}
	atlas.UnusedFrames = 1
	if _, err := r.Render(data, dev.NewPass()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if atlas.Status != TextureDestroyed || r.Textures().Contains(atlas.ID) {
		t.Errorf("destroy request = %v, contained %v", atlas.Status, r.Textures().Contains(atlas.ID))
	}
}

func TestRenderTextureRequestFailures(t *testing.T) {
	r, dev := newTestRenderer(t)

	bad := &TextureRequest{Status: TextureWantCreate, Width: 2, Height: 2, Pixels: make([]byte, 3)}
	update := &TextureRequest{Status: TextureWantUpdates, ID: 777, Width: 1, Height: 1, Pixels: make([]byte, 3)}
	data := frame(quadList(1, WhiteTexture, fullClip))
	data.Textures = []*TextureRequest{bad, update}

	stats, err := r.Render(data, dev.NewPass())
	if err != nil {
		t.Fatalf("Render() error = %v, want texture failures kept out of the frame", err)
	}
	if bad.Status != TextureWantCreate || bad.ID != WhiteTexture {
		t.Errorf("failed create = %v id %d, want it left for a retry", bad.Status, bad.ID)
	}
	if update.Status != TextureDestroyed {
		t.Errorf("failed update = %v, want Destroyed", update.Status)
	}
	if stats.TextureRequests != 0 || stats.DrawCalls != 1 {
		t.Errorf("stats = %+v, want no requests applied and the frame drawn", stats)
	}

	// Requests are handled even when the frame has nothing to draw.
	skipped := &DrawData{Textures: []*TextureRequest{{Status: TextureWantCreate, Width: 1, Height: 1, Pixels: make([]byte, 4)}}}
	stats, err = r.Render(skipped, dev.NewPass())
	if err != nil || !stats.Skipped || stats.TextureRequests != 1 {
		t.Errorf("skipped frame = %+v, %v, want one request applied", stats, err)
	}
}

func TestTextureStatusString(t *testing.T) {
	if got := TextureWantUpdates.String(); got != "WantUpdates" {
		t.Errorf("String() = %q", got)
	}
	if got := TextureStatus(42).String(); got != "TextureStatus(42)" {
		t.Errorf("String() = %q", got)
	}
}
