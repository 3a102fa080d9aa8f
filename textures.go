package uirender

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/uirender/gpucore"
	"github.com/gogpu/uirender/internal/gpu"
)

// textureEntry is a texture known to the manager. Owned entries were
// created by the manager and are destroyed with it; external entries only
// reference a view owned by the application.
type textureEntry struct {
	texture gpucore.TextureID
	view    gpucore.TextureViewID
	width   int
	height  int
	owned   bool
}

// TextureManager maps TextureID values to texture views and resolves them
// to image bind groups. Obtain it from Renderer.Textures.
//
// TextureManager is not safe for concurrent use.
type TextureManager struct {
	device    gpucore.Device
	resources *gpu.RenderResources

	entries map[TextureID]*textureEntry
	nextID  TextureID
}

func newTextureManager(device gpucore.Device, resources *gpu.RenderResources) *TextureManager {
	return &TextureManager{
		device:    device,
		resources: resources,
		entries:   make(map[TextureID]*textureEntry),
		nextID:    WhiteTexture + 1,
	}
}

// createWhite creates the built-in 1x1 white texture.
func (m *TextureManager) createWhite() error {
	e, err := m.upload("ui_white", 1, 1, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	if err != nil {
		return err
	}
	m.entries[WhiteTexture] = e
	return nil
}

// CreateTexture uploads img into a new texture and returns its ID.
// Any image type is accepted; it is converted to 8-bit straight-alpha
// RGBA first.
func (m *TextureManager) CreateTexture(img image.Image) (TextureID, error) {
	rgba := toNRGBA(img)
	b := rgba.Bounds()
	return m.CreateTextureRGBA(b.Dx(), b.Dy(), rgba.Pix)
}

// CreateTextureRGBA uploads tightly packed RGBA8 pixels into a new
// texture and returns its ID.
func (m *TextureManager) CreateTextureRGBA(width, height int, pixels []byte) (TextureID, error) {
	if err := checkPixels(width, height, pixels); err != nil {
		return WhiteTexture, newError("CreateTexture", KindBadTexture, err)
	}
	e, err := m.upload(fmt.Sprintf("ui_texture_%d", m.nextID), width, height, pixels)
	if err != nil {
		return WhiteTexture, newError("CreateTexture", KindTextureCreationFailed, err)
	}
	id := m.nextID
	m.nextID++
	m.entries[id] = e
	return id, nil
}

// UpdateTexture replaces the contents of an owned texture. The texture is
// recreated when the size changes. Its cached bind group is invalidated.
func (m *TextureManager) UpdateTexture(id TextureID, img image.Image) error {
	rgba := toNRGBA(img)
	b := rgba.Bounds()
	return m.UpdateTextureRGBA(id, b.Dx(), b.Dy(), rgba.Pix)
}

// UpdateTextureRGBA is UpdateTexture for tightly packed RGBA8 pixels.
func (m *TextureManager) UpdateTextureRGBA(id TextureID, width, height int, pixels []byte) error {
	e, ok := m.entries[id]
	if !ok || !e.owned {
		return newError("UpdateTexture", KindBadTexture, fmt.Errorf("texture %d is not an owned texture", id))
	}
	if err := checkPixels(width, height, pixels); err != nil {
		return newError("UpdateTexture", KindBadTexture, err)
	}

	if width == e.width && height == e.height {
		if err := m.device.WriteTexture(e.texture, pixels); err != nil {
			return newError("UpdateTexture", KindTextureCreationFailed, err)
		}
		m.resources.RemoveImageBindGroup(uint64(id))
		return nil
	}

	ne, err := m.upload(fmt.Sprintf("ui_texture_%d", id), width, height, pixels)
	if err != nil {
		return newError("UpdateTexture", KindTextureCreationFailed, err)
	}
	m.resources.RemoveImageBindGroup(uint64(id))
	m.release(e)
	m.entries[id] = ne
	return nil
}

// UpdateTextureRegion writes tightly packed RGBA8 pixels into rect of an
// owned texture. The texture keeps its view and bind group.
func (m *TextureManager) UpdateTextureRegion(id TextureID, rect image.Rectangle, pixels []byte) error {
	e, ok := m.entries[id]
	if !ok || !e.owned {
		return newError("UpdateTextureRegion", KindBadTexture, fmt.Errorf("texture %d is not an owned texture", id))
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, e.width, e.height)) {
		return newError("UpdateTextureRegion", KindBadTexture,
			fmt.Errorf("region %v outside %dx%d texture", rect, e.width, e.height))
	}
	if err := checkPixels(rect.Dx(), rect.Dy(), pixels); err != nil {
		return newError("UpdateTextureRegion", KindBadTexture, err)
	}
	err := m.device.WriteTextureRegion(e.texture,
		uint32(rect.Min.X), uint32(rect.Min.Y), uint32(rect.Dx()), uint32(rect.Dy()), pixels)
	if err != nil {
		return newError("UpdateTextureRegion", KindTextureCreationFailed, err)
	}
	return nil
}

// RegisterTexture makes an application-owned texture view drawable and
// returns its ID. The view must stay alive until UnregisterTexture.
func (m *TextureManager) RegisterTexture(view gpucore.TextureViewID) (TextureID, error) {
	if view == gpucore.InvalidID {
		return WhiteTexture, newError("RegisterTexture", KindBadTexture, fmt.Errorf("invalid view"))
	}
	id := m.nextID
	m.nextID++
	m.entries[id] = &textureEntry{view: view}
	return id, nil
}

// UpdateTextureView points an external texture at a new view, e.g. after
// the application resized a render target.
func (m *TextureManager) UpdateTextureView(id TextureID, view gpucore.TextureViewID) error {
	e, ok := m.entries[id]
	if !ok || e.owned {
		return newError("UpdateTextureView", KindBadTexture, fmt.Errorf("texture %d is not a registered view", id))
	}
	if view == gpucore.InvalidID {
		return newError("UpdateTextureView", KindBadTexture, fmt.Errorf("invalid view"))
	}
	m.resources.RemoveImageBindGroup(uint64(id))
	e.view = view
	return nil
}

// UnregisterTexture forgets a texture. Owned textures are destroyed; the
// views of external textures are left to the application.
func (m *TextureManager) UnregisterTexture(id TextureID) error {
	if id == WhiteTexture {
		return newError("UnregisterTexture", KindBadTexture, fmt.Errorf("the white texture cannot be removed"))
	}
	e, ok := m.entries[id]
	if !ok {
		return newError("UnregisterTexture", KindBadTexture, fmt.Errorf("texture %d not found", id))
	}
	m.resources.RemoveImageBindGroup(uint64(id))
	m.release(e)
	delete(m.entries, id)
	return nil
}

// DestroyTexture destroys a texture created by CreateTexture.
func (m *TextureManager) DestroyTexture(id TextureID) error {
	if e, ok := m.entries[id]; ok && !e.owned {
		return newError("DestroyTexture", KindBadTexture, fmt.Errorf("texture %d is a registered view", id))
	}
	return m.UnregisterTexture(id)
}

// Contains reports whether id is known.
func (m *TextureManager) Contains(id TextureID) bool {
	_, ok := m.entries[id]
	return ok
}

// Len returns the number of known textures, including the white texture.
func (m *TextureManager) Len() int { return len(m.entries) }

// View returns the view bound for id.
func (m *TextureManager) View(id TextureID) (gpucore.TextureViewID, bool) {
	e, ok := m.entries[id]
	if !ok {
		return gpucore.InvalidID, false
	}
	return e.view, true
}

// Size returns the pixel size of an owned texture.
func (m *TextureManager) Size(id TextureID) (width, height int, ok bool) {
	e, ok := m.entries[id]
	if !ok || !e.owned {
		return 0, 0, false
	}
	return e.width, e.height, true
}

// bindGroup resolves id to its image bind group, creating it on first use.
// ok is false for unknown textures.
func (m *TextureManager) bindGroup(id TextureID) (gpucore.BindGroupID, bool, error) {
	if g, ok := m.resources.ImageBindGroup(uint64(id)); ok {
		return g, true, nil
	}
	e, ok := m.entries[id]
	if !ok {
		return gpucore.InvalidID, false, nil
	}
	g, err := m.resources.GetOrCreateImageBindGroup(uint64(id), e.view)
	if err != nil {
		return gpucore.InvalidID, false, err
	}
	return g, true, nil
}

// handleRequests applies the frame's texture requests and returns how
// many succeeded. Failures are logged and reported through the request
// status, never as a frame error.
func (m *TextureManager) handleRequests(reqs []*TextureRequest) int {
	n := 0
	for _, req := range reqs {
		if req == nil {
			continue
		}
		applied, err := m.handleRequest(req)
		if err != nil {
			Logger().Warn("uirender: texture request failed",
				"texture", uint64(req.ID), "status", req.Status, "err", err)
			continue
		}
		if applied {
			n++
		}
	}
	return n
}

func (m *TextureManager) handleRequest(req *TextureRequest) (bool, error) {
	switch req.Status {
	case TextureWantCreate:
		if req.ID != WhiteTexture {
			m.resources.RemoveImageBindGroup(uint64(req.ID))
		}
		// Left as WantCreate on failure so the next frame retries.
		id, err := m.CreateTextureRGBA(req.Width, req.Height, req.Pixels)
		if err != nil {
			return false, err
		}
		req.ID, req.Status = id, TextureOK
		return true, nil

	case TextureWantUpdates:
		if e, ok := m.entries[req.ID]; req.ID == WhiteTexture || !ok || !e.owned {
			id, err := m.CreateTextureRGBA(req.Width, req.Height, req.Pixels)
			if err != nil {
				req.Status = TextureDestroyed
				return false, err
			}
			req.ID, req.Status = id, TextureOK
			return true, nil
		}
		if err := m.applyUpdates(req); err != nil {
			req.Status = TextureDestroyed
			return false, err
		}
		req.Status = TextureOK
		return true, nil

	case TextureWantDestroy:
		if req.UnusedFrames <= 0 {
			return false, nil
		}
		if req.ID != WhiteTexture && m.Contains(req.ID) {
			if err := m.UnregisterTexture(req.ID); err != nil {
				return false, err
			}
		}
		req.Status = TextureDestroyed
		return true, nil
	}
	return false, nil
}

// applyUpdates uploads the changed rectangles of an existing texture, or
// the whole texture when there are none or its size changed.
func (m *TextureManager) applyUpdates(req *TextureRequest) error {
	e := m.entries[req.ID]
	if len(req.Updates) == 0 || e.width != req.Width || e.height != req.Height {
		return m.UpdateTextureRGBA(req.ID, req.Width, req.Height, req.Pixels)
	}
	if err := checkPixels(req.Width, req.Height, req.Pixels); err != nil {
		return newError("UpdateTexture", KindBadTexture, err)
	}
	for _, rect := range req.Updates {
		sub, err := subRect(req.Pixels, req.Width, req.Height, rect)
		if err != nil {
			return newError("UpdateTextureRegion", KindBadTexture, err)
		}
		if err := m.UpdateTextureRegion(req.ID, rect, sub); err != nil {
			return err
		}
	}
	return nil
}

// clear drops every texture. Owned textures are destroyed.
func (m *TextureManager) clear() {
	for id, e := range m.entries {
		m.release(e)
		delete(m.entries, id)
	}
}

func (m *TextureManager) upload(label string, width, height int, pixels []byte) (*textureEntry, error) {
	tex, err := m.device.CreateTexture(&gpucore.TextureDesc{
		Label:  label,
		Width:  uint32(width),
		Height: uint32(height),
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	if err := m.device.WriteTexture(tex, pixels); err != nil {
		m.device.DestroyTexture(tex)
		return nil, fmt.Errorf("write texture %s: %w", label, err)
	}
	view, err := m.device.CreateTextureView(tex)
	if err != nil {
		m.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create view %s: %w", label, err)
	}
	return &textureEntry{texture: tex, view: view, width: width, height: height, owned: true}, nil
}

func (m *TextureManager) release(e *textureEntry) {
	if !e.owned {
		return
	}
	m.device.DestroyTextureView(e.view)
	m.device.DestroyTexture(e.texture)
}

func checkPixels(width, height int, pixels []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return fmt.Errorf("pixel data is %d bytes, want %d for %dx%d RGBA", len(pixels), width*height*4, width, height)
	}
	return nil
}

// subRect copies rect out of tightly packed RGBA8 pixels of a width x
// height image.
func subRect(pixels []byte, width, height int, rect image.Rectangle) ([]byte, error) {
	if rect.Empty() || !rect.In(image.Rect(0, 0, width, height)) {
		return nil, fmt.Errorf("update %v outside %dx%d texture", rect, width, height)
	}
	row := rect.Dx() * 4
	out := make([]byte, 0, row*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := (y*width + rect.Min.X) * 4
		out = append(out, pixels[off:off+row]...)
	}
	return out, nil
}

// toNRGBA returns img as a tightly packed, non-premultiplied
// *image.NRGBA with origin (0, 0). The UI pipeline blends straight alpha.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
