package uirender

import (
	"fmt"
	"image"
)

// TextureID is an opaque handle to a texture known to the renderer's
// TextureManager. The zero value refers to the built-in 1x1 white texture.
type TextureID uint64

// WhiteTexture is the texture drawn for commands with TextureID zero.
const WhiteTexture TextureID = 0

// DrawVert is one UI vertex. Col is RGBA8, little-endian (0xAABBGGRR),
// and is read by the shader as a normalized 4-component vector.
type DrawVert struct {
	Pos [2]float32
	UV  [2]float32
	Col uint32
}

// DrawIdx is the source index type.
type DrawIdx = uint16

// DrawCmd draws ElemCount indices of its list, or invokes UserCallback.
//
// Commands of a list consume the list's index buffer in order; the first
// index of a command is the sum of ElemCount of all previous commands in
// the same list. VtxOffset is added to the list's base vertex.
type DrawCmd struct {
	// ClipRect is (minX, minY, maxX, maxY) in display coordinates.
	ClipRect  [4]float32
	TextureID TextureID
	ElemCount uint32
	VtxOffset uint32

	// UserCallback replaces the draw when non-nil.
	UserCallback DrawCallback
}

// DrawList is an ordered sequence of commands with its own vertex and
// index buffers.
type DrawList struct {
	CmdBuffer []DrawCmd
	VtxBuffer []DrawVert
	IdxBuffer []DrawIdx
}

// TextureStatus is the state of a TextureRequest.
type TextureStatus uint8

const (
	// TextureOK means the texture is up to date; nothing to do.
	TextureOK TextureStatus = iota
	// TextureDestroyed means the texture no longer exists.
	TextureDestroyed
	// TextureWantCreate asks for a new texture from Pixels.
	TextureWantCreate
	// TextureWantUpdates asks for Updates (or all of Pixels) to be uploaded.
	TextureWantUpdates
	// TextureWantDestroy asks for the texture to be destroyed once unused.
	TextureWantDestroy
)

// String returns the status name.
func (s TextureStatus) String() string {
	switch s {
	case TextureOK:
		return "OK"
	case TextureDestroyed:
		return "Destroyed"
	case TextureWantCreate:
		return "WantCreate"
	case TextureWantUpdates:
		return "WantUpdates"
	case TextureWantDestroy:
		return "WantDestroy"
	default:
		return fmt.Sprintf("TextureStatus(%d)", uint8(s))
	}
}

// TextureRequest is a texture the UI library wants created, updated or
// destroyed before the frame is drawn. Render writes the outcome back
// into Status and ID.
type TextureRequest struct {
	Status TextureStatus
	ID     TextureID

	// Width, Height and Pixels hold the full RGBA8 contents.
	Width, Height int
	Pixels        []byte

	// Updates lists the changed rectangles of Pixels. When empty a
	// TextureWantUpdates request uploads the whole texture.
	Updates []image.Rectangle

	// UnusedFrames counts frames since the texture was last drawn.
	// TextureWantDestroy is honored only once it is positive.
	UnusedFrames int
}

// DrawData is the complete description of one UI frame.
type DrawData struct {
	Lists []*DrawList

	// Textures are processed before the frame's geometry is uploaded.
	Textures []*TextureRequest

	// DisplayPos is the top-left of the display rectangle, usually (0, 0).
	DisplayPos [2]float32

	// DisplaySize is the size of the display rectangle in points.
	DisplaySize [2]float32

	// FramebufferScale converts points to framebuffer pixels.
	FramebufferScale [2]float32
}

// TotalVtxCount returns the number of vertices over all lists.
func (d *DrawData) TotalVtxCount() int {
	n := 0
	for _, l := range d.Lists {
		if l != nil {
			n += len(l.VtxBuffer)
		}
	}
	return n
}

// TotalIdxCount returns the number of indices over all lists.
func (d *DrawData) TotalIdxCount() int {
	n := 0
	for _, l := range d.Lists {
		if l != nil {
			n += len(l.IdxBuffer)
		}
	}
	return n
}

// FramebufferSize returns DisplaySize scaled by FramebufferScale.
func (d *DrawData) FramebufferSize() (w, h float32) {
	return d.DisplaySize[0] * d.FramebufferScale[0], d.DisplaySize[1] * d.FramebufferScale[1]
}

// Valid reports whether the data describes a non-empty framebuffer.
// Frames that are not valid are skipped without error.
func (d *DrawData) Valid() bool {
	if d == nil {
		return false
	}
	w, h := d.FramebufferSize()
	return w > 0 && h > 0
}
