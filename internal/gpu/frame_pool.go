package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
)

// Growth slack added on top of the requested element count when a slot
// buffer has to be reallocated.
const (
	vertexGrowSlack = 5000
	indexGrowSlack  = 10000
)

// IndexSize is the byte size of one uploaded index. Source indices are
// widened to uint32.
const IndexSize = 4

// FrameSlot owns the vertex and index buffers used by one frame in flight.
// Capacities are in elements and never shrink.
type FrameSlot struct {
	VertexBuffer gpucore.BufferID
	IndexBuffer  gpucore.BufferID

	VertexCapacity uint32
	IndexCapacity  uint32

	// host staging, reused across frames
	vertexStaging []byte
	indexStaging  []byte

	allocations uint32
}

// VertexStaging returns the slot's vertex staging bytes for n vertices.
// The slice is only valid until the next call on this slot.
func (s *FrameSlot) VertexStaging(n int) []byte {
	size := ceil4(n * VertexStride)
	if cap(s.vertexStaging) < size {
		s.vertexStaging = make([]byte, size)
	}
	b := s.vertexStaging[:size]
	clear(b[n*VertexStride:])
	return b
}

// IndexStaging returns the slot's index staging bytes for n indices.
func (s *FrameSlot) IndexStaging(n int) []byte {
	size := n * IndexSize
	if cap(s.indexStaging) < size {
		s.indexStaging = make([]byte, size)
	}
	return s.indexStaging[:size]
}

// SlotStats describes one slot.
type SlotStats struct {
	VertexCapacity uint32
	IndexCapacity  uint32
	Allocations    uint32
}

// FramePool is a fixed ring of FrameSlot values, one per frame in flight.
type FramePool struct {
	device gpucore.Device
	slots  []FrameSlot
	frame  uint64
}

// NewFramePool creates a pool with n slots. No buffers are allocated
// until the first frame requests capacity.
func NewFramePool(device gpucore.Device, n int) (*FramePool, error) {
	if n < 1 {
		return nil, ErrInvalidFramesInFlight
	}
	return &FramePool{
		device: device,
		slots:  make([]FrameSlot, n),
	}, nil
}

// Len returns the number of frames in flight.
func (p *FramePool) Len() int { return len(p.slots) }

// Frame returns the current frame index, always in [0, Len()).
func (p *FramePool) Frame() uint64 { return p.frame }

// NextFrame advances the current frame index, wrapping at Len().
func (p *FramePool) NextFrame() {
	p.frame = (p.frame + 1) % uint64(len(p.slots))
}

// Slot returns the slot for frameIndex modulo Len().
func (p *FramePool) Slot(frameIndex uint64) *FrameSlot {
	return &p.slots[frameIndex%uint64(len(p.slots))]
}

// Current returns the slot of the current frame.
func (p *FramePool) Current() *FrameSlot { return p.Slot(p.frame) }

// Growth holds replacement slot buffers allocated by Reserve and not yet
// installed. A zero Growth replaces nothing.
type Growth struct {
	vertexBuffer   gpucore.BufferID
	indexBuffer    gpucore.BufferID
	vertexCapacity uint32
	indexCapacity  uint32
}

// Empty reports whether g replaces no buffer.
func (g Growth) Empty() bool {
	return g.vertexBuffer == gpucore.InvalidID && g.indexBuffer == gpucore.InvalidID
}

// Reserve allocates the buffers s needs to hold vertices and indices
// without touching s. A zero requirement never allocates. On failure any
// buffer already allocated is destroyed and s keeps its state.
func (p *FramePool) Reserve(s *FrameSlot, vertices, indices uint32) (Growth, error) {
	var g Growth
	if needsGrowth(s.VertexBuffer, s.VertexCapacity, vertices) {
		newCap := grownCapacity(s.VertexCapacity, vertices, vertexGrowSlack)
		buf, err := p.device.CreateBuffer(&gpucore.BufferDesc{
			Label: "ui_vertices",
			Size:  uint64(ceil4(int(newCap) * VertexStride)),
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return Growth{}, fmt.Errorf("%w: vertex buffer (%d vertices): %w", ErrBufferCreation, newCap, err)
		}
		g.vertexBuffer, g.vertexCapacity = buf, newCap
	}
	if needsGrowth(s.IndexBuffer, s.IndexCapacity, indices) {
		newCap := grownCapacity(s.IndexCapacity, indices, indexGrowSlack)
		buf, err := p.device.CreateBuffer(&gpucore.BufferDesc{
			Label: "ui_indices",
			Size:  uint64(ceil4(int(newCap) * IndexSize)),
			Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			p.Release(g)
			return Growth{}, fmt.Errorf("%w: index buffer (%d indices): %w", ErrBufferCreation, newCap, err)
		}
		g.indexBuffer, g.indexCapacity = buf, newCap
	}
	return g, nil
}

// Commit installs the buffers of g into s and destroys the ones they
// replace.
func (p *FramePool) Commit(s *FrameSlot, g Growth) {
	if g.vertexBuffer != gpucore.InvalidID {
		if s.VertexBuffer != gpucore.InvalidID {
			p.device.DestroyBuffer(s.VertexBuffer)
		}
		slogger().Debug("vertex buffer grown", "from", s.VertexCapacity, "to", g.vertexCapacity)
		s.VertexBuffer = g.vertexBuffer
		s.VertexCapacity = g.vertexCapacity
		s.allocations++
	}
	if g.indexBuffer != gpucore.InvalidID {
		if s.IndexBuffer != gpucore.InvalidID {
			p.device.DestroyBuffer(s.IndexBuffer)
		}
		slogger().Debug("index buffer grown", "from", s.IndexCapacity, "to", g.indexCapacity)
		s.IndexBuffer = g.indexBuffer
		s.IndexCapacity = g.indexCapacity
		s.allocations++
	}
}

// Release destroys the buffers of a Growth that will not be committed.
func (p *FramePool) Release(g Growth) {
	if g.vertexBuffer != gpucore.InvalidID {
		p.device.DestroyBuffer(g.vertexBuffer)
	}
	if g.indexBuffer != gpucore.InvalidID {
		p.device.DestroyBuffer(g.indexBuffer)
	}
}

// EnsureCapacity grows the slot's buffers to hold at least vertices and
// indices. Either both buffers are replaced as needed or, on failure,
// neither is.
func (p *FramePool) EnsureCapacity(s *FrameSlot, vertices, indices uint32) error {
	g, err := p.Reserve(s, vertices, indices)
	if err != nil {
		return err
	}
	p.Commit(s, g)
	return nil
}

// EnsureVertexCapacity grows only the slot's vertex buffer.
func (p *FramePool) EnsureVertexCapacity(s *FrameSlot, required uint32) error {
	return p.EnsureCapacity(s, required, 0)
}

// EnsureIndexCapacity grows only the slot's index buffer.
func (p *FramePool) EnsureIndexCapacity(s *FrameSlot, required uint32) error {
	return p.EnsureCapacity(s, 0, required)
}

// UploadVertices writes packed vertex bytes (from VertexStaging) into the
// slot's vertex buffer with one write.
func (p *FramePool) UploadVertices(s *FrameSlot, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if uint64(len(data)) > uint64(ceil4(int(s.VertexCapacity)*VertexStride)) {
		return fmt.Errorf("%w: %d vertex bytes, capacity %d vertices", ErrHostBufferTooSmall, len(data), s.VertexCapacity)
	}
	p.device.WriteBuffer(s.VertexBuffer, 0, data)
	return nil
}

// UploadIndices writes widened index bytes (from IndexStaging) into the
// slot's index buffer with one write.
func (p *FramePool) UploadIndices(s *FrameSlot, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if uint64(len(data)) > uint64(s.IndexCapacity)*IndexSize {
		return fmt.Errorf("%w: %d index bytes, capacity %d indices", ErrHostBufferTooSmall, len(data), s.IndexCapacity)
	}
	p.device.WriteBuffer(s.IndexBuffer, 0, data)
	return nil
}

// Stats returns per-slot capacities and allocation counts.
func (p *FramePool) Stats() []SlotStats {
	out := make([]SlotStats, len(p.slots))
	for i := range p.slots {
		s := &p.slots[i]
		out[i] = SlotStats{
			VertexCapacity: s.VertexCapacity,
			IndexCapacity:  s.IndexCapacity,
			Allocations:    s.allocations,
		}
	}
	return out
}

// Destroy releases every slot buffer. The pool keeps its size and may be
// used again; buffers are reallocated on demand.
func (p *FramePool) Destroy() {
	for i := range p.slots {
		s := &p.slots[i]
		if s.VertexBuffer != gpucore.InvalidID {
			p.device.DestroyBuffer(s.VertexBuffer)
		}
		if s.IndexBuffer != gpucore.InvalidID {
			p.device.DestroyBuffer(s.IndexBuffer)
		}
		p.slots[i] = FrameSlot{}
	}
}

// PutVertex encodes one vertex at index i of a staging slice.
func PutVertex(dst []byte, i int, pos, uv [2]float32, col uint32) {
	b := dst[i*VertexStride : (i+1)*VertexStride]
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(pos[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(pos[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(uv[0]))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(uv[1]))
	binary.LittleEndian.PutUint32(b[16:], col)
}

// PutIndex encodes one widened index at position i of a staging slice.
func PutIndex(dst []byte, i int, idx uint16) {
	binary.LittleEndian.PutUint32(dst[i*IndexSize:], uint32(idx))
}

func needsGrowth(buf gpucore.BufferID, capacity, required uint32) bool {
	if required == 0 {
		return false
	}
	return buf == gpucore.InvalidID || capacity < required
}

func grownCapacity(current, required, slack uint32) uint32 {
	return max(required+slack, current*2)
}

func ceil4(n int) int {
	return (n + 3) &^ 3
}
