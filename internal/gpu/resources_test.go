package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
	"github.com/gogpu/uirender/internal/gputest"
)

func TestRenderResources_Init(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer r.Destroy()

	if !r.Initialized() {
		t.Fatal("Initialized() = false after Init")
	}
	ub, ok := dev.Buffers[r.UniformBuffer()]
	if !ok {
		t.Fatal("uniform buffer not created")
	}
	if ub.Desc.Size != UniformsSize {
		t.Errorf("uniform buffer size = %d, want %d", ub.Desc.Size, UniformsSize)
	}
	if ub.Desc.Usage != gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst {
		t.Errorf("uniform buffer usage = %v", ub.Desc.Usage)
	}
	if got := dev.Live(gputest.KindBindGroupLayout); got != 2 {
		t.Errorf("bind group layouts = %d, want 2", got)
	}

	common := dev.BindGroups[r.CommonBindGroup()]
	if len(common.Entries) != 2 || common.Entries[0].Buffer != r.UniformBuffer() || common.Entries[1].Sampler == gpucore.InvalidID {
		t.Errorf("common bind group entries = %+v", common.Entries)
	}
}

func TestRenderResources_DoubleInit(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer r.Destroy()
	if err := r.Init(dev); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init() = %v, want ErrAlreadyInitialized", err)
	}
}

func TestRenderResources_InitFailureCleansUp(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailBuffers = true
	var r RenderResources
	err := r.Init(dev)
	if !errors.Is(err, ErrBufferCreation) {
		t.Fatalf("Init() = %v, want ErrBufferCreation", err)
	}
	if r.Initialized() {
		t.Error("Initialized() = true after failed Init")
	}
	if n := dev.LiveTotal(); n != 0 {
		t.Errorf("live resources = %d after failed Init, want 0", n)
	}

	// Init can be retried once the device recovers.
	dev.FailBuffers = false
	if err := r.Init(dev); err != nil {
		t.Fatalf("retry Init() = %v", err)
	}
	r.Destroy()
}

func TestRenderResources_ImageBindGroupCache(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer r.Destroy()

	view := dev.NewExternalView()
	g1, err := r.GetOrCreateImageBindGroup(7, view)
	if err != nil {
		t.Fatalf("GetOrCreateImageBindGroup() = %v", err)
	}
	created := len(dev.BindGroupDescs)

	g2, err := r.GetOrCreateImageBindGroup(7, view)
	if err != nil {
		t.Fatalf("GetOrCreateImageBindGroup() hit = %v", err)
	}
	if g1 != g2 {
		t.Errorf("cache hit returned %d, want %d", g2, g1)
	}
	if len(dev.BindGroupDescs) != created {
		t.Errorf("cache hit created a bind group")
	}

	if g, ok := r.ImageBindGroup(7); !ok || g != g1 {
		t.Errorf("ImageBindGroup(7) = %d, %v", g, ok)
	}
	if _, ok := r.ImageBindGroup(8); ok {
		t.Error("ImageBindGroup(8) found an entry that was never created")
	}

	if !r.RemoveImageBindGroup(7) {
		t.Error("RemoveImageBindGroup(7) = false")
	}
	if _, ok := dev.BindGroups[g1]; ok {
		t.Error("removed bind group was not destroyed")
	}
	if r.RemoveImageBindGroup(7) {
		t.Error("RemoveImageBindGroup(7) twice = true")
	}

	g3, _ := r.GetOrCreateImageBindGroup(7, view)
	if g3 == g1 {
		t.Error("recreated bind group reused a destroyed ID")
	}
}

func TestRenderResources_ClearAndStats(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer r.Destroy()

	for k := uint64(1); k <= 3; k++ {
		if _, err := r.GetOrCreateImageBindGroup(k, dev.NewExternalView()); err != nil {
			t.Fatalf("GetOrCreateImageBindGroup(%d) = %v", k, err)
		}
	}
	if s := r.Stats(); !s.Initialized || s.ImageBindGroups != 3 {
		t.Errorf("Stats() = %+v", s)
	}
	r.ClearImageBindGroups()
	if s := r.Stats(); s.ImageBindGroups != 0 {
		t.Errorf("Stats().ImageBindGroups = %d after clear, want 0", s.ImageBindGroups)
	}
	// Only the common bind group remains.
	if n := dev.Live(gputest.KindBindGroup); n != 1 {
		t.Errorf("live bind groups = %d, want 1", n)
	}
}

func TestRenderResources_UpdateUniforms(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.UpdateUniforms(&Uniforms{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("UpdateUniforms() before Init = %v, want ErrNotInitialized", err)
	}
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer r.Destroy()

	u := BuildUniforms([2]float32{0, 0}, [2]float32{100, 100}, gputypes.TextureFormatBGRA8Unorm, GammaModeAuto)
	before := len(dev.Writes)
	if err := r.UpdateUniforms(&u); err != nil {
		t.Fatalf("UpdateUniforms() = %v", err)
	}
	if got := len(dev.Writes) - before; got != 1 {
		t.Fatalf("UpdateUniforms() issued %d writes, want 1", got)
	}
	w := dev.Writes[len(dev.Writes)-1]
	if w.Buffer != r.UniformBuffer() || w.Offset != 0 || w.Size != UniformsSize {
		t.Errorf("write = %+v", w)
	}
	data := dev.Buffers[r.UniformBuffer()].Data
	if g := math.Float32frombits(binary.LittleEndian.Uint32(data[64:])); g != 1.0 {
		t.Errorf("uploaded gamma = %v, want 1.0", g)
	}
}

func TestRenderResources_DestroyReleasesAll(t *testing.T) {
	dev := gputest.NewDevice()
	var r RenderResources
	if err := r.Init(dev); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	view := dev.NewExternalView()
	_, _ = r.GetOrCreateImageBindGroup(1, view)
	r.Destroy()
	dev.DestroyTextureView(view)

	if n := dev.LiveTotal(); n != 0 {
		t.Errorf("live resources = %d after Destroy, want 0", n)
	}
	if r.Initialized() {
		t.Error("Initialized() = true after Destroy")
	}
	// Destroy is idempotent.
	r.Destroy()
}
