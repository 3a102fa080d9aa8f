package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/gpucore"
)

// RenderResources holds the device objects shared by every frame: the
// sampler, the uniform buffer, both bind group layouts, the common bind
// group (group 0) and the per-texture image bind groups (group 1).
//
// The zero value is ready for Init.
type RenderResources struct {
	device gpucore.Device

	sampler       gpucore.SamplerID
	uniformBuffer gpucore.BufferID

	commonLayout gpucore.BindGroupLayoutID
	imageLayout  gpucore.BindGroupLayoutID
	commonGroup  gpucore.BindGroupID

	imageGroups map[uint64]gpucore.BindGroupID
}

// ResourceStats reports the state of the bind group cache.
type ResourceStats struct {
	Initialized     bool
	ImageBindGroups int
}

// Init creates all shared device objects. On failure everything created
// so far is released and the resources stay uninitialized.
func (r *RenderResources) Init(device gpucore.Device) (err error) {
	if r.device != nil {
		return ErrAlreadyInitialized
	}
	r.device = device
	defer func() {
		if err != nil {
			r.Destroy()
		}
	}()

	r.sampler, err = device.CreateSampler(&gpucore.SamplerDesc{
		Label:        "ui_sampler",
		AddressMode:  gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	r.uniformBuffer, err = device.CreateBuffer(&gpucore.BufferDesc{
		Label: "ui_uniforms",
		Size:  UniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: uniforms: %w", ErrBufferCreation, err)
	}

	r.commonLayout, err = device.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "ui_common_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gpucore.ShaderStageVertex | gpucore.ShaderStageFragment,
				Type:       gpucore.BindingTypeUniformBuffer,
			},
			{
				Binding:    1,
				Visibility: gpucore.ShaderStageFragment,
				Type:       gpucore.BindingTypeSampler,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create common layout: %w", err)
	}

	r.imageLayout, err = device.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "ui_image_layout",
		Entries: []gpucore.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gpucore.ShaderStageFragment,
				Type:       gpucore.BindingTypeSampledTexture,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create image layout: %w", err)
	}

	r.commonGroup, err = device.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "ui_common_bind",
		Layout: r.commonLayout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuffer, Offset: 0, Size: UniformsSize},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: common: %w", ErrBindGroupCreation, err)
	}

	r.imageGroups = make(map[uint64]gpucore.BindGroupID)
	slogger().Debug("ui render resources created")
	return nil
}

// Initialized reports whether Init succeeded and Destroy was not called.
func (r *RenderResources) Initialized() bool {
	return r.device != nil && r.commonGroup != gpucore.InvalidID
}

// Layouts returns the bind group layouts in group order.
func (r *RenderResources) Layouts() []gpucore.BindGroupLayoutID {
	return []gpucore.BindGroupLayoutID{r.commonLayout, r.imageLayout}
}

// CommonBindGroup returns the group 0 bind group.
func (r *RenderResources) CommonBindGroup() gpucore.BindGroupID { return r.commonGroup }

// UniformBuffer returns the uniform buffer bound at group 0 binding 0.
func (r *RenderResources) UniformBuffer() gpucore.BufferID { return r.uniformBuffer }

// UpdateUniforms uploads u into the uniform buffer with a single write.
func (r *RenderResources) UpdateUniforms(u *Uniforms) error {
	if !r.Initialized() {
		return ErrNotInitialized
	}
	r.device.WriteBuffer(r.uniformBuffer, 0, u.Bytes())
	return nil
}

// ImageBindGroup returns the cached image bind group for key.
func (r *RenderResources) ImageBindGroup(key uint64) (gpucore.BindGroupID, bool) {
	g, ok := r.imageGroups[key]
	return g, ok
}

// GetOrCreateImageBindGroup returns the cached image bind group for key,
// creating one for view on a cache miss. A hit never creates a new group.
func (r *RenderResources) GetOrCreateImageBindGroup(key uint64, view gpucore.TextureViewID) (gpucore.BindGroupID, error) {
	if !r.Initialized() {
		return gpucore.InvalidID, ErrNotInitialized
	}
	if g, ok := r.imageGroups[key]; ok {
		return g, nil
	}
	g, err := r.device.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:   fmt.Sprintf("ui_image_bind_%d", key),
		Layout:  r.imageLayout,
		Entries: []gpucore.BindGroupEntry{{Binding: 0, TextureView: view}},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: texture %d: %w", ErrBindGroupCreation, key, err)
	}
	r.imageGroups[key] = g
	return g, nil
}

// RemoveImageBindGroup drops and destroys the cached group for key.
// It reports whether a group was cached.
func (r *RenderResources) RemoveImageBindGroup(key uint64) bool {
	g, ok := r.imageGroups[key]
	if !ok {
		return false
	}
	delete(r.imageGroups, key)
	r.device.DestroyBindGroup(g)
	return true
}

// ClearImageBindGroups destroys every cached image bind group.
func (r *RenderResources) ClearImageBindGroups() {
	for k, g := range r.imageGroups {
		r.device.DestroyBindGroup(g)
		delete(r.imageGroups, k)
	}
}

// Stats returns a snapshot of the resource state.
func (r *RenderResources) Stats() ResourceStats {
	return ResourceStats{
		Initialized:     r.Initialized(),
		ImageBindGroups: len(r.imageGroups),
	}
}

// Destroy releases all device objects in reverse creation order.
// The resources may be initialized again afterwards.
func (r *RenderResources) Destroy() {
	if r.device == nil {
		return
	}
	r.ClearImageBindGroups()
	if r.commonGroup != gpucore.InvalidID {
		r.device.DestroyBindGroup(r.commonGroup)
	}
	if r.imageLayout != gpucore.InvalidID {
		r.device.DestroyBindGroupLayout(r.imageLayout)
	}
	if r.commonLayout != gpucore.InvalidID {
		r.device.DestroyBindGroupLayout(r.commonLayout)
	}
	if r.uniformBuffer != gpucore.InvalidID {
		r.device.DestroyBuffer(r.uniformBuffer)
	}
	if r.sampler != gpucore.InvalidID {
		r.device.DestroySampler(r.sampler)
	}
	*r = RenderResources{}
}
