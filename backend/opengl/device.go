//go:build opengl

package opengl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/uirender/backend"
	"github.com/gogpu/uirender/gpucore"
)

// GLSL names the programs are wired by.
const (
	uniformBlockName = "Uniforms\x00"
	textureUniform   = "ui_texture\x00"
)

var (
	// ErrUnknownResource is returned when an ID does not name a live
	// resource of this device.
	ErrUnknownResource = errors.New("opengl: unknown resource")

	// ErrNoGLSL is returned when a shader module descriptor carries no
	// GLSL sources.
	ErrNoGLSL = errors.New("opengl: shader module has no GLSL sources")
)

type glBuffer struct {
	name   uint32
	target uint32
	size   uint64
}

type glTexture struct {
	name          uint32
	width, height int32
	format        texFormat
}

// glView is a texture view. GL has no view objects: a view is the texture
// itself, or the window framebuffer when texture is 0.
type glView struct {
	texture       uint32
	width, height int32
	fbo           uint32
	imported      bool
}

type glShader struct {
	vertex, fragment string
}

type glBindGroup struct {
	uniform       uint32
	uniformOffset uint64
	uniformSize   uint64
	sampler       uint32
	texture       uint32
}

type glPipeline struct {
	program uint32
	vao     uint32
	stride  int32
	attrs   []gpucore.VertexAttribute
	blend   *gputypes.BlendState
}

// Device implements gpucore.Device with OpenGL 3.3 core.
//
// Device is not safe for concurrent use; see the package documentation.
type Device struct {
	nextID uint64

	buffers          map[gpucore.BufferID]*glBuffer
	textures         map[gpucore.TextureID]*glTexture
	views            map[gpucore.TextureViewID]*glView
	samplers         map[gpucore.SamplerID]uint32
	shaderModules    map[gpucore.ShaderModuleID]*glShader
	bindGroupLayouts map[gpucore.BindGroupLayoutID][]gpucore.BindGroupLayoutEntry
	pipelineLayouts  map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID
	bindGroups       map[gpucore.BindGroupID]*glBindGroup
	pipelines        map[gpucore.RenderPipelineID]*glPipeline

	windowView gpucore.TextureViewID
}

// NewDevice returns a device for the GL context current on the calling
// thread. gl.Init must have been called.
func NewDevice() *Device {
	return &Device{
		nextID:           1,
		buffers:          make(map[gpucore.BufferID]*glBuffer),
		textures:         make(map[gpucore.TextureID]*glTexture),
		views:            make(map[gpucore.TextureViewID]*glView),
		samplers:         make(map[gpucore.SamplerID]uint32),
		shaderModules:    make(map[gpucore.ShaderModuleID]*glShader),
		bindGroupLayouts: make(map[gpucore.BindGroupLayoutID][]gpucore.BindGroupLayoutEntry),
		pipelineLayouts:  make(map[gpucore.PipelineLayoutID][]gpucore.BindGroupLayoutID),
		bindGroups:       make(map[gpucore.BindGroupID]*glBindGroup),
		pipelines:        make(map[gpucore.RenderPipelineID]*glPipeline),
	}
}

func (d *Device) newID() uint64 {
	id := d.nextID
	d.nextID++
	return id
}

// Name returns "opengl".
func (d *Device) Name() string { return backend.BackendOpenGL }

// WindowView returns a view of the default framebuffer with the given
// size in pixels. Call it again after the window is resized; the ID stays
// the same.
func (d *Device) WindowView(width, height int) gpucore.TextureViewID {
	if v, ok := d.views[d.windowView]; ok {
		v.width, v.height = int32(width), int32(height)
		return d.windowView
	}
	d.windowView = gpucore.TextureViewID(d.newID())
	d.views[d.windowView] = &glView{width: int32(width), height: int32(height), imported: true}
	return d.windowView
}

// ImportTexture makes a GL texture owned by the application usable as a
// sampled texture or render target. DestroyTextureView forgets it without
// deleting the texture.
func (d *Device) ImportTexture(name uint32, width, height int) gpucore.TextureViewID {
	id := gpucore.TextureViewID(d.newID())
	d.views[id] = &glView{texture: name, width: int32(width), height: int32(height), imported: true}
	return id
}

// === Shader Compilation ===

// CreateShaderModule compiles the GLSL pair to check it. Programs are
// linked per pipeline.
func (d *Device) CreateShaderModule(desc *gpucore.ShaderModuleDesc) (gpucore.ShaderModuleID, error) {
	if desc.GLSLVertex == "" || desc.GLSLFragment == "" {
		return gpucore.InvalidID, ErrNoGLSL
	}
	vs, err := makeShader(desc.GLSLVertex, gl.VERTEX_SHADER)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s vertex: %w", desc.Label, err)
	}
	gl.DeleteShader(vs)
	fs, err := makeShader(desc.GLSLFragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s fragment: %w", desc.Label, err)
	}
	gl.DeleteShader(fs)

	id := gpucore.ShaderModuleID(d.newID())
	d.shaderModules[id] = &glShader{vertex: desc.GLSLVertex, fragment: desc.GLSLFragment}
	return id, nil
}

// DestroyShaderModule forgets a shader module.
func (d *Device) DestroyShaderModule(id gpucore.ShaderModuleID) {
	delete(d.shaderModules, id)
}

// === Buffer Management ===

// CreateBuffer creates a GL buffer object with DYNAMIC_DRAW storage.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if desc.Size == 0 {
		return gpucore.InvalidID, fmt.Errorf("opengl: buffer %s has zero size", desc.Label)
	}
	target := uint32(gl.ARRAY_BUFFER)
	switch {
	case desc.Usage&gputypes.BufferUsageIndex != 0:
		target = gl.ELEMENT_ARRAY_BUFFER
	case desc.Usage&gputypes.BufferUsageUniform != 0:
		target = gl.UNIFORM_BUFFER
	}

	var name uint32
	gl.GenBuffers(1, &name)
	if name == 0 {
		return gpucore.InvalidID, fmt.Errorf("opengl: glGenBuffers failed for %s", desc.Label)
	}
	// Element buffers bind to the current VAO; use ARRAY_BUFFER to size
	// the storage without touching vertex array state.
	gl.BindBuffer(gl.ARRAY_BUFFER, name)
	gl.BufferData(gl.ARRAY_BUFFER, int(desc.Size), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := glError(); err != nil {
		gl.DeleteBuffers(1, &name)
		return gpucore.InvalidID, fmt.Errorf("opengl: buffer %s: %w", desc.Label, err)
	}

	id := gpucore.BufferID(d.newID())
	d.buffers[id] = &glBuffer{name: name, target: target, size: desc.Size}
	return id, nil
}

// DestroyBuffer deletes a buffer.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	if b, ok := d.buffers[id]; ok {
		gl.DeleteBuffers(1, &b.name)
		delete(d.buffers, id)
	}
}

// WriteBuffer uploads data with glBufferSubData.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	b, ok := d.buffers[id]
	if !ok || len(data) == 0 || offset+uint64(len(data)) > b.size {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.name)
	gl.BufferSubData(gl.ARRAY_BUFFER, int(offset), len(data), gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// === Texture Management ===

// CreateTexture allocates a 2D texture with one level.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return gpucore.InvalidID, fmt.Errorf("opengl: texture %s: dimensions must be positive", desc.Label)
	}
	f, err := convertTextureFormat(desc.Format)
	if err != nil {
		return gpucore.InvalidID, err
	}

	var name uint32
	gl.GenTextures(1, &name)
	gl.BindTexture(gl.TEXTURE_2D, name)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, int32(desc.Width), int32(desc.Height), 0, f.format, f.xtype, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError(); err != nil {
		gl.DeleteTextures(1, &name)
		return gpucore.InvalidID, fmt.Errorf("opengl: texture %s: %w", desc.Label, err)
	}

	id := gpucore.TextureID(d.newID())
	d.textures[id] = &glTexture{name: name, width: int32(desc.Width), height: int32(desc.Height), format: f}
	return id, nil
}

// DestroyTexture deletes a texture.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	if t, ok := d.textures[id]; ok {
		gl.DeleteTextures(1, &t.name)
		delete(d.textures, id)
	}
}

// WriteTexture replaces the full contents of a texture.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("texture %d: %w", id, ErrUnknownResource)
	}
	if want := int(t.width) * int(t.height) * 4; len(data) != want {
		return fmt.Errorf("opengl: texture %d: got %d bytes, want %d", id, len(data), want)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.name)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, t.width, t.height, t.format.format, t.format.xtype, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glError()
}

// WriteTextureRegion uploads a rectangle with glTexSubImage2D.
func (d *Device) WriteTextureRegion(id gpucore.TextureID, x, y, width, height uint32, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("texture %d: %w", id, ErrUnknownResource)
	}
	if width == 0 || height == 0 || int64(x+width) > int64(t.width) || int64(y+height) > int64(t.height) {
		return fmt.Errorf("opengl: texture %d: region %dx%d at (%d,%d) outside %dx%d", id, width, height, x, y, t.width, t.height)
	}
	if want := int(width) * int(height) * 4; len(data) != want {
		return fmt.Errorf("opengl: texture %d: got %d bytes, want %d", id, len(data), want)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.name)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(width), int32(height), t.format.format, t.format.xtype, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glError()
}

// CreateTextureView returns a view of the whole texture.
func (d *Device) CreateTextureView(texture gpucore.TextureID) (gpucore.TextureViewID, error) {
	t, ok := d.textures[texture]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("texture %d: %w", texture, ErrUnknownResource)
	}
	id := gpucore.TextureViewID(d.newID())
	d.views[id] = &glView{texture: t.name, width: t.width, height: t.height}
	return id, nil
}

// DestroyTextureView releases the view's framebuffer object, if any.
func (d *Device) DestroyTextureView(id gpucore.TextureViewID) {
	v, ok := d.views[id]
	if !ok {
		return
	}
	if v.fbo != 0 {
		gl.DeleteFramebuffers(1, &v.fbo)
	}
	delete(d.views, id)
	if id == d.windowView {
		d.windowView = gpucore.InvalidID
	}
}

// CreateSampler creates a GL sampler object.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	var name uint32
	gl.GenSamplers(1, &name)
	if name == 0 {
		return gpucore.InvalidID, fmt.Errorf("opengl: glGenSamplers failed for %s", desc.Label)
	}
	wrap := convertAddressMode(desc.AddressMode)
	gl.SamplerParameteri(name, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(name, gl.TEXTURE_WRAP_T, wrap)
	gl.SamplerParameteri(name, gl.TEXTURE_WRAP_R, wrap)
	gl.SamplerParameteri(name, gl.TEXTURE_MAG_FILTER, convertFilter(desc.MagFilter))
	gl.SamplerParameteri(name, gl.TEXTURE_MIN_FILTER, convertFilter(desc.MinFilter))

	id := gpucore.SamplerID(d.newID())
	d.samplers[id] = name
	return id, nil
}

// DestroySampler deletes a sampler.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	if name, ok := d.samplers[id]; ok {
		gl.DeleteSamplers(1, &name)
		delete(d.samplers, id)
	}
}

// === Pipeline Management ===

// CreateBindGroupLayout records the layout entries.
func (d *Device) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	id := gpucore.BindGroupLayoutID(d.newID())
	d.bindGroupLayouts[id] = append([]gpucore.BindGroupLayoutEntry(nil), desc.Entries...)
	return id, nil
}

// DestroyBindGroupLayout forgets a bind group layout.
func (d *Device) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	delete(d.bindGroupLayouts, id)
}

// CreatePipelineLayout records the group layouts.
func (d *Device) CreatePipelineLayout(label string, layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	for _, l := range layouts {
		if _, ok := d.bindGroupLayouts[l]; !ok {
			return gpucore.InvalidID, fmt.Errorf("%s: layout %d: %w", label, l, ErrUnknownResource)
		}
	}
	id := gpucore.PipelineLayoutID(d.newID())
	d.pipelineLayouts[id] = append([]gpucore.BindGroupLayoutID(nil), layouts...)
	return id, nil
}

// DestroyPipelineLayout forgets a pipeline layout.
func (d *Device) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {
	delete(d.pipelineLayouts, id)
}

// CreateBindGroup resolves the entries to GL object names.
func (d *Device) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if _, ok := d.bindGroupLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("%s: layout %d: %w", desc.Label, desc.Layout, ErrUnknownResource)
	}
	g := &glBindGroup{}
	for _, e := range desc.Entries {
		switch {
		case e.Buffer != gpucore.InvalidID:
			b, ok := d.buffers[e.Buffer]
			if !ok {
				return gpucore.InvalidID, fmt.Errorf("%s: buffer %d: %w", desc.Label, e.Buffer, ErrUnknownResource)
			}
			g.uniform, g.uniformOffset, g.uniformSize = b.name, e.Offset, e.Size
			if g.uniformSize == 0 {
				g.uniformSize = b.size - e.Offset
			}
		case e.Sampler != gpucore.InvalidID:
			s, ok := d.samplers[e.Sampler]
			if !ok {
				return gpucore.InvalidID, fmt.Errorf("%s: sampler %d: %w", desc.Label, e.Sampler, ErrUnknownResource)
			}
			g.sampler = s
		case e.TextureView != gpucore.InvalidID:
			v, ok := d.views[e.TextureView]
			if !ok || v.texture == 0 {
				return gpucore.InvalidID, fmt.Errorf("%s: view %d: %w", desc.Label, e.TextureView, ErrUnknownResource)
			}
			g.texture = v.texture
		default:
			return gpucore.InvalidID, fmt.Errorf("%s: binding %d has no resource", desc.Label, e.Binding)
		}
	}
	id := gpucore.BindGroupID(d.newID())
	d.bindGroups[id] = g
	return id, nil
}

// DestroyBindGroup forgets a bind group.
func (d *Device) DestroyBindGroup(id gpucore.BindGroupID) {
	delete(d.bindGroups, id)
}

// CreateRenderPipeline links a program and builds its vertex array.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if _, ok := d.pipelineLayouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("%s: layout %d: %w", desc.Label, desc.Layout, ErrUnknownResource)
	}
	sh, ok := d.shaderModules[desc.Module]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%s: module %d: %w", desc.Label, desc.Module, ErrUnknownResource)
	}
	if desc.SampleCount > 1 {
		return gpucore.InvalidID, fmt.Errorf("opengl: %s: multisampled targets are not supported", desc.Label)
	}
	for _, a := range desc.Attributes {
		if _, err := convertVertexFormat(a.Format); err != nil {
			return gpucore.InvalidID, err
		}
	}

	program, err := makeProgram(sh.vertex, sh.fragment)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: %w", desc.Label, err)
	}
	if idx := gl.GetUniformBlockIndex(program, gl.Str(uniformBlockName)); idx != gl.INVALID_INDEX {
		gl.UniformBlockBinding(program, idx, 0)
	}
	if loc := gl.GetUniformLocation(program, gl.Str(textureUniform)); loc >= 0 {
		gl.UseProgram(program)
		gl.Uniform1i(loc, 0)
		gl.UseProgram(0)
	}

	p := &glPipeline{
		program: program,
		stride:  int32(desc.VertexStride),
		attrs:   append([]gpucore.VertexAttribute(nil), desc.Attributes...),
	}
	if desc.Blend != nil {
		blend := *desc.Blend
		p.blend = &blend
	}
	gl.GenVertexArrays(1, &p.vao)

	id := gpucore.RenderPipelineID(d.newID())
	d.pipelines[id] = p
	return id, nil
}

// DestroyRenderPipeline deletes the program and vertex array.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	p, ok := d.pipelines[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteProgram(p.program)
	delete(d.pipelines, id)
}

// === Command Recording and Execution ===

// BeginRenderPass binds the target framebuffer and applies the load op.
// GL executes immediately; the pass only tracks bound state.
func (d *Device) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	v, ok := d.views[desc.ColorView]
	if !ok {
		return nil, fmt.Errorf("%s: color view %d: %w", desc.Label, desc.ColorView, ErrUnknownResource)
	}
	if desc.ResolveView != gpucore.InvalidID || desc.DepthStencilView != gpucore.InvalidID {
		return nil, fmt.Errorf("opengl: %s: resolve and depth-stencil attachments are not supported", desc.Label)
	}
	if err := d.bindTarget(v); err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Label, err)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.STENCIL_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ColorMask(true, true, true, true)
	if desc.LoadOp == gputypes.LoadOpClear {
		c := desc.ClearColor
		gl.ClearColor(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	gl.Viewport(0, 0, v.width, v.height)
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(0, 0, v.width, v.height)

	return &renderPass{device: d, targetHeight: v.height}, nil
}

// bindTarget binds framebuffer 0 for the window view, or a framebuffer
// object with the view's texture attached.
func (d *Device) bindTarget(v *glView) error {
	if v.texture == 0 {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return nil
	}
	if v.fbo == 0 {
		gl.GenFramebuffers(1, &v.fbo)
		gl.BindFramebuffer(gl.FRAMEBUFFER, v.fbo)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, v.texture, 0)
		if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			gl.DeleteFramebuffers(1, &v.fbo)
			v.fbo = 0
			return fmt.Errorf("opengl: framebuffer incomplete: 0x%X", status)
		}
		return nil
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, v.fbo)
	return nil
}

// Submit flushes the GL command stream.
func (d *Device) Submit() error {
	gl.Flush()
	return glError()
}

// WaitIdle blocks until GL has finished all commands.
func (d *Device) WaitIdle() {
	gl.Finish()
}

// Destroy deletes every GL object created through the device.
func (d *Device) Destroy() {
	for id := range d.pipelines {
		d.DestroyRenderPipeline(id)
	}
	for id := range d.views {
		d.DestroyTextureView(id)
	}
	for id := range d.textures {
		d.DestroyTexture(id)
	}
	for id := range d.samplers {
		d.DestroySampler(id)
	}
	for id := range d.buffers {
		d.DestroyBuffer(id)
	}
	clear(d.shaderModules)
	clear(d.bindGroupLayouts)
	clear(d.pipelineLayouts)
	clear(d.bindGroups)
}

// --- Shader utilities ---

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", strings.TrimRight(log, "\x00"))
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func glError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%X", code)
	}
	return nil
}

// ptrOffset converts a byte offset into a GL pointer argument.
func ptrOffset(off uint64) unsafe.Pointer {
	return gl.PtrOffset(int(off))
}

// Compile-time interface check.
var _ gpucore.Device = (*Device)(nil)
