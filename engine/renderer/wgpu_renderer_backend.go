package renderer

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	errFrameInFlight        = errors.New("previous frame surface not yet presented")
	errSurfaceNotConfigured = errors.New("surface not configured")
)

// attachment is a render target texture with its default view.
type attachment struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (a *attachment) release() {
	if a.view != nil {
		a.view.Release()
	}
	if a.texture != nil {
		a.texture.Release()
	}
	*a = attachment{}
}

// frame is the state between BeginFrame and Present.
type frame struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	surface *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *frame) active() bool {
	return f.surface != nil
}

func (f *frame) release() {
	if f.encoder != nil {
		f.encoder.Release()
	}
	if f.view != nil {
		f.view.Release()
	}
	if f.surface != nil {
		f.surface.Release()
	}
	*f = frame{}
}

type wgpuRendererBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	format      wgpu.TextureFormat
	configured  bool
	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	msaa  attachment
	depth attachment
	frame frame
}

var _ RendererBackend = &wgpuRendererBackend{}

// newWGPURendererBackend locks the calling goroutine to its OS thread. Surface and device calls have
// to stay on the thread that owns the window.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()

	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: max(sampleCount, MSAAOff),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "oxy-tabletop device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()
	return b, nil
}

func (b *wgpuRendererBackend) Device() *wgpu.Device   { return b.device }
func (b *wgpuRendererBackend) Queue() *wgpu.Queue     { return b.queue }
func (b *wgpuRendererBackend) Surface() *wgpu.Surface { return b.surface }

func (b *wgpuRendererBackend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		log.Printf("[Renderer] skipping surface configure for %dx%d", width, height)
		return nil
	}

	caps := b.surface.GetCapabilities(b.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.format = caps.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   caps.AlphaModes[0],
	})
	b.configured = true

	b.msaa.release()
	b.depth.release()

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	var err error
	if b.sampleCount > MSAAOff {
		if b.msaa, err = b.createAttachment("msaa color", b.format, size); err != nil {
			return err
		}
	}
	// The depth attachment's sample count has to match the color target.
	if b.depth, err = b.createAttachment("depth", pipeline.DepthFormat, size); err != nil {
		b.msaa.release()
		return err
	}
	return nil
}

func (b *wgpuRendererBackend) createAttachment(label string, format wgpu.TextureFormat, size wgpu.Extent3D) (attachment, error) {
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return attachment{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return attachment{texture: texture, view: view}, nil
}

func (b *wgpuRendererBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if mode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
		return
	}
	b.presentMode = wgpu.PresentModeImmediate
}

func (b *wgpuRendererBackend) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (b *wgpuRendererBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return errSurfaceNotConfigured
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return fmt.Errorf("shader %s: %w", vertexShader.Key(), err)
	}
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("shader %s: %w", fragmentShader.Key(), err)
	}

	layouts := p.BindGroupLayoutDescriptors()
	groupLayouts := make([]*wgpu.BindGroupLayout, pipeline.MaxGroup(layouts)+1)
	for g, desc := range layouts {
		if groupLayouts[g], err = b.device.CreateBindGroupLayout(&desc); err != nil {
			return fmt.Errorf("bind group layout %d: %w", g, err)
		}
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}

	var buffers []wgpu.VertexBufferLayout
	for i := range len(vertexShader.VertexLayouts()) {
		buffers = append(buffers, vertexShader.VertexLayout(i)...)
	}

	state := p.State()
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{state.ColorTarget(b.format)},
		},
		Primitive:    state.Primitive(),
		DepthStencil: state.DepthStencil(),
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertex, err := b.uploadBuffer(provider.Label()+" vertices", vertexData, wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	index, err := b.uploadBuffer(provider.Label()+" indices", indexData, wgpu.BufferUsageIndex)
	if err != nil {
		if vertex != nil {
			vertex.Release()
		}
		return err
	}

	provider.SetVertexBuffer(vertex)
	provider.SetIndexBuffer(index)
	provider.SetIndexCount(indexCount)
	return nil
}

// uploadBuffer creates a buffer sized to data and writes data into it. Empty data yields a nil buffer.
func (b *wgpuRendererBackend) uploadBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// bufferUsage is the usage a buffer needs to back a binding of the given type.
func bufferUsage(t wgpu.BufferBindingType) (wgpu.BufferUsage, bool) {
	switch t {
	case wgpu.BufferBindingTypeUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, true
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, true
	}
	return 0, false
}

func (b *wgpuRendererBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("%s layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, e := range descriptor.Entries {
		binding := int(e.Binding)
		usage, ok := bufferUsage(e.Buffer.Type)
		if !ok {
			return fmt.Errorf("%s binding %d is not a buffer binding", provider.Label(), binding)
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := e.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s binding %d", provider.Label(), binding),
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return fmt.Errorf("%s binding %d: %w", provider.Label(), binding, err)
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		})
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label(),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(group)
	return nil
}

func (b *wgpuRendererBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if buf := w.Provider.Buffer(w.Binding); buf != nil {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
		}
	}
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.active() {
		return errFrameInFlight
	}
	if !b.configured || b.depth.view == nil {
		return errSurfaceNotConfigured
	}

	surface, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	b.frame.surface = surface
	if b.frame.view, err = surface.CreateView(nil); err != nil {
		b.frame.release()
		return err
	}
	if b.frame.encoder, err = b.device.CreateCommandEncoder(nil); err != nil {
		b.frame.release()
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       b.frame.view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if b.msaa.view != nil {
		// Draw into the multisampled target and resolve into the surface.
		color.View = b.msaa.view
		color.ResolveTarget = b.frame.view
		color.StoreOp = wgpu.StoreOpDiscard
	}

	b.frame.pass = b.frame.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1,
		},
	})
	return nil
}

func (b *wgpuRendererBackend) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pass := b.frame.pass
	if pass == nil || meshProvider.VertexBuffer() == nil || meshProvider.IndexBuffer() == nil {
		return
	}

	pass.SetPipeline(p.RenderPipeline())
	for i, group := range bindGroups {
		pass.SetBindGroup(uint32(i), group.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.pass == nil {
		return
	}
	b.frame.pass.End()
	b.frame.pass = nil

	commands, err := b.frame.encoder.Finish(nil)
	if err != nil {
		log.Printf("[Renderer] failed to finish frame: %v", err)
		b.frame.release()
		return
	}
	b.queue.Submit(commands)
	commands.Release()

	b.frame.encoder.Release()
	b.frame.encoder = nil
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frame.active() {
		return
	}
	b.surface.Present()
	b.frame.release()
}

func (b *wgpuRendererBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame.release()
	b.msaa.release()
	b.depth.release()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.configured = false
}
