package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var errUnknownPipeline = errors.New("render pipeline not registered")

// Surface is the window side of a renderer: something that can describe a native surface and knows
// its framebuffer size.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer draws indexed meshes through registered pipelines into a window surface. A frame is
// BeginFrame, any number of DrawCall, EndFrame, then Present.
type Renderer interface {
	// Pipeline returns a registered pipeline by key, nil when unknown.
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline for each description and caches it by key. Keys that are
	// already registered are skipped.
	//
	// Parameters:
	//   - pipelines: pipeline descriptions
	//
	// Returns:
	//   - error: the first creation failure; pipelines before it stay registered
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new framebuffer size. Failures are logged.
	Resize(width, height int)

	// InitMeshBuffers uploads a mesh into GPU buffers held by provider.
	//
	// Parameters:
	//   - provider: receives the buffers and the index count
	//   - vertexData: packed vertex bytes
	//   - indexData: little-endian uint32 indices
	//   - indexCount: number of indices
	//
	// Returns:
	//   - error: if a buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group described by descriptor and stores them on provider.
	//
	// Parameters:
	//   - provider: receives the GPU objects
	//   - descriptor: the group layout
	//   - bufferSizeOverrides: per-binding buffer sizes replacing MinBindingSize, may be nil
	//
	// Returns:
	//   - error: if the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues buffer uploads.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// SetClearColor sets the background color.
	SetClearColor(c common.Color)

	// SetPresentMode changes how frames are delivered. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// BeginFrame opens the frame.
	//
	// Returns:
	//   - error: if no surface texture could be acquired or a frame is already open
	BeginFrame() error

	// DrawCall records a draw of meshProvider with the bind groups set in group order.
	//
	// Parameters:
	//   - pipelineKey: a registered pipeline
	//   - meshProvider: holds the vertex and index buffers
	//   - instanceCount: instances to draw
	//   - bindGroups: one provider per bind group index
	//
	// Returns:
	//   - error: errUnknownPipeline when pipelineKey is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame submits the recorded frame.
	EndFrame()

	// Present displays the submitted frame.
	Present()

	// Release frees all GPU resources held by the backend.
	Release()
}

type renderer struct {
	mu        *sync.Mutex
	pipelines map[string]pipeline.Pipeline
	backend   RendererBackend
}

var _ Renderer = &renderer{}

// NewRenderer acquires an adapter and device for the backend and configures the surface at its
// current size.
//
// Parameters:
//   - backendType: the GPU API, only BackendTypeWGPU exists
//   - surface: the window to render into
//   - options: renderer options
//
// Returns:
//   - Renderer: the renderer
//   - error: if no adapter or device is available or the surface could not be configured
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	cfg := defaultRendererConfig()
	for _, opt := range options {
		opt(&cfg)
	}

	var (
		backend RendererBackend
		err     error
	)
	switch backendType {
	case BackendTypeWGPU:
		backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), cfg.forceFallback, cfg.msaa)
	default:
		err = fmt.Errorf("unknown backend type %d", backendType)
	}
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	backend.SetPresentMode(cfg.presentMode)
	backend.SetClearColor(cfg.clearColor)
	if err := backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		backend.Release()
		return nil, fmt.Errorf("renderer: %w", err)
	}

	return newRenderer(backend), nil
}

func newRenderer(backend RendererBackend) *renderer {
	return &renderer{
		mu:        &sync.Mutex{},
		pipelines: make(map[string]pipeline.Pipeline),
		backend:   backend,
	}
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		if _, ok := r.pipelines[p.PipelineKey()]; ok {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %s: %w", p.PipelineKey(), err)
		}
		r.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		log.Printf("[Renderer] resize to %dx%d failed: %v", width, height, err)
	}
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) == 0 {
		return
	}
	r.backend.WriteBuffers(writes)
}

func (r *renderer) SetClearColor(c common.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("%w: %q", errUnknownPipeline, pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
