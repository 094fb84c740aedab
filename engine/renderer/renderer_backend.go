package renderer

import (
	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType selects the GPU API behind a Renderer.
type RendererBackendType int

const (
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank. No tearing, frame rate capped at the refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately and may tear.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel of the main render pass. WebGPU guarantees
// MSAAOff and MSAA4x; the higher counts depend on the adapter.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
	MSAA8x  MSAASampleCount = 8
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the API-specific half of a Renderer. The Renderer keeps the pipeline cache and
// the backend owns the device, the surface and the frame in flight.
type RendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Surface() *wgpu.Surface

	// ConfigureSurface (re)configures the surface and recreates the MSAA and depth attachments at the
	// given size. A zero or negative size, as reported for minimized windows, is skipped.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: if an attachment could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode records the mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the main pass clears to, effective from the next frame.
	SetClearColor(c common.Color)

	// RegisterRenderPipeline creates the shader modules, layouts and GPU pipeline for p and stores the
	// result with p.SetRenderPipeline.
	//
	// Parameters:
	//   - p: a validated pipeline description
	//
	// Returns:
	//   - error: if the surface is not configured or any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new buffers held by provider.
	//
	// Parameters:
	//   - provider: receives the vertex buffer, index buffer and index count
	//   - vertexData: packed vertex bytes
	//   - indexData: little-endian uint32 indices
	//   - indexCount: number of indices in indexData
	//
	// Returns:
	//   - error: if a buffer could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the layout, one buffer per entry and the bind group for provider. Buffers
	// the provider already holds are reused.
	//
	// Parameters:
	//   - provider: receives the GPU objects
	//   - descriptor: the group's layout, normally from Pipeline.BindGroupLayoutDescriptors
	//   - bufferSizeOverrides: buffer sizes by binding index used instead of MinBindingSize, may be nil
	//
	// Returns:
	//   - error: if an entry is not a buffer binding or a GPU object could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues every write on the device queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the main render pass.
	//
	// Returns:
	//   - error: if a frame is already in flight, the surface is not configured or no texture is available
	BeginFrame() error

	// DrawCall records an indexed draw into the open pass. It does nothing outside a frame.
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame closes the pass and submits the recorded commands.
	EndFrame()

	// Present shows the submitted frame and releases the surface texture.
	Present()

	// Release frees the attachments, device, surface, adapter and instance.
	Release()
}
