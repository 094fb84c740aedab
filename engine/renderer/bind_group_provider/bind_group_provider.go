package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProvider owns the GPU objects behind one draw input: either a bind group with its uniform
// or storage buffers, or a mesh's vertex and index buffers. Providers start empty; the renderer
// creates the GPU objects and hands them over through the setters, and the owner frees them with
// Release.
type BindGroupProvider interface {
	// Label prefixes the labels of the GPU objects created for the provider.
	Label() string

	// Initialized reports whether a bind group or a vertex buffer has been set.
	Initialized() bool

	// Release frees every GPU object the provider holds and returns it to the empty state.
	Release()

	BindGroup() *wgpu.BindGroup
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at a binding index, nil when none was created.
	//
	// Parameters:
	//   - binding: the @binding index within the group
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(layout *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)
}

type groupResources struct {
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
	buffers   map[int]*wgpu.Buffer
}

type meshResources struct {
	vertex, index *wgpu.Buffer
	indexCount    int
}

type bindGroupProvider struct {
	label string
	group groupResources
	mesh  meshResources
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider returns an empty provider.
//
// Parameters:
//   - label: the debug label for GPU objects created on its behalf
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string) BindGroupProvider {
	return &bindGroupProvider{label: label}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Initialized() bool {
	return p.group.bindGroup != nil || p.mesh.vertex != nil
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup             { return p.group.bindGroup }
func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.group.layout }
func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer        { return p.group.buffers[binding] }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer             { return p.mesh.vertex }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer              { return p.mesh.index }
func (p *bindGroupProvider) IndexCount() int                        { return p.mesh.indexCount }

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.group.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(layout *wgpu.BindGroupLayout) {
	p.group.layout = layout
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.group.buffers == nil {
		p.group.buffers = make(map[int]*wgpu.Buffer)
	}
	p.group.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.mesh.vertex = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.mesh.index = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.mesh.indexCount = count
}

func (p *bindGroupProvider) Release() {
	// The bind group references the buffers and the layout, so it goes first.
	if p.group.bindGroup != nil {
		p.group.bindGroup.Release()
	}
	for _, buf := range p.group.buffers {
		if buf != nil {
			buf.Release()
		}
	}
	if p.group.layout != nil {
		p.group.layout.Release()
	}
	for _, buf := range []*wgpu.Buffer{p.mesh.vertex, p.mesh.index} {
		if buf != nil {
			buf.Release()
		}
	}
	p.group = groupResources{}
	p.mesh = meshResources{}
}
