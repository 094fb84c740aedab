package model

import (
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
)

// Model is a loaded 3D model: every primitive of a file merged into one vertex and index buffer,
// plus the BindGroupProvider a Scene uploads those buffers into. A Model is immutable after NewModel.
type Model interface {
	Name() string

	// Meshes returns the primitives the model was merged from.
	Meshes() []ImportedMesh

	// MeshProvider returns the provider for the GPU mesh buffers. It stays uninitialized until a
	// Scene adds the model.
	MeshProvider() bind_group_provider.BindGroupProvider

	// VertexData returns the merged vertex buffer, nil for a model without meshes.
	VertexData() []byte

	// IndexData returns the merged uint32 index buffer, rebased onto the merged vertices.
	IndexData() []byte

	IndexCount() int
}

type model struct {
	name         string
	meshes       []ImportedMesh
	meshProvider bind_group_provider.BindGroupProvider

	vertexData []byte
	indexData  []byte
	indexCount int
}

var _ Model = &model{}

// NewModel creates a Model, merging the meshes given by the options.
//
// Parameters:
//   - options: ModelBuilderOption functions applied in order
//
// Returns:
//   - Model: the model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name + " Mesh")
	}
	if len(m.meshes) > 0 {
		m.merge()
	}
	return m
}

// merge concatenates the meshes, offsetting each mesh's indices by the vertices before it.
func (m *model) merge() {
	var (
		vertices []GPUVertex
		indices  []uint32
	)
	for _, mesh := range m.meshes {
		base := uint32(len(vertices))
		for _, idx := range mesh.Indices {
			indices = append(indices, base+idx)
		}
		vertices = append(vertices, mesh.Vertices...)
	}

	m.vertexData = MarshalVertices(vertices)
	m.indexData = MarshalIndices(indices)
	m.indexCount = len(indices)
}

func (m *model) Name() string                                        { return m.name }
func (m *model) Meshes() []ImportedMesh                              { return m.meshes }
func (m *model) MeshProvider() bind_group_provider.BindGroupProvider { return m.meshProvider }
func (m *model) VertexData() []byte                                  { return m.vertexData }
func (m *model) IndexData() []byte                                   { return m.indexData }
func (m *model) IndexCount() int                                     { return m.indexCount }
