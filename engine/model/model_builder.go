package model

import (
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
)

// ModelBuilderOption configures a Model in NewModel.
type ModelBuilderOption func(*model)

func WithName(name string) ModelBuilderOption {
	return func(m *model) { m.name = name }
}

// WithMeshes sets the primitives NewModel merges into one vertex and index buffer.
func WithMeshes(meshes []ImportedMesh) ModelBuilderOption {
	return func(m *model) { m.meshes = meshes }
}

// WithImportedModel takes the meshes of an importer result, and its name unless WithName already
// set one. A nil result is ignored.
//
// Parameters:
//   - imported: the importer output
//
// Returns:
//   - ModelBuilderOption: the option
func WithImportedModel(imported *ImportedModel) ModelBuilderOption {
	return func(m *model) {
		if imported == nil {
			return
		}
		if m.name == "" {
			m.name = imported.Name
		}
		m.meshes = imported.Meshes
	}
}

// WithMeshProvider sets the provider the scene uploads the mesh buffers into. NewModel creates
// one labelled "<name> Mesh" otherwise.
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) { m.meshProvider = provider }
}
