package loader

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
)

// loaderBackend imports one model file format into CPU-side mesh data.
type loaderBackend interface {
	// Handles reports whether files with the lower-case extension belong to this backend.
	Handles(ext string) bool

	// Import reads and decodes a model file. External resources resolve relative to the file.
	//
	// Parameters:
	//   - path: the model file
	//
	// Returns:
	//   - *model.ImportedModel: the imported meshes
	//   - error: error if the file cannot be read or decoded
	Import(path string) (*model.ImportedModel, error)

	// ImportReader decodes a model from a stream.
	//
	// Parameters:
	//   - r: the model data
	//   - binary: true for the format's binary container (GLB for glTF)
	//
	// Returns:
	//   - *model.ImportedModel: the imported meshes
	//   - error: error if the data cannot be decoded
	ImportReader(r io.Reader, binary bool) (*model.ImportedModel, error)
}

// gltfBackend imports .gltf and .glb files.
type gltfBackend struct{}

var _ loaderBackend = gltfBackend{}

func (gltfBackend) Handles(ext string) bool {
	return ext == ".gltf" || ext == ".glb"
}

func (gltfBackend) Import(path string) (*model.ImportedModel, error) {
	asset, err := readAsset(path)
	if err != nil {
		return nil, err
	}
	return asset.importedModel(path)
}

func (gltfBackend) ImportReader(r io.Reader, binary bool) (*model.ImportedModel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading glTF stream: %w", err)
	}
	asset, err := decodeAsset(data, "", binary)
	if err != nil {
		return nil, err
	}
	return asset.importedModel("")
}
