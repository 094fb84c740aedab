package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/blang/semver"
)

var (
	errInvalidGLTFVersion  = errors.New("invalid glTF version: must be 2.0")
	errInvalidBufferURI    = errors.New("invalid buffer URI")
	errBufferSizeMismatch  = errors.New("buffer size mismatch")
	errAccessorOutOfBounds = errors.New("accessor reads past the end of its buffer")
	errDracoUnsupported    = errors.New(extensionDraco + " is not supported; re-export the asset without mesh compression")
)

// gltfAsset is a decoded glTF document with every buffer resolved to bytes.
type gltfAsset struct {
	doc     gltfDocument
	buffers [][]byte
}

// readAsset decodes a .gltf or .glb file. External buffers resolve relative to the file.
func readAsset(path string) (*gltfAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	glb := strings.EqualFold(filepath.Ext(path), ".glb") || isGLB(data)
	return decodeAsset(data, filepath.Dir(path), glb)
}

// decodeAsset decodes glTF JSON or a GLB container. dir is the base for external buffer URIs;
// "" resolves them against the working directory.
func decodeAsset(data []byte, dir string, glb bool) (*gltfAsset, error) {
	jsonChunk, binChunk := data, []byte(nil)
	if glb {
		var err error
		if jsonChunk, binChunk, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	a := &gltfAsset{}
	if err := json.Unmarshal(jsonChunk, &a.doc); err != nil {
		return nil, fmt.Errorf("decoding glTF JSON: %w", err)
	}
	if v, err := semver.ParseTolerant(a.doc.Asset.Version); err != nil || v.Major != 2 {
		return nil, fmt.Errorf("%w (got %q)", errInvalidGLTFVersion, a.doc.Asset.Version)
	}
	if slices.Contains(a.doc.ExtensionsRequired, extensionDraco) {
		return nil, errDracoUnsupported
	}

	a.buffers = make([][]byte, len(a.doc.Buffers))
	for i, buf := range a.doc.Buffers {
		data, err := resolveBuffer(buf, i, dir, binChunk)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		if len(data) < buf.ByteLength {
			return nil, fmt.Errorf("buffer %d holds %d of %d bytes: %w", i, len(data), buf.ByteLength, errBufferSizeMismatch)
		}
		a.buffers[i] = data
	}
	return a, nil
}

// resolveBuffer loads a buffer from a data URI, an external file, or, for the first buffer of a
// GLB, the BIN chunk.
func resolveBuffer(buf gltfBuffer, index int, dir string, binChunk []byte) ([]byte, error) {
	switch {
	case buf.URI == "" && index == 0 && binChunk != nil:
		return binChunk, nil
	case buf.URI == "":
		return nil, errors.New("no URI and no GLB binary chunk")
	case strings.HasPrefix(buf.URI, "data:"):
		return decodeDataURI(buf.URI)
	}

	data, err := os.ReadFile(filepath.Join(dir, buf.URI))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", buf.URI, err)
	}
	return data, nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("data URI %q is not base64: %w", header, errInvalidBufferURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URI: %w", err)
	}
	return data, nil
}

// accessorData returns an accessor and its elements packed back to back, with any bufferView
// stride removed.
func (a *gltfAsset) accessorData(index int) (*gltfAccessor, []byte, error) {
	if index < 0 || index >= len(a.doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor %d out of range", index)
	}
	acc := &a.doc.Accessors[index]
	switch {
	case acc.Count < 0:
		return nil, nil, fmt.Errorf("accessor %d has negative count %d", index, acc.Count)
	case acc.Sparse != nil:
		return nil, nil, fmt.Errorf("accessor %d: sparse accessors are not supported", index)
	case acc.BufferView == nil:
		return nil, nil, fmt.Errorf("accessor %d has no bufferView", index)
	case *acc.BufferView < 0 || *acc.BufferView >= len(a.doc.BufferViews):
		return nil, nil, fmt.Errorf("accessor %d: bufferView %d out of range", index, *acc.BufferView)
	}

	view := a.doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(a.buffers) {
		return nil, nil, fmt.Errorf("accessor %d: buffer %d out of range", index, view.Buffer)
	}
	src := a.buffers[view.Buffer]

	elem := acc.ComponentType.size() * acc.Type.components()
	if elem == 0 {
		return nil, nil, fmt.Errorf("accessor %d: unsupported %s of component type %d", index, acc.Type, acc.ComponentType)
	}
	stride := elem
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = *view.ByteStride
	}

	start := view.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && (start < 0 || start+(acc.Count-1)*stride+elem > len(src)) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errAccessorOutOfBounds)
	}

	out := make([]byte, 0, acc.Count*elem)
	for i := range acc.Count {
		off := start + i*stride
		out = append(out, src[off:off+elem]...)
	}
	return acc, out, nil
}

// vec3s reads a VEC3 FLOAT accessor.
func (a *gltfAsset) vec3s(index int) ([][3]float32, error) {
	acc, data, err := a.accessorData(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != elementVec3 || acc.ComponentType != componentFloat {
		return nil, fmt.Errorf("accessor %d is %s of component type %d, want VEC3 float", index, acc.Type, acc.ComponentType)
	}

	out := make([][3]float32, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("accessor %d: %w", index, err)
	}
	return out, nil
}

// indices reads a SCALAR accessor of unsigned 8, 16 or 32-bit indices.
func (a *gltfAsset) indices(index int) ([]uint32, error) {
	acc, data, err := a.accessorData(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != elementScalar {
		return nil, fmt.Errorf("index accessor %d is %s, want SCALAR", index, acc.Type)
	}

	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case componentUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i])
		}
	case componentUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case componentUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("index accessor %d has component type %d", index, acc.ComponentType)
	}
	return out, nil
}
