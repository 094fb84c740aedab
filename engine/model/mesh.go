package model

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ImportedMesh is one mesh primitive in model space, with node transforms already applied.
type ImportedMesh struct {
	Name     string
	Vertices []GPUVertex
	Indices  []uint32

	// BoundingMin and BoundingMax are the corners of the axis-aligned box around Vertices.
	BoundingMin, BoundingMax [3]float32
}

// ImportedModel is what an importer produces from a model file, before NewModel merges it.
type ImportedModel struct {
	Name   string
	Meshes []ImportedMesh
}

// GPUVertex matches the VertexInput struct of the base shader: position at @location(0), normal
// at @location(1), packed into 24 bytes.
type GPUVertex struct {
	Position [3]float32
	Normal   [3]float32
}

const vertexSize = 24

// Size is the packed size in bytes.
func (g *GPUVertex) Size() int {
	return vertexSize
}

// Marshal packs the vertex little-endian.
func (g *GPUVertex) Marshal() []byte {
	buf, _ := binary.Append(make([]byte, 0, vertexSize), binary.LittleEndian, g)
	return buf
}

// MarshalVertices packs vertices back to back into one vertex buffer.
func MarshalVertices(vertices []GPUVertex) []byte {
	buf, _ := binary.Append(make([]byte, 0, len(vertices)*vertexSize), binary.LittleEndian, vertices)
	return buf
}

// MarshalIndices packs uint32 indices into a little-endian index buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, 0, len(indices)*4)
	for _, idx := range indices {
		buf = binary.LittleEndian.AppendUint32(buf, idx)
	}
	return buf
}

// GPUModelData matches the ModelUniform struct of the base shader: one mat4x4<f32>, 64 bytes.
type GPUModelData struct {
	Model [16]float32
}

// NewGPUModelData builds the model matrix T * Ry * Rx * Rz * S for a transform.
//
// Parameters:
//   - t: the node transform
//
// Returns:
//   - GPUModelData: the column-major model matrix
func NewGPUModelData(t common.Transform) GPUModelData {
	p, r, s := t.Position, t.Rotation, t.Scale
	m := mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(mgl32.HomogRotate3DY(r[1])).
		Mul4(mgl32.HomogRotate3DX(r[0])).
		Mul4(mgl32.HomogRotate3DZ(r[2])).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	return GPUModelData{Model: m}
}

func (g *GPUModelData) Size() int {
	return binary.Size(g)
}

// Marshal packs the matrix little-endian for upload.
func (g *GPUModelData) Marshal() []byte {
	buf, _ := binary.Append(make([]byte, 0, 64), binary.LittleEndian, g)
	return buf
}
