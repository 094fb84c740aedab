package camera

import (
	"encoding/binary"
)

// GPUCameraUniform mirrors the CameraUniform struct of the base shader: view_proj at offset 0,
// camera_position at 64 and time in the vec3 padding at 76. 80 bytes.
type GPUCameraUniform struct {
	ViewProj       [16]float32
	CameraPosition [3]float32
	Time           float32
}

// Size is the encoded size in bytes.
func (g *GPUCameraUniform) Size() int {
	return binary.Size(g)
}

// Marshal encodes the uniform little-endian for upload.
func (g *GPUCameraUniform) Marshal() []byte {
	// Fixed-size, so Append cannot fail.
	buf, _ := binary.Append(make([]byte, 0, 80), binary.LittleEndian, g)
	return buf
}
