package loader

// The subset of the glTF 2.0 schema the loader reads. Materials, textures, skins and animations
// are left to encoding/json to skip.
// https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html

type gltfDocument struct {
	Asset struct {
		Version   string `json:"version"`
		Generator string `json:"generator,omitempty"`
	} `json:"asset"`

	Scene       *int             `json:"scene,omitempty"`
	Scenes      []gltfScene      `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`

	ExtensionsUsed     []string `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

type gltfScene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// gltfNode carries either Matrix (column-major) or any of Translation, Rotation (x, y, z, w) and Scale.
type gltfNode struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type gltfAccessor struct {
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType componentType `json:"componentType"`
	Count         int           `json:"count"`
	Type          elementType   `json:"type"`
	Sparse        *struct {
		Count int `json:"count"`
	} `json:"sparse,omitempty"`
}

type gltfBufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

const (
	modeTriangles = 4

	extensionDraco = "KHR_draco_mesh_compression"
)

// componentType is an accessor's scalar encoding, as the GL enum value.
type componentType int

const (
	componentByte          componentType = 5120
	componentUnsignedByte  componentType = 5121
	componentShort         componentType = 5122
	componentUnsignedShort componentType = 5123
	componentUnsignedInt   componentType = 5125
	componentFloat         componentType = 5126
)

// size is the byte width of one component, 0 for an unknown type.
func (c componentType) size() int {
	switch c {
	case componentByte, componentUnsignedByte:
		return 1
	case componentShort, componentUnsignedShort:
		return 2
	case componentUnsignedInt, componentFloat:
		return 4
	}
	return 0
}

// elementType is an accessor's element shape ("SCALAR", "VEC3", "MAT4", ...).
type elementType string

const (
	elementScalar elementType = "SCALAR"
	elementVec3   elementType = "VEC3"
)

var elementComponents = map[elementType]int{
	"SCALAR": 1,
	"VEC2":   2,
	"VEC3":   3,
	"VEC4":   4,
	"MAT2":   4,
	"MAT3":   9,
	"MAT4":   16,
}

func (e elementType) components() int {
	return elementComponents[e]
}
