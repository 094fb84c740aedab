package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// BaseSource is the built-in hue-shift surface shader. It declares the camera uniform at group 0,
// the model uniform at group 1 and a position/normal vertex input.
//
//go:embed assets/base.wgsl
var BaseSource string

// ShaderType identifies the pipeline stage a shader feeds.
type ShaderType int

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

// visibility is the wgpu stage flag bind group entries from this stage carry.
func (t ShaderType) visibility() wgpu.ShaderStage {
	if t == ShaderTypeFragment {
		return wgpu.ShaderStageFragment
	}
	return wgpu.ShaderStageVertex
}

var errMissingEntryPoint = errors.New("shader has no entry point for its stage")

// Shader is a WGSL source reflected for one pipeline stage. The reflected layouts are what the
// renderer needs to build bind group layouts and vertex state without hand-written descriptors.
type Shader interface {
	// Key is the label used for the shader module and in error messages.
	Key() string

	// Source returns the WGSL source as given.
	Source() string

	// ShaderType returns the stage the shader was reflected for.
	ShaderType() ShaderType

	// EntryPoint returns the name of the @vertex or @fragment function for the stage.
	EntryPoint() string

	// Module returns the descriptor used to create the GPU shader module.
	Module() *wgpu.ShaderModuleDescriptor

	// BindGroupLayoutDescriptor returns the buffer bindings declared for a group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the group's entries sorted by binding, empty when the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every declared group keyed by @group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at a group and binding.
	//
	// Parameters:
	//   - group: the @group index
	//   - binding: the @binding index
	//
	// Returns:
	//   - string: the variable name, "" when there is no buffer at that slot
	BindGroupVarName(group, binding int) string

	// VertexLayout returns the vertex buffer layouts for one vertex input struct.
	//
	// Parameters:
	//   - key: the input struct's position among the vertex input structs, starting at 0
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the layouts, nil for an unknown key
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts returns the layouts of all vertex input structs. Fragment shaders have none.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout
}

type shader struct {
	key          string
	source       string
	stage        ShaderType
	entryPoint   string
	module       *wgpu.ShaderModuleDescriptor
	groups       map[int]wgpu.BindGroupLayoutDescriptor
	varNames     map[int]map[int]string
	vertexInputs map[int][]wgpu.VertexBufferLayout
}

var _ Shader = &shader{}

// NewShader reflects WGSL source for a pipeline stage.
//
// Parameters:
//   - key: the shader label
//   - shaderType: the stage the shader feeds
//   - source: WGSL source
//
// Returns:
//   - Shader: the reflected shader
//   - error: errMissingEntryPoint when the source declares no entry point for the stage
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	m := reflectWGSL(source)

	entry := m.entryPoint(shaderType)
	if entry == "" {
		return nil, fmt.Errorf("shader %s (%s): %w", key, shaderType, errMissingEntryPoint)
	}

	s := &shader{
		key:          key,
		source:       source,
		stage:        shaderType,
		entryPoint:   entry,
		vertexInputs: map[int][]wgpu.VertexBufferLayout{},
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		},
	}
	if shaderType == ShaderTypeVertex {
		s.vertexInputs = m.vertexLayouts()
	}
	s.groups, s.varNames = m.bindGroupLayouts(shaderType.visibility())
	return s, nil
}

// NewShaderFromPath reads a WGSL file and reflects it with NewShader.
func NewShaderFromPath(key string, shaderType ShaderType, path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: reading %q: %w", key, path, err)
	}
	return NewShader(key, shaderType, string(data))
}

func (s *shader) Key() string                          { return s.key }
func (s *shader) Source() string                       { return s.source }
func (s *shader) ShaderType() ShaderType               { return s.stage }
func (s *shader) EntryPoint() string                   { return s.entryPoint }
func (s *shader) Module() *wgpu.ShaderModuleDescriptor { return s.module }

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexInputs[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexInputs
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.groups[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.groups
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.varNames[group][binding]
}
