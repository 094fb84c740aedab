package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var errMissingShader = errors.New("render pipeline requires a vertex and a fragment shader")

// Pipeline pairs a vertex and a fragment shader with the fixed-function State they are drawn with.
// The GPU object behind it is created when a renderer registers the pipeline.
type Pipeline interface {
	// PipelineKey is the label of the pipeline and its layout.
	PipelineKey() string

	// Shader returns the shader for a stage, nil when the stage is not set.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the stage's shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Validate reports errMissingShader when either stage is missing.
	//
	// Returns:
	//   - error: nil when the pipeline can be registered
	Validate() error

	// BindGroupLayoutDescriptors merges the bind groups of both stages by group index. A binding used by
	// both stages is visible to both. Bind groups drawn with this pipeline must be created from these
	// descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors, empty when a stage is missing
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// State returns the fixed-function configuration.
	State() State

	// RenderPipeline returns the registered GPU pipeline, nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline is called by the renderer once the GPU pipeline exists.
	SetRenderPipeline(rp *wgpu.RenderPipeline)
}

type pipeline struct {
	pipelineKey                  string
	vertexShader, fragmentShader shader.Shader
	state                        State
	renderPipeline               *wgpu.RenderPipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline describes a render pipeline starting from DefaultState.
//
// Parameters:
//   - pipelineKey: the pipeline label
//   - opts: options applied in order
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey: pipelineKey,
		state:       DefaultState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	if shaderType == shader.ShaderTypeFragment {
		return p.fragmentShader
	}
	if shaderType == shader.ShaderTypeVertex {
		return p.vertexShader
	}
	return nil
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return fmt.Errorf("pipeline %s: %w", p.pipelineKey, errMissingShader)
	}
	return nil
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	if p.Validate() != nil {
		return map[int]wgpu.BindGroupLayoutDescriptor{}
	}
	return mergeBindGroupLayouts(p.vertexShader.BindGroupLayoutDescriptors(), p.fragmentShader.BindGroupLayoutDescriptors())
}

func (p *pipeline) State() State {
	return p.state
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
