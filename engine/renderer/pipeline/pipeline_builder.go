package pipeline

import (
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage.
//
// Parameters:
//   - s: a shader reflected for shader.ShaderTypeVertex
//
// Returns:
//   - PipelineBuilderOption: the option
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage.
//
// Parameters:
//   - s: a shader reflected for shader.ShaderTypeFragment
//
// Returns:
//   - PipelineBuilderOption: the option
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithDepth sets depth testing and depth writing.
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = test
		p.state.DepthWrite = write
	}
}

// WithBlendState enables blending with the given state. A nil state renders opaque.
func WithBlendState(blend *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Blend = blend
	}
}

// WithAlphaBlending enables AlphaBlend.
func WithAlphaBlending() PipelineBuilderOption {
	blend := AlphaBlend
	return WithBlendState(&blend)
}

func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.CullMode = mode
	}
}

func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Topology = topology
	}
}

func WithFrontFace(face wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.FrontFace = face
	}
}

func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.WriteMask = mask
	}
}
