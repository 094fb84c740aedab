package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// DepthFormat is the depth attachment format every pipeline renders against.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// AlphaBlend is straight alpha blending over the existing color.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// State is the fixed-function configuration of a render pipeline. A nil Blend renders opaque.
type State struct {
	DepthTest  bool
	DepthWrite bool
	Blend      *wgpu.BlendState
	CullMode   wgpu.CullMode
	Topology   wgpu.PrimitiveTopology
	FrontFace  wgpu.FrontFace
	WriteMask  wgpu.ColorWriteMask
}

// DefaultState is opaque, depth tested and written, counter-clockwise triangles with no culling.
func DefaultState() State {
	return State{
		DepthTest:  true,
		DepthWrite: true,
		CullMode:   wgpu.CullModeNone,
		Topology:   wgpu.PrimitiveTopologyTriangleList,
		FrontFace:  wgpu.FrontFaceCCW,
		WriteMask:  wgpu.ColorWriteMaskAll,
	}
}

// ColorTarget returns the color target state for a surface format.
func (s State) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		Blend:     s.Blend,
		WriteMask: s.WriteMask,
	}
}

func (s State) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  s.Topology,
		FrontFace: s.FrontFace,
		CullMode:  s.CullMode,
	}
}

// DepthStencil returns the depth state against DepthFormat. With depth testing off every fragment
// passes but DepthWrite is still honored.
func (s State) DepthStencil() *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionLess
	if !s.DepthTest {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: s.DepthWrite,
		DepthCompare:      compare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}
