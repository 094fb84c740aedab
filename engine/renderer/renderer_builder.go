package renderer

import (
	"github.com/Carmen-Shannon/oxy-tabletop/common"
)

// RendererBuilderOption configures a Renderer in NewRenderer.
type RendererBuilderOption func(*rendererConfig)

// rendererConfig is applied once the backend exists.
type rendererConfig struct {
	presentMode   PresentMode
	msaa          MSAASampleCount
	clearColor    common.Color
	forceFallback bool
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{
		presentMode: PresentModeUncapped,
		msaa:        MSAA4x,
		clearColor:  common.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
	}
}

// WithClearColor sets the background the main pass clears to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: the option
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.clearColor = c
	}
}

// WithPresentMode sets how frames are delivered. The default is PresentModeUncapped.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: the option
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.presentMode = mode
	}
}

// WithMSAA sets the sample count of the main pass. The default is MSAA4x.
//
// Parameters:
//   - count: MSAAOff, MSAA4x, or an adapter-dependent higher count
//
// Returns:
//   - RendererBuilderOption: the option
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.msaa = count
	}
}

// WithForceSoftwareRenderer requests the fallback (CPU) adapter. It needs a software Vulkan driver
// such as lavapipe or SwiftShader on the host.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.forceFallback = force
	}
}
