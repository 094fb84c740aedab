package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
)

func TestRendererConfigDefaults(t *testing.T) {
	cfg := defaultRendererConfig()
	if cfg.msaa != MSAA4x {
		t.Errorf("msaa = %d, want 4", cfg.msaa)
	}
	if cfg.presentMode != PresentModeUncapped {
		t.Errorf("present mode = %v, want uncapped", cfg.presentMode)
	}
	if cfg.forceFallback {
		t.Error("fallback adapter forced by default")
	}
}

func TestBuilderOptionsApply(t *testing.T) {
	cfg := defaultRendererConfig()
	for _, opt := range []RendererBuilderOption{
		WithClearColor(common.ColorFromHex(0x222222)),
		WithPresentMode(PresentModeVSync),
		WithMSAA(MSAAOff),
		WithForceSoftwareRenderer(true),
	} {
		opt(&cfg)
	}

	if cfg.clearColor != common.ColorFromHex(0x222222) {
		t.Errorf("clear color = %v, want 0x222222", cfg.clearColor)
	}
	if cfg.presentMode != PresentModeVSync {
		t.Error("present mode not applied")
	}
	if cfg.msaa != MSAAOff {
		t.Error("MSAA count not applied")
	}
	if !cfg.forceFallback {
		t.Error("fallback adapter flag not applied")
	}
}
