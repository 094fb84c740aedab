package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
)

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Default()
	if cfg.Variant != want.Variant || cfg.Window != want.Window {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != DefaultModel {
		t.Errorf("models = %v, want [%s]", cfg.Models, DefaultModel)
	}
}

func TestParseDocument(t *testing.T) {
	doc := `
variant: Title
window:
  width: 800
  height: 600
  title: title screen
models:
  - meshes/a.glb
  - meshes/b.gltf
camera:
  world_size: 20
  z_positive_scale: 0.5
  max_zoom: 3
  fov_scaling: true
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CameraVariant() != camera.VariantTitle {
		t.Errorf("variant = %q, want title", cfg.Variant)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 || cfg.Window.Title != "title screen" {
		t.Errorf("window = %+v", cfg.Window)
	}
	if len(cfg.Models) != 2 || cfg.Models[1] != "meshes/b.gltf" {
		t.Errorf("models = %v", cfg.Models)
	}
	if cfg.Camera.WorldSize == nil || *cfg.Camera.WorldSize != 20 {
		t.Errorf("world size override = %v, want 20", cfg.Camera.WorldSize)
	}
	if cfg.Camera.MinZoom != nil {
		t.Errorf("min zoom = %v, want unset", *cfg.Camera.MinZoom)
	}
}

func TestParseBlankTitleFallsBack(t *testing.T) {
	cfg, err := Parse([]byte("window:\n  title: \"  \"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != Default().Window.Title {
		t.Errorf("title = %q, want %q", cfg.Window.Title, Default().Window.Title)
	}
}

func TestValidate(t *testing.T) {
	f := func(v float32) *float32 { return &v }

	tests := []struct {
		name string
		edit func(c *SceneConfig)
		want error
	}{
		{"defaults", func(c *SceneConfig) {}, nil},
		{"unknown variant", func(c *SceneConfig) { c.Variant = "orbit" }, errUnknownVariant},
		{"zero width", func(c *SceneConfig) { c.Window.Width = 0 }, errInvalidWindow},
		{"negative height", func(c *SceneConfig) { c.Window.Height = -1 }, errInvalidWindow},
		{"inverted zoom", func(c *SceneConfig) { c.Camera.MinZoom, c.Camera.MaxZoom = f(2), f(1) }, errInvalidZoom},
		{"min above default max", func(c *SceneConfig) { c.Camera.MinZoom = f(2.5) }, errInvalidZoom},
		{"zero min zoom", func(c *SceneConfig) { c.Camera.MinZoom = f(0) }, errInvalidZoom},
		{"zero world size", func(c *SceneConfig) { c.Camera.WorldSize = f(0) }, errNonPositiveValue},
		{"negative pan speed", func(c *SceneConfig) { c.Camera.PanSpeed = f(-1) }, errNonPositiveValue},
		{"negative buffer", func(c *SceneConfig) { c.Camera.ReturnBuffer = f(-0.5) }, errNegativeValue},
		{"zero delay", func(c *SceneConfig) { c.Camera.ReturnDelay = f(0) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("window: [")); err == nil {
		t.Error("expected a parse error")
	}
	if _, err := Parse([]byte("variant: sideways")); !errors.Is(err, errUnknownVariant) {
		t.Errorf("err = %v, want unknown variant", err)
	}
}

func TestCameraOptionsApplyOverrides(t *testing.T) {
	cfg, err := Parse([]byte("variant: tabletop\ncamera:\n  world_size: 20\n  z_positive_scale: 0.5\n  min_zoom: 1\n"))
	if err != nil {
		t.Fatal(err)
	}

	ctrl := camera.NewCameraController(cfg.CameraOptions()...)

	minX, maxX, minZ, maxZ := ctrl.Bounds()
	if minX != -20 || maxX != 20 || minZ != -20 || maxZ != 10 {
		t.Errorf("bounds = (%v, %v, %v, %v), want (-20, 20, -20, 10)", minX, maxX, minZ, maxZ)
	}

	for range 20 {
		ctrl.HandleWheel(1)
	}
	if got := ctrl.Zoom(); got != 1 {
		t.Errorf("zoom after zooming out = %v, want min 1", got)
	}
}

func TestCameraOptionsVariantOnly(t *testing.T) {
	cfg := Default()
	cfg.Variant = string(camera.VariantTitle)

	ctrl := camera.NewCameraController(cfg.CameraOptions()...)
	_, _, _, maxZ := ctrl.Bounds()
	if maxZ != 15 {
		t.Errorf("title maxZ = %v, want symmetric 15", maxZ)
	}
}

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("variant: title\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, from, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if from != path || cfg.CameraVariant() != camera.VariantTitle {
		t.Errorf("Resolve = %+v from %q", cfg, from)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
	if _, _, err := Resolve(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Resolve of an explicit missing file should fail")
	}
}

func TestWatchReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte("variant: title\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("variant: tabletop\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != w.Path() {
			t.Errorf("event for %q, want %q", got, w.Path())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after rewriting the config")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
