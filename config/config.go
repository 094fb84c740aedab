package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"gopkg.in/yaml.v3"
)

// DefaultModel is the mesh loaded when a configuration names no models.
const DefaultModel = "meshes/SM_WIPText.glb"

var (
	errUnknownVariant   = errors.New("unknown camera variant")
	errInvalidWindow    = errors.New("window size must be positive")
	errInvalidZoom      = errors.New("zoom bounds must be positive and ordered")
	errNonPositiveValue = errors.New("camera override must be positive")
	errNegativeValue    = errors.New("camera override must not be negative")
)

// SceneConfig is the YAML document describing one run of the tabletop executable.
type SceneConfig struct {
	Variant string          `yaml:"variant"`
	Window  WindowConfig    `yaml:"window"`
	Models  []string        `yaml:"models"`
	Camera  CameraOverrides `yaml:"camera"`
}

// WindowConfig holds the initial window geometry and title.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// CameraOverrides replaces individual variant constants. Nil fields keep the variant's value.
type CameraOverrides struct {
	WorldSize      *float32 `yaml:"world_size"`
	ZPositiveScale *float32 `yaml:"z_positive_scale"`
	ReturnBuffer   *float32 `yaml:"return_buffer"`
	ReturnDelay    *float32 `yaml:"return_delay"`
	ReturnSpeed    *float32 `yaml:"return_speed"`
	PanSpeed       *float32 `yaml:"pan_speed"`
	CameraSpeed    *float32 `yaml:"camera_speed"`
	ZoomSpeed      *float32 `yaml:"zoom_speed"`
	MinZoom        *float32 `yaml:"min_zoom"`
	MaxZoom        *float32 `yaml:"max_zoom"`
	FovScaling     *bool    `yaml:"fov_scaling"`
}

// Default returns the built-in configuration: the tabletop variant in a 1280x720 window showing DefaultModel.
//
// Returns:
//   - SceneConfig: the default configuration
func Default() SceneConfig {
	return SceneConfig{
		Variant: string(camera.VariantTabletop),
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "oxy tabletop",
		},
		Models: []string{DefaultModel},
	}
}

// Load reads a YAML configuration from path. Fields absent from the file keep their Default values.
// The result is validated before it is returned.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - SceneConfig: the parsed configuration
//   - error: if the file cannot be read, parsed or validated
func Load(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document on top of Default.
//
// Parameters:
//   - data: the YAML bytes
//
// Returns:
//   - SceneConfig: the parsed configuration
//   - error: if the document is malformed or invalid
func Parse(data []byte) (SceneConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SceneConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.Variant = strings.ToLower(strings.TrimSpace(cfg.Variant))
	cfg.Window.Title = common.Coalesce(strings.TrimSpace(cfg.Window.Title), Default().Window.Title)
	if len(cfg.Models) == 0 {
		cfg.Models = []string{DefaultModel}
	}
	if err := cfg.Validate(); err != nil {
		return SceneConfig{}, err
	}
	return cfg, nil
}

// Validate rejects unknown variants, non-positive window sizes, inverted zoom bounds and out-of-range overrides.
//
// Returns:
//   - error: the first problem found, or nil
func (c SceneConfig) Validate() error {
	if _, ok := camera.VariantOptions(camera.Variant(c.Variant)); !ok {
		return fmt.Errorf("%w: %q", errUnknownVariant, c.Variant)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", errInvalidWindow, c.Window.Width, c.Window.Height)
	}

	o := c.Camera
	positive := map[string]*float32{
		"world_size":       o.WorldSize,
		"z_positive_scale": o.ZPositiveScale,
		"return_speed":     o.ReturnSpeed,
		"pan_speed":        o.PanSpeed,
		"camera_speed":     o.CameraSpeed,
		"zoom_speed":       o.ZoomSpeed,
	}
	for name, v := range positive {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%w: %s = %v", errNonPositiveValue, name, *v)
		}
	}
	for name, v := range map[string]*float32{"return_buffer": o.ReturnBuffer, "return_delay": o.ReturnDelay} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s = %v", errNegativeValue, name, *v)
		}
	}

	minZoom, maxZoom := c.zoomBounds()
	if minZoom <= 0 || maxZoom < minZoom {
		return fmt.Errorf("%w: [%v, %v]", errInvalidZoom, minZoom, maxZoom)
	}
	return nil
}

// zoomBounds returns the configured zoom range, filling unset ends with the controller defaults.
func (c SceneConfig) zoomBounds() (minZoom, maxZoom float32) {
	minZoom, maxZoom = camera.DefaultMinZoom, camera.DefaultMaxZoom
	if c.Camera.MinZoom != nil {
		minZoom = *c.Camera.MinZoom
	}
	if c.Camera.MaxZoom != nil {
		maxZoom = *c.Camera.MaxZoom
	}
	return
}

// CameraVariant returns the configured variant.
//
// Returns:
//   - camera.Variant: the variant name
func (c SceneConfig) CameraVariant() camera.Variant {
	return camera.Variant(c.Variant)
}

// CameraOptions returns the variant preset followed by every override, ready for NewCameraController or Apply.
//
// Returns:
//   - []camera.CameraControllerOption: the controller options
func (c SceneConfig) CameraOptions() []camera.CameraControllerOption {
	options, _ := camera.VariantOptions(c.CameraVariant())
	o := c.Camera

	set := func(v *float32, opt func(float32) camera.CameraControllerOption) {
		if v != nil {
			options = append(options, opt(*v))
		}
	}
	set(o.WorldSize, camera.WithWorldSize)
	set(o.ZPositiveScale, camera.WithZPositiveScale)
	set(o.ReturnBuffer, camera.WithReturnBuffer)
	set(o.ReturnDelay, camera.WithReturnDelay)
	set(o.ReturnSpeed, camera.WithReturnSpeed)
	set(o.PanSpeed, camera.WithPanSpeed)
	set(o.CameraSpeed, camera.WithCameraSpeed)
	set(o.ZoomSpeed, camera.WithZoomSpeed)

	if o.MinZoom != nil || o.MaxZoom != nil {
		options = append(options, camera.WithZoomBounds(c.zoomBounds()))
	}
	if o.FovScaling != nil {
		options = append(options, camera.WithFovScaling(*o.FovScaling, common.DegToRad(10), common.DegToRad(120)))
	}
	return options
}
