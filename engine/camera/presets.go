package camera

import "github.com/Carmen-Shannon/oxy-tabletop/common"

// Variant names a preset tuning of the camera controller.
type Variant string

const (
	// VariantTitle is the title screen camera: symmetric bounds, constant fov.
	VariantTitle Variant = "title"
	// VariantTabletop is the tabletop camera: a short +z bound, a tighter return margin and zoom-scaled fov.
	VariantTabletop Variant = "tabletop"
)

// DefaultOptions returns options that put every tunable back to its NewCameraController default.
// The live zoom, target and aspect are left alone, so applying them to a running controller only
// drops earlier overrides.
//
// Returns:
//   - []CameraControllerOption: the default options
func DefaultOptions() []CameraControllerOption {
	return []CameraControllerOption{
		WithDragButton(common.MouseButtonSecondary),
		WithWorldSize(15),
		WithZPositiveScale(1.0),
		WithPanSpeed(0.0085),
		WithZoomStep(0.1),
		WithZoomBounds(DefaultMinZoom, DefaultMaxZoom),
		WithCameraSpeed(15.0),
		WithZoomSpeed(2.0),
		WithBaseDistance(10.0),
		WithReturnBuffer(5.0),
		WithReturnDelay(5.0),
		WithReturnSpeed(1.0),
		WithFov(common.DegToRad(45)),
		WithFovScaling(false, common.DegToRad(10), common.DegToRad(120)),
		WithClipPlanes(0.1, 100.0),
	}
}

// TitleVariant returns the options for the title screen camera, which runs on the defaults.
//
// Returns:
//   - []CameraControllerOption: the preset options
func TitleVariant() []CameraControllerOption {
	return DefaultOptions()
}

// TabletopVariant returns the options for the tabletop camera.
//
// Returns:
//   - []CameraControllerOption: the preset options
func TabletopVariant() []CameraControllerOption {
	return append(DefaultOptions(),
		WithZPositiveScale(0.1),
		WithReturnBuffer(2.0),
		WithReturnSpeed(0.5),
		WithFovScaling(true, common.DegToRad(10), common.DegToRad(120)),
	)
}

// VariantOptions returns the preset options for a named variant.
//
// Parameters:
//   - v: the variant name
//
// Returns:
//   - []CameraControllerOption: the preset options
//   - bool: false if the variant is unknown
func VariantOptions(v Variant) ([]CameraControllerOption, bool) {
	switch v {
	case VariantTitle:
		return TitleVariant(), true
	case VariantTabletop:
		return TabletopVariant(), true
	default:
		return nil, false
	}
}
