package camera

import "github.com/Carmen-Shannon/oxy-tabletop/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithAspect sets the viewport aspect ratio used to derive the target bounds.
// Non-positive values are ignored.
//
// Parameters:
//   - aspect: width / height
//
// Returns:
//   - CameraControllerOption: functional option to set the aspect ratio
func WithAspect(aspect float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if aspect > 0 {
			cc.aspect = aspect
		}
	}
}

// WithViewport sets the aspect ratio from a viewport size in pixels.
// Non-positive sizes are ignored.
//
// Parameters:
//   - width, height: the viewport size
//
// Returns:
//   - CameraControllerOption: functional option to set the aspect ratio
func WithViewport(width, height int) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if width > 0 && height > 0 {
			cc.aspect = float32(width) / float32(height)
		}
	}
}

// WithWorldSize sets the world half-extent at aspect 1. The target bounds are worldSize / aspect.
//
// Parameters:
//   - size: world half-extent
//
// Returns:
//   - CameraControllerOption: functional option to set the world size
func WithWorldSize(size float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.worldSize = size
	}
}

// WithZPositiveScale scales the positive z bound relative to maxRange.
// 1 gives a symmetric rectangle; 0.1 keeps the camera from tracking far toward the viewer.
//
// Parameters:
//   - scale: multiplier applied to maxRange for the +z bound
//
// Returns:
//   - CameraControllerOption: functional option to set the +z bound scale
func WithZPositiveScale(scale float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zPositiveScale = scale
	}
}

// WithPanSpeed sets the world units panned per pixel of drag at zoom 1.
//
// Parameters:
//   - speed: pan speed multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set pan speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.panSpeed = speed
	}
}

// WithDragButton sets which pointer button starts a drag session.
//
// Parameters:
//   - button: the drag button
//
// Returns:
//   - CameraControllerOption: functional option to set the drag button
func WithDragButton(button common.MouseButton) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.dragButton = button
	}
}

// WithZoomStep sets the zoom change applied per wheel notch.
//
// Parameters:
//   - step: zoom delta per wheel event
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom step
func WithZoomStep(step float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomStep = step
	}
}

// WithZoomBounds sets the minimum and maximum target zoom.
//
// Parameters:
//   - min: minimum zoom
//   - max: maximum zoom
//
// Returns:
//   - CameraControllerOption: functional option to set zoom bounds
func WithZoomBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = min
		cc.maxZoom = max
	}
}

// WithInitialZoom sets the starting target zoom.
//
// Parameters:
//   - zoom: the target zoom
//
// Returns:
//   - CameraControllerOption: functional option to set the initial zoom
func WithInitialZoom(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoom = zoom
	}
}

// WithInitialSmoothZoom sets the starting smoothed zoom. A small value produces a fly-in on startup.
//
// Parameters:
//   - zoom: the smoothed zoom
//
// Returns:
//   - CameraControllerOption: functional option to set the initial smoothed zoom
func WithInitialSmoothZoom(zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.smoothZoom = zoom
	}
}

// WithCameraSpeed sets the rate at which the camera position chases the target.
//
// Parameters:
//   - speed: position smoothing rate per second
//
// Returns:
//   - CameraControllerOption: functional option to set camera speed
func WithCameraSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.cameraSpeed = speed
	}
}

// WithZoomSpeed sets the rate at which the smoothed zoom chases the target zoom.
//
// Parameters:
//   - speed: zoom smoothing rate per second
//
// Returns:
//   - CameraControllerOption: functional option to set zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSpeed = speed
	}
}

// WithBaseDistance sets the camera height at zoom 1. The height is baseDistance / smoothZoom.
//
// Parameters:
//   - distance: height at zoom 1
//
// Returns:
//   - CameraControllerOption: functional option to set the base distance
func WithBaseDistance(distance float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.baseDistance = distance
	}
}

// WithReturnBuffer sets the margin between maxRange and the idle-return inner bound.
//
// Parameters:
//   - buffer: distance inside maxRange beyond which the return timer runs
//
// Returns:
//   - CameraControllerOption: functional option to set the return buffer
func WithReturnBuffer(buffer float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.returnBuffer = buffer
	}
}

// WithReturnDelay sets how long the camera must stay out of the inner bound before drifting back.
//
// Parameters:
//   - delay: seconds
//
// Returns:
//   - CameraControllerOption: functional option to set the return delay
func WithReturnDelay(delay float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.returnDelay = delay
	}
}

// WithReturnSpeed sets the multiplier applied to the idle-return lerp factor.
//
// Parameters:
//   - speed: return rate multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the return speed
func WithReturnSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.returnSpeed = speed
	}
}

// WithFov sets the base vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the base fov
func WithFov(fov float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.baseFov = fov
	}
}

// WithFovScaling enables dividing the base fov by the smoothed zoom, limited to [min, max] radians.
//
// Parameters:
//   - enabled: whether the fov follows the zoom
//   - min, max: fov limits in radians
//
// Returns:
//   - CameraControllerOption: functional option to configure fov scaling
func WithFovScaling(enabled bool, min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.fovScaling = enabled
		cc.minFov = min
		cc.maxFov = max
	}
}

// WithClipPlanes sets the near and far clip distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraControllerOption: functional option to set the clip planes
func WithClipPlanes(near, far float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.near = near
		cc.far = far
	}
}
