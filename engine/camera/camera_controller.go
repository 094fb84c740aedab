package camera

import (
	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/tanema/gween/ease"
)

// CameraTransform is the camera placement produced by a controller tick.
// The renderer consumes it through Camera to build the view and projection matrices.
type CameraTransform struct {
	// Position is the world-space eye position.
	Position [3]float32
	// Target is the world-space look-at point directly below the eye.
	Target [3]float32
	// Up is the view up vector. Looking straight down, screen-up maps to world -Z.
	Up [3]float32
	// Fov is the vertical field of view in radians.
	Fov float32
	// Aspect is the viewport aspect ratio (width / height).
	Aspect float32
	// Near and Far are the clip plane distances.
	Near, Far float32
}

// CameraController defines the union interface for the top-down camera control system.
// The controller owns the actual camera state, the desired target state, the drag session and the idle
// return timer. It never schedules itself; an external frame driver calls Tick once per frame.
// Embeds inputCameraController and boundedCameraController.
type CameraController interface {
	inputCameraController
	boundedCameraController

	// Position returns the camera's current world-space eye position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the current look-at point (directly below the eye on the ground plane).
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Transform returns the camera transform as of the last Tick or resize without advancing state.
	//
	// Returns:
	//   - CameraTransform: the current camera transform
	Transform() CameraTransform

	// Tick advances the controller by one frame: idle return, projection update, then position smoothing.
	// The caller is responsible for clamping deltaTime. Smoothing and return rates are capped at 1 per
	// frame, so a long clamped frame lands on the target instead of overshooting it.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the previous tick in seconds
	//
	// Returns:
	//   - CameraTransform: the camera transform for this frame
	Tick(deltaTime float32) CameraTransform

	// RecenterTo tweens the target offset to the given point over duration seconds.
	// A drag start cancels the tween.
	//
	// Parameters:
	//   - x, z: the destination target offset
	//   - duration: tween length in seconds
	//   - easeFn: the easing function
	RecenterTo(x, z, duration float32, easeFn ease.TweenFunc)

	// Recentering reports whether a RecenterTo tween is in progress.
	//
	// Returns:
	//   - bool: true while the tween is running
	Recentering() bool

	// Apply re-applies tuning options to a live controller and recomputes the bounds.
	//
	// Parameters:
	//   - options: functional options to apply
	Apply(options ...CameraControllerOption)
}

// inputCameraController defines the pointer, wheel and viewport event handlers.
// Each handler mutates the target state only; nothing is rendered from an event.
type inputCameraController interface {
	// HandlePointerDown starts a drag session when button is the drag button and records the pointer position.
	//
	// Parameters:
	//   - button: the pressed button
	//   - x, y: pointer position in screen pixels
	HandlePointerDown(button common.MouseButton, x, y float32)

	// HandlePointerMove pans the target while a drag session is active.
	// Dragging right moves the target left; the pan amount is divided by the target zoom.
	//
	// Parameters:
	//   - x, y: pointer position in screen pixels
	HandlePointerMove(x, y float32)

	// HandlePointerUp ends any drag session.
	//
	// Parameters:
	//   - button: the released button
	HandlePointerUp(button common.MouseButton)

	// HandlePointerLeave ends any drag session when the pointer leaves the render surface.
	HandlePointerLeave()

	// HandleWheel steps the target zoom. Positive deltaY (scroll down) zooms out.
	//
	// Parameters:
	//   - deltaY: wheel delta using the browser convention (positive = down)
	HandleWheel(deltaY float32)

	// HandleResize recomputes the aspect ratio and bounds, re-clamping the target.
	// Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: the new viewport size in pixels
	HandleResize(width, height int)

	// Dragging reports whether a drag session is active.
	//
	// Returns:
	//   - bool: true while dragging
	Dragging() bool
}

// boundedCameraController exposes the target state, bounds and idle return timer.
type boundedCameraController interface {
	// TargetOffset returns the desired x/z offset.
	//
	// Returns:
	//   - x, z: the target offset
	TargetOffset() (x, z float32)

	// SetTargetOffset sets the desired x/z offset, clamped to the current bounds.
	//
	// Parameters:
	//   - x, z: the new target offset
	SetTargetOffset(x, z float32)

	// Zoom returns the desired zoom factor.
	//
	// Returns:
	//   - float32: the target zoom
	Zoom() float32

	// SmoothZoom returns the smoothed zoom factor the camera is currently using.
	//
	// Returns:
	//   - float32: the smoothed zoom
	SmoothZoom() float32

	// MaxRange returns the half-extent of the target bounds for the current aspect ratio.
	//
	// Returns:
	//   - float32: worldSize / aspect
	MaxRange() float32

	// Bounds returns the clamp rectangle for the target offset.
	//
	// Returns:
	//   - minX, maxX, minZ, maxZ: the inclusive bounds
	Bounds() (minX, maxX, minZ, maxZ float32)

	// ReturnTime returns the accumulated out-of-bounds time in seconds.
	//
	// Returns:
	//   - float32: the idle return timer value
	ReturnTime() float32
}
