package camera

import (
	"log"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// cameraControllerImpl is the single implementation of CameraController.
// Input handlers write the target state; Tick eases the actual state toward it.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Actual camera state
	position   [2]float32 // x, z
	height     float32
	smoothZoom float32
	fov        float32

	// Target state
	target [2]float32 // x, z
	zoom   float32

	// Drag session
	dragging    bool
	dragButton  common.MouseButton
	lastPointer [2]float32

	// Idle return
	returnTime   float32
	returnBuffer float32
	returnDelay  float32
	returnSpeed  float32

	// Bounds
	aspect         float32
	worldSize      float32
	zPositiveScale float32
	maxRange       float32

	// Tuning
	panSpeed     float32
	zoomStep     float32
	minZoom      float32
	maxZoom      float32
	cameraSpeed  float32
	zoomSpeed    float32
	baseDistance float32

	// Projection
	baseFov    float32
	fovScaling bool
	minFov     float32
	maxFov     float32
	near       float32
	far        float32

	recenterX    *gween.Tween
	recenterZ    *gween.Tween
	recenterDest [2]float32
}

// Default target zoom range.
const (
	DefaultMinZoom float32 = 0.8
	DefaultMaxZoom float32 = 2.0
)

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new top-down camera controller.
// Defaults match the title screen: world size 15, symmetric bounds, constant 45 degree fov, target zoom 2
// and a smoothed zoom starting at 0.01 so the camera flies in from far above.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		smoothZoom: 0.01,
		zoom:       2.0,

		dragButton: common.MouseButtonSecondary,

		returnBuffer: 5.0,
		returnDelay:  5.0,
		returnSpeed:  1.0,

		aspect:         1.0,
		worldSize:      15.0,
		zPositiveScale: 1.0,

		panSpeed:     0.0085,
		zoomStep:     0.1,
		minZoom:      DefaultMinZoom,
		maxZoom:      DefaultMaxZoom,
		cameraSpeed:  15.0,
		zoomSpeed:    2.0,
		baseDistance: 10.0,

		baseFov: common.DegToRad(45),
		minFov:  common.DegToRad(10),
		maxFov:  common.DegToRad(120),
		near:    0.1,
		far:     100.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.zoom = common.Clamp(cc.zoom, cc.minZoom, cc.maxZoom)
	cc.updateBounds()
	cc.updateProjection(0)
	cc.position = cc.target
	return cc
}

// --- internal helpers ---

// updateBounds recomputes maxRange from the aspect ratio and re-clamps the target.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updateBounds() {
	cc.maxRange = cc.worldSize / cc.aspect
	cc.clampTarget()
}

// bounds returns the clamp rectangle for the target offset.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) bounds() (minX, maxX, minZ, maxZ float32) {
	return -cc.maxRange, cc.maxRange, -cc.maxRange, cc.maxRange * cc.zPositiveScale
}

// clampTarget restricts the target offset to the bounds rectangle.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clampTarget() {
	minX, maxX, minZ, maxZ := cc.bounds()
	cc.target[0] = common.Clamp(cc.target[0], minX, maxX)
	cc.target[1] = common.Clamp(cc.target[1], minZ, maxZ)
}

// updateProjection eases the smoothed zoom toward the target zoom and derives the height and fov.
// A zero deltaTime only re-derives the projection (the lerp may still snap within tolerance).
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updateProjection(deltaTime float32) {
	cc.smoothZoom = common.Lerp(cc.smoothZoom, cc.zoom, min(1, deltaTime*cc.zoomSpeed))
	cc.height = cc.baseDistance / cc.smoothZoom

	if cc.fovScaling {
		cc.fov = common.Clamp(cc.baseFov/cc.smoothZoom, cc.minFov, cc.maxFov)
	} else {
		cc.fov = cc.baseFov
	}
}

// updateReturn runs the idle return timer. While the camera sits outside the inner bound and no drag is
// active the timer accumulates; once it passes the delay the target drifts toward the origin with a factor
// that grows the longer the camera stays out.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updateReturn(deltaTime float32) {
	inner := max(0, cc.maxRange-cc.returnBuffer)
	x, z := cc.position[0], cc.position[1]
	outside := x > inner || x < -inner || z > inner || z < -inner

	if !outside || cc.dragging {
		cc.returnTime = 0
		return
	}

	cc.returnTime += deltaTime
	if cc.returnTime > cc.returnDelay {
		factor := min(1, deltaTime*cc.returnTime*cc.returnSpeed)
		cc.target[0] = common.Lerp(cc.target[0], 0, factor)
		cc.target[1] = common.Lerp(cc.target[1], 0, factor)
	}
}

// updateRecenter advances an active recenter tween and writes the eased value into the target.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updateRecenter(deltaTime float32) {
	if cc.recenterX == nil || cc.recenterZ == nil {
		return
	}

	x, doneX := cc.recenterX.Update(deltaTime)
	z, doneZ := cc.recenterZ.Update(deltaTime)
	cc.target[0] = x
	cc.target[1] = z

	if doneX && doneZ {
		cc.target = cc.recenterDest
		cc.recenterX = nil
		cc.recenterZ = nil
	}
}

// transform assembles the CameraTransform from the actual state.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) transform() CameraTransform {
	x, z := cc.position[0], cc.position[1]
	return CameraTransform{
		Position: [3]float32{x, cc.height, z},
		Target:   [3]float32{x, 0, z},
		Up:       [3]float32{0, 0, -1},
		Fov:      cc.fov,
		Aspect:   cc.aspect,
		Near:     cc.near,
		Far:      cc.far,
	}
}

// --- CameraController ---

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.height, cc.position[1]
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], 0, cc.position[1]
}

func (cc *cameraControllerImpl) Transform() CameraTransform {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.transform()
}

func (cc *cameraControllerImpl) Tick(deltaTime float32) CameraTransform {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.updateReturn(deltaTime)
	cc.updateRecenter(deltaTime)
	cc.clampTarget()
	cc.updateProjection(deltaTime)

	rate := min(1, deltaTime*cc.cameraSpeed)
	cc.position[0] = common.Lerp(cc.position[0], cc.target[0], rate)
	cc.position[1] = common.Lerp(cc.position[1], cc.target[1], rate)

	return cc.transform()
}

func (cc *cameraControllerImpl) RecenterTo(x, z, duration float32, easeFn ease.TweenFunc) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if easeFn == nil {
		easeFn = ease.Linear
	}
	if duration <= 0 || math.IsNaN(float64(duration)) {
		cc.recenterX = nil
		cc.recenterZ = nil
		cc.target = [2]float32{x, z}
		cc.clampTarget()
		return
	}
	cc.recenterDest = [2]float32{x, z}
	cc.recenterX = gween.New(cc.target[0], x, duration, easeFn)
	cc.recenterZ = gween.New(cc.target[1], z, duration, easeFn)
}

func (cc *cameraControllerImpl) Recentering() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.recenterX != nil
}

func (cc *cameraControllerImpl) Apply(options ...CameraControllerOption) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	for _, option := range options {
		option(cc)
	}
	cc.zoom = common.Clamp(cc.zoom, cc.minZoom, cc.maxZoom)
	cc.updateBounds()
	cc.updateProjection(0)
}

// --- inputCameraController ---

func (cc *cameraControllerImpl) HandlePointerDown(button common.MouseButton, x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if button == cc.dragButton {
		cc.dragging = true
		cc.returnTime = 0
		cc.recenterX = nil
		cc.recenterZ = nil
	}
	cc.lastPointer = [2]float32{x, y}
}

func (cc *cameraControllerImpl) HandlePointerMove(x, y float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if !cc.dragging {
		return
	}

	dx := x - cc.lastPointer[0]
	dy := y - cc.lastPointer[1]
	pan := cc.panSpeed / cc.zoom

	cc.target[0] -= dx * pan
	cc.target[1] -= dy * pan
	cc.clampTarget()

	cc.lastPointer = [2]float32{x, y}
}

func (cc *cameraControllerImpl) HandlePointerUp(button common.MouseButton) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dragging = false
}

func (cc *cameraControllerImpl) HandlePointerLeave() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dragging = false
}

func (cc *cameraControllerImpl) HandleWheel(deltaY float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if deltaY > 0 {
		cc.zoom -= cc.zoomStep
	} else {
		cc.zoom += cc.zoomStep
	}
	cc.zoom = common.Clamp(cc.zoom, cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) HandleResize(width, height int) {
	if width <= 0 || height <= 0 {
		log.Printf("camera: ignoring resize to %dx%d", width, height)
		return
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.aspect = float32(width) / float32(height)
	cc.updateBounds()
	cc.updateProjection(0)
}

func (cc *cameraControllerImpl) Dragging() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dragging
}

// --- boundedCameraController ---

func (cc *cameraControllerImpl) TargetOffset() (x, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1]
}

func (cc *cameraControllerImpl) SetTargetOffset(x, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [2]float32{x, z}
	cc.clampTarget()
}

func (cc *cameraControllerImpl) Zoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoom
}

func (cc *cameraControllerImpl) SmoothZoom() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.smoothZoom
}

func (cc *cameraControllerImpl) MaxRange() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRange
}

func (cc *cameraControllerImpl) Bounds() (minX, maxX, minZ, maxZ float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.bounds()
}

func (cc *cameraControllerImpl) ReturnTime() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.returnTime
}
