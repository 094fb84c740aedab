package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera turns a CameraTransform into the view and projection matrices the renderer uploads.
// It follows an attached CameraController on Update.
type Camera interface {
	// Transform returns the transform the matrices were last built from.
	Transform() CameraTransform

	// Position returns the eye position.
	Position() (x, y, z float32)

	// ViewMatrix returns the column-major view matrix.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the column-major perspective matrix with depth in [0, 1].
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() [16]float32

	// Uniform packs the current matrices for the camera bind group.
	//
	// Parameters:
	//   - elapsed: scene time in seconds, passed to the shader
	//
	// Returns:
	//   - GPUCameraUniform: the uniform
	Uniform(elapsed float32) GPUCameraUniform

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches ctrl. The matrices change on the next Update.
	SetController(ctrl CameraController)

	// Update rebuilds the matrices from the controller's transform. It is a no-op without a
	// controller. Call it once per frame after the controller ticks.
	Update()

	// Apply rebuilds the matrices from t, ignoring the controller.
	Apply(t CameraTransform)
}

// clipDepth maps OpenGL clip depth [-1, 1] to the WebGPU range [0, 1].
var clipDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// matrices is the camera state derived from one transform.
type matrices struct {
	transform      CameraTransform
	view, proj, vp mgl32.Mat4
}

// rebuild derives the matrices for t. A transform with an unusable projection (non-positive fov
// or aspect, far not beyond near) keeps the previous projection.
func (m matrices) rebuild(t CameraTransform) matrices {
	m.transform = t
	m.view = mgl32.LookAtV(mgl32.Vec3(t.Position), mgl32.Vec3(t.Target), mgl32.Vec3(t.Up))
	if t.Fov > 0 && t.Aspect > 0 && t.Far > t.Near {
		m.proj = clipDepth.Mul4(mgl32.Perspective(t.Fov, t.Aspect, t.Near, t.Far))
	}
	m.vp = m.proj.Mul4(m.view)
	return m
}

type camera struct {
	mu         sync.RWMutex
	m          matrices
	controller CameraController
}

var _ Camera = &camera{}

// NewCamera creates a Camera. Without WithController or WithTransform every matrix is the
// identity until Apply is called.
//
// Parameters:
//   - options: CameraBuilderOption functions applied in order
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &camera{
		m: matrices{view: mgl32.Ident4(), proj: mgl32.Ident4(), vp: mgl32.Ident4()},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.controller != nil {
		c.m = c.m.rebuild(c.controller.Transform())
	}
	return c
}

func (c *camera) snapshot() matrices {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m
}

func (c *camera) Transform() CameraTransform {
	return c.snapshot().transform
}

func (c *camera) Position() (x, y, z float32) {
	p := c.snapshot().transform.Position
	return p[0], p[1], p[2]
}

func (c *camera) ViewMatrix() [16]float32           { return c.snapshot().view }
func (c *camera) ProjectionMatrix() [16]float32     { return c.snapshot().proj }
func (c *camera) ViewProjectionMatrix() [16]float32 { return c.snapshot().vp }

func (c *camera) Uniform(elapsed float32) GPUCameraUniform {
	m := c.snapshot()
	return GPUCameraUniform{ViewProj: m.vp, CameraPosition: m.transform.Position, Time: elapsed}
}

func (c *camera) Controller() CameraController {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller
}

func (c *camera) SetController(ctrl CameraController) {
	c.mu.Lock()
	c.controller = ctrl
	c.mu.Unlock()
}

func (c *camera) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != nil {
		c.m = c.m.rebuild(c.controller.Transform())
	}
}

func (c *camera) Apply(t CameraTransform) {
	c.mu.Lock()
	c.m = c.m.rebuild(t)
	c.mu.Unlock()
}
