package game_object

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/renderer/bind_group_provider"
)

// GameObject is a scene node: a Model placed in the world by a Transform. The scene assigns the ID
// and the model uniform provider on Add and uploads ModelData every frame. Safe for concurrent use.
type GameObject interface {
	// ID returns the scene-assigned identifier, 0 before the node is added.
	ID() uint64
	SetID(id uint64)

	// Enabled reports whether the node is drawn and updated.
	Enabled() bool
	SetEnabled(enabled bool)

	Model() model.Model
	SetModel(m model.Model)

	// Transform returns a copy of the position, Euler rotation (radians) and scale.
	Transform() common.Transform
	SetTransform(t common.Transform)

	Position() (x, y, z float32)
	SetPosition(x, y, z float32)
	Rotation() (rx, ry, rz float32)
	SetRotation(rx, ry, rz float32)
	Scale() (sx, sy, sz float32)
	SetScale(sx, sy, sz float32)

	// RotationSpeed is the constant spin in radians per second applied by Advance.
	RotationSpeed() (rx, ry, rz float32)
	SetRotationSpeed(rx, ry, rz float32)

	// UniformProvider returns the provider holding the node's model uniform, nil before the node is added.
	UniformProvider() bind_group_provider.BindGroupProvider
	SetUniformProvider(provider bind_group_provider.BindGroupProvider)

	// Advance adds RotationSpeed * deltaTime to the rotation.
	//
	// Parameters:
	//   - deltaTime: the frame time in seconds
	Advance(deltaTime float32)

	// ModelData returns the model matrix for the current transform. The matrix is rebuilt only
	// after the transform changes.
	//
	// Returns:
	//   - model.GPUModelData: the model uniform
	ModelData() model.GPUModelData
}

type gameObject struct {
	mu *sync.Mutex

	id       uint64
	enabled  bool
	mdl      model.Model
	provider bind_group_provider.BindGroupProvider

	transform common.Transform
	spin      [3]float32

	data  model.GPUModelData
	stale bool
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled node at the origin with unit scale.
//
// Parameters:
//   - options: GameObjectBuilderOption functions applied in order
//
// Returns:
//   - GameObject: the node
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:        &sync.Mutex{},
		enabled:   true,
		transform: common.IdentityTransform(),
	}
	for _, opt := range options {
		opt(g)
	}
	g.stale = true
	return g
}

// locked runs fn with the node's mutex held.
func (g *gameObject) locked(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// edit applies fn to the transform and marks the model matrix stale.
func (g *gameObject) edit(fn func(t *common.Transform)) {
	g.locked(func() {
		fn(&g.transform)
		g.stale = true
	})
}

func (g *gameObject) ID() (id uint64) {
	g.locked(func() { id = g.id })
	return id
}

func (g *gameObject) SetID(id uint64) {
	g.locked(func() { g.id = id })
}

func (g *gameObject) Enabled() (enabled bool) {
	g.locked(func() { enabled = g.enabled })
	return enabled
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.locked(func() { g.enabled = enabled })
}

func (g *gameObject) Model() (m model.Model) {
	g.locked(func() { m = g.mdl })
	return m
}

func (g *gameObject) SetModel(m model.Model) {
	g.locked(func() { g.mdl = m })
}

func (g *gameObject) Transform() (t common.Transform) {
	g.locked(func() { t = g.transform })
	return t
}

func (g *gameObject) SetTransform(t common.Transform) {
	g.edit(func(dst *common.Transform) { *dst = t })
}

func (g *gameObject) Position() (x, y, z float32) {
	p := g.Transform().Position
	return p[0], p[1], p[2]
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.edit(func(t *common.Transform) { t.Position = [3]float32{x, y, z} })
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	r := g.Transform().Rotation
	return r[0], r[1], r[2]
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.edit(func(t *common.Transform) { t.Rotation = [3]float32{rx, ry, rz} })
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	s := g.Transform().Scale
	return s[0], s[1], s[2]
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.edit(func(t *common.Transform) { t.Scale = [3]float32{sx, sy, sz} })
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	var s [3]float32
	g.locked(func() { s = g.spin })
	return s[0], s[1], s[2]
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.locked(func() { g.spin = [3]float32{rx, ry, rz} })
}

func (g *gameObject) UniformProvider() (p bind_group_provider.BindGroupProvider) {
	g.locked(func() { p = g.provider })
	return p
}

func (g *gameObject) SetUniformProvider(provider bind_group_provider.BindGroupProvider) {
	g.locked(func() { g.provider = provider })
}

func (g *gameObject) Advance(deltaTime float32) {
	g.locked(func() {
		if g.spin == [3]float32{} {
			return
		}
		for i, s := range g.spin {
			g.transform.Rotation[i] += s * deltaTime
		}
		g.stale = true
	})
}

func (g *gameObject) ModelData() (data model.GPUModelData) {
	g.locked(func() {
		if g.stale {
			g.data = model.NewGPUModelData(g.transform)
			g.stale = false
		}
		data = g.data
	})
	return data
}
