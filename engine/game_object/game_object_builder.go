package game_object

import (
	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/model"
)

// GameObjectBuilderOption configures a GameObject in NewGameObject.
type GameObjectBuilderOption func(*gameObject)

// WithID presets the node ID. Scene.Add replaces it.
func WithID(id uint64) GameObjectBuilderOption {
	return func(g *gameObject) { g.id = id }
}

// WithEnabled sets whether the node starts enabled.
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) { g.enabled = enabled }
}

// WithModel sets the model the node draws.
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(g *gameObject) { g.mdl = m }
}

// WithTransform replaces the whole starting transform. Later position, rotation and scale
// options apply on top of it.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - GameObjectBuilderOption: the option
func WithTransform(t common.Transform) GameObjectBuilderOption {
	return func(g *gameObject) { g.transform = t }
}

func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) { g.transform.Position = [3]float32{x, y, z} }
}

// WithRotation sets the starting Euler rotation in radians.
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) { g.transform.Rotation = [3]float32{rx, ry, rz} }
}

func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) { g.transform.Scale = [3]float32{sx, sy, sz} }
}

// WithRotationSpeed sets a constant spin in radians per second.
//
// Parameters:
//   - rx, ry, rz: the spin around each axis
//
// Returns:
//   - GameObjectBuilderOption: the option
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) { g.spin = [3]float32{rx, ry, rz} }
}
