// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// ColorFromHex builds an opaque Color from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the packed 24-bit color
//
// Returns:
//   - Color: the unpacked color with A = 1
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float64((hex>>16)&0xFF) / 255.0,
		G: float64((hex>>8)&0xFF) / 255.0,
		B: float64(hex&0xFF) / 255.0,
		A: 1.0,
	}
}

// Transform is a position / Euler rotation / scale triple describing a node in world space.
// Rotation angles are radians, applied in Y * X * Z order.
type Transform struct {
	Position [3]float32
	Rotation [3]float32
	Scale    [3]float32
}

// IdentityTransform returns a Transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: [3]float32{1, 1, 1}}
}
