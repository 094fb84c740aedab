package common

import "math"

// LerpTolerance is the distance below which Lerp returns its target unchanged.
const LerpTolerance float32 = 0.001

// Lerp linearly interpolates from a toward b by t, snapping to b once the two are closer than LerpTolerance.
// The snap guarantees that repeated interpolation reaches b exactly in a finite number of steps instead of
// approaching it asymptotically. t is not clamped.
//
// Parameters:
//   - a: the current value
//   - b: the target value
//   - t: the interpolation factor (typically delta time scaled by a speed)
//
// Returns:
//   - float32: b when |b-a| < LerpTolerance, otherwise (1-t)*a + t*b
func Lerp(a, b, t float32) float32 {
	return LerpWithin(a, b, t, LerpTolerance)
}

// LerpWithin is Lerp with an explicit snap tolerance.
//
// Parameters:
//   - a: the current value
//   - b: the target value
//   - t: the interpolation factor
//   - tolerance: the snap distance
//
// Returns:
//   - float32: b when |b-a| < tolerance, otherwise (1-t)*a + t*b
func LerpWithin(a, b, t, tolerance float32) float32 {
	if Abs(b-a) < tolerance {
		return b
	}
	// explicit conversions keep the compiler from fusing into an FMA
	return float32((1-t)*a) + float32(t*b)
}

// Clamp restricts v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}

// Abs returns the absolute value of v.
func Abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math.Pi / 180.0)
}
