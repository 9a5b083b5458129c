// Package astro provides the angle and time arithmetic shared by the
// interpretation layer and the ephemeris providers.
package astro

import "math"

// FullCircle is the number of degrees in a full turn of the ecliptic.
const FullCircle = 360.0

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, FullCircle)
	if a < 0 {
		a += FullCircle
	}
	// math.Mod can hand back -0 or, after the shift above, exactly 360 for
	// tiny negative inputs.
	if a >= FullCircle || a == 0 {
		return 0
	}
	return a
}

// Difference returns (to - from) wrapped into [0, 360).
func Difference(from, to float64) float64 {
	return NormalizeDegrees(to - from)
}

// CircularSeparation returns the shorter arc between two longitudes, in [0, 180].
func CircularSeparation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), FullCircle)
	return math.Min(d, FullCircle-d)
}

// InRange reports whether a is a finite value on [0, 360).
func InRange(a float64) bool {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return false
	}
	return a >= 0 && a < FullCircle
}
