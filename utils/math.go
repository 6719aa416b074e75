// Package utils contains small numeric helpers shared across packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Signum returns -1, 0 or 1 following the sign of x.
func Signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Sinc returns sin(x)/x, with the limit 1 at x = 0.
func Sinc(x float64) float64 {
	if math.Abs(x) < 1e-9 {
		return 1.0 - x*x/6.0
	}
	return math.Sin(x) / x
}

// ApplyDeadband zeroes values within deadband of zero and rescales the rest so the output
// stays continuous and still reaches +/-maxMagnitude.
func ApplyDeadband(value, deadband, maxMagnitude float64) float64 {
	deadband = math.Abs(deadband)
	if math.Abs(value) <= deadband {
		return 0
	}
	if maxMagnitude <= deadband {
		return value
	}
	return Signum(value) * (math.Abs(value) - deadband) * maxMagnitude / (maxMagnitude - deadband)
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}
