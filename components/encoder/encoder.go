// Package encoder defines the wheel travel sensor interface the drivetrain reads.
package encoder

import (
	"math"
)

// An Encoder reports linear wheel travel in meters since its last reset and the wheel's
// current velocity in m/s. Readings are taken from the hardware layer once per tick and must
// be finite.
type Encoder interface {
	Distance() float64
	Rate() float64
	Reset()
}

// DistancePerPulse returns the wheel travel of one encoder count for a wheel of the given
// diameter in meters.
func DistancePerPulse(countsPerRevolution int, wheelDiameter float64) float64 {
	if countsPerRevolution <= 0 {
		return 0
	}
	return math.Pi * wheelDiameter / float64(countsPerRevolution)
}
