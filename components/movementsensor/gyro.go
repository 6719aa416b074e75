// Package movementsensor defines the heading sensor interface used for odometry.
package movementsensor

// A Gyro reports the absolute heading of the robot in radians, counter-clockwise positive.
// The reading may grow without bound; consumers wrap it.
type Gyro interface {
	Heading() float64
}
