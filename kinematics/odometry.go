package kinematics

import (
	"go.viam.com/diffdrive/spatialmath"
)

// Odometry estimates the robot pose from incremental wheel travel and an absolute heading
// source. Position is dead reckoned; heading is taken from the sensor so it does not drift
// with wheel slip.
//
// Inputs must be finite. Odometry is not safe for concurrent use.
type Odometry struct {
	pose          spatialmath.Pose2d
	headingOffset float64
	prevHeading   float64
}

// NewOdometry returns an estimator at initial whose heading sensor currently reads heading.
func NewOdometry(heading float64, initial spatialmath.Pose2d) *Odometry {
	o := &Odometry{}
	o.Reset(initial, heading)
	return o
}

// Reset overwrites the estimate with pose. heading is the raw sensor reading at the time
// of the reset; later readings are reported relative to it.
func (o *Odometry) Reset(pose spatialmath.Pose2d, heading float64) {
	o.pose = pose
	o.headingOffset = spatialmath.WrapAngle(pose.Theta - heading)
	o.prevHeading = pose.Theta
}

// Update advances the estimate by the wheel travel since the previous call and returns the
// new pose.
func (o *Odometry) Update(leftDelta, rightDelta, heading float64) spatialmath.Pose2d {
	theta := spatialmath.WrapAngle(heading + o.headingOffset)
	twist := spatialmath.Twist2d{
		Dx:     (leftDelta + rightDelta) / 2,
		Dtheta: spatialmath.WrapAngle(theta - o.prevHeading),
	}
	next := o.pose.Exp(twist)
	next.Theta = theta
	o.pose = next
	o.prevHeading = theta
	return o.pose
}

// Pose returns the current estimate.
func (o *Odometry) Pose() spatialmath.Pose2d {
	return o.pose
}
