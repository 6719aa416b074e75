package trajectory

import (
	"math"

	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/spatialmath"
)

// A Constraint limits the velocity and acceleration of the robot at a point along the path.
// Velocities are chassis velocities in m/s, curvature is in rad/m.
type Constraint interface {
	// MaxVelocity returns the largest velocity allowed at pose.
	MaxVelocity(pose spatialmath.Pose2d, curvature, velocity float64) float64
	// MinMaxAcceleration returns the range of accelerations allowed at pose while moving at
	// velocity.
	MinMaxAcceleration(pose spatialmath.Pose2d, curvature, velocity float64) (minAccel, maxAccel float64)
}

// MaxVelocityConstraint caps the chassis velocity everywhere.
type MaxVelocityConstraint struct {
	Max float64
}

// MaxVelocity returns the cap.
func (c MaxVelocityConstraint) MaxVelocity(spatialmath.Pose2d, float64, float64) float64 {
	return c.Max
}

// MinMaxAcceleration is unconstrained.
func (c MaxVelocityConstraint) MinMaxAcceleration(spatialmath.Pose2d, float64, float64) (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// CentripetalAccelerationConstraint limits v^2 * |curvature| so the robot slows in tight
// turns.
type CentripetalAccelerationConstraint struct {
	MaxCentripetalAcceleration float64
}

// MaxVelocity returns sqrt(a / |curvature|).
func (c CentripetalAccelerationConstraint) MaxVelocity(_ spatialmath.Pose2d, curvature, _ float64) float64 {
	if curvature == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(c.MaxCentripetalAcceleration / math.Abs(curvature))
}

// MinMaxAcceleration is unconstrained; the constraint only bounds velocity.
func (c CentripetalAccelerationConstraint) MinMaxAcceleration(spatialmath.Pose2d, float64, float64) (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// DifferentialDriveKinematicsConstraint keeps both wheels of a differential base under a
// speed limit. The outer wheel of a turn moves faster than the chassis.
type DifferentialDriveKinematicsConstraint struct {
	Kinematics kinematics.DifferentialDrive
	MaxSpeed   float64
}

// MaxVelocity returns the chassis velocity at which the faster wheel just reaches MaxSpeed.
func (c DifferentialDriveKinematicsConstraint) MaxVelocity(_ spatialmath.Pose2d, curvature, velocity float64) float64 {
	wheels := c.Kinematics.ToWheelSpeeds(kinematics.ChassisSpeeds{Linear: velocity, Angular: velocity * curvature})
	return c.Kinematics.ToChassisSpeeds(wheels.Desaturate(c.MaxSpeed)).Linear
}

// MinMaxAcceleration is unconstrained.
func (c DifferentialDriveKinematicsConstraint) MinMaxAcceleration(spatialmath.Pose2d, float64, float64) (float64, float64) {
	return math.Inf(-1), math.Inf(1)
}

// DifferentialDriveVoltageConstraint bounds the chassis acceleration so neither wheel's
// feedforward voltage exceeds MaxVoltage.
type DifferentialDriveVoltageConstraint struct {
	Feedforward control.SimpleMotorFeedforward
	Kinematics  kinematics.DifferentialDrive
	MaxVoltage  float64
}

// MaxVelocity is unconstrained; the velocity limit follows from the acceleration bound.
func (c DifferentialDriveVoltageConstraint) MaxVelocity(spatialmath.Pose2d, float64, float64) float64 {
	return math.Inf(1)
}

// MinMaxAcceleration converts the per-wheel achievable accelerations into chassis
// accelerations along an arc of the given curvature.
func (c DifferentialDriveVoltageConstraint) MinMaxAcceleration(
	_ spatialmath.Pose2d,
	curvature, velocity float64,
) (float64, float64) {
	wheels := c.Kinematics.ToWheelSpeeds(kinematics.ChassisSpeeds{Linear: velocity, Angular: velocity * curvature})
	maxWheelSpeed := math.Max(wheels.Left, wheels.Right)
	minWheelSpeed := math.Min(wheels.Left, wheels.Right)

	maxWheelAccel := c.Feedforward.MaxAchievableAcceleration(c.MaxVoltage, maxWheelSpeed)
	minWheelAccel := c.Feedforward.MinAchievableAcceleration(c.MaxVoltage, minWheelSpeed)

	// On an arc of radius r the outer wheel travels on r + T/2 and the inner on r - T/2, so
	// the chassis acceleration is the wheel acceleration divided by 1 +/- |k|T/2. Moving
	// forward the maximum belongs to the outer wheel, moving backward to the inner one.
	halfTrack := c.Kinematics.TrackWidth() / 2
	var maxChassisAccel, minChassisAccel float64
	if velocity == 0 {
		maxChassisAccel = maxWheelAccel / (1 + halfTrack*math.Abs(curvature))
		minChassisAccel = minWheelAccel / (1 + halfTrack*math.Abs(curvature))
	} else {
		sign := math.Copysign(1, velocity)
		maxChassisAccel = maxWheelAccel / (1 + halfTrack*math.Abs(curvature)*sign)
		minChassisAccel = minWheelAccel / (1 - halfTrack*math.Abs(curvature)*sign)
	}

	// Turning about a point inside the wheelbase reverses the inner wheel.
	if curvature != 0 && halfTrack > 1/math.Abs(curvature) {
		switch {
		case velocity > 0:
			minChassisAccel = -minChassisAccel
		case velocity < 0:
			maxChassisAccel = -maxChassisAccel
		}
	}
	return minChassisAccel, maxChassisAccel
}
