package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/spatialmath"
	"go.viam.com/diffdrive/utils"
)

// RamseteConfig holds the Ramsete tuning constants. B (> 0) scales how hard lateral error
// is corrected, Zeta (in (0, 1)) is the damping.
type RamseteConfig struct {
	B    float64 `json:"b"`
	Zeta float64 `json:"zeta"`
}

// Validate checks the tuning constants are in range.
func (cfg RamseteConfig) Validate() error {
	if !(cfg.B > 0) || math.IsInf(cfg.B, 0) {
		return errors.Errorf("ramsete b must be a positive finite number, got %v", cfg.B)
	}
	if !(cfg.Zeta > 0 && cfg.Zeta < 1) {
		return errors.Errorf("ramsete zeta must be in (0, 1), got %v", cfg.Zeta)
	}
	return nil
}

// RamseteController is the nonlinear unicycle tracking law. Given a dynamically feasible
// reference and an accurate pose it drives the reference-frame error to zero.
//
// Poses and velocities must be finite; this is the caller's contract.
type RamseteController struct {
	b, zeta float64

	enabled   bool
	poseError spatialmath.Pose2d
	tolerance spatialmath.Pose2d
}

// NewRamseteController returns a controller with tuning constants b and zeta.
func NewRamseteController(cfg RamseteConfig) (*RamseteController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RamseteController{b: cfg.B, zeta: cfg.Zeta, enabled: true}, nil
}

// SetEnabled turns feedback on or off. When disabled Calculate returns the reference
// velocities unchanged.
func (c *RamseteController) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// SetTolerance sets the pose error considered close enough by AtReference.
func (c *RamseteController) SetTolerance(tolerance spatialmath.Pose2d) {
	c.tolerance = tolerance
}

// AtReference reports whether the most recent pose error is inside the tolerance.
func (c *RamseteController) AtReference() bool {
	return math.Abs(c.poseError.X()) < c.tolerance.X() &&
		math.Abs(c.poseError.Y()) < c.tolerance.Y() &&
		math.Abs(c.poseError.Heading()) < c.tolerance.Heading()
}

// PoseError returns the most recent error expressed in the reference frame.
func (c *RamseteController) PoseError() spatialmath.Pose2d {
	return c.poseError
}

// Calculate returns the chassis velocity that steers current toward refPose while moving at
// linearRef m/s and angularRef rad/s.
func (c *RamseteController) Calculate(
	current, refPose spatialmath.Pose2d,
	linearRef, angularRef float64,
) kinematics.ChassisSpeeds {
	// positional error is expressed along and across the reference heading
	c.poseError = spatialmath.Pose2d{
		Point: spatialmath.Rotate(refPose.Point.Sub(current.Point), -refPose.Theta),
		Theta: spatialmath.WrapAngle(refPose.Theta - current.Theta),
	}
	if !c.enabled {
		return kinematics.ChassisSpeeds{Linear: linearRef, Angular: angularRef}
	}

	eX := c.poseError.X()
	eY := c.poseError.Y()
	eTheta := c.poseError.Heading()

	k := 2.0 * c.zeta * math.Sqrt(utils.Square(angularRef)+c.b*utils.Square(linearRef))
	return kinematics.ChassisSpeeds{
		Linear:  linearRef*math.Cos(eTheta) + k*eX,
		Angular: angularRef + k*eTheta + c.b*linearRef*utils.Sinc(eTheta)*eY,
	}
}
