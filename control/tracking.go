package control

import (
	"time"

	"go.uber.org/multierr"

	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/spatialmath"
)

// Reference is a trajectory sample the tracker steers toward.
type Reference struct {
	Pose            spatialmath.Pose2d
	LinearVelocity  float64
	AngularVelocity float64
}

// WheelVoltages is a per-side voltage command. Values are not clamped to the supply; that
// is left to the actuation layer.
type WheelVoltages struct {
	Left  float64
	Right float64
}

// TrackingConfig configures a TrackingController.
type TrackingConfig struct {
	Ramsete     RamseteConfig          `json:"ramsete"`
	Feedforward SimpleMotorFeedforward `json:"feedforward"`
	Left        PIDConfig              `json:"left_velocity_pid"`
	Right       PIDConfig              `json:"right_velocity_pid"`
}

// Validate checks every nested configuration.
func (cfg TrackingConfig) Validate() error {
	return multierr.Combine(
		cfg.Ramsete.Validate(),
		cfg.Feedforward.Validate(),
		cfg.Left.Validate(),
		cfg.Right.Validate(),
	)
}

// TrackingController turns a pose and a reference sample into wheel voltages: Ramsete
// feedback for the chassis velocity, differential kinematics for the wheel setpoints, then
// feedforward plus PID regulation per wheel.
type TrackingController struct {
	ramsete     *RamseteController
	kin         kinematics.DifferentialDrive
	feedforward SimpleMotorFeedforward
	left        *PIDController
	right       *PIDController

	prevSetpoint kinematics.WheelSpeeds
}

// NewTrackingController builds a tracker for a base with the given kinematics.
func NewTrackingController(cfg TrackingConfig, kin kinematics.DifferentialDrive) (*TrackingController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ramsete, err := NewRamseteController(cfg.Ramsete)
	if err != nil {
		return nil, err
	}
	left, err := NewPIDController(cfg.Left)
	if err != nil {
		return nil, err
	}
	right, err := NewPIDController(cfg.Right)
	if err != nil {
		return nil, err
	}
	return &TrackingController{
		ramsete:     ramsete,
		kin:         kin,
		feedforward: cfg.Feedforward,
		left:        left,
		right:       right,
	}, nil
}

// Reset prepares the tracker for a new run that starts at initial.
func (tc *TrackingController) Reset(initial Reference) {
	tc.prevSetpoint = tc.kin.ToWheelSpeeds(kinematics.ChassisSpeeds{
		Linear:  initial.LinearVelocity,
		Angular: initial.AngularVelocity,
	})
	tc.left.Reset()
	tc.right.Reset()
}

// Calculate returns the voltages for this tick. measured is the current wheel velocity and
// dt the time since the previous call.
func (tc *TrackingController) Calculate(
	current spatialmath.Pose2d,
	ref Reference,
	measured kinematics.WheelSpeeds,
	dt time.Duration,
) WheelVoltages {
	chassis := tc.ramsete.Calculate(current, ref.Pose, ref.LinearVelocity, ref.AngularVelocity)
	setpoint := tc.kin.ToWheelSpeeds(chassis)

	var leftAccel, rightAccel float64
	if dtS := dt.Seconds(); dtS > 0 {
		leftAccel = (setpoint.Left - tc.prevSetpoint.Left) / dtS
		rightAccel = (setpoint.Right - tc.prevSetpoint.Right) / dtS
	}

	out := WheelVoltages{
		Left: tc.feedforward.Calculate(setpoint.Left, leftAccel) +
			tc.left.Calculate(measured.Left, setpoint.Left, dt),
		Right: tc.feedforward.Calculate(setpoint.Right, rightAccel) +
			tc.right.Calculate(measured.Right, setpoint.Right, dt),
	}
	tc.prevSetpoint = setpoint
	return out
}

// Setpoint returns the wheel velocities requested by the most recent Calculate.
func (tc *TrackingController) Setpoint() kinematics.WheelSpeeds {
	return tc.prevSetpoint
}

// Ramsete exposes the underlying feedback law, mainly to inspect its pose error.
func (tc *TrackingController) Ramsete() *RamseteController {
	return tc.ramsete
}
