// Package wheeled implements the differential drivetrain subsystem: wheel odometry, arcade
// and tank drive over narrow motor, encoder and gyro interfaces.
package wheeled

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/diffdrive/components/encoder"
	"go.viam.com/diffdrive/components/motor"
	"go.viam.com/diffdrive/components/movementsensor"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/spatialmath"
)

// Hardware is the set of devices a Drivetrain drives and reads.
type Hardware struct {
	LeftMotor    motor.Motor
	RightMotor   motor.Motor
	LeftEncoder  encoder.Encoder
	RightEncoder encoder.Encoder
	Gyro         movementsensor.Gyro
}

// Validate ensures every device is present.
func (hw Hardware) Validate() error {
	var err error
	if hw.LeftMotor == nil {
		err = multierr.Append(err, errors.New("left motor is required"))
	}
	if hw.RightMotor == nil {
		err = multierr.Append(err, errors.New("right motor is required"))
	}
	if hw.LeftEncoder == nil {
		err = multierr.Append(err, errors.New("left encoder is required"))
	}
	if hw.RightEncoder == nil {
		err = multierr.Append(err, errors.New("right encoder is required"))
	}
	if hw.Gyro == nil {
		err = multierr.Append(err, errors.New("gyro is required"))
	}
	return err
}

// Drivetrain is the drive subsystem. Periodic folds the latest encoder and gyro readings
// into the pose estimate and must run before any command reads the pose; the command
// scheduler does this at the start of each tick.
type Drivetrain struct {
	name       string
	logger     logging.Logger
	hw         Hardware
	kin        kinematics.DifferentialDrive
	maxVoltage float64
	odometry   *kinematics.Odometry

	prevLeft, prevRight   float64
	leftVolts, rightVolts float64
}

// NewDrivetrain returns a drivetrain at the origin. maxVoltage is the supply voltage that
// full arcade output maps to.
func NewDrivetrain(
	name string,
	hw Hardware,
	kin kinematics.DifferentialDrive,
	maxVoltage float64,
	logger logging.Logger,
) (*Drivetrain, error) {
	if err := hw.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid drivetrain hardware")
	}
	if !(maxVoltage > 0) {
		return nil, errors.Errorf("max voltage must be positive, got %v", maxVoltage)
	}
	d := &Drivetrain{
		name:       name,
		logger:     logger,
		hw:         hw,
		kin:        kin,
		maxVoltage: maxVoltage,
	}
	d.hw.LeftEncoder.Reset()
	d.hw.RightEncoder.Reset()
	d.odometry = kinematics.NewOdometry(hw.Gyro.Heading(), spatialmath.NewZeroPose())
	return d, nil
}

// Name returns the subsystem name.
func (d *Drivetrain) Name() string {
	return d.name
}

// Periodic updates the pose estimate from the wheel travel since the previous call.
func (d *Drivetrain) Periodic() {
	left := d.hw.LeftEncoder.Distance()
	right := d.hw.RightEncoder.Distance()
	d.odometry.Update(left-d.prevLeft, right-d.prevRight, d.hw.Gyro.Heading())
	d.prevLeft, d.prevRight = left, right
}

// Pose returns the current pose estimate.
func (d *Drivetrain) Pose() spatialmath.Pose2d {
	return d.odometry.Pose()
}

// ResetOdometry zeroes the encoders and moves the pose estimate to pose.
func (d *Drivetrain) ResetOdometry(pose spatialmath.Pose2d) {
	d.ResetEncoders()
	d.odometry.Reset(pose, d.hw.Gyro.Heading())
	d.logger.Debugw("odometry reset", "pose", pose.String())
}

// ResetEncoders zeroes both encoders without moving the pose estimate.
func (d *Drivetrain) ResetEncoders() {
	d.hw.LeftEncoder.Reset()
	d.hw.RightEncoder.Reset()
	d.prevLeft, d.prevRight = 0, 0
}

// ArcadeDrive drives with a forward and a counter-clockwise rotation input, each in
// [-1, 1], scaled to the supply voltage.
func (d *Drivetrain) ArcadeDrive(forward, rotation float64) error {
	left, right := differentialDrive(forward, rotation)
	return d.TankDriveVolts(left*d.maxVoltage, right*d.maxVoltage)
}

// TankDriveVolts sends a voltage to each side.
func (d *Drivetrain) TankDriveVolts(left, right float64) error {
	d.leftVolts, d.rightVolts = left, right
	err := multierr.Combine(
		d.hw.LeftMotor.SetVoltage(left),
		d.hw.RightMotor.SetVoltage(right),
	)
	if err != nil {
		return errors.Wrap(err, "failed to set drive voltages")
	}
	return nil
}

// Stop sends zero volts to both sides.
func (d *Drivetrain) Stop() error {
	return d.TankDriveVolts(0, 0)
}

// Voltages returns the most recently commanded left and right voltages.
func (d *Drivetrain) Voltages() (float64, float64) {
	return d.leftVolts, d.rightVolts
}

// MaxVoltage returns the supply voltage.
func (d *Drivetrain) MaxVoltage() float64 {
	return d.maxVoltage
}

// WheelSpeeds returns the measured wheel velocities.
func (d *Drivetrain) WheelSpeeds() kinematics.WheelSpeeds {
	return kinematics.WheelSpeeds{Left: d.hw.LeftEncoder.Rate(), Right: d.hw.RightEncoder.Rate()}
}

// LeftDistance returns the left wheel travel in meters since the last encoder reset.
func (d *Drivetrain) LeftDistance() float64 {
	return d.hw.LeftEncoder.Distance()
}

// RightDistance returns the right wheel travel in meters since the last encoder reset.
func (d *Drivetrain) RightDistance() float64 {
	return d.hw.RightEncoder.Distance()
}

// AverageDistance returns the mean signed wheel travel.
func (d *Drivetrain) AverageDistance() float64 {
	return (d.LeftDistance() + d.RightDistance()) / 2
}

// AverageTurningDistance returns the mean unsigned wheel travel, the arc each wheel has
// covered while spinning in place.
func (d *Drivetrain) AverageTurningDistance() float64 {
	return (math.Abs(d.LeftDistance()) + math.Abs(d.RightDistance())) / 2
}

// Kinematics returns the drivetrain kinematics.
func (d *Drivetrain) Kinematics() kinematics.DifferentialDrive {
	return d.kin
}

// differentialDrive takes forward and left direction inputs from a first person
// perspective on a 2D plane and converts them to left and right motor powers. negative
// forward means backward and negative left means right.
func differentialDrive(forward, left float64) (float64, float64) {
	if forward < 0 {
		// Mirror the forward turning arc if we go in reverse
		leftMotor, rightMotor := differentialDrive(-forward, left)
		return -leftMotor, -rightMotor
	}

	// convert to polar coordinates, then rotate by 45 degrees so full forward lands on
	// equal powers
	r := math.Hypot(forward, left)
	t := math.Atan2(left, forward) + math.Pi/4
	if t == 0 {
		// keeps the outer motor from getting exactly zero power when turning in place
		t += 1.224647e-16 / 2
	}

	leftMotor := r * math.Cos(t) * math.Sqrt2
	rightMotor := r * math.Sin(t) * math.Sqrt2

	return math.Max(-1, math.Min(leftMotor, 1)), math.Max(-1, math.Min(rightMotor, 1))
}
