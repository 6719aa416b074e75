// Package commands contains the drivetrain commands: manual arcade drive, the timed and
// distance based autonomous moves and trajectory following.
package commands

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/diffdrive/command"
	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/logging"
)

// driveCommand carries what every drivetrain command shares: the drivetrain it requires and
// a logger for actuation failures.
type driveCommand struct {
	drive  *wheeled.Drivetrain
	logger logging.Logger
}

// Requirements returns the drivetrain.
func (c driveCommand) Requirements() []command.Subsystem {
	return []command.Subsystem{c.drive}
}

// arcade and tank log a failed write instead of returning it. The next tick writes again.
func (c driveCommand) arcade(forward, rotation float64) {
	if err := c.drive.ArcadeDrive(forward, rotation); err != nil {
		c.logger.Errorw("arcade drive failed", "error", err)
	}
}

func (c driveCommand) tank(left, right float64) {
	if err := c.drive.TankDriveVolts(left, right); err != nil {
		c.logger.Errorw("tank drive failed", "error", err)
	}
}

// ArcadeDrive drives from operator supplied forward and rotation inputs, each read every
// tick. It never finishes and is meant to be the drivetrain default command.
type ArcadeDrive struct {
	driveCommand
	forward  func() float64
	rotation func() float64
}

// NewArcadeDrive returns a manual drive command.
func NewArcadeDrive(
	drive *wheeled.Drivetrain,
	forward, rotation func() float64,
	logger logging.Logger,
) *ArcadeDrive {
	return &ArcadeDrive{
		driveCommand: driveCommand{drive: drive, logger: logger},
		forward:      forward,
		rotation:     rotation,
	}
}

// Name returns "arcade drive".
func (c *ArcadeDrive) Name() string { return "arcade drive" }

// Initialize does nothing.
func (c *ArcadeDrive) Initialize() {}

// Execute sends the current inputs to the drivetrain.
func (c *ArcadeDrive) Execute() {
	c.arcade(c.forward(), c.rotation())
}

// IsFinished is always false.
func (c *ArcadeDrive) IsFinished() bool { return false }

// End does nothing; the next owner of the drivetrain sets its output.
func (c *ArcadeDrive) End(bool) {}

// DriveDistance drives straight at a fixed arcade speed until the average wheel travel
// reaches a distance.
type DriveDistance struct {
	driveCommand
	speed    float64
	distance float64
}

// NewDriveDistance returns a command driving at speed (in [-1, 1], negative backwards)
// until the wheels have covered meters.
func NewDriveDistance(drive *wheeled.Drivetrain, speed, meters float64, logger logging.Logger) *DriveDistance {
	return &DriveDistance{
		driveCommand: driveCommand{drive: drive, logger: logger},
		speed:        speed,
		distance:     meters,
	}
}

// Name returns "drive distance".
func (c *DriveDistance) Name() string { return "drive distance" }

// Initialize stops the drivetrain and zeroes the encoders.
func (c *DriveDistance) Initialize() {
	c.arcade(0, 0)
	c.drive.ResetEncoders()
}

// Execute drives straight.
func (c *DriveDistance) Execute() {
	c.arcade(c.speed, 0)
}

// IsFinished reports whether the distance has been covered in either direction.
func (c *DriveDistance) IsFinished() bool {
	return math.Abs(c.drive.AverageDistance()) >= c.distance
}

// End stops the drivetrain.
func (c *DriveDistance) End(interrupted bool) {
	c.arcade(0, 0)
	c.logger.Debugw("drive distance ended",
		"speed", c.speed,
		"distance", c.distance,
		"left", c.drive.LeftDistance(),
		"right", c.drive.RightDistance(),
		"interrupted", interrupted)
}

// TurnDegrees spins in place at a fixed arcade rotation until the wheels have covered the
// arc of the requested angle.
type TurnDegrees struct {
	driveCommand
	speed   float64
	degrees float64
}

// NewTurnDegrees returns a command spinning at speed (in [-1, 1], positive
// counter-clockwise) through degrees.
func NewTurnDegrees(drive *wheeled.Drivetrain, speed, degrees float64, logger logging.Logger) *TurnDegrees {
	return &TurnDegrees{
		driveCommand: driveCommand{drive: drive, logger: logger},
		speed:        speed,
		degrees:      degrees,
	}
}

// Name returns "turn degrees".
func (c *TurnDegrees) Name() string { return "turn degrees" }

// Initialize stops the drivetrain and zeroes the encoders.
func (c *TurnDegrees) Initialize() {
	c.arcade(0, 0)
	c.drive.ResetEncoders()
}

// Execute spins.
func (c *TurnDegrees) Execute() {
	c.arcade(0, c.speed)
}

// IsFinished compares the wheel travel against the arc a wheel covers turning degrees in
// place: a full turn moves each wheel by pi times the track width.
func (c *TurnDegrees) IsFinished() bool {
	metersPerDegree := math.Pi * c.drive.Kinematics().TrackWidth() / 360
	return c.drive.AverageTurningDistance() >= metersPerDegree*c.degrees
}

// End stops the drivetrain.
func (c *TurnDegrees) End(bool) {
	c.arcade(0, 0)
}

// timedArcade holds a fixed arcade output for a duration.
type timedArcade struct {
	driveCommand
	name              string
	clock             clock.Clock
	duration          time.Duration
	forward, rotation float64
	start             time.Time
}

// NewDriveTime returns a command driving straight at speed for duration.
func NewDriveTime(
	drive *wheeled.Drivetrain,
	speed float64,
	duration time.Duration,
	clk clock.Clock,
	logger logging.Logger,
) command.Command {
	return &timedArcade{
		driveCommand: driveCommand{drive: drive, logger: logger},
		name:         "drive time",
		clock:        clk,
		duration:     duration,
		forward:      speed,
	}
}

// NewTurnTime returns a command spinning in place at speed for duration.
func NewTurnTime(
	drive *wheeled.Drivetrain,
	speed float64,
	duration time.Duration,
	clk clock.Clock,
	logger logging.Logger,
) command.Command {
	return &timedArcade{
		driveCommand: driveCommand{drive: drive, logger: logger},
		name:         "turn time",
		clock:        clk,
		duration:     duration,
		rotation:     speed,
	}
}

func (c *timedArcade) Name() string { return c.name }

func (c *timedArcade) Initialize() {
	c.start = c.clock.Now()
	c.arcade(0, 0)
}

func (c *timedArcade) Execute() {
	c.arcade(c.forward, c.rotation)
}

func (c *timedArcade) IsFinished() bool {
	return c.clock.Since(c.start) >= c.duration
}

func (c *timedArcade) End(bool) {
	c.arcade(0, 0)
}
