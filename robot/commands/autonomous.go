package commands

import (
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/diffdrive/command"
	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/logging"
)

// autonomousDistance is the leg length of the distance routine, ten inches.
const autonomousDistance = 0.254

// NewAutonomousDistance returns the distance based routine: back up, turn around, back up
// again and turn back.
func NewAutonomousDistance(drive *wheeled.Drivetrain, logger logging.Logger) *command.SequentialGroup {
	return command.NewSequence("autonomous distance",
		NewDriveDistance(drive, -0.5, autonomousDistance, logger),
		NewTurnDegrees(drive, -0.5, 180, logger),
		NewDriveDistance(drive, -0.5, autonomousDistance, logger),
		NewTurnDegrees(drive, 0.5, 180, logger),
	)
}

// NewAutonomousTime returns the time based version of the distance routine.
func NewAutonomousTime(drive *wheeled.Drivetrain, clk clock.Clock, logger logging.Logger) *command.SequentialGroup {
	return command.NewSequence("autonomous time",
		NewDriveTime(drive, -0.6, 2*time.Second, clk, logger),
		NewTurnTime(drive, -0.5, 1300*time.Millisecond, clk, logger),
		NewDriveTime(drive, -0.6, 2*time.Second, clk, logger),
		NewTurnTime(drive, 0.5, 1300*time.Millisecond, clk, logger),
	)
}
