// Package robot wires the drivetrain, the operator inputs and the command scheduler into a
// robot and selects and runs its autonomous routines.
package robot

import (
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/diffdrive/command"
	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/components/input"
	"go.viam.com/diffdrive/config"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/motionplan/trajectory"
	"go.viam.com/diffdrive/robot/commands"
)

// Routine names offered besides the course trajectories.
const (
	RoutineDistance = "distance"
	RoutineTime     = "time"
)

// TrajectoryRoutine returns the routine name that drives course.
func TrajectoryRoutine(course string) string {
	return "trajectory:" + course
}

// Hardware is every device the robot uses.
type Hardware struct {
	Drive   wheeled.Hardware
	IO      input.OnBoardIO
	Gamepad input.Gamepad
}

// Validate ensures every device is present.
func (hw Hardware) Validate() error {
	err := hw.Drive.Validate()
	if hw.IO == nil {
		err = multierr.Append(err, errors.New("on-board io is required"))
	}
	if hw.Gamepad == nil {
		err = multierr.Append(err, errors.New("gamepad is required"))
	}
	return err
}

// A Container holds the robot's subsystems, commands and bindings. Everything it owns is
// driven from Tick and is not safe for concurrent use.
type Container struct {
	cfg       *config.Config
	logger    logging.Logger
	clock     clock.Clock
	scheduler *command.Scheduler
	drive     *wheeled.Drivetrain
	chooser   *Chooser

	arcade     *commands.ArcadeDrive
	autonomous command.Command
	planned    *trajectory.Trajectory
}

// New builds a robot from cfg. The arcade drive becomes the drivetrain's default command,
// button A reports presses and releases, and every routine is offered in the chooser with
// cfg.DefaultAutonomous selected.
func New(cfg *config.Config, hw Hardware, logger logging.Logger, clk clock.Clock) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := hw.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid robot hardware")
	}
	if clk == nil {
		clk = clock.New()
	}
	kin, err := cfg.Kinematics()
	if err != nil {
		return nil, err
	}
	drive, err := wheeled.NewDrivetrain("drivetrain", hw.Drive, kin, cfg.Drive.MaxVoltage, logger.Sublogger("drivetrain"))
	if err != nil {
		return nil, err
	}

	c := &Container{
		cfg:       cfg,
		logger:    logger,
		clock:     clk,
		scheduler: command.NewScheduler(logger.Sublogger("scheduler"), clk),
		drive:     drive,
		chooser:   NewChooser(),
	}
	c.scheduler.RegisterSubsystem(drive)

	forward, rotation := input.ArcadeInputs(hw.Gamepad)
	c.arcade = commands.NewArcadeDrive(drive, forward, rotation, logger.Sublogger("arcade"))
	if err := c.scheduler.SetDefaultCommand(drive, c.arcade); err != nil {
		return nil, err
	}

	c.scheduler.OnEdge(command.NewTrigger(hw.IO.ButtonA),
		command.NewPrint(logger, "Button A Pressed"),
		command.NewPrint(logger, "Button A Released"))

	if err := c.registerRoutines(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) registerRoutines() error {
	autoLogger := c.logger.Sublogger("autonomous")
	c.chooser.SetDefaultOption(RoutineDistance, func() (command.Command, error) {
		return commands.NewAutonomousDistance(c.drive, autoLogger), nil
	})
	c.chooser.AddOption(RoutineTime, func() (command.Command, error) {
		return commands.NewAutonomousTime(c.drive, c.clock, autoLogger), nil
	})
	for _, name := range c.cfg.CourseNames() {
		course := c.cfg.Courses[name]
		c.chooser.AddOption(TrajectoryRoutine(name), func() (command.Command, error) {
			traj, err := course.Generate(c.cfg.TrajectoryConfig(c.drive.Kinematics()))
			if err != nil {
				return nil, err
			}
			autoLogger.Infow("planned course", "course", name, "duration", traj.TotalTime(), "length", traj.Length())
			c.planned = traj
			return commands.NewTrajectoryRoutine(c.drive, traj, c.cfg.TrackingConfig(), c.clock, autoLogger)
		})
	}
	if err := c.chooser.Select(c.cfg.DefaultAutonomous); err != nil {
		return errors.Wrap(err, "invalid default_autonomous")
	}
	return nil
}

// Tick runs one scheduler step. Call it at the configured tick period.
func (c *Container) Tick() {
	c.scheduler.Tick()
}

// Schedule schedules commands.
func (c *Container) Schedule(cmds ...command.Command) {
	c.scheduler.Schedule(cmds...)
}

// Cancel interrupts commands.
func (c *Container) Cancel(cmds ...command.Command) {
	c.scheduler.Cancel(cmds...)
}

// SelectAutonomous selects the routine AutonomousInit will run.
func (c *Container) SelectAutonomous(name string) error {
	return c.chooser.Select(name)
}

// SelectedAutonomousCommand builds the selected routine. Trajectory routines are planned
// here, so an unplannable course is reported now.
func (c *Container) SelectedAutonomousCommand() (command.Command, error) {
	return c.chooser.Build()
}

// AutonomousInit schedules the selected routine. When it cannot be built nothing is
// scheduled, the drivetrain keeps its current command and the error is logged and
// returned.
func (c *Container) AutonomousInit() error {
	cmd, err := c.SelectedAutonomousCommand()
	if err != nil {
		c.logger.Errorw("autonomous routine not scheduled", "routine", c.chooser.Selected(), "error", err)
		return err
	}
	c.autonomous = cmd
	c.logger.Infow("autonomous started", "routine", c.chooser.Selected())
	c.Schedule(cmd)
	return nil
}

// TeleopInit cancels the autonomous routine, returning the drivetrain to arcade drive.
func (c *Container) TeleopInit() {
	if c.autonomous != nil {
		c.Cancel(c.autonomous)
		c.autonomous = nil
	}
}

// Autonomous returns the routine started by the last AutonomousInit, nil after TeleopInit.
func (c *Container) Autonomous() command.Command {
	return c.autonomous
}

// AutonomousRunning reports whether the autonomous routine is still scheduled.
func (c *Container) AutonomousRunning() bool {
	return c.autonomous != nil && c.scheduler.IsScheduled(c.autonomous)
}

// PlannedTrajectory returns the trajectory most recently planned for a course routine, or
// nil.
func (c *Container) PlannedTrajectory() *trajectory.Trajectory {
	return c.planned
}

// ArcadeDrive returns the drivetrain default command.
func (c *Container) ArcadeDrive() *commands.ArcadeDrive {
	return c.arcade
}

// Drivetrain returns the drive subsystem.
func (c *Container) Drivetrain() *wheeled.Drivetrain {
	return c.drive
}

// Scheduler returns the command scheduler.
func (c *Container) Scheduler() *command.Scheduler {
	return c.scheduler
}

// Chooser returns the autonomous chooser.
func (c *Container) Chooser() *Chooser {
	return c.chooser
}
