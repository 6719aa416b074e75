package commands

import (
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/diffdrive/command"
	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/motionplan/trajectory"
)

// FollowTrajectory tracks a trajectory with a TrackingController. Each tick it samples the
// trajectory at the time elapsed since Initialize and sends the resulting voltages to the
// drivetrain. It finishes once the trajectory's total time has passed and stops the
// drivetrain on the way out.
type FollowTrajectory struct {
	driveCommand
	traj    *trajectory.Trajectory
	tracker *control.TrackingController
	clock   clock.Clock

	start time.Time
	prev  time.Time
}

// NewFollowTrajectory returns a command following traj on drive.
func NewFollowTrajectory(
	drive *wheeled.Drivetrain,
	traj *trajectory.Trajectory,
	cfg control.TrackingConfig,
	clk clock.Clock,
	logger logging.Logger,
) (*FollowTrajectory, error) {
	tracker, err := control.NewTrackingController(cfg, drive.Kinematics())
	if err != nil {
		return nil, err
	}
	return &FollowTrajectory{
		driveCommand: driveCommand{drive: drive, logger: logger},
		traj:         traj,
		tracker:      tracker,
		clock:        clk,
	}, nil
}

// Name returns "follow trajectory".
func (c *FollowTrajectory) Name() string { return "follow trajectory" }

// Initialize starts the trajectory clock.
func (c *FollowTrajectory) Initialize() {
	c.start = c.clock.Now()
	c.prev = c.start
	c.tracker.Reset(c.traj.Sample(0).Reference())
}

// Execute tracks the current trajectory sample.
func (c *FollowTrajectory) Execute() {
	now := c.clock.Now()
	dt := now.Sub(c.prev)
	c.prev = now

	ref := c.traj.Sample(now.Sub(c.start)).Reference()
	volts := c.tracker.Calculate(c.drive.Pose(), ref, c.drive.WheelSpeeds(), dt)
	c.tank(volts.Left, volts.Right)
}

// IsFinished reports whether the trajectory's total time has elapsed.
func (c *FollowTrajectory) IsFinished() bool {
	return c.clock.Since(c.start) >= c.traj.TotalTime()
}

// End stops the drivetrain.
func (c *FollowTrajectory) End(interrupted bool) {
	c.tank(0, 0)
	poseErr := c.tracker.Ramsete().PoseError()
	c.logger.Infow("trajectory ended",
		"interrupted", interrupted,
		"elapsed", c.clock.Since(c.start),
		"pose", c.drive.Pose().String(),
		"pose_error", poseErr.String(),
		"wheel_setpoint", c.tracker.Setpoint())
}

// Elapsed returns the time since the command was initialized.
func (c *FollowTrajectory) Elapsed() time.Duration {
	return c.clock.Since(c.start)
}

// Tracker exposes the tracking controller.
func (c *FollowTrajectory) Tracker() *control.TrackingController {
	return c.tracker
}

// NewTrajectoryRoutine returns the full trajectory autonomous routine: reset the pose
// estimate to the trajectory's initial pose, follow it, then command zero volts.
func NewTrajectoryRoutine(
	drive *wheeled.Drivetrain,
	traj *trajectory.Trajectory,
	cfg control.TrackingConfig,
	clk clock.Clock,
	logger logging.Logger,
) (*command.SequentialGroup, error) {
	follow, err := NewFollowTrajectory(drive, traj, cfg, clk, logger)
	if err != nil {
		return nil, err
	}
	stop := driveCommand{drive: drive, logger: logger}
	return command.NewSequence("trajectory routine",
		command.NewInstant("reset odometry", func() { drive.ResetOdometry(traj.InitialPose()) }, drive),
		follow,
		command.NewInstant("stop", func() { stop.tank(0, 0) }, drive),
	), nil
}
