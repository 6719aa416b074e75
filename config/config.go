// Package config defines the robot configuration: drivetrain characterization, autonomous
// tuning and the named courses the trajectory routines drive.
package config

import (
	"math"
	"sort"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/diffdrive/components/encoder"
	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/motionplan/trajectory"
	"go.viam.com/diffdrive/spatialmath"
	rutils "go.viam.com/diffdrive/utils"
)

// rootPath prefixes validation errors for top level fields.
const rootPath = "config"

// Config is the whole robot configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Drive   Drive             `json:"drive"`
	Auto    Auto              `json:"auto"`
	Courses map[string]Course `json:"courses"`

	// DefaultAutonomous names the routine selected when nothing else is.
	DefaultAutonomous string        `json:"default_autonomous"`
	TickPeriod        time.Duration `json:"tick_period"`
	LogLevel          string        `json:"log_level"`
}

// Drive describes the drivetrain hardware and its characterization.
type Drive struct {
	TrackWidth          float64                        `json:"track_width_meters"`
	WheelDiameter       float64                        `json:"wheel_diameter_meters"`
	CountsPerRevolution int                            `json:"counts_per_revolution"`
	MaxVoltage          float64                        `json:"max_voltage"`
	Feedforward         control.SimpleMotorFeedforward `json:"feedforward"`
	VelocityPID         control.PIDConfig              `json:"velocity_pid"`
}

// Auto holds the trajectory limits and tracking gains.
type Auto struct {
	MaxVelocity     float64               `json:"max_velocity_meters_per_second"`
	MaxAcceleration float64               `json:"max_acceleration_meters_per_second_squared"`
	Ramsete         control.RamseteConfig `json:"ramsete"`
}

// Point is a waypoint in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is a position in meters with a heading in degrees, counter-clockwise from +X.
type Pose struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	HeadingDegrees float64 `json:"heading_degrees"`
}

// Pose2d converts to a spatialmath pose.
func (p Pose) Pose2d() spatialmath.Pose2d {
	return spatialmath.NewPose2d(p.X, p.Y, rutils.DegToRad(p.HeadingDegrees))
}

// Course is a path through interior waypoints between two poses.
type Course struct {
	Start     Pose    `json:"start"`
	Waypoints []Point `json:"waypoints"`
	End       Pose    `json:"end"`
}

// Points returns the interior waypoints as vectors.
func (c Course) Points() []r2.Point {
	return lo.Map(c.Waypoints, func(p Point, _ int) r2.Point {
		return r2.Point{X: p.X, Y: p.Y}
	})
}

// Generate plans the course with cfg.
func (c Course) Generate(cfg *trajectory.Config) (*trajectory.Trajectory, error) {
	return trajectory.Generate(c.Start.Pose2d(), c.Points(), c.End.Pose2d(), cfg)
}

// Validate ensures every coordinate is finite. Whether the course can be driven is only
// known once it is planned.
func (c *Course) Validate(path string) error {
	values := []float64{c.Start.X, c.Start.Y, c.Start.HeadingDegrees, c.End.X, c.End.Y, c.End.HeadingDegrees}
	for _, p := range c.Waypoints {
		values = append(values, p.X, p.Y)
	}
	if lo.ContainsBy(values, func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }) {
		return utils.NewConfigValidationError(path, errors.New("course coordinates must be finite"))
	}
	return nil
}

// Validate ensures the drive description is physical.
func (d *Drive) Validate(path string) error {
	var err error
	if !(d.TrackWidth > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "track_width_meters"))
	}
	if !(d.WheelDiameter > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "wheel_diameter_meters"))
	}
	if d.CountsPerRevolution < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("counts_per_revolution must not be negative, got %d", d.CountsPerRevolution)))
	}
	if !(d.MaxVoltage > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "max_voltage"))
	}
	if ffErr := d.Feedforward.Validate(); ffErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".feedforward", ffErr))
	}
	if pidErr := d.VelocityPID.Validate(); pidErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".velocity_pid", pidErr))
	}
	return err
}

// Validate ensures the limits and gains are usable.
func (a *Auto) Validate(path string) error {
	var err error
	if !(a.MaxVelocity > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "max_velocity_meters_per_second"))
	}
	if !(a.MaxAcceleration > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(path, "max_acceleration_meters_per_second_squared"))
	}
	if rErr := a.Ramsete.Validate(); rErr != nil {
		err = multierr.Append(err, utils.NewConfigValidationError(path+".ramsete", rErr))
	}
	return err
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	err := multierr.Combine(
		c.Drive.Validate("drive"),
		c.Auto.Validate("auto"),
	)
	if !(c.TickPeriod > 0) {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(rootPath, "tick_period"))
	}
	for _, name := range c.CourseNames() {
		course := c.Courses[name]
		err = multierr.Append(err, course.Validate("courses."+name))
	}
	if c.DefaultAutonomous == "" {
		err = multierr.Append(err, utils.NewConfigValidationFieldRequiredError(rootPath, "default_autonomous"))
	}
	return err
}

// CourseNames returns the configured course names in sorted order.
func (c *Config) CourseNames() []string {
	names := lo.Keys(c.Courses)
	sort.Strings(names)
	return names
}

// Kinematics returns the drivetrain kinematics.
func (c *Config) Kinematics() (kinematics.DifferentialDrive, error) {
	return kinematics.NewDifferentialDrive(c.Drive.TrackWidth)
}

// DistancePerPulse returns the encoder resolution in meters per count.
func (c *Config) DistancePerPulse() float64 {
	return encoder.DistancePerPulse(c.Drive.CountsPerRevolution, c.Drive.WheelDiameter)
}

// TrackingConfig returns the trajectory tracker configuration. Both wheels share the
// velocity PID gains.
func (c *Config) TrackingConfig() control.TrackingConfig {
	return control.TrackingConfig{
		Ramsete:     c.Auto.Ramsete,
		Feedforward: c.Drive.Feedforward,
		Left:        c.Drive.VelocityPID,
		Right:       c.Drive.VelocityPID,
	}
}

// TrajectoryConfig returns the planning limits: the autonomous velocity and acceleration,
// the wheel speed limit of the kinematics and the voltage the feedforward may ask for.
func (c *Config) TrajectoryConfig(kin kinematics.DifferentialDrive) *trajectory.Config {
	return trajectory.NewConfig(c.Auto.MaxVelocity, c.Auto.MaxAcceleration).
		SetKinematics(kin).
		AddConstraint(trajectory.DifferentialDriveVoltageConstraint{
			Feedforward: c.Drive.Feedforward,
			Kinematics:  kin,
			MaxVoltage:  c.Drive.MaxVoltage,
		})
}
