package config

import (
	"time"

	"go.viam.com/diffdrive/control"
)

// Names of the courses shipped with the default configuration.
const (
	CourseOne      = "course1"
	CourseTwo      = "course2"
	CourseScenario = "scenario"
)

// Default returns the characterization of the stock Romi drivetrain together with the
// shipped courses.
func Default() *Config {
	return &Config{
		Drive: Drive{
			TrackWidth:          0.142072613,
			WheelDiameter:       0.07,
			CountsPerRevolution: 1440,
			MaxVoltage:          10,
			Feedforward: control.SimpleMotorFeedforward{
				KS: 0.929,
				KV: 6.33,
				KA: 0.0389,
			},
			VelocityPID: control.PIDConfig{P: 0.085},
		},
		Auto: Auto{
			MaxVelocity:     0.8,
			MaxAcceleration: 0.8,
			Ramsete:         control.RamseteConfig{B: 2, Zeta: 0.7},
		},
		Courses:           defaultCourses(),
		DefaultAutonomous: "distance",
		TickPeriod:        20 * time.Millisecond,
		LogLevel:          "info",
	}
}

func defaultCourses() map[string]Course {
	return map[string]Course{
		CourseOne: {
			Start: Pose{},
			Waypoints: []Point{
				{0.84, -0.18},
				{0.78, -0.35},
				{0.7, -0.4},
				{0.5, 0},
				{1, 0},
				{1.3, 0},
				{1.5, 0},
				{1.55, 0.4},
				{1.55, 0.5},
				{1, 0.3},
				{1, -0.3},
				{1.3, 0},
				{1.9, 0.1},
				{1.8, 0.3},
			},
			End: Pose{X: 0, Y: -0.6, HeadingDegrees: 180},
		},
		CourseTwo: {
			Start: Pose{},
			Waypoints: []Point{
				{0.3302, 0},
				{0.4, 0.25},
				{0.76, 0.24},
				{1, 0.23},
				{1.5, 0.15},
				{1.5, -0.2},
				{1.8, 0.1},
				{1.9, 0.35},
				{1.6, 0.36},
				{1.53, 0.26},
				{1.46, 0.1},
				{0.6, 0.3},
				{0.3, 0.32},
				{0.3, 0.34},
				{0.3, 0.4},
				{0.3, 0.43},
				{0.3, 0.45},
				{0.15, 0.45},
			},
			End: Pose{X: -0.08, Y: 0.45, HeadingDegrees: 180},
		},
		CourseScenario: {
			Start:     Pose{},
			Waypoints: []Point{{1, 0}},
			End:       Pose{X: 1, Y: 1, HeadingDegrees: 90},
		},
	}
}
