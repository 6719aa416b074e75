package trajectory

import (
	"github.com/golang/geo/r2"

	"go.viam.com/diffdrive/spatialmath"
)

// Generate builds a trajectory that leaves start, passes through every interior waypoint
// in order, and arrives at end, subject to cfg. Inputs are copied; callers may reuse them.
// All failures wrap ErrInvalidTrajectory.
func Generate(start spatialmath.Pose2d, waypoints []r2.Point, end spatialmath.Pose2d, cfg *Config) (*Trajectory, error) {
	if cfg == nil {
		return nil, newInvalidTrajectoryError("no trajectory config given")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	splines, err := NewClampedSplines(start, append([]r2.Point(nil), waypoints...), end)
	if err != nil {
		return nil, err
	}
	points, err := parameterizeSplines(splines)
	if err != nil {
		return nil, err
	}
	return timeParameterize(points, cfg)
}
