package trajectory

import (
	"github.com/pkg/errors"
)

// ErrInvalidTrajectory is returned, wrapped with a reason, whenever a trajectory cannot be
// generated from the given waypoints and limits. Match it with errors.Is.
var ErrInvalidTrajectory = errors.New("invalid trajectory")

func newInvalidTrajectoryError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidTrajectory, format, args...)
}

// NewMalformedSplineError is returned when a spline cannot be subdivided into a bounded
// number of segments, usually because a control point doubles back on itself.
func NewMalformedSplineError(iterations int) error {
	return newInvalidTrajectoryError("spline could not be subdivided after %d iterations", iterations)
}

// NewInfeasibleConstraintError is returned when a constraint admits no acceleration at a
// point along the path.
func NewInfeasibleConstraintError(distance float64) error {
	return newInvalidTrajectoryError("constraints are infeasible %.3fm along the path: minimum acceleration exceeds maximum", distance)
}
