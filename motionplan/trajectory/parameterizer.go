package trajectory

import (
	"math"
)

// Subdivision limits. A segment is split until the twist between its ends is inside all
// three, so a straight line between consecutive samples stays close to the curve.
const (
	maxSegmentDx     = 0.127
	maxSegmentDy     = 0.00127
	maxSegmentDtheta = 0.0872

	// maxSubdivisions bounds the work per spline. A well formed spline needs far fewer.
	maxSubdivisions = 5000
)

type interval struct {
	t0, t1 float64
}

// ParameterizeSpline samples a spline densely enough that consecutive samples differ by at
// most the subdivision limits. The first sample is at t = 0 and the last at t = 1.
func ParameterizeSpline(spline *CubicHermiteSpline) ([]PoseWithCurvature, error) {
	samples := []PoseWithCurvature{spline.Point(0)}
	stack := []interval{{0, 1}}

	iterations := 0
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		start := spline.Point(current.t0)
		end := spline.Point(current.t1)
		twist := start.Pose.Log(end.Pose)
		if math.Abs(twist.Dy) > maxSegmentDy ||
			math.Abs(twist.Dx) > maxSegmentDx ||
			math.Abs(twist.Dtheta) > maxSegmentDtheta {
			mid := (current.t0 + current.t1) / 2
			// second half first so the first half is popped next
			stack = append(stack, interval{mid, current.t1}, interval{current.t0, mid})
		} else {
			samples = append(samples, end)
		}

		iterations++
		if iterations >= maxSubdivisions {
			return nil, NewMalformedSplineError(iterations)
		}
	}
	return samples, nil
}

// parameterizeSplines parameterizes a chain of splines into one sample list, dropping the
// duplicated sample where consecutive splines meet.
func parameterizeSplines(splines []*CubicHermiteSpline) ([]PoseWithCurvature, error) {
	var samples []PoseWithCurvature
	for i, spline := range splines {
		points, err := ParameterizeSpline(spline)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			points = points[1:]
		}
		samples = append(samples, points...)
	}
	return samples, nil
}
