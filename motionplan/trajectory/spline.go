package trajectory

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/diffdrive/spatialmath"
)

// tangentScale stretches the end tangents relative to the distance to the neighbouring
// control point. Larger values make the path leave and enter the end poses straighter.
const tangentScale = 1.2

// PoseWithCurvature is a point on a path together with the path's signed curvature there.
type PoseWithCurvature struct {
	Pose      spatialmath.Pose2d
	Curvature float64
}

// CubicHermiteSpline is a single cubic segment defined by its end points and the tangents
// at them, parameterized over t in [0, 1].
type CubicHermiteSpline struct {
	// polynomial coefficients, p(t) = a*t^3 + b*t^2 + c*t + d
	a, b, c, d r2.Point
}

// NewCubicHermiteSpline returns the segment from p0 to p1 leaving with tangent m0 and
// arriving with tangent m1.
func NewCubicHermiteSpline(p0, m0, p1, m1 r2.Point) *CubicHermiteSpline {
	return &CubicHermiteSpline{
		a: p0.Mul(2).Add(m0).Sub(p1.Mul(2)).Add(m1),
		b: p0.Mul(-3).Sub(m0.Mul(2)).Add(p1.Mul(3)).Sub(m1),
		c: m0,
		d: p0,
	}
}

// Point evaluates the spline at t.
func (s *CubicHermiteSpline) Point(t float64) PoseWithCurvature {
	pos := s.a.Mul(t * t * t).Add(s.b.Mul(t * t)).Add(s.c.Mul(t)).Add(s.d)
	vel := s.a.Mul(3 * t * t).Add(s.b.Mul(2 * t)).Add(s.c)
	acc := s.a.Mul(6 * t).Add(s.b.Mul(2))

	var curvature float64
	if speedSq := vel.Dot(vel); speedSq > 0 {
		curvature = vel.Cross(acc) / math.Pow(speedSq, 1.5)
	}
	return PoseWithCurvature{
		Pose:      spatialmath.Pose2d{Point: pos, Theta: math.Atan2(vel.Y, vel.X)},
		Curvature: curvature,
	}
}

// Tangent returns the derivative of the position with respect to t.
func (s *CubicHermiteSpline) Tangent(t float64) r2.Point {
	return s.a.Mul(3 * t * t).Add(s.b.Mul(2 * t)).Add(s.c)
}

// NewClampedSplines fits a C2-continuous chain of cubic segments through start, each
// interior point, and end. The end tangents follow the start and end headings; the interior
// tangents are solved so curvature is continuous at every interior point.
func NewClampedSplines(start spatialmath.Pose2d, interior []r2.Point, end spatialmath.Pose2d) ([]*CubicHermiteSpline, error) {
	points := make([]r2.Point, 0, len(interior)+2)
	points = append(points, start.Point)
	points = append(points, interior...)
	points = append(points, end.Point)

	for i := 1; i < len(points); i++ {
		if points[i].Sub(points[i-1]).Norm() < 1e-9 {
			if len(points) == 2 {
				return nil, newInvalidTrajectoryError("path has zero length: start and end coincide")
			}
			return nil, newInvalidTrajectoryError("control points %d and %d coincide at %v", i-1, i, points[i])
		}
	}
	n := len(points)

	startScale := tangentScale * points[1].Sub(points[0]).Norm()
	endScale := tangentScale * points[n-1].Sub(points[n-2]).Norm()
	tangents := make([]r2.Point, n)
	tangents[0] = spatialmath.Rotate(r2.Point{X: startScale}, start.Theta)
	tangents[n-1] = spatialmath.Rotate(r2.Point{X: endScale}, end.Theta)

	if interiorCount := n - 2; interiorCount > 0 {
		// T[i-1] + 4T[i] + T[i+1] = 3(P[i+1] - P[i-1]) for every interior i, with the
		// clamped end tangents moved to the right hand side.
		lhs := mat.NewDense(interiorCount, interiorCount, nil)
		rhs := mat.NewDense(interiorCount, 2, nil)
		for row := 0; row < interiorCount; row++ {
			lhs.Set(row, row, 4)
			if row > 0 {
				lhs.Set(row, row-1, 1)
			}
			if row < interiorCount-1 {
				lhs.Set(row, row+1, 1)
			}
			d := points[row+2].Sub(points[row]).Mul(3)
			if row == 0 {
				d = d.Sub(tangents[0])
			}
			if row == interiorCount-1 {
				d = d.Sub(tangents[n-1])
			}
			rhs.Set(row, 0, d.X)
			rhs.Set(row, 1, d.Y)
		}
		var solved mat.Dense
		if err := solved.Solve(lhs, rhs); err != nil {
			return nil, newInvalidTrajectoryError("could not solve interior tangents: %v", err)
		}
		for row := 0; row < interiorCount; row++ {
			tangents[row+1] = r2.Point{X: solved.At(row, 0), Y: solved.At(row, 1)}
		}
	}

	splines := make([]*CubicHermiteSpline, 0, n-1)
	for i := 0; i < n-1; i++ {
		splines = append(splines, NewCubicHermiteSpline(points[i], tangents[i], points[i+1], tangents[i+1]))
	}
	return splines, nil
}
