// Package spatialmath defines planar poses and the rigid-body operations used by odometry,
// trajectory generation and tracking.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose2d is a position and heading in a fixed world frame. Theta is in radians and is kept
// wrapped to (-pi, pi].
type Pose2d struct {
	Point r2.Point
	Theta float64
}

// NewPose2d returns a pose at (x, y) facing theta radians.
func NewPose2d(x, y, theta float64) Pose2d {
	return Pose2d{Point: r2.Point{X: x, Y: y}, Theta: WrapAngle(theta)}
}

// NewZeroPose returns the origin facing +X.
func NewZeroPose() Pose2d {
	return Pose2d{}
}

// X returns the x coordinate of the pose.
func (p Pose2d) X() float64 { return p.Point.X }

// Y returns the y coordinate of the pose.
func (p Pose2d) Y() float64 { return p.Point.Y }

// Heading returns the heading of the pose in radians.
func (p Pose2d) Heading() float64 { return p.Theta }

// Distance returns the euclidean distance between the translations of two poses.
func (p Pose2d) Distance(other Pose2d) float64 {
	return p.Point.Sub(other.Point).Norm()
}

// RelativeTo expresses p in the frame of other.
func (p Pose2d) RelativeTo(other Pose2d) Pose2d {
	return Pose2d{
		Point: Rotate(p.Point.Sub(other.Point), -other.Theta),
		Theta: WrapAngle(p.Theta - other.Theta),
	}
}

// TransformBy applies a transform expressed in p's own frame.
func (p Pose2d) TransformBy(t Pose2d) Pose2d {
	return Pose2d{
		Point: p.Point.Add(Rotate(t.Point, p.Theta)),
		Theta: WrapAngle(p.Theta + t.Theta),
	}
}

// Exp integrates a constant-curvature twist starting from p.
func (p Pose2d) Exp(twist Twist2d) Pose2d {
	sinTheta := math.Sin(twist.Dtheta)
	cosTheta := math.Cos(twist.Dtheta)

	var s, c float64
	if math.Abs(twist.Dtheta) < 1e-9 {
		s = 1.0 - twist.Dtheta*twist.Dtheta/6.0
		c = 0.5 * twist.Dtheta
	} else {
		s = sinTheta / twist.Dtheta
		c = (1 - cosTheta) / twist.Dtheta
	}
	transform := Pose2d{
		Point: r2.Point{X: twist.Dx*s - twist.Dy*c, Y: twist.Dx*c + twist.Dy*s},
		Theta: twist.Dtheta,
	}
	return p.TransformBy(transform)
}

// Log returns the twist that maps p onto end, the inverse of Exp.
func (p Pose2d) Log(end Pose2d) Twist2d {
	transform := end.RelativeTo(p)
	dtheta := transform.Theta
	halfDtheta := dtheta / 2.0

	cosMinusOne := math.Cos(dtheta) - 1
	var halfThetaByTanOfHalfDtheta float64
	if math.Abs(cosMinusOne) < 1e-9 {
		halfThetaByTanOfHalfDtheta = 1.0 - dtheta*dtheta/12.0
	} else {
		halfThetaByTanOfHalfDtheta = -(halfDtheta * math.Sin(dtheta)) / cosMinusOne
	}

	translation := Rotate(transform.Point, math.Atan2(-halfDtheta, halfThetaByTanOfHalfDtheta)).
		Mul(math.Hypot(halfThetaByTanOfHalfDtheta, halfDtheta))
	return Twist2d{Dx: translation.X, Dy: translation.Y, Dtheta: dtheta}
}

// Interpolate returns the pose a fraction of the way from p to end. The translation is
// interpolated linearly and the heading along the shortest arc.
func (p Pose2d) Interpolate(end Pose2d, frac float64) Pose2d {
	if frac <= 0 {
		return p
	}
	if frac >= 1 {
		return end
	}
	return Pose2d{
		Point: p.Point.Add(end.Point.Sub(p.Point).Mul(frac)),
		Theta: WrapAngle(p.Theta + WrapAngle(end.Theta-p.Theta)*frac),
	}
}

// AlmostEqual reports whether two poses agree within a translation and heading tolerance.
func (p Pose2d) AlmostEqual(other Pose2d, distTol, angleTol float64) bool {
	return p.Distance(other) <= distTol && math.Abs(WrapAngle(p.Theta-other.Theta)) <= angleTol
}

func (p Pose2d) String() string {
	return fmt.Sprintf("(x: %.4f, y: %.4f, theta: %.4f)", p.Point.X, p.Point.Y, p.Theta)
}

// Twist2d is a change in pose along an arc, expressed in the starting pose's frame.
type Twist2d struct {
	Dx     float64
	Dy     float64
	Dtheta float64
}

// Rotate rotates a vector counter-clockwise by theta radians.
func Rotate(v r2.Point, theta float64) r2.Point {
	sin, cos := math.Sincos(theta)
	return r2.Point{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// WrapAngle wraps an angle in radians into (-pi, pi].
func WrapAngle(theta float64) float64 {
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
