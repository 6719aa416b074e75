package trajectory

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/spatialmath"
	"go.viam.com/diffdrive/utils"
)

var (
	scenarioStart     = spatialmath.NewPose2d(0, 0, 0)
	scenarioWaypoints = []r2.Point{{X: 1, Y: 0}}
	scenarioEnd       = spatialmath.NewPose2d(1, 1, math.Pi/2)
)

func checkProfile(t *testing.T, traj *Trajectory, maxV, maxA float64) {
	t.Helper()
	states := traj.States()
	test.That(t, len(states), test.ShouldBeGreaterThan, 2)
	test.That(t, states[0].Time, test.ShouldEqual, time.Duration(0))
	for i, s := range states {
		test.That(t, s.Velocity, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, s.Velocity, test.ShouldBeLessThanOrEqualTo, maxV+1e-9)
		if i < len(states)-1 {
			test.That(t, math.Abs(s.Acceleration), test.ShouldBeLessThanOrEqualTo, maxA+1e-3)
		}
		if i > 0 {
			test.That(t, s.Time, test.ShouldBeGreaterThan, states[i-1].Time)
		}
	}
}

func TestGenerateScenario(t *testing.T) {
	traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(1, 1))
	test.That(t, err, test.ShouldBeNil)
	checkProfile(t, traj, 1, 1)

	states := traj.States()
	test.That(t, states[0].Velocity, test.ShouldEqual, 0)
	test.That(t, states[len(states)-1].Velocity, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, traj.InitialPose().AlmostEqual(scenarioStart, 1e-9, 1e-9), test.ShouldBeTrue)

	final := traj.Sample(traj.TotalTime())
	test.That(t, final.Pose.AlmostEqual(scenarioEnd, 0.01, utils.DegToRad(1)), test.ShouldBeTrue)
	test.That(t, traj.Sample(traj.TotalTime()+time.Second), test.ShouldResemble, final)
	test.That(t, traj.Sample(-time.Second), test.ShouldResemble, states[0])

	// the interior waypoint is on the path, with the heading solved for C2 continuity
	closest := math.Inf(1)
	for _, s := range states {
		closest = math.Min(closest, s.Pose.Point.Sub(scenarioWaypoints[0]).Norm())
	}
	test.That(t, closest, test.ShouldBeLessThan, 1e-9)

	// states returned are copies
	states[0].Velocity = 100
	test.That(t, traj.States()[0].Velocity, test.ShouldEqual, 0)
}

func TestGenerateCopiesWaypoints(t *testing.T) {
	waypoints := []r2.Point{{X: 1, Y: 0}}
	traj, err := Generate(scenarioStart, waypoints, scenarioEnd, NewConfig(1, 1))
	test.That(t, err, test.ShouldBeNil)
	before := traj.States()
	waypoints[0] = r2.Point{X: 5, Y: 5}
	test.That(t, traj.States(), test.ShouldResemble, before)
}

func TestArcLength(t *testing.T) {
	splines, err := NewClampedSplines(scenarioStart, scenarioWaypoints, scenarioEnd)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, splines, test.ShouldHaveLength, 2)

	params := make([]float64, 2001)
	floats.Span(params, 0, 1)
	speeds := make([]float64, len(params))
	var expected float64
	for _, spline := range splines {
		for i, p := range params {
			speeds[i] = spline.Tangent(p).Norm()
		}
		expected += integrate.Trapezoidal(params, speeds)
	}

	traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(1, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, traj.Length(), test.ShouldAlmostEqual, expected, expected*0.005)

	var chords float64
	states := traj.States()
	for i := 1; i < len(states); i++ {
		chords += states[i].Pose.Distance(states[i-1].Pose)
	}
	test.That(t, traj.Length(), test.ShouldAlmostEqual, chords, 1e-9)
}

func TestSplineContinuity(t *testing.T) {
	splines, err := NewClampedSplines(
		spatialmath.NewPose2d(0, 0, 0),
		[]r2.Point{{X: 0.5, Y: 0.25}, {X: 1, Y: -0.25}, {X: 1.5, Y: 0}},
		spatialmath.NewPose2d(2, 0, 0),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, splines, test.ShouldHaveLength, 4)

	for i := 1; i < len(splines); i++ {
		end := splines[i-1].Point(1)
		start := splines[i].Point(0)
		test.That(t, end.Pose.AlmostEqual(start.Pose, 1e-9, 1e-9), test.ShouldBeTrue)
		test.That(t, end.Curvature, test.ShouldAlmostEqual, start.Curvature, 1e-9)
	}
	// end tangents follow the end headings
	test.That(t, splines[0].Point(0).Pose.Heading(), test.ShouldAlmostEqual, 0)
	test.That(t, splines[3].Point(1).Pose.Heading(), test.ShouldAlmostEqual, 0)
}

func TestSampleInterpolation(t *testing.T) {
	traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(1, 1))
	test.That(t, err, test.ShouldBeNil)

	states := traj.States()
	mid := states[3].Time + (states[4].Time-states[3].Time)/2
	sample := traj.Sample(mid)
	test.That(t, sample.Time.Seconds(), test.ShouldAlmostEqual, mid.Seconds(), 1e-8)
	test.That(t, sample.Velocity, test.ShouldAlmostEqual,
		states[3].Velocity+states[3].Acceleration*(mid-states[3].Time).Seconds(), 1e-9)

	const step = 20 * time.Millisecond
	prev := traj.Sample(0)
	for at := step; at <= traj.TotalTime(); at += step {
		cur := traj.Sample(at)
		test.That(t, math.Abs(cur.Velocity-prev.Velocity), test.ShouldBeLessThanOrEqualTo, 1*step.Seconds()+1e-6)
		test.That(t, cur.Pose.Distance(prev.Pose), test.ShouldBeLessThanOrEqualTo, 1*step.Seconds()+1e-6)
		prev = cur
	}
}

func TestReference(t *testing.T) {
	s := State{Velocity: 0.5, Curvature: 2, Pose: spatialmath.NewPose2d(1, 2, 0.3)}
	test.That(t, s.Reference(), test.ShouldResemble, control.Reference{
		Pose:            s.Pose,
		LinearVelocity:  0.5,
		AngularVelocity: 1,
	})
}

type infeasibleConstraint struct{}

func (infeasibleConstraint) MaxVelocity(_ spatialmath.Pose2d, _, v float64) float64 { return v }

func (infeasibleConstraint) MinMaxAcceleration(spatialmath.Pose2d, float64, float64) (float64, float64) {
	return 1, -1
}

func TestGenerateErrors(t *testing.T) {
	for _, c := range []struct {
		name      string
		start     spatialmath.Pose2d
		waypoints []r2.Point
		end       spatialmath.Pose2d
		cfg       *Config
	}{
		{"nil config", scenarioStart, scenarioWaypoints, scenarioEnd, nil},
		{"zero max velocity", scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(0, 1)},
		{"negative max acceleration", scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(1, -1)},
		{"nan max velocity", scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(math.NaN(), 1)},
		{"negative start velocity", scenarioStart, scenarioWaypoints, scenarioEnd, NewConfig(1, 1).SetStartVelocity(-1)},
		{"zero length", scenarioStart, nil, scenarioStart, NewConfig(1, 1)},
		{"zero length with heading change", scenarioStart, nil, spatialmath.NewPose2d(0, 0, 1), NewConfig(1, 1)},
		{"repeated waypoint", scenarioStart, []r2.Point{{X: 1}, {X: 1}}, scenarioEnd, NewConfig(1, 1)},
		{
			"stalled profile", scenarioStart, scenarioWaypoints, scenarioEnd,
			NewConfig(1, 1).AddConstraint(MaxVelocityConstraint{Max: 0}),
		},
		{
			"infeasible constraint", scenarioStart, scenarioWaypoints, scenarioEnd,
			NewConfig(1, 1).AddConstraint(infeasibleConstraint{}),
		},
	} {
		t.Run(c.name, func(t *testing.T) {
			traj, err := Generate(c.start, c.waypoints, c.end, c.cfg)
			test.That(t, traj, test.ShouldBeNil)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidTrajectory), test.ShouldBeTrue)
		})
	}
}

func TestMalformedSpline(t *testing.T) {
	// runs out along +X and reverses in place at t = 1/sqrt(3)
	spline := NewCubicHermiteSpline(r2.Point{}, r2.Point{X: 1}, r2.Point{}, r2.Point{X: -2})
	_, err := ParameterizeSpline(spline)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidTrajectory), test.ShouldBeTrue)
}

func TestCentripetalConstraint(t *testing.T) {
	const maxCentripetal = 0.5
	cfg := NewConfig(2, 2).AddConstraint(CentripetalAccelerationConstraint{MaxCentripetalAcceleration: maxCentripetal})
	traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, cfg)
	test.That(t, err, test.ShouldBeNil)
	checkProfile(t, traj, 2, 2)
	for _, s := range traj.States() {
		test.That(t, s.Velocity*s.Velocity*math.Abs(s.Curvature), test.ShouldBeLessThanOrEqualTo, maxCentripetal+1e-6)
	}
}

func TestKinematicsConstraint(t *testing.T) {
	kin, err := kinematics.NewDifferentialDrive(0.3)
	test.That(t, err, test.ShouldBeNil)
	const maxSpeed = 0.5
	cfg := NewConfig(maxSpeed, 1).SetKinematics(kin)
	traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, cfg)
	test.That(t, err, test.ShouldBeNil)
	for _, s := range traj.States() {
		wheels := kin.ToWheelSpeeds(kinematics.ChassisSpeeds{Linear: s.Velocity, Angular: s.AngularVelocity()})
		test.That(t, math.Abs(wheels.Left), test.ShouldBeLessThanOrEqualTo, maxSpeed+1e-9)
		test.That(t, math.Abs(wheels.Right), test.ShouldBeLessThanOrEqualTo, maxSpeed+1e-9)
	}
}

func TestVoltageConstraint(t *testing.T) {
	kin, err := kinematics.NewDifferentialDrive(0.142072613)
	test.That(t, err, test.ShouldBeNil)
	ff := control.SimpleMotorFeedforward{KS: 0.929, KV: 6.33, KA: 0.0389}
	constraint := DifferentialDriveVoltageConstraint{Feedforward: ff, Kinematics: kin, MaxVoltage: 6}

	t.Run("straight", func(t *testing.T) {
		minA, maxA := constraint.MinMaxAcceleration(spatialmath.NewZeroPose(), 0, 0.4)
		test.That(t, ff.Calculate(0.4, maxA), test.ShouldAlmostEqual, 6, 1e-9)
		test.That(t, ff.Calculate(0.4, minA), test.ShouldAlmostEqual, -6, 1e-9)
	})

	t.Run("outer wheel bounds a forward turn", func(t *testing.T) {
		const curvature = 2.0
		_, maxA := constraint.MinMaxAcceleration(spatialmath.NewZeroPose(), curvature, 0.4)
		wheels := kin.ToWheelSpeeds(kinematics.ChassisSpeeds{Linear: 0.4, Angular: 0.4 * curvature})
		outerAccel := maxA * (1 + kin.TrackWidth()/2*curvature)
		test.That(t, ff.Calculate(wheels.Right, outerAccel), test.ShouldAlmostEqual, 6, 1e-9)
	})

	t.Run("trajectory", func(t *testing.T) {
		cfg := NewConfig(0.6, 100).SetKinematics(kin).AddConstraint(constraint)
		traj, err := Generate(scenarioStart, scenarioWaypoints, scenarioEnd, cfg)
		test.That(t, err, test.ShouldBeNil)
		for _, s := range traj.States() {
			if s.Acceleration <= 0 {
				continue
			}
			_, maxA := constraint.MinMaxAcceleration(s.Pose, s.Curvature, s.Velocity)
			test.That(t, s.Acceleration, test.ShouldBeLessThanOrEqualTo, maxA+1e-6)
		}
	})
}

func TestTimesStrictlyIncreaseAtHighVelocity(t *testing.T) {
	// the middle step is longer than minStepDistance but takes well under a nanosecond
	states := []constrainedState{
		{distance: 0, maxVelocity: 100},
		{distance: 1e-8, maxVelocity: 100},
		{distance: 1, maxVelocity: 100},
	}
	traj, err := buildTrajectory(states)
	test.That(t, err, test.ShouldBeNil)
	out := traj.States()
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].Time, test.ShouldEqual, time.Duration(0))
	test.That(t, out[1].Time, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, traj.Length(), test.ShouldEqual, 1)

	_, err = buildTrajectory(states[:2])
	test.That(t, errors.Is(err, ErrInvalidTrajectory), test.ShouldBeTrue)
}
