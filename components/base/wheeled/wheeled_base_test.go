package wheeled

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/diffdrive/components/motor"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/spatialmath"
)

type stubEncoder struct {
	distance, rate float64
	resets         int
}

func (e *stubEncoder) Distance() float64 { return e.distance }
func (e *stubEncoder) Rate() float64     { return e.rate }
func (e *stubEncoder) Reset() {
	e.distance = 0
	e.resets++
}

type stubGyro struct{ heading float64 }

func (g *stubGyro) Heading() float64 { return g.heading }

type stubHardware struct {
	left, right       float64
	leftEnc, rightEnc *stubEncoder
	gyro              *stubGyro
	leftErr           error
	hardware          Hardware
}

func newStubHardware() *stubHardware {
	s := &stubHardware{leftEnc: &stubEncoder{}, rightEnc: &stubEncoder{}, gyro: &stubGyro{}}
	s.hardware = Hardware{
		LeftMotor: motor.VoltageFunc(func(v float64) error {
			if s.leftErr != nil {
				return s.leftErr
			}
			s.left = v
			return nil
		}),
		RightMotor: motor.VoltageFunc(func(v float64) error {
			s.right = v
			return nil
		}),
		LeftEncoder:  s.leftEnc,
		RightEncoder: s.rightEnc,
		Gyro:         s.gyro,
	}
	return s
}

func newTestDrivetrain(t *testing.T, hw *stubHardware) *Drivetrain {
	t.Helper()
	kin, err := kinematics.NewDifferentialDrive(0.3)
	test.That(t, err, test.ShouldBeNil)
	d, err := NewDrivetrain("drivetrain", hw.hardware, kin, 10, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return d
}

func TestNewDrivetrain(t *testing.T) {
	kin, err := kinematics.NewDifferentialDrive(0.3)
	test.That(t, err, test.ShouldBeNil)
	logger := logging.NewTestLogger(t)

	_, err = NewDrivetrain("drivetrain", Hardware{}, kin, 10, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left motor is required")
	test.That(t, err.Error(), test.ShouldContainSubstring, "gyro is required")

	_, err = NewDrivetrain("drivetrain", newStubHardware().hardware, kin, 0, logger)
	test.That(t, err, test.ShouldNotBeNil)

	hw := newStubHardware()
	d := newTestDrivetrain(t, hw)
	test.That(t, d.Name(), test.ShouldEqual, "drivetrain")
	test.That(t, hw.leftEnc.resets, test.ShouldEqual, 1)
	test.That(t, d.Pose(), test.ShouldResemble, spatialmath.NewZeroPose())
}

func TestDifferentialDrive(t *testing.T) {
	for _, c := range []struct {
		forward, left float64
		l, r          float64
	}{
		{0, 0, 0, 0},
		{1, 0, 1, 1},
		{-1, 0, -1, -1},
		{0.5, 0, 0.5, 0.5},
		{0, 1, -1, 1},
		{0, -1, 1, -1},
		{1, 1, 0, 1},
	} {
		l, r := differentialDrive(c.forward, c.left)
		test.That(t, l, test.ShouldAlmostEqual, c.l, 1e-9)
		test.That(t, r, test.ShouldAlmostEqual, c.r, 1e-9)
	}
}

func TestArcadeAndTankDrive(t *testing.T) {
	hw := newStubHardware()
	d := newTestDrivetrain(t, hw)

	test.That(t, d.ArcadeDrive(1, 0), test.ShouldBeNil)
	test.That(t, hw.left, test.ShouldAlmostEqual, 10)
	test.That(t, hw.right, test.ShouldAlmostEqual, 10)

	test.That(t, d.ArcadeDrive(0, 0.5), test.ShouldBeNil)
	test.That(t, hw.left, test.ShouldAlmostEqual, -5, 1e-9)
	test.That(t, hw.right, test.ShouldAlmostEqual, 5, 1e-9)

	test.That(t, d.TankDriveVolts(3, -2), test.ShouldBeNil)
	l, r := d.Voltages()
	test.That(t, l, test.ShouldEqual, 3)
	test.That(t, r, test.ShouldEqual, -2)
	test.That(t, d.MaxVoltage(), test.ShouldEqual, 10)

	test.That(t, d.Stop(), test.ShouldBeNil)
	test.That(t, hw.left, test.ShouldEqual, 0)
	test.That(t, hw.right, test.ShouldEqual, 0)

	hw.leftErr = errors.New("motor unplugged")
	err := d.TankDriveVolts(1, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "motor unplugged")
	// the other side still gets its command
	test.That(t, hw.right, test.ShouldEqual, 1)
}

func TestOdometryAndDistances(t *testing.T) {
	hw := newStubHardware()
	d := newTestDrivetrain(t, hw)

	hw.leftEnc.distance, hw.rightEnc.distance = 0.5, 0.5
	d.Periodic()
	test.That(t, d.Pose().X(), test.ShouldAlmostEqual, 0.5)
	test.That(t, d.AverageDistance(), test.ShouldAlmostEqual, 0.5)

	// spinning in place: only the heading changes
	hw.leftEnc.distance, hw.rightEnc.distance = 0.4, 0.6
	hw.gyro.heading = 0.2 / 0.3
	d.Periodic()
	test.That(t, d.Pose().X(), test.ShouldAlmostEqual, 0.5)
	test.That(t, d.Pose().Heading(), test.ShouldAlmostEqual, 0.2/0.3)
	test.That(t, d.LeftDistance(), test.ShouldEqual, 0.4)
	test.That(t, d.RightDistance(), test.ShouldEqual, 0.6)

	hw.leftEnc.distance, hw.rightEnc.distance = -0.2, 0.2
	test.That(t, d.AverageDistance(), test.ShouldAlmostEqual, 0)
	test.That(t, d.AverageTurningDistance(), test.ShouldAlmostEqual, 0.2)

	hw.leftEnc.rate, hw.rightEnc.rate = 0.1, 0.3
	test.That(t, d.WheelSpeeds(), test.ShouldResemble, kinematics.WheelSpeeds{Left: 0.1, Right: 0.3})
}

func TestResetOdometry(t *testing.T) {
	hw := newStubHardware()
	d := newTestDrivetrain(t, hw)
	hw.gyro.heading = 1.0
	hw.leftEnc.distance, hw.rightEnc.distance = 0.3, 0.3

	target := spatialmath.NewPose2d(1, 2, math.Pi/2)
	d.ResetOdometry(target)
	test.That(t, d.Pose(), test.ShouldResemble, target)
	test.That(t, d.LeftDistance(), test.ShouldEqual, 0)

	// heading is reported relative to the reset
	hw.leftEnc.distance, hw.rightEnc.distance = 0.1, 0.1
	d.Periodic()
	test.That(t, d.Pose().X(), test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, d.Pose().Y(), test.ShouldAlmostEqual, 2.1, 1e-9)
	test.That(t, d.Pose().Heading(), test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	test.That(t, d.Kinematics().TrackWidth(), test.ShouldEqual, 0.3)
}
