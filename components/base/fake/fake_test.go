package fake

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/components/encoder"
	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/spatialmath"
)

const (
	romiTrackWidth = 0.142072613
	tick           = 20 * time.Millisecond
)

var romiPlant = control.SimpleMotorFeedforward{KS: 0.929, KV: 6.33, KA: 0.0389}

func newRomi(t *testing.T, perPulse float64) *Base {
	t.Helper()
	b, err := NewBase(Config{Plant: romiPlant, TrackWidth: romiTrackWidth, MaxVoltage: 10, DistancePerPulse: perPulse})
	test.That(t, err, test.ShouldBeNil)
	return b
}

func run(b *Base, steps int) {
	for i := 0; i < steps; i++ {
		b.Step(tick)
	}
}

func TestConfig(t *testing.T) {
	_, err := NewBase(Config{Plant: romiPlant, TrackWidth: 0, MaxVoltage: 10})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewBase(Config{Plant: control.SimpleMotorFeedforward{KA: 1}, TrackWidth: 0.1, MaxVoltage: 10})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewBase(Config{Plant: romiPlant, TrackWidth: 0.1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStraightLine(t *testing.T) {
	b := newRomi(t, 0)
	test.That(t, b.LeftMotor.SetVoltage(5), test.ShouldBeNil)
	test.That(t, b.RightMotor.SetVoltage(5), test.ShouldBeNil)
	run(b, 250)

	vss := (5 - romiPlant.KS) / romiPlant.KV
	tau := romiPlant.KA / romiPlant.KV
	test.That(t, b.WheelSpeeds().Left, test.ShouldAlmostEqual, vss, 1e-9)
	test.That(t, b.LeftEncoder.Rate(), test.ShouldAlmostEqual, vss, 1e-9)
	test.That(t, b.Pose().X(), test.ShouldAlmostEqual, vss*(5-tau), 1e-6)
	test.That(t, b.Pose().Y(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, b.Pose().Heading(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, b.LeftEncoder.Distance(), test.ShouldAlmostEqual, b.RightEncoder.Distance(), 1e-12)
	test.That(t, b.Elapsed(), test.ShouldEqual, 5*time.Second)
}

func TestStiction(t *testing.T) {
	b := newRomi(t, 0)
	test.That(t, b.LeftMotor.SetVoltage(0.5), test.ShouldBeNil)
	test.That(t, b.RightMotor.SetVoltage(-0.5), test.ShouldBeNil)
	run(b, 50)
	test.That(t, b.Pose(), test.ShouldResemble, spatialmath.NewZeroPose())
	test.That(t, b.WheelSpeeds(), test.ShouldResemble, kinematics.WheelSpeeds{})
}

func TestSpinInPlace(t *testing.T) {
	b := newRomi(t, 0)
	test.That(t, b.LeftMotor.SetVoltage(-5), test.ShouldBeNil)
	test.That(t, b.RightMotor.SetVoltage(5), test.ShouldBeNil)
	run(b, 50)

	vss := (5 - romiPlant.KS) / romiPlant.KV
	tau := romiPlant.KA / romiPlant.KV
	expected := 2 * vss * (1 - tau) / romiTrackWidth
	test.That(t, b.Gyro.Heading(), test.ShouldAlmostEqual, expected, 1e-6)
	test.That(t, b.Pose().Heading(), test.ShouldAlmostEqual, spatialmath.WrapAngle(expected), 1e-6)
	test.That(t, b.Pose().X(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, b.Pose().Y(), test.ShouldAlmostEqual, 0, 1e-9)
}

func TestCoastToStop(t *testing.T) {
	b := newRomi(t, 0)
	test.That(t, b.LeftMotor.SetVoltage(5), test.ShouldBeNil)
	test.That(t, b.RightMotor.SetVoltage(5), test.ShouldBeNil)
	run(b, 50)
	test.That(t, b.LeftMotor.SetVoltage(0), test.ShouldBeNil)
	test.That(t, b.RightMotor.SetVoltage(0), test.ShouldBeNil)

	prev := b.Pose().X()
	for i := 0; i < 50; i++ {
		b.Step(tick)
		test.That(t, b.Pose().X(), test.ShouldBeGreaterThanOrEqualTo, prev)
		prev = b.Pose().X()
	}
	test.That(t, b.WheelSpeeds(), test.ShouldResemble, kinematics.WheelSpeeds{})
}

func TestEncoder(t *testing.T) {
	perPulse := encoder.DistancePerPulse(1440, 0.07)
	test.That(t, perPulse, test.ShouldAlmostEqual, math.Pi*0.07/1440)

	b := newRomi(t, perPulse)
	test.That(t, b.LeftMotor.SetVoltage(3), test.ShouldBeNil)
	run(b, 10)

	d := b.LeftEncoder.Distance()
	test.That(t, d, test.ShouldBeGreaterThan, 0)
	pulses := d / perPulse
	test.That(t, pulses, test.ShouldAlmostEqual, math.Round(pulses), 1e-6)
	test.That(t, b.LeftEncoder.travelled-d, test.ShouldBeGreaterThanOrEqualTo, 0)
	test.That(t, b.LeftEncoder.travelled-d, test.ShouldBeLessThan, perPulse)

	b.LeftEncoder.Reset()
	test.That(t, b.LeftEncoder.Distance(), test.ShouldEqual, 0)
	test.That(t, b.RightEncoder.Distance(), test.ShouldEqual, 0)
}

func TestMotor(t *testing.T) {
	b := newRomi(t, 0)
	test.That(t, b.LeftMotor.SetVoltage(20), test.ShouldBeNil)
	test.That(t, b.LeftMotor.Voltage(), test.ShouldEqual, 10)
	test.That(t, b.LeftMotor.SetVoltage(-20), test.ShouldBeNil)
	test.That(t, b.LeftMotor.Voltage(), test.ShouldEqual, -10)

	b.RightMotor.Err = errors.New("brownout")
	test.That(t, b.RightMotor.SetVoltage(3), test.ShouldBeError, b.RightMotor.Err)
	test.That(t, b.RightMotor.Voltage(), test.ShouldEqual, 0)
}

func TestSetPose(t *testing.T) {
	b := newRomi(t, 0)
	b.SetPose(spatialmath.NewPose2d(1, 2, math.Pi/2))
	test.That(t, b.Gyro.Heading(), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, b.Pose().X(), test.ShouldEqual, 1)
}

func TestDrivetrainOdometry(t *testing.T) {
	b := newRomi(t, encoder.DistancePerPulse(1440, 0.07))
	kin, err := kinematics.NewDifferentialDrive(romiTrackWidth)
	test.That(t, err, test.ShouldBeNil)
	drive, err := wheeled.NewDrivetrain("drivetrain", b.Hardware(), kin, 10, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 150; i++ {
		drive.Periodic()
		test.That(t, drive.ArcadeDrive(0.5, 0.05), test.ShouldBeNil)
		b.Step(tick)
	}
	drive.Periodic()

	truth := b.Pose()
	test.That(t, truth.Distance(spatialmath.NewZeroPose()), test.ShouldBeGreaterThan, 0.5)
	test.That(t, drive.Pose().AlmostEqual(truth, 0.005, 1e-9), test.ShouldBeTrue)

	speeds := drive.WheelSpeeds()
	test.That(t, speeds, test.ShouldResemble, b.WheelSpeeds())
	test.That(t, speeds.Right, test.ShouldBeGreaterThan, speeds.Left)
}
