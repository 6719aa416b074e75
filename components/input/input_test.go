package input_test

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/diffdrive/components/input"
	"go.viam.com/diffdrive/components/input/fake"
)

func TestNormalizeTriggerWithDeadband(t *testing.T) {
	for _, c := range []struct {
		raw, deadband, expected float64
	}{
		{-0.82, 0.1, 0},
		{-0.75, 0.1, 0},
		{-0.72, 0.1, 0},
		{0, 0.1, (0.82 - 0.1) / (1.64 - 0.1)},
		{1, 0.1, (1.82 - 0.1) / (1.64 - 0.1)},
		{-1, 0.1, -(0.18 - 0.1) / (1.64 - 0.1)},
		{0, -0.1, (0.82 - 0.1) / (1.64 - 0.1)},
		{-0.82, 0, 0},
		{0.82, 0, 1},
	} {
		test.That(t, input.NormalizeTriggerWithDeadband(c.raw, c.deadband), test.ShouldAlmostEqual, c.expected, 1e-12)
	}
}

func TestNormalizeSteering(t *testing.T) {
	test.That(t, input.NormalizeSteering(0), test.ShouldEqual, 0)
	test.That(t, input.NormalizeSteering(0.5), test.ShouldAlmostEqual, 0.75)
	test.That(t, input.NormalizeSteering(-1), test.ShouldAlmostEqual, -1.5)
}

func TestArcadeInputs(t *testing.T) {
	pad := fake.NewGamepad()
	forward, rotation := input.ArcadeInputs(pad)
	test.That(t, forward(), test.ShouldEqual, 0)
	test.That(t, rotation(), test.ShouldEqual, 0)

	pad.SetAxis(input.AxisRightTrigger, 0.82)
	test.That(t, forward(), test.ShouldAlmostEqual, (1.64-0.1)/(1.64-0.1))

	pad.SetAxis(input.AxisLeftTrigger, 0.82)
	test.That(t, forward(), test.ShouldAlmostEqual, 0)

	pad.SetAxis(input.AxisRightTrigger, -0.82)
	test.That(t, forward(), test.ShouldBeLessThan, 0)

	pad.SetAxis(input.AxisSteering, -0.4)
	test.That(t, rotation(), test.ShouldAlmostEqual, -0.6)
}

func TestOnBoardIO(t *testing.T) {
	var io fake.OnBoardIO
	var dev input.OnBoardIO = &io
	test.That(t, dev.ButtonA(), test.ShouldBeFalse)

	io.SetButtons(true, false, true)
	test.That(t, dev.ButtonA(), test.ShouldBeTrue)
	test.That(t, dev.ButtonB(), test.ShouldBeFalse)
	test.That(t, dev.ButtonC(), test.ShouldBeTrue)

	io.PressA(false)
	test.That(t, dev.ButtonA(), test.ShouldBeFalse)
	test.That(t, dev.ButtonC(), test.ShouldBeTrue)

	dev.SetRedLED(true)
	dev.SetYellowLED(true)
	dev.SetYellowLED(false)
	g, r, y := io.LEDs()
	test.That(t, g, test.ShouldBeFalse)
	test.That(t, r, test.ShouldBeTrue)
	test.That(t, y, test.ShouldBeFalse)
}
