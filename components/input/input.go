// Package input holds the operator-facing devices: the on-board buttons and LEDs and the
// gamepad axes the arcade drive reads.
package input

import (
	"math"
)

// OnBoardIO is the board's built-in digital IO: three push buttons and three LEDs.
type OnBoardIO interface {
	ButtonA() bool
	ButtonB() bool
	ButtonC() bool
	SetGreenLED(on bool)
	SetRedLED(on bool)
	SetYellowLED(on bool)
}

// Gamepad reads raw axis values, nominally in [-1, 1].
type Gamepad interface {
	Axis(channel int) float64
}

// Axis channels of the gamepad the arcade drive is mapped to.
const (
	AxisSteering     = 0
	AxisLeftTrigger  = 3
	AxisRightTrigger = 4
)

// TriggerDeadband is the dead zone applied to both analog triggers.
const TriggerDeadband = 0.1

// TriggerOffset is the raw reading of a released trigger, negated.
const TriggerOffset = 0.82

// NormalizeTriggerWithDeadband maps a raw analog trigger reading onto roughly [0, 1]. Released
// triggers rest near -TriggerOffset. Readings within deadband of rest become 0 and the rest
// of the travel is rescaled so a fully pressed trigger reads about 1.
func NormalizeTriggerWithDeadband(raw, deadband float64) float64 {
	deadband = math.Abs(deadband)
	raw += TriggerOffset
	if math.Abs(raw) <= deadband {
		return 0
	}
	return math.Copysign(math.Abs(raw)-deadband, raw) / (TriggerOffset*2 - deadband)
}

// NormalizeSteering scales the steering stick so a partial deflection already turns hard.
func NormalizeSteering(raw float64) float64 {
	return raw * 1.5
}

// ArcadeInputs returns the forward and rotation suppliers for arcade drive: the right
// trigger accelerates, the left trigger reverses and the stick steers.
func ArcadeInputs(pad Gamepad) (forward, rotation func() float64) {
	forward = func() float64 {
		return NormalizeTriggerWithDeadband(pad.Axis(AxisRightTrigger), TriggerDeadband) -
			NormalizeTriggerWithDeadband(pad.Axis(AxisLeftTrigger), TriggerDeadband)
	}
	rotation = func() float64 {
		return NormalizeSteering(pad.Axis(AxisSteering))
	}
	return forward, rotation
}
