// Package fake implements in-memory input devices for tests and the simulator.
package fake

import (
	"sync"

	"go.viam.com/diffdrive/components/input"
)

// OnBoardIO is a settable on-board IO. Buttons and LEDs may be touched from another
// goroutine than the one ticking the robot.
type OnBoardIO struct {
	mu      sync.Mutex
	buttons [3]bool
	leds    [3]bool
}

const (
	green = iota
	red
	yellow
)

// SetButtons sets the pressed state of buttons A, B and C.
func (io *OnBoardIO) SetButtons(a, b, c bool) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.buttons = [3]bool{a, b, c}
}

// PressA sets the state of button A only.
func (io *OnBoardIO) PressA(pressed bool) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.buttons[0] = pressed
}

func (io *OnBoardIO) button(i int) bool {
	io.mu.Lock()
	defer io.mu.Unlock()
	return io.buttons[i]
}

func (io *OnBoardIO) setLED(i int, on bool) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.leds[i] = on
}

// ButtonA reports whether button A is pressed.
func (io *OnBoardIO) ButtonA() bool { return io.button(0) }

// ButtonB reports whether button B is pressed.
func (io *OnBoardIO) ButtonB() bool { return io.button(1) }

// ButtonC reports whether button C is pressed.
func (io *OnBoardIO) ButtonC() bool { return io.button(2) }

// SetGreenLED switches the green LED.
func (io *OnBoardIO) SetGreenLED(on bool) { io.setLED(green, on) }

// SetRedLED switches the red LED.
func (io *OnBoardIO) SetRedLED(on bool) { io.setLED(red, on) }

// SetYellowLED switches the yellow LED.
func (io *OnBoardIO) SetYellowLED(on bool) { io.setLED(yellow, on) }

// LEDs returns the green, red and yellow LED states.
func (io *OnBoardIO) LEDs() (bool, bool, bool) {
	io.mu.Lock()
	defer io.mu.Unlock()
	return io.leds[green], io.leds[red], io.leds[yellow]
}

// Gamepad holds raw axis values. Unset axes read 0.
type Gamepad struct {
	mu   sync.Mutex
	axes map[int]float64
}

// NewGamepad returns a gamepad with both analog triggers released.
func NewGamepad() *Gamepad {
	return &Gamepad{axes: map[int]float64{
		input.AxisLeftTrigger:  -input.TriggerOffset,
		input.AxisRightTrigger: -input.TriggerOffset,
	}}
}

// SetAxis sets the raw value of an axis.
func (g *Gamepad) SetAxis(channel int, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.axes == nil {
		g.axes = map[int]float64{}
	}
	g.axes[channel] = value
}

// Axis returns the raw value of an axis.
func (g *Gamepad) Axis(channel int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.axes[channel]
}
