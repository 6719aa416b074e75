package robot

import (
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/diffdrive/components/base/fake"
	inputfake "go.viam.com/diffdrive/components/input/fake"
	"go.viam.com/diffdrive/config"
	"go.viam.com/diffdrive/logging"
)

// A Simulation is a robot running against the simulated drivetrain plant and input devices.
type Simulation struct {
	*Container
	Base    *fake.Base
	IO      *inputfake.OnBoardIO
	Gamepad *inputfake.Gamepad
}

// SimulatedBase returns the plant configuration matching cfg's drivetrain.
func SimulatedBase(cfg *config.Config) fake.Config {
	return fake.Config{
		Plant:            cfg.Drive.Feedforward,
		TrackWidth:       cfg.Drive.TrackWidth,
		MaxVoltage:       cfg.Drive.MaxVoltage,
		DistancePerPulse: cfg.DistancePerPulse(),
	}
}

// NewSimulation builds a robot from cfg on simulated hardware.
func NewSimulation(cfg *config.Config, logger logging.Logger, clk clock.Clock) (*Simulation, error) {
	base, err := fake.NewBase(SimulatedBase(cfg))
	if err != nil {
		return nil, err
	}
	sim := &Simulation{
		Base:    base,
		IO:      &inputfake.OnBoardIO{},
		Gamepad: inputfake.NewGamepad(),
	}
	sim.Container, err = New(cfg, Hardware{Drive: base.Hardware(), IO: sim.IO, Gamepad: sim.Gamepad}, logger, clk)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

// Step runs one robot tick and then advances the plant by dt under the voltages it set.
// Advancing the clock is left to the caller.
func (s *Simulation) Step(dt time.Duration) {
	s.Tick()
	s.Base.Step(dt)
}
