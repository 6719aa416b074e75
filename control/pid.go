// Package control implements the feedback and feedforward laws used to drive a
// differential base along a trajectory.
package control

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// PIDConfig is the serialized form of a PID controller's gains.
type PIDConfig struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
	// IntegralLimit bounds the magnitude of the accumulated integral term. Zero means
	// unbounded.
	IntegralLimit float64 `json:"integral_limit,omitempty"`
}

// Validate ensures the gains are usable.
func (cfg PIDConfig) Validate() error {
	for name, v := range map[string]float64{"p": cfg.P, "i": cfg.I, "d": cfg.D, "integral_limit": cfg.IntegralLimit} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("pid gain %s must be finite, got %v", name, v)
		}
	}
	if cfg.IntegralLimit < 0 {
		return errors.Errorf("pid integral_limit must not be negative, got %v", cfg.IntegralLimit)
	}
	return nil
}

// PIDController is a discrete PID controller. The integral and derivative terms are
// optional; with only P set it is a plain proportional regulator.
type PIDController struct {
	cfg       PIDConfig
	int       float64
	prevError float64
	hasPrev   bool
}

// NewPIDController returns a controller with the given gains.
func NewPIDController(cfg PIDConfig) (*PIDController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PIDController{cfg: cfg}, nil
}

// Calculate returns the control output for the current measurement and setpoint, dt is the
// time since the previous call.
func (p *PIDController) Calculate(measurement, setPoint float64, dt time.Duration) float64 {
	err := setPoint - measurement
	dtS := dt.Seconds()

	var deriv float64
	if dtS > 0 {
		if p.cfg.I != 0 {
			p.int += p.cfg.I * err * dtS
			if p.cfg.IntegralLimit > 0 {
				p.int = math.Max(-p.cfg.IntegralLimit, math.Min(p.int, p.cfg.IntegralLimit))
			}
		}
		if p.hasPrev {
			deriv = (err - p.prevError) / dtS
		}
	}
	p.prevError = err
	p.hasPrev = true

	return p.cfg.P*err + p.int + p.cfg.D*deriv
}

// Reset clears the accumulated integral and derivative history.
func (p *PIDController) Reset() {
	p.int = 0
	p.prevError = 0
	p.hasPrev = false
}

// Config returns the gains the controller was built with.
func (p *PIDController) Config() PIDConfig {
	return p.cfg
}
