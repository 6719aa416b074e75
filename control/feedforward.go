package control

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/diffdrive/utils"
)

// SimpleMotorFeedforward predicts the voltage needed to hold a velocity and acceleration
// from empirically characterized constants: V = kS*sgn(v) + kV*v + kA*a.
type SimpleMotorFeedforward struct {
	KS float64 `json:"ks_volts"`
	KV float64 `json:"kv_volt_seconds_per_meter"`
	KA float64 `json:"ka_volt_seconds_squared_per_meter"`
}

// Validate ensures the constants describe a physical motor.
func (ff SimpleMotorFeedforward) Validate() error {
	if ff.KS < 0 || ff.KV < 0 || ff.KA < 0 {
		return errors.Errorf("feedforward constants must not be negative, got ks=%v kv=%v ka=%v", ff.KS, ff.KV, ff.KA)
	}
	if ff.KV == 0 && ff.KA == 0 {
		return errors.New("feedforward needs a non-zero kv or ka")
	}
	return nil
}

// Calculate returns the feedforward voltage for the target velocity and acceleration.
func (ff SimpleMotorFeedforward) Calculate(velocity, acceleration float64) float64 {
	return ff.KS*utils.Signum(velocity) + ff.KV*velocity + ff.KA*acceleration
}

// MaxAchievableAcceleration returns the largest acceleration reachable at velocity with
// maxVoltage available.
func (ff SimpleMotorFeedforward) MaxAchievableAcceleration(maxVoltage, velocity float64) float64 {
	if ff.KA == 0 {
		return math.Inf(1)
	}
	return (maxVoltage - ff.KS*utils.Signum(velocity) - velocity*ff.KV) / ff.KA
}

// MinAchievableAcceleration returns the most negative acceleration reachable at velocity
// with maxVoltage available.
func (ff SimpleMotorFeedforward) MinAchievableAcceleration(maxVoltage, velocity float64) float64 {
	if ff.KA == 0 {
		return math.Inf(-1)
	}
	return ff.MaxAchievableAcceleration(-maxVoltage, velocity)
}

// MaxAchievableVelocity returns the steady-state velocity reachable while still
// accelerating at acceleration with maxVoltage available.
func (ff SimpleMotorFeedforward) MaxAchievableVelocity(maxVoltage, acceleration float64) float64 {
	if ff.KV == 0 {
		return math.Inf(1)
	}
	return (maxVoltage - ff.KS - acceleration*ff.KA) / ff.KV
}
