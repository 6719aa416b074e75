package trajectory

import (
	"go.viam.com/diffdrive/kinematics"
)

// Config holds the limits a generated trajectory must respect.
type Config struct {
	maxVelocity     float64
	maxAcceleration float64
	startVelocity   float64
	endVelocity     float64
	constraints     []Constraint
}

// NewConfig returns a config with the given velocity (m/s) and acceleration (m/s^2) limits
// that starts and ends at rest.
func NewConfig(maxVelocity, maxAcceleration float64) *Config {
	return &Config{maxVelocity: maxVelocity, maxAcceleration: maxAcceleration}
}

// SetKinematics limits each wheel of a differential base to the config's maximum velocity.
func (c *Config) SetKinematics(kin kinematics.DifferentialDrive) *Config {
	return c.AddConstraint(DifferentialDriveKinematicsConstraint{Kinematics: kin, MaxSpeed: c.maxVelocity})
}

// AddConstraint appends constraints to the config.
func (c *Config) AddConstraint(constraints ...Constraint) *Config {
	c.constraints = append(c.constraints, constraints...)
	return c
}

// SetStartVelocity sets the velocity the trajectory begins at.
func (c *Config) SetStartVelocity(v float64) *Config {
	c.startVelocity = v
	return c
}

// SetEndVelocity sets the velocity the trajectory ends at.
func (c *Config) SetEndVelocity(v float64) *Config {
	c.endVelocity = v
	return c
}

// MaxVelocity returns the global velocity limit.
func (c *Config) MaxVelocity() float64 { return c.maxVelocity }

// MaxAcceleration returns the global acceleration limit.
func (c *Config) MaxAcceleration() float64 { return c.maxAcceleration }

// StartVelocity returns the velocity the trajectory begins at.
func (c *Config) StartVelocity() float64 { return c.startVelocity }

// EndVelocity returns the velocity the trajectory ends at.
func (c *Config) EndVelocity() float64 { return c.endVelocity }

// Constraints returns a copy of the configured constraints.
func (c *Config) Constraints() []Constraint {
	return append([]Constraint(nil), c.constraints...)
}

func (c *Config) validate() error {
	switch {
	case !(c.maxVelocity > 0) || isInf(c.maxVelocity):
		return newInvalidTrajectoryError("max velocity must be a positive finite number, got %v", c.maxVelocity)
	case !(c.maxAcceleration > 0) || isInf(c.maxAcceleration):
		return newInvalidTrajectoryError("max acceleration must be a positive finite number, got %v", c.maxAcceleration)
	case !(c.startVelocity >= 0):
		return newInvalidTrajectoryError("start velocity must not be negative, got %v", c.startVelocity)
	case !(c.endVelocity >= 0):
		return newInvalidTrajectoryError("end velocity must not be negative, got %v", c.endVelocity)
	}
	return nil
}
