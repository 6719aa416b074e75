// Package fake implements a simulated differential drive base: two first order motors
// characterized by the same constants as the drive feedforward, quantized wheel encoders
// and an ideal gyro.
package fake

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/diffdrive/components/base/wheeled"
	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/kinematics"
	"go.viam.com/diffdrive/spatialmath"
	"go.viam.com/diffdrive/utils"
)

// Config describes the simulated base.
type Config struct {
	// Plant is the motor model: ka*dv/dt = V - ks*sgn(v) - kv*v per wheel.
	Plant      control.SimpleMotorFeedforward
	TrackWidth float64
	MaxVoltage float64
	// DistancePerPulse quantizes encoder readings. Zero reports exact travel.
	DistancePerPulse float64
}

// Validate ensures the plant can be simulated.
func (cfg Config) Validate() error {
	if err := cfg.Plant.Validate(); err != nil {
		return err
	}
	if !(cfg.Plant.KV > 0) {
		return errors.New("simulated plant needs a positive kv")
	}
	if !(cfg.MaxVoltage > 0) {
		return errors.Errorf("max voltage must be positive, got %v", cfg.MaxVoltage)
	}
	if cfg.DistancePerPulse < 0 {
		return errors.Errorf("distance per pulse must not be negative, got %v", cfg.DistancePerPulse)
	}
	return nil
}

// Motor records the last commanded voltage, clamped to the supply.
type Motor struct {
	maxVoltage float64
	volts      float64
	// Err, when set, is returned from SetVoltage and the command is dropped.
	Err error
}

// SetVoltage clamps volts to the supply and stores it.
func (m *Motor) SetVoltage(volts float64) error {
	if m.Err != nil {
		return m.Err
	}
	m.volts = utils.Clamp(volts, -m.maxVoltage, m.maxVoltage)
	return nil
}

// Voltage returns the applied voltage.
func (m *Motor) Voltage() float64 {
	return m.volts
}

// Encoder reports the travel of one wheel.
type Encoder struct {
	perPulse  float64
	travelled float64
	zero      float64
	rate      float64
}

// Distance returns the travel since the last reset, truncated to whole pulses.
func (e *Encoder) Distance() float64 {
	d := e.travelled - e.zero
	if e.perPulse > 0 {
		return math.Trunc(d/e.perPulse) * e.perPulse
	}
	return d
}

// Rate returns the wheel velocity.
func (e *Encoder) Rate() float64 {
	return e.rate
}

// Reset zeroes the distance.
func (e *Encoder) Reset() {
	e.zero = e.travelled
}

// Gyro reports the accumulated heading of the base.
type Gyro struct {
	heading float64
}

// Heading returns the heading in radians, unwrapped.
func (g *Gyro) Heading() float64 {
	return g.heading
}

// Base is the simulated plant. Step advances it; the devices expose its state to a
// wheeled.Drivetrain.
type Base struct {
	cfg Config
	kin kinematics.DifferentialDrive

	LeftMotor    *Motor
	RightMotor   *Motor
	LeftEncoder  *Encoder
	RightEncoder *Encoder
	Gyro         *Gyro

	pose      spatialmath.Pose2d
	leftVel   float64
	rightVel  float64
	simulated time.Duration
}

// NewBase returns a base at rest at the origin.
func NewBase(cfg Config) (*Base, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid simulated base")
	}
	kin, err := kinematics.NewDifferentialDrive(cfg.TrackWidth)
	if err != nil {
		return nil, err
	}
	return &Base{
		cfg:          cfg,
		kin:          kin,
		LeftMotor:    &Motor{maxVoltage: cfg.MaxVoltage},
		RightMotor:   &Motor{maxVoltage: cfg.MaxVoltage},
		LeftEncoder:  &Encoder{perPulse: cfg.DistancePerPulse},
		RightEncoder: &Encoder{perPulse: cfg.DistancePerPulse},
		Gyro:         &Gyro{},
	}, nil
}

// Hardware returns the simulated devices for a drivetrain.
func (b *Base) Hardware() wheeled.Hardware {
	return wheeled.Hardware{
		LeftMotor:    b.LeftMotor,
		RightMotor:   b.RightMotor,
		LeftEncoder:  b.LeftEncoder,
		RightEncoder: b.RightEncoder,
		Gyro:         b.Gyro,
	}
}

// Pose returns the true pose of the base.
func (b *Base) Pose() spatialmath.Pose2d {
	return b.pose
}

// SetPose places the base at pose without moving the wheels. The gyro turns with it.
func (b *Base) SetPose(pose spatialmath.Pose2d) {
	b.Gyro.heading += spatialmath.WrapAngle(pose.Theta - b.pose.Theta)
	b.pose = pose
}

// WheelSpeeds returns the true wheel velocities.
func (b *Base) WheelSpeeds() kinematics.WheelSpeeds {
	return kinematics.WheelSpeeds{Left: b.leftVel, Right: b.rightVel}
}

// Elapsed returns the total simulated time.
func (b *Base) Elapsed() time.Duration {
	return b.simulated
}

// Step advances the simulation by dt holding the motor voltages constant.
func (b *Base) Step(dt time.Duration) {
	dtS := dt.Seconds()
	if dtS <= 0 {
		return
	}
	var dl, dr float64
	b.leftVel, dl = b.stepWheel(b.leftVel, b.LeftMotor.volts, dtS)
	b.rightVel, dr = b.stepWheel(b.rightVel, b.RightMotor.volts, dtS)

	dtheta := (dr - dl) / b.kin.TrackWidth()
	b.pose = b.pose.Exp(spatialmath.Twist2d{Dx: (dl + dr) / 2, Dtheta: dtheta})
	b.Gyro.heading += dtheta

	b.LeftEncoder.travelled += dl
	b.LeftEncoder.rate = b.leftVel
	b.RightEncoder.travelled += dr
	b.RightEncoder.rate = b.rightVel
	b.simulated += dt
}

// stepWheel integrates one wheel exactly over dt and returns its new velocity and the
// distance it covered.
func (b *Base) stepWheel(v, volts, dt float64) (float64, float64) {
	plant := b.cfg.Plant
	dir := utils.Signum(v)
	if dir == 0 {
		if math.Abs(volts) <= plant.KS {
			return 0, 0
		}
		dir = utils.Signum(volts)
	}
	vss := (volts - plant.KS*dir) / plant.KV
	if plant.KA == 0 {
		if vss*dir < 0 {
			return 0, 0
		}
		return vss, vss * dt
	}

	tau := plant.KA / plant.KV
	travel := func(t float64) float64 {
		return vss*t + (v-vss)*tau*(1-math.Exp(-t/tau))
	}
	next := vss + (v-vss)*math.Exp(-dt/tau)
	if next*dir < 0 {
		// friction cannot reverse the wheel; it stops where the velocity crosses zero
		stopAt := -tau * math.Log(vss/(vss-v))
		return 0, travel(stopAt)
	}
	return next, travel(dt)
}
