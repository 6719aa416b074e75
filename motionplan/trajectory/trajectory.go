// Package trajectory generates time-parameterized paths for a differential drive base:
// a C2 spline through the waypoints, sampled adaptively, with a velocity profile that
// respects the configured limits.
package trajectory

import (
	"math"
	"sort"
	"time"

	"go.viam.com/diffdrive/control"
	"go.viam.com/diffdrive/spatialmath"
)

// State is one sample of a trajectory. Acceleration is constant until the next state.
type State struct {
	Time         time.Duration
	Velocity     float64
	Acceleration float64
	Pose         spatialmath.Pose2d
	Curvature    float64
}

// AngularVelocity returns the heading rate at the state in rad/s.
func (s State) AngularVelocity() float64 {
	return s.Velocity * s.Curvature
}

// Reference returns the state as a tracking reference.
func (s State) Reference() control.Reference {
	return control.Reference{
		Pose:            s.Pose,
		LinearVelocity:  s.Velocity,
		AngularVelocity: s.AngularVelocity(),
	}
}

// interpolate returns the state a fraction frac of the way in time toward end, assuming
// constant acceleration between the two.
func (s State) interpolate(end State, frac float64) State {
	startS := s.Time.Seconds()
	newT := startS + (end.Time.Seconds()-startS)*frac
	dt := newT - startS

	newV := s.Velocity + s.Acceleration*dt
	travelled := s.Velocity*dt + 0.5*s.Acceleration*dt*dt

	// fall back to the time fraction when the two states share a position
	poseFrac := frac
	if dist := s.Pose.Distance(end.Pose); dist > 1e-9 {
		poseFrac = travelled / dist
	}
	return State{
		Time:         secondsToDuration(newT),
		Velocity:     newV,
		Acceleration: s.Acceleration,
		Pose:         s.Pose.Interpolate(end.Pose, poseFrac),
		Curvature:    s.Curvature + (end.Curvature-s.Curvature)*poseFrac,
	}
}

// Trajectory is an immutable, time ordered list of states beginning at time zero.
type Trajectory struct {
	states []State
	length float64
}

// States returns a copy of the trajectory's states.
func (t *Trajectory) States() []State {
	return append([]State(nil), t.states...)
}

// TotalTime returns the time of the final state.
func (t *Trajectory) TotalTime() time.Duration {
	return t.states[len(t.states)-1].Time
}

// InitialPose returns the pose the trajectory starts at.
func (t *Trajectory) InitialPose() spatialmath.Pose2d {
	return t.states[0].Pose
}

// Length returns the distance travelled along the path in meters.
func (t *Trajectory) Length() float64 {
	return t.length
}

// Sample returns the state at time at. Times before the start or after the end clamp to
// the first or last state.
func (t *Trajectory) Sample(at time.Duration) State {
	if at <= t.states[0].Time {
		return t.states[0]
	}
	if at >= t.TotalTime() {
		return t.states[len(t.states)-1]
	}

	// first state at or after at; never zero because of the check above
	idx := sort.Search(len(t.states), func(i int) bool { return t.states[i].Time >= at })
	next := t.states[idx]
	prev := t.states[idx-1]
	span := (next.Time - prev.Time).Seconds()
	if math.Abs(span) < 1e-9 {
		return next
	}
	return prev.interpolate(next, (at - prev.Time).Seconds()/span)
}
