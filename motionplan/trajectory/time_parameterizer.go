package trajectory

import (
	"math"
	"time"
)

const (
	// epsilon used when comparing accelerations and distances
	paramEpsilon = 1e-6
	// steps shorter than this carry no time and are dropped
	minStepDistance = 1e-9
)

type constrainedState struct {
	point       PoseWithCurvature
	distance    float64
	maxVelocity float64
	minAccel    float64
	maxAccel    float64
}

// timeParameterize assigns a velocity, acceleration and time to every sample. A forward pass
// applies the acceleration limit starting from the start velocity, a backward pass applies
// the deceleration limit ending at the end velocity; each sample gets the lower of the two.
func timeParameterize(points []PoseWithCurvature, cfg *Config) (*Trajectory, error) {
	if len(points) < 2 {
		return nil, newInvalidTrajectoryError("path needs at least two samples, got %d", len(points))
	}
	states := make([]constrainedState, len(points))
	maxAccel := cfg.maxAcceleration

	predecessor := constrainedState{
		point:       points[0],
		maxVelocity: cfg.startVelocity,
		minAccel:    -maxAccel,
		maxAccel:    maxAccel,
	}
	for i := range points {
		cs := &states[i]
		cs.point = points[i]
		ds := cs.point.Pose.Distance(predecessor.point.Pose)
		cs.distance = predecessor.distance + ds

		for {
			// the fastest we can go given the previous state's acceleration limit
			cs.maxVelocity = math.Min(cfg.maxVelocity,
				math.Sqrt(predecessor.maxVelocity*predecessor.maxVelocity+2*predecessor.maxAccel*ds))
			cs.minAccel = -maxAccel
			cs.maxAccel = maxAccel
			for _, constraint := range cfg.constraints {
				cs.maxVelocity = math.Min(cs.maxVelocity,
					constraint.MaxVelocity(cs.point.Pose, cs.point.Curvature, cs.maxVelocity))
			}
			if err := enforceAccelerationLimits(cfg.constraints, cs); err != nil {
				return nil, err
			}
			if ds < paramEpsilon {
				break
			}

			// If the acceleration this state can sustain is lower than what we assumed
			// reaching it, redo the previous state's limit and try again.
			actualAccel := (cs.maxVelocity*cs.maxVelocity - predecessor.maxVelocity*predecessor.maxVelocity) / (2 * ds)
			if cs.maxAccel < actualAccel-paramEpsilon {
				predecessor.maxAccel = cs.maxAccel
			} else {
				if actualAccel > predecessor.minAccel {
					predecessor.maxAccel = actualAccel
				}
				break
			}
		}
		predecessor = *cs
	}

	last := len(states) - 1
	successor := constrainedState{
		point:       states[last].point,
		distance:    states[last].distance,
		maxVelocity: cfg.endVelocity,
		minAccel:    -maxAccel,
		maxAccel:    maxAccel,
	}
	for i := last; i >= 0; i-- {
		cs := &states[i]
		ds := cs.distance - successor.distance // non-positive

		for {
			newMaxVelocity := math.Sqrt(successor.maxVelocity*successor.maxVelocity + 2*successor.minAccel*ds)
			if newMaxVelocity >= cs.maxVelocity {
				break
			}
			cs.maxVelocity = newMaxVelocity
			if err := enforceAccelerationLimits(cfg.constraints, cs); err != nil {
				return nil, err
			}
			if ds > -paramEpsilon {
				break
			}

			actualAccel := (cs.maxVelocity*cs.maxVelocity - successor.maxVelocity*successor.maxVelocity) / (2 * ds)
			if cs.minAccel > actualAccel+paramEpsilon {
				successor.minAccel = cs.minAccel
			} else {
				successor.minAccel = actualAccel
				break
			}
		}
		successor = *cs
	}

	return buildTrajectory(states)
}

// buildTrajectory integrates time along the constrained samples. Samples that would not move
// the clock forward by at least one nanosecond are merged into the next one so that times
// strictly increase.
func buildTrajectory(states []constrainedState) (*Trajectory, error) {
	out := make([]State, 0, len(states))
	seconds := 0.0
	prev := states[0]
	out = append(out, State{
		Pose:      prev.point.Pose,
		Curvature: prev.point.Curvature,
		Velocity:  prev.maxVelocity,
	})
	for i := 1; i < len(states); i++ {
		cs := states[i]
		ds := cs.distance - prev.distance
		if ds < minStepDistance {
			continue
		}
		vSum := prev.maxVelocity + cs.maxVelocity
		if vSum <= 0 {
			return nil, newInvalidTrajectoryError("profile stalls at zero velocity %.3fm along the path", cs.distance)
		}
		next := seconds + 2*ds/vSum
		at := secondsToDuration(next)
		if at <= out[len(out)-1].Time {
			continue
		}
		seconds = next
		out[len(out)-1].Acceleration = (cs.maxVelocity*cs.maxVelocity - prev.maxVelocity*prev.maxVelocity) / (2 * ds)
		out = append(out, State{
			Time:      at,
			Velocity:  cs.maxVelocity,
			Pose:      cs.point.Pose,
			Curvature: cs.point.Curvature,
		})
		prev = cs
	}
	if len(out) < 2 {
		return nil, newInvalidTrajectoryError("path has zero length")
	}
	return &Trajectory{states: out, length: prev.distance}, nil
}

func enforceAccelerationLimits(constraints []Constraint, cs *constrainedState) error {
	for _, constraint := range constraints {
		minAccel, maxAccel := constraint.MinMaxAcceleration(cs.point.Pose, cs.point.Curvature, cs.maxVelocity)
		if minAccel > maxAccel {
			return NewInfeasibleConstraintError(cs.distance)
		}
		cs.minAccel = math.Max(cs.minAccel, minAccel)
		cs.maxAccel = math.Min(cs.maxAccel, maxAccel)
	}
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func isInf(v float64) bool {
	return math.IsInf(v, 0)
}
