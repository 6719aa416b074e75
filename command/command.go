// Package command implements a cooperative command scheduler. Commands declare the
// subsystems they drive; the scheduler gives each subsystem at most one command at a time,
// runs every scheduled command once per tick and falls back to a subsystem's default
// command whenever it is left unowned.
package command

import (
	"fmt"
)

// A Subsystem is a resource commands can require. Periodic runs at the start of every tick,
// before any command executes.
//
// Subsystems are used as map keys and must be comparable; pointer receivers are typical.
type Subsystem interface {
	Periodic()
}

// A Command is a unit of work run by a Scheduler. Initialize runs once when the command is
// scheduled, Execute once per tick until IsFinished reports true or the command is
// interrupted, and End once on the way out.
//
// Hooks must return promptly; long running work is carried across ticks as state. Commands
// are used as map keys and must be comparable.
type Command interface {
	Initialize()
	Execute()
	IsFinished() bool
	End(interrupted bool)
	Requirements() []Subsystem
}

// InterruptionBehavior decides what happens when a command is asked to give up a subsystem.
type InterruptionBehavior int

const (
	// CancelSelf lets an incoming command interrupt this one. It is the default.
	CancelSelf InterruptionBehavior = iota
	// CancelIncoming keeps this command running and rejects the incoming command.
	CancelIncoming
)

func (b InterruptionBehavior) String() string {
	switch b {
	case CancelSelf:
		return "cancel_self"
	case CancelIncoming:
		return "cancel_incoming"
	default:
		return fmt.Sprintf("InterruptionBehavior(%d)", int(b))
	}
}

// Interruptible is implemented by commands that choose their InterruptionBehavior.
type Interruptible interface {
	InterruptionBehavior() InterruptionBehavior
}

// BehaviorOf returns the interruption behavior of cmd, CancelSelf unless it says otherwise.
func BehaviorOf(cmd Command) InterruptionBehavior {
	if i, ok := cmd.(Interruptible); ok {
		return i.InterruptionBehavior()
	}
	return CancelSelf
}

// State is the lifecycle state of a command within a scheduler.
type State int

// Commands move Idle -> Initializing -> Executing -> Ending -> Idle.
const (
	Idle State = iota
	Initializing
	Executing
	Ending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Executing:
		return "executing"
	case Ending:
		return "ending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Named is implemented by commands and subsystems that have a display name.
type Named interface {
	Name() string
}

// NameOf returns the name of v for logs, falling back to its type.
func NameOf(v interface{}) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", v)
}
