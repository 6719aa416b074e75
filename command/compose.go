package command

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"

	"go.viam.com/diffdrive/logging"
)

// FunctionalCommand is a command assembled from optional hooks.
type FunctionalCommand struct {
	name         string
	onInit       func()
	onExecute    func()
	onEnd        func(interrupted bool)
	isFinished   func() bool
	requirements []Subsystem
}

// NewFunctional returns a command that calls the given hooks; any of them may be nil. A nil
// isFinished never finishes.
func NewFunctional(
	name string,
	onInit, onExecute func(),
	onEnd func(interrupted bool),
	isFinished func() bool,
	requirements ...Subsystem,
) *FunctionalCommand {
	return &FunctionalCommand{
		name:         name,
		onInit:       onInit,
		onExecute:    onExecute,
		onEnd:        onEnd,
		isFinished:   isFinished,
		requirements: requirements,
	}
}

// NewInstant returns a command that calls fn once when scheduled and finishes on its first
// tick.
func NewInstant(name string, fn func(), requirements ...Subsystem) *FunctionalCommand {
	return NewFunctional(name, fn, nil, nil, func() bool { return true }, requirements...)
}

// NewRun returns a command that calls fn every tick until interrupted.
func NewRun(name string, fn func(), requirements ...Subsystem) *FunctionalCommand {
	return NewFunctional(name, nil, fn, nil, nil, requirements...)
}

// NewPrint returns an instant command that logs msg.
func NewPrint(logger logging.Logger, msg string) *FunctionalCommand {
	return NewInstant("print", func() { logger.Info(msg) })
}

// Name returns the command's name.
func (c *FunctionalCommand) Name() string { return c.name }

// Initialize calls the init hook.
func (c *FunctionalCommand) Initialize() {
	if c.onInit != nil {
		c.onInit()
	}
}

// Execute calls the execute hook.
func (c *FunctionalCommand) Execute() {
	if c.onExecute != nil {
		c.onExecute()
	}
}

// IsFinished calls the completion hook.
func (c *FunctionalCommand) IsFinished() bool {
	return c.isFinished != nil && c.isFinished()
}

// End calls the end hook.
func (c *FunctionalCommand) End(interrupted bool) {
	if c.onEnd != nil {
		c.onEnd(interrupted)
	}
}

// Requirements returns the subsystems the command drives.
func (c *FunctionalCommand) Requirements() []Subsystem { return c.requirements }

// WaitCommand does nothing for a fixed duration.
type WaitCommand struct {
	clock    clock.Clock
	duration time.Duration
	start    time.Time
}

// NewWait returns a command that finishes once duration has elapsed on clk.
func NewWait(clk clock.Clock, duration time.Duration) *WaitCommand {
	return &WaitCommand{clock: clk, duration: duration}
}

// Name returns "wait".
func (w *WaitCommand) Name() string { return "wait" }

// Initialize starts the timer.
func (w *WaitCommand) Initialize() { w.start = w.clock.Now() }

// Execute does nothing.
func (w *WaitCommand) Execute() {}

// IsFinished reports whether the duration has elapsed.
func (w *WaitCommand) IsFinished() bool { return w.clock.Since(w.start) >= w.duration }

// End does nothing.
func (w *WaitCommand) End(bool) {}

// Requirements is empty.
func (w *WaitCommand) Requirements() []Subsystem { return nil }

// SequentialGroup runs commands one after another. It requires the union of their
// requirements for its whole run. Commands in a group must not be scheduled on their own.
type SequentialGroup struct {
	name         string
	commands     []Command
	requirements []Subsystem
	behavior     InterruptionBehavior
	current      int
}

// NewSequence returns a group running cmds in order. The group is CancelIncoming if any of
// its commands is.
func NewSequence(name string, cmds ...Command) *SequentialGroup {
	g := &SequentialGroup{
		name:     name,
		commands: cmds,
		requirements: lo.Uniq(lo.FlatMap(cmds, func(c Command, _ int) []Subsystem {
			return c.Requirements()
		})),
		current: len(cmds),
	}
	if lo.ContainsBy(cmds, func(c Command) bool { return BehaviorOf(c) == CancelIncoming }) {
		g.behavior = CancelIncoming
	}
	return g
}

// Name returns the group's name.
func (g *SequentialGroup) Name() string { return g.name }

// Initialize starts the first command.
func (g *SequentialGroup) Initialize() {
	g.current = 0
	if len(g.commands) > 0 {
		g.commands[0].Initialize()
	}
}

// Execute steps the current command and advances to the next one when it finishes.
func (g *SequentialGroup) Execute() {
	if g.current >= len(g.commands) {
		return
	}
	cur := g.commands[g.current]
	cur.Execute()
	if !cur.IsFinished() {
		return
	}
	cur.End(false)
	g.current++
	if g.current < len(g.commands) {
		g.commands[g.current].Initialize()
	}
}

// IsFinished reports whether every command has run.
func (g *SequentialGroup) IsFinished() bool {
	return g.current >= len(g.commands)
}

// End interrupts the running command, if any.
func (g *SequentialGroup) End(interrupted bool) {
	if interrupted && g.current < len(g.commands) {
		g.commands[g.current].End(true)
	}
	g.current = len(g.commands)
}

// Requirements returns the union of the group's requirements.
func (g *SequentialGroup) Requirements() []Subsystem { return g.requirements }

// InterruptionBehavior returns CancelIncoming if any command in the group is.
func (g *SequentialGroup) InterruptionBehavior() InterruptionBehavior { return g.behavior }

// Current returns the index of the running command.
func (g *SequentialGroup) Current() int { return g.current }
