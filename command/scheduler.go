package command

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/diffdrive/logging"
)

type edgeWatcher struct {
	trigger   *Trigger
	onRising  Command
	onFalling Command
}

// Scheduler owns the command lifecycle and the subsystem ownership map. It is driven by one
// goroutine calling Tick at a fixed rate and is not safe for concurrent use.
type Scheduler struct {
	logger logging.Logger
	clock  clock.Clock

	subsystems []Subsystem
	defaults   map[Subsystem]Command
	owners     map[Subsystem]Command

	// scheduled is kept in scheduling order; states and started only hold scheduled commands
	scheduled []Command
	states    map[Command]State
	started   map[Command]time.Time

	watchers []edgeWatcher

	inRunLoop  bool
	toSchedule []Command
	toCancel   []Command
}

// NewScheduler returns an empty scheduler. clock timestamps command runs for logging. A nil
// logger logs to the global logger.
func NewScheduler(logger logging.Logger, clk clock.Clock) *Scheduler {
	if logger == nil {
		logger = logging.Global()
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		logger:   logger,
		clock:    clk,
		defaults: map[Subsystem]Command{},
		owners:   map[Subsystem]Command{},
		states:   map[Command]State{},
		started:  map[Command]time.Time{},
	}
}

// RegisterSubsystem adds subsystems whose Periodic hook runs every tick. Registering a
// subsystem twice has no effect.
func (s *Scheduler) RegisterSubsystem(subsystems ...Subsystem) {
	for _, sub := range subsystems {
		if sub == nil || lo.Contains(s.subsystems, sub) {
			continue
		}
		s.subsystems = append(s.subsystems, sub)
	}
}

// SetDefaultCommand sets the command scheduled whenever sub is left unowned at the end of a
// tick. The command must require sub.
func (s *Scheduler) SetDefaultCommand(sub Subsystem, cmd Command) error {
	if sub == nil || cmd == nil {
		return errors.New("default command and subsystem must not be nil")
	}
	if !lo.Contains(cmd.Requirements(), sub) {
		return errors.Errorf("default command %q must require subsystem %q", NameOf(cmd), NameOf(sub))
	}
	if BehaviorOf(cmd) == CancelIncoming {
		s.logger.Warnw("default command will not yield to other commands", "command", NameOf(cmd))
	}
	s.RegisterSubsystem(sub)
	s.defaults[sub] = cmd
	return nil
}

// DefaultCommand returns the default command of sub, or nil.
func (s *Scheduler) DefaultCommand(sub Subsystem) Command {
	return s.defaults[sub]
}

// OnEdge polls trigger once per tick, scheduling onRising when it goes from false to true
// and onFalling when it goes from true to false. Either command may be nil.
func (s *Scheduler) OnEdge(trigger *Trigger, onRising, onFalling Command) {
	s.watchers = append(s.watchers, edgeWatcher{trigger: trigger, onRising: onRising, onFalling: onFalling})
}

// Schedule schedules commands. A command displaces the current owners of the subsystems it
// requires, unless one of them is CancelIncoming, in which case the command is rejected.
// Subsystems freed by a displaced owner go back to their default commands. Called from
// within a command hook the request takes effect at the end of the tick.
func (s *Scheduler) Schedule(cmds ...Command) {
	for _, cmd := range cmds {
		if cmd == nil {
			s.logger.Warn("tried to schedule a nil command")
			continue
		}
		if s.inRunLoop {
			s.toSchedule = append(s.toSchedule, cmd)
			continue
		}
		s.schedule(cmd)
	}
	if !s.inRunLoop {
		s.scheduleDefaults()
	}
}

// Cancel interrupts commands. Subsystems they free are immediately handed to their default
// commands. Called from within a command hook the request takes effect at the end of the
// tick.
func (s *Scheduler) Cancel(cmds ...Command) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		if s.inRunLoop {
			s.toCancel = append(s.toCancel, cmd)
			continue
		}
		s.cancel(cmd, nil)
	}
	if !s.inRunLoop {
		s.scheduleDefaults()
	}
}

// CancelAll interrupts every scheduled command.
func (s *Scheduler) CancelAll() {
	s.Cancel(s.Scheduled()...)
}

// IsScheduled reports whether cmd is currently scheduled.
func (s *Scheduler) IsScheduled(cmd Command) bool {
	_, ok := s.states[cmd]
	return ok
}

// State returns the lifecycle state of cmd.
func (s *Scheduler) State(cmd Command) State {
	return s.states[cmd]
}

// Requiring returns the command that owns sub, or nil.
func (s *Scheduler) Requiring(sub Subsystem) Command {
	return s.owners[sub]
}

// Scheduled returns the scheduled commands in scheduling order.
func (s *Scheduler) Scheduled() []Command {
	return append([]Command(nil), s.scheduled...)
}

// Tick advances the scheduler by one step: subsystem periodic hooks, edge watchers, one
// execute and completion check per scheduled command in scheduling order, then deferred
// requests and default commands.
func (s *Scheduler) Tick() {
	for _, sub := range s.subsystems {
		sub.Periodic()
	}

	for _, w := range s.watchers {
		switch w.trigger.Poll() {
		case EdgeRising:
			if w.onRising != nil {
				s.Schedule(w.onRising)
			}
		case EdgeFalling:
			if w.onFalling != nil {
				s.Schedule(w.onFalling)
			}
		case EdgeNone:
		}
	}

	s.inRunLoop = true
	for _, cmd := range s.Scheduled() {
		cmd.Execute()
		if cmd.IsFinished() {
			s.states[cmd] = Ending
			cmd.End(false)
			s.logger.Debugw("command finished", "command", NameOf(cmd), "ran_for", s.clock.Since(s.started[cmd]))
			s.remove(cmd)
		}
	}
	s.inRunLoop = false

	toSchedule, toCancel := s.toSchedule, s.toCancel
	s.toSchedule, s.toCancel = nil, nil
	for _, cmd := range toSchedule {
		s.schedule(cmd)
	}
	for _, cmd := range toCancel {
		s.cancel(cmd, nil)
	}

	s.scheduleDefaults()
}

func (s *Scheduler) schedule(cmd Command) {
	if s.IsScheduled(cmd) {
		return
	}
	requirements := lo.Uniq(cmd.Requirements())

	for _, sub := range requirements {
		if owner, ok := s.owners[sub]; ok && BehaviorOf(owner) == CancelIncoming {
			s.logger.Infow("command rejected",
				"command", NameOf(cmd),
				"subsystem", NameOf(sub),
				"owner", NameOf(owner))
			return
		}
	}
	for _, sub := range requirements {
		if owner, ok := s.owners[sub]; ok {
			s.cancel(owner, cmd)
		}
	}

	s.scheduled = append(s.scheduled, cmd)
	s.states[cmd] = Initializing
	s.started[cmd] = s.clock.Now()
	for _, sub := range requirements {
		s.owners[sub] = cmd
	}
	cmd.Initialize()
	if s.IsScheduled(cmd) {
		s.states[cmd] = Executing
	}
	s.logger.Debugw("command scheduled", "command", NameOf(cmd))
}

// cancel interrupts cmd. by is the incoming command displacing it, if any.
func (s *Scheduler) cancel(cmd, by Command) {
	if !s.IsScheduled(cmd) || s.states[cmd] == Ending {
		return
	}
	s.states[cmd] = Ending
	cmd.End(true)
	if by != nil {
		s.logger.Infow("command interrupted", "command", NameOf(cmd), "by", NameOf(by))
	} else {
		s.logger.Infow("command interrupted", "command", NameOf(cmd))
	}
	s.remove(cmd)
}

func (s *Scheduler) remove(cmd Command) {
	s.scheduled = lo.Without(s.scheduled, cmd)
	for sub, owner := range s.owners {
		if owner == cmd {
			delete(s.owners, sub)
		}
	}
	delete(s.states, cmd)
	delete(s.started, cmd)
}

func (s *Scheduler) scheduleDefaults() {
	for _, sub := range s.subsystems {
		def, ok := s.defaults[sub]
		if !ok {
			continue
		}
		if _, owned := s.owners[sub]; owned {
			continue
		}
		s.schedule(def)
	}
}
