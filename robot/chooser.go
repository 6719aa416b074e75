package robot

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/diffdrive/command"
)

// ErrUnknownRoutine is returned when selecting a routine the chooser does not offer.
var ErrUnknownRoutine = errors.New("unknown autonomous routine")

// A RoutineFactory builds a fresh autonomous command. Building may fail, for example when
// the routine's trajectory cannot be planned.
type RoutineFactory func() (command.Command, error)

// Chooser offers named autonomous routines and remembers which one is selected.
type Chooser struct {
	names     []string
	factories map[string]RoutineFactory
	selected  string
}

// NewChooser returns an empty chooser.
func NewChooser() *Chooser {
	return &Chooser{factories: map[string]RoutineFactory{}}
}

// AddOption offers a routine. Adding a name again replaces its factory.
func (c *Chooser) AddOption(name string, factory RoutineFactory) {
	if !lo.Contains(c.names, name) {
		c.names = append(c.names, name)
	}
	c.factories[name] = factory
}

// SetDefaultOption offers a routine and selects it.
func (c *Chooser) SetDefaultOption(name string, factory RoutineFactory) {
	c.AddOption(name, factory)
	c.selected = name
}

// Select picks the routine called name.
func (c *Chooser) Select(name string) error {
	if _, ok := c.factories[name]; !ok {
		return errors.Wrapf(ErrUnknownRoutine, "%q", name)
	}
	c.selected = name
	return nil
}

// Selected returns the name of the selected routine, empty if none is.
func (c *Chooser) Selected() string {
	return c.selected
}

// Options returns the routine names in the order they were added.
func (c *Chooser) Options() []string {
	return append([]string(nil), c.names...)
}

// Build returns a new command for the selected routine.
func (c *Chooser) Build() (command.Command, error) {
	factory, ok := c.factories[c.selected]
	if !ok {
		return nil, errors.Wrap(ErrUnknownRoutine, "no routine selected")
	}
	cmd, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build autonomous routine %q", c.selected)
	}
	return cmd, nil
}
