package command

// Edge is the result of comparing two consecutive samples of a boolean signal.
type Edge int

// Edges.
const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return "none"
	}
}

// DetectEdge compares the previous and current sample of a signal.
func DetectEdge(prev, cur bool) Edge {
	switch {
	case !prev && cur:
		return EdgeRising
	case prev && !cur:
		return EdgeFalling
	default:
		return EdgeNone
	}
}

// Trigger turns a level, such as a button, into edges by sampling it once per Poll.
type Trigger struct {
	cond func() bool
	last bool
}

// NewTrigger returns a trigger for cond. cond is sampled immediately so a level that is
// already true does not produce a rising edge on the first poll.
func NewTrigger(cond func() bool) *Trigger {
	return &Trigger{cond: cond, last: cond()}
}

// Poll samples the condition and returns the edge since the previous sample.
func (t *Trigger) Poll() Edge {
	cur := t.cond()
	edge := DetectEdge(t.last, cur)
	t.last = cur
	return edge
}

// Level returns the most recent sample.
func (t *Trigger) Level() bool {
	return t.last
}
