// Package bt implements the behavior-tree evaluation engine: composite,
// decorator and leaf nodes sharing a tri-state tick contract.
//
// Trees are authored once and evaluated at most once per simulation step.
// Node structure is fixed after authoring; only transient progress (child
// cursors, iteration counters) changes between ticks.
package bt

// Result is the tri-state outcome of a node tick.
type Result int

const (
	Success Result = iota
	Failure
	Running
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Node is implemented by every behavior-tree node.
// The agent parameter is opaque to this package; leaf callbacks assert it
// to the concrete agent type they were authored against.
type Node interface {
	// Name returns the diagnostic label given at authoring time.
	Name() string

	// Tick evaluates the node for one simulation step.
	Tick(agent any, dt float64) Result

	// Reset clears transient progress (cursors, counters) without
	// destroying the node.
	Reset()
}

// base carries the name and last result shared by all node kinds.
type base struct {
	name string
	last Result
}

func (b *base) Name() string       { return b.name }
func (b *base) LastResult() Result { return b.last }

func (b *base) done(r Result) Result {
	b.last = r
	return r
}
