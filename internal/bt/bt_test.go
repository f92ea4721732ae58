package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns a fixed sequence of results, repeating the last one, and
// records how often it was ticked and reset.
type scripted struct {
	base
	results []Result
	ticks   int
	resets  int
}

func newScripted(name string, results ...Result) *scripted {
	return &scripted{base: base{name: name}, results: results}
}

func (s *scripted) Tick(agent any, dt float64) Result {
	i := s.ticks
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.ticks++
	return s.done(s.results[i])
}

func (s *scripted) Reset() { s.resets++ }

func TestSequenceFailsOnFirstFailure(t *testing.T) {
	a := newScripted("a", Success)
	b := newScripted("b", Failure)
	c := newScripted("c", Success)
	seq := NewSequence("seq", a, b, c)

	assert.Equal(t, Failure, seq.Tick(nil, 0.1))
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 1, b.ticks)
	assert.Equal(t, 0, c.ticks, "children after the failing one must not run")

	// Cursor was reset on termination: the next tick starts at child a.
	assert.Equal(t, Failure, seq.Tick(nil, 0.1))
	assert.Equal(t, 2, a.ticks)
}

func TestSequenceResumesAtRunningChild(t *testing.T) {
	a := newScripted("a", Success)
	b := newScripted("b", Running, Running, Success)
	c := newScripted("c", Success)
	seq := NewSequence("seq", a, b, c)

	assert.Equal(t, Running, seq.Tick(nil, 0.1))
	assert.Equal(t, Running, seq.Tick(nil, 0.1))
	assert.Equal(t, Success, seq.Tick(nil, 0.1))

	// a ran once: the cursor held at b across the Running ticks.
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 3, b.ticks)
	assert.Equal(t, 1, c.ticks)
}

func TestSelectorShortCircuitsOnSuccess(t *testing.T) {
	a := newScripted("a", Failure)
	b := newScripted("b", Success)
	c := newScripted("c", Success)
	sel := NewSelector("sel", a, b, c)

	assert.Equal(t, Success, sel.Tick(nil, 0.1))
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 1, b.ticks)
	assert.Equal(t, 0, c.ticks)
}

func TestSelectorAllFailures(t *testing.T) {
	sel := NewSelector("sel",
		newScripted("a", Failure),
		newScripted("b", Failure),
	)
	assert.Equal(t, Failure, sel.Tick(nil, 0.1))
}

func TestEmptyComposites(t *testing.T) {
	assert.Equal(t, Success, NewSequence("empty").Tick(nil, 0.1))
	assert.Equal(t, Failure, NewSelector("empty").Tick(nil, 0.1))
}

func TestParallelRequireAll(t *testing.T) {
	t.Run("all success", func(t *testing.T) {
		p := NewParallel("p", true,
			newScripted("a", Success),
			newScripted("b", Success),
		)
		assert.Equal(t, Success, p.Tick(nil, 0.1))
	})

	t.Run("single failure dominates", func(t *testing.T) {
		a := newScripted("a", Success)
		b := newScripted("b", Failure)
		p := NewParallel("p", true, a, b)
		assert.Equal(t, Failure, p.Tick(nil, 0.1))
		assert.Equal(t, 1, a.ticks, "all children tick even when one fails")
	})

	t.Run("running while undecided", func(t *testing.T) {
		p := NewParallel("p", true,
			newScripted("a", Success),
			newScripted("b", Running),
		)
		assert.Equal(t, Running, p.Tick(nil, 0.1))
	})
}

func TestParallelRequireAny(t *testing.T) {
	p := NewParallel("p", false,
		newScripted("a", Failure),
		newScripted("b", Success),
	)
	assert.Equal(t, Success, p.Tick(nil, 0.1))

	p = NewParallel("p", false,
		newScripted("a", Failure),
		newScripted("b", Failure),
	)
	assert.Equal(t, Failure, p.Tick(nil, 0.1))

	p = NewParallel("p", false,
		newScripted("a", Failure),
		newScripted("b", Running),
	)
	assert.Equal(t, Running, p.Tick(nil, 0.1))
}

func TestInverter(t *testing.T) {
	assert.Equal(t, Failure, NewInverter("inv", newScripted("c", Success)).Tick(nil, 0.1))
	assert.Equal(t, Success, NewInverter("inv", newScripted("c", Failure)).Tick(nil, 0.1))
	assert.Equal(t, Running, NewInverter("inv", newScripted("c", Running)).Tick(nil, 0.1))
	assert.Equal(t, Failure, NewInverter("inv", nil).Tick(nil, 0.1), "missing child fails")
}

func TestRepeaterTicksChildExactlyN(t *testing.T) {
	child := newScripted("c", Success)
	rep := NewRepeater("rep", child, 3)

	assert.Equal(t, Running, rep.Tick(nil, 0.1))
	assert.Equal(t, Running, rep.Tick(nil, 0.1))
	assert.Equal(t, Success, rep.Tick(nil, 0.1))

	assert.Equal(t, 3, child.ticks)
	assert.Equal(t, 3, child.resets, "child state reset between runs")

	// Counter reset on exhaustion: the repeater can run again.
	assert.Equal(t, Running, rep.Tick(nil, 0.1))
	assert.Equal(t, 4, child.ticks)
}

func TestRepeaterWaitsForRunningChild(t *testing.T) {
	child := newScripted("c", Running, Running, Success)
	rep := NewRepeater("rep", child, 1)

	assert.Equal(t, Running, rep.Tick(nil, 0.1))
	assert.Equal(t, Running, rep.Tick(nil, 0.1))
	assert.Equal(t, Success, rep.Tick(nil, 0.1))
	assert.Equal(t, 1, child.resets, "child reset only after its run completed")
}

func TestRepeaterForever(t *testing.T) {
	child := newScripted("c", Success)
	rep := NewRepeater("rep", child, RepeatForever)
	for range 10 {
		assert.Equal(t, Running, rep.Tick(nil, 0.1))
	}
	assert.Equal(t, 10, child.ticks)
}

func TestRepeaterNilChild(t *testing.T) {
	assert.Equal(t, Failure, NewRepeater("rep", nil, 3).Tick(nil, 0.1))
}

func TestConditionAndAction(t *testing.T) {
	cond := NewCondition("positive", func(agent any) bool {
		return agent.(int) > 0
	})
	assert.Equal(t, Success, cond.Tick(1, 0.1))
	assert.Equal(t, Failure, cond.Tick(-1, 0.1))
	assert.Equal(t, Failure, NewCondition("nil", nil).Tick(nil, 0.1))

	calls := 0
	act := NewAction("count", func(agent any, dt float64) Result {
		calls++
		if calls < 2 {
			return Running
		}
		return Success
	})
	assert.Equal(t, Running, act.Tick(nil, 0.1))
	assert.Equal(t, Success, act.Tick(nil, 0.1))
	assert.Equal(t, Failure, NewAction("nil", nil).Tick(nil, 0.1))
}

func TestTree(t *testing.T) {
	child := newScripted("c", Running, Success)
	root := NewSequence("root", child)
	tree := NewTree(root)

	require.Equal(t, Running, tree.Tick(nil, 0.1))
	assert.Equal(t, Running, root.LastResult())
	require.Equal(t, Success, tree.Tick(nil, 0.1))

	before := child.resets
	tree.Reset()
	assert.Greater(t, child.resets, before, "reset propagates to children")
}

func TestTreeNilRoot(t *testing.T) {
	var empty *Tree
	assert.Equal(t, Failure, empty.Tick(nil, 0.1), "nil tree degrades to Failure")
	assert.Equal(t, Failure, NewTree(nil).Tick(nil, 0.1))
}
