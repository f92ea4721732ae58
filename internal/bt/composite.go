package bt

// composite owns an ordered list of children and a cursor that survives
// across ticks while the node reports Running.
type composite struct {
	base
	children []Node
	cursor   int
}

func (c *composite) Children() []Node { return c.children }

func (c *composite) Reset() {
	c.cursor = 0
	for _, child := range c.children {
		child.Reset()
	}
}

// Sequence runs children in order. It fails on the first child Failure,
// returns Running while a child is in progress (resuming at that child on
// the next tick), and succeeds only when every child succeeded.
// An empty Sequence succeeds immediately.
type Sequence struct {
	composite
}

func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{composite{base: base{name: name}, children: children}}
}

func (s *Sequence) Tick(agent any, dt float64) Result {
	for s.cursor < len(s.children) {
		switch s.children[s.cursor].Tick(agent, dt) {
		case Running:
			return s.done(Running)
		case Failure:
			s.Reset()
			return s.done(Failure)
		}
		s.cursor++
	}
	s.Reset()
	return s.done(Success)
}

// Selector runs children in order until one succeeds. It returns Running
// while a child is in progress and fails only when every child failed.
// An empty Selector fails immediately.
type Selector struct {
	composite
}

func NewSelector(name string, children ...Node) *Selector {
	return &Selector{composite{base: base{name: name}, children: children}}
}

func (s *Selector) Tick(agent any, dt float64) Result {
	for s.cursor < len(s.children) {
		switch s.children[s.cursor].Tick(agent, dt) {
		case Running:
			return s.done(Running)
		case Success:
			s.Reset()
			return s.done(Success)
		}
		s.cursor++
	}
	s.Reset()
	return s.done(Failure)
}

// Parallel ticks every child every tick.
//
// With RequireAll true: Success when all children succeed, Failure as soon
// as any child fails, Running otherwise. With RequireAll false: Success as
// soon as any child succeeds, Failure only when all fail, Running otherwise.
type Parallel struct {
	composite
	RequireAll bool
}

func NewParallel(name string, requireAll bool, children ...Node) *Parallel {
	return &Parallel{
		composite:  composite{base: base{name: name}, children: children},
		RequireAll: requireAll,
	}
}

func (p *Parallel) Tick(agent any, dt float64) Result {
	successes, failures := 0, 0
	for _, child := range p.children {
		switch child.Tick(agent, dt) {
		case Success:
			successes++
		case Failure:
			failures++
		}
	}

	if p.RequireAll {
		switch {
		case successes == len(p.children):
			return p.done(Success)
		case failures > 0:
			return p.done(Failure)
		default:
			return p.done(Running)
		}
	}
	switch {
	case successes > 0:
		return p.done(Success)
	case failures == len(p.children):
		return p.done(Failure)
	default:
		return p.done(Running)
	}
}
