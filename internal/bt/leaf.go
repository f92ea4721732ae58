package bt

// ConditionFunc evaluates a side-effect-free predicate over the agent.
type ConditionFunc func(agent any) bool

// Condition is a leaf that maps a predicate to Success or Failure.
// It never returns Running. A nil predicate fails.
type Condition struct {
	base
	check ConditionFunc
}

func NewCondition(name string, check ConditionFunc) *Condition {
	return &Condition{base: base{name: name}, check: check}
}

func (c *Condition) Tick(agent any, dt float64) Result {
	if c.check == nil || !c.check(agent) {
		return c.done(Failure)
	}
	return c.done(Success)
}

func (c *Condition) Reset() {}

// ActionFunc mutates the agent and reports how the action went. Multi-tick
// actions return Running and are resumed on subsequent ticks.
type ActionFunc func(agent any, dt float64) Result

// Action is a leaf that invokes an arbitrary agent-mutating function.
// A nil function fails.
type Action struct {
	base
	do ActionFunc
}

func NewAction(name string, do ActionFunc) *Action {
	return &Action{base: base{name: name}, do: do}
}

func (a *Action) Tick(agent any, dt float64) Result {
	if a.do == nil {
		return a.done(Failure)
	}
	return a.done(a.do(agent, dt))
}

func (a *Action) Reset() {}
