package bt

// decorator wraps exactly one child. A nil child resolves to Failure at
// tick time: partially authored trees must degrade, not crash.
type decorator struct {
	base
	child Node
}

func (d *decorator) Child() Node { return d.child }

func (d *decorator) Reset() {
	if d.child != nil {
		d.child.Reset()
	}
}

// Inverter swaps Success and Failure; Running passes through.
type Inverter struct {
	decorator
}

func NewInverter(name string, child Node) *Inverter {
	return &Inverter{decorator{base: base{name: name}, child: child}}
}

func (inv *Inverter) Tick(agent any, dt float64) Result {
	if inv.child == nil {
		return inv.done(Failure)
	}
	switch inv.child.Tick(agent, dt) {
	case Success:
		return inv.done(Failure)
	case Failure:
		return inv.done(Success)
	default:
		return inv.done(Running)
	}
}

// RepeatForever makes a Repeater re-run its child indefinitely.
const RepeatForever = -1

// Repeater re-runs its child count times (each run to completion), resetting
// the child's transient state between runs. It reports Running until the
// count is exhausted, then Success and resets its iteration counter.
// The counter survives across ticks; it is cleared only on exhaustion or
// when the tree as a whole is reset.
type Repeater struct {
	decorator
	count      int
	iterations int
}

func NewRepeater(name string, child Node, count int) *Repeater {
	return &Repeater{
		decorator: decorator{base: base{name: name}, child: child},
		count:     count,
	}
}

func (r *Repeater) Tick(agent any, dt float64) Result {
	if r.child == nil {
		return r.done(Failure)
	}

	if r.child.Tick(agent, dt) != Running {
		r.iterations++
		r.child.Reset()
	}

	if r.count != RepeatForever && r.iterations >= r.count {
		r.iterations = 0
		return r.done(Success)
	}
	return r.done(Running)
}

func (r *Repeater) Reset() {
	r.iterations = 0
	r.decorator.Reset()
}
