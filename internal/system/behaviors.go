package system

import (
	"aicore/internal/agent"
	"aicore/internal/bt"
	"aicore/internal/geom"
)

// patrolAction cycles an agent through a fixed waypoint loop. The cursor
// is a node field rather than a captured closure variable so patrol
// progress is introspectable and survives serialization of the node.
type patrolAction struct {
	waypoints []geom.Vec3
	next      int
}

func (p *patrolAction) Name() string { return "NextPatrolWaypoint" }

func (p *patrolAction) Tick(subject any, dt float64) bt.Result {
	a, ok := subject.(*agent.Agent)
	if !ok || len(p.waypoints) == 0 {
		return bt.Failure
	}
	a.SetTarget(p.waypoints[p.next])
	p.next = (p.next + 1) % len(p.waypoints)
	return bt.Success
}

func (p *patrolAction) Reset() {}

// atWaypoint succeeds when the agent has no path left to walk.
func atWaypoint() *bt.Condition {
	return bt.NewCondition("AtWaypoint", func(subject any) bool {
		a, ok := subject.(*agent.Agent)
		if !ok {
			return false
		}
		return len(a.Path) == 0 || a.CurrentPathIndex >= len(a.Path)
	})
}

// MoveAction returns a leaf that advances the agent along its current
// path, reporting Running until the path is complete.
func MoveAction() bt.Node {
	return bt.NewAction("MoveAlongPath", func(subject any, dt float64) bt.Result {
		a, ok := subject.(*agent.Agent)
		if !ok {
			return bt.Failure
		}
		return a.MoveToNextWaypoint(dt)
	})
}

// NewPatrolTree builds a behavior that walks the given waypoints in a
// loop forever: pick the next waypoint when the current path is done,
// otherwise keep walking.
func NewPatrolTree(waypoints []geom.Vec3) *bt.Tree {
	step := bt.NewSelector("PatrolStep",
		bt.NewSequence("PickNext",
			atWaypoint(),
			&patrolAction{waypoints: waypoints},
		),
		MoveAction(),
	)
	return bt.NewTree(bt.NewRepeater("Patrol", step, bt.RepeatForever))
}

// TargetFunc supplies a chase destination for an agent, or false when no
// target is available this tick.
type TargetFunc func(*agent.Agent) (geom.Vec3, bool)

// NewChaseTree builds a behavior that re-acquires a target position each
// iteration and walks toward it; it idles (Running) while no target is
// available. The path is recomputed on every acquisition so a moving
// target keeps being tracked.
func NewChaseTree(target TargetFunc) *bt.Tree {
	acquire := bt.NewAction("AcquireTarget", func(subject any, dt float64) bt.Result {
		a, ok := subject.(*agent.Agent)
		if !ok || target == nil {
			return bt.Failure
		}
		pos, found := target(a)
		if !found {
			return bt.Failure
		}
		a.SetTarget(pos)
		return bt.Success
	})

	step := bt.NewSequence("ChaseStep", acquire, MoveAction())
	return bt.NewTree(bt.NewRepeater("Chase", step, bt.RepeatForever))
}
