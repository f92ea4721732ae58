// Package agent implements the AI-controlled entity: steering along
// navmesh paths, vision-cone perception and a per-agent blackboard.
package agent

import (
	"log/slog"

	"github.com/google/uuid"

	"aicore/internal/bt"
	"aicore/internal/geom"
	"aicore/internal/nav"
)

// Default movement and perception parameters, overridable per agent.
const (
	DefaultMaxSpeed         = 5.0
	DefaultAcceleration     = 10.0
	DefaultStoppingDistance = 0.5
	DefaultVisionRange      = 20.0
	DefaultVisionAngle      = 120.0 // degrees, full cone
)

// Transform is the scene-graph boundary. When attached, the agent reads
// its position and facing from the provider each update and writes the
// integrated position back after movement.
type Transform interface {
	Position() geom.Vec3
	SetPosition(geom.Vec3)
	Forward() geom.Vec3
}

// Agent owns a behavior tree and follows paths on a shared navigation
// mesh. All state is mutated on the simulation goroutine only.
type Agent struct {
	id        uuid.UUID
	name      string
	mesh      *nav.Mesh
	tree      *bt.Tree
	transform Transform

	Position geom.Vec3
	Velocity geom.Vec3

	// TargetPosition is nil until SetTarget is called.
	TargetPosition   *geom.Vec3
	Path             []geom.Vec3
	CurrentPathIndex int

	MaxSpeed         float64
	Acceleration     float64
	StoppingDistance float64

	VisionRange float64
	// VisionAngle is the full cone aperture in degrees; an agent sees
	// another when the bearing is within half of it.
	VisionAngle float64

	// Blackboard is the open key-value store behavior authors share
	// data through.
	Blackboard Blackboard

	visible []*Agent
	heading geom.Vec3
}

// New creates an agent bound to the given mesh. The mesh may be nil; the
// agent is then stationary until one is attached (SetTarget degrades to
// an empty path).
func New(name string, mesh *nav.Mesh) *Agent {
	return &Agent{
		id:               uuid.New(),
		name:             name,
		mesh:             mesh,
		MaxSpeed:         DefaultMaxSpeed,
		Acceleration:     DefaultAcceleration,
		StoppingDistance: DefaultStoppingDistance,
		VisionRange:      DefaultVisionRange,
		VisionAngle:      DefaultVisionAngle,
		Blackboard:       make(Blackboard),
		heading:          geom.V(0, 1, 0),
	}
}

func (a *Agent) ID() uuid.UUID   { return a.id }
func (a *Agent) Name() string    { return a.name }
func (a *Agent) Mesh() *nav.Mesh { return a.mesh }

// SetMesh attaches (or replaces) the shared navigation mesh. Paths already
// computed remain valid as plain waypoint data.
func (a *Agent) SetMesh(mesh *nav.Mesh) { a.mesh = mesh }

// SetBehaviorTree assigns the tree ticked by Update. The tree's lifetime
// is the agent's lifetime.
func (a *Agent) SetBehaviorTree(tree *bt.Tree) { a.tree = tree }

func (a *Agent) BehaviorTree() *bt.Tree { return a.tree }

// SetTransform attaches the scene-graph transform provider.
func (a *Agent) SetTransform(tf Transform) { a.transform = tf }

// Forward returns the agent's facing as a unit vector: the transform
// provider's if attached, otherwise the direction of travel (the last
// non-zero heading when stopped).
func (a *Agent) Forward() geom.Vec3 {
	if a.transform != nil {
		if f := a.transform.Forward().Normalized(); !f.IsZero() {
			return f
		}
	}
	if v := a.Velocity.Normalized(); !v.IsZero() {
		a.heading = v
	}
	return a.heading
}

// SetTarget stores the target and synchronously computes a path to it.
// An unreachable target (or a missing mesh) leaves an empty path and the
// agent stationary; no error is raised.
func (a *Agent) SetTarget(target geom.Vec3) {
	t := target
	a.TargetPosition = &t
	a.CurrentPathIndex = 0
	if a.mesh == nil {
		a.Path = nil
		return
	}
	a.Path = a.mesh.FindPath(a.Position, target)
	if len(a.Path) == 0 {
		slog.Debug("no path to target", "agent", a.name, "target", target)
	}
}

// MoveToNextWaypoint advances the agent along its path for one step using
// acceleration-limited steering. It reports Success once the path is
// complete (or was empty), Running otherwise. The path is treated as
// authoritative data: a path restored from persistence is followed even
// without a live mesh.
func (a *Agent) MoveToNextWaypoint(dt float64) bt.Result {
	if len(a.Path) == 0 || a.CurrentPathIndex >= len(a.Path) {
		return bt.Success
	}

	waypoint := a.Path[a.CurrentPathIndex]
	direction := waypoint.Sub(a.Position)
	distance := direction.Length()

	if distance < a.StoppingDistance {
		a.CurrentPathIndex++
		if a.CurrentPathIndex >= len(a.Path) {
			a.Velocity = geom.Vec3{}
			return bt.Success
		}
		// Steering toward the new waypoint starts on the next call.
		return bt.Running
	}

	desired := direction.Normalized().Scale(a.MaxSpeed)
	steering := desired.Sub(a.Velocity)

	a.Velocity = a.Velocity.Add(steering.Scale(a.Acceleration * dt))
	if a.Velocity.Length() > a.MaxSpeed {
		a.Velocity = a.Velocity.Normalized().Scale(a.MaxSpeed)
	}
	a.Position = a.Position.Add(a.Velocity.Scale(dt))

	if a.transform != nil {
		a.transform.SetPosition(a.Position)
	}
	return bt.Running
}

// UpdatePerception recomputes which of the given agents fall inside this
// agent's vision cone. The check is per-agent facing, so visibility is
// not symmetric. All-pairs O(N^2) across the system per tick.
func (a *Agent) UpdatePerception(all []*Agent) {
	a.visible = a.visible[:0]
	forward := a.Forward()

	for _, other := range all {
		if other == a {
			continue
		}
		toOther := other.Position.Sub(a.Position)
		if toOther.Length() > a.VisionRange {
			continue
		}
		if geom.AngleDeg(forward, toOther) <= a.VisionAngle/2 {
			a.visible = append(a.visible, other)
		}
	}
}

// VisibleAgents returns the perception result of the current tick.
// Callers must not retain the slice across ticks.
func (a *Agent) VisibleAgents() []*Agent { return a.visible }

// Sees reports whether other was visible at the last perception pass.
func (a *Agent) Sees(other *Agent) bool {
	for _, v := range a.visible {
		if v == other {
			return true
		}
	}
	return false
}

// Update syncs position from the transform provider and ticks the
// behavior tree. An agent without a tree is a no-op.
func (a *Agent) Update(dt float64) {
	if a.transform != nil {
		a.Position = a.transform.Position()
	}
	if a.tree != nil {
		a.tree.Tick(a, dt)
	}
}
