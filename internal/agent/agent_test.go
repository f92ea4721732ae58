package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aicore/internal/bt"
	"aicore/internal/geom"
	"aicore/internal/nav"
)

func flatMesh(t *testing.T, w, h int) *nav.Mesh {
	t.Helper()
	m := nav.NewMesh(1)
	m.GenerateGrid(geom.V(0, 0, 0), geom.V(float64(w), float64(h), 1))
	return m
}

func TestSetTargetComputesPath(t *testing.T) {
	a := New("walker", flatMesh(t, 10, 10))
	a.Position = geom.V(0, 0, 0)

	a.SetTarget(geom.V(7, 0, 0))
	require.NotNil(t, a.TargetPosition)
	assert.Equal(t, geom.V(7, 0, 0), *a.TargetPosition)
	require.NotEmpty(t, a.Path)
	assert.Equal(t, 0, a.CurrentPathIndex)
	assert.Equal(t, geom.V(0, 0, 0), a.Path[0])
	assert.Equal(t, geom.V(7, 0, 0), a.Path[len(a.Path)-1])
}

func TestSetTargetWithoutMesh(t *testing.T) {
	a := New("stranded", nil)
	a.SetTarget(geom.V(5, 5, 0))
	assert.Empty(t, a.Path, "no mesh degrades to an empty path")
	assert.Equal(t, bt.Success, a.MoveToNextWaypoint(0.1), "nothing to do counts as done")
}

func TestSetTargetUnreachable(t *testing.T) {
	mesh := flatMesh(t, 3, 3)
	for i := range mesh.Nodes() {
		mesh.Node(i).Walkable = false
	}
	a := New("blocked", mesh)
	a.SetTarget(geom.V(2, 2, 0))
	assert.Empty(t, a.Path)

	before := a.Position
	assert.Equal(t, bt.Success, a.MoveToNextWaypoint(0.1))
	assert.Equal(t, before, a.Position, "agent stays stationary")
}

func TestWaypointArrivalWithoutMoving(t *testing.T) {
	a := New("arriver", nil)
	a.Position = geom.V(0, 0, 0)
	a.StoppingDistance = 0.5
	a.Path = []geom.Vec3{geom.V(0.4, 0, 0)}
	a.Velocity = geom.V(1, 0, 0)

	res := a.MoveToNextWaypoint(1.0 / 30)
	assert.Equal(t, bt.Success, res, "within stopping distance of the last waypoint")
	assert.Equal(t, geom.V(0, 0, 0), a.Position, "no movement on the arrival tick")
	assert.True(t, a.Velocity.IsZero(), "velocity zeroed on arrival")
}

func TestWaypointAdvanceReturnsRunning(t *testing.T) {
	a := New("walker", nil)
	a.Position = geom.V(0, 0, 0)
	a.Path = []geom.Vec3{geom.V(0.1, 0, 0), geom.V(5, 0, 0)}

	// First call only advances the index; steering toward the next
	// waypoint happens on the following call.
	before := a.Position
	assert.Equal(t, bt.Running, a.MoveToNextWaypoint(1.0/30))
	assert.Equal(t, 1, a.CurrentPathIndex)
	assert.Equal(t, before, a.Position)

	assert.Equal(t, bt.Running, a.MoveToNextWaypoint(1.0/30))
	assert.Greater(t, a.Position.X, 0.0, "second call moves toward the new waypoint")
}

func TestSteeringClampsSpeed(t *testing.T) {
	a := New("sprinter", nil)
	a.MaxSpeed = 2
	a.Acceleration = 1000
	a.Path = []geom.Vec3{geom.V(100, 0, 0)}

	for range 10 {
		a.MoveToNextWaypoint(1.0 / 30)
		assert.LessOrEqual(t, a.Velocity.Length(), a.MaxSpeed+1e-9)
	}
	assert.Greater(t, a.Position.X, 0.0)
}

func TestRestoredPathFollowedWithoutMesh(t *testing.T) {
	// Persistence can hand back an agent whose path has no live mesh
	// behind it; the stored waypoints are authoritative.
	a := New("restored", nil)
	a.Position = geom.V(0, 0, 0)
	a.Path = []geom.Vec3{geom.V(1, 0, 0), geom.V(2, 0, 0)}
	a.CurrentPathIndex = 1

	res := bt.Running
	for i := 0; i < 500 && res == bt.Running; i++ {
		res = a.MoveToNextWaypoint(1.0 / 30)
	}
	assert.Equal(t, bt.Success, res)
	assert.InDelta(t, 2.0, a.Position.X, a.StoppingDistance)
}

func TestPerceptionAsymmetry(t *testing.T) {
	a := New("a", nil)
	b := New("b", nil)
	a.Position = geom.V(0, 0, 0)
	b.Position = geom.V(5, 0, 0)

	// Both face +X: B is dead ahead of A, while A is directly behind B.
	a.Velocity = geom.V(1, 0, 0)
	b.Velocity = geom.V(1, 0, 0)

	all := []*Agent{a, b}
	a.UpdatePerception(all)
	b.UpdatePerception(all)

	assert.True(t, a.Sees(b), "B is inside A's cone")
	assert.False(t, b.Sees(a), "A is behind B: the check is per-agent facing")
}

func TestPerceptionRange(t *testing.T) {
	a := New("a", nil)
	b := New("b", nil)
	a.VisionRange = 3
	a.Velocity = geom.V(1, 0, 0)
	b.Position = geom.V(5, 0, 0)

	a.UpdatePerception([]*Agent{a, b})
	assert.False(t, a.Sees(b), "outside vision range")

	b.Position = geom.V(2, 0, 0)
	a.UpdatePerception([]*Agent{a, b})
	assert.True(t, a.Sees(b))
}

func TestPerceptionConeEdge(t *testing.T) {
	a := New("a", nil)
	a.Velocity = geom.V(1, 0, 0)
	a.VisionAngle = 90

	inside := New("inside", nil)
	inside.Position = geom.V(3, 2, 0) // ~33.7 degrees off axis

	outside := New("outside", nil)
	outside.Position = geom.V(2, 3, 0) // ~56.3 degrees off axis

	a.UpdatePerception([]*Agent{a, inside, outside})
	assert.True(t, a.Sees(inside))
	assert.False(t, a.Sees(outside))
}

func TestPerceptionClearedEachPass(t *testing.T) {
	a := New("a", nil)
	b := New("b", nil)
	a.Velocity = geom.V(1, 0, 0)
	b.Position = geom.V(2, 0, 0)

	a.UpdatePerception([]*Agent{a, b})
	require.True(t, a.Sees(b))

	b.Position = geom.V(100, 0, 0)
	a.UpdatePerception([]*Agent{a, b})
	assert.False(t, a.Sees(b), "visibility is recomputed, not accumulated")
}

// fixedTransform is a scene-graph stand-in with a constant facing.
type fixedTransform struct {
	pos     geom.Vec3
	forward geom.Vec3
}

func (f *fixedTransform) Position() geom.Vec3     { return f.pos }
func (f *fixedTransform) SetPosition(p geom.Vec3) { f.pos = p }
func (f *fixedTransform) Forward() geom.Vec3      { return f.forward }

func TestTransformProvider(t *testing.T) {
	tf := &fixedTransform{pos: geom.V(1, 1, 0), forward: geom.V(0, 1, 0)}
	a := New("scene", nil)
	a.SetTransform(tf)

	a.Update(1.0 / 30)
	assert.Equal(t, geom.V(1, 1, 0), a.Position, "position read from the provider")
	assert.Equal(t, geom.V(0, 1, 0), a.Forward(), "facing read from the provider")

	a.Path = []geom.Vec3{geom.V(1, 5, 0)}
	a.MoveToNextWaypoint(1.0 / 30)
	assert.Equal(t, a.Position, tf.pos, "integrated position written back")
}

func TestUpdateTicksTree(t *testing.T) {
	a := New("ticked", nil)
	ticked := 0
	a.SetBehaviorTree(bt.NewTree(bt.NewAction("count", func(subject any, dt float64) bt.Result {
		require.Same(t, a, subject)
		ticked++
		return bt.Success
	})))

	a.Update(1.0 / 30)
	a.Update(1.0 / 30)
	assert.Equal(t, 2, ticked)

	noTree := New("idle", nil)
	noTree.Update(1.0 / 30) // must not panic
}

func TestBlackboard(t *testing.T) {
	a := New("bb", nil)
	a.Blackboard.Set("alert", 0.7)
	a.Blackboard.Set("zone", "north")

	f, ok := a.Blackboard.GetFloat("alert")
	require.True(t, ok)
	assert.Equal(t, 0.7, f)

	s, ok := a.Blackboard.GetString("zone")
	require.True(t, ok)
	assert.Equal(t, "north", s)

	_, ok = a.Blackboard.Get("missing")
	assert.False(t, ok)

	a.Blackboard.Delete("zone")
	_, ok = a.Blackboard.Get("zone")
	assert.False(t, ok)
}
