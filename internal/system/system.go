// Package system orchestrates the AI core: it owns the shared navigation
// mesh and the set of agents, and drives the per-frame perception and
// behavior passes.
package system

import (
	"log/slog"

	"aicore/internal/agent"
	"aicore/internal/geom"
	"aicore/internal/nav"
)

// Default mesh parameters used when an agent is created before any mesh
// exists.
const (
	DefaultGridX    = 20
	DefaultGridY    = 20
	DefaultGridZ    = 10
	DefaultCellSize = 2.0
)

// System owns the navigation mesh and all agents. It is single-threaded:
// Update runs on the simulation goroutine and nothing here locks. A host
// that parallelizes perception must keep the mesh read-only inside the
// parallel region and serialize MarkObstacle calls outside it.
type System struct {
	mesh   *nav.Mesh
	agents []*agent.Agent
	models map[string]Backend
}

func New() *System {
	return &System{models: make(map[string]Backend)}
}

func (s *System) Mesh() *nav.Mesh { return s.mesh }

// Agents returns the agent list in creation order. Update iterates this
// slice front to back, so results are reproducible for a given setup.
func (s *System) Agents() []*agent.Agent { return s.agents }

// CreateNavMesh builds (or rebuilds) the shared mesh over the given
// bounds. Existing agents keep their mesh reference via the system.
func (s *System) CreateNavMesh(boundsMin, boundsMax geom.Vec3, cellSize float64) *nav.Mesh {
	s.mesh = nav.NewMesh(cellSize)
	s.mesh.GenerateGrid(boundsMin, boundsMax)
	for _, a := range s.agents {
		a.SetMesh(s.mesh)
	}
	return s.mesh
}

// CreateAgent constructs an agent bound to the shared mesh and registers
// it for updates. A missing mesh is created with default grid parameters
// so the system is usable without explicit setup.
func (s *System) CreateAgent(name string, tf agent.Transform) *agent.Agent {
	if s.mesh == nil {
		s.CreateNavMesh(
			geom.Vec3{},
			geom.V(DefaultGridX*DefaultCellSize, DefaultGridY*DefaultCellSize, DefaultGridZ*DefaultCellSize),
			DefaultCellSize,
		)
		slog.Debug("navmesh auto-created with defaults")
	}

	a := agent.New(name, s.mesh)
	if tf != nil {
		a.SetTransform(tf)
		a.Position = tf.Position()
	}
	s.agents = append(s.agents, a)

	if IsDebugEnabled() {
		slog.Debug("agent created", "agent", name, "id", a.ID(), "position", a.Position)
	}
	return a
}

// RemoveAgent unregisters the agent. Unknown agents are a no-op.
func (s *System) RemoveAgent(a *agent.Agent) {
	for i, existing := range s.agents {
		if existing == a {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			if IsDebugEnabled() {
				slog.Debug("agent removed", "agent", a.Name(), "id", a.ID())
			}
			return
		}
	}
}

// Update advances the whole AI core by one step. Perception is recomputed
// for every agent first, against positions as of the start of the tick,
// and only then are behaviors ticked. The two passes keep perception a
// consistent snapshot instead of an order-dependent partial view.
func (s *System) Update(dt float64) {
	for _, a := range s.agents {
		a.UpdatePerception(s.agents)
	}
	for _, a := range s.agents {
		a.Update(dt)
	}
}

// State returns basic telemetry about the system for debugging and the
// visualization endpoint.
func (s *System) State() map[string]any {
	meshState := map[string]any{"exists": s.mesh != nil}
	if s.mesh != nil {
		x, y, z := s.mesh.Extents()
		meshState["gridSize"] = [3]int{x, y, z}
		meshState["cellSize"] = s.mesh.CellSize()
		meshState["nodes"] = len(s.mesh.Nodes())
	}
	return map[string]any{
		"agents":  len(s.agents),
		"navmesh": meshState,
	}
}
