// Package nav provides a uniform-grid navigation mesh with A* pathfinding.
//
// Nodes live in an arena addressed by stable integer index; adjacency is
// stored as index lists and is always symmetric. The mesh is built once
// (or rebuilt via GenerateGrid) and treated as read-only during a
// simulation tick; MarkObstacle mutations belong between ticks.
package nav

import (
	"log/slog"
	"math"

	"aicore/internal/geom"
)

// Node is a single traversable cell of the mesh.
type Node struct {
	Center   geom.Vec3
	Radius   float64
	Walkable bool
	// Cost multiplies the length of every edge entering this node.
	Cost      float64
	neighbors []int
}

// Neighbors returns the indices of adjacent nodes. Callers must not modify
// the returned slice.
func (n *Node) Neighbors() []int { return n.neighbors }

type cellKey struct {
	X, Y, Z int
}

// Mesh owns the node arena and a grid-coordinate index into it.
type Mesh struct {
	cellSize float64
	extents  [3]int
	nodes    []Node
	grid     map[cellKey]int
}

// NewMesh creates an empty mesh. cellSize must be positive; non-positive
// values fall back to 1.
func NewMesh(cellSize float64) *Mesh {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Mesh{
		cellSize: cellSize,
		grid:     make(map[cellKey]int),
	}
}

func (m *Mesh) CellSize() float64 { return m.cellSize }

// Extents returns the integer grid dimensions of the last GenerateGrid call.
func (m *Mesh) Extents() (x, y, z int) {
	return m.extents[0], m.extents[1], m.extents[2]
}

// Nodes returns the node arena. Callers must not modify it; it is exposed
// for debug visualization and tests.
func (m *Mesh) Nodes() []Node { return m.nodes }

// Node returns a pointer into the arena. The pointer is invalidated by
// GenerateGrid.
func (m *Mesh) Node(i int) *Node {
	if i < 0 || i >= len(m.nodes) {
		return nil
	}
	return &m.nodes[i]
}

// NodeAt looks up the arena index for integer grid coordinates.
func (m *Mesh) NodeAt(x, y, z int) (int, bool) {
	i, ok := m.grid[cellKey{x, y, z}]
	return i, ok
}

// GenerateGrid rebuilds the mesh as a uniform grid covering [min, max).
// Extents are floor((max-min)/cellSize) per axis; each node sits at
// min + cell*cellSize with radius cellSize/2 and is linked to its six
// axis-aligned neighbors. Calling it again discards all prior nodes and
// edges, which is also the supported way to clear obstacle markings.
func (m *Mesh) GenerateGrid(boundsMin, boundsMax geom.Vec3) {
	m.nodes = m.nodes[:0]
	clear(m.grid)

	xRange := int(math.Floor((boundsMax.X - boundsMin.X) / m.cellSize))
	yRange := int(math.Floor((boundsMax.Y - boundsMin.Y) / m.cellSize))
	zRange := int(math.Floor((boundsMax.Z - boundsMin.Z) / m.cellSize))
	if xRange < 0 {
		xRange = 0
	}
	if yRange < 0 {
		yRange = 0
	}
	if zRange < 0 {
		zRange = 0
	}
	m.extents = [3]int{xRange, yRange, zRange}

	for x := 0; x < xRange; x++ {
		for y := 0; y < yRange; y++ {
			for z := 0; z < zRange; z++ {
				center := geom.V(
					boundsMin.X+float64(x)*m.cellSize,
					boundsMin.Y+float64(y)*m.cellSize,
					boundsMin.Z+float64(z)*m.cellSize,
				)
				m.grid[cellKey{x, y, z}] = len(m.nodes)
				m.nodes = append(m.nodes, Node{
					Center:   center,
					Radius:   m.cellSize / 2,
					Walkable: true,
					Cost:     1,
				})
			}
		}
	}

	// 6-connectivity: linking the positive directions covers both ends
	// because AddEdge is symmetric. Cells are visited in coordinate order
	// so neighbor lists, and therefore path tie-breaks, are deterministic.
	for x := 0; x < xRange; x++ {
		for y := 0; y < yRange; y++ {
			for z := 0; z < zRange; z++ {
				i := m.grid[cellKey{x, y, z}]
				for _, d := range [3]cellKey{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
					if j, ok := m.grid[cellKey{x + d.X, y + d.Y, z + d.Z}]; ok {
						m.AddEdge(i, j)
					}
				}
			}
		}
	}

	slog.Debug("navmesh grid generated",
		"nodes", len(m.nodes),
		"extents", [3]int{xRange, yRange, zRange},
		"cellSize", m.cellSize)
}

// AddEdge links two nodes bidirectionally. Duplicate and self edges are
// ignored, keeping adjacency a set.
func (m *Mesh) AddEdge(a, b int) {
	if a == b || a < 0 || b < 0 || a >= len(m.nodes) || b >= len(m.nodes) {
		return
	}
	for _, n := range m.nodes[a].neighbors {
		if n == b {
			return
		}
	}
	m.nodes[a].neighbors = append(m.nodes[a].neighbors, b)
	m.nodes[b].neighbors = append(m.nodes[b].neighbors, a)
}

// MarkObstacle flips walkable off for every node whose center lies within
// radius + node radius of position. There is no inverse; regenerate the
// grid to reset walkability. Paths already handed to agents are unaffected.
func (m *Mesh) MarkObstacle(position geom.Vec3, radius float64) {
	marked := 0
	for i := range m.nodes {
		if geom.Dist(m.nodes[i].Center, position) <= radius+m.nodes[i].Radius {
			if m.nodes[i].Walkable {
				marked++
			}
			m.nodes[i].Walkable = false
		}
	}
	slog.Debug("obstacle marked", "position", position, "radius", radius, "nodes", marked)
}

// NearestWalkable returns the index of the walkable node closest to p by
// Euclidean distance. Ties keep the first node in arena order so results
// are deterministic. Returns false when no walkable node exists.
func (m *Mesh) NearestWalkable(p geom.Vec3) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i := range m.nodes {
		if !m.nodes[i].Walkable {
			continue
		}
		if d := geom.Dist(m.nodes[i].Center, p); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, best >= 0
}
