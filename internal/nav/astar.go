package nav

import (
	"container/heap"

	"aicore/internal/geom"
)

// FindPath runs A* from start to goal and returns world-space waypoints.
//
// Both endpoints are snapped to the nearest walkable node; the returned
// path always begins at the exact start point and ends at the exact goal
// point, not the snapped centers. An empty (nil) path means no route
// exists — either endpoint had no walkable node nearby or the frontier
// emptied before reaching the goal. No partial paths are returned.
//
// Edge cost is distance(u,v) scaled by the cost of the node being entered;
// the heuristic is plain Euclidean distance, so optimality is only
// guaranteed while every node cost is >= 1.
func (m *Mesh) FindPath(start, goal geom.Vec3) []geom.Vec3 {
	startIdx, ok := m.NearestWalkable(start)
	if !ok {
		return nil
	}
	goalIdx, ok := m.NearestWalkable(goal)
	if !ok {
		return nil
	}

	cameFrom, found := m.astar(startIdx, goalIdx)
	if !found {
		return nil
	}

	// Walk backward from the goal node; the start node's center is
	// replaced by the caller's exact start point.
	path := []geom.Vec3{goal}
	for at := goalIdx; at != startIdx; at = cameFrom[at] {
		path = append(path, m.nodes[at].Center)
	}
	path = append(path, start)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// searchNode is one frontier entry. Entries are immutable once pushed;
// improved routes push a fresh entry and stale pops are harmless because
// gScore always holds the best-known cost.
type searchNode struct {
	index int
	fCost float64
	order int // insertion sequence, breaks fCost ties FIFO
}

func (m *Mesh) astar(startIdx, goalIdx int) (map[int]int, bool) {
	goalCenter := m.nodes[goalIdx].Center

	cameFrom := make(map[int]int)
	gScore := map[int]float64{startIdx: 0}

	order := 0
	open := &searchHeap{{index: startIdx, fCost: geom.Dist(m.nodes[startIdx].Center, goalCenter)}}
	heap.Init(open)

	for open.Len() > 0 {
		current := heap.Pop(open).(searchNode)
		if current.index == goalIdx {
			return cameFrom, true
		}

		cur := &m.nodes[current.index]
		for _, nb := range cur.neighbors {
			next := &m.nodes[nb]
			if !next.Walkable {
				continue
			}

			tentative := gScore[current.index] + geom.Dist(cur.Center, next.Center)*next.Cost
			if known, seen := gScore[nb]; seen && tentative >= known {
				continue
			}
			cameFrom[nb] = current.index
			gScore[nb] = tentative

			order++
			heap.Push(open, searchNode{
				index: nb,
				fCost: tentative + geom.Dist(next.Center, goalCenter),
				order: order,
			})
		}
	}
	return nil, false
}

// searchHeap is the A* open list: a min-heap by fCost with FIFO ordering
// among equal keys for deterministic paths.
type searchHeap []searchNode

func (h searchHeap) Len() int { return len(h) }
func (h searchHeap) Less(i, j int) bool {
	if h[i].fCost != h[j].fCost {
		return h[i].fCost < h[j].fCost
	}
	return h[i].order < h[j].order
}
func (h searchHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *searchHeap) Push(x any)   { *h = append(*h, x.(searchNode)) }
func (h *searchHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}
