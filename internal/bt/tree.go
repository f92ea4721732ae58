package bt

// Tree owns a single root node of any kind and drives ticking and reset.
type Tree struct {
	root Node
}

func NewTree(root Node) *Tree {
	return &Tree{root: root}
}

func (t *Tree) Root() Node { return t.root }

// Tick evaluates the tree for one simulation step. A tree with no root
// fails rather than panicking; hand-authored trees are often partial.
func (t *Tree) Tick(agent any, dt float64) Result {
	if t == nil || t.root == nil {
		return Failure
	}
	return t.root.Tick(agent, dt)
}

// Reset clears transient progress throughout the tree.
func (t *Tree) Reset() {
	if t == nil || t.root == nil {
		return
	}
	t.root.Reset()
}
