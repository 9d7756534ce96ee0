// internal/scene/node.go
package scene

// Node is a named transform in a parent/child hierarchy. Only positions are
// tracked; orientation is owned by the renderer and is not modelled here.
//
// Nodes are not safe for concurrent mutation. The engine mutates them from its
// tick goroutine only.
type Node struct {
	name     string
	parent   *Node
	children []*Node
	local    Vector3
}

// NewNode creates a root node at the given world position.
func NewNode(name string, position Vector3) *Node {
	return &Node{name: name, local: position}
}

// NewChild creates a node parented to n at the given local offset.
func (n *Node) NewChild(name string, offset Vector3) *Node {
	child := &Node{name: name, local: offset}
	child.SetParent(n, false)
	return child
}

func (n *Node) Name() string { return n.name }

// Parent returns the current parent, nil for a root node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the direct children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// LocalPosition is the offset from the parent (or the world position for roots).
func (n *Node) LocalPosition() Vector3 { return n.local }

func (n *Node) SetLocalPosition(p Vector3) { n.local = p }

// Position returns the world position.
func (n *Node) Position() Vector3 {
	if n.parent == nil {
		return n.local
	}
	return n.parent.Position().Add(n.local)
}

// SetPosition moves the node so that its world position equals p.
func (n *Node) SetPosition(p Vector3) {
	if n.parent == nil {
		n.local = p
		return
	}
	n.local = p.Sub(n.parent.Position())
}

// SetParent re-parents n. A nil parent detaches the node. When keepWorld is
// true the world position is preserved, otherwise the local offset is kept.
// Attempts to create a cycle are ignored.
func (n *Node) SetParent(parent *Node, keepWorld bool) {
	if parent == n.parent {
		return
	}
	if parent != nil && parent.isDescendantOf(n) {
		return
	}
	world := n.Position()
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	if keepWorld {
		n.SetPosition(world)
	}
}

// IsDescendantOf reports whether ancestor is n or appears on its parent chain.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	return n.isDescendantOf(ancestor)
}

func (n *Node) isDescendantOf(ancestor *Node) bool {
	for p := n; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
