package testtree

import (
	"fmt"
	"strings"
)

// Node is a labelled group of cases and child groups.
type Node struct {
	Label string

	run      *Run
	depth    int
	root     bool
	cases    int
	children []*Node
	byLabel  map[string]*Node
}

// T builds a node. Every case among items runs immediately, in order;
// every *Node among items becomes a child.
func (r *Run) T(label string, items ...Item) *Node {
	n := &Node{
		Label:   label,
		run:     r,
		root:    true,
		byLabel: make(map[string]*Node),
	}

	for _, it := range Flatten(items) {
		switch v := it.(type) {
		case caseItem:
			n.cases++
			r.invoke(label, v.fn)
		case *Node:
			n.attach(v)
		}
	}

	r.mu.Lock()
	r.nodes = append(r.nodes, n)
	r.mu.Unlock()
	return n
}

func (n *Node) attach(child *Node) {
	switch {
	case child.run != n.run:
		n.run.buildErr(fmt.Errorf("attaching %q to %q: %w", child.Label, n.Label, ErrForeignRun))
		return
	case child == n || !child.root:
		n.run.buildErr(fmt.Errorf("attaching %q to %q: %w", child.Label, n.Label, ErrAlreadyAttached))
		return
	}

	child.root = false
	child.upDepth()
	n.children = append(n.children, child)

	if _, dup := n.byLabel[child.Label]; dup {
		n.run.buildErr(fmt.Errorf("attaching %q to %q: %w", child.Label, n.Label, ErrDuplicateLabel))
		return
	}
	n.byLabel[child.Label] = child
}

func (n *Node) upDepth() {
	n.depth++
	for _, c := range n.children {
		c.upDepth()
	}
}

// Depth is the distance from the root.
func (n *Node) Depth() int { return n.depth }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.root }

// Cases is the number of cases declared directly on the node.
func (n *Node) Cases() int { return n.cases }

// Children returns the child groups in declaration order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Child looks up a direct child by label.
func (n *Node) Child(label string) (*Node, bool) {
	c, ok := n.byLabel[label]
	return c, ok
}

// Indent is three spaces per level of depth.
func (n *Node) Indent() string {
	return strings.Repeat("   ", n.depth)
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
