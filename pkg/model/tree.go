// Package model holds the captured UI element hierarchy.
//
// Ownership is top-down: a Node owns its Children. The parent back-reference
// is navigational only and is assigned by Build.
package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Sentinel errors returned by Tree.Validate.
var (
	ErrCycle           = errors.New("element hierarchy contains a cycle")
	ErrMultipleParents = errors.New("element has more than one parent")
	ErrDuplicateID     = errors.New("duplicate element id")
)

// Node is one element in the captured hierarchy.
type Node struct {
	ID        int     // Pre-order position (1-based) unless set by the loader
	Label     string  // Text shown in the tree pane
	Props     string  // Encoded property bag (entity-escaped JSON object)
	RawSource string  // Original markup fragment, used for export only
	Children  []*Node // Ordered; order reflects capture order

	parent *Node
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n != nil && n.parent == nil }

// Depth returns the number of ancestors above the node.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent(); p != nil; p = p.parent {
		d++
	}
	return d
}

// Tree indexes a node hierarchy in stable pre-order.
type Tree struct {
	root  *Node
	nodes []*Node
	byID  map[int]*Node

	// revisits records child links that pointed at an already indexed node.
	// Build does not descend into them; Validate reports them.
	revisits []link
}

type link struct {
	parent, child *Node
}

// Build indexes root and its descendants, assigns parent back-references and
// fills in missing IDs with their 1-based pre-order position. A nil root
// yields an empty tree.
func Build(root *Node) *Tree {
	t := &Tree{root: root, byID: make(map[int]*Node)}
	if root == nil {
		return t
	}

	seen := make(map[*Node]bool)
	var walk func(n, parent *Node)
	walk = func(n, parent *Node) {
		seen[n] = true
		n.parent = parent
		t.nodes = append(t.nodes, n)
		if n.ID == 0 {
			n.ID = len(t.nodes)
		}
		if _, dup := t.byID[n.ID]; !dup {
			t.byID[n.ID] = n
		}
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if seen[child] {
				t.revisits = append(t.revisits, link{parent: n, child: child})
				continue
			}
			walk(child, n)
		}
	}
	walk(root, nil)
	return t
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Nodes returns all nodes in pre-order traversal order. The slice is shared;
// callers must not modify it.
func (t *Tree) Nodes() []*Node {
	if t == nil {
		return nil
	}
	return t.nodes
}

// Len returns the number of indexed nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Lookup returns the node with the given ID.
func (t *Tree) Lookup(id int) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.byID[id]
	return n, ok
}

// Ancestors returns the chain from n's parent up to the root.
func (t *Tree) Ancestors(n *Node) []*Node {
	var chain []*Node
	for p := n.Parent(); p != nil; p = p.parent {
		chain = append(chain, p)
	}
	return chain
}

// Walk visits nodes in pre-order. Returning false from fn skips the node's
// descendants.
func (t *Tree) Walk(fn func(n *Node) bool) {
	if t == nil || t.root == nil {
		return
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, child := range n.Children {
			if child != nil && child.parent == n {
				walk(child)
			}
		}
	}
	walk(t.root)
}

// Validate checks the hierarchy invariants: finite and acyclic, every
// non-root node has exactly one parent, and IDs are unique.
func (t *Tree) Validate() error {
	if t == nil || t.root == nil {
		return nil
	}
	if len(t.byID) != len(t.nodes) {
		for i, n := range t.nodes {
			if t.byID[n.ID] != n {
				return fmt.Errorf("node at position %d: %w: %d", i+1, ErrDuplicateID, n.ID)
			}
		}
	}

	g := simple.NewDirectedGraph()
	for _, n := range t.nodes {
		if g.Node(int64(n.ID)) == nil {
			g.AddNode(simple.Node(n.ID))
		}
	}
	addEdge := func(parent, child *Node) error {
		if parent == child {
			return fmt.Errorf("node %d: %w", parent.ID, ErrCycle)
		}
		g.SetEdge(g.NewEdge(simple.Node(parent.ID), simple.Node(child.ID)))
		return nil
	}
	for _, n := range t.nodes {
		for _, child := range n.Children {
			if child != nil && child.parent == n {
				if err := addEdge(n, child); err != nil {
					return err
				}
			}
		}
	}
	for _, l := range t.revisits {
		if err := addEdge(l.parent, l.child); err != nil {
			return err
		}
	}

	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("%w: %v", ErrCycle, err)
	}
	for _, n := range t.nodes {
		if parents := g.To(int64(n.ID)).Len(); parents > 1 {
			return fmt.Errorf("node %d: %w (%d)", n.ID, ErrMultipleParents, parents)
		}
	}
	return nil
}
