// Package filter computes which tree nodes are visible and highlighted for
// the current search state.
//
// Three sources feed the match set: a tree-text predicate on node labels, a
// property-value predicate on string property values, and an explicit set
// of node IDs produced by a screenshot hit test. A non-empty explicit set
// replaces the text predicates; when both text predicates are active a node
// must satisfy both.
package filter

import (
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// State is the filter input.
type State struct {
	TreeText    string
	ValueText   string
	OnlyMatches bool
	Explicit    []int // Node IDs from the last screenshot hit, in tree order
}

// TextActive reports whether either text predicate is in effect.
func (s State) TextActive() bool { return s.TreeText != "" || s.ValueText != "" }

// Active reports whether any match source is in effect.
func (s State) Active() bool { return len(s.Explicit) > 0 || s.TextActive() }

// Visibility is the outcome of one recomputation. Every node starts
// visible with its child list shown; filtering can only hide containers
// outside the ancestor chains of matches.
type Visibility struct {
	visible     *roaring.Bitmap
	children    *roaring.Bitmap
	highlighted *roaring.Bitmap
	matches     []*model.Node
	total       int
	active      bool
}

func idOf(n *model.Node) uint32 { return uint32(n.ID) }

// Visible reports whether the node's own row is displayed.
func (v Visibility) Visible(id int) bool {
	return v.visible != nil && id >= 0 && v.visible.Contains(uint32(id))
}

// ChildrenVisible reports whether the node's child-list container is shown.
func (v Visibility) ChildrenVisible(id int) bool {
	return v.children != nil && id >= 0 && v.children.Contains(uint32(id))
}

// Highlighted reports whether the node is a match.
func (v Visibility) Highlighted(id int) bool {
	return v.highlighted != nil && id >= 0 && v.highlighted.Contains(uint32(id))
}

// Shown reports whether n is actually on screen: its own row is visible
// and every ancestor row and child list is visible too.
func (v Visibility) Shown(n *model.Node) bool {
	if n == nil || !v.Visible(n.ID) {
		return false
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if !v.Visible(p.ID) || !v.ChildrenVisible(p.ID) {
			return false
		}
	}
	return true
}

// Matches returns the highlighted nodes in tree order.
func (v Visibility) Matches() []*model.Node { return v.matches }

// MatchCount returns the number of highlighted nodes.
func (v Visibility) MatchCount() int { return len(v.matches) }

// VisibleCount returns the number of node rows marked visible.
func (v Visibility) VisibleCount() int {
	if v.visible == nil {
		return 0
	}
	return int(v.visible.GetCardinality())
}

// Total returns the number of nodes in the tree.
func (v Visibility) Total() int { return v.total }

// Active reports whether a filter or explicit set was in effect.
func (v Visibility) Active() bool { return v.active }

// Engine evaluates filter state against a tree.
type Engine struct {
	store *props.Store
}

// NewEngine returns an engine reading property bags through store.
func NewEngine(store *props.Store) *Engine {
	return &Engine{store: store}
}

// Recompute resets visibility, then applies the match set. With
// OnlyMatches set and a source active, every row and child list is hidden
// before the ancestor chain of each match is revealed again.
func (e *Engine) Recompute(tree *model.Tree, s State) Visibility {
	nodes := tree.Nodes()
	v := Visibility{
		visible:     roaring.New(),
		children:    roaring.New(),
		highlighted: roaring.New(),
		total:       len(nodes),
	}
	for _, n := range nodes {
		v.visible.Add(idOf(n))
		v.children.Add(idOf(n))
	}

	matches := e.Matches(tree, s)
	if len(matches) == 0 && !s.TextActive() {
		return v
	}
	v.active = true

	if s.OnlyMatches {
		v.visible.Clear()
		v.children.Clear()
	}

	for _, n := range matches {
		v.highlighted.Add(idOf(n))
		v.visible.Add(idOf(n))
		for p := n.Parent(); p != nil; p = p.Parent() {
			v.visible.Add(idOf(p))
			v.children.Add(idOf(p))
		}
	}
	v.matches = matches
	return v
}

// Matches returns the nodes selected by s in tree order. Unknown explicit
// IDs are ignored.
func (e *Engine) Matches(tree *model.Tree, s State) []*model.Node {
	if len(s.Explicit) > 0 {
		want := roaring.New()
		for _, id := range s.Explicit {
			if id >= 0 {
				want.Add(uint32(id))
			}
		}
		var out []*model.Node
		for _, n := range tree.Nodes() {
			if want.Contains(idOf(n)) {
				out = append(out, n)
			}
		}
		return out
	}
	if !s.TextActive() {
		return nil
	}

	treeTerm := strings.ToLower(s.TreeText)
	valueTerm := strings.ToLower(s.ValueText)
	var out []*model.Node
	for _, n := range tree.Nodes() {
		if treeTerm != "" && !strings.Contains(strings.ToLower(n.Label), treeTerm) {
			continue
		}
		if valueTerm != "" && !e.valueMatches(n, valueTerm) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// valueMatches checks string property values only; null and non-string
// values never match.
func (e *Engine) valueMatches(n *model.Node, term string) bool {
	for _, entry := range e.store.Get(n).Entries() {
		if entry.Value.IsString() && strings.Contains(strings.ToLower(entry.Value.Text), term) {
			return true
		}
	}
	return false
}
