// Package hittest maps a click on the displayed screenshot to the elements
// whose geometry contains it.
package hittest

import (
	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Query is a click in displayed-image space together with the sizes needed
// to map it back to natural screenshot space.
type Query struct {
	ClickX, ClickY         float64
	DisplayedW, DisplayedH float64
	NaturalW, NaturalH     int
}

// Natural maps the click into natural screenshot space, before the origin
// is applied. ok is false when the displayed size cannot be scaled.
func (q Query) Natural() (x, y float64, ok bool) {
	if q.DisplayedW <= 0 || q.DisplayedH <= 0 {
		return 0, 0, false
	}
	return q.ClickX * float64(q.NaturalW) / q.DisplayedW,
		q.ClickY * float64(q.NaturalH) / q.DisplayedH, true
}

// Match is a node whose rectangle contains the click.
type Match struct {
	Node *model.Node
	Rect geometry.Rect
}

// Result lists matches in tree order and the most specific one.
type Result struct {
	Matches  []Match
	Smallest *model.Node
}

// Empty reports whether nothing was hit.
func (r Result) Empty() bool { return len(r.Matches) == 0 }

// IDs returns the matched node IDs in tree order.
func (r Result) IDs() []int {
	ids := make([]int, len(r.Matches))
	for i, m := range r.Matches {
		ids[i] = m.Node.ID
	}
	return ids
}

// FindAt returns every node with complete geometry that contains the click.
// The smallest match by area wins; equal areas resolve to the earliest node
// in tree order. Nodes must be given in tree order.
func FindAt(nodes []*model.Node, store *props.Store, q Query, origin geometry.Point) Result {
	nx, ny, ok := q.Natural()
	if !ok {
		return Result{}
	}
	px := nx + float64(origin.X)
	py := ny + float64(origin.Y)

	var res Result
	var best int64
	for _, n := range nodes {
		r, ok := geometry.RectOf(store.Get(n))
		if !ok || !r.Contains(px, py) {
			continue
		}
		res.Matches = append(res.Matches, Match{Node: n, Rect: r})
		if a := r.Area(); res.Smallest == nil || a < best {
			res.Smallest = n
			best = a
		}
	}
	return res
}
