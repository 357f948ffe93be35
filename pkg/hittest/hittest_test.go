package hittest

import (
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

func rectNode(id, x, y, w, h int) *model.Node {
	var b props.Builder
	b.Set("geometry_x", strconv.Itoa(x))
	b.Set("geometry_y", strconv.Itoa(y))
	b.Set("geometry_width", strconv.Itoa(w))
	b.Set("geometry_height", strconv.Itoa(h))
	return &model.Node{ID: id, Props: b.Encode()}
}

// identity maps displayed pixels one-to-one onto natural pixels.
func identity(x, y float64) Query {
	return Query{ClickX: x, ClickY: y, DisplayedW: 1000, DisplayedH: 800, NaturalW: 1000, NaturalH: 800}
}

// TestFindAtSmallestWins verifies the click-to-select scenario
func TestFindAtSmallestWins(t *testing.T) {
	nodes := []*model.Node{
		rectNode(3, 0, 0, 1000, 800),
		rectNode(7, 100, 50, 20, 20),
	}
	res := FindAt(nodes, props.NewStore(), identity(110, 60), geometry.Point{})

	if len(res.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(res.Matches))
	}
	if res.Smallest == nil || res.Smallest.ID != 7 {
		t.Fatalf("expected node 7 to win, got %+v", res.Smallest)
	}
	ids := res.IDs()
	if ids[0] != 3 || ids[1] != 7 {
		t.Errorf("expected matches in tree order [3 7], got %v", ids)
	}
}

func TestFindAtTieBreak(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []*model.Node
		wantID int
	}{
		{
			name:   "smaller area wins regardless of order",
			nodes:  []*model.Node{rectNode(1, 0, 0, 10, 10), rectNode(2, 0, 0, 5, 5)},
			wantID: 2,
		},
		{
			name:   "equal areas resolve to first in tree order",
			nodes:  []*model.Node{rectNode(1, 0, 0, 4, 4), rectNode(2, 1, 1, 2, 8)},
			wantID: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FindAt(tt.nodes, props.NewStore(), identity(2, 2), geometry.Point{})
			if res.Smallest == nil || res.Smallest.ID != tt.wantID {
				t.Errorf("expected node %d, got %+v", tt.wantID, res.Smallest)
			}
		})
	}
}

func TestFindAtScalingAndOrigin(t *testing.T) {
	nodes := []*model.Node{rectNode(1, 300, 150, 50, 50)}
	q := Query{ClickX: 110, ClickY: 60, DisplayedW: 500, DisplayedH: 400, NaturalW: 1000, NaturalH: 800}

	// (110,60) displayed is (220,120) natural, plus origin (100,50).
	res := FindAt(nodes, props.NewStore(), q, geometry.Point{X: 100, Y: 50})
	if res.Smallest == nil || res.Smallest.ID != 1 {
		t.Fatalf("expected hit on node 1, got %+v", res)
	}

	res = FindAt(nodes, props.NewStore(), q, geometry.Point{})
	if !res.Empty() || res.Smallest != nil {
		t.Errorf("expected miss without origin, got %v", res.IDs())
	}
}

func TestFindAtDegenerate(t *testing.T) {
	nodes := []*model.Node{rectNode(1, 0, 0, 100, 100), {ID: 2, Props: `{"geometry_x": "0"}`}}
	tests := []struct {
		name string
		q    Query
	}{
		{"zero displayed width", Query{ClickX: 1, ClickY: 1, DisplayedW: 0, DisplayedH: 10, NaturalW: 10, NaturalH: 10}},
		{"negative displayed height", Query{ClickX: 1, ClickY: 1, DisplayedW: 10, DisplayedH: -1, NaturalW: 10, NaturalH: 10}},
		{"outside every rect", identity(500, 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FindAt(nodes, props.NewStore(), tt.q, geometry.Point{})
			if !res.Empty() || res.Smallest != nil {
				t.Errorf("expected no matches, got %v", res.IDs())
			}
		})
	}
}

// TestFindAtSmallestIsMinimal checks that no match is strictly smaller than
// the chosen one and that earlier equal-area matches are never skipped.
func TestFindAtSmallestIsMinimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 12).Draw(t, "count")
		nodes := make([]*model.Node, count)
		for i := range nodes {
			nodes[i] = rectNode(i+1,
				rapid.IntRange(0, 50).Draw(t, "x"),
				rapid.IntRange(0, 50).Draw(t, "y"),
				rapid.IntRange(0, 60).Draw(t, "w"),
				rapid.IntRange(0, 60).Draw(t, "h"))
		}
		cx := float64(rapid.IntRange(0, 100).Draw(t, "cx"))
		cy := float64(rapid.IntRange(0, 100).Draw(t, "cy"))

		res := FindAt(nodes, props.NewStore(), identity(cx, cy), geometry.Point{})
		if res.Empty() {
			if res.Smallest != nil {
				t.Fatalf("smallest set without matches")
			}
			return
		}
		var chosen Match
		for _, m := range res.Matches {
			if m.Node == res.Smallest {
				chosen = m
				break
			}
		}
		for _, m := range res.Matches {
			if m.Rect.Area() < chosen.Rect.Area() {
				t.Fatalf("node %d is smaller than chosen node %d", m.Node.ID, chosen.Node.ID)
			}
			if m.Rect.Area() == chosen.Rect.Area() && m.Node.ID < chosen.Node.ID {
				t.Fatalf("equal-area node %d precedes chosen node %d", m.Node.ID, chosen.Node.ID)
			}
		}
	})
}
