package geometry

import (
	"testing"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

func node(pairs ...string) *model.Node {
	var b props.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], pairs[i+1])
	}
	return &model.Node{Props: b.Encode()}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"12", 12, true},
		{"12px", 12, true},
		{"1.9", 1, true},
		{"  -7", -7, true},
		{"+3", 3, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"0", 0, true},
		{"2147483647", MaxCoord, true},
		{"99999999999", MaxCoord, true},
		{"-99999999999px", -MaxCoord, true},
		{"000000000000000000000012", 12, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseInt(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRectContainsClosedBounds(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"inside", 20, 30, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 40, 60, true},
		{"left of", 9.99, 30, false},
		{"below", 20, 60.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.inside {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.inside)
			}
		})
	}
}

func TestRectOf(t *testing.T) {
	r, ok := RectOf(props.Decode(node("geometry_x", "1", "geometry_y", "2", "geometry_width", "3px", "geometry_height", "4").Props))
	if !ok || r != (Rect{1, 2, 3, 4}) {
		t.Errorf("unexpected rect %+v, %v", r, ok)
	}
	if _, ok := RectOf(props.Decode(node("geometry_x", "1", "geometry_y", "2", "geometry_width", "3").Props)); ok {
		t.Error("missing height should yield no rect")
	}
	if _, ok := RectOf(props.Decode(node("geometry_x", "1", "geometry_y", "2", "geometry_width", "wide", "geometry_height", "4").Props)); ok {
		t.Error("non-numeric width should yield no rect")
	}
	if (Rect{Width: -5, Height: 3}).Area() != 0 {
		t.Error("negative extents have zero area")
	}
}

func TestResolverOrigin(t *testing.T) {
	nodes := []*model.Node{
		node("class", "QMainWindow"),
		node("geometry_x", "100", "geometry_y", "junk"),
		node("geometry_x", "5", "geometry_y", "6"),
	}
	r := NewResolver(props.NewStore())
	if r.Resolved() {
		t.Fatal("new resolver should not be resolved")
	}
	got := r.Origin(nodes)
	if got != (Point{100, 0}) {
		t.Errorf("expected first node with geometry_x and y fallback, got %+v", got)
	}
	if !r.Resolved() {
		t.Error("expected resolver to be resolved")
	}
}

// TestResolverMemoizes verifies the origin survives until Reset
func TestResolverMemoizes(t *testing.T) {
	first := []*model.Node{node("geometry_x", "10", "geometry_y", "20")}
	second := []*model.Node{node("geometry_x", "30", "geometry_y", "40")}

	r := NewResolver(props.NewStore())
	if got := r.Origin(first); got != (Point{10, 20}) {
		t.Fatalf("unexpected origin %+v", got)
	}
	if got := r.Origin(second); got != (Point{10, 20}) {
		t.Errorf("expected memoized origin, got %+v", got)
	}
	r.Reset()
	if got := r.Origin(second); got != (Point{30, 40}) {
		t.Errorf("expected recomputed origin after reset, got %+v", got)
	}
}

func TestResolverNoGeometry(t *testing.T) {
	r := NewResolver(props.NewStore())
	if got := r.Origin([]*model.Node{node("class", "X")}); got != (Point{}) {
		t.Errorf("expected zero origin, got %+v", got)
	}
	r.Reset()
	if got := r.Origin(nil); got != (Point{}) {
		t.Errorf("expected zero origin for empty tree, got %+v", got)
	}
}
