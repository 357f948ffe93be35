// Package geometry reads element rectangles from property bags and resolves
// the screenshot origin.
package geometry

import (
	"math"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Property keys carrying element geometry in natural screenshot space.
const (
	KeyX      = "geometry_x"
	KeyY      = "geometry_y"
	KeyWidth  = "geometry_width"
	KeyHeight = "geometry_height"
)

// Point is a position in natural screenshot space.
type Point struct {
	X, Y int
}

// Rect is an element rectangle in natural screenshot space.
type Rect struct {
	X, Y, Width, Height int
}

// Area returns Width*Height. Negative extents count as zero.
func (r Rect) Area() int64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return int64(r.Width) * int64(r.Height)
}

// Contains reports whether (px, py) lies inside r, edges included.
func (r Rect) Contains(px, py float64) bool {
	return px >= float64(r.X) && px <= float64(r.X+r.Width) &&
		py >= float64(r.Y) && py <= float64(r.Y+r.Height)
}

// Offset returns r translated by -origin.
func (r Rect) Offset(origin Point) Rect {
	return Rect{X: r.X - origin.X, Y: r.Y - origin.Y, Width: r.Width, Height: r.Height}
}

// MaxCoord is the largest coordinate or extent ParseInt returns.
const MaxCoord = math.MaxInt32

// ParseInt reads the leading integer of s: optional leading whitespace, an
// optional sign, then digits. "12px" is 12, "1.9" is 1, "abc" is not numeric.
// Magnitudes past MaxCoord saturate at ±MaxCoord.
func ParseInt(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '\f' || s[i] == '\v') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	var n int64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n = n*10 + int64(s[i]-'0'); n > MaxCoord {
			n = MaxCoord
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return int(n), true
}

func field(bag props.Bag, key string) (int, bool) {
	raw, ok := bag.Raw(key)
	if !ok {
		return 0, false
	}
	return ParseInt(raw)
}

// RectOf returns the element rectangle when all four geometry fields are
// present and numeric.
func RectOf(bag props.Bag) (Rect, bool) {
	var r Rect
	var ok bool
	if r.X, ok = field(bag, KeyX); !ok {
		return Rect{}, false
	}
	if r.Y, ok = field(bag, KeyY); !ok {
		return Rect{}, false
	}
	if r.Width, ok = field(bag, KeyWidth); !ok {
		return Rect{}, false
	}
	if r.Height, ok = field(bag, KeyHeight); !ok {
		return Rect{}, false
	}
	return r, true
}

// Resolver computes the screenshot origin once per snapshot. The origin is
// the geometry position of the first node in tree order that carries
// geometry_x; screenshot pixel (0,0) corresponds to it.
type Resolver struct {
	store    *props.Store
	origin   Point
	resolved bool
}

// NewResolver returns a resolver reading bags through store.
func NewResolver(store *props.Store) *Resolver {
	return &Resolver{store: store}
}

// Origin returns the memoized origin, scanning nodes on first use. Each
// coordinate falls back to 0 independently when absent or non-numeric.
func (r *Resolver) Origin(nodes []*model.Node) Point {
	if r.resolved {
		return r.origin
	}
	r.origin = Point{}
	for _, n := range nodes {
		bag := r.store.Get(n)
		if !bag.Has(KeyX) {
			continue
		}
		r.origin.X, _ = field(bag, KeyX)
		r.origin.Y, _ = field(bag, KeyY)
		break
	}
	r.resolved = true
	return r.origin
}

// Resolved reports whether Origin has been computed since the last Reset.
func (r *Resolver) Resolved() bool { return r.resolved }

// Reset invalidates the memoized origin.
func (r *Resolver) Reset() {
	r.origin = Point{}
	r.resolved = false
}
