// Package overlay projects element geometry onto the displayed screenshot.
package overlay

import (
	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Size is the screenshot's natural pixel size.
type Size struct {
	Width, Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Display is where the screenshot is drawn: X and Y are the image's offset
// within its container, Width and Height its displayed size.
type Display struct {
	X, Y          float64
	Width, Height float64
}

// Valid reports whether the displayed size is positive.
func (d Display) Valid() bool { return d.Width > 0 && d.Height > 0 }

// Box is an overlay rectangle in container coordinates.
type Box struct {
	X, Y, Width, Height float64
}

// Project maps r from natural screenshot space into container coordinates:
// subtract the origin, scale by displayed/natural per axis, then offset by
// the image position.
func Project(r geometry.Rect, origin geometry.Point, d Display, natural Size) (Box, bool) {
	if !natural.Valid() || !d.Valid() {
		return Box{}, false
	}
	sx := d.Width / float64(natural.Width)
	sy := d.Height / float64(natural.Height)
	rel := r.Offset(origin)
	return Box{
		X:      float64(rel.X)*sx + d.X,
		Y:      float64(rel.Y)*sy + d.Y,
		Width:  float64(rel.Width) * sx,
		Height: float64(rel.Height) * sy,
	}, true
}

// Overlay is the box drawn for one node.
type Overlay struct {
	NodeID int
	Rect   geometry.Rect
	Box    Box
}

// Renderer keeps at most one overlay. Every Render call removes the prior
// overlay before drawing.
type Renderer struct {
	store   *props.Store
	current *Overlay
}

// NewRenderer returns a renderer reading geometry through store.
func NewRenderer(store *props.Store) *Renderer {
	return &Renderer{store: store}
}

// Render replaces the current overlay with one for n. Nodes without
// complete geometry, or an unusable display, leave no overlay.
func (r *Renderer) Render(n *model.Node, origin geometry.Point, d Display, natural Size) (Overlay, bool) {
	r.current = nil
	if n == nil {
		return Overlay{}, false
	}
	rect, ok := geometry.RectOf(r.store.Get(n))
	if !ok {
		return Overlay{}, false
	}
	box, ok := Project(rect, origin, d, natural)
	if !ok {
		return Overlay{}, false
	}
	r.current = &Overlay{NodeID: n.ID, Rect: rect, Box: box}
	return *r.current, true
}

// Current returns the overlay on screen, if any.
func (r *Renderer) Current() (Overlay, bool) {
	if r.current == nil {
		return Overlay{}, false
	}
	return *r.current, true
}

// Clear removes the current overlay.
func (r *Renderer) Clear() { r.current = nil }
