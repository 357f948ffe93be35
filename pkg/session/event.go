package session

import (
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Event is one user or loader input handled by Session.Apply.
type Event interface {
	isEvent()
}

// LoadEvent replaces the tree and resets all per-snapshot state.
type LoadEvent struct {
	Tree    *model.Tree
	Natural overlay.Size // Screenshot natural size; zero without a screenshot
}

// TreeClick selects a node from the tree pane.
type TreeClick struct {
	ID int
}

// TreeContext targets a node for context-menu copies without selecting it.
type TreeContext struct {
	ID int
}

// PropertyContext targets a property row for context-menu copies.
type PropertyContext struct {
	Name  string
	Value string
}

// ScreenshotClick is a click in displayed-image space: (0,0) is the
// screenshot's top-left corner as drawn.
type ScreenshotClick struct {
	X, Y float64
}

// TreeTextChanged sets the tree-text search.
type TreeTextChanged struct {
	Text string
}

// ValueTextChanged sets the property-value search.
type ValueTextChanged struct {
	Text string
}

// PanelTextChanged sets the property-panel row search.
type PanelTextChanged struct {
	Text string
}

// ClearFilters empties both text searches and drops the screenshot hit
// set.
type ClearFilters struct{}

// OnlyMatchesToggled sets the only-matches flag.
type OnlyMatchesToggled struct {
	On bool
}

// SortChanged sets the property-panel sort order.
type SortChanged struct {
	Order props.SortOrder
}

// Resize reports the area available to the screenshot: X and Y are its
// position within the container, Width and Height its extent.
type Resize struct {
	Viewport overlay.Display
}

// Zoom sets the screenshot zoom level relative to the fitted size.
type Zoom struct {
	Level float64
}

func (LoadEvent) isEvent()          {}
func (TreeClick) isEvent()          {}
func (TreeContext) isEvent()        {}
func (PropertyContext) isEvent()    {}
func (ScreenshotClick) isEvent()    {}
func (TreeTextChanged) isEvent()    {}
func (ValueTextChanged) isEvent()   {}
func (PanelTextChanged) isEvent()   {}
func (ClearFilters) isEvent()       {}
func (OnlyMatchesToggled) isEvent() {}
func (SortChanged) isEvent()        {}
func (Resize) isEvent()             {}
func (Zoom) isEvent()               {}
