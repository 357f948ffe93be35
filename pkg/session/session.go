// Package session is the selection controller: it owns the selected node,
// the filter state and the screenshot origin for one loaded snapshot, and
// turns input events into visibility, panel and overlay updates.
//
// A Session is driven from a single goroutine (the TUI update loop or a
// CLI command). It holds no locks.
package session

import (
	"math"

	"github.com/vanderheijden86/snapview/pkg/debug"
	"github.com/vanderheijden86/snapview/pkg/filter"
	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/hittest"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Zoom limits relative to the fitted screenshot size.
const (
	MinZoom = 0.25
	MaxZoom = 8.0
)

// NoSelectionMessage is shown in the property panel before a node is
// selected.
const NoSelectionMessage = "Select a node in the tree to see its properties here."

// Update describes what one Apply call changed.
type Update struct {
	Selection bool // Selected node changed
	Filter    bool // Visibility was recomputed
	Panel     bool // Property table was rebuilt
	Overlay   bool // Overlay was redrawn or removed
	Hit       *hittest.Result
}

// View is the derived output for rendering.
type View struct {
	Selected   *model.Node
	Visibility filter.Visibility
	Table      props.Table
	Overlay    overlay.Overlay
	HasOverlay bool
	Display    overlay.Display
	Origin     geometry.Point
	Filter     filter.State
	PanelText  string
	Sort       props.SortOrder
	Zoom       float64
}

// PropertyTarget is the property row targeted by a context menu.
type PropertyTarget struct {
	Name  string
	Value string
}

// Session holds per-snapshot inspector state.
type Session struct {
	tree    *model.Tree
	natural overlay.Size

	store    *props.Store
	origin   *geometry.Resolver
	engine   *filter.Engine
	renderer *overlay.Renderer

	selected    *model.Node
	contextNode *model.Node
	contextProp *PropertyTarget

	filter    filter.State
	panelText string
	sort      props.SortOrder

	viewport overlay.Display
	zoom     float64

	visibility filter.Visibility
	table      props.Table
	lastHit    hittest.Result
}

// Option configures a Session.
type Option func(*Session)

// WithSort sets the initial property sort order.
func WithSort(o props.SortOrder) Option {
	return func(s *Session) { s.sort = o }
}

// WithOnlyMatches sets the initial only-matches flag.
func WithOnlyMatches(on bool) Option {
	return func(s *Session) { s.filter.OnlyMatches = on }
}

// New returns an empty session.
func New(opts ...Option) *Session {
	store := props.NewStore()
	s := &Session{
		tree:     model.Build(nil),
		store:    store,
		origin:   geometry.NewResolver(store),
		engine:   filter.NewEngine(store),
		renderer: overlay.NewRenderer(store),
		zoom:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	s.rebuildPanel()
	return s
}

// Tree returns the loaded tree.
func (s *Session) Tree() *model.Tree { return s.tree }

// Store returns the property store shared by the session's components.
func (s *Session) Store() *props.Store { return s.store }

// Natural returns the loaded screenshot's natural size.
func (s *Session) Natural() overlay.Size { return s.natural }

// Selected returns the selected node, or nil.
func (s *Session) Selected() *model.Node { return s.selected }

// ContextNode returns the node targeted by the last tree context event,
// falling back to the selection.
func (s *Session) ContextNode() *model.Node {
	if s.contextNode != nil {
		return s.contextNode
	}
	return s.selected
}

// ContextProperty returns the property row targeted by the last property
// context event.
func (s *Session) ContextProperty() (PropertyTarget, bool) {
	if s.contextProp == nil {
		return PropertyTarget{}, false
	}
	return *s.contextProp, true
}

// LastHit returns the result of the most recent screenshot click.
func (s *Session) LastHit() hittest.Result { return s.lastHit }

// Origin resolves the screenshot origin on first use.
func (s *Session) Origin() geometry.Point { return s.origin.Origin(s.tree.Nodes()) }

// Load replaces the tree and returns to the unselected state.
func (s *Session) Load(tree *model.Tree, natural overlay.Size) Update {
	return s.Apply(LoadEvent{Tree: tree, Natural: natural})
}

// Apply performs one state transition and the recomputation it requires.
func (s *Session) Apply(ev Event) Update {
	switch ev := ev.(type) {
	case LoadEvent:
		return s.load(ev)
	case TreeClick:
		n, ok := s.tree.Lookup(ev.ID)
		if !ok {
			return Update{}
		}
		return s.selectNode(n)
	case TreeContext:
		n, ok := s.tree.Lookup(ev.ID)
		if !ok {
			return Update{}
		}
		s.contextNode = n
		return Update{}
	case PropertyContext:
		s.contextProp = &PropertyTarget{Name: ev.Name, Value: ev.Value}
		return Update{}
	case ScreenshotClick:
		return s.clickScreenshot(ev.X, ev.Y)
	case TreeTextChanged:
		if ev.Text == s.filter.TreeText {
			return Update{}
		}
		s.filter.TreeText = ev.Text
		s.filter.Explicit = nil
		s.recompute()
		return Update{Filter: true}
	case ValueTextChanged:
		if ev.Text == s.filter.ValueText {
			return Update{}
		}
		s.filter.ValueText = ev.Text
		s.filter.Explicit = nil
		s.recompute()
		return Update{Filter: true}
	case ClearFilters:
		if !s.filter.Active() {
			return Update{}
		}
		s.filter.TreeText, s.filter.ValueText, s.filter.Explicit = "", "", nil
		s.recompute()
		return Update{Filter: true}
	case OnlyMatchesToggled:
		s.filter.OnlyMatches = ev.On
		s.recompute()
		return Update{Filter: true}
	case PanelTextChanged:
		s.panelText = ev.Text
		s.rebuildPanel()
		return Update{Panel: true}
	case SortChanged:
		s.sort = ev.Order
		s.rebuildPanel()
		return Update{Panel: true}
	case Resize:
		s.viewport = ev.Viewport
		return Update{Overlay: s.redrawOverlay()}
	case Zoom:
		s.zoom = clampZoom(ev.Level)
		return Update{Overlay: s.redrawOverlay()}
	}
	return Update{}
}

func (s *Session) load(ev LoadEvent) Update {
	tree := ev.Tree
	if tree == nil {
		tree = model.Build(nil)
	}
	s.tree = tree
	s.natural = ev.Natural
	s.store.Reset()
	s.origin.Reset()
	s.renderer.Clear()
	s.selected = nil
	s.contextNode = nil
	s.contextProp = nil
	s.filter.Explicit = nil
	s.lastHit = hittest.Result{}
	s.recompute()
	s.rebuildPanel()
	debug.Log("session: loaded %d nodes, screenshot %dx%d", tree.Len(), ev.Natural.Width, ev.Natural.Height)
	return Update{Selection: true, Filter: true, Panel: true, Overlay: true}
}

func (s *Session) selectNode(n *model.Node) Update {
	s.selected = n
	s.contextNode = nil
	s.rebuildPanel()
	s.redrawOverlay()
	return Update{Selection: true, Panel: true, Overlay: true}
}

// clickScreenshot hit-tests a click. A hit selects the smallest match and
// highlights every match; a miss clears the highlight and falls back to the
// text filters while keeping the selection and overlay as they were. A
// click outside the drawn image is a miss even when some element's geometry
// extends there.
func (s *Session) clickScreenshot(x, y float64) Update {
	d := s.Display()
	var res hittest.Result
	if x >= 0 && y >= 0 && x <= d.Width && y <= d.Height {
		q := hittest.Query{
			ClickX: x, ClickY: y,
			DisplayedW: d.Width, DisplayedH: d.Height,
			NaturalW: s.natural.Width, NaturalH: s.natural.Height,
		}
		stop := metrics.Timer(metrics.HitTest)
		res = hittest.FindAt(s.tree.Nodes(), s.store, q, s.Origin())
		stop()
	}
	s.lastHit = res
	debug.Log("session: screenshot click (%.1f,%.1f) matched %d nodes", x, y, len(res.Matches))

	if res.Empty() {
		s.filter.Explicit = nil
		s.recompute()
		return Update{Filter: true, Hit: &res}
	}

	s.filter.Explicit = res.IDs()
	s.recompute()
	u := s.selectNode(res.Smallest)
	u.Filter = true
	u.Hit = &res
	return u
}

func (s *Session) recompute() {
	defer metrics.Timer(metrics.FilterRecompute)()
	s.visibility = s.engine.Recompute(s.tree, s.filter)
}

func (s *Session) rebuildPanel() {
	if s.selected == nil {
		s.table = props.Table{}
		return
	}
	s.table = props.BuildTable(s.store.Get(s.selected), props.TableOptions{Sort: s.sort, Search: s.panelText})
}

// redrawOverlay recomputes the overlay for the selection. It reports
// whether an overlay was removed or drawn.
func (s *Session) redrawOverlay() bool {
	_, had := s.renderer.Current()
	if s.selected == nil {
		s.renderer.Clear()
		return had
	}
	defer metrics.Timer(metrics.OverlayProject)()
	_, drawn := s.renderer.Render(s.selected, s.Origin(), s.Display(), s.natural)
	return had || drawn
}

// Display returns where the screenshot is drawn: fitted into the viewport
// without upscaling, then multiplied by the zoom level.
func (s *Session) Display() overlay.Display {
	if !s.natural.Valid() {
		return overlay.Display{X: s.viewport.X, Y: s.viewport.Y}
	}
	nw, nh := float64(s.natural.Width), float64(s.natural.Height)
	scale := 1.0
	if s.viewport.Valid() {
		scale = math.Min(1, math.Min(s.viewport.Width/nw, s.viewport.Height/nh))
	}
	scale *= s.zoom
	return overlay.Display{
		X:      s.viewport.X,
		Y:      s.viewport.Y,
		Width:  nw * scale,
		Height: nh * scale,
	}
}

// Zoom returns the current zoom level.
func (s *Session) Zoom() float64 { return s.zoom }

// View returns the current derived output.
func (s *Session) View() View {
	o, ok := s.renderer.Current()
	return View{
		Selected:   s.selected,
		Visibility: s.visibility,
		Table:      s.table,
		Overlay:    o,
		HasOverlay: ok,
		Display:    s.Display(),
		Origin:     s.Origin(),
		Filter:     s.filter,
		PanelText:  s.panelText,
		Sort:       s.sort,
		Zoom:       s.zoom,
	}
}

// PanelMessage returns the fallback text for the property panel, or "".
func (v View) PanelMessage() string {
	if v.Selected == nil {
		return NoSelectionMessage
	}
	return v.Table.Message()
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) || z <= 0 {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
