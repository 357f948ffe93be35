// Package ui is the terminal inspector: an element tree, the screenshot
// drawn with half-block cells and the property table of the selection.
package ui

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/snapview/pkg/clip"
	"github.com/vanderheijden86/snapview/pkg/config"
	"github.com/vanderheijden86/snapview/pkg/debug"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/session"
	"github.com/vanderheijden86/snapview/pkg/snapshot"
	"github.com/vanderheijden86/snapview/pkg/watcher"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// zoomStep is the factor applied per zoom key press.
const zoomStep = 1.25

// focus represents which UI element has keyboard focus
type focus int

const (
	focusTree focus = iota
	focusPanel
	focusTreeSearch
	focusValueSearch
	focusPanelSearch
	focusMenu
	focusHelp
	focusRaw
)

// SnapshotLoadedMsg carries the result of a (re)load.
type SnapshotLoadedMsg struct {
	Snapshot *snapshot.Snapshot
	Err      error
}

// FileChangedMsg is sent when the snapshot file changes on disk.
type FileChangedMsg struct {
	Change watcher.Change
}

// WatchFileCmd returns a command that waits for the next change.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return FileChangedMsg{Change: c}
	}
}

// LoadSnapshotCmd loads path off the event loop.
func LoadSnapshotCmd(path string, load func(string) (*snapshot.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := load(path)
		return SnapshotLoadedMsg{Snapshot: snap, Err: err}
	}
}

// rect is a pane's content area in screen cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// layout holds the content areas computed on resize.
type layout struct {
	leftW, rightW    int
	shotOuterH       int
	panelOuterH      int
	tree, shot, prop rect
}

// Model is the inspector's bubbletea model.
type Model struct {
	theme Theme
	keys  keyMap
	help  help.Model

	sess      *session.Session
	snap      *snapshot.Snapshot
	path      string
	cfg       config.Config
	whitelist []string
	pinnedWL  bool
	clipboard clip.Writer
	watcher   *watcher.Watcher
	load      func(string) (*snapshot.Snapshot, error)
	initialID int

	tree  treePane
	shot  screenshotPane
	panel panelPane

	treeInput  textinput.Model
	valueInput textinput.Model
	panelInput textinput.Model

	focused   focus
	prevFocus focus
	menu      copyMenu
	modal     viewport.Model

	width, height int
	layout        layout

	statusMsg     string
	statusIsError bool
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard.
func WithClipboard(w clip.Writer) Option {
	return func(m *Model) { m.clipboard = w }
}

// WithWatcher reloads the snapshot when w reports a change.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithWhitelist sets the keys used for element reference strings.
func WithWhitelist(keys []string) Option {
	return func(m *Model) { m.whitelist, m.pinnedWL = keys, true }
}

// WithLoader replaces snapshot.Load for reloads.
func WithLoader(load func(string) (*snapshot.Snapshot, error)) Option {
	return func(m *Model) { m.load = load }
}

// WithSelection selects the element with id once the snapshot is shown.
// Zero selects nothing.
func WithSelection(id int) Option {
	return func(m *Model) { m.initialID = id }
}

// WithTheme replaces the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	return in
}

// NewModel returns an inspector showing snap.
func NewModel(snap *snapshot.Snapshot, cfg config.Config, opts ...Option) Model {
	m := Model{
		theme:      DefaultTheme(lipgloss.DefaultRenderer()),
		keys:       defaultKeyMap(),
		help:       help.New(),
		cfg:        cfg,
		whitelist:  cfg.Whitelist,
		clipboard:  clip.System(),
		load:       snapshot.Load,
		tree:       newTreePane(),
		shot:       newScreenshotPane(),
		panel:      newPanelPane(),
		treeInput:  newInput("/ ", "tree"),
		valueInput: newInput("v ", "value"),
		panelInput: newInput("p ", "properties"),
		modal:      viewport.New(60, 20),
		sess: session.New(
			session.WithSort(cfg.SortOrder()),
			session.WithOnlyMatches(cfg.UI.OnlyMatches),
		),
		width:  120,
		height: 40,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if z := cfg.UI.Zoom; z > 0 && z != 1 {
		m.sess.Apply(session.Zoom{Level: z})
	}
	m.resize(m.width, m.height)
	if snap != nil {
		m.setSnapshot(snap)
		if m.initialID > 0 {
			m.apply(session.TreeClick{ID: m.initialID})
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

// Session exposes the inspector state.
func (m Model) Session() *session.Session { return m.sess }

// Status returns the status bar message.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

// FocusState names the focused element.
func (m Model) FocusState() string {
	switch m.focused {
	case focusPanel:
		return "panel"
	case focusTreeSearch:
		return "tree-search"
	case focusValueSearch:
		return "value-search"
	case focusPanelSearch:
		return "panel-search"
	case focusMenu:
		return "menu"
	case focusHelp:
		return "help"
	case focusRaw:
		return "raw"
	default:
		return "tree"
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg, m.statusIsError = msg, isErr
}

// setSnapshot loads snap into the session. Loading leaves nothing
// selected; only a refresh of the same file reselects the previous element
// ID when it still exists.
func (m *Model) setSnapshot(snap *snapshot.Snapshot) {
	prev := m.sess.Selected()
	refresh := m.snap != nil && snap.Path != "" && snap.Path == m.snap.Path
	m.snap = snap
	m.path = snap.Path

	var img image.Image
	if snap.HasScreenshot() {
		var err error
		img, err = snap.Image()
		if err != nil {
			m.setStatus(err.Error(), true)
		}
	} else if snap.ScreenshotErr != nil {
		m.setStatus(snap.ScreenshotErr.Error(), true)
	}
	m.shot.setImage(img)

	if !m.pinnedWL && snap.Path != "" {
		wl, err := m.cfg.WhitelistFor(snap.Path)
		if err != nil {
			debug.Log("ui: whitelist: %v", err)
		}
		m.whitelist = wl
	}

	m.tree.collapsed = make(map[int]bool)
	m.apply(session.LoadEvent{Tree: snap.Tree, Natural: snap.Natural})
	m.apply(session.Resize{Viewport: m.shot.viewport()})
	// Live reloads of the same file keep the user's place.
	if refresh && prev != nil {
		m.apply(session.TreeClick{ID: prev.ID})
	}
}

// apply runs ev through the session and refreshes the panes it touched.
func (m *Model) apply(ev session.Event) session.Update {
	u := m.sess.Apply(ev)
	if u.Selection {
		if sel := m.sess.Selected(); sel != nil {
			m.tree.reveal(sel)
		}
	}
	if u.Filter || u.Selection {
		m.refreshTree()
	}
	if u.Selection {
		if sel := m.sess.Selected(); sel != nil {
			m.tree.focusID(sel.ID)
		}
	}
	if u.Panel || u.Selection {
		m.panel.setTable(m.sess.View().Table)
	}
	if u.Hit != nil {
		if u.Hit.Empty() {
			m.setStatus("No element at this point", false)
		} else {
			m.setStatus(fmt.Sprintf("%d elements at this point, selected %s", len(u.Hit.Matches), u.Hit.Smallest.Label), false)
		}
	}
	return u
}

func (m *Model) refreshTree() {
	v := m.sess.View()
	m.tree.setRows(flattenTree(m.sess.Tree(), v.Visibility, m.tree.collapsed))
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	bodyH := h - 3
	if bodyH < 6 {
		bodyH = 6
	}
	ratio := m.cfg.UI.SplitRatio
	if ratio <= 0 {
		ratio = config.DefaultConfig().UI.SplitRatio
	}
	leftW := int(float64(w) * ratio)
	if leftW < 20 {
		leftW = 20
	}
	if leftW > w-20 {
		leftW = w - 20
	}
	rightW := w - leftW
	shotH := bodyH * 3 / 5
	if shotH < 4 {
		shotH = 4
	}
	panelH := bodyH - shotH

	// Two header rows, then bordered panes with a title line each.
	const bodyTop = 2
	l := layout{
		leftW: leftW, rightW: rightW,
		shotOuterH: shotH, panelOuterH: panelH,
		tree: rect{x: 1, y: bodyTop + 2, w: leftW - 2, h: bodyH - 3},
		shot: rect{x: leftW + 1, y: bodyTop + 2, w: rightW - 2, h: shotH - 3},
		prop: rect{x: leftW + 1, y: bodyTop + shotH + 2, w: rightW - 2, h: panelH - 3},
	}
	m.layout = l

	m.tree.setSize(l.tree.w, l.tree.h)
	m.shot.setSize(l.shot.w, l.shot.h)
	m.panel.setSize(l.prop.w, l.prop.h)
	m.modal.Width = w * 3 / 4
	m.modal.Height = bodyH - 4
	m.help.Width = w

	inputW := w/3 - 6
	if inputW < 8 {
		inputW = 8
	}
	m.treeInput.Width, m.valueInput.Width, m.panelInput.Width = inputW, inputW, inputW

	m.apply(session.Resize{Viewport: m.shot.viewport()})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case SnapshotLoadedMsg:
		if msg.Err != nil {
			m.setStatus("Reload failed: "+msg.Err.Error(), true)
			break
		}
		m.setSnapshot(msg.Snapshot)
		m.setStatus(fmt.Sprintf("Loaded %s (%d elements)", msg.Snapshot.Name, msg.Snapshot.Tree.Len()), false)

	case FileChangedMsg:
		m.setStatus(filepath.Base(msg.Change.Path)+" changed, reloading", false)
		if m.path != "" {
			cmds = append(cmds, LoadSnapshotCmd(m.path, m.load))
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.focused {
	case focusTreeSearch, focusValueSearch, focusPanelSearch:
		return m.handleInputKeys(msg)
	case focusMenu:
		return m.handleMenuKeys(msg), nil
	case focusHelp, focusRaw:
		return m.handleModalKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openModal(focusHelp, renderMarkdown(helpMarkdown(m.keys), m.modal.Width))
	case key.Matches(msg, m.keys.TreeSearch):
		return m, m.focusInput(focusTreeSearch)
	case key.Matches(msg, m.keys.ValueSearch):
		return m, m.focusInput(focusValueSearch)
	case key.Matches(msg, m.keys.PanelSearch):
		return m, m.focusInput(focusPanelSearch)
	case key.Matches(msg, m.keys.OnlyMatches):
		on := !m.sess.View().Filter.OnlyMatches
		m.apply(session.OnlyMatchesToggled{On: on})
		m.setStatus(fmt.Sprintf("Only matches: %s", onOff(on)), false)
	case key.Matches(msg, m.keys.Sort):
		order := m.sess.View().Sort.Next()
		m.apply(session.SortChanged{Order: order})
		m.setStatus("Property sort: "+order.String(), false)
	case key.Matches(msg, m.keys.ZoomIn):
		m.apply(session.Zoom{Level: m.sess.Zoom() * zoomStep})
	case key.Matches(msg, m.keys.ZoomOut):
		m.apply(session.Zoom{Level: m.sess.Zoom() / zoomStep})
	case key.Matches(msg, m.keys.ZoomReset):
		m.apply(session.Zoom{Level: 1})
	case key.Matches(msg, m.keys.CopyMenu):
		m.openNodeMenu()
	case key.Matches(msg, m.keys.CopyName):
		m.copyPanelRow(clip.PropertyName)
	case key.Matches(msg, m.keys.CopyValue):
		m.copyPanelRow(clip.PropertyValue)
	case key.Matches(msg, m.keys.Raw):
		m.openRaw()
	case key.Matches(msg, m.keys.Reload):
		if m.path == "" {
			m.setStatus("Nothing to reload", true)
			return m, nil
		}
		m.setStatus("Reloading "+filepath.Base(m.path), false)
		return m, LoadSnapshotCmd(m.path, m.load)
	case key.Matches(msg, m.keys.Clear):
		m.treeInput.SetValue("")
		m.valueInput.SetValue("")
		m.apply(session.ClearFilters{})
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focused == focusTree {
			m.focused = focusPanel
		} else {
			m.focused = focusTree
		}
	default:
		if m.focused == focusPanel {
			m.handlePanelKeys(msg)
		} else {
			m.handleTreeKeys(msg)
		}
	}
	return m, nil
}

func (m *Model) handleTreeKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.tree.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.tree.move(1)
	case key.Matches(msg, m.keys.Top):
		m.tree.top()
	case key.Matches(msg, m.keys.Bottom):
		m.tree.bottom()
	case key.Matches(msg, m.keys.Select):
		if n := m.tree.cursorNode(); n != nil {
			m.apply(session.TreeClick{ID: n.ID})
		}
	case key.Matches(msg, m.keys.Collapse):
		m.tree.toggle(false)
		m.refreshTree()
	case key.Matches(msg, m.keys.Expand):
		m.tree.toggle(true)
		m.refreshTree()
	}
}

func (m *Model) handlePanelKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.panel.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.panel.move(1)
	case key.Matches(msg, m.keys.Top):
		m.panel.move(-len(m.panel.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.panel.move(len(m.panel.rows))
	case key.Matches(msg, m.keys.Select):
		if row, ok := m.panel.cursorRow(); ok {
			m.apply(session.PropertyContext{Name: row.Name, Value: row.Value.Display()})
			m.menu = propertyMenu(row.Name)
			m.openMenu()
		}
	}
}

func (m *Model) input(f focus) *textinput.Model {
	switch f {
	case focusValueSearch:
		return &m.valueInput
	case focusPanelSearch:
		return &m.panelInput
	default:
		return &m.treeInput
	}
}

func (m *Model) focusInput(f focus) tea.Cmd {
	if m.focused < focusTreeSearch {
		m.prevFocus = m.focused
	}
	m.focused = f
	return m.input(f).Focus()
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	in := m.input(m.focused)
	switch msg.String() {
	case "esc", "enter", "tab":
		in.Blur()
		m.focused = m.prevFocus
		return m, nil
	}

	before := in.Value()
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	if after := in.Value(); after != before {
		switch m.focused {
		case focusTreeSearch:
			m.apply(session.TreeTextChanged{Text: after})
		case focusValueSearch:
			m.apply(session.ValueTextChanged{Text: after})
		case focusPanelSearch:
			m.apply(session.PanelTextChanged{Text: after})
		}
	}
	return m, cmd
}

func (m *Model) openMenu() {
	if m.focused < focusTreeSearch {
		m.prevFocus = m.focused
	}
	m.focused = focusMenu
}

func (m *Model) openNodeMenu() {
	n := m.sess.ContextNode()
	if n == nil {
		n = m.tree.cursorNode()
		if n == nil {
			m.setStatus("No element to copy from", true)
			return
		}
		m.apply(session.TreeContext{ID: n.ID})
	}
	m.menu = nodeMenu(n.Label)
	m.openMenu()
}

func (m Model) handleMenuKeys(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Quit):
		m.focused = m.prevFocus
	case key.Matches(msg, m.keys.Up):
		m.menu.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.menu.move(1)
	case msg.String() == "enter":
		if t, ok := m.menu.selected(); ok {
			m.copy(t)
		}
		m.focused = m.prevFocus
	default:
		if t, ok := m.menu.shortcut(msg.String()); ok {
			m.copy(t)
			m.focused = m.prevFocus
		}
	}
	return m
}

func (m *Model) openModal(f focus, content string) {
	if m.focused < focusTreeSearch {
		m.prevFocus = m.focused
	}
	m.focused = f
	m.modal.SetContent(content)
	m.modal.GotoTop()
}

func (m *Model) openRaw() {
	n := m.sess.Selected()
	if n == nil {
		n = m.tree.cursorNode()
	}
	if n == nil {
		m.setStatus("No element selected", true)
		return
	}
	m.openModal(focusRaw, renderMarkdown(rawMarkdown(n.Label, n.RawSource), m.modal.Width))
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Clear), key.Matches(msg, m.keys.Quit),
		key.Matches(msg, m.keys.Help) && m.focused == focusHelp,
		key.Matches(msg, m.keys.Raw) && m.focused == focusRaw:
		m.focused = m.prevFocus
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.modal.SetYOffset(m.modal.YOffset + 1)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.modal.SetYOffset(m.modal.YOffset - 1)
		return m, nil
	}
	var cmd tea.Cmd
	m.modal, cmd = m.modal.Update(msg)
	return m, cmd
}

// copy writes target for the current context node or property.
func (m *Model) copy(t clip.Target) {
	n := m.sess.ContextNode()
	src := clip.Source{Node: n, Bag: m.sess.Store().Get(n), Whitelist: m.whitelist}
	if p, ok := m.sess.ContextProperty(); ok {
		src.PropName, src.PropValue = p.Name, p.Value
	}
	feedback, err := clip.Copy(m.clipboard, t, src)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(feedback, false)
}

func (m *Model) copyPanelRow(t clip.Target) {
	row, ok := m.panel.cursorRow()
	if !ok {
		m.setStatus("No property under the cursor", true)
		return
	}
	m.apply(session.PropertyContext{Name: row.Name, Value: row.Value.Display()})
	m.copy(t)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.focused >= focusMenu {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.focused = m.prevFocus
		}
		return
	}
	l := m.layout
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		delta := 3
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -3
		}
		switch {
		case l.tree.contains(msg.X, msg.Y):
			m.tree.scroll(delta)
		case l.prop.contains(msg.X, msg.Y):
			m.panel.scroll(delta)
		}
		return
	}
	if msg.Action != tea.MouseActionPress {
		return
	}

	switch {
	case l.tree.contains(msg.X, msg.Y):
		n := m.tree.rowAt(msg.Y - l.tree.y)
		if n == nil {
			return
		}
		m.focused = focusTree
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.apply(session.TreeClick{ID: n.ID})
		case tea.MouseButtonRight:
			m.tree.focusID(n.ID)
			m.apply(session.TreeContext{ID: n.ID})
			m.menu = nodeMenu(n.Label)
			m.openMenu()
		}

	case l.shot.contains(msg.X, msg.Y):
		if msg.Button != tea.MouseButtonLeft || m.shot.src == nil {
			return
		}
		x, y := clickPoint(msg.X-l.shot.x, msg.Y-l.shot.y)
		m.apply(session.ScreenshotClick{X: x, Y: y})

	case l.prop.contains(msg.X, msg.Y):
		i, ok := m.panel.rowAt(msg.Y - l.prop.y)
		if !ok {
			return
		}
		m.focused = focusPanel
		m.panel.cursor = i
		row, ok := m.panel.cursorRow()
		if !ok || msg.Button != tea.MouseButtonRight {
			return
		}
		m.apply(session.PropertyContext{Name: row.Name, Value: row.Value.Display()})
		m.menu = propertyMenu(row.Name)
		m.openMenu()
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) View() string {
	header := m.renderHeader()
	search := m.renderSearchBar()
	footer := m.renderFooter()

	var body string
	switch m.focused {
	case focusMenu:
		body = m.place(m.menu.view(m.theme))
	case focusHelp, focusRaw:
		title := "Help"
		if m.focused == focusRaw {
			title = "Raw source"
		}
		body = m.place(m.theme.Modal.Render(m.theme.PaneTitle.Render(title) + "\n" + m.modal.View()))
	default:
		body = m.renderBody()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, search, body, footer)
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	name := "no snapshot"
	if m.snap != nil && m.snap.Name != "" {
		name = m.snap.Name
	}
	v := m.sess.View()
	parts := []string{
		fmt.Sprintf("%d/%d shown", len(m.tree.rows), v.Visibility.Total()),
	}
	if v.Visibility.Active() {
		parts = append(parts, fmt.Sprintf("%d matches", v.Visibility.MatchCount()))
	}
	if v.Filter.OnlyMatches {
		parts = append(parts, "only matches")
	}
	parts = append(parts, fmt.Sprintf("zoom %.2fx", v.Zoom), "sort "+v.Sort.String())
	line := m.theme.Header.Render("sv") + " " + m.theme.PaneTitle.Render(name) + "  " +
		m.theme.MutedText.Render(strings.Join(parts, " · "))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) renderSearchBar() string {
	line := m.treeInput.View() + "  " + m.valueInput.View() + "  " + m.panelInput.View()
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) pane(title, content string, w, h int, focused bool) string {
	style := m.theme.Pane
	if focused {
		style = m.theme.PaneFocused
	}
	inner := m.theme.PaneTitle.Render(title) + "\n" + content
	return style.Width(w - 2).Height(h - 2).MaxWidth(w).MaxHeight(h).Render(inner)
}

func (m Model) renderBody() string {
	l := m.layout
	v := m.sess.View()
	bodyH := l.shotOuterH + l.panelOuterH

	left := m.pane("Elements", m.tree.view(m.theme, v.Selected, v.Visibility, m.focused == focusTree),
		l.leftW, bodyH, m.focused == focusTree)

	var box *overlay.Box
	if v.HasOverlay {
		b := v.Overlay.Box
		box = &b
	}
	shotTitle := "Screenshot"
	if n := m.sess.Natural(); n.Valid() {
		shotTitle = fmt.Sprintf("Screenshot %dx%d", n.Width, n.Height)
	}
	shot := m.pane(shotTitle, m.shot.view(m.theme, v.Display, m.sess.Natural(), box),
		l.rightW, l.shotOuterH, false)

	propTitle := "Properties"
	if v.Selected != nil {
		propTitle = "Properties · " + v.Selected.Label
	}
	panel := m.pane(propTitle, m.panel.render(m.theme, v.PanelMessage(), m.focused == focusPanel),
		l.rightW, l.panelOuterH, m.focused == focusPanel)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.JoinVertical(lipgloss.Left, shot, panel))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		style := m.theme.StatusText
		if m.statusIsError {
			style = m.theme.ErrorText
		}
		return lipgloss.NewStyle().MaxWidth(m.width).Render(style.Render(m.statusMsg))
	}
	return m.help.View(m.keys)
}
