package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the inspector's bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Select      key.Binding
	Collapse    key.Binding
	Expand      key.Binding
	SwitchPane  key.Binding
	TreeSearch  key.Binding
	ValueSearch key.Binding
	PanelSearch key.Binding
	OnlyMatches key.Binding
	Sort        key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ZoomReset   key.Binding
	CopyMenu    key.Binding
	CopyName    key.Binding
	CopyValue   key.Binding
	Raw         key.Binding
	Reload      key.Binding
	Clear       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Select:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select node")),
		Collapse:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "collapse")),
		Expand:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "expand")),
		SwitchPane:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tree/properties")),
		TreeSearch:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search tree")),
		ValueSearch: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "search values")),
		PanelSearch: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "search properties")),
		OnlyMatches: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "only matches")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ZoomReset:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "fit screenshot")),
		CopyMenu:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy menu")),
		CopyName:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy property name")),
		CopyValue:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "copy property value")),
		Raw:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "raw source")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Clear:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/close")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TreeSearch, k.ValueSearch, k.OnlyMatches, k.CopyMenu, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Select, k.Collapse, k.Expand, k.SwitchPane},
		{k.TreeSearch, k.ValueSearch, k.PanelSearch, k.OnlyMatches, k.Sort, k.Clear},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset, k.CopyMenu, k.CopyName, k.CopyValue},
		{k.Raw, k.Reload, k.Help, k.Quit},
	}
}
