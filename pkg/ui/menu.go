package ui

import (
	"strings"

	"github.com/vanderheijden86/snapview/pkg/clip"
)

// copyMenu is the context menu listing copy targets.
type copyMenu struct {
	title   string
	targets []clip.Target
	cursor  int
}

func nodeMenu(label string) copyMenu {
	return copyMenu{title: "Copy from " + label, targets: clip.NodeTargets}
}

func propertyMenu(name string) copyMenu {
	return copyMenu{title: "Copy property " + name, targets: []clip.Target{clip.PropertyName, clip.PropertyValue}}
}

func (m *copyMenu) move(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = len(m.targets) - 1
	}
	if m.cursor >= len(m.targets) {
		m.cursor = 0
	}
}

func (m copyMenu) selected() (clip.Target, bool) {
	if m.cursor < 0 || m.cursor >= len(m.targets) {
		return 0, false
	}
	return m.targets[m.cursor], true
}

// shortcut returns the target bound to a digit key, 1-based.
func (m copyMenu) shortcut(s string) (clip.Target, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	i := int(s[0] - '1')
	if i >= len(m.targets) {
		return 0, false
	}
	return m.targets[i], true
}

func (m copyMenu) view(theme Theme) string {
	var b strings.Builder
	b.WriteString(theme.PaneTitle.Render(m.title))
	for i, t := range m.targets {
		b.WriteByte('\n')
		line := " " + string(rune('1'+i)) + "  " + t.String()
		if i == m.cursor {
			b.WriteString(theme.Selected.Render("▸" + line))
		} else {
			b.WriteString(theme.Base.Render(" " + line))
		}
	}
	b.WriteByte('\n')
	b.WriteString(theme.MutedText.Render("enter copy · esc close"))
	return theme.Modal.Render(b.String())
}
