package ui

import (
	"strings"

	"github.com/vanderheijden86/snapview/pkg/props"

	"github.com/mattn/go-runewidth"
)

// panelPane is the property table of the selected node.
type panelPane struct {
	rows   []props.Row
	cursor int
	offset int
	width  int
	height int
}

func newPanelPane() panelPane {
	return panelPane{width: 40, height: 10}
}

func (p *panelPane) setSize(w, h int) {
	p.width, p.height = w, h
	p.keepCursorVisible()
}

// setTable replaces the rows and resets the cursor when the row set
// changes shape.
func (p *panelPane) setTable(t props.Table) {
	if len(t.Rows) != len(p.rows) {
		p.cursor, p.offset = 0, 0
	}
	p.rows = t.Rows
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// cursorRow returns the property row under the cursor. Group headers are
// not copy targets.
func (p *panelPane) cursorRow() (props.Row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return props.Row{}, false
	}
	r := p.rows[p.cursor]
	return r, r.Kind != props.RowGroupHeader
}

func (p *panelPane) move(delta int) {
	p.cursor += delta
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.keepCursorVisible()
}

func (p *panelPane) keepCursorVisible() {
	if p.height <= 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	} else if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
}

func (p *panelPane) scroll(delta int) {
	p.offset += delta
	if maxOffset := len(p.rows) - p.height; p.offset > maxOffset {
		p.offset = maxOffset
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// rowAt maps a body line to a row index.
func (p *panelPane) rowAt(y int) (int, bool) {
	i := p.offset + y
	if y < 0 || y >= p.height || i < 0 || i >= len(p.rows) {
		return 0, false
	}
	return i, true
}

// nameWidth is the width of the name column.
func (p *panelPane) nameWidth() int {
	w := 0
	for _, r := range p.rows {
		n := runewidth.StringWidth(r.Name)
		if r.Kind == props.RowGroupItem {
			n += 2
		}
		if n > w {
			w = n
		}
	}
	if limit := p.width / 2; w > limit {
		w = limit
	}
	return w
}

func (p panelPane) render(theme Theme, message string, focused bool) string {
	if message != "" {
		return theme.MutedText.Render(message)
	}
	nameW := p.nameWidth()
	valueW := p.width - nameW - 2
	if valueW < 4 {
		valueW = 4
	}

	end := p.offset + p.height
	if end > len(p.rows) {
		end = len(p.rows)
	}
	lines := make([]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		r := p.rows[i]
		var line string
		switch r.Kind {
		case props.RowGroupHeader:
			line = theme.GroupHeader.Render(runewidth.Truncate("▾ "+r.Name, p.width, "…"))
		default:
			name := r.Name
			if r.Kind == props.RowGroupItem {
				name = "  " + name
			}
			name = runewidth.FillRight(runewidth.Truncate(name, nameW, "…"), nameW)
			value := runewidth.Truncate(strings.Join(strings.Fields(r.Value.Display()), " "), valueW, "…")
			line = theme.PropName.Render(name) + "  " + theme.Base.Render(value)
			if focused && i == p.cursor {
				line = theme.Cursor.Render(runewidth.FillRight(name+"  "+value, p.width))
			}
		}
		if focused && i == p.cursor && r.Kind == props.RowGroupHeader {
			line = theme.Cursor.Render(runewidth.FillRight("▾ "+r.Name, p.width))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
