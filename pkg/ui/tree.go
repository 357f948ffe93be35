package ui

import (
	"strings"

	"github.com/vanderheijden86/snapview/pkg/filter"
	"github.com/vanderheijden86/snapview/pkg/model"

	"github.com/mattn/go-runewidth"
)

// treeRow is one displayed line of the element tree.
type treeRow struct {
	Node   *model.Node
	Prefix string // Box-drawing connectors
	Open   bool   // Children are listed below
}

// flattenTree lists the rows on screen in pre-order. A node's children are
// listed when the filter shows its child list and the user has not
// collapsed it; hidden siblings do not get connectors.
func flattenTree(tree *model.Tree, vis filter.Visibility, collapsed map[int]bool) []treeRow {
	root := tree.Root()
	if root == nil || !vis.Visible(root.ID) {
		return nil
	}
	var rows []treeRow
	var walk func(n *model.Node, prefix string, last, isRoot bool)
	walk = func(n *model.Node, prefix string, last, isRoot bool) {
		branch, indent := "", ""
		if !isRoot {
			branch, indent = "├── ", "│   "
			if last {
				branch, indent = "└── ", "    "
			}
		}
		open := len(n.Children) > 0 && vis.ChildrenVisible(n.ID) && !collapsed[n.ID]
		rows = append(rows, treeRow{Node: n, Prefix: prefix + branch, Open: open})
		if !open {
			return
		}
		kids := make([]*model.Node, 0, len(n.Children))
		for _, c := range n.Children {
			if vis.Visible(c.ID) {
				kids = append(kids, c)
			}
		}
		for i, c := range kids {
			walk(c, prefix+indent, i == len(kids)-1, false)
		}
	}
	walk(root, "", true, true)
	return rows
}

// expandIndicator returns the expand/collapse indicator for a row.
func expandIndicator(r treeRow) string {
	if len(r.Node.Children) == 0 {
		return "•" // Leaf node
	}
	if r.Open {
		return "▾" // Expanded
	}
	return "▸" // Collapsed
}

// treePane is the scrollable element list.
type treePane struct {
	rows      []treeRow
	cursor    int
	offset    int
	width     int
	height    int
	collapsed map[int]bool
}

func newTreePane() treePane {
	return treePane{collapsed: make(map[int]bool)}
}

// setRows replaces the rows, keeping the cursor on the same node when it
// is still listed.
func (p *treePane) setRows(rows []treeRow) {
	var keep int
	if n := p.cursorNode(); n != nil {
		keep = n.ID
	}
	p.rows = rows
	p.cursor = 0
	if keep != 0 {
		p.focusID(keep)
	}
	p.clamp()
}

func (p *treePane) setSize(w, h int) {
	p.width, p.height = w, h
	p.clamp()
}

func (p *treePane) cursorNode() *model.Node {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	return p.rows[p.cursor].Node
}

// focusID moves the cursor to the row for id and reports whether it is
// listed.
func (p *treePane) focusID(id int) bool {
	for i, r := range p.rows {
		if r.Node.ID == id {
			p.cursor = i
			p.clamp()
			return true
		}
	}
	return false
}

func (p *treePane) move(delta int) {
	p.cursor += delta
	p.clamp()
}

func (p *treePane) top()    { p.cursor = 0; p.clamp() }
func (p *treePane) bottom() { p.cursor = len(p.rows) - 1; p.clamp() }

func (p *treePane) scroll(delta int) {
	p.offset += delta
	maxOffset := len(p.rows) - p.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if p.offset > maxOffset {
		p.offset = maxOffset
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// clamp keeps the cursor in range and visible.
func (p *treePane) clamp() {
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.height <= 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// rowAt returns the node drawn on body line y.
func (p *treePane) rowAt(y int) *model.Node {
	i := p.offset + y
	if y < 0 || y >= p.height || i < 0 || i >= len(p.rows) {
		return nil
	}
	return p.rows[i].Node
}

// toggle collapses or expands the cursor row.
func (p *treePane) toggle(open bool) {
	n := p.cursorNode()
	if n == nil || len(n.Children) == 0 {
		return
	}
	if open {
		delete(p.collapsed, n.ID)
	} else {
		p.collapsed[n.ID] = true
	}
}

// reveal expands every collapsed ancestor of n.
func (p *treePane) reveal(n *model.Node) {
	for a := n.Parent(); a != nil; a = a.Parent() {
		delete(p.collapsed, a.ID)
	}
}

func (p *treePane) view(theme Theme, selected *model.Node, vis filter.Visibility, focused bool) string {
	if len(p.rows) == 0 {
		return theme.MutedText.Render("No elements match")
	}
	var b strings.Builder
	end := p.offset + p.height
	if end > len(p.rows) {
		end = len(p.rows)
	}
	for i := p.offset; i < end; i++ {
		r := p.rows[i]
		prefix := r.Prefix + expandIndicator(r) + " "
		label := runewidth.Truncate(r.Node.Label, p.width-runewidth.StringWidth(prefix), "…")

		var line string
		switch {
		case selected != nil && r.Node == selected:
			line = theme.MutedText.Render(prefix) + theme.Selected.Render(label)
		case vis.Highlighted(r.Node.ID):
			line = theme.MutedText.Render(prefix) + theme.MatchText.Render(label)
		default:
			line = theme.MutedText.Render(prefix) + theme.Base.Render(label)
		}
		if focused && i == p.cursor {
			line = theme.Cursor.Render(runewidth.FillRight(prefix+label, p.width))
			if selected != nil && r.Node == selected {
				line = theme.Selected.Render(runewidth.FillRight(prefix+label, p.width))
			}
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
