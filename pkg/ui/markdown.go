package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders md for the terminal, falling back to the source
// text when glamour fails.
func renderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// Strip trailing whitespace/newlines that glamour adds
	return strings.TrimRight(out, " \n")
}

// helpMarkdown documents the key bindings and mouse actions.
func helpMarkdown(k keyMap) string {
	var b strings.Builder
	b.WriteString("# Keyboard shortcuts\n\n")
	sections := []string{"Navigation", "Search", "Screenshot & copy", "General"}
	for i, group := range k.FullHelp() {
		if i < len(sections) {
			fmt.Fprintf(&b, "## %s\n\n", sections[i])
		}
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, binding := range group {
			writeBinding(&b, binding)
		}
		b.WriteString("\n")
	}
	b.WriteString("## Mouse\n\n")
	b.WriteString("- **Left click** on the tree selects a node.\n")
	b.WriteString("- **Left click** on the screenshot selects the smallest element under the pointer and highlights every element containing it.\n")
	b.WriteString("- **Right click** on a node or property opens the copy menu.\n")
	b.WriteString("- **Wheel** scrolls the pane under the pointer.\n")
	return b.String()
}

func writeBinding(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	fmt.Fprintf(b, "| `%s` | %s |\n", h.Key, h.Desc)
}

// rawMarkdown wraps a markup fragment in an XML code block.
func rawMarkdown(label, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return fmt.Sprintf("# %s\n\n_No source recorded for this element._\n", label)
	}
	return fmt.Sprintf("# %s\n\n```xml\n%s\n```\n", label, strings.TrimRight(raw, "\n"))
}
