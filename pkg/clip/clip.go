// Package clip extracts the text behind each context-menu copy and writes
// it to the system clipboard.
package clip

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// ErrNothingToCopy is returned when the requested text is empty.
var ErrNothingToCopy = errors.New("nothing to copy")

// Writer puts text on a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

// WriteAll calls f(text).
func (f WriterFunc) WriteAll(text string) error { return f(text) }

// System returns the platform clipboard.
func System() Writer { return WriterFunc(clipboard.WriteAll) }

// Available reports whether the platform clipboard can be used.
func Available() bool { return !clipboard.Unsupported }

// Target names what a copy action reads.
type Target int

const (
	Realname Target = iota
	Class
	ObjectName
	PropertyName
	PropertyValue
	RawXML
	Reference
)

// NodeTargets are the copies offered on a tree node, in menu order.
var NodeTargets = []Target{Realname, Class, ObjectName, Reference, RawXML}

func (t Target) String() string {
	switch t {
	case Realname:
		return "realname"
	case Class:
		return "class"
	case ObjectName:
		return "objectName"
	case PropertyName:
		return "Property name"
	case PropertyValue:
		return "Property value"
	case RawXML:
		return "XML"
	case Reference:
		return "Reference"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Source is the context a copy reads from.
type Source struct {
	Node      *model.Node
	Bag       props.Bag
	PropName  string
	PropValue string
	Whitelist []string
}

// Extract returns the text for target.
func Extract(target Target, src Source) (string, error) {
	var text string
	switch target {
	case Realname, Class, ObjectName:
		text, _ = src.Bag.Raw(target.String())
	case PropertyName:
		text = src.PropName
	case PropertyValue:
		text = src.PropValue
	case RawXML:
		if src.Node != nil {
			text = src.Node.RawSource
		}
	case Reference:
		text = BuildReference(src.Bag, src.Whitelist)
	default:
		return "", fmt.Errorf("unknown copy target %d", int(target))
	}
	if text == "" {
		return "", fmt.Errorf("%s: %w", target, ErrNothingToCopy)
	}
	return text, nil
}

// DefaultWhitelist is used for reference strings when none is configured.
var DefaultWhitelist = []string{"class", "objectName", "text", "type", "visible"}

// BuildReference returns an object reference in Squish real-name syntax,
// e.g. {class='QPushButton' objectName='ok'}, from the whitelisted keys that
// carry a non-empty value, in whitelist order. Without any such key the
// node's realname is returned.
func BuildReference(bag props.Bag, whitelist []string) string {
	if len(whitelist) == 0 {
		whitelist = DefaultWhitelist
	}
	var parts []string
	for _, key := range whitelist {
		v, ok := bag.Raw(key)
		if !ok || v == "" {
			continue
		}
		parts = append(parts, key+"='"+escapeQuote(v)+"'")
	}
	if len(parts) == 0 {
		rn, _ := bag.Raw("realname")
		return rn
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func escapeQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

// Copy extracts target from src, writes it to w and returns the feedback
// message for the status bar.
func Copy(w Writer, target Target, src Source) (string, error) {
	text, err := Extract(target, src)
	if err != nil {
		return "", err
	}
	if err := w.WriteAll(text); err != nil {
		return "", fmt.Errorf("writing clipboard: %w", err)
	}
	return Feedback(text), nil
}

// Feedback returns the confirmation shown after a copy. Text wider than 50
// cells is cut to 47 and suffixed with "...".
func Feedback(text string) string {
	short := strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(short) > 50 {
		short = runewidth.Truncate(short, 50, "...")
	}
	return fmt.Sprintf("Copied %q to clipboard.", short)
}
