// Package props decodes and holds per-element property bags.
//
// A bag is stored on the node as entity-escaped JSON object text. Decoding
// never fails: any problem with the stored text yields an empty bag.
package props

import (
	"bytes"
	"html"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind is the variant of a property value.
type Kind uint8

const (
	// Null is an explicit JSON null.
	Null Kind = iota
	// String is a JSON string; the only kind searched by value filters.
	String
	// Other is any non-string scalar or nested value, kept for display.
	Other
)

// Value is one decoded property value.
type Value struct {
	Kind Kind
	Text string // String contents, or compact JSON text for Other
}

// StringValue builds a String value.
func StringValue(s string) Value { return Value{Kind: String, Text: s} }

// IsString reports whether v carries string contents.
func (v Value) IsString() bool { return v.Kind == String }

// Display returns the text shown in the property panel. Null shows as "".
func (v Value) Display() string { return v.Text }

// Entry is a key/value pair in source order.
type Entry struct {
	Key   string
	Value Value
}

// Bag is an ordered, read-only property mapping.
type Bag struct {
	entries []Entry
	index   map[string]int
}

// Len returns the number of properties.
func (b Bag) Len() int { return len(b.entries) }

// Empty reports whether the bag has no properties.
func (b Bag) Empty() bool { return len(b.entries) == 0 }

// Entries returns the properties in source order.
func (b Bag) Entries() []Entry { return b.entries }

// Has reports whether key is present, whatever its value.
func (b Bag) Has(key string) bool {
	_, ok := b.index[key]
	return ok
}

// Get returns the value stored under key.
func (b Bag) Get(key string) (Value, bool) {
	i, ok := b.index[key]
	if !ok {
		return Value{}, false
	}
	return b.entries[i].Value, true
}

// String returns the string value stored under key. Non-string values
// report false.
func (b Bag) String(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok || v.Kind != String {
		return "", false
	}
	return v.Text, true
}

// Raw returns the value under key as display text, accepting any kind.
func (b Bag) Raw(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok || v.Kind == Null {
		return "", false
	}
	return v.Text, true
}

func (b *Bag) set(key string, v Value) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.entries[i].Value = v
		return
	}
	b.index[key] = len(b.entries)
	b.entries = append(b.entries, Entry{Key: key, Value: v})
}

// Decode entity-decodes encoded and parses it as a JSON object. Key order and
// the last value of any repeated key are kept. Anything other than a
// well-formed object yields an empty bag.
func Decode(encoded string) Bag {
	text := strings.TrimSpace(html.UnescapeString(encoded))
	if text == "" || text[0] != '{' || !json.Valid([]byte(text)) {
		return Bag{}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return Bag{}
	}

	var bag Bag
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Bag{}
		}
		key, ok := tok.(string)
		if !ok {
			return Bag{}
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Bag{}
		}
		v, ok := classify(raw)
		if !ok {
			return Bag{}
		}
		bag.set(key, v)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return Bag{}
	}
	return bag
}

func classify(raw json.RawMessage) (Value, bool) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return Value{}, false
	case bytes.Equal(trimmed, []byte("null")):
		return Value{Kind: Null}, true
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Value{}, false
		}
		return StringValue(s), true
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Value{}, false
		}
		return Value{Kind: Other, Text: buf.String()}, true
	}
}

// Builder accumulates string properties in insertion order, as the loader
// reads them. Setting an existing key replaces its value in place.
type Builder struct {
	bag Bag
}

// Set stores a string property.
func (b *Builder) Set(key, value string) { b.bag.set(key, StringValue(value)) }

// Len returns the number of properties set so far.
func (b *Builder) Len() int { return b.bag.Len() }

// Bag returns the accumulated bag.
func (b *Builder) Bag() Bag { return b.bag }

// Encode returns the bag as entity-escaped JSON object text.
func (b *Builder) Encode() string { return Encode(b.bag) }

// Encode serializes bag as a JSON object and HTML-escapes the result,
// quotes included. Decode(Encode(b)) reproduces b.
func Encode(bag Bag) string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range bag.entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		k, _ := json.Marshal(e.Key)
		buf.Write(k)
		buf.WriteString(": ")
		switch e.Value.Kind {
		case Null:
			buf.WriteString("null")
		case String:
			v, _ := json.Marshal(e.Value.Text)
			buf.Write(v)
		default:
			buf.WriteString(e.Value.Text)
		}
	}
	buf.WriteByte('}')
	return html.EscapeString(buf.String())
}
