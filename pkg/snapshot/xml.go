package snapshot

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// xmlNode is a minimal element tree that remembers where each element sits
// in the source so the original markup can be shown and exported verbatim.
type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	leading  strings.Builder // character data before the first child element

	start, end int64 // byte offsets into the parsed content
}

func (x *xmlNode) text() string { return x.leading.String() }

func (x *xmlNode) attr(name string) string {
	for _, a := range x.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (x *xmlNode) child(name string) *xmlNode {
	for _, c := range x.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (x *xmlNode) childrenNamed(name string) []*xmlNode {
	var out []*xmlNode
	for _, c := range x.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (x *xmlNode) path(names ...string) *xmlNode {
	cur := x
	for _, n := range names {
		if cur = cur.child(n); cur == nil {
			return nil
		}
	}
	return cur
}

// firstDescendant returns the first element named name below x in
// document order, excluding x itself.
func (x *xmlNode) firstDescendant(name string) *xmlNode {
	return x.firstDescendantWith(name, "", "")
}

func (x *xmlNode) firstDescendantWith(name, attr, value string) *xmlNode {
	for _, c := range x.children {
		if c.name == name && (attr == "" || c.attr(attr) == value) {
			return c
		}
		if found := c.firstDescendantWith(name, attr, value); found != nil {
			return found
		}
	}
	return nil
}

// parseDocument reads content and returns its root element.
func parseDocument(content []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = passthroughCharset

	var root *xmlNode
	var stack []*xmlNode
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr, start: offset}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("malformed XML: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.end = dec.InputOffset()
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				n := stack[len(stack)-1]
				if len(n.children) == 0 {
					n.leading.Write(t)
				}
			}
		}
	}
	if root == nil {
		return nil, ErrNoElements
	}
	return root, nil
}

// passthroughCharset accepts ASCII prolog labels, which are a subset of
// UTF-8, and reads the bytes unchanged.
func passthroughCharset(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf8", "us-ascii", "ascii":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
