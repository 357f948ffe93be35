// Package snapshot loads Squish object snapshots: an XML element hierarchy
// with an optional base64 PNG screenshot embedded in the first element.
package snapshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register the decoder for embedded screenshots
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/snapview/pkg/debug"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
)

// Sentinel errors.
var (
	ErrNoXML        = errors.New("no XML content found")
	ErrNoElements   = errors.New("snapshot has no elements")
	ErrNoScreenshot = errors.New("snapshot has no screenshot")
)

// Snapshot is one loaded snapshot file.
type Snapshot struct {
	Path    string
	Name    string
	ModTime time.Time
	Tree    *model.Tree

	// Screenshot holds the decoded PNG bytes, nil when the file has none.
	Screenshot []byte
	Natural    overlay.Size

	// ScreenshotErr is set when an embedded image was present but could not
	// be decoded. The tree is still usable.
	ScreenshotErr error
}

// HasScreenshot reports whether a usable screenshot was found.
func (s *Snapshot) HasScreenshot() bool {
	return s != nil && len(s.Screenshot) > 0 && s.Natural.Valid()
}

// Image decodes the screenshot.
func (s *Snapshot) Image() (image.Image, error) {
	if !s.HasScreenshot() {
		return nil, ErrNoScreenshot
	}
	img, _, err := image.Decode(bytes.NewReader(s.Screenshot))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	return img, nil
}

// Load reads and parses the snapshot at path.
func Load(path string) (*Snapshot, error) {
	defer metrics.Timer(metrics.SnapshotLoad)()
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	snap.Path = path
	snap.Name = filepath.Base(path)
	if info, err := os.Stat(path); err == nil {
		snap.ModTime = info.ModTime()
	}
	debug.LogTiming("snapshot load "+snap.Name, time.Since(start))
	return snap, nil
}

// Parse builds a snapshot from file contents. Anything before the first
// "<ui" tag (or the first "<" when there is none) is skipped.
func Parse(data []byte) (*Snapshot, error) {
	skip := bytes.Index(data, []byte("<ui"))
	if skip < 0 {
		skip = bytes.IndexByte(data, '<')
	}
	if skip < 0 {
		return nil, ErrNoXML
	}
	content := data[skip:]

	doc, err := parseDocument(content)
	if err != nil {
		return nil, err
	}

	top := doc.firstDescendant("element")
	if top == nil {
		top = doc
	}

	snap := &Snapshot{Tree: model.Build(buildNode(top, content))}
	if err := snap.Tree.Validate(); err != nil {
		return nil, err
	}

	if top != doc {
		if img := top.firstDescendantWith("image", "type", "PNG"); img != nil {
			snap.Screenshot, snap.Natural, snap.ScreenshotErr = decodeScreenshot(img.text())
		}
	}
	return snap, nil
}

func decodeScreenshot(encoded string) ([]byte, overlay.Size, error) {
	encoded = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, encoded)
	if encoded == "" {
		return nil, overlay.Size{}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, overlay.Size{}, fmt.Errorf("decoding screenshot base64: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, overlay.Size{}, fmt.Errorf("reading screenshot header: %w", err)
	}
	return raw, overlay.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

// buildNode converts an XML element and its element children into model
// nodes. Children come from a <children> wrapper when present, otherwise
// from direct <element> children.
func buildNode(x *xmlNode, content []byte) *model.Node {
	n := &model.Node{
		Label:     label(x),
		Props:     collectProps(x).Encode(),
		RawSource: string(content[x.start:x.end]),
	}

	var kids []*xmlNode
	if wrapper := x.child("children"); wrapper != nil {
		kids = wrapper.childrenNamed("element")
	} else {
		kids = x.childrenNamed("element")
	}
	for _, k := range kids {
		n.Children = append(n.Children, buildNode(k, content))
	}
	return n
}

func label(x *xmlNode) string {
	simplified := x.attr("simplifiedType")
	objectName := x.attr("objectName")
	if simplified != "" {
		if objectName != "" {
			return simplified + " (" + objectName + ")"
		}
		return simplified
	}
	switch {
	case objectName != "":
		return x.name + " (" + objectName + ")"
	case x.attr("class") != "":
		return x.name + " (" + x.attr("class") + ")"
	}
	return x.name
}

// collectProps gathers the property bag in the order the panel shows it:
// attributes, realname, superclasses, geometry, visual attributes, then
// named string properties.
func collectProps(x *xmlNode) *props.Builder {
	var b props.Builder
	for _, a := range x.attrs {
		b.Set(a.Name.Local, a.Value)
	}
	if rn := x.child("realname"); rn != nil {
		if text := strings.TrimSpace(rn.text()); text != "" {
			b.Set("realname", text)
		}
	}
	if sc := x.child("superclass"); sc != nil {
		var classes []string
		for _, c := range sc.childrenNamed("class") {
			if text := c.text(); text != "" {
				classes = append(classes, text)
			}
		}
		if len(classes) > 0 {
			b.Set("superclasses", strings.Join(classes, " > "))
		}
	}
	if geo := x.path("abstractProperties", "geometry"); geo != nil {
		for _, coord := range []string{"x", "y", "width", "height"} {
			if c := geo.child(coord); c != nil && c.text() != "" {
				b.Set("geometry_"+coord, c.text())
			}
		}
	}
	if vis := x.path("abstractProperties", "visual"); vis != nil {
		for _, a := range vis.attrs {
			b.Set("visual_"+a.Name.Local, a.Value)
		}
	}
	if ps := x.child("properties"); ps != nil {
		for _, p := range ps.childrenNamed("property") {
			value := ""
			if s := p.child("string"); s != nil {
				value = s.text()
			}
			b.Set(p.attr("name"), value)
		}
	}
	return &b
}
