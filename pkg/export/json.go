package export

import (
	"fmt"
	"io"
	"os"

	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
	"github.com/vanderheijden86/snapview/pkg/snapshot"

	json "github.com/goccy/go-json"
)

// Document is the JSON form of a snapshot.
type Document struct {
	Snapshot   string    `json:"snapshot"`
	Screenshot *SizeDoc  `json:"screenshot,omitempty"`
	Nodes      []NodeDoc `json:"nodes"`
}

// SizeDoc is a pixel size.
type SizeDoc struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectDoc is element geometry in screenshot pixels.
type RectDoc struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NodeDoc is one element with its decoded properties.
type NodeDoc struct {
	ID         int           `json:"id"`
	Parent     int           `json:"parent,omitempty"`
	Depth      int           `json:"depth"`
	Label      string        `json:"label"`
	Rect       *RectDoc      `json:"rect,omitempty"`
	Properties []PropertyDoc `json:"properties"`
	Children   []int         `json:"children,omitempty"`
}

// PropertyDoc is one property in source order. Value is omitted for null.
type PropertyDoc struct {
	Key   string  `json:"key"`
	Kind  string  `json:"kind"`
	Value *string `json:"value,omitempty"`
}

// NewDocument converts snap's tree in pre-order.
func NewDocument(snap *snapshot.Snapshot, store *props.Store) Document {
	if store == nil {
		store = props.NewStore()
	}
	doc := Document{Nodes: []NodeDoc{}}
	if snap == nil {
		return doc
	}
	doc.Snapshot = snap.Name
	if snap.HasScreenshot() {
		doc.Screenshot = &SizeDoc{Width: snap.Natural.Width, Height: snap.Natural.Height}
	}
	if snap.Tree == nil {
		return doc
	}
	for _, n := range snap.Tree.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDocument(n, store))
	}
	return doc
}

// NodeDocument converts a single node.
func NodeDocument(n *model.Node, store *props.Store) NodeDoc {
	bag := store.Get(n)
	nd := NodeDoc{
		ID:         n.ID,
		Depth:      n.Depth(),
		Label:      n.Label,
		Properties: make([]PropertyDoc, 0, bag.Len()),
	}
	if p := n.Parent(); p != nil {
		nd.Parent = p.ID
	}
	if r, ok := geometry.RectOf(bag); ok {
		nd.Rect = &RectDoc{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	for _, e := range bag.Entries() {
		pd := PropertyDoc{Key: e.Key, Kind: kindName(e.Value.Kind)}
		if e.Value.Kind != props.Null {
			v := e.Value.Text
			pd.Value = &v
		}
		nd.Properties = append(nd.Properties, pd)
	}
	for _, c := range n.Children {
		nd.Children = append(nd.Children, c.ID)
	}
	return nd
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// SaveJSON writes the document for snap to path.
func SaveJSON(path string, snap *snapshot.Snapshot, store *props.Store) error {
	defer metrics.Timer(metrics.Export)()

	if snap == nil {
		return ErrNoSnapshot
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := ensureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, NewDocument(snap, store)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
