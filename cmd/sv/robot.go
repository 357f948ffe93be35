package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/snapview/pkg/export"
	"github.com/vanderheijden86/snapview/pkg/filter"
	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/hittest"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
	"github.com/vanderheijden86/snapview/pkg/snapshot"
)

// robotOptions are the non-interactive requests parsed from flags.
type robotOptions struct {
	Hit          string
	Display      string
	Search       string
	Value        string
	JSON         bool
	SelectID     int
	ExportPNG    string
	ExportSVG    string
	ExportSQLite string
}

// active reports whether any flag asks for non-interactive output.
func (o robotOptions) active() bool {
	return o.Hit != "" || o.Search != "" || o.Value != "" || o.JSON ||
		o.ExportPNG != "" || o.ExportSVG != "" || o.ExportSQLite != ""
}

// printsJSON reports whether the run writes a JSON document to stdout.
func (o robotOptions) printsJSON() bool {
	return o.Hit != "" || o.Search != "" || o.Value != "" || o.JSON
}

// robotOutput is the JSON written by robot mode.
type robotOutput struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Snapshot    string                `json:"snapshot"`
	Screenshot  *export.SizeDoc       `json:"screenshot,omitempty"`
	Hit         *hitOutput            `json:"hit,omitempty"`
	Search      *searchOutput         `json:"search,omitempty"`
	Selected    *export.NodeDoc       `json:"selected,omitempty"`
	Nodes       []export.NodeDoc      `json:"nodes,omitempty"`
	Exports     []string              `json:"exports,omitempty"`
	Timings     []metrics.TimingStats `json:"timings,omitempty"`
}

type hitOutput struct {
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Display  export.SizeDoc   `json:"display"`
	NaturalX float64          `json:"natural_x"`
	NaturalY float64          `json:"natural_y"`
	Matches  []export.NodeDoc `json:"matches"`
}

type searchOutput struct {
	Tree    string           `json:"tree,omitempty"`
	Value   string           `json:"value,omitempty"`
	Matches []export.NodeDoc `json:"matches"`
}

// parsePoint parses "X,Y".
func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64); err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return x, y, nil
}

// parseSize parses "WxH" into a display size.
func parseSize(s string) (overlay.Display, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return overlay.Display{}, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	if err != nil {
		return overlay.Display{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return overlay.Display{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	d := overlay.Display{Width: w, Height: h}
	if !d.Valid() {
		return overlay.Display{}, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return d, nil
}

func nodeDocs(nodes []*model.Node, store *props.Store) []export.NodeDoc {
	docs := make([]export.NodeDoc, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, export.NodeDocument(n, store))
	}
	return docs
}

// runRobot answers the requests in opts for snap and writes JSON to w when
// one was asked for. Explicit --select wins over the hit's smallest match as
// the node outlined in image exports.
func runRobot(w io.Writer, snap *snapshot.Snapshot, opts robotOptions) error {
	store := props.NewStore()
	tree := snap.Tree
	out := robotOutput{
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snap.Name,
	}
	if snap.HasScreenshot() {
		out.Screenshot = &export.SizeDoc{Width: snap.Natural.Width, Height: snap.Natural.Height}
	}

	var selected *model.Node
	if opts.Hit != "" {
		x, y, err := parsePoint(opts.Hit)
		if err != nil {
			return err
		}
		display := overlay.Display{Width: float64(snap.Natural.Width), Height: float64(snap.Natural.Height)}
		if opts.Display != "" {
			if display, err = parseSize(opts.Display); err != nil {
				return err
			}
		}
		if !snap.Natural.Valid() {
			return fmt.Errorf("--hit: %w", snapshot.ErrNoScreenshot)
		}
		q := hittest.Query{
			ClickX: x, ClickY: y,
			DisplayedW: display.Width, DisplayedH: display.Height,
			NaturalW: snap.Natural.Width, NaturalH: snap.Natural.Height,
		}
		origin := geometry.NewResolver(store).Origin(tree.Nodes())
		stop := metrics.Timer(metrics.HitTest)
		res := hittest.FindAt(tree.Nodes(), store, q, origin)
		stop()

		nx, ny, _ := q.Natural()
		hit := &hitOutput{
			X: x, Y: y,
			Display:  export.SizeDoc{Width: int(display.Width), Height: int(display.Height)},
			NaturalX: nx + float64(origin.X),
			NaturalY: ny + float64(origin.Y),
			Matches:  make([]export.NodeDoc, 0, len(res.Matches)),
		}
		for _, m := range res.Matches {
			hit.Matches = append(hit.Matches, export.NodeDocument(m.Node, store))
		}
		out.Hit = hit
		selected = res.Smallest
	}

	if opts.Search != "" || opts.Value != "" {
		engine := filter.NewEngine(store)
		matches := engine.Matches(tree, filter.State{TreeText: opts.Search, ValueText: opts.Value})
		out.Search = &searchOutput{Tree: opts.Search, Value: opts.Value, Matches: nodeDocs(matches, store)}
	}

	if opts.SelectID > 0 {
		n, ok := tree.Lookup(opts.SelectID)
		if !ok {
			return fmt.Errorf("--select: no element with id %d", opts.SelectID)
		}
		selected = n
	}
	if selected != nil {
		doc := export.NodeDocument(selected, store)
		out.Selected = &doc
	}
	if opts.JSON && opts.Hit == "" && opts.Search == "" && opts.Value == "" {
		out.Nodes = nodeDocs(tree.Nodes(), store)
	}

	images := []struct {
		path   string
		format export.Format
	}{
		{opts.ExportPNG, export.FormatPNG},
		{opts.ExportSVG, export.FormatSVG},
	}
	for _, img := range images {
		if img.path == "" {
			continue
		}
		if err := export.SaveAnnotated(export.AnnotateOptions{
			Path: img.path, Format: string(img.format), Snapshot: snap, Selected: selected, Store: store,
		}); err != nil {
			return err
		}
		out.Exports = append(out.Exports, img.path)
	}
	if opts.ExportSQLite != "" {
		if err := export.NewSQLiteExporter(snap, store).Export(opts.ExportSQLite); err != nil {
			return err
		}
		out.Exports = append(out.Exports, opts.ExportSQLite)
	}

	if !opts.printsJSON() {
		for _, path := range out.Exports {
			fmt.Fprintf(w, "Wrote %s\n", path)
		}
		return nil
	}
	out.Timings = metrics.AllStats()
	return export.WriteJSON(w, out)
}
