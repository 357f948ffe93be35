package export

import (
	"bytes"
	"database/sql"
	"encoding/xml"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/overlay"
	"github.com/vanderheijden86/snapview/pkg/props"
	"github.com/vanderheijden86/snapview/pkg/snapshot"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

func encodeProps(kv ...string) string {
	var b props.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		b.Set(kv[i], kv[i+1])
	}
	return b.Encode()
}

// testSnapshot returns a 200x100 screenshot with a window at (100,50) and a
// button at (120,60,40,20).
func testSnapshot(t *testing.T, withScreenshot bool) *snapshot.Snapshot {
	t.Helper()
	button := &model.Node{
		Label: "QPushButton (ok)",
		Props: encodeProps("class", "QPushButton", "geometry_x", "120", "geometry_y", "60",
			"geometry_width", "40", "geometry_height", "20"),
		RawSource: `<element class="QPushButton"/>`,
	}
	label := &model.Node{Label: "QLabel", Props: encodeProps("class", "QLabel")}
	root := &model.Node{
		Label: "MainWindow (main)",
		Props: encodeProps("class", "QMainWindow", "geometry_x", "100", "geometry_y", "50",
			"geometry_width", "200", "geometry_height", "100"),
		Children: []*model.Node{button, label},
	}
	snap := &snapshot.Snapshot{Name: "main.xml", Tree: model.Build(root)}
	if withScreenshot {
		img := image.NewRGBA(image.Rect(0, 0, 200, 100))
		img.Set(10, 10, color.RGBA{G: 255, A: 255})
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		snap.Screenshot = buf.Bytes()
		snap.Natural = overlay.Size{Width: 200, Height: 100}
	}
	return snap
}

func lookup(t *testing.T, snap *snapshot.Snapshot, id int) *model.Node {
	t.Helper()
	n, ok := snap.Tree.Lookup(id)
	if !ok {
		t.Fatalf("node %d not found", id)
	}
	return n
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		path, format string
		want         Format
		wantPath     string
		wantErr      bool
	}{
		{"out.png", "", FormatPNG, "out.png", false},
		{"out.SVG", "", FormatSVG, "out.SVG", false},
		{"out", "", FormatSVG, "out.svg", false},
		{"out.dat", "", FormatSVG, "out.dat", false},
		{"out.dat", ".PNG", FormatPNG, "out.dat", false},
		{"out.png", "gif", "", "", true},
		{"", "png", "", "", true},
	}
	for _, tt := range tests {
		got, path, err := ResolveFormat(tt.path, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveFormat(%q, %q) error = %v, wantErr %v", tt.path, tt.format, err, tt.wantErr)
			continue
		}
		if got != tt.want || path != tt.wantPath {
			t.Errorf("ResolveFormat(%q, %q) = %q, %q; want %q, %q", tt.path, tt.format, got, path, tt.want, tt.wantPath)
		}
	}
}

// TestBuildAnnotation_ProjectsRelativeToOrigin verifies the box is drawn in
// screenshot pixels relative to the first positioned element.
func TestBuildAnnotation_ProjectsRelativeToOrigin(t *testing.T) {
	snap := testSnapshot(t, true)
	button := lookup(t, snap, 2)

	a, err := buildAnnotation(AnnotateOptions{Snapshot: snap, Selected: button})
	if err != nil {
		t.Fatalf("buildAnnotation: %v", err)
	}
	if !a.HasBox {
		t.Fatal("expected a box for a node with geometry")
	}
	want := overlay.Box{X: 20, Y: 10, Width: 40, Height: 20}
	if a.Box != want {
		t.Errorf("box = %+v, want %+v", a.Box, want)
	}
	if !strings.Contains(a.Caption, "QPushButton (ok)") || !strings.Contains(a.Caption, "40x20") {
		t.Errorf("unexpected caption %q", a.Caption)
	}
}

func TestBuildAnnotation_NoGeometryNoBox(t *testing.T) {
	snap := testSnapshot(t, true)
	a, err := buildAnnotation(AnnotateOptions{Snapshot: snap, Selected: lookup(t, snap, 3)})
	if err != nil {
		t.Fatalf("buildAnnotation: %v", err)
	}
	if a.HasBox {
		t.Error("node without geometry should not get a box")
	}
	if a.Caption != "QLabel" {
		t.Errorf("caption = %q", a.Caption)
	}
}

func TestSaveAnnotated_Errors(t *testing.T) {
	dir := t.TempDir()
	err := SaveAnnotated(AnnotateOptions{Path: filepath.Join(dir, "a.png"), Snapshot: testSnapshot(t, false)})
	if !errors.Is(err, ErrNoScreenshot) {
		t.Errorf("expected ErrNoScreenshot, got %v", err)
	}
	err = SaveAnnotated(AnnotateOptions{Path: filepath.Join(dir, "a.png")})
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
	err = SaveAnnotated(AnnotateOptions{Path: filepath.Join(dir, "a.bmp"), Format: "bmp", Snapshot: testSnapshot(t, true)})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveAnnotated_PNG(t *testing.T) {
	snap := testSnapshot(t, true)
	out := filepath.Join(t.TempDir(), "nested", "shot.png")

	if err := SaveAnnotated(AnnotateOptions{Path: out, Snapshot: snap, Selected: lookup(t, snap, 2)}); err != nil {
		t.Fatalf("SaveAnnotated: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100+captionHeight {
		t.Errorf("unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

// TestSaveAnnotated_SVGIsValidXML verifies the SVG parses and carries the
// embedded screenshot and the highlight rectangle.
func TestSaveAnnotated_SVGIsValidXML(t *testing.T) {
	snap := testSnapshot(t, true)
	out := filepath.Join(t.TempDir(), "shot.svg")

	if err := SaveAnnotated(AnnotateOptions{Path: out, Snapshot: snap, Selected: lookup(t, snap, 2)}); err != nil {
		t.Fatalf("SaveAnnotated: %v", err)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	var root string
	var rects, images int
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root == "" {
			root = se.Name.Local
		}
		switch se.Name.Local {
		case "rect":
			rects++
		case "image":
			images++
		}
	}
	var doc interface{}
	if err := xml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("SVG is not valid XML: %v", err)
	}
	if root != "svg" {
		t.Errorf("root element = %q, want svg", root)
	}
	if images != 1 {
		t.Errorf("expected one embedded image, got %d", images)
	}
	if rects != 2 {
		t.Errorf("expected backdrop and highlight rects, got %d", rects)
	}
	if !strings.Contains(string(content), `x="20" y="10" width="40" height="20"`) {
		t.Errorf("highlight rect missing from SVG:\n%s", content)
	}
}

func TestSQLiteExport(t *testing.T) {
	snap := testSnapshot(t, true)
	out := filepath.Join(t.TempDir(), "tree.sqlite3")

	if err := NewSQLiteExporter(snap, nil).Export(out); err != nil {
		t.Fatalf("Export: %v", err)
	}
	db, err := sql.Open("sqlite", out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count); err != nil {
		t.Fatalf("count nodes: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 nodes, got %d", count)
	}

	var parent sql.NullInt64
	var width sql.NullInt64
	var label string
	if err := db.QueryRow(`SELECT parent_id, width, label FROM nodes WHERE id = 2`).Scan(&parent, &width, &label); err != nil {
		t.Fatalf("query node 2: %v", err)
	}
	if !parent.Valid || parent.Int64 != 1 || width.Int64 != 40 || label != "QPushButton (ok)" {
		t.Errorf("unexpected node 2 row: parent=%v width=%v label=%q", parent, width, label)
	}

	var rootParent sql.NullInt64
	var rootDepth int
	if err := db.QueryRow(`SELECT parent_id, depth FROM nodes WHERE id = 1`).Scan(&rootParent, &rootDepth); err != nil {
		t.Fatalf("query root: %v", err)
	}
	if rootParent.Valid || rootDepth != 0 {
		t.Errorf("root should have no parent and depth 0, got %v %d", rootParent, rootDepth)
	}

	var class string
	if err := db.QueryRow(`SELECT value FROM properties WHERE node_id = 3 AND key = 'class'`).Scan(&class); err != nil {
		t.Fatalf("query property: %v", err)
	}
	if class != "QLabel" {
		t.Errorf("class = %q", class)
	}

	var nodeCount string
	if err := db.QueryRow(`SELECT value FROM export_meta WHERE key = 'node_count'`).Scan(&nodeCount); err != nil {
		t.Fatalf("query meta: %v", err)
	}
	if nodeCount != "3" {
		t.Errorf("node_count = %q", nodeCount)
	}
}

func TestSQLiteExport_ReplacesExisting(t *testing.T) {
	snap := testSnapshot(t, false)
	out := filepath.Join(t.TempDir(), "tree.sqlite3")
	exp := NewSQLiteExporter(snap, nil)
	for i := 0; i < 2; i++ {
		if err := exp.Export(out); err != nil {
			t.Fatalf("Export #%d: %v", i+1, err)
		}
	}
	if err := NewSQLiteExporter(nil, nil).Export(out); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestNewDocument(t *testing.T) {
	snap := testSnapshot(t, true)
	doc := NewDocument(snap, nil)

	if doc.Snapshot != "main.xml" || doc.Screenshot == nil || doc.Screenshot.Width != 200 {
		t.Fatalf("unexpected header %+v", doc)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(doc.Nodes))
	}
	root := doc.Nodes[0]
	if root.Parent != 0 || len(root.Children) != 2 || root.Children[0] != 2 {
		t.Errorf("unexpected root %+v", root)
	}
	btn := doc.Nodes[1]
	if btn.Rect == nil || *btn.Rect != (RectDoc{X: 120, Y: 60, Width: 40, Height: 20}) {
		t.Errorf("unexpected rect %+v", btn.Rect)
	}
	if btn.Properties[0].Key != "class" || *btn.Properties[0].Value != "QPushButton" {
		t.Errorf("properties should keep source order, got %+v", btn.Properties[0])
	}
	if doc.Nodes[2].Rect != nil {
		t.Error("node without geometry should have no rect")
	}
}

func TestSaveJSON(t *testing.T) {
	snap := testSnapshot(t, false)
	out := filepath.Join(t.TempDir(), "tree.json")
	if err := SaveJSON(out, snap, nil); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Screenshot != nil {
		t.Error("snapshot without screenshot should omit the size")
	}
	if len(doc.Nodes) != 3 || doc.Nodes[2].Label != "QLabel" {
		t.Errorf("unexpected nodes %+v", doc.Nodes)
	}
}
