package snapshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/snapview/pkg/props"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleXML(t *testing.T) string {
	return `Squish snapshot header
<?xml version="1.0" encoding="UTF-8"?>
<ui>
  <element class="QMainWindow" simplifiedType="MainWindow" objectName="main">
    <realname>  {type='QMainWindow' name='main'}  </realname>
    <superclass><class>QWidget</class><class>QObject</class></superclass>
    <abstractProperties>
      <geometry><x>100</x><y>50</y><width>400</width><height>300</height></geometry>
      <visual visible="true" enabled="true"/>
    </abstractProperties>
    <properties>
      <property name="windowTitle"><string>Demo &amp; Co</string></property>
      <property name="flags"><number>3</number></property>
    </properties>
    <image type="PNG">` + pngBase64(t, 4, 3) + `</image>
    <children>
      <element class="QPushButton" objectName="ok">
        <abstractProperties><geometry><x>110</x><y>60</y><width>20</width><height>10</height></geometry></abstractProperties>
      </element>
      <element class="QLabel"/>
    </children>
  </element>
</ui>`
}

func TestParse(t *testing.T) {
	snap, err := Parse([]byte(sampleXML(t)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	nodes := snap.Tree.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	wantLabels := []string{"MainWindow (main)", "element (ok)", "element (QLabel)"}
	for i, want := range wantLabels {
		if nodes[i].Label != want {
			t.Errorf("node %d: expected label %q, got %q", i+1, want, nodes[i].Label)
		}
		if nodes[i].ID != i+1 {
			t.Errorf("node %d: unexpected id %d", i+1, nodes[i].ID)
		}
	}
	if nodes[1].Parent() != nodes[0] {
		t.Error("children should hang off the root element")
	}

	if !snap.HasScreenshot() || snap.Natural.Width != 4 || snap.Natural.Height != 3 {
		t.Errorf("expected a 4x3 screenshot, got %+v", snap.Natural)
	}
	if _, err := snap.Image(); err != nil {
		t.Errorf("Image: %v", err)
	}
}

func TestParseProperties(t *testing.T) {
	snap, err := Parse([]byte(sampleXML(t)))
	if err != nil {
		t.Fatal(err)
	}
	bag := props.Decode(snap.Tree.Root().Props)

	want := map[string]string{
		"class":           "QMainWindow",
		"simplifiedType":  "MainWindow",
		"realname":        "{type='QMainWindow' name='main'}",
		"superclasses":    "QWidget > QObject",
		"geometry_x":      "100",
		"geometry_height": "300",
		"visual_visible":  "true",
		"windowTitle":     "Demo & Co",
		"flags":           "",
	}
	for k, v := range want {
		got, ok := bag.String(k)
		if !ok || got != v {
			t.Errorf("%s: expected %q, got %q (present=%v)", k, v, got, ok)
		}
	}

	order := []string{"class", "simplifiedType", "objectName", "realname", "superclasses", "geometry_x"}
	for i, k := range order {
		if bag.Entries()[i].Key != k {
			t.Errorf("position %d: expected %q, got %q", i, k, bag.Entries()[i].Key)
		}
	}
}

// TestParseRawSource verifies each node keeps its exact source fragment
func TestParseRawSource(t *testing.T) {
	snap, err := Parse([]byte(sampleXML(t)))
	if err != nil {
		t.Fatal(err)
	}
	ok, _ := snap.Tree.Lookup(2)
	if !strings.HasPrefix(ok.RawSource, `<element class="QPushButton" objectName="ok">`) ||
		!strings.HasSuffix(ok.RawSource, "</element>") {
		t.Errorf("unexpected raw source:\n%s", ok.RawSource)
	}
	label, _ := snap.Tree.Lookup(3)
	if label.RawSource != `<element class="QLabel"/>` {
		t.Errorf("unexpected raw source for self-closing element: %q", label.RawSource)
	}
}

func TestParseDirectChildren(t *testing.T) {
	doc := `<ui><element simplifiedType="Window"><element simplifiedType="Button"/><other/><element simplifiedType="Label"/></element></ui>`
	snap, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tree.Len() != 3 || len(snap.Tree.Root().Children) != 2 {
		t.Fatalf("expected root with 2 element children, got %d nodes", snap.Tree.Len())
	}
	if snap.HasScreenshot() {
		t.Error("document has no screenshot")
	}
	if _, err := snap.Image(); !errors.Is(err, ErrNoScreenshot) {
		t.Errorf("expected ErrNoScreenshot, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"no markup", "just text", ErrNoXML},
		{"malformed", "<ui><element></ui>", nil},
		{"only a comment", "<!-- nothing -->", ErrNoElements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestParseWithoutElements verifies the document root is used when no element exists
func TestParseWithoutElements(t *testing.T) {
	snap, err := Parse([]byte(`<ui objectName="bare"><note/></ui>`))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tree.Len() != 1 || snap.Tree.Root().Label != "ui (bare)" {
		t.Errorf("unexpected tree: %d nodes, root %q", snap.Tree.Len(), snap.Tree.Root().Label)
	}
}

func TestParseBadScreenshot(t *testing.T) {
	doc := `<ui><element><image type="PNG">not base64!</image></element></ui>`
	snap, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("bad screenshot should not fail the load: %v", err)
	}
	if snap.HasScreenshot() || snap.ScreenshotErr == nil {
		t.Error("expected ScreenshotErr and no screenshot")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.xml")
	if err := os.WriteFile(path, []byte(sampleXML(t)), 0o644); err != nil {
		t.Fatal(err)
	}
	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Name != "main.xml" || snap.Path != path || snap.ModTime.IsZero() {
		t.Errorf("unexpected metadata %+v", snap)
	}

	if _, err := Load(filepath.Join(dir, "missing.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
