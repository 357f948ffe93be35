package props

import (
	"strings"
	"testing"
)

func sampleBag() Bag {
	var b Builder
	b.Set("class", "QPushButton")
	b.Set("objectName", "okButton")
	b.Set("geometry_x", "10")
	b.Set("geometry_width", "80")
	b.Set("visual_text", "OK")
	b.Set("superclasses", "QAbstractButton > QWidget > QObject")
	return b.Bag()
}

func rowNames(tab Table) []string {
	var out []string
	for _, r := range tab.Rows {
		switch r.Kind {
		case RowGroupHeader:
			out = append(out, "["+r.Name+"]")
		default:
			out = append(out, r.Name)
		}
	}
	return out
}

func TestSplit(t *testing.T) {
	g := Split(sampleBag())

	if len(g.Standalone) != 2 {
		t.Fatalf("expected 2 standalone keys, got %d", len(g.Standalone))
	}
	if len(g.Groups) != 3 {
		t.Fatalf("expected geometry, visual and superclasses groups, got %d", len(g.Groups))
	}
	geo := g.Groups[0]
	if geo.Name != "geometry" || geo.Items[0].DisplayName != "x" || geo.Items[0].Key != "geometry_x" {
		t.Errorf("unexpected geometry group: %+v", geo)
	}
	sup := g.Groups[2]
	if sup.Name != "superclasses" || len(sup.Items) != 3 {
		t.Fatalf("unexpected superclasses group: %+v", sup)
	}
	if sup.Items[0].DisplayName != "inheritance_0" || sup.Items[0].Value.Text != "QAbstractButton" {
		t.Errorf("unexpected first level: %+v", sup.Items[0])
	}
}

func TestBuildTableSortOrders(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortDesc, "objectName class [visual] text [superclasses] inheritance_2 inheritance_1 inheritance_0 [geometry] x width"},
		{SortAsc, "class objectName [geometry] width x [superclasses] inheritance_0 inheritance_1 inheritance_2 [visual] text"},
		{SortNone, "class objectName [geometry] x width [visual] text [superclasses] inheritance_0 inheritance_1 inheritance_2"},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			got := strings.Join(rowNames(BuildTable(sampleBag(), TableOptions{Sort: tt.order})), " ")
			if got != tt.want {
				t.Errorf("expected\n  %s\ngot\n  %s", tt.want, got)
			}
		})
	}
}

func TestBuildTableSearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   string
	}{
		{"standalone by value", "okbutton", "objectName"},
		{"group name keeps all items", "GEOMETRY", "[geometry] width x"},
		{"group item by value", "qwidget", "[superclasses] inheritance_1"},
		{"no matches", "nothing-here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := BuildTable(sampleBag(), TableOptions{Sort: SortAsc, Search: tt.search})
			got := strings.Join(rowNames(tab), " ")
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildTableEmpty(t *testing.T) {
	tab := BuildTable(Bag{}, TableOptions{})
	if !tab.Empty() || tab.Message() != EmptyMessage {
		t.Errorf("expected fallback message, got %q", tab.Message())
	}
	tab = BuildTable(sampleBag(), TableOptions{Search: "zzz"})
	if tab.Message() == "" || tab.Message() == EmptyMessage {
		t.Errorf("expected no-match message, got %q", tab.Message())
	}
}

func TestSortOrderCycle(t *testing.T) {
	o := SortDesc
	seen := map[SortOrder]bool{}
	for range SortOrders {
		seen[o] = true
		o = o.Next()
	}
	if o != SortDesc || len(seen) != 3 {
		t.Errorf("expected a full cycle back to desc, got %v after %d", o, len(seen))
	}
	for _, s := range []string{"desc", "ASC", "none", ""} {
		if _, err := ParseSortOrder(s); err != nil {
			t.Errorf("ParseSortOrder(%q): %v", s, err)
		}
	}
	if _, err := ParseSortOrder("sideways"); err == nil {
		t.Error("expected error for unknown order")
	}
}
