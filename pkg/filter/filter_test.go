package filter

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/snapview/pkg/model"
	"github.com/vanderheijden86/snapview/pkg/props"
)

func labelled(label string, kv map[string]string, children ...*model.Node) *model.Node {
	var b props.Builder
	for k, v := range kv {
		b.Set(k, v)
	}
	return &model.Node{Label: label, Props: b.Encode(), Children: children}
}

// sampleTree builds:
//
//	1 MainWindow
//	├── 2 Toolbar
//	│   └── 3 SaveButton {text: Save}
//	└── 4 Dialog
//	    ├── 5 OkButton {text: OK}
//	    └── 6 Label {text: Save changes?}
func sampleTree() *model.Tree {
	return model.Build(labelled("MainWindow", nil,
		labelled("Toolbar", nil,
			labelled("SaveButton", map[string]string{"text": "Save"})),
		labelled("Dialog", nil,
			labelled("OkButton", map[string]string{"text": "OK"}),
			labelled("Label", map[string]string{"text": "Save changes?"})),
	))
}

func matchIDs(v Visibility) []int {
	var ids []int
	for _, n := range v.Matches() {
		ids = append(ids, n.ID)
	}
	return ids
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestRecomputeIdle verifies no filter leaves everything visible and nothing highlighted
func TestRecomputeIdle(t *testing.T) {
	tree := sampleTree()
	v := NewEngine(props.NewStore()).Recompute(tree, State{OnlyMatches: true})

	if v.Active() {
		t.Error("expected inactive visibility")
	}
	for _, n := range tree.Nodes() {
		if !v.Visible(n.ID) || !v.ChildrenVisible(n.ID) || v.Highlighted(n.ID) {
			t.Errorf("node %d: expected visible and not highlighted", n.ID)
		}
	}
	if v.VisibleCount() != tree.Len() || v.Total() != tree.Len() {
		t.Errorf("expected %d visible, got %d", tree.Len(), v.VisibleCount())
	}
}

func TestRecomputeMatchSources(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []int
	}{
		{"tree text is case-insensitive", State{TreeText: "button"}, []int{3, 5}},
		{"value text", State{ValueText: "save"}, []int{3, 6}},
		{"both predicates combine with and", State{TreeText: "button", ValueText: "save"}, []int{3}},
		{"explicit set takes precedence", State{TreeText: "button", Explicit: []int{6, 1}}, []int{1, 6}},
		{"unknown explicit ids are ignored", State{Explicit: []int{99, 4}}, []int{4}},
		{"no matches", State{TreeText: "nothing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewEngine(props.NewStore()).Recompute(sampleTree(), tt.state)
			if got := matchIDs(v); !equalIDs(got, tt.want) {
				t.Errorf("expected matches %v, got %v", tt.want, got)
			}
			for _, id := range tt.want {
				if !v.Highlighted(id) {
					t.Errorf("node %d should be highlighted", id)
				}
			}
		})
	}
}

// TestValueSearchSkipsNonStrings verifies null and nested values never match
func TestValueSearchSkipsNonStrings(t *testing.T) {
	root := &model.Node{Label: "root", Children: []*model.Node{
		{Label: "num", Props: `{"count": 42}`},
		{Label: "nil", Props: `{"text": null}`},
		{Label: "nested", Props: `{"obj": {"text": "42"}}`},
		{Label: "str", Props: `{"text": "x42"}`},
	}}
	tree := model.Build(root)
	v := NewEngine(props.NewStore()).Recompute(tree, State{ValueText: "42"})
	if got := matchIDs(v); !equalIDs(got, []int{5}) {
		t.Errorf("expected only the string value to match, got %v", got)
	}
}

func TestRecomputeOnlyMatches(t *testing.T) {
	tree := sampleTree()
	v := NewEngine(props.NewStore()).Recompute(tree, State{TreeText: "okbutton", OnlyMatches: true})

	visible := map[int]bool{1: true, 4: true, 5: true}
	for _, n := range tree.Nodes() {
		if v.Visible(n.ID) != visible[n.ID] {
			t.Errorf("node %d: visible = %v, want %v", n.ID, v.Visible(n.ID), visible[n.ID])
		}
	}
	if !v.ChildrenVisible(1) || !v.ChildrenVisible(4) {
		t.Error("ancestor child lists should be revealed")
	}
	if v.ChildrenVisible(2) || v.ChildrenVisible(5) {
		t.Error("child lists outside the chain should stay hidden")
	}
}

// TestOnlyMatchesWithNoResults verifies an active filter with zero matches hides everything
func TestOnlyMatchesWithNoResults(t *testing.T) {
	tree := sampleTree()
	v := NewEngine(props.NewStore()).Recompute(tree, State{TreeText: "zzz", OnlyMatches: true})
	if v.VisibleCount() != 0 {
		t.Errorf("expected nothing visible, got %d", v.VisibleCount())
	}

	v = NewEngine(props.NewStore()).Recompute(tree, State{TreeText: "zzz"})
	if v.VisibleCount() != tree.Len() || v.MatchCount() != 0 {
		t.Errorf("without only-matches everything stays visible, got %d", v.VisibleCount())
	}
}

// TestFilterThenClick verifies a hit-test set replaces the text filter
func TestFilterThenClick(t *testing.T) {
	tree := sampleTree()
	e := NewEngine(props.NewStore())

	before := e.Recompute(tree, State{TreeText: "button", OnlyMatches: true})
	if !before.Visible(3) || before.Visible(6) {
		t.Fatal("text filter should show SaveButton and hide Label")
	}

	after := e.Recompute(tree, State{TreeText: "button", OnlyMatches: true, Explicit: []int{6}})
	if after.Visible(3) || !after.Visible(6) || !after.Highlighted(6) {
		t.Error("explicit set should replace the text matches")
	}
}

// TestShownRequiresVisibleAncestors verifies Shown walks the ancestor chain
func TestShownRequiresVisibleAncestors(t *testing.T) {
	tree := sampleTree()
	v := NewEngine(props.NewStore()).Recompute(tree, State{TreeText: "okbutton", OnlyMatches: true})
	for _, n := range tree.Nodes() {
		want := n.ID == 1 || n.ID == 4 || n.ID == 5
		if v.Shown(n) != want {
			t.Errorf("node %d: shown = %v, want %v", n.ID, v.Shown(n), want)
		}
	}
}

func randomTree(t *rapid.T) *model.Tree {
	count := rapid.IntRange(1, 30).Draw(t, "count")
	nodes := make([]*model.Node, count)
	letters := []string{"alpha", "beta", "gamma", "delta"}
	for i := range nodes {
		nodes[i] = &model.Node{
			Label: rapid.SampledFrom(letters).Draw(t, "label"),
			Props: `{"text": "` + rapid.SampledFrom(letters).Draw(t, "value") + `"}`,
		}
		if i > 0 {
			parent := nodes[rapid.IntRange(0, i-1).Draw(t, "parent")]
			parent.Children = append(parent.Children, nodes[i])
		}
	}
	return model.Build(nodes[0])
}

// TestAncestorVisibilityInvariant checks that highlighted chains are always
// shown, and that only-matches shows nothing outside them.
func TestAncestorVisibilityInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tree := randomTree(t)
		state := State{
			TreeText:    rapid.SampledFrom([]string{"", "al", "BETA", "a"}).Draw(t, "tree"),
			ValueText:   rapid.SampledFrom([]string{"", "ga", "delta"}).Draw(t, "value"),
			OnlyMatches: rapid.Bool().Draw(t, "only"),
		}
		v := NewEngine(props.NewStore()).Recompute(tree, state)

		inChain := make(map[int]bool)
		for _, m := range v.Matches() {
			if !v.Shown(m) {
				t.Fatalf("highlighted node %d is not shown", m.ID)
			}
			inChain[m.ID] = true
			for _, a := range tree.Ancestors(m) {
				inChain[a.ID] = true
			}
		}
		if state.OnlyMatches && state.Active() {
			for _, n := range tree.Nodes() {
				if v.Visible(n.ID) && !inChain[n.ID] {
					t.Fatalf("node %d is visible outside every highlighted chain", n.ID)
				}
			}
		}
	})
}
