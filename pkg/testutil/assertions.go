package testutil

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/snapview/pkg/model"
)

// Visibility is the part of a filter result the assertions read.
type Visibility interface {
	Visible(id int) bool
	ChildrenVisible(id int) bool
	Highlighted(id int) bool
}

// AssertNodeCount verifies the expected number of elements.
func AssertNodeCount(t *testing.T, tree *model.Tree, expected int) {
	t.Helper()
	if tree.Len() != expected {
		t.Errorf("expected %d elements, got %d", expected, tree.Len())
	}
}

// AssertValid verifies the tree passes validation.
func AssertValid(t *testing.T, tree *model.Tree) {
	t.Helper()
	if err := tree.Validate(); err != nil {
		t.Errorf("tree invalid: %v", err)
	}
}

// AssertAncestorsShown verifies every highlighted element is reachable: its
// own row and every ancestor's row and child list are visible.
func AssertAncestorsShown(t *testing.T, tree *model.Tree, v Visibility) {
	t.Helper()
	for _, n := range tree.Nodes() {
		if !v.Highlighted(n.ID) {
			continue
		}
		if !v.Visible(n.ID) {
			t.Errorf("match %d (%s) is hidden", n.ID, n.Label)
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !v.Visible(p.ID) || !v.ChildrenVisible(p.ID) {
				t.Errorf("ancestor %d of match %d is collapsed or hidden", p.ID, n.ID)
			}
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// NodeIDs returns the IDs of nodes in order.
func NodeIDs(nodes []*model.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
