package plan

import (
	"strings"
	"testing"
)

type fakeNode struct {
	label    string
	children []Treeable
}

func (f fakeNode) Label() string        { return f.label }
func (f fakeNode) Children() []Treeable { return f.children }

func TestRenderTreeMarksLastChildDifferently(t *testing.T) {
	root := fakeNode{
		label: "Root",
		children: []Treeable{
			fakeNode{label: "First"},
			fakeNode{label: "Last"},
		},
	}
	out := RenderTree(root)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "╟──") {
		t.Errorf("expected a non-last connector on the first child, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "╙──") {
		t.Errorf("expected a last connector on the second child, got %q", lines[2])
	}
}

func TestRenderTreeLeafHasNoConnectors(t *testing.T) {
	out := RenderTree(fakeNode{label: "Leaf"})
	if strings.TrimSpace(out) != "Leaf" {
		t.Errorf("expected a bare label for a childless node, got %q", out)
	}
}

func TestLPTNodeLabelIncludesDetailWhenPresent(t *testing.T) {
	n := NewLPTNode(KindScan, nil, "n:Person")
	if n.Label() != "Scan n:Person" {
		t.Errorf("got %q, want %q", n.Label(), "Scan n:Person")
	}
	bare := NewLPTNode(KindJoin, nil, "")
	if bare.Label() != "Join" {
		t.Errorf("got %q, want %q", bare.Label(), "Join")
	}
}
