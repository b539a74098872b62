package querygraph

import "testing"

func termNode(word string) TermData {
	return TermData{Words: []string{word}}
}

func TestInsertTermChainConnectsStartToEnd(t *testing.T) {
	g := New()
	ids := g.InsertTermChain([]TermData{termNode("batman"), termNode("returns")})

	if len(ids) != 2 {
		t.Fatalf("expected 2 term nodes, got %d", len(ids))
	}

	root := g.Node(g.Root())
	if len(root.Successors) != 1 || root.Successors[0] != ids[0] {
		t.Errorf("root successors = %v, want [%d]", root.Successors, ids[0])
	}

	end := g.Node(g.EndNode())
	if len(end.Predecessors) != 1 || end.Predecessors[0] != ids[1] {
		t.Errorf("end predecessors = %v, want [%d]", end.Predecessors, ids[1])
	}

	mid := g.Node(ids[0])
	if len(mid.Successors) != 1 || mid.Successors[0] != ids[1] {
		t.Errorf("first term's successor = %v, want [%d]", mid.Successors, ids[1])
	}
}

func TestRemoveNodesBridgesAroundDeleted(t *testing.T) {
	g := New()
	ids := g.InsertTermChain([]TermData{termNode("a"), termNode("b"), termNode("c")})

	g.RemoveNodes([]NodeID{ids[1]})

	a := g.Node(ids[0])
	if len(a.Successors) != 1 || a.Successors[0] != ids[2] {
		t.Errorf("after removing middle node, a's successors = %v, want [%d]", a.Successors, ids[2])
	}
	c := g.Node(ids[2])
	if len(c.Predecessors) != 1 || c.Predecessors[0] != ids[0] {
		t.Errorf("c's predecessors = %v, want [%d]", c.Predecessors, ids[0])
	}
	if g.Node(ids[1]).Kind != Deleted {
		t.Errorf("removed node should be marked Deleted")
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	g := New()
	ids := g.InsertTermChain([]TermData{termNode("a"), termNode("b")})
	g.RemoveNodes([]NodeID{ids[0]})
	g.Simplify()

	root := g.Node(g.Root())
	if len(root.Successors) != 1 || root.Successors[0] != ids[1] {
		t.Errorf("root should connect directly to remaining term, got %v", root.Successors)
	}

	// Calling Simplify again should not panic or change anything further.
	g.Simplify()
	if len(root.Successors) != 1 {
		t.Errorf("second Simplify changed edges: %v", root.Successors)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	ids := g.InsertTermChain([]TermData{termNode("a")})
	clone := g.Clone()

	clone.Node(ids[0]).Term.Words[0] = "mutated"
	if g.Node(ids[0]).Term.Words[0] != "a" {
		t.Errorf("mutating clone leaked into original")
	}
}

func TestTermDataIsEmpty(t *testing.T) {
	var nilTerm *TermData
	if !nilTerm.IsEmpty() {
		t.Errorf("nil TermData should be empty")
	}
	empty := &TermData{}
	if !empty.IsEmpty() {
		t.Errorf("zero-value TermData should be empty")
	}
	full := &TermData{Words: []string{"x"}}
	if full.IsEmpty() {
		t.Errorf("TermData with a word should not be empty")
	}
}
