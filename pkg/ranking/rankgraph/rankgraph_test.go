package rankgraph

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// condStub is a tiny comparable condition used to exercise Graph without
// pulling in a concrete rule (proximity/typo have their own tests).
type condStub struct {
	from, to string
}

type stubRule struct {
	docs map[condStub]*docids.DocIdSet
}

func (r stubRule) BuildEdges(_ context.Context, src, dst *querygraph.TermData) ([]EdgeSpec[condStub], error) {
	if src == nil || dst == nil {
		// Start/End edges are free transitions.
		return []EdgeSpec[condStub]{{Cost: 0, Condition: nil}}, nil
	}
	c := condStub{from: src.Words[0], to: dst.Words[0]}
	return []EdgeSpec[condStub]{{Cost: 1, Condition: &c}}, nil
}

func (r stubRule) WordsUsedByCondition(c condStub) []string { return []string{c.from, c.to} }
func (r stubRule) PhrasesUsedByCondition(condStub) [][]string { return nil }
func (r stubRule) ComputeDocIDs(_ context.Context, c condStub, universe *docids.DocIdSet) (*docids.DocIdSet, error) {
	d := r.docs[c].Clone()
	d.IntersectWith(universe)
	return d, nil
}

func buildTestGraph(t *testing.T) (*Graph[condStub], *querygraph.QueryGraph) {
	t.Helper()
	q := querygraph.New()
	ids := q.InsertTermChain([]querygraph.TermData{
		{Words: []string{"batman"}},
		{Words: []string{"returns"}},
	})
	_ = ids

	rule := stubRule{docs: map[condStub]*docids.DocIdSet{
		{from: "batman", to: "returns"}: docids.FromSlice([]uint32{1, 2, 3}),
	}}
	g, err := Build[condStub](context.Background(), rule, q)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g, q
}

func TestBuildProducesExpectedEdges(t *testing.T) {
	g, q := buildTestGraph(t)

	// Start -> term1, term1 -> term2, term2 -> End: 3 edge slots.
	if g.NumEdges() != 3 {
		t.Fatalf("NumEdges() = %d, want 3", g.NumEdges())
	}
	if g.NumConditions() != 1 {
		t.Fatalf("NumConditions() = %d, want 1", g.NumConditions())
	}

	root := q.Root()
	edges := g.EdgesOfNode(root)
	if edges.Len() != 1 {
		t.Fatalf("root should have exactly one outgoing edge, got %d", edges.Len())
	}
}

func TestRemoveEdgesWithConditionTombstones(t *testing.T) {
	g, q := buildTestGraph(t)

	var condID ConditionID
	var found bool
	for i := 0; i < g.NumEdges(); i++ {
		e := g.Edge(EdgeID(i))
		if e.Condition != nil {
			condID = *e.Condition
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected at least one conditioned edge")
	}

	g.RemoveEdgesWithCondition(condID)

	for i := 0; i < g.NumEdges(); i++ {
		e := g.Edge(EdgeID(i))
		if e.Condition != nil && *e.Condition == condID && !e.Removed {
			t.Errorf("edge %d should be tombstoned", i)
		}
	}

	// The removed edge should no longer appear in its source's bitmap.
	for src := 0; src < q.NumNodes(); src++ {
		bm := g.EdgesOfNode(querygraph.NodeID(src))
		bm.ForEach(func(eid int) {
			e := g.Edge(EdgeID(eid))
			if e.Removed {
				t.Errorf("removed edge %d still listed under node %d", eid, src)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, _ := buildTestGraph(t)
	clone := g.Clone()

	var condID ConditionID
	for i := 0; i < clone.NumEdges(); i++ {
		if e := clone.Edge(EdgeID(i)); e.Condition != nil {
			condID = *e.Condition
			break
		}
	}
	clone.RemoveEdgesWithCondition(condID)

	removedInOriginal := false
	for i := 0; i < g.NumEdges(); i++ {
		if g.Edge(EdgeID(i)).Removed {
			removedInOriginal = true
		}
	}
	if removedInOriginal {
		t.Errorf("mutating clone leaked into the original graph")
	}
}
