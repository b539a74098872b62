package distance

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/rankgraph"
)

type condStub struct{ label string }

type stubRule struct{}

func (stubRule) BuildEdges(_ context.Context, src, dst *querygraph.TermData) ([]rankgraph.EdgeSpec[condStub], error) {
	if src == nil || dst == nil {
		return []rankgraph.EdgeSpec[condStub]{{Cost: 0, Condition: nil}}, nil
	}
	a := condStub{label: src.Words[0] + ">" + dst.Words[0] + "#a"}
	b := condStub{label: src.Words[0] + ">" + dst.Words[0] + "#b"}
	return []rankgraph.EdgeSpec[condStub]{
		{Cost: 1, Condition: &a},
		{Cost: 2, Condition: &b},
	}, nil
}
func (stubRule) WordsUsedByCondition(condStub) []string   { return nil }
func (stubRule) PhrasesUsedByCondition(condStub) [][]string { return nil }
func (stubRule) ComputeDocIDs(_ context.Context, _ condStub, u *docids.DocIdSet) (*docids.DocIdSet, error) {
	return u.Clone(), nil
}

func buildGraph(t *testing.T) *rankgraph.Graph[condStub] {
	t.Helper()
	q := querygraph.New()
	q.InsertTermChain([]querygraph.TermData{
		{Words: []string{"a"}},
		{Words: []string{"b"}},
	})
	g, err := rankgraph.Build[condStub](context.Background(), stubRule{}, q)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestComputeDistancesFromEndAreZero(t *testing.T) {
	g := buildGraph(t)
	table := Compute(g)

	entries := table.Entries(g.QueryGraph().EndNode())
	if len(entries) != 1 || entries[0].Cost != 0 {
		t.Fatalf("End node distance = %+v, want single zero-cost entry", entries)
	}
}

func TestComputeAccumulatesCostAlongChain(t *testing.T) {
	g := buildGraph(t)
	table := Compute(g)

	root := g.QueryGraph().Root()
	entries := table.Entries(root)
	if len(entries) == 0 {
		t.Fatal("root should have at least one reachable cost to End")
	}
	// Cheapest path: Start(free) -> a(cost 1, cheaper of the two a->b
	// edges) -> b(free) -> End = 1.
	if entries[0].Cost != 1 {
		t.Errorf("cheapest cost from root = %d, want 1", entries[0].Cost)
	}
}

func TestNecessaryForUnreachableCostIsNil(t *testing.T) {
	g := buildGraph(t)
	table := Compute(g)
	root := g.QueryGraph().Root()
	if n := table.NecessaryFor(root, 9999); n != nil {
		t.Errorf("NecessaryFor unreachable cost should be nil, got %v", n)
	}
}
