package gbrr

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/rankgraph"
)

type condStub struct{ label string }

type stubRule struct {
	docs map[string]*docids.DocIdSet
}

func (r stubRule) BuildEdges(_ context.Context, src, dst *querygraph.TermData) ([]rankgraph.EdgeSpec[condStub], error) {
	if src == nil || dst == nil {
		return []rankgraph.EdgeSpec[condStub]{{Cost: 0, Condition: nil}}, nil
	}
	x := condStub{label: "X"}
	y := condStub{label: "Y"}
	return []rankgraph.EdgeSpec[condStub]{
		{Cost: 1, Condition: &x},
		{Cost: 2, Condition: &y},
	}, nil
}

func (r stubRule) WordsUsedByCondition(c condStub) []string { return []string{c.label} }
func (r stubRule) PhrasesUsedByCondition(condStub) [][]string { return nil }
func (r stubRule) ComputeDocIDs(_ context.Context, c condStub, universe *docids.DocIdSet) (*docids.DocIdSet, error) {
	out := r.docs[c.label].Clone()
	out.IntersectWith(universe)
	return out, nil
}

func buildQuery() *querygraph.QueryGraph {
	q := querygraph.New()
	q.InsertTermChain([]querygraph.TermData{
		{Words: []string{"a"}},
		{Words: []string{"b"}},
	})
	return q
}

func TestDriverProducesCostMonotoneBuckets(t *testing.T) {
	rule := stubRule{docs: map[string]*docids.DocIdSet{
		"X": docids.FromSlice([]uint32{1, 2, 3}),
		"Y": docids.FromSlice([]uint32{4, 5}),
	}}
	d := NewDriver[condStub](rule)
	ctx := context.Background()

	universe := docids.FromSlice([]uint32{1, 2, 3, 4, 5})
	if err := d.StartIteration(ctx, universe, buildQuery()); err != nil {
		t.Fatalf("StartIteration: %v", err)
	}

	b1, done, err := d.NextBucket(ctx, docids.FromSlice([]uint32{1, 2, 3, 4, 5}))
	if err != nil || done {
		t.Fatalf("bucket1: done=%v err=%v", done, err)
	}
	if b1.Docs.Len() != 3 || !b1.Docs.Contains(1) || !b1.Docs.Contains(2) || !b1.Docs.Contains(3) {
		t.Errorf("bucket1 = %v, want {1,2,3}", b1.Docs.ToSlice())
	}

	b2, done, err := d.NextBucket(ctx, docids.FromSlice([]uint32{4, 5}))
	if err != nil || done {
		t.Fatalf("bucket2: done=%v err=%v", done, err)
	}
	if b2.Docs.Len() != 2 || !b2.Docs.Contains(4) || !b2.Docs.Contains(5) {
		t.Errorf("bucket2 = %v, want {4,5}", b2.Docs.ToSlice())
	}

	_, done, err = d.NextBucket(ctx, docids.FromSlice([]uint32{4, 5}))
	if err != nil {
		t.Fatalf("bucket3: unexpected error %v", err)
	}
	if !done {
		t.Errorf("expected exhaustion after 2 cost levels")
	}

	d.EndIteration()
}

func TestNextBucketPanicsBeforeStartIteration(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling NextBucket before StartIteration")
		}
	}()
	d := NewDriver[condStub](stubRule{docs: map[string]*docids.DocIdSet{}})
	d.NextBucket(context.Background(), docids.FromSlice([]uint32{1, 2}))
}

func TestNextBucketPanicsOnSingletonUniverse(t *testing.T) {
	rule := stubRule{docs: map[string]*docids.DocIdSet{
		"X": docids.FromSlice([]uint32{1, 2, 3}),
		"Y": docids.FromSlice([]uint32{4, 5}),
	}}
	d := NewDriver[condStub](rule)
	ctx := context.Background()
	if err := d.StartIteration(ctx, docids.FromSlice([]uint32{1, 2, 3, 4, 5}), buildQuery()); err != nil {
		t.Fatalf("StartIteration: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on singleton universe")
		}
	}()
	d.NextBucket(ctx, docids.FromSlice([]uint32{1}))
}

func TestRemoveEmptyEdgesPrunesDisjointCondition(t *testing.T) {
	rule := stubRule{docs: map[string]*docids.DocIdSet{
		"X": docids.FromSlice([]uint32{100}), // disjoint from the universe below
		"Y": docids.FromSlice([]uint32{4, 5}),
	}}
	d := NewDriver[condStub](rule)
	ctx := context.Background()

	universe := docids.FromSlice([]uint32{4, 5})
	if err := d.StartIteration(ctx, universe, buildQuery()); err != nil {
		t.Fatalf("StartIteration: %v", err)
	}

	// Only the Y-conditioned path should remain reachable at root.
	root := d.state.graph.QueryGraph().Root()
	entries := d.state.distances.Entries(root)
	if len(entries) != 1 || entries[0].Cost != 2 {
		t.Fatalf("distances(root) = %+v, want single cost-2 entry (X pruned)", entries)
	}
}
