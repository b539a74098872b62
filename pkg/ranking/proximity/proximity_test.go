package proximity

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

type fakeSource struct {
	docs map[string]*docids.DocIdSet
}

func (f fakeSource) ProximityDocIDs(_ context.Context, src, dst string, p int) (*docids.DocIdSet, error) {
	key := fmtKey(src, dst, p)
	if d, ok := f.docs[key]; ok {
		return d, nil
	}
	return docids.New(), nil
}

func fmtKey(src, dst string, p int) string {
	return src + "|" + dst + "|" + itoa(p)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestBuildEdgesCoversAllProximities(t *testing.T) {
	rule := Rule{Source: fakeSource{}, Weight: 2}
	src := &querygraph.TermData{Words: []string{"batman"}}
	dst := &querygraph.TermData{Words: []string{"returns"}}

	specs, err := rule.BuildEdges(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("BuildEdges error: %v", err)
	}
	if len(specs) != MaxProximity {
		t.Fatalf("len(specs) = %d, want %d", len(specs), MaxProximity)
	}

	for i, spec := range specs {
		wantCost := uint16(i) * 2
		if spec.Cost != wantCost {
			t.Errorf("specs[%d].Cost = %d, want %d", i, spec.Cost, wantCost)
		}
		if spec.Condition == nil || spec.Condition.Proximity != i+1 {
			t.Errorf("specs[%d] proximity wrong: %+v", i, spec.Condition)
		}
	}
}

func TestBuildEdgesFreeForStartEnd(t *testing.T) {
	rule := Rule{Source: fakeSource{}, Weight: 1}
	specs, err := rule.BuildEdges(context.Background(), nil, &querygraph.TermData{Words: []string{"x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 1 || specs[0].Condition != nil {
		t.Fatalf("Start transition should be a single free edge, got %+v", specs)
	}
}

func TestComputeDocIDsIntersectsUniverse(t *testing.T) {
	docs := map[string]*docids.DocIdSet{
		fmtKey("batman", "returns", 1): docids.FromSlice([]uint32{1, 2, 3}),
	}
	rule := Rule{Source: fakeSource{docs: docs}}
	c := Condition{SrcWord: "batman", DstWord: "returns", Proximity: 1}

	universe := docids.FromSlice([]uint32{2, 3, 4})
	result, err := rule.ComputeDocIDs(context.Background(), c, universe)
	if err != nil {
		t.Fatalf("ComputeDocIDs error: %v", err)
	}
	if result.Len() != 2 || !result.Contains(2) || !result.Contains(3) {
		t.Errorf("ComputeDocIDs = %v, want {2,3}", result.ToSlice())
	}
}

func TestWordsUsedByCondition(t *testing.T) {
	rule := Rule{}
	words := rule.WordsUsedByCondition(Condition{SrcWord: "a", DstWord: "b", Proximity: 3})
	if len(words) != 2 || words[0] != "a" || words[1] != "b" {
		t.Errorf("WordsUsedByCondition = %v", words)
	}
}
