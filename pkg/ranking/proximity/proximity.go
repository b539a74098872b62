// Package proximity implements the ProximityGraph ranking rule (spec
// §4.4): for each pair of adjacent query-graph terms it emits one edge
// per feasible proximity value, with a condition capturing which word
// forms and which distance apart. It is the Go counterpart of milli's
// proximity ranking rule graph
// (original_source/milli/src/search/new/graph_based_ranking_rule.rs),
// reshaped using the overlap/adjacency ideas in the teacher's
// pkg/resorank/proximity.go (DetectPhraseMatch).
package proximity

import (
	"context"
	"fmt"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/rankgraph"
)

// MaxProximity is the largest proximity value the rule considers (spec
// §4.4: p ∈ {1..8}).
const MaxProximity = 8

// Source resolves how close two word forms occur to each other across
// the document corpus. It is the "lower-level word/prefix database"
// spec §1 treats as an external collaborator; internal/textindex
// implements it.
type Source interface {
	// ProximityDocIDs returns the documents where srcWord occurs exactly
	// proximity word-positions before dstWord.
	ProximityDocIDs(ctx context.Context, srcWord, dstWord string, proximity int) (*docids.DocIdSet, error)
}

// Condition captures "term A within proximity p of term B" for a
// specific (word form, word form) pair (spec §3).
type Condition struct {
	SrcWord   string
	DstWord   string
	Proximity int
}

// Rule implements rankgraph.Rule[Condition].
type Rule struct {
	Source Source
	// Weight scales the per-step cost: cost = (p-1) * Weight (spec §4.4).
	Weight uint16
}

var _ rankgraph.Rule[Condition] = Rule{}

// BuildEdges emits one edge per feasible proximity value for every
// (src word form, dst word form) pair. Start/End transitions (nil term)
// are free.
func (r Rule) BuildEdges(_ context.Context, src, dst *querygraph.TermData) ([]rankgraph.EdgeSpec[Condition], error) {
	if src == nil || dst == nil {
		return []rankgraph.EdgeSpec[Condition]{{Cost: 0, Condition: nil}}, nil
	}

	srcForms := wordForms(src)
	dstForms := wordForms(dst)
	if len(srcForms) == 0 || len(dstForms) == 0 {
		return []rankgraph.EdgeSpec[Condition]{{Cost: 0, Condition: nil}}, nil
	}

	specs := make([]rankgraph.EdgeSpec[Condition], 0, len(srcForms)*len(dstForms)*MaxProximity)
	for _, s := range srcForms {
		for _, d := range dstForms {
			for p := 1; p <= MaxProximity; p++ {
				c := Condition{SrcWord: s, DstWord: d, Proximity: p}
				specs = append(specs, rankgraph.EdgeSpec[Condition]{
					Cost:      uint16(p-1) * r.Weight,
					Condition: &c,
				})
			}
		}
	}
	return specs, nil
}

// WordsUsedByCondition returns the two word forms a proximity condition
// depends on.
func (r Rule) WordsUsedByCondition(c Condition) []string {
	return []string{c.SrcWord, c.DstWord}
}

// PhrasesUsedByCondition returns no phrases: proximity operates on
// individual word forms only.
func (r Rule) PhrasesUsedByCondition(Condition) [][]string { return nil }

// ComputeDocIDs resolves a proximity condition's raw posting list,
// restricted to universe.
func (r Rule) ComputeDocIDs(ctx context.Context, c Condition, universe *docids.DocIdSet) (*docids.DocIdSet, error) {
	d, err := r.Source.ProximityDocIDs(ctx, c.SrcWord, c.DstWord, c.Proximity)
	if err != nil {
		return nil, fmt.Errorf("proximity: %w", err)
	}
	out := d.Clone()
	out.IntersectWith(universe)
	return out, nil
}

func wordForms(t *querygraph.TermData) []string {
	if t == nil {
		return nil
	}
	forms := make([]string, 0, len(t.Words)+len(t.Prefixes))
	forms = append(forms, t.Words...)
	forms = append(forms, t.Prefixes...)
	return forms
}
