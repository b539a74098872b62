// Package typo implements the TypoGraph ranking rule (spec §4.4): for
// each term node it emits one edge per admissible typo count, with cost
// equal to the typo count. Candidate word forms within an edit distance
// are found with github.com/antzucaro/matchr's Levenshtein
// implementation (pulled in from MrWong99-glyphoxa's go.mod — the
// teacher itself has no string-distance dependency).
package typo

import (
	"context"
	"fmt"

	"github.com/antzucaro/matchr"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/rankgraph"
)

// Source supplies the vocabulary a query word can resolve to and the
// posting list for a resolved word form. It is the "lower-level
// word/prefix database" spec §1 treats as an external collaborator.
type Source interface {
	// CandidatesAtDistance returns vocabulary word forms at exactly
	// editDistance edits from word (editDistance == 0 means word itself,
	// if it is in the vocabulary).
	CandidatesAtDistance(ctx context.Context, word string, editDistance int) ([]string, error)
	// WordDocIDs returns the documents containing the exact word form.
	WordDocIDs(ctx context.Context, word string) (*docids.DocIdSet, error)
}

// Condition captures "term T resolved with exactly k typos to a
// specific word form" (spec §3).
type Condition struct {
	Term     string
	Typos    int
	Resolved string
}

// Rule implements rankgraph.Rule[Condition].
type Rule struct {
	Source Source
	// MaxCandidatesPerTypo bounds how many resolved forms are admitted
	// per typo count, keeping the rule graph's edge count bounded (spec
	// design note: "avoid per-edge heap allocations" extends to avoiding
	// unbounded fan-out from a permissive vocabulary).
	MaxCandidatesPerTypo int
}

var _ rankgraph.Rule[Condition] = Rule{}

const defaultMaxCandidates = 8

// AdmissibleTypos returns the maximum typo count admissible for a word
// of the given length (spec §4.4 "admissible for the term's length";
// thresholds fixed per DESIGN.md Open Question #1).
func AdmissibleTypos(wordLen int) int {
	switch {
	case wordLen < 4:
		return 0
	case wordLen < 8:
		return 1
	default:
		return 2
	}
}

// BuildEdges emits, for the node being entered (dst), one edge per typo
// count from 0 up to AdmissibleTypos(len(word)), for each candidate
// resolved word form at that exact distance. Start/End and phrase-only
// terms are free transitions.
func (r Rule) BuildEdges(ctx context.Context, _ *querygraph.TermData, dst *querygraph.TermData) ([]rankgraph.EdgeSpec[Condition], error) {
	if dst == nil || len(dst.Words) == 0 {
		return []rankgraph.EdgeSpec[Condition]{{Cost: 0, Condition: nil}}, nil
	}

	word := dst.Words[0]
	maxK := AdmissibleTypos(len(word))

	var specs []rankgraph.EdgeSpec[Condition]
	for k := 0; k <= maxK; k++ {
		candidates, err := r.Source.CandidatesAtDistance(ctx, word, k)
		if err != nil {
			return nil, fmt.Errorf("typo: candidates for %q at distance %d: %w", word, k, err)
		}
		limit := r.maxCandidates()
		for i, cand := range candidates {
			if i >= limit {
				break
			}
			c := Condition{Term: word, Typos: k, Resolved: cand}
			specs = append(specs, rankgraph.EdgeSpec[Condition]{Cost: uint16(k), Condition: &c})
		}
	}
	if len(specs) == 0 {
		// Nothing resolves at all; fall back to a free transition so the
		// graph doesn't lose connectivity through this node.
		return []rankgraph.EdgeSpec[Condition]{{Cost: 0, Condition: nil}}, nil
	}
	return specs, nil
}

func (r Rule) maxCandidates() int {
	if r.MaxCandidatesPerTypo <= 0 {
		return defaultMaxCandidates
	}
	return r.MaxCandidatesPerTypo
}

// WordsUsedByCondition returns the single resolved word form a typo
// condition depends on.
func (r Rule) WordsUsedByCondition(c Condition) []string {
	return []string{c.Resolved}
}

// PhrasesUsedByCondition returns no phrases: typo tolerance operates on
// individual word forms only.
func (r Rule) PhrasesUsedByCondition(Condition) [][]string { return nil }

// ComputeDocIDs resolves a typo condition's raw posting list, restricted
// to universe.
func (r Rule) ComputeDocIDs(ctx context.Context, c Condition, universe *docids.DocIdSet) (*docids.DocIdSet, error) {
	d, err := r.Source.WordDocIDs(ctx, c.Resolved)
	if err != nil {
		return nil, fmt.Errorf("typo: %w", err)
	}
	out := d.Clone()
	out.IntersectWith(universe)
	return out, nil
}

// EditDistance exposes the Levenshtein distance used to classify
// candidates, so Source implementations (internal/textindex) compute it
// consistently with the rule's own notion of "k typos".
func EditDistance(a, b string) int {
	return matchr.Levenshtein(a, b)
}
