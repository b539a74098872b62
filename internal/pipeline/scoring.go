package pipeline

import (
	"math"

	"github.com/kittclouds/gokitt-search/internal/textindex"
)

// bm25Params are the classic Okapi BM25 constants, the same defaults
// pkg/resorank/types.go's DefaultConfig ships (K1: 1.2, B: 0.75).
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// bm25Score is this pipeline's base relevancy scorer, adapted from
// pkg/resorank/scorer.go's Score (IDF lookup, per-term BM25
// contribution summed across query words) but reading term statistics
// from internal/textindex instead of resorank's own TokenIndex, since
// the ranking core's conditions are resolved against that store.
//
// This is the "sort" stage underlying the GBRR rule stack: proximity
// and typo buckets group documents by rule-specific cost, and BM25
// breaks ties within a group that neither rule could further
// distinguish (spec §5: GBRR instances are stacked; something must
// still rank documents the stack leaves tied).
func bm25Score(idx *textindex.Index, words []string, docID uint32) float64 {
	n := idx.NumDocs()
	if n == 0 {
		return 0
	}
	avgLen := idx.AverageDocLength()
	docLen := float64(idx.DocLength(docID))

	var total float64
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true

		tf := idx.TermFrequency(w, docID)
		if tf == 0 {
			continue
		}
		df := idx.DocFrequency(w)
		idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))

		lengthNorm := 1 - bm25B + bm25B*(docLen/avgLen)
		total += idf * (float64(tf) * (bm25K1 + 1)) / (float64(tf) + bm25K1*lengthNorm)
	}
	return total
}
