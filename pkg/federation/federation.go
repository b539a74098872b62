// Package federation implements the Federated Search Merger (spec C11):
// given N independent single-index searches, each scaled by its own
// query weight, it interleaves their ranked results into a single
// globally sorted list.
//
// Sub-queries run concurrently via golang.org/x/sync/errgroup, the same
// package MrWong99-glyphoxa and intelligencedev-manifold reach for to
// fan a handful of independent fetches out and cancel the rest on the
// first failure (hotctx.Assembler does the identical "gather N
// concurrent things, bail on first error" shape). The merge itself is a
// classic k-way heap merge over container/heap, since each per-query
// result list already arrives sorted by weighted score.
package federation

import (
	"container/heap"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// QueryDescriptor is one leg of a federated multi-search (spec §6.1).
type QueryDescriptor struct {
	IndexUID         string
	Query            string
	Filter           string
	Facets           []string
	Sort             []string
	Limit            int
	Offset           int
	Weight           float64 // resolved default 1.0 by the HTTP decoder
	ShowRankingScore bool
}

// Hit is one result from a single-index search, as required by spec
// §6.1 point 1: "doc, raw_score ∈ [0,1], source_query_index".
type Hit struct {
	PrimaryKey string
	Fields     map[string]any
	RawScore   float64
	// QueryRank is this hit's 0-indexed rank within its own query's
	// result list, used as the final tie-break (spec §6.1 point 3).
	QueryRank int
}

// SingleIndexSearcher runs one query descriptor against its index and
// returns results already sorted by descending raw_score, plus the
// count of hits that would be emitted ignoring federation's
// limit/offset. Implemented by internal/pipeline; this package has no
// dependency on it so federation stays testable in isolation.
type SingleIndexSearcher interface {
	Search(ctx context.Context, q QueryDescriptor) (hits []Hit, estimatedTotalHits int, err error)
}

// QueryError reports which query (by index in the request's queries
// array) failed, so the HTTP layer can prefix the error message per
// spec §6.1 ("Inside `.queries[i]`: ").
type QueryError struct {
	Index int
	Err   error
}

func (e *QueryError) Error() string { return fmt.Sprintf("queries[%d]: %v", e.Index, e.Err) }
func (e *QueryError) Unwrap() error { return e.Err }

// FederatedHit is one hit in a federated response, augmented with the
// _federation envelope spec §6.1 requires.
type FederatedHit struct {
	PrimaryKey   string
	Fields       map[string]any
	RankingScore *float64 // set only if the source query had ShowRankingScore
	Federation   Info
}

// Info is the `_federation` object attached to every federated hit.
type Info struct {
	IndexUID             string
	SourceQuery          int
	WeightedRankingScore float64
}

// Result is the federation response shape (spec §6.1, "with federation").
type Result struct {
	Hits               []FederatedHit
	Limit              int
	Offset             int
	EstimatedTotalHits int
}

// Merger orchestrates N independent single-index searches and merges
// them (spec C11).
type Merger struct {
	Searcher SingleIndexSearcher
}

// scoredQuery is one query's resolved, weight-scaled, sorted hit list.
type scoredQuery struct {
	descriptor         QueryDescriptor
	index              int
	hits               []Hit
	estimatedTotalHits int
}

// Run executes every query in queries concurrently, scales each hit's
// score by its query's weight, and merges them into a single list
// paginated by limit/offset (spec §6.1 federation.limit/offset,
// defaults applied by the caller). The first sub-query error cancels
// every other outstanding sub-query and is returned wrapped in a
// *QueryError naming which query failed (spec §6.1, §7: "first error
// wins and the response is the error").
func (m *Merger) Run(ctx context.Context, queries []QueryDescriptor, limit, offset int) (*Result, error) {
	results := make([]scoredQuery, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, estimatedTotal, err := m.Searcher.Search(gctx, q)
			if err != nil {
				return &QueryError{Index: i, Err: err}
			}
			results[i] = scoredQuery{descriptor: q, index: i, hits: hits, estimatedTotalHits: estimatedTotal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	estimatedTotal := 0
	for _, r := range results {
		estimatedTotal += r.estimatedTotalHits
	}

	merged := mergeByWeightedScore(results)

	if offset > len(merged) {
		offset = len(merged)
	}
	end := offset + limit
	if end > len(merged) || limit < 0 {
		end = len(merged)
	}
	page := merged[offset:end]

	out := make([]FederatedHit, len(page))
	for i, item := range page {
		out[i] = toFederatedHit(item)
	}

	return &Result{
		Hits:               out,
		Limit:              limit,
		Offset:             offset,
		EstimatedTotalHits: estimatedTotal,
	}, nil
}

// mergedItem is one hit ready to be emitted, carrying everything the
// final tie-break and `_federation` envelope need.
type mergedItem struct {
	query          QueryDescriptor
	queryIndex     int
	hit            Hit
	weightedScore  float64
}

// heapItem indexes into results[queryIndex].hits at position hitIdx,
// so the heap only ever holds one live candidate per query at a time —
// the standard k-way merge shape over already-sorted lists.
type heapItem struct {
	queryIndex int
	hitIdx     int
}

type scoreHeap struct {
	items   []heapItem
	results []scoredQuery
	weight  func(queryIndex int) float64
}

func (h *scoreHeap) Len() int { return len(h.items) }

// Less implements the merge's total order (spec §8 property 6 and
// §6.1 step 3): descending weighted_score, then ascending
// source_query_index, then ascending in-query rank.
func (h *scoreHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	ha := h.results[a.queryIndex].hits[a.hitIdx]
	hb := h.results[b.queryIndex].hits[b.hitIdx]
	sa := ha.RawScore * h.weight(a.queryIndex)
	sb := hb.RawScore * h.weight(b.queryIndex)
	if sa != sb {
		return sa > sb
	}
	if a.queryIndex != b.queryIndex {
		return a.queryIndex < b.queryIndex
	}
	return ha.QueryRank < hb.QueryRank
}

func (h *scoreHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *scoreHeap) Push(x any) { h.items = append(h.items, x.(heapItem)) }

func (h *scoreHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}

// mergeByWeightedScore k-way merges every query's sorted hit list into
// one globally sorted list (spec §6.1 step 3).
func mergeByWeightedScore(results []scoredQuery) []mergedItem {
	h := &scoreHeap{
		results: results,
		weight: func(queryIndex int) float64 {
			w := results[queryIndex].descriptor.Weight
			if w == 0 {
				return 0
			}
			return w
		},
	}
	for qi, r := range results {
		if len(r.hits) > 0 {
			h.items = append(h.items, heapItem{queryIndex: qi, hitIdx: 0})
		}
	}
	heap.Init(h)

	merged := make([]mergedItem, 0, totalHits(results))
	for h.Len() > 0 {
		top := heap.Pop(h).(heapItem)
		r := results[top.queryIndex]
		hit := r.hits[top.hitIdx]
		merged = append(merged, mergedItem{
			query:         r.descriptor,
			queryIndex:    top.queryIndex,
			hit:           hit,
			weightedScore: hit.RawScore * h.weight(top.queryIndex),
		})
		if top.hitIdx+1 < len(r.hits) {
			heap.Push(h, heapItem{queryIndex: top.queryIndex, hitIdx: top.hitIdx + 1})
		}
	}
	return merged
}

func totalHits(results []scoredQuery) int {
	n := 0
	for _, r := range results {
		n += len(r.hits)
	}
	return n
}

func toFederatedHit(item mergedItem) FederatedHit {
	fh := FederatedHit{
		PrimaryKey: item.hit.PrimaryKey,
		Fields:     item.hit.Fields,
		Federation: Info{
			IndexUID:             item.query.IndexUID,
			SourceQuery:          item.queryIndex,
			WeightedRankingScore: item.weightedScore,
		},
	}
	if item.query.ShowRankingScore {
		score := item.hit.RawScore
		fh.RankingScore = &score
	}
	return fh
}
