// Package pipeline is the outer multi-stage ranking pipeline spec §1
// treats as an external collaborator that drives GBRR: it parses a
// query into a query graph, builds the initial candidate universe,
// stacks a proximity pkg/ranking/gbrr.Driver above a typo one (spec §5
// "proximity above typo"), and falls back to a BM25 base score for
// whatever the rule stack leaves tied.
//
// Grounded on pkg/resorank/scorer.go's Search/Score shape for the
// overall "build candidates, score, sort, paginate" flow, restructured
// so relevance ordering comes primarily from the GBRR bucket stack
// rather than a single flat score.
package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kittclouds/gokitt-search/internal/apperr"
	"github.com/kittclouds/gokitt-search/internal/docstore"
	"github.com/kittclouds/gokitt-search/internal/textindex"
	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/gbrr"
	"github.com/kittclouds/gokitt-search/pkg/ranking/proximity"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/typo"
)

// Engine executes single-index searches against a docstore.Store.
type Engine struct {
	Store             *docstore.Store
	ProximityWeight   uint16
	MaxTypoCandidates int
	Logger            *zap.Logger
}

// New creates an Engine with the given rule weight and logger.
func New(store *docstore.Store, proximityWeight uint16, logger *zap.Logger) *Engine {
	return &Engine{Store: store, ProximityWeight: proximityWeight, MaxTypoCandidates: 8, Logger: logger}
}

// SearchParams is one single-index search request (spec §6.1's
// per-query fields, minus federation).
type SearchParams struct {
	IndexUID         string
	Query            string
	Filter           string
	Facets           []string
	Sort             []string
	Limit            int
	Offset           int
	ShowRankingScore bool
}

// Hit is one ranked, already-paginated result.
type Hit struct {
	PrimaryKey string
	Fields     map[string]any
	RawScore   float64
}

// Search executes one single-index search end to end: parse, match,
// rank via the GBRR stack, score, paginate.
func (e *Engine) Search(ctx context.Context, p SearchParams) ([]Hit, int, error) {
	idx, ok := e.Store.Index(p.IndexUID)
	if !ok {
		return nil, 0, apperr.NewInvalidQuery(apperr.CodeIndexNotFound, "Index `"+p.IndexUID+"` not found")
	}
	if err := idx.ValidateFacets(p.Facets); err != nil {
		return nil, 0, err
	}
	if err := idx.ValidateSort(p.Sort); err != nil {
		return nil, 0, err
	}

	clauses := parseQuery(p.Query)
	if len(clauses) == 0 {
		return nil, 0, nil
	}
	queryGraph, queryWords := buildQueryGraph(clauses)

	universe, err := matchUniverse(ctx, idx.Text, clauses)
	if err != nil {
		return nil, 0, err
	}
	universe, err = idx.FilterUniverse(universe, p.Filter)
	if err != nil {
		return nil, 0, err
	}
	if universe.IsEmpty() {
		return nil, 0, nil
	}

	order, err := e.rank(ctx, idx.Text, queryGraph, universe, queryWords)
	if err != nil {
		return nil, 0, err
	}

	total := len(order)
	limit, offset := p.Limit, p.Offset
	if offset > len(order) {
		offset = len(order)
	}
	end := offset + limit
	if end > len(order) || limit < 0 {
		end = len(order)
	}

	hits := make([]Hit, 0, end-offset)
	for i := offset; i < end; i++ {
		docID := order[i]
		doc, ok := idx.Document(docID)
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			PrimaryKey: doc.PrimaryKey,
			Fields:     doc.Fields,
			RawScore:   1.0 / float64(1+i),
		})
	}
	return hits, total, nil
}

// matchUniverse returns every document matching at least one clause
// (disjunctive matching — conjunctive filtering is not this core's
// concern; ranking rules, not membership, are what spec §1 scopes
// this repo around).
func matchUniverse(ctx context.Context, text *textindex.Index, clauses []clause) (*docids.DocIdSet, error) {
	universe := docids.New()
	for _, c := range clauses {
		var d *docids.DocIdSet
		var err error
		switch c.kind {
		case phraseClause:
			d, err = text.PhraseDocIDs(ctx, textindex.Tokenize(c.text))
		default:
			d, err = text.WordDocIDs(ctx, c.text)
		}
		if err != nil {
			return nil, err
		}
		universe.UnionWith(d)
	}
	return universe, nil
}

// rank orders universe's documents by the GBRR rule stack (proximity
// outer, typo inner, spec §5), falling back to bm25Score as the final
// tie-break within whatever the rule stack leaves grouped together.
func (e *Engine) rank(ctx context.Context, text *textindex.Index, qg *querygraph.QueryGraph, universe *docids.DocIdSet, queryWords []string) ([]uint32, error) {
	if universe.Len() <= 1 {
		return universe.ToSlice(), nil
	}

	proximityRule := proximity.Rule{Source: text, Weight: e.ProximityWeight}
	proximityGroups, err := drainRule(ctx, gbrr.NewDriver(proximityRule), universe, qg)
	if err != nil {
		return nil, err
	}

	var order []uint32
	for _, g := range proximityGroups {
		sub, err := e.refineByTypo(ctx, text, g.query, g.docs)
		if err != nil {
			return nil, err
		}
		order = append(order, sub...)
	}
	return order, nil
}

// refineByTypo runs a typo GBRR instance inside one proximity bucket
// (spec §5: typo stacked beneath proximity), then BM25-sorts whatever
// tied groups remain.
func (e *Engine) refineByTypo(ctx context.Context, text *textindex.Index, qg *querygraph.QueryGraph, docs *docids.DocIdSet) ([]uint32, error) {
	if docs.Len() <= 1 {
		return docs.ToSlice(), nil
	}

	typoRule := typo.Rule{Source: text, MaxCandidatesPerTypo: e.MaxTypoCandidates}
	groups, err := drainRule(ctx, gbrr.NewDriver(typoRule), docs, qg)
	if err != nil {
		return nil, err
	}

	var words []string
	qg.ForEachNode(func(_ querygraph.NodeID, n *querygraph.QueryNode) {
		if n.Term != nil {
			words = append(words, n.Term.Words...)
		}
	})

	var order []uint32
	for _, g := range groups {
		order = append(order, bm25Sort(text, words, g.docs.ToSlice())...)
	}
	return order, nil
}

// bucketGroup is one bucket of documents plus the query graph the
// next stage should use, in emission order.
type bucketGroup struct {
	docs  *docids.DocIdSet
	query *querygraph.QueryGraph
}

// drainRule runs one GBRR Driver to exhaustion over universe, shrinking
// the working universe between calls the way the outer pipeline must
// (spec §4.9: "a shrinking universe may have emptied more edges" —
// next_bucket's own universe is re-supplied by the caller smaller each
// time so documents appear in exactly one bucket, spec §8 property 3).
func drainRule[C comparable](ctx context.Context, driver *gbrr.Driver[C], universe *docids.DocIdSet, qg *querygraph.QueryGraph) ([]bucketGroup, error) {
	if err := driver.StartIteration(ctx, universe, qg); err != nil {
		return nil, err
	}
	defer driver.EndIteration()

	remaining := universe.Clone()
	var groups []bucketGroup
	for remaining.Len() > 1 {
		b, exhausted, err := driver.NextBucket(ctx, remaining)
		if err != nil {
			return nil, err
		}
		if exhausted {
			break
		}
		if b.Docs.IsEmpty() {
			continue
		}
		groups = append(groups, bucketGroup{docs: b.Docs, query: b.NextQuery})
		remaining.SubtractFrom(b.Docs)
	}
	if remaining.Len() >= 1 {
		groups = append(groups, bucketGroup{docs: remaining, query: qg})
	}
	return groups, nil
}

func bm25Sort(text *textindex.Index, words []string, ids []uint32) []uint32 {
	sort.Slice(ids, func(i, j int) bool {
		si := bm25Score(text, words, ids[i])
		sj := bm25Score(text, words, ids[j])
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	return ids
}
