package pipeline

import (
	"context"

	"github.com/kittclouds/gokitt-search/pkg/federation"
)

// FederatedSearcher adapts Engine to federation.SingleIndexSearcher so
// the federated merger (pkg/federation) can drive it without depending
// on internal/pipeline directly.
type FederatedSearcher struct {
	Engine *Engine
}

// Search implements federation.SingleIndexSearcher.
func (f *FederatedSearcher) Search(ctx context.Context, q federation.QueryDescriptor) ([]federation.Hit, int, error) {
	hits, total, err := f.Engine.Search(ctx, SearchParams{
		IndexUID:         q.IndexUID,
		Query:            q.Query,
		Filter:           q.Filter,
		Facets:           q.Facets,
		Sort:             q.Sort,
		Limit:            q.Limit,
		Offset:           q.Offset,
		ShowRankingScore: q.ShowRankingScore,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]federation.Hit, len(hits))
	for i, h := range hits {
		out[i] = federation.Hit{
			PrimaryKey: h.PrimaryKey,
			Fields:     h.Fields,
			RawScore:   h.RawScore,
			QueryRank:  i,
		}
	}
	return out, total, nil
}
