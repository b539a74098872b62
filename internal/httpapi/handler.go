// Package httpapi is the HTTP surface spec §6.1 names: a single
// POST /multi-search endpoint that either runs a list of independent
// single-index searches or, when a "federation" object is present,
// merges them into one globally ranked list via pkg/federation.
//
// Grounded on 2lar-b2/backend/interfaces/http/rest's handler/router
// split (handlers.SearchHandler, rest.Router), adapted from that
// repo's mediator-driven query handling to this core's
// internal/pipeline.Engine.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kittclouds/gokitt-search/internal/apperr"
	"github.com/kittclouds/gokitt-search/internal/pipeline"
	"github.com/kittclouds/gokitt-search/pkg/federation"
)

// SearchHandler serves POST /multi-search.
type SearchHandler struct {
	Engine *pipeline.Engine
	Logger *zap.Logger
	// DefaultFederationLimit/Offset fill in an omitted federation.limit
	// or federation.offset (spec §6.1's defaults 20/0), sourced from
	// internal/config so a deployment can override them without a code
	// change.
	DefaultFederationLimit  int
	DefaultFederationOffset int
}

// NewSearchHandler creates a SearchHandler. defaultLimit/defaultOffset
// come from internal/config.Config.FederationDefaultLimit/Offset.
func NewSearchHandler(engine *pipeline.Engine, logger *zap.Logger, defaultLimit, defaultOffset int) *SearchHandler {
	return &SearchHandler{
		Engine:                  engine,
		Logger:                  logger,
		DefaultFederationLimit:  defaultLimit,
		DefaultFederationOffset: defaultOffset,
	}
}

// MultiSearch handles POST /multi-search.
func (h *SearchHandler) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var body multiSearchRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, apperr.CodeBadRequest, "malformed request body: "+err.Error())
		return
	}

	if body.Queries == nil {
		writeError(w, http.StatusBadRequest, apperr.CodeMissingField, "`queries` is required")
		return
	}

	for i, q := range body.Queries {
		if err := validateQuery(q); err != nil {
			writeQueryError(w, i, err)
			return
		}
	}

	if body.Federation != nil {
		h.federatedSearch(w, r, body)
		return
	}
	h.plainSearch(w, r, body)
}

func (h *SearchHandler) plainSearch(w http.ResponseWriter, r *http.Request, body multiSearchRequest) {
	results := make([]perQueryResult, len(body.Queries))
	for i, q := range body.Queries {
		hits, total, err := h.Engine.Search(r.Context(), pipeline.SearchParams{
			IndexUID:         q.IndexUID,
			Query:            q.Q,
			Filter:           q.Filter,
			Facets:           q.Facets,
			Sort:             q.Sort,
			Limit:            q.limit(),
			Offset:           q.offset(),
			ShowRankingScore: q.ShowRankingScore,
		})
		if err != nil {
			h.logError(i, err)
			writeQueryError(w, i, err)
			return
		}
		results[i] = perQueryResult{
			IndexUID:           q.IndexUID,
			Hits:               toHitMaps(hits, q.ShowRankingScore),
			EstimatedTotalHits: total,
			Limit:              q.limit(),
			Offset:             q.offset(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *SearchHandler) federatedSearch(w http.ResponseWriter, r *http.Request, body multiSearchRequest) {
	descriptors := make([]federation.QueryDescriptor, len(body.Queries))
	for i, q := range body.Queries {
		descriptors[i] = federation.QueryDescriptor{
			IndexUID:         q.IndexUID,
			Query:            q.Q,
			Filter:           q.Filter,
			Facets:           q.Facets,
			Sort:             q.Sort,
			Limit:            q.limit(),
			Offset:           q.offset(),
			Weight:           q.weight(),
			ShowRankingScore: q.ShowRankingScore,
		}
	}

	merger := federation.Merger{Searcher: &pipeline.FederatedSearcher{Engine: h.Engine}}
	result, err := merger.Run(r.Context(), descriptors,
		body.Federation.limit(h.DefaultFederationLimit), body.Federation.offset(h.DefaultFederationOffset))
	if err != nil {
		writeSearchError(w, err)
		return
	}

	hits := make([]map[string]any, len(result.Hits))
	for i, hit := range result.Hits {
		m := make(map[string]any, len(hit.Fields)+2)
		for k, v := range hit.Fields {
			m[k] = v
		}
		m["primaryKey"] = hit.PrimaryKey
		m["_federation"] = map[string]any{
			"indexUid":             hit.Federation.IndexUID,
			"sourceQuery":          hit.Federation.SourceQuery,
			"weightedRankingScore": hit.Federation.WeightedRankingScore,
		}
		if hit.RankingScore != nil {
			m["_rankingScore"] = *hit.RankingScore
		}
		hits[i] = m
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hits":               hits,
		"limit":              result.Limit,
		"offset":             result.Offset,
		"estimatedTotalHits": result.EstimatedTotalHits,
	})
}

func toHitMaps(hits []pipeline.Hit, showRankingScore bool) []map[string]any {
	out := make([]map[string]any, len(hits))
	for i, h := range hits {
		m := make(map[string]any, len(h.Fields)+2)
		for k, v := range h.Fields {
			m[k] = v
		}
		m["primaryKey"] = h.PrimaryKey
		if showRankingScore {
			m["_rankingScore"] = h.RawScore
		}
		out[i] = m
	}
	return out
}

func (h *SearchHandler) logError(queryIndex int, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.Error(fmt.Sprintf("query %d failed", queryIndex), zap.Error(err))
}
