// Package caches implements the two per-iteration caches the path
// enumerator leans on to stay fast (spec C6/C7): a memoized
// condition-to-docids resolver and a dead-end prefix cache that prunes
// branches already proven empty. Both are keyed by bare interner.ID so
// they stay condition-type-agnostic (pkg/ranking/graphview does the
// same erasure for the graph side).
//
// The condition cache is grounded on pkg/qgram/candidates.go's
// getCandidatesForPattern, which memoizes an expensive posting-list
// lookup behind a map keyed by the query term. The dead-end cache is
// hand-rolled: none of the teacher's or the pack's trie libraries
// (derekparker/trie/v3) are keyed by integers, so a small
// map-of-children node is grown lazily instead.
package caches

import (
	"context"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
)

// ResolveFunc computes the raw (universe-restricted) doc-id set for a
// condition. Callers (pkg/ranking/gbrr) close over the owning
// rankgraph.Graph[C] and Rule[C] to supply this.
type ResolveFunc func(ctx context.Context, id interner.ID) (*docids.DocIdSet, error)

// ConditionCache memoizes ResolveFunc results for the lifetime of one
// GBRR iteration (spec §4.6: "resolved once per condition per bucket
// scope, not once per path").
type ConditionCache struct {
	resolve ResolveFunc
	cached  map[interner.ID]*docids.DocIdSet
}

// NewConditionCache creates an empty cache bound to resolve.
func NewConditionCache(resolve ResolveFunc) *ConditionCache {
	return &ConditionCache{resolve: resolve, cached: make(map[interner.ID]*docids.DocIdSet)}
}

// Get returns the doc-id set for id, computing and memoizing it on
// first access.
func (c *ConditionCache) Get(ctx context.Context, id interner.ID) (*docids.DocIdSet, error) {
	if d, ok := c.cached[id]; ok {
		return d, nil
	}
	d, err := c.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cached[id] = d
	return d, nil
}

// Evict drops a memoized entry, forcing recomputation on next Get
// (the GBRR driver evicts a condition once it has removed every edge
// carrying it).
func (c *ConditionCache) Evict(id interner.ID) {
	delete(c.cached, id)
}

// Len reports how many conditions have been resolved so far.
func (c *ConditionCache) Len() int { return len(c.cached) }
