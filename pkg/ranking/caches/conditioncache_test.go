package caches

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
)

func TestConditionCacheMemoizes(t *testing.T) {
	calls := 0
	resolve := func(_ context.Context, id interner.ID) (*docids.DocIdSet, error) {
		calls++
		return docids.FromSlice([]uint32{uint32(id)}), nil
	}
	c := NewConditionCache(resolve)

	d1, err := c.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	d2, err := c.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if calls != 1 {
		t.Errorf("resolve called %d times, want 1 (memoized)", calls)
	}
	if d1 != d2 {
		t.Errorf("expected the same cached set returned on second Get")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestConditionCacheEvict(t *testing.T) {
	calls := 0
	resolve := func(_ context.Context, id interner.ID) (*docids.DocIdSet, error) {
		calls++
		return docids.New(), nil
	}
	c := NewConditionCache(resolve)
	c.Get(context.Background(), 1)
	c.Evict(1)
	c.Get(context.Background(), 1)
	if calls != 2 {
		t.Errorf("resolve called %d times after evict, want 2", calls)
	}
}
