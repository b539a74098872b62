package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/gokitt-search/internal/apperr"
)

func TestAddDocumentAndRetrieve(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"name"}, []string{"BOOST"}, nil)

	id := idx.AddDocument("d1", map[string]any{"name": "Batman", "BOOST": true})
	require.NotZero(t, id)

	doc, ok := idx.Document(id)
	require.True(t, ok, "expected document to be retrievable")
	assert.Equal(t, "d1", doc.PrimaryKey)
	assert.Equal(t, 1, idx.Count())

	got, err := idx.Text.WordDocIDs(context.Background(), "batman")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.True(t, got.Contains(id))
}

func TestIndexLookup(t *testing.T) {
	s := New()
	s.CreateIndex("test", nil, nil, nil)

	_, ok := s.Index("test")
	assert.True(t, ok)

	_, ok = s.Index("nested")
	assert.False(t, ok)
}

func TestFilterMatching(t *testing.T) {
	s := New()
	idx := s.CreateIndex("fruits", []string{"name"}, []string{"BOOST"}, nil)
	id1 := idx.AddDocument("red-delicious-boosted", map[string]any{"name": "red delicious apple", "BOOST": true})
	id2 := idx.AddDocument("red-apple-gala", map[string]any{"name": "red apple gala", "BOOST": false})

	clauses, err := ParseFilter("BOOST = true")
	require.NoError(t, err)

	doc1, _ := idx.Document(id1)
	ok1, err := idx.Matches(doc1, clauses)
	require.NoError(t, err)
	assert.True(t, ok1)

	doc2, _ := idx.Document(id2)
	ok2, err := idx.Matches(doc2, clauses)
	require.NoError(t, err)
	assert.False(t, ok2)
}

func TestFilterRejectsNonFilterableField(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"name"}, nil, nil)
	id := idx.AddDocument("d1", map[string]any{"name": "x"})
	doc, _ := idx.Document(id)

	clauses, err := ParseFilter("name = x")
	require.NoError(t, err)

	_, err = idx.Matches(doc, clauses)
	assert.Error(t, err)
}

func TestFilterUniverseNarrowsToMatches(t *testing.T) {
	s := New()
	idx := s.CreateIndex("fruits", []string{"name"}, []string{"BOOST"}, nil)
	id1 := idx.AddDocument("a", map[string]any{"name": "apple", "BOOST": true})
	id2 := idx.AddDocument("b", map[string]any{"name": "banana", "BOOST": false})

	universe, err := idx.Text.WordDocIDs(context.Background(), "apple")
	require.NoError(t, err)
	universe.Add(id2)

	filtered, err := idx.FilterUniverse(universe, "BOOST = true")
	require.NoError(t, err)
	assert.True(t, filtered.Contains(id1))
	assert.False(t, filtered.Contains(id2))
}

func TestValidateFacetsRejectsWhenIndexHasNoFilterableAttributes(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, nil, nil)

	err := idx.ValidateFacets([]string{"title"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidFacets, appErrCode(t, err))
	assert.Contains(t, err.Error(), "does not have configured filterable attributes")
}

func TestValidateFacetsRejectsUnknownAttribute(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, []string{"genre"}, nil)

	err := idx.ValidateFacets([]string{"title"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidFacets, appErrCode(t, err))
}

func TestValidateFacetsAllowsConfiguredAttribute(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, []string{"genre"}, nil)

	assert.NoError(t, idx.ValidateFacets([]string{"genre"}))
	assert.NoError(t, idx.ValidateFacets(nil))
}

func TestValidateSortRejectsWhenIndexHasNoSortableAttributes(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, nil, nil)

	err := idx.ValidateSort([]string{"doggos:desc"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidSort, appErrCode(t, err))
	assert.Contains(t, err.Error(), "Attribute `doggos` is not sortable")
	assert.Contains(t, err.Error(), "does not have configured sortable attributes")
}

func TestValidateSortRejectsUnknownAttribute(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, nil, []string{"price"})

	err := idx.ValidateSort([]string{"doggos:asc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attribute `doggos` is not sortable")
}

func TestValidateSortAllowsConfiguredAttribute(t *testing.T) {
	s := New()
	idx := s.CreateIndex("test", []string{"title"}, nil, []string{"price"})

	assert.NoError(t, idx.ValidateSort([]string{"price:desc"}))
	assert.NoError(t, idx.ValidateSort(nil))
}

func appErrCode(t *testing.T, err error) apperr.Code {
	t.Helper()
	appErr, ok := apperr.AsAppError(err)
	require.True(t, ok, "expected an *apperr.AppError, got %T", err)
	return appErr.Code
}
