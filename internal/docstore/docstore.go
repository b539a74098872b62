// Package docstore is the in-memory, multi-index document store spec
// §1 treats as an external collaborator ("document storage and
// indexing" is out of scope for the ranking core's design, but
// federation needs several independently searchable indexes to exist
// at all, spec §6.1/§8 S6/S7).
//
// Adapted from internal/store/memstore.go's map-backed CRUD pattern
// (mutex-guarded maps, Upsert/Get/Count naming), repurposed from a
// single note/entity
// store into map[indexUID]*Index so federation's "indexUid" dimension
// has something real behind it.
package docstore

import (
	"sync"

	"github.com/kittclouds/gokitt-search/internal/textindex"
)

// Document is one document stored and indexed under an Index.
type Document struct {
	ID         uint32
	PrimaryKey string
	Fields     map[string]any
}

// Index is one named, independently searchable index (spec §6.1's
// "indexUid").
type Index struct {
	UID        string
	Searchable []string
	Filterable map[string]bool
	Sortable   map[string]bool

	mu        sync.RWMutex
	Text      *textindex.Index
	documents map[uint32]*Document
	byKey     map[string]uint32
	nextID    uint32
}

// Store holds every index known to the server, keyed by UID.
type Store struct {
	mu      sync.RWMutex
	indexes map[string]*Index
}

// New creates an empty Store.
func New() *Store {
	return &Store{indexes: make(map[string]*Index)}
}

// CreateIndex registers a new index. searchable names the fields
// AddDocument should tokenize; filterable names the fields Filter
// expressions (and facet requests) may reference; sortable names the
// fields a query's "sort" parameter may reference.
func (s *Store) CreateIndex(uid string, searchable []string, filterable []string, sortable []string) *Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	filterSet := make(map[string]bool, len(filterable))
	for _, f := range filterable {
		filterSet[f] = true
	}
	sortSet := make(map[string]bool, len(sortable))
	for _, f := range sortable {
		sortSet[f] = true
	}
	idx := &Index{
		UID:        uid,
		Searchable: searchable,
		Filterable: filterSet,
		Sortable:   sortSet,
		Text:       textindex.New(),
		documents:  make(map[uint32]*Document),
		byKey:      make(map[string]uint32),
		nextID:     1,
	}
	s.indexes[uid] = idx
	return idx
}

// Index returns the index registered under uid, if any.
func (s *Store) Index(uid string) (*Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[uid]
	return idx, ok
}

// AddDocument assigns primaryKey a dense document ID, indexes its
// Searchable fields for full-text search, and stores every field
// (including non-searchable ones, e.g. filterable booleans) for
// retrieval and filtering.
func (idx *Index) AddDocument(primaryKey string, fields map[string]any) uint32 {
	idx.mu.Lock()
	id := idx.nextID
	idx.nextID++
	idx.byKey[primaryKey] = id
	idx.documents[id] = &Document{ID: id, PrimaryKey: primaryKey, Fields: fields}
	idx.mu.Unlock()

	searchText := make(map[string]string, len(idx.Searchable))
	for _, field := range idx.Searchable {
		if v, ok := fields[field]; ok {
			if s, ok := v.(string); ok {
				searchText[field] = s
			}
		}
	}
	idx.Text.AddDocument(id, searchText)
	return id
}

// Document returns the document stored under docID, if any. The
// returned Fields map is the caller's to read but not to mutate.
func (idx *Index) Document(docID uint32) (*Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.documents[docID]
	return d, ok
}

// AllDocIDs returns every document ID currently stored, for building
// the initial search universe.
func (idx *Index) AllDocIDs() []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]uint32, 0, len(idx.documents))
	for id := range idx.documents {
		out = append(out, id)
	}
	return out
}

// Count returns the number of documents stored in the index.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.documents)
}
