// Package interner assigns small dense integer IDs to values so the
// ranking core can index them into bitmaps and slices instead of hashing
// on every lookup.
package interner

// ID is a dense identifier in [0, N) assigned by an Interner.
type ID uint32

// Interner assigns each distinct value of K a dense ID in [0, Len()), in
// first-seen order. It never reuses or recycles an ID once assigned.
type Interner[K comparable] struct {
	ids    map[K]ID
	values []K
}

// New creates an empty Interner.
func New[K comparable]() *Interner[K] {
	return &Interner[K]{ids: make(map[K]ID)}
}

// Insert returns the ID for key, assigning a new one if key hasn't been
// seen before.
func (in *Interner[K]) Insert(key K) ID {
	if id, ok := in.ids[key]; ok {
		return id
	}
	id := ID(len(in.values))
	in.ids[key] = id
	in.values = append(in.values, key)
	return id
}

// Lookup returns the ID for key and whether it was found, without
// inserting it.
func (in *Interner[K]) Lookup(key K) (ID, bool) {
	id, ok := in.ids[key]
	return id, ok
}

// Get returns the value interned at id. Panics if id is out of range.
func (in *Interner[K]) Get(id ID) K {
	return in.values[id]
}

// Len returns the number of distinct values interned so far.
func (in *Interner[K]) Len() int {
	return len(in.values)
}

// MappedInterner pairs an Interner's key space with a parallel slice of
// values of a different type V, indexed by the same dense ID. This is how
// the ranking rule graph stores Edge values against a ConditionID-style
// key space (spec C5: "edges_store: MappedInterner<Edge>").
type MappedInterner[V any] struct {
	values []V
}

// NewMapped creates an empty MappedInterner.
func NewMapped[V any]() *MappedInterner[V] {
	return &MappedInterner[V]{}
}

// Push appends a value and returns the ID it was stored under.
func (m *MappedInterner[V]) Push(v V) ID {
	id := ID(len(m.values))
	m.values = append(m.values, v)
	return id
}

// Get returns the value stored at id.
func (m *MappedInterner[V]) Get(id ID) V {
	return m.values[id]
}

// Set overwrites the value stored at id.
func (m *MappedInterner[V]) Set(id ID, v V) {
	m.values[id] = v
}

// Len returns the number of values stored.
func (m *MappedInterner[V]) Len() int {
	return len(m.values)
}

// All iterates every (ID, value) pair in ID order.
func (m *MappedInterner[V]) All(fn func(ID, V) bool) {
	for i, v := range m.values {
		if !fn(ID(i), v) {
			return
		}
	}
}
