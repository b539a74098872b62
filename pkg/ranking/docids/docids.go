// Package docids implements DocIdSet, a sparse compressed set of document
// IDs (spec C3). It wraps github.com/RoaringBitmap/roaring/v2, the same
// SIMD-friendly bitmap library the teacher's pkg/qgram/posting_list.go
// reaches for once posting lists grow past a cache-friendly slice.
package docids

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// DocIdSet is a compressed set of document IDs. The zero value is not
// usable; construct with New or FromSlice.
type DocIdSet struct {
	bm *roaring.Bitmap
}

// New returns an empty DocIdSet.
func New() *DocIdSet {
	return &DocIdSet{bm: roaring.New()}
}

// FromSlice builds a DocIdSet containing exactly the given document IDs.
func FromSlice(ids []uint32) *DocIdSet {
	return &DocIdSet{bm: roaring.BitmapOf(ids...)}
}

// Add inserts a single document ID.
func (d *DocIdSet) Add(id uint32) {
	d.bm.Add(id)
}

// Len returns the number of document IDs in the set.
func (d *DocIdSet) Len() int {
	return int(d.bm.GetCardinality())
}

// IsEmpty reports whether the set has no document IDs.
func (d *DocIdSet) IsEmpty() bool {
	return d.bm.IsEmpty()
}

// Contains reports whether id is a member of the set.
func (d *DocIdSet) Contains(id uint32) bool {
	return d.bm.Contains(id)
}

// Clone returns an independent copy of d.
func (d *DocIdSet) Clone() *DocIdSet {
	return &DocIdSet{bm: d.bm.Clone()}
}

// UnionWith mutates d into the union of d and other.
func (d *DocIdSet) UnionWith(other *DocIdSet) {
	d.bm.Or(other.bm)
}

// IntersectWith mutates d into the intersection of d and other.
func (d *DocIdSet) IntersectWith(other *DocIdSet) {
	d.bm.And(other.bm)
}

// SubtractFrom mutates d by removing every document ID also present in
// other.
func (d *DocIdSet) SubtractFrom(other *DocIdSet) {
	d.bm.AndNot(other.bm)
}

// IntersectionLen returns the size of the intersection of d and other
// without mutating either set.
func (d *DocIdSet) IntersectionLen(other *DocIdSet) int {
	return int(d.bm.AndCardinality(other.bm))
}

// IsDisjoint reports whether d and other share no document ID.
func (d *DocIdSet) IsDisjoint(other *DocIdSet) bool {
	return !d.bm.Intersects(other.bm)
}

// ToSlice returns the document IDs in ascending order.
func (d *DocIdSet) ToSlice() []uint32 {
	return d.bm.ToArray()
}

// Iterator returns an iterator over the set's document IDs in ascending
// order.
func (d *DocIdSet) Iterator() roaring.IntPeekable {
	return d.bm.Iterator()
}

// Union returns a new DocIdSet holding the union of a and b, without
// mutating either.
func Union(a, b *DocIdSet) *DocIdSet {
	return &DocIdSet{bm: roaring.Or(a.bm, b.bm)}
}

// Intersection returns a new DocIdSet holding the intersection of a and
// b, without mutating either.
func Intersection(a, b *DocIdSet) *DocIdSet {
	return &DocIdSet{bm: roaring.And(a.bm, b.bm)}
}
