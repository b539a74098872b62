package caches

import (
	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
)

// Node is one position in the dead-end prefix tree: the set of
// conditions known to be forbidden immediately after the path prefix
// that reached this node, plus the children reached by extending that
// prefix with one more condition.
type Node struct {
	forbidden *bitmap.SmallBitmap
	children  map[interner.ID]*Node
}

// Forbidden returns the conditions forbidden at n. A nil node (no
// dead-end has ever been recorded at this depth) has no forbidden
// conditions.
func (n *Node) Forbidden() *bitmap.SmallBitmap {
	if n == nil {
		return nil
	}
	return n.forbidden
}

func newNode(capacity int) *Node {
	return &Node{forbidden: bitmap.New(capacity), children: make(map[interner.ID]*Node)}
}

// DeadEndsCache records, per path prefix, which conditions are known to
// lead nowhere (spec C7): taking them can never complete a path of the
// cost being enumerated. The path enumerator consults it before
// descending into an edge and grows it when a branch proves empty.
type DeadEndsCache struct {
	root     *Node
	capacity int
}

// NewDeadEndsCache creates an empty cache. capacity must be at least
// the number of conditions interned in the ranking rule graph being
// enumerated, since forbidden sets are SmallBitmaps over condition IDs.
func NewDeadEndsCache(capacity int) *DeadEndsCache {
	return &DeadEndsCache{root: newNode(capacity), capacity: capacity}
}

// Root returns the cache's root node (the empty prefix).
func (d *DeadEndsCache) Root() *Node { return d.root }

// ForbidCondition marks c as a dead end from the empty prefix onward:
// no path should ever take an edge carrying c, regardless of what
// preceded it (spec §4.8: unconditional dead end).
func (d *DeadEndsCache) ForbidCondition(c interner.ID) {
	d.root.forbidden.Insert(int(c))
}

// ForbidConditionAfterPrefix marks c as a dead end specifically after
// having taken prefix (spec §4.8: conditional dead end), creating
// intermediate nodes as needed.
func (d *DeadEndsCache) ForbidConditionAfterPrefix(prefix []interner.ID, c interner.ID) {
	node := d.root
	for _, p := range prefix {
		child, ok := node.children[p]
		if !ok {
			child = newNode(d.capacity)
			node.children[p] = child
		}
		node = child
	}
	node.forbidden.Insert(int(c))
}

// Advance follows one more condition from node (nil meaning the root)
// and returns the child reached, or nil if no dead end has ever been
// recorded at that deeper prefix. A nil result is not an error: the
// caller treats it as "nothing forbidden beyond the root's set" and
// keeps enumerating.
func (d *DeadEndsCache) Advance(node *Node, c interner.ID) *Node {
	if node == nil {
		node = d.root
	}
	return node.children[c]
}
