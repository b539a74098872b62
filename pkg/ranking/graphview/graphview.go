// Package graphview is the narrow, condition-type-erased view of a
// rankgraph.Graph[C] that distance and enumerate need. Keeping it
// condition-agnostic (everything keyed by interner.ID) lets those two
// packages stay non-generic, the way pkg/graph's traversal helpers in
// the teacher operate on plain node/edge IDs rather than payload types.
package graphview

import (
	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// Edge is a condition-type-erased view of a ranking rule graph edge.
type Edge struct {
	Source    querygraph.NodeID
	Dest      querygraph.NodeID
	Cost      uint16
	Condition *interner.ID
	Removed   bool
}

// Graph is what distance and enumerate need from a rankgraph.Graph[C],
// with C erased down to bare condition IDs.
type Graph interface {
	QueryGraph() *querygraph.QueryGraph
	EdgesOfNode(n querygraph.NodeID) *bitmap.SmallBitmap
	EdgeAt(id interner.ID) Edge
	NumConditions() int
}
