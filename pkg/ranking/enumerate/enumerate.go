// Package enumerate implements the path enumerator (spec C9):
// cheapest-first, depth-first traversal of a ranking rule graph that
// yields every condition-path from a node to End costing exactly a
// given budget, pruning branches the DistanceTable proves infeasible or
// the DeadEndsCache proves empty.
//
// Grounded on katalvlaran-lvlath's dfs package for the
// visit-with-backtrack recursion shape (a closure carrying mutable
// path state, unwound on return) and its use of a sentinel stop value
// to short-circuit traversal; no lvlath types are imported since the
// traversal here needs cost-budget and dead-end awareness lvlath's DFS
// has no concept of.
package enumerate

import (
	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/caches"
	"github.com/kittclouds/gokitt-search/pkg/ranking/distance"
	"github.com/kittclouds/gokitt-search/pkg/ranking/graphview"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// ControlFlow lets OnPath tell the enumerator whether to keep
// searching for further paths of the same cost or stop immediately
// (spec §4.8: enumeration can be cut short once a bucket has enough
// documents).
type ControlFlow int

const (
	Continue ControlFlow = iota
	Stop
)

// OnEdge is invoked once per edge traversed, before descending into it,
// for instrumentation (spec §6.2 log_state's edge-level counterpart).
type OnEdge func(condition *interner.ID, forbidden *bitmap.SmallBitmap)

// OnPath is invoked once a root-to-End path of the requested cost is
// found, with the ordered list of conditions it passed through (free
// edges contribute nothing to this list).
type OnPath func(conditions []interner.ID) ControlFlow

// VisitPathsOfCost enumerates every from-to-End path in g costing
// exactly cost, cheapest-edge-first at each branch (ascending edge ID,
// which ranking rules are expected to emit in ascending cost order),
// calling onPath for each. It stops as soon as onPath (or any nested
// call) returns Stop.
func VisitPathsOfCost(
	g graphview.Graph,
	table *distance.Table,
	deadEnds *caches.DeadEndsCache,
	from querygraph.NodeID,
	cost uint16,
	onEdge OnEdge,
	onPath OnPath,
) ControlFlow {
	end := g.QueryGraph().EndNode()

	var visit func(node querygraph.NodeID, remaining uint16, deadNode *caches.Node, prefix []interner.ID) ControlFlow
	visit = func(node querygraph.NodeID, remaining uint16, deadNode *caches.Node, prefix []interner.ID) ControlFlow {
		necessary := table.NecessaryFor(node, remaining)
		if necessary == nil {
			// No path from node to End costs exactly remaining: dead branch.
			return Continue
		}
		forbidden := deadEnds.Root().Forbidden()
		if deadNode != nil {
			forbidden = forbidden.Clone()
			forbidden.Union(deadNode.Forbidden())
		}
		if forbidden != nil && necessary.Intersects(forbidden) {
			return Continue
		}

		if node == end && remaining == 0 {
			return onPath(prefix)
		}

		result := Continue
		g.EdgesOfNode(node).ForEachUntil(func(eid int) bool {
			e := g.EdgeAt(interner.ID(eid))
			if e.Removed || e.Cost > remaining {
				return true
			}
			if e.Condition != nil && forbidden != nil && forbidden.Contains(int(*e.Condition)) {
				return true
			}

			nextDeadNode := deadNode
			if e.Condition != nil {
				nextDeadNode = deadEnds.Advance(deadNode, *e.Condition)
			}

			onEdge(e.Condition, forbidden)

			nextPrefix := prefix
			if e.Condition != nil {
				// A condition is not expected to recur within one path's
				// prefix — the dead-end cache keys on prefixes assuming
				// each condition id appears at most once along them (spec
				// §9 TODO, resolved as an assertion rather than a guess).
				for _, seen := range prefix {
					if seen == *e.Condition {
						panic("enumerate: condition repeats within a single path prefix")
					}
				}
				nextPrefix = append(append([]interner.ID{}, prefix...), *e.Condition)
			}

			if visit(e.Dest, remaining-e.Cost, nextDeadNode, nextPrefix) == Stop {
				result = Stop
				return false
			}
			return true
		})
		return result
	}

	return visit(from, cost, nil, nil)
}
