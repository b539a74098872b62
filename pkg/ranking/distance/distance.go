// Package distance computes a DistanceTable over a ranking rule graph
// (spec C8): for every node, the set of distinct costs at which End is
// still reachable, each paired with the conditions any path achieving
// that cost must pass through. The path enumerator consults it to skip
// nodes that cannot possibly complete at the remaining budget, the way
// reverse BFS from a target node prunes a search frontier.
//
// Grounded on katalvlaran-lvlath's bfs/dijkstra packages for the
// "process until every reachable node is settled, keyed by the
// distances already computed for its successors" shape and its
// complexity-annotated doc-comment style; implemented directly over
// graphview rather than importing lvlath; the graph here is a DAG with
// a "necessary condition set" notion lvlath has no equivalent for.
package distance

import (
	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/graphview"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// Entry is one reachable cost from a node to End, plus the conditions
// that every cost-achieving path must pass through (spec §4.7:
// intersected across all edges that tie for that cost).
type Entry struct {
	Cost      uint16
	Necessary *bitmap.SmallBitmap
}

// Table holds, for every node of a ranking rule graph, its sorted
// (by Cost ascending) list of Entries to End.
type Table struct {
	entries [][]Entry // indexed by querygraph.NodeID
}

// Compute builds the DistanceTable for g by a memoized reverse
// traversal from End (spec §4.7). g must be acyclic, which every
// ranking rule graph built by rankgraph.Build is by construction (edges
// only follow query-graph node order).
func Compute(g graphview.Graph) *Table {
	q := g.QueryGraph()
	capacity := g.NumConditions()
	t := &Table{entries: make([][]Entry, q.NumNodes())}

	visiting := make([]bool, q.NumNodes())
	done := make([]bool, q.NumNodes())

	var visit func(n querygraph.NodeID)
	visit = func(n querygraph.NodeID) {
		if done[n] || visiting[n] {
			return
		}
		visiting[n] = true

		if n == q.EndNode() {
			t.entries[n] = []Entry{{Cost: 0, Necessary: bitmap.New(capacity)}}
			visiting[n] = false
			done[n] = true
			return
		}

		byCost := make(map[uint16]*bitmap.SmallBitmap)
		var order []uint16

		g.EdgesOfNode(n).ForEach(func(eid int) {
			e := g.EdgeAt(interner.ID(eid))
			if e.Removed {
				return
			}
			visit(e.Dest)
			for _, de := range t.entries[e.Dest] {
				total := e.Cost + de.Cost
				necessary := de.Necessary.Clone()
				if e.Condition != nil {
					necessary.Insert(int(*e.Condition))
				}
				if existing, ok := byCost[total]; ok {
					existing.Intersect(necessary)
				} else {
					byCost[total] = necessary
					order = append(order, total)
				}
			}
		})

		sortUint16s(order)
		entries := make([]Entry, len(order))
		for i, c := range order {
			entries[i] = Entry{Cost: c, Necessary: byCost[c]}
		}
		t.entries[n] = entries

		visiting[n] = false
		done[n] = true
	}

	visit(q.Root())
	// Visit every node, not only those reachable forward from Root,
	// since a restricted query graph (spec §4.9 step 6) may still ask
	// for the distance of a node not on the current root-to-end path.
	for n := querygraph.NodeID(0); int(n) < q.NumNodes(); n++ {
		visit(n)
	}

	return t
}

// Entries returns the sorted-by-cost reachability entries for node n.
func (t *Table) Entries(n querygraph.NodeID) []Entry {
	return t.entries[n]
}

// NecessaryFor returns the necessary-condition set for reaching End
// from n at exactly cost, or nil if that cost is not achievable from n.
func (t *Table) NecessaryFor(n querygraph.NodeID, cost uint16) *bitmap.SmallBitmap {
	for _, e := range t.entries[n] {
		if e.Cost == cost {
			return e.Necessary
		}
	}
	return nil
}

func sortUint16s(s []uint16) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
