// Package rankgraph implements the ranking rule graph (spec C5): a
// multi-graph overlay on the query graph where edges carry a cost and an
// optional interned condition. Edge generation is delegated to a
// pluggable Rule, the Go expression of milli's RankingRuleGraphTrait
// (original_source/milli/src/search/new/graph_based_ranking_rule.rs).
//
// Grounded on pkg/graph/graph.go's adjacency-list shape, with edges held
// in a MappedInterner (pkg/ranking/interner) rather than pointer-chased
// structs, and per-node outgoing-edge sets as SmallBitmaps
// (pkg/ranking/bitmap) per spec §4.4/§9 (avoid per-edge heap allocation).
package rankgraph

import (
	"context"

	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/graphview"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
)

// EdgeID indexes an edge within a RankingRuleGraph's edge store.
type EdgeID = interner.ID

// ConditionID indexes an interned condition.
type ConditionID = interner.ID

// Edge is one edge of the ranking rule graph (spec §3).
type Edge struct {
	Source    querygraph.NodeID
	Dest      querygraph.NodeID
	Cost      uint16
	Condition *ConditionID // nil denotes a free, zero-information transition
	Removed   bool         // tombstoned by RemoveEdgesWithCondition
}

// EdgeSpec is what a Rule contributes for one (source, dest) node pair:
// one entry per feasible (cost, condition) combination (spec §4.4).
type EdgeSpec[C comparable] struct {
	Cost      uint16
	Condition *C // nil means a free transition
}

// Logger is a minimal structured debug sink, satisfied directly by
// *zap.SugaredLogger. Rule has no LogState method, and no code in this
// module writes through a Logger.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
}

// Rule is the pluggable edge-generation strategy a RankingRuleGraph is
// built from (spec §6.2). C is the rule's own condition type (e.g. a
// proximity or typo fact) and must be comparable so it can be interned.
type Rule[C comparable] interface {
	// BuildEdges returns every feasible (cost, condition) edge between
	// one term node and an adjacent one. src/dst are nil for Start/End.
	BuildEdges(ctx context.Context, src, dst *querygraph.TermData) ([]EdgeSpec[C], error)

	// WordsUsedByCondition returns the surface-form words a condition
	// depends on, used to restrict term nodes after a bucket (spec §4.9
	// step 6).
	WordsUsedByCondition(c C) []string

	// PhrasesUsedByCondition returns the surface-form phrases a
	// condition depends on.
	PhrasesUsedByCondition(c C) [][]string

	// ComputeDocIDs resolves a condition's raw posting list, already
	// restricted to universe.
	ComputeDocIDs(ctx context.Context, c C, universe *docids.DocIdSet) (*docids.DocIdSet, error)
}

// Graph is a RankingRuleGraph over a query graph, parameterized by the
// rule's condition type.
type Graph[C comparable] struct {
	Query       *querygraph.QueryGraph
	edges       *interner.MappedInterner[Edge]
	conditions  *interner.Interner[C]
	edgesOfNode []*bitmap.SmallBitmap // indexed by querygraph.NodeID
}

// Build constructs a Graph by calling rule.BuildEdges for every adjacent
// pair of non-Deleted nodes in q, in query-graph node-ID order (spec
// §4.3 tie-break: iteration order is ID order).
func Build[C comparable](ctx context.Context, rule Rule[C], q *querygraph.QueryGraph) (*Graph[C], error) {
	g := &Graph[C]{
		Query:      q,
		edges:      interner.NewMapped[Edge](),
		conditions: interner.New[C](),
	}

	type pending struct {
		src, dst querygraph.NodeID
		spec     EdgeSpec[C]
	}
	var all []pending

	for src := querygraph.NodeID(0); int(src) < q.NumNodes(); src++ {
		n := q.Node(src)
		if n.Kind == querygraph.Deleted {
			continue
		}
		for _, dst := range n.Successors {
			dn := q.Node(dst)
			if dn.Kind == querygraph.Deleted {
				continue
			}
			specs, err := rule.BuildEdges(ctx, n.Term, dn.Term)
			if err != nil {
				return nil, err
			}
			for _, spec := range specs {
				all = append(all, pending{src: src, dst: dst, spec: spec})
			}
		}
	}

	g.edgesOfNode = make([]*bitmap.SmallBitmap, q.NumNodes())
	// Capacity is fixed once total edge count is known; edges never grow
	// after Build (RemoveEdgesWithCondition only tombstones in place).
	capacity := len(all)
	for i := range g.edgesOfNode {
		g.edgesOfNode[i] = bitmap.New(capacity)
	}

	for _, p := range all {
		var cond *ConditionID
		if p.spec.Condition != nil {
			id := g.conditions.Insert(*p.spec.Condition)
			cond = &id
		}
		edgeID := g.edges.Push(Edge{Source: p.src, Dest: p.dst, Cost: p.spec.Cost, Condition: cond})
		g.edgesOfNode[p.src].Insert(int(edgeID))
	}

	return g, nil
}

// Edge returns the edge stored at id.
func (g *Graph[C]) Edge(id EdgeID) Edge { return g.edges.Get(id) }

// QueryGraph returns the underlying query graph, satisfying
// graphview.Graph.
func (g *Graph[C]) QueryGraph() *querygraph.QueryGraph { return g.Query }

// EdgeAt returns a condition-type-erased view of the edge at id,
// satisfying graphview.Graph.
func (g *Graph[C]) EdgeAt(id EdgeID) graphview.Edge {
	e := g.edges.Get(id)
	return graphview.Edge{Source: e.Source, Dest: e.Dest, Cost: e.Cost, Condition: e.Condition, Removed: e.Removed}
}

// NumEdges returns the total number of edge slots, including removed
// ones.
func (g *Graph[C]) NumEdges() int { return g.edges.Len() }

// EdgesOfNode returns the bitmap of outgoing edge IDs for node n.
func (g *Graph[C]) EdgesOfNode(n querygraph.NodeID) *bitmap.SmallBitmap {
	return g.edgesOfNode[n]
}

// Condition returns the interned condition value for id.
func (g *Graph[C]) Condition(id ConditionID) C {
	return g.conditions.Get(id)
}

// NumConditions returns how many distinct conditions have been interned.
func (g *Graph[C]) NumConditions() int { return g.conditions.Len() }

// RemoveEdgesWithCondition nullifies every edge carrying condition c
// (spec §4.4).
func (g *Graph[C]) RemoveEdgesWithCondition(c ConditionID) {
	g.edges.All(func(id EdgeID, e Edge) bool {
		if e.Condition != nil && *e.Condition == c && !e.Removed {
			e.Removed = true
			g.edges.Set(id, e)
			g.edgesOfNode[e.Source].Remove(int(id))
		}
		return true
	})
}

// Clone returns a structurally-independent copy cheap enough to take
// before mutating the graph for one bucket (spec §9: cheap clone via
// compact ID tables, not deep copies of interned conditions). The
// conditions interner is shared (read-only after Build); edges and
// edgesOfNode are copied since RemoveEdgesWithCondition mutates them.
func (g *Graph[C]) Clone() *Graph[C] {
	out := &Graph[C]{
		Query:       g.Query.Clone(),
		edges:       interner.NewMapped[Edge](),
		conditions:  g.conditions,
		edgesOfNode: make([]*bitmap.SmallBitmap, len(g.edgesOfNode)),
	}
	g.edges.All(func(id EdgeID, e Edge) bool {
		out.edges.Push(e)
		return true
	})
	for i, bm := range g.edgesOfNode {
		out.edgesOfNode[i] = bm.Clone()
	}
	return out
}
