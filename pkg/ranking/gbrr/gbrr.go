// Package gbrr implements the Graph-Based Ranking Rule driver (spec
// C10): the state machine that turns a ranking rule graph, a distance
// table, and the path enumerator into the outer pipeline's
// start_iteration/next_bucket/end_iteration contract, producing
// successive document-ID buckets in non-decreasing cost order.
//
// Grounded directly on
// original_source/milli/src/search/new/graph_based_ranking_rule.rs —
// this is the one package where the reference implementation is the
// primary source of truth rather than the teacher repo, since the
// three behaviors spec §9 calls out as "preserve verbatim" (the
// partial dead-end backward scan, the past==latest short-circuit, and
// the duplicate-condition assumption) only make sense read against
// that source.
package gbrr

import (
	"context"
	"fmt"

	"github.com/kittclouds/gokitt-search/pkg/ranking/bitmap"
	"github.com/kittclouds/gokitt-search/pkg/ranking/caches"
	"github.com/kittclouds/gokitt-search/pkg/ranking/distance"
	"github.com/kittclouds/gokitt-search/pkg/ranking/docids"
	"github.com/kittclouds/gokitt-search/pkg/ranking/enumerate"
	"github.com/kittclouds/gokitt-search/pkg/ranking/interner"
	"github.com/kittclouds/gokitt-search/pkg/ranking/querygraph"
	"github.com/kittclouds/gokitt-search/pkg/ranking/rankgraph"
)

// Driver is a GBRR instance for one rule type, reusable across
// successive queries via StartIteration/EndIteration. It is not safe
// for concurrent use — each query owns its own Driver, per the
// exclusive-ownership model of caches and rule graphs (spec §5).
type Driver[C comparable] struct {
	rule  rankgraph.Rule[C]
	state *iteration[C]
}

type iteration[C comparable] struct {
	graph      *rankgraph.Graph[C]
	condCache  *caches.ConditionCache
	deadEnds   *caches.DeadEndsCache
	distances  *distance.Table
	curCostIdx int
}

// NewDriver creates an idle Driver for rule.
func NewDriver[C comparable](rule rankgraph.Rule[C]) *Driver[C] {
	return &Driver[C]{rule: rule}
}

// StartIteration transitions Idle -> Active: it builds the rule graph
// over q, prunes edges whose condition is already disjoint from
// universe, and computes the distance table (spec §4.9 start_iteration).
func (d *Driver[C]) StartIteration(ctx context.Context, universe *docids.DocIdSet, q *querygraph.QueryGraph) error {
	graph, err := rankgraph.Build(ctx, d.rule, q)
	if err != nil {
		return fmt.Errorf("gbrr: build rule graph: %w", err)
	}

	st := &iteration[C]{
		graph:    graph,
		deadEnds: caches.NewDeadEndsCache(graph.NumConditions()),
	}
	st.condCache = caches.NewConditionCache(func(ctx context.Context, id interner.ID) (*docids.DocIdSet, error) {
		return d.rule.ComputeDocIDs(ctx, graph.Condition(id), universe)
	})
	d.state = st

	if err := d.removeEmptyEdges(ctx, universe); err != nil {
		return err
	}
	st.distances = distance.Compute(graph)
	st.curCostIdx = 0
	return nil
}

// EndIteration transitions Active -> Idle, discarding all per-query
// caches and the rule graph.
func (d *Driver[C]) EndIteration() {
	d.state = nil
}

// removeEmptyEdges drops every edge whose condition's docids are
// disjoint from universe, forbidding the condition at the dead-end
// cache's root and evicting it from the condition cache (spec §4.9
// step: "a shrinking universe may have emptied more edges").
func (d *Driver[C]) removeEmptyEdges(ctx context.Context, universe *docids.DocIdSet) error {
	st := d.state
	g := st.graph
	seen := make(map[rankgraph.ConditionID]bool)
	for i := 0; i < g.NumEdges(); i++ {
		e := g.Edge(rankgraph.EdgeID(i))
		if e.Removed || e.Condition == nil {
			continue
		}
		cid := *e.Condition
		if seen[cid] {
			continue
		}
		seen[cid] = true

		dk, err := st.condCache.Get(ctx, cid)
		if err != nil {
			return fmt.Errorf("gbrr: resolve condition %d: %w", cid, err)
		}
		if dk.IsDisjoint(universe) {
			g.RemoveEdgesWithCondition(cid)
			st.deadEnds.ForbidCondition(cid)
			st.condCache.Evict(cid)
		}
	}
	return nil
}

// Bucket is one result of NextBucket: the documents found at this
// cost, and the query graph the next rule in the pipeline should use
// (spec §4.9 step 6).
type Bucket struct {
	Docs      *docids.DocIdSet
	NextQuery *querygraph.QueryGraph
}

// NextBucket advances to the next cost level and enumerates every path
// of that cost, folding their docids into one bucket (spec §4.9
// next_bucket). It returns (nil, true, nil) once every cost has been
// exhausted. Calling it with a universe of length ≤ 1, or before
// StartIteration, is a programmer error and panics.
func (d *Driver[C]) NextBucket(ctx context.Context, universe *docids.DocIdSet) (*Bucket, bool, error) {
	if d.state == nil {
		panic("gbrr: NextBucket called before StartIteration")
	}
	if universe.Len() <= 1 {
		panic("gbrr: NextBucket precondition violated: universe must contain more than one document")
	}

	st := d.state
	if err := d.removeEmptyEdges(ctx, universe); err != nil {
		return nil, false, err
	}

	root := st.graph.QueryGraph().Root()
	rootEntries := st.distances.Entries(root)
	if st.curCostIdx >= len(rootEntries) {
		return nil, true, nil
	}
	cost := rootEntries[st.curCostIdx].Cost
	st.curCostIdx++

	snapshot := st.graph.Clone()
	workingUniverse := universe.Clone()
	bucket := docids.New()
	var usedConditions []rankgraph.ConditionID

	var innerErr error
	enumerate.VisitPathsOfCost(st.graph, st.distances, st.deadEnds, root, cost,
		func(*interner.ID, *bitmap.SmallBitmap) {},
		func(path []interner.ID) enumerate.ControlFlow {
			conditions := make([]rankgraph.ConditionID, len(path))
			copy(conditions, path)

			pathDocs := workingUniverse.Clone()
			deadEnd := false
			for i, cid := range conditions {
				dk, err := st.condCache.Get(ctx, cid)
				if err != nil {
					innerErr = err
					return enumerate.Stop
				}
				if dk.IsDisjoint(workingUniverse) {
					st.deadEnds.ForbidCondition(cid)
					st.graph.RemoveEdgesWithCondition(cid)
					st.condCache.Evict(cid)
					deadEnd = true
					break
				}
				if pathDocs.IntersectionLen(dk) == 0 {
					markPartialDeadEnd(ctx, st, conditions, i, cid, dk)
					deadEnd = true
					break
				}
				pathDocs.IntersectWith(dk)
			}
			if deadEnd {
				return enumerate.Continue
			}

			bucket.UnionWith(pathDocs)
			usedConditions = append(usedConditions, conditions...)
			workingUniverse.SubtractFrom(pathDocs)
			if workingUniverse.IsEmpty() {
				return enumerate.Stop
			}
			return enumerate.Continue
		},
	)
	if innerErr != nil {
		return nil, false, innerErr
	}

	var nextQuery *querygraph.QueryGraph
	if bucket.Len() > 1 {
		nextQuery = restrictQueryGraph(snapshot, d.rule, usedConditions)
	} else {
		nextQuery = snapshot.QueryGraph()
	}

	return &Bucket{Docs: bucket, NextQuery: nextQuery}, false, nil
}

// markPartialDeadEnd replicates the reference implementation's pruning
// for a path whose accumulated intersection went empty partway
// through: forbid cid after the prefix that led to it, and after every
// earlier-visited condition whose own docids are disjoint from cid's
// (spec §9 design notes — preserved verbatim, including the
// short-circuit when an earlier condition equals cid and the known
// suboptimal "only pairwise, not n-wise" pruning).
func markPartialDeadEnd[C comparable](ctx context.Context, st *iteration[C], path []rankgraph.ConditionID, at int, cid rankgraph.ConditionID, dCid *docids.DocIdSet) {
	prefix := append([]interner.ID(nil), path[:at]...)
	st.deadEnds.ForbidConditionAfterPrefix(prefix, cid)

	for j := 0; j < at; j++ {
		past := path[j]
		if past == cid {
			// Reference short-circuit: a condition can't be disjoint from
			// itself, so nothing new would be recorded here anyway.
			continue
		}
		dPast, err := st.condCache.Get(ctx, past)
		if err != nil {
			continue
		}
		if dPast.IsDisjoint(dCid) {
			st.deadEnds.ForbidConditionAfterPrefix([]interner.ID{past}, cid)
		}
	}
}

// restrictQueryGraph narrows every term node of snapshot's query graph
// to only the word/phrase forms actually used by usedConditions,
// deleting nodes left with nothing (spec §4.9 step 6).
func restrictQueryGraph[C comparable](snapshot *rankgraph.Graph[C], rule rankgraph.Rule[C], usedConditions []rankgraph.ConditionID) *querygraph.QueryGraph {
	qg := snapshot.QueryGraph()

	usedWords := make(map[string]bool)
	usedPhrases := make(map[string]bool)
	seen := make(map[rankgraph.ConditionID]bool)
	for _, cid := range usedConditions {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		c := snapshot.Condition(cid)
		for _, w := range rule.WordsUsedByCondition(c) {
			usedWords[w] = true
		}
		for _, p := range rule.PhrasesUsedByCondition(c) {
			usedPhrases[phraseKey(p)] = true
		}
	}

	var toRemove []querygraph.NodeID
	for i := 0; i < qg.NumNodes(); i++ {
		id := querygraph.NodeID(i)
		n := qg.Node(id)
		if n.Kind != querygraph.Term || n.Term == nil {
			continue
		}
		restricted := restrictTerm(n.Term, usedWords, usedPhrases)
		if restricted.IsEmpty() {
			toRemove = append(toRemove, id)
		} else {
			*n.Term = restricted
		}
	}
	if len(toRemove) > 0 {
		qg.RemoveNodes(toRemove)
	}
	return qg
}

func restrictTerm(t *querygraph.TermData, words, phrases map[string]bool) querygraph.TermData {
	var out querygraph.TermData
	for _, w := range t.Words {
		if words[w] {
			out.Words = append(out.Words, w)
		}
	}
	for _, p := range t.Prefixes {
		if words[p] {
			out.Prefixes = append(out.Prefixes, p)
		}
	}
	for _, ph := range t.Phrases {
		if phrases[phraseKey(ph)] {
			out.Phrases = append(out.Phrases, ph)
		}
	}
	return out
}

func phraseKey(p []string) string {
	out := ""
	for i, w := range p {
		if i > 0 {
			out += "\x00"
		}
		out += w
	}
	return out
}
