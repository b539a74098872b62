// Package querygraph implements the query graph (spec C4): a DAG over
// query terms with a single Start and a single End node. It is grounded on
// the teacher's pkg/graph/graph.go adjacency-list pattern (map/slice of
// nodes, explicit successor/predecessor lists), narrowed from an arbitrary
// labeled multigraph down to the Start/End DAG this ranking core needs.
package querygraph

// NodeKind distinguishes the four kinds of query node (spec §3).
type NodeKind int

const (
	// Start is the unique node with no predecessors.
	Start NodeKind = iota
	// End is the unique node with no successors.
	End
	// Deleted marks a node pruned by Simplify/RemoveNodes; it is no
	// longer part of the logical graph but its slot is retained so
	// existing NodeIDs stay valid.
	Deleted
	// Term holds a TermData describing the allowed surface forms for
	// this position in the query.
	Term
)

// NodeID indexes a node within a QueryGraph.
type NodeID int

// TermData describes the surface forms a Term node may resolve to: exact
// words, prefixes, and multi-word phrases (spec §3: "Terms map ... to a
// set of allowed surface forms").
type TermData struct {
	Words    []string
	Prefixes []string
	Phrases  [][]string
}

// IsEmpty reports whether the term has no remaining surface forms left to
// match — the condition under which GBRR deletes the node (spec §4.9
// step 6).
func (t *TermData) IsEmpty() bool {
	return t == nil || (len(t.Words) == 0 && len(t.Prefixes) == 0 && len(t.Phrases) == 0)
}

// QueryNode is one node of the query graph.
type QueryNode struct {
	Kind         NodeKind
	Term         *TermData
	Successors   []NodeID
	Predecessors []NodeID
}

// QueryGraph is a DAG over query terms with a unique Start and End node
// (spec §3). Invariants: exactly one Start, exactly one End, no cycles,
// every non-Deleted node is reachable from Start and reaches End.
type QueryGraph struct {
	nodes []*QueryNode
	root  NodeID
	end   NodeID
}

// New creates a QueryGraph already containing a Start and an End node
// connected by a single edge, ready to have term nodes spliced in with
// InsertTermChain.
func New() *QueryGraph {
	g := &QueryGraph{
		nodes: []*QueryNode{
			{Kind: Start},
			{Kind: End},
		},
		root: 0,
		end:  1,
	}
	g.connect(0, 1)
	return g
}

// Root returns the Start node's ID.
func (g *QueryGraph) Root() NodeID { return g.root }

// EndNode returns the End node's ID.
func (g *QueryGraph) EndNode() NodeID { return g.end }

// Node returns the node at id.
func (g *QueryGraph) Node(id NodeID) *QueryNode { return g.nodes[id] }

// NumNodes returns the total number of node slots, including Deleted
// ones.
func (g *QueryGraph) NumNodes() int { return len(g.nodes) }

// ForEachNode visits every node in ID order (spec §4.3 tie-break rule).
func (g *QueryGraph) ForEachNode(fn func(NodeID, *QueryNode)) {
	for i, n := range g.nodes {
		fn(NodeID(i), n)
	}
}

func (g *QueryGraph) addNode(n *QueryNode) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return id
}

func (g *QueryGraph) connect(from, to NodeID) {
	fn := g.nodes[from]
	if !containsID(fn.Successors, to) {
		fn.Successors = append(fn.Successors, to)
	}
	tn := g.nodes[to]
	if !containsID(tn.Predecessors, from) {
		tn.Predecessors = append(tn.Predecessors, from)
	}
}

func (g *QueryGraph) disconnect(from, to NodeID) {
	fn := g.nodes[from]
	fn.Successors = removeID(fn.Successors, to)
	tn := g.nodes[to]
	tn.Predecessors = removeID(tn.Predecessors, from)
}

// InsertTermChain splices a linear chain of term nodes between Start and
// End, replacing the direct Start->End edge if this is the first chain
// inserted. Queries are built one term position at a time by the outer
// pipeline (out of scope here); this is the common case the pipeline
// drives — a straight-line sequence of terms, one per query word.
func (g *QueryGraph) InsertTermChain(terms []TermData) []NodeID {
	if len(terms) == 0 {
		return nil
	}
	g.disconnect(g.root, g.end)

	ids := make([]NodeID, len(terms))
	prev := g.root
	for i := range terms {
		t := terms[i]
		id := g.addNode(&QueryNode{Kind: Term, Term: &t})
		g.connect(prev, id)
		ids[i] = id
		prev = id
	}
	g.connect(prev, g.end)
	return ids
}

func containsID(ids []NodeID, target NodeID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func removeID(ids []NodeID, target NodeID) []NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Simplify removes every node currently marked Deleted, reconnecting each
// one's predecessors directly to its successors so the graph stays a
// connected Start->End DAG (spec §4.3). It is idempotent: nodes that are
// already bridged (no dangling edges left) are left alone.
func (g *QueryGraph) Simplify() {
	for id, n := range g.nodes {
		if n.Kind == Deleted && (len(n.Predecessors) > 0 || len(n.Successors) > 0) {
			g.bridge(NodeID(id))
		}
	}
}

// RemoveNodes marks the given nodes Deleted and restitches the graph so
// it remains a Start->End DAG (spec §4.3 remove_nodes). Start and End
// themselves must never be passed here.
func (g *QueryGraph) RemoveNodes(ids []NodeID) {
	for _, id := range ids {
		n := g.nodes[id]
		n.Kind = Deleted
		n.Term = nil
	}
	for _, id := range ids {
		g.bridge(id)
	}
}

// bridge reconnects id's predecessors to its successors and clears its
// own edges, without changing its Kind (the caller has already set it to
// Deleted).
func (g *QueryGraph) bridge(id NodeID) {
	n := g.nodes[id]
	preds := n.Predecessors
	succs := n.Successors
	for _, p := range preds {
		g.disconnect(p, id)
	}
	for _, s := range succs {
		g.disconnect(id, s)
	}
	for _, p := range preds {
		for _, s := range succs {
			g.connect(p, s)
		}
	}
}

// Clone returns a deep copy of the graph, safe to mutate independently.
// The GBRR driver snapshots the query graph before restricting terms for
// the next bucket (spec §4.9 step 6), so this needs to be cheap relative
// to a full search but does not need to share storage — query graphs are
// small (one node per query term).
func (g *QueryGraph) Clone() *QueryGraph {
	out := &QueryGraph{root: g.root, end: g.end, nodes: make([]*QueryNode, len(g.nodes))}
	for i, n := range g.nodes {
		var term *TermData
		if n.Term != nil {
			cp := *n.Term
			cp.Words = append([]string(nil), n.Term.Words...)
			cp.Prefixes = append([]string(nil), n.Term.Prefixes...)
			cp.Phrases = append([][]string(nil), n.Term.Phrases...)
			term = &cp
		}
		out.nodes[i] = &QueryNode{
			Kind:         n.Kind,
			Term:         term,
			Successors:   append([]NodeID(nil), n.Successors...),
			Predecessors: append([]NodeID(nil), n.Predecessors...),
		}
	}
	return out
}
