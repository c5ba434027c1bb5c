// Package graph implements the flattened, per-base indexed representation
// of an input sequence graph (the "alignment graph" of the core aligner)
// and the all-pairs distance oracle built on top of it.
package graph

import (
	"errors"
	"fmt"
)

// NodeID is the external, caller-supplied node identifier. It is opaque to
// this package beyond equality and ordering as a map key.
type NodeID int64

// Column indexes a single base position in the flattened graph, including
// the two reserved sentinel columns that bracket the real ones.
type Column int32

// NodeIndex is the append-only, insertion-order position of a node.
// NodeIndex(0) is always the start sentinel.
type NodeIndex int32

// Sentinel errors returned while building a FlatGraph. These are mutation
// contract violations (§4.1), distinct from the alignment-time error
// kinds in package align.
var (
	// ErrGraphOverflow is returned by AddNode when appending the node's
	// bases would exceed the configured column maximum.
	ErrGraphOverflow = errors.New("graph: column index exceeds configured maximum")
	// ErrGraphFinalized is returned by any mutation attempted after Finalize.
	ErrGraphFinalized = errors.New("graph: mutation attempted after finalize")
	// ErrUnknownNode is returned by AddEdge, and by ColumnOf, when a
	// referenced node id was never added.
	ErrUnknownNode = errors.New("graph: unknown node id")
)

const neutralBase = 0 // sentinel base: matches nothing under iupac.Match

type nodeRecord struct {
	id         NodeID
	start, end Column
	reverse    bool
	in, out    []NodeIndex
	outOfOrder bool
}

// FlatGraph is a flattened, per-base indexed representation of a directed
// sequence graph: a single contiguous base string with O(1) column->node
// lookup and ordered adjacency. It is built via AddNode/AddEdge/Finalize,
// after which it is immutable.
type FlatGraph struct {
	bases      []byte
	nodeOf     []NodeIndex
	nodes      []nodeRecord
	lookup     map[NodeID]NodeIndex
	dummyStart NodeIndex
	dummyEnd   NodeIndex
	maxColumns int
	finalized  bool
}

// DefaultMaxColumns is used by New when maxColumns <= 0.
const DefaultMaxColumns = 1 << 30

// New creates an empty FlatGraph and appends the start sentinel node.
// maxColumns bounds the number of base columns AddNode lets the graph hold
// (the start sentinel included); the end sentinel that Finalize appends is
// not checked against it. Values <= 0 fall back to DefaultMaxColumns.
func New(maxColumns int) *FlatGraph {
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}
	g := &FlatGraph{
		lookup:     make(map[NodeID]NodeIndex),
		maxColumns: maxColumns,
	}
	g.dummyStart = g.appendSentinel()
	return g
}

func (g *FlatGraph) appendSentinel() NodeIndex {
	idx := NodeIndex(len(g.nodes))
	start := Column(len(g.bases))
	g.nodes = append(g.nodes, nodeRecord{
		id:    0,
		start: start,
		end:   start + 1,
	})
	g.bases = append(g.bases, neutralBase)
	g.nodeOf = append(g.nodeOf, idx)
	return idx
}

// AddNode appends a node carrying sequence. Duplicate ids are silently
// ignored, matching graphs produced by subgraph extraction that may
// re-add shared nodes. It fails with ErrGraphFinalized after Finalize,
// and with ErrGraphOverflow if appending sequence would exceed the
// configured maximum column count.
func (g *FlatGraph) AddNode(id NodeID, sequence string, reverse bool) error {
	if g.finalized {
		return ErrGraphFinalized
	}
	if _, exists := g.lookup[id]; exists {
		return nil
	}
	if len(g.bases)+len(sequence) > g.maxColumns {
		return ErrGraphOverflow
	}
	idx := NodeIndex(len(g.nodes))
	start := Column(len(g.bases))
	g.lookup[id] = idx
	g.nodes = append(g.nodes, nodeRecord{
		id:      id,
		start:   start,
		end:     start + Column(len(sequence)),
		reverse: reverse,
	})
	g.bases = append(g.bases, sequence...)
	for range sequence {
		g.nodeOf = append(g.nodeOf, idx)
	}
	return nil
}

// AddEdge records a directed edge between two previously added nodes.
// Duplicate edges are silently ignored. It sets outOfOrder(to) when from
// does not strictly precede to in insertion order (a back-edge).
func (g *FlatGraph) AddEdge(from, to NodeID) error {
	if g.finalized {
		return ErrGraphFinalized
	}
	fromIdx, ok := g.lookup[from]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownNode, from)
	}
	toIdx, ok := g.lookup[to]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownNode, to)
	}
	for _, existing := range g.nodes[toIdx].in {
		if existing == fromIdx {
			return nil
		}
	}
	g.nodes[toIdx].in = append(g.nodes[toIdx].in, fromIdx)
	g.nodes[fromIdx].out = append(g.nodes[fromIdx].out, toIdx)
	if fromIdx >= toIdx {
		g.nodes[toIdx].outOfOrder = true
	}
	return nil
}

// Finalize wires the start sentinel to every node with no real in-edge
// and the end sentinel to every node with no real out-edge (so a match
// can start or end at any such node for free, not just gap into it),
// appends the end sentinel, and forbids further mutation.
func (g *FlatGraph) Finalize() error {
	if g.finalized {
		return ErrGraphFinalized
	}
	for i := 1; i < len(g.nodes); i++ {
		n := NodeIndex(i)
		if len(g.nodes[n].in) == 0 {
			g.nodes[n].in = append(g.nodes[n].in, g.dummyStart)
			g.nodes[g.dummyStart].out = append(g.nodes[g.dummyStart].out, n)
		}
	}
	var sinks []NodeIndex
	for i := 1; i < len(g.nodes); i++ {
		n := NodeIndex(i)
		if len(g.nodes[n].out) == 0 {
			sinks = append(sinks, n)
		}
	}
	g.dummyEnd = g.appendSentinel()
	for _, n := range sinks {
		g.nodes[n].out = append(g.nodes[n].out, g.dummyEnd)
		g.nodes[g.dummyEnd].in = append(g.nodes[g.dummyEnd].in, n)
	}
	g.finalized = true
	return nil
}

// Finalized reports whether Finalize has been called.
func (g *FlatGraph) Finalized() bool { return g.finalized }

// NumColumns returns the total number of base columns, sentinels included.
func (g *FlatGraph) NumColumns() Column { return Column(len(g.bases)) }

// NumNodes returns the total number of nodes, sentinels included.
func (g *FlatGraph) NumNodes() int { return len(g.nodes) }

// DummyStart is the node index of the reserved start sentinel.
func (g *FlatGraph) DummyStart() NodeIndex { return g.dummyStart }

// DummyEnd is the node index of the reserved end sentinel.
func (g *FlatGraph) DummyEnd() NodeIndex { return g.dummyEnd }

// DummyStartColumn is the single column occupied by the start sentinel.
func (g *FlatGraph) DummyStartColumn() Column { return g.nodes[g.dummyStart].start }

// DummyEndColumn is the single column occupied by the end sentinel.
func (g *FlatGraph) DummyEndColumn() Column { return g.nodes[g.dummyEnd].start }

// NodeOf returns the node containing column w in O(1).
func (g *FlatGraph) NodeOf(w Column) NodeIndex { return g.nodeOf[w] }

// Start returns the first column of node n.
func (g *FlatGraph) Start(n NodeIndex) Column { return g.nodes[n].start }

// End returns the column one past the last column of node n.
func (g *FlatGraph) End(n NodeIndex) Column { return g.nodes[n].end }

// Len returns the number of columns occupied by node n.
func (g *FlatGraph) Len(n NodeIndex) Column { return g.nodes[n].end - g.nodes[n].start }

// ID returns the external identifier of node n (0 for the sentinels).
func (g *FlatGraph) ID(n NodeIndex) NodeID { return g.nodes[n].id }

// Reverse returns the orientation flag carried by node n.
func (g *FlatGraph) Reverse(n NodeIndex) bool { return g.nodes[n].reverse }

// OutOfOrder reports whether node n has an in-edge from a node that is not
// strictly earlier in insertion order (a back-edge target).
func (g *FlatGraph) OutOfOrder(n NodeIndex) bool { return g.nodes[n].outOfOrder }

// InNeighbours returns the ordered list of in-neighbour node indices.
func (g *FlatGraph) InNeighbours(n NodeIndex) []NodeIndex { return g.nodes[n].in }

// OutNeighbours returns the ordered list of out-neighbour node indices.
func (g *FlatGraph) OutNeighbours(n NodeIndex) []NodeIndex { return g.nodes[n].out }

// Base returns the base at column w.
func (g *FlatGraph) Base(w Column) byte { return g.bases[w] }

// ColumnOf translates an external (node id, within-node position) pair
// into a flat column, for resolving seed hits. It fails with
// ErrUnknownNode if the node id was never added.
func (g *FlatGraph) ColumnOf(id NodeID, nodePos int) (Column, error) {
	idx, ok := g.lookup[id]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	w := g.nodes[idx].start + Column(nodePos)
	if w < g.nodes[idx].start || w >= g.nodes[idx].end {
		return 0, fmt.Errorf("graph: node position %d out of range for node %v", nodePos, id)
	}
	return w, nil
}

// IsSentinel reports whether column w belongs to the start or end sentinel.
func (g *FlatGraph) IsSentinel(w Column) bool {
	n := g.nodeOf[w]
	return n == g.dummyStart || n == g.dummyEnd
}
