package graph

import (
	"errors"
	"testing"
)

func straightGraph(t *testing.T) *FlatGraph {
	t.Helper()
	g := New(0)
	if err := g.AddNode(1, "ACGT", false); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func TestAddNodeDuplicateIgnored(t *testing.T) {
	g := New(0)
	if err := g.AddNode(1, "ACGT", false); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(1, "TTTT", false); err != nil {
		t.Fatalf("AddNode duplicate: %v", err)
	}
	if g.NumNodes() != 2 { // start sentinel + node 1
		t.Fatalf("expected duplicate add to be ignored, got %d nodes", g.NumNodes())
	}
}

func TestAddEdgeDuplicateIgnoredAndUnknownFails(t *testing.T) {
	g := New(0)
	_ = g.AddNode(1, "AC", false)
	_ = g.AddNode(2, "GT", false)
	if err := g.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge duplicate: %v", err)
	}
	idx, _ := g.lookup[2], true
	_ = idx
	if err := g.AddEdge(1, 99); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestFinalizeThenMutateFails(t *testing.T) {
	g := straightGraph(t)
	if err := g.AddNode(2, "A", false); !errors.Is(err, ErrGraphFinalized) {
		t.Fatalf("expected ErrGraphFinalized, got %v", err)
	}
	if err := g.AddEdge(1, 1); !errors.Is(err, ErrGraphFinalized) {
		t.Fatalf("expected ErrGraphFinalized, got %v", err)
	}
	if err := g.Finalize(); !errors.Is(err, ErrGraphFinalized) {
		t.Fatalf("expected ErrGraphFinalized, got %v", err)
	}
}

func TestOverflow(t *testing.T) {
	g := New(3)
	if err := g.AddNode(1, "ACGT", false); !errors.Is(err, ErrGraphOverflow) {
		t.Fatalf("expected ErrGraphOverflow, got %v", err)
	}
}

func TestOutOfOrderOnBackEdge(t *testing.T) {
	g := New(0)
	_ = g.AddNode(1, "AC", false)
	_ = g.AddNode(2, "GT", false)
	_ = g.AddEdge(1, 2)
	_ = g.AddEdge(2, 1)
	_ = g.Finalize()

	idx1 := g.lookup[1]
	idx2 := g.lookup[2]
	if !g.OutOfOrder(idx1) {
		t.Errorf("expected node 1 to be out of order (in-edge from node 2)")
	}
	if g.OutOfOrder(idx2) {
		t.Errorf("expected node 2 to be in order")
	}
}

func TestNodeOfAndColumnOf(t *testing.T) {
	g := straightGraph(t)
	idx := g.lookup[1]
	start := g.Start(idx)
	for w := start; w < g.End(idx); w++ {
		if g.NodeOf(w) != idx {
			t.Errorf("NodeOf(%d) = %d, want %d", w, g.NodeOf(w), idx)
		}
	}
	col, err := g.ColumnOf(1, 2)
	if err != nil {
		t.Fatalf("ColumnOf: %v", err)
	}
	if g.Base(col) != 'G' {
		t.Errorf("Base(%d) = %q, want 'G'", col, g.Base(col))
	}
}

func TestSentinelsBracketColumns(t *testing.T) {
	g := straightGraph(t)
	if !g.IsSentinel(g.DummyStartColumn()) {
		t.Errorf("expected start column to be a sentinel")
	}
	if !g.IsSentinel(g.DummyEndColumn()) {
		t.Errorf("expected end column to be a sentinel")
	}
	idx := g.lookup[1]
	if g.IsSentinel(g.Start(idx)) {
		t.Errorf("real node column flagged as sentinel")
	}
}
