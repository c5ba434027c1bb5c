package graph

import "testing"

func buildBranchGraph(t *testing.T) *FlatGraph {
	t.Helper()
	g := New(0)
	_ = g.AddNode(1, "AC", false)
	_ = g.AddNode(2, "GT", false)
	_ = g.AddNode(3, "GG", false)
	_ = g.AddEdge(1, 2)
	_ = g.AddEdge(1, 3)
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func buildCycleGraph(t *testing.T) *FlatGraph {
	t.Helper()
	g := New(0)
	_ = g.AddNode(1, "AC", false)
	_ = g.AddNode(2, "GT", false)
	_ = g.AddEdge(1, 2)
	_ = g.AddEdge(2, 1)
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func TestDistanceWithinStraightNode(t *testing.T) {
	g := straightGraph(t)
	o := BuildDistanceOracle(g)
	idx := g.lookup[1]
	start := g.Start(idx)
	if d := o.Distance(start, start+3); d != 3 {
		t.Errorf("Distance within node = %d, want 3", d)
	}
	if d := o.Distance(start, start); d != 0 {
		t.Errorf("self distance = %d, want 0", d)
	}
}

func TestDistanceSentinelsAreOne(t *testing.T) {
	g := straightGraph(t)
	o := BuildDistanceOracle(g)
	idx := g.lookup[1]
	if d := o.Distance(g.DummyStartColumn(), g.Start(idx)); d != 1 {
		t.Errorf("distance from start sentinel = %d, want 1", d)
	}
	if d := o.Distance(g.End(idx)-1, g.DummyEndColumn()); d != 1 {
		t.Errorf("distance to end sentinel = %d, want 1", d)
	}
}

func TestDistanceAcrossBranch(t *testing.T) {
	g := buildBranchGraph(t)
	o := BuildDistanceOracle(g)
	n1, n2 := g.lookup[1], g.lookup[2]
	d := o.Distance(g.Start(n1), g.Start(n2))
	if d != 2 {
		t.Errorf("Distance(node1 start, node2 start) = %d, want 2", d)
	}
}

func TestDistanceBackJumpUsesSelfCycle(t *testing.T) {
	g := buildCycleGraph(t)
	o := BuildDistanceOracle(g)
	n1 := g.lookup[1]
	start := g.Start(n1)
	// distance from the second base of node 1 back to the first base of
	// node 1 must go all the way around the cycle (1->2->1), not be
	// negative or zero.
	d := o.Distance(start+1, start)
	if d <= 0 {
		t.Errorf("back-jump distance = %d, want > 0", d)
	}
}

func TestTriangleInequality(t *testing.T) {
	g := buildBranchGraph(t)
	o := BuildDistanceOracle(g)
	cols := []Column{}
	for w := Column(0); w < g.NumColumns(); w++ {
		cols = append(cols, w)
	}
	for _, a := range cols {
		for _, b := range cols {
			for _, c := range cols {
				if o.Distance(a, b) > o.Distance(a, c)+o.Distance(c, b) {
					t.Errorf("triangle inequality violated for (%d,%d,%d)", a, b, c)
				}
			}
		}
	}
}
