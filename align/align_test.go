package align

import (
	"context"
	"testing"

	"github.com/exascience/graphalign/graph"
)

func defaultConfig() Config {
	return Config{
		InitialBandwidth: 4,
		RampBandwidth:    8,
		DynamicRowStart:  0,
		MaxCellsPerSlice: 1 << 20,
	}
}

func buildGraph(t *testing.T, nodes map[graph.NodeID]string, edges [][2]graph.NodeID) (*graph.FlatGraph, *graph.DistanceOracle) {
	t.Helper()
	g := graph.New(0)
	for id, seq := range nodes {
		if err := g.AddNode(id, seq, false); err != nil {
			t.Fatalf("AddNode(%v): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%v,%v): %v", e[0], e[1], err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g, graph.BuildDistanceOracle(g)
}

func TestStraightMatch(t *testing.T) {
	g, o := buildGraph(t, map[graph.NodeID]string{1: "ACGT"}, nil)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 4 {
		t.Errorf("score = %d, want 4", res.Record.Score)
	}
	if len(res.Record.Path) != 1 || res.Record.Path[0].NodeID != 1 {
		t.Errorf("path = %+v, want [{1 ...}]", res.Record.Path)
	}
}

func TestSingleSNP(t *testing.T) {
	g, o := buildGraph(t, map[graph.NodeID]string{1: "ACGT"}, nil)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACCT", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 2 {
		t.Errorf("score = %d, want 2", res.Record.Score)
	}
	if len(res.Record.Path) != 1 || res.Record.Path[0].NodeID != 1 {
		t.Errorf("path = %+v, want [{1 ...}]", res.Record.Path)
	}
}

func TestBranchSelection(t *testing.T) {
	g, o := buildGraph(t,
		map[graph.NodeID]string{1: "AC", 2: "GT", 3: "GG"},
		[][2]graph.NodeID{{1, 2}, {1, 3}},
	)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 4 {
		t.Errorf("score = %d, want 4", res.Record.Score)
	}
	wantIDs := []graph.NodeID{1, 2}
	if len(res.Record.Path) != len(wantIDs) {
		t.Fatalf("path = %+v, want ids %v", res.Record.Path, wantIDs)
	}
	for i, id := range wantIDs {
		if res.Record.Path[i].NodeID != id {
			t.Errorf("path[%d].NodeID = %v, want %v", i, res.Record.Path[i].NodeID, id)
		}
	}
}

func TestBackEdgeCycle(t *testing.T) {
	g, o := buildGraph(t,
		map[graph.NodeID]string{1: "AC", 2: "GT"},
		[][2]graph.NodeID{{1, 2}, {2, 1}},
	)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACGTAC", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 6 {
		t.Errorf("score = %d, want 6", res.Record.Score)
	}
	wantIDs := []graph.NodeID{1, 2, 1}
	if len(res.Record.Path) != len(wantIDs) {
		t.Fatalf("path = %+v, want ids %v", res.Record.Path, wantIDs)
	}
	for i, id := range wantIDs {
		if res.Record.Path[i].NodeID != id {
			t.Errorf("path[%d].NodeID = %v, want %v", i, res.Record.Path[i].NodeID, id)
		}
	}
}

func TestGapOnQuery(t *testing.T) {
	g, o := buildGraph(t, map[graph.NodeID]string{1: "ACGTAC"}, nil)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACTAC", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 4 {
		t.Errorf("score = %d, want 4", res.Record.Score)
	}
	if len(res.Record.Path) != 1 || res.Record.Path[0].NodeID != 1 {
		t.Errorf("path = %+v, want [{1 ...}]", res.Record.Path)
	}
}

func TestSeededSkipOfPrefix(t *testing.T) {
	g, o := buildGraph(t,
		map[graph.NodeID]string{1: "AAAA", 2: "CGT"},
		[][2]graph.NodeID{{1, 2}},
	)
	cfg := defaultConfig()
	cfg.InitialBandwidth = 1
	cfg.DynamicRowStart = 1000 // disable dynamic banding: rely solely on the seed-expanded static band
	seeds := []SeedHit{{QueryPosition: 0, NodeID: 2, NodePosition: 0}}
	res, err := AlignOneWay(context.Background(), g, o, "r", "CGT", seeds, cfg)
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if res.Empty {
		t.Fatalf("expected a non-empty alignment")
	}
	if res.Record.Score != 3 {
		t.Errorf("score = %d, want 3", res.Record.Score)
	}
	if len(res.Record.Path) != 1 || res.Record.Path[0].NodeID != 2 {
		t.Errorf("path = %+v, want [{2 ...}]", res.Record.Path)
	}
}

func TestEmptyQuery(t *testing.T) {
	g, o := buildGraph(t, map[graph.NodeID]string{1: "ACGT"}, nil)
	res, err := AlignOneWay(context.Background(), g, o, "r", "", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if !res.Empty {
		t.Fatalf("expected EmptyAlignment for an empty query")
	}
}

func TestSentinelOnlyGraph(t *testing.T) {
	g := graph.New(0)
	if err := g.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	o := graph.BuildDistanceOracle(g)
	res, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", nil, defaultConfig())
	if err != nil {
		t.Fatalf("AlignOneWay: %v", err)
	}
	if !res.Empty {
		t.Fatalf("expected EmptyAlignment for a sentinel-only graph")
	}
}

func TestUnknownSeedNode(t *testing.T) {
	g, o := buildGraph(t, map[graph.NodeID]string{1: "ACGT"}, nil)
	seeds := []SeedHit{{QueryPosition: 0, NodeID: 99, NodePosition: 0}}
	_, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", seeds, defaultConfig())
	if err == nil {
		t.Fatalf("expected ErrUnknownSeedNode")
	}
}

func TestWiderBandNeverScoresLower(t *testing.T) {
	g, o := buildGraph(t,
		map[graph.NodeID]string{1: "AC", 2: "GT", 3: "GG"},
		[][2]graph.NodeID{{1, 2}, {1, 3}},
	)
	cfgNarrow := defaultConfig()
	cfgNarrow.InitialBandwidth = 1
	cfgNarrow.RampBandwidth = 1
	cfgWide := defaultConfig()
	cfgWide.InitialBandwidth = 4
	cfgWide.RampBandwidth = 4

	narrow, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", nil, cfgNarrow)
	if err != nil {
		t.Fatalf("narrow AlignOneWay: %v", err)
	}
	wide, err := AlignOneWay(context.Background(), g, o, "r", "ACGT", nil, cfgWide)
	if err != nil {
		t.Fatalf("wide AlignOneWay: %v", err)
	}
	if narrow.Empty || wide.Empty {
		t.Fatalf("expected both to produce a record")
	}
	if wide.Record.Score < narrow.Record.Score {
		t.Errorf("wider band scored lower: narrow=%d wide=%d", narrow.Record.Score, wide.Record.Score)
	}
}
