// Command graphalign is a thin demonstration harness for the banded
// graph-aligner core: it builds a small in-memory sequence graph from
// flag-supplied node/edge literals, aligns one query against it, and
// prints the resulting path and score. It is not a GFA reader or a
// production alignment pipeline; real graph and read input belong to a
// caller that imports package align directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/exascience/graphalign/align"
	"github.com/exascience/graphalign/graph"
)

// nodeFlag collects repeated -node id:sequence arguments.
type nodeFlag struct {
	ids  []graph.NodeID
	seqs []string
}

func (n *nodeFlag) String() string { return "" }

func (n *nodeFlag) Set(s string) error {
	id, seq, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("-node must be id:sequence, got %q", s)
	}
	idNum, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("-node id %q: %w", id, err)
	}
	n.ids = append(n.ids, graph.NodeID(idNum))
	n.seqs = append(n.seqs, seq)
	return nil
}

// edgeFlag collects repeated -edge from:to arguments.
type edgeFlag struct {
	from, to []graph.NodeID
}

func (e *edgeFlag) String() string { return "" }

func (e *edgeFlag) Set(s string) error {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("-edge must be from:to, got %q", s)
	}
	fromNum, err := strconv.ParseInt(from, 10, 64)
	if err != nil {
		return fmt.Errorf("-edge from %q: %w", from, err)
	}
	toNum, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("-edge to %q: %w", to, err)
	}
	e.from = append(e.from, graph.NodeID(fromNum))
	e.to = append(e.to, graph.NodeID(toNum))
	return nil
}

func main() {
	var nodes nodeFlag
	var edges edgeFlag
	flag.Var(&nodes, "node", "id:sequence, repeatable")
	flag.Var(&edges, "edge", "from:to, repeatable")
	query := flag.String("query", "", "query sequence to align")
	bandwidth := flag.Int("bandwidth", 8, "initial lateral band radius")
	flag.Parse()

	if *query == "" {
		log.Fatal("graphalign: -query is required")
	}

	g := graph.New(0)
	for i, id := range nodes.ids {
		if err := g.AddNode(id, nodes.seqs[i], false); err != nil {
			log.Fatalf("graphalign: AddNode(%v): %v", id, err)
		}
	}
	for i, from := range edges.from {
		if err := g.AddEdge(from, edges.to[i]); err != nil {
			log.Fatalf("graphalign: AddEdge(%v,%v): %v", from, edges.to[i], err)
		}
	}
	if err := g.Finalize(); err != nil {
		log.Fatalf("graphalign: Finalize: %v", err)
	}

	oracle := graph.BuildDistanceOracle(g)
	cfg := align.Config{
		InitialBandwidth: *bandwidth,
		RampBandwidth:    *bandwidth * 4,
		DynamicRowStart:  0,
		MaxCellsPerSlice: 1 << 20,
	}

	result, err := align.AlignOneWay(context.Background(), g, oracle, "query", *query, nil, cfg)
	if err != nil {
		log.Fatalf("graphalign: AlignOneWay: %v", err)
	}
	if result.Empty {
		fmt.Println("no alignment")
		return
	}

	rec := result.Record
	fmt.Printf("score: %d\nrun: %s\npath:", rec.Score, rec.RunID)
	for _, m := range rec.Path {
		fmt.Printf(" %d", m.NodeID)
	}
	fmt.Println()
}
