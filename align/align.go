// Package align implements the banded dynamic-programming engine that
// aligns a nucleotide query to a directed sequence graph under an
// affine-gap scoring model: band construction, the M/Q/R DP kernel,
// backtrace, and alignment-record emission.
package align

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/exascience/graphalign/graph"
)

// Config enumerates the tunable behaviour of one alignment invocation
// (§6 "Configuration").
type Config struct {
	// InitialBandwidth is the lateral expansion radius tried first.
	InitialBandwidth int
	// RampBandwidth is retried once if the initial attempt fails with
	// ErrBandCollapsed. It must be >= InitialBandwidth to have any effect.
	RampBandwidth int
	// DynamicRowStart is the row at which static banding hands over to
	// dynamic banding; 0 disables static banding (dynamic from row 1).
	DynamicRowStart int
	// MaxCellsPerSlice bounds how many live cells are filled between
	// cooperative cancellation checks.
	MaxCellsPerSlice int
	// SloppyOptimisations, if true, omits the slow out-of-order R
	// recurrence, applying the fast recurrence everywhere instead. This
	// may lose optimality on highly cyclic graphs but never produces an
	// invalid path.
	SloppyOptimisations bool
	// Debug enables the numeric-headroom assertions of §4.4.
	Debug bool
}

// SeedHit anchors a query position to a graph position before alignment
// begins (§6 "Seed input").
type SeedHit struct {
	QueryPosition int
	NodeID        graph.NodeID
	NodePosition  int
}

// Mapping is one node visited by an alignment path, in path order.
type Mapping struct {
	NodeID  graph.NodeID
	Reverse bool
	Rank    int
}

// AlignmentRecord is a completed, non-empty alignment (§6).
type AlignmentRecord struct {
	Name                string
	Score               Score
	Sequence            string
	Path                []Mapping
	MaxDistanceFromBand int32
	// RunID tags this invocation for log correlation across a caller's
	// diagnostics; it plays no part in scoring or path selection.
	RunID uuid.UUID
}

// AlignmentResult is the outcome of AlignOneWay when it does not fail:
// either a populated Record, or Empty if the best trace consisted
// solely of sentinel columns (§7 "EmptyAlignment").
type AlignmentResult struct {
	Record AlignmentRecord
	Empty  bool
}

// AlignOneWay aligns query against g, optionally anchored by seeds,
// returning the highest-scoring path under cfg (§6). It never panics on
// malformed input; internal invariant breaches panic as programmer
// errors per §7.
func AlignOneWay(ctx context.Context, g *graph.FlatGraph, oracle *graph.DistanceOracle, name, query string, seeds []SeedHit, cfg Config) (AlignmentResult, error) {
	if query == "" {
		return AlignmentResult{Empty: true}, nil
	}
	if g.NumNodes() <= 2 { // only the two sentinels, no real nodes
		return AlignmentResult{Empty: true}, nil
	}

	seedPositions := make([]MatrixPosition, 0, len(seeds))
	for _, s := range seeds {
		w, err := g.ColumnOf(s.NodeID, s.NodePosition)
		if err != nil {
			if errors.Is(err, graph.ErrUnknownNode) {
				return AlignmentResult{}, fmt.Errorf("%w: %v", ErrUnknownSeedNode, s.NodeID)
			}
			return AlignmentResult{}, err
		}
		// A seed says query[queryPosition] matches this graph position; in
		// matrix coordinates that match lands one row after the position
		// consumed, i.e. at row queryPosition+1 (§3 "DP state per row").
		seedPositions = append(seedPositions, MatrixPosition{W: w, J: s.QueryPosition + 1})
	}

	numRows := len(query) + 1

	attempt := func(bandwidth int) (*dpResult, error) {
		band := newBand(numRows, g)
		if len(seedPositions) > 0 {
			band = BuildStaticBand(g, seedPositions, bandwidth, numRows)
		}
		if cfg.DynamicRowStart > 0 {
			SeedExpandoPrefill(g, band, bandwidth, cfg.DynamicRowStart)
		}
		opts := dpOptions{
			sloppyOptimisations: cfg.SloppyOptimisations,
			debug:               cfg.Debug,
			dynamicRowStart:     cfg.DynamicRowStart,
			dynamicBandwidth:    bandwidth,
			maxCellsPerSlice:    cfg.MaxCellsPerSlice,
		}
		return runDP(ctx, g, oracle, query, band, opts)
	}

	result, err := attempt(cfg.InitialBandwidth)
	if errors.Is(err, ErrBandCollapsed) && cfg.RampBandwidth > cfg.InitialBandwidth {
		result, err = attempt(cfg.RampBandwidth)
	}
	if err != nil {
		return AlignmentResult{}, err
	}

	if g.IsSentinel(result.bestFinalCell.W) {
		return AlignmentResult{Empty: true}, nil
	}

	record := emitAlignment(g, result.trace, oracle, result.rowMaxColumn, result.bestFinalCell, name, query, result.bestFinalScore)
	if len(record.Path) == 0 {
		return AlignmentResult{Empty: true}, nil
	}
	record.RunID = uuid.New()
	return AlignmentResult{Record: record}, nil
}
