package align

import "github.com/exascience/graphalign/graph"

// diagnosticPrefixRows is the small prefix of rows excluded from the
// max-band-displacement diagnostic (§4.5): early rows are close to the
// seed and not informative about drift.
const diagnosticPrefixRows = 3

// emitAlignment walks the backtrace from start and converts the column
// trace into a node-granular alignment record (§4.6).
func emitAlignment(fg *graph.FlatGraph, trace *dpBacktrace, oracle *graph.DistanceOracle, rowMaxColumn []graph.Column, start cellRef, name, query string, score Score) AlignmentRecord {
	walked := trace.walk(start, fg.DummyStartColumn())
	for i, k := 0, len(walked)-1; i < k; i, k = i+1, k-1 {
		walked[i], walked[k] = walked[k], walked[i]
	}

	var path []Mapping
	var maxDist int32
	lastNode := graph.NodeIndex(-1)
	rank := 0
	for _, cell := range walked {
		// Row 0 is the dense free-start baseline (§3), not a visited
		// position, even on a column that happens to belong to a real
		// node; only rows >= 1 represent an actual consumed query base.
		if cell.J == 0 || fg.IsSentinel(cell.W) {
			continue
		}
		if cell.J >= diagnosticPrefixRows {
			if d := oracle.BandDistance(cell.W, rowMaxColumn[cell.J]); d > maxDist {
				maxDist = d
			}
		}
		node := fg.NodeOf(cell.W)
		if node == lastNode {
			continue
		}
		path = append(path, Mapping{NodeID: fg.ID(node), Reverse: fg.Reverse(node), Rank: rank})
		rank++
		lastNode = node
	}

	return AlignmentRecord{
		Name:                name,
		Score:               score,
		Sequence:            query,
		Path:                path,
		MaxDistanceFromBand: maxDist,
	}
}
