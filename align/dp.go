package align

import (
	"context"
	"log"

	"github.com/exascience/graphalign/graph"
	"github.com/exascience/graphalign/iupac"
)

// rowBuffers holds one row's M, Q and R vectors, dense over every graph
// column. Two instances are swapped row to row (§9 "row-by-row state");
// touched records exactly the columns written during the row currently
// held, so the next fill into this buffer can reset only those columns
// instead of the whole vector.
type rowBuffers struct {
	M, Q, R []Score
	touched []int32
}

func newRowBuffers(numColumns int) *rowBuffers {
	b := &rowBuffers{
		M: make([]Score, numColumns),
		Q: make([]Score, numColumns),
		R: make([]Score, numColumns),
	}
	for w := range b.M {
		b.M[w] = negInf
		b.Q[w] = negInf
		b.R[w] = negInf
	}
	return b
}

func (b *rowBuffers) reset() {
	for _, w := range b.touched {
		b.M[w] = negInf
		b.Q[w] = negInf
		b.R[w] = negInf
	}
	b.touched = b.touched[:0]
}

func (b *rowBuffers) touch(w graph.Column) {
	b.touched = append(b.touched, int32(w))
}

// dpOptions selects the behavioural switches the DP kernel itself needs;
// the rest of Config (§6) governs the caller's retry loop, not the
// kernel. dynamicRowStart <= 0 means dynamic banding applies from row 1
// onward (static banding is skipped, per §6 "0 disables static");
// dynamicRowStart >= the number of rows disables dynamic banding
// entirely.
type dpOptions struct {
	sloppyOptimisations bool
	debug               bool
	dynamicRowStart     int
	dynamicBandwidth    int
	maxCellsPerSlice    int
}

// dpResult carries what the backtrace (backtrace.go) and the alignment
// emitter (emit.go) need out of a completed fill.
type dpResult struct {
	trace          *dpBacktrace
	rowMaxColumn   []graph.Column
	bestFinalCell  cellRef
	bestFinalScore Score
}

// rHelperEntry is one node's contribution to the R-helper (§4.4
// "R-helper construction"): the column within the node that best
// amortises a match this row against the remaining distance to the
// node's end, and the score achieved there.
type rHelperEntry struct {
	col   graph.Column
	score Score
}

// predecessorsOf returns the legal predecessors of column w: every
// in-neighbour's last column if w starts a node, else the single
// in-node predecessor w-1 (§4.4 "Predecessor set").
func predecessorsOf(fg *graph.FlatGraph, w graph.Column) []graph.Column {
	node := fg.NodeOf(w)
	if w != fg.Start(node) {
		return []graph.Column{w - 1}
	}
	ins := fg.InNeighbours(node)
	preds := make([]graph.Column, len(ins))
	for i, m := range ins {
		preds[i] = fg.End(m) - 1
	}
	return preds
}

// partitionColumns splits a row's live non-sentinel columns into
// first-columns of out-of-order nodes (processed first, slow R) and
// everything else (ascending w, fast R) per §4.4 "Processable columns".
func partitionColumns(fg *graph.FlatGraph, cols []int32) (firsts, others []int32) {
	for _, w32 := range cols {
		w := graph.Column(w32)
		node := fg.NodeOf(w)
		if w == fg.Start(node) && fg.OutOfOrder(node) {
			firsts = append(firsts, w32)
		} else {
			others = append(others, w32)
		}
	}
	return firsts, others
}

// buildRHelper computes one representative entry per active node of the
// previous row (§4.4 "R-helper construction"), used by the slow R
// recurrence for this row's out-of-order-first columns.
func buildRHelper(fg *graph.FlatGraph, prev *rowBuffers, prevCols []int32, queryBase byte) map[graph.NodeIndex]rHelperEntry {
	helper := make(map[graph.NodeIndex]rHelperEntry)
	seen := make(map[graph.NodeIndex]bool)
	for _, w32 := range prevCols {
		node := fg.NodeOf(graph.Column(w32))
		if seen[node] {
			continue
		}
		seen[node] = true

		start, end := fg.Start(node), fg.End(node)
		best := negInf
		var bestV graph.Column
		for v := start; v < end; v++ {
			predBest := negInf
			for _, u := range predecessorsOf(fg, v) {
				if prev.M[u] > predBest {
					predBest = prev.M[u]
				}
			}
			if predBest <= negInf {
				continue
			}
			cand := addSaturating(predBest, iupac.Score(fg.Base(v), queryBase))
			cand = addSaturating(cand, -Score(int32(end-v))*gapExtendPenalty)
			if cand > best {
				best = cand
				bestV = v
			}
		}
		if best > negInf {
			helper[node] = rHelperEntry{col: bestV, score: best}
		}
	}
	return helper
}

// fillSlowR evaluates the out-of-order R recurrence at (w,j) against the
// R-helper built from row j-1 (§4.4, the one point of use of the
// distance oracle in the DP kernel).
func fillSlowR(oracle *graph.DistanceOracle, trace *dpBacktrace, helper map[graph.NodeIndex]rHelperEntry, w graph.Column, j int) Score {
	best := negInf
	var bestFrom cellRef
	for _, entry := range helper {
		if entry.col == w {
			continue
		}
		d := oracle.Distance(entry.col, w)
		if d >= oracle.Infinity() {
			continue
		}
		cand := addSaturating(entry.score, -gapPenalty(Score(d)))
		if cand > best {
			best = cand
			bestFrom = cellRef{W: entry.col, J: j - 1, L: laneM}
		}
	}
	if best > negInf {
		trace.set(cellRef{W: w, J: j, L: laneR}, bestFrom)
	}
	return best
}

// fillFastR evaluates the in-order R recurrence at (w,j): predecessors
// are guaranteed (by insertion-order invariants, since w is not an
// out-of-order node's first column) to have strictly smaller column
// index, hence already filled this row (§9 "ascending order safety").
func fillFastR(fg *graph.FlatGraph, curr *rowBuffers, trace *dpBacktrace, w graph.Column, j int) Score {
	best := negInf
	var bestFrom cellRef
	for _, p := range predecessorsOf(fg, w) {
		if cand := addSaturating(curr.M[p], -gapOpenPenalty); cand > best {
			best = cand
			bestFrom = cellRef{W: p, J: j, L: laneM}
		}
		if cand := addSaturating(curr.R[p], -gapExtendPenalty); cand > best {
			best = cand
			bestFrom = cellRef{W: p, J: j, L: laneR}
		}
	}
	if best > negInf {
		trace.set(cellRef{W: w, J: j, L: laneR}, bestFrom)
	}
	return best
}

// realColumns lists every non-sentinel column, used only to seed row 0's
// dense rowMax (row 0 has no band to consult).
func realColumns(fg *graph.FlatGraph) []int32 {
	n := int(fg.NumColumns())
	start, end := fg.DummyStartColumn(), fg.DummyEndColumn()
	cols := make([]int32, 0, n-2)
	for w := graph.Column(0); w < graph.Column(n); w++ {
		if w == start || w == end {
			continue
		}
		cols = append(cols, int32(w))
	}
	return cols
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func rowMaxAndColumn(buf *rowBuffers, cols []int32) (Score, graph.Column) {
	best := negInf
	var bestW graph.Column
	for _, w32 := range cols {
		w := graph.Column(w32)
		if buf.M[w] > best {
			best = buf.M[w]
			bestW = w
		}
	}
	return best, bestW
}

// runDP fills the M/Q/R matrices row by row over the live cells of band,
// implementing the recurrences of §4.4. It assumes query is non-empty
// (the caller handles EmptyAlignment before ever reaching here) and that
// band has exactly len(query)+1 rows.
func runDP(ctx context.Context, fg *graph.FlatGraph, oracle *graph.DistanceOracle, query string, band *Band, opts dpOptions) (*dpResult, error) {
	numColumns := int(fg.NumColumns())
	numRows := band.NumRows()
	if numRows != len(query)+1 {
		log.Panic("align: band row count does not match query length")
	}

	trace := newDPBacktrace()
	rowMaxColumn := make([]graph.Column, numRows)

	dummyStart := fg.DummyStartColumn()
	dummyEnd := fg.DummyEndColumn()

	bufs := [2]*rowBuffers{newRowBuffers(numColumns), newRowBuffers(numColumns)}
	prev := bufs[0]
	for w := 0; w < numColumns; w++ {
		prev.M[w] = 0
		prev.touch(graph.Column(w))
	}
	rowMax0, bestW0 := rowMaxAndColumn(prev, realColumns(fg))
	prev.M[dummyEnd] = addSaturating(rowMax0, -gapPenalty(Score(len(query))))
	trace.set(cellRef{W: dummyEnd, J: 0, L: laneM}, cellRef{W: bestW0, J: 0, L: laneM})
	rowMaxColumn[0] = bestW0

	// bestEnd tracks the free-end projection of §4.5: the alignment may
	// stop consuming the query at any row, charging a gap cost for
	// whatever remains, so the overall best end is the best M[dummyEnd,j]
	// over every row, not just the one at the final row.
	bestEndScore := prev.M[dummyEnd]
	bestEndCell := cellRef{W: bestW0, J: 0, L: laneM}

	cellsSinceCheck := 0
	for j := 1; j < numRows; j++ {
		// Slice boundary: cancellation is cooperative (§5), checked every
		// row and additionally whenever a slice's worth of cells has been
		// filled.
		if cellsSinceCheck >= maxInt(opts.maxCellsPerSlice, 1) {
			cellsSinceCheck = 0
			if err := ctx.Err(); err != nil {
				return nil, ErrCancelled
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, ErrCancelled
		}
		if opts.dynamicRowStart <= 0 || j >= opts.dynamicRowStart {
			BuildDynamicRow(fg, band, rowMaxColumn[j-1], opts.dynamicBandwidth, j)
		}
		if band.IsEmptyRow(j) {
			return nil, ErrBandCollapsed
		}
		curr := bufs[j%2]
		curr.reset()

		queryBase := query[j-1]

		curr.M[dummyStart] = -gapPenalty(Score(j))
		curr.R[dummyStart] = negInf
		curr.touch(dummyStart)

		cols := band.Columns(j)
		cellsSinceCheck += len(cols)
		firsts, others := partitionColumns(fg, cols)
		helper := buildRHelper(fg, prev, band.Columns(j-1), queryBase)

		fillColumn := func(w graph.Column, slow bool) {
			curr.touch(w)

			qFromOpen := addSaturating(prev.M[w], -gapOpenPenalty)
			qFromExtend := addSaturating(prev.Q[w], -gapExtendPenalty)
			if qFromOpen > qFromExtend {
				curr.Q[w] = qFromOpen
				trace.set(cellRef{W: w, J: j, L: laneQ}, cellRef{W: w, J: j - 1, L: laneM})
			} else {
				curr.Q[w] = qFromExtend
				trace.set(cellRef{W: w, J: j, L: laneQ}, cellRef{W: w, J: j - 1, L: laneQ})
			}

			if slow {
				curr.R[w] = fillSlowR(oracle, trace, helper, w, j)
			} else {
				curr.R[w] = fillFastR(fg, curr, trace, w, j)
			}

			base := fg.Base(w)
			best := negInf
			var bestFrom cellRef
			for _, p := range predecessorsOf(fg, w) {
				if cand := addSaturating(prev.M[p], iupac.Score(base, queryBase)); cand > best {
					best = cand
					bestFrom = cellRef{W: p, J: j - 1, L: laneM}
				}
			}
			if curr.R[w] > best {
				best = curr.R[w]
				bestFrom = cellRef{W: w, J: j, L: laneR}
			}
			if band.Live(w, j-1) && curr.Q[w] > best {
				best = curr.Q[w]
				bestFrom = cellRef{W: w, J: j, L: laneQ}
			}
			if curr.M[dummyStart] > best {
				best = curr.M[dummyStart]
				bestFrom = cellRef{W: dummyStart, J: j, L: laneM}
			}
			curr.M[w] = best
			assertHeadroom(opts.debug, best)
			trace.set(cellRef{W: w, J: j, L: laneM}, bestFrom)
		}

		for _, w32 := range firsts {
			fillColumn(graph.Column(w32), !opts.sloppyOptimisations)
		}
		for _, w32 := range others {
			fillColumn(graph.Column(w32), false)
		}

		rowMax, bestW := rowMaxAndColumn(curr, cols)
		curr.M[dummyEnd] = addSaturating(rowMax, -gapPenalty(Score(len(query)-j)))
		curr.touch(dummyEnd)
		trace.set(cellRef{W: dummyEnd, J: j, L: laneM}, cellRef{W: bestW, J: j, L: laneM})
		rowMaxColumn[j] = bestW

		if curr.M[dummyEnd] > bestEndScore {
			bestEndScore = curr.M[dummyEnd]
			bestEndCell = cellRef{W: bestW, J: j, L: laneM}
		}

		prev = curr
	}

	return &dpResult{
		trace:          trace,
		rowMaxColumn:   rowMaxColumn,
		bestFinalCell:  bestEndCell,
		bestFinalScore: bestEndScore,
	}, nil
}
