package align

import (
	"github.com/willf/bitset"
	"golang.org/x/exp/slices"

	"github.com/exascience/graphalign/graph"
)

// MatrixPosition is a (graph column, query row) coordinate in the DP
// matrix, used both for seed hits and for backtrace pointers.
type MatrixPosition struct {
	W graph.Column
	J int
}

// bandRow is one row of the sparse boolean band: a bitset for O(1)
// membership tests, paired with the same membership as an ascending
// sorted slice for ordered iteration over processable columns (§9).
type bandRow struct {
	bits *bitset.BitSet
	cols []int32
}

// Band is the sparse boolean matrix of live (w,j) cells the DP kernel
// fills (§3, §4.3). Sentinel columns are implicitly live in every row and
// are never stored explicitly.
type Band struct {
	rows       []bandRow
	numColumns int

	dummyStart, dummyEnd graph.Column
}

func newBand(numRows int, fg *graph.FlatGraph) *Band {
	numColumns := int(fg.NumColumns())
	rows := make([]bandRow, numRows)
	for i := range rows {
		rows[i] = bandRow{bits: bitset.New(uint(numColumns))}
	}
	return &Band{
		rows:       rows,
		numColumns: numColumns,
		dummyStart: fg.DummyStartColumn(),
		dummyEnd:   fg.DummyEndColumn(),
	}
}

// NumRows returns the number of rows (query positions 0..|query|) the band
// covers.
func (b *Band) NumRows() int { return len(b.rows) }

// Live reports whether (w,j) is live. Sentinel columns are always live.
func (b *Band) Live(w graph.Column, j int) bool {
	if w == b.dummyStart || w == b.dummyEnd {
		return true
	}
	if j < 0 || j >= len(b.rows) {
		return false
	}
	return b.rows[j].bits.Test(uint(w))
}

// Mark adds (w,j) to the live set. Marking a sentinel column is a no-op
// since sentinels are always implicitly live.
func (b *Band) Mark(w graph.Column, j int) {
	if w == b.dummyStart || w == b.dummyEnd {
		return
	}
	row := &b.rows[j]
	if row.bits.Test(uint(w)) {
		return
	}
	row.bits.Set(uint(w))
	i, found := slices.BinarySearch(row.cols, int32(w))
	if !found {
		row.cols = slices.Insert(row.cols, i, int32(w))
	}
}

// ClearRow drops all live non-sentinel columns from row j. Used by the
// dynamic band builder, which recomputes each row from scratch.
func (b *Band) ClearRow(j int) {
	row := &b.rows[j]
	row.bits = bitset.New(uint(b.numColumns))
	row.cols = row.cols[:0]
}

// Columns returns the ascending, live, non-sentinel columns of row j.
func (b *Band) Columns(j int) []int32 { return b.rows[j].cols }

// IsEmptyRow reports whether row j has no live non-sentinel column,
// i.e. the BandCollapsed condition (§4.3 contract, §4.4 failure mode).
func (b *Band) IsEmptyRow(j int) bool { return len(b.rows[j].cols) == 0 }

// expandRight marks up to budget columns starting at (w,j), walking
// rightwards within the node and recursing into out-neighbours at node
// boundaries with the leftover budget (§4.3 "expand rightwards").
func expandRight(fg *graph.FlatGraph, band *Band, w graph.Column, j int, budget int, onMark func(graph.Column)) {
	nodeIndex := fg.NodeOf(w)
	end := fg.End(nodeIndex)
	for w != end && budget > 0 {
		band.Mark(w, j)
		if onMark != nil {
			onMark(w)
		}
		w++
		budget--
		if w != end && band.Live(w, j) {
			return
		}
	}
	if w == end && budget > 0 {
		for _, m := range fg.OutNeighbours(nodeIndex) {
			expandRight(fg, band, fg.Start(m), j, budget, onMark)
		}
	}
}

// expandLeft is the mirror of expandRight (§4.3 "expand leftwards").
func expandLeft(fg *graph.FlatGraph, band *Band, w graph.Column, j int, budget int, onMark func(graph.Column)) {
	nodeIndex := fg.NodeOf(w)
	start := fg.Start(nodeIndex)
	for w != start && budget > 0 {
		band.Mark(w, j)
		if onMark != nil {
			onMark(w)
		}
		w--
		budget--
		if w != start && band.Live(w, j) {
			return
		}
	}
	if w == start && budget > 0 {
		band.Mark(w, j)
		if onMark != nil {
			onMark(w)
		}
		for _, m := range fg.InNeighbours(nodeIndex) {
			expandLeft(fg, band, fg.End(m)-1, j, budget-1, onMark)
		}
	}
}

// expandDownRight grows the band diagonally down-right from a lateral
// expansion point, without a budget, stopping at a previously-live cell
// or the last row (§4.3 "eligible for diagonal expansion").
func expandDownRight(fg *graph.FlatGraph, band *Band, w graph.Column, j int, numRows int) {
	nodeIndex := fg.NodeOf(w)
	end := fg.End(nodeIndex)
	for w != end && j < numRows {
		band.Mark(w, j)
		w++
		j++
		if w != end && j < numRows && band.Live(w, j) {
			return
		}
	}
	if j < numRows {
		for _, m := range fg.OutNeighbours(nodeIndex) {
			expandDownRight(fg, band, fg.Start(m), j, numRows)
		}
	}
}

// expandUpLeft is the mirror of expandDownRight, growing up-left and
// stopping at row 0.
func expandUpLeft(fg *graph.FlatGraph, band *Band, w graph.Column, j int) {
	if j == 0 {
		band.Mark(w, j)
		return
	}
	nodeIndex := fg.NodeOf(w)
	start := fg.Start(nodeIndex)
	for w != start && j > 0 {
		band.Mark(w, j)
		w--
		j--
		if w != start && j > 0 && band.Live(w, j) {
			return
		}
	}
	band.Mark(w, j)
	if w == start && j > 0 {
		for _, m := range fg.InNeighbours(nodeIndex) {
			expandUpLeft(fg, band, fg.End(m)-1, j-1)
		}
	}
}

// BuildStaticBand implements the seed-expanded static banding scheme
// (§4.3 "Static (seed-expanded)"): each seed expands laterally by
// bandwidth within its row, and every cell produced by that lateral
// expansion additionally expands diagonally across rows without budget.
func BuildStaticBand(fg *graph.FlatGraph, seeds []MatrixPosition, bandwidth int, numRows int) *Band {
	forward := newBand(numRows, fg)
	backward := newBand(numRows, fg)

	type rowCol struct {
		w graph.Column
		j int
	}
	diagonal := make(map[rowCol]bool)

	for _, hit := range seeds {
		forward.Mark(hit.W, hit.J)
		mark := func(w graph.Column) { diagonal[rowCol{w, hit.J}] = true }
		// The expansion budget counts the seed column itself, so a radius
		// of bandwidth on each side needs a budget of bandwidth+1.
		expandRight(fg, forward, hit.W, hit.J, bandwidth+1, mark)
		expandLeft(fg, forward, hit.W, hit.J, bandwidth+1, mark)
		for _, w := range forward.Columns(hit.J) {
			backward.Mark(graph.Column(w), hit.J)
		}
	}
	for p := range diagonal {
		expandDownRight(fg, forward, p.w, p.j, numRows)
		expandUpLeft(fg, backward, p.w, p.j)
	}

	result := newBand(numRows, fg)
	for j := 0; j < numRows; j++ {
		for _, w := range forward.Columns(j) {
			result.Mark(graph.Column(w), j)
		}
		for _, w := range backward.Columns(j) {
			result.Mark(graph.Column(w), j)
		}
	}
	return result
}

// BuildDynamicRow fills a single row of the band around the column where
// the previous row attained its running maximum (§4.3 "Dynamic
// (per-row)"). It clears any prior contents of row j first.
func BuildDynamicRow(fg *graph.FlatGraph, band *Band, prevMaxColumn graph.Column, bandwidth int, j int) {
	band.ClearRow(j)
	band.Mark(prevMaxColumn, j)
	expandRight(fg, band, prevMaxColumn, j, bandwidth+1, nil)
	expandLeft(fg, band, prevMaxColumn, j, bandwidth+1, nil)
}

// SeedExpandoPrefill performs a bounded expansion over a prefix of the
// query to discover a plausible starting column for dynamic banding when
// no band yet exists for row 0 (§4.3 "expando prefill"). It lays seeds at
// every node within bandwidth of the graph's start, one per row of the
// prefix, giving the dynamic builder a live cell to track forward from.
func SeedExpandoPrefill(fg *graph.FlatGraph, band *Band, bandwidth int, prefixRows int) {
	if prefixRows > band.NumRows() {
		prefixRows = band.NumRows()
	}
	start := fg.DummyStartColumn()
	for j := 0; j < prefixRows; j++ {
		band.Mark(start, j)
		expandRight(fg, band, start, j, bandwidth, nil)
	}
}
