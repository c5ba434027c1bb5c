package align

import (
	"log"

	"github.com/exascience/graphalign/graph"
)

// lane distinguishes which of the three coupled score matrices a cell
// reference names, since M, Q and R at the same (w,j) carry independent
// backtrace chains (§3 "DP state per row").
type lane uint8

const (
	laneM lane = iota
	laneQ
	laneR
)

// cellRef names one cell in one of the M/Q/R matrices.
type cellRef struct {
	W graph.Column
	J int
	L lane
}

// dpBacktrace is the sparse backtrace store: for every filled cell it
// records the prior cell the best-scoring transition came from. It spans
// the whole matrix and survives slice boundaries, unlike the M/Q/R row
// buffers, which are double-buffered and reset every two rows.
type dpBacktrace struct {
	entries map[cellRef]cellRef
}

func newDPBacktrace() *dpBacktrace {
	return &dpBacktrace{entries: make(map[cellRef]cellRef)}
}

func (b *dpBacktrace) set(from, to cellRef) {
	b.entries[from] = to
}

func (b *dpBacktrace) get(from cellRef) (cellRef, bool) {
	v, ok := b.entries[from]
	return v, ok
}

// walk follows backtrace pointers from start back to row 0 or the start
// sentinel, returning the visited cells in traversal order (start first,
// earliest last). It asserts the strict partial order from §3/§8.1:
// every step must strictly decrease j, or hold j fixed and strictly
// decrease w. A violation is a programmer error, not a user-facing one.
func (b *dpBacktrace) walk(start cellRef, dummyStart graph.Column) []cellRef {
	var path []cellRef
	cur := start
	for {
		path = append(path, cur)
		next, ok := b.get(cur)
		if !ok {
			break
		}
		if !(next.J < cur.J || (next.J == cur.J && next.W < cur.W)) {
			log.Panic("align: backtrace pointer violates the strict partial order")
		}
		cur = next
		if cur.J == 0 && cur.L == laneM {
			path = append(path, cur)
			break
		}
		if cur.W == dummyStart && cur.L == laneM {
			path = append(path, cur)
			break
		}
	}
	return path
}
