package align

import "log"

// Score is the signed integer score type used throughout the DP matrices.
// All scores in this model are integers (spec Non-goals: no floating
// point equivalence is required).
type Score = int32

const (
	gapOpenPenalty   Score = 1
	gapExtendPenalty Score = 1
)

// negInf is a finite stand-in for -infinity, chosen with enough headroom
// that repeated subtraction of small penalties never wraps around
// (§4.4 "Numeric safety").
const negInf Score = -(1 << 28)

// minHeadroomScore and maxHeadroomScore bound the legal range for a
// settled M value, leaving 100 units of headroom for subsequent additions
// as specified in §4.4.
const (
	minHeadroomScore = negInf + 100
	maxHeadroomScore = (1 << 28) - 100
)

// gapPenalty is gap(k) = 0 if k=0 else 1 + (k-1), i.e. one gap-open charge
// plus (k-1) gap-extend charges.
func gapPenalty(length Score) Score {
	if length <= 0 {
		return 0
	}
	return gapOpenPenalty + gapExtendPenalty*(length-1)
}

// addSaturating adds a (possibly very negative) score and a penalty
// without wrapping past negInf.
func addSaturating(a, b Score) Score {
	sum := int64(a) + int64(b)
	if sum < int64(negInf) {
		return negInf
	}
	if sum > int64(maxHeadroomScore) {
		return maxHeadroomScore
	}
	return Score(sum)
}

// assertHeadroom is the debug-mode invariant check named in §4.4: a
// settled M value must stay within [minHeadroomScore, maxHeadroomScore].
// It panics (a programmer-error abort, not a user-visible error kind;
// §7) if violated.
func assertHeadroom(debug bool, value Score) {
	if !debug {
		return
	}
	if value < minHeadroomScore || value > maxHeadroomScore {
		log.Panic("align: score left its numeric headroom band")
	}
}
