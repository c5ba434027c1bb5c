// Package iupac implements ambiguity-aware matching of IUPAC nucleotide
// codes. Two bases "match" iff their concrete A/C/G/T sets intersect.
package iupac

// Mask is a bitmask over the four concrete bases A, C, G, T.
type Mask uint8

// The four concrete-base bits. Ambiguity codes are unions of these.
const (
	A Mask = 1 << iota
	C
	G
	T
)

// All matches any concrete base; it is the mask assigned to 'N'.
const All = A | C | G | T

var table [256]Mask

func init() {
	set := func(upper byte, m Mask) {
		table[upper] = m
		table[upper-'A'+'a'] = m
	}
	set('A', A)
	set('C', C)
	set('G', G)
	set('T', T)
	set('U', T) // RNA uracil reads as thymine
	set('R', A|G)
	set('Y', C|T)
	set('S', G|C)
	set('W', A|T)
	set('K', G|T)
	set('M', A|C)
	set('B', C|G|T)
	set('D', A|G|T)
	set('H', A|C|T)
	set('V', A|C|G)
	set('N', All)
}

// MaskOf returns the concrete-base set for a nucleotide code. Unrecognised
// bytes (including the sentinel neutral base) map to the zero mask, which
// matches nothing.
func MaskOf(b byte) Mask {
	return table[b]
}

// Match reports whether two nucleotide codes can represent the same base.
func Match(a, b byte) bool {
	return table[a]&table[b] != 0
}

// Score returns the match/mismatch contribution for aligning a graph base
// against a query base under the unit-match/affine-gap scoring model.
func Score(graphBase, queryBase byte) int32 {
	if Match(graphBase, queryBase) {
		return 1
	}
	return -1
}
