package align

import "errors"

// Error kinds propagated to the caller (§7). Internal invariant breaches
// (e.g. a backtrace pointer violating the strict partial order) are
// programmer errors and panic instead of returning one of these.
var (
	// ErrUnknownSeedNode is returned when a seed references a node id the
	// graph never saw.
	ErrUnknownSeedNode = errors.New("align: seed references unknown node")
	// ErrBandCollapsed is returned when some row of the band has no live
	// non-sentinel cell. The caller may retry with a larger bandwidth.
	ErrBandCollapsed = errors.New("align: band collapsed to nothing on some row")
	// ErrCancelled is returned when the context was cancelled at a slice
	// boundary.
	ErrCancelled = errors.New("align: alignment cancelled")
)

// EmptyAlignment is not an error: it is a valid AlignmentResult variant
// (§7, §8) for a query or graph that yields only sentinel columns.
