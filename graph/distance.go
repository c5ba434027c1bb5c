package graph

import (
	"math"

	"github.com/exascience/pargo/parallel"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// DistanceOracle answers "minimum number of graph bases on any path from
// column a to column b" (§4.2), built once per input graph and immutable
// thereafter. It keeps two layers: a domain-specific chain-collapse pass
// (chain.go) and a generic all-pairs-shortest-paths pass on the collapsed
// representative graph, computed here by repeated Dijkstra fanned out with
// pargo.
type DistanceOracle struct {
	g        *FlatGraph
	chains   *chainInfo
	repDist  [][]int32
	infinity int32
}

// BuildDistanceOracle builds the distance oracle for a finalized graph.
// Complexity is O(V'^2 log V' + V'*E') on the collapsed graph, run once.
func BuildDistanceOracle(g *FlatGraph) *DistanceOracle {
	chains := buildChains(g)
	infinity := int32(g.NumColumns()) + 1

	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for i := 0; i < chains.numReps; i++ {
		wg.AddNode(simple.Node(int64(i)))
	}

	type edgeKey struct{ from, to int32 }
	bestWeight := make(map[edgeKey]float64)
	n := g.NumNodes()
	for i := 0; i < n; i++ {
		idx := NodeIndex(i)
		if idx == g.dummyStart || idx == g.dummyEnd {
			continue
		}
		rep := chains.rep[idx]
		isTail := chains.offset[idx]+int32(g.Len(idx)) == chains.chainLen[rep]
		if !isTail {
			continue
		}
		weight := float64(chains.chainLen[rep])
		for _, m := range g.OutNeighbours(idx) {
			if m == g.dummyEnd || m == g.dummyStart {
				continue
			}
			key := edgeKey{rep, chains.rep[m]}
			if cur, ok := bestWeight[key]; !ok || weight < cur {
				bestWeight[key] = weight
			}
		}
	}
	selfCycle := make(map[int32]int32)
	for key, weight := range bestWeight {
		if key.from == key.to {
			// A chain whose tail leads back into itself is a cycle of that
			// chain's length; the gonum graph takes no self edges, so it is
			// kept aside for the self-distance pass below.
			selfCycle[key.from] = int32(weight)
			continue
		}
		wg.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key.from)),
			T: simple.Node(int64(key.to)),
			W: weight,
		})
	}

	repDist := make([][]int32, chains.numReps)
	for i := range repDist {
		repDist[i] = make([]int32, chains.numReps)
	}
	parallel.Range(0, chains.numReps, 0, func(low, high int) {
		for src := low; src < high; src++ {
			shortest := path.DijkstraFrom(simple.Node(int64(src)), wg)
			row := repDist[src]
			for dst := 0; dst < chains.numReps; dst++ {
				weight := shortest.WeightTo(int64(dst))
				if math.IsInf(weight, 1) {
					row[dst] = infinity
				} else {
					row[dst] = int32(weight)
				}
			}
		}
	})

	// Self-distance is never zero: it is the shortest self-return cycle,
	// or infinity if the representative lies on no cycle at all (§4.2.4).
	for i := 0; i < chains.numReps; i++ {
		best := infinity
		if c, ok := selfCycle[int32(i)]; ok && c < best {
			best = c
		}
		for j := 0; j < chains.numReps; j++ {
			if j == i {
				continue
			}
			if repDist[i][j] >= infinity || repDist[j][i] >= infinity {
				continue
			}
			if sum := repDist[i][j] + repDist[j][i]; sum < best {
				best = sum
			}
		}
		repDist[i][i] = best
	}

	return &DistanceOracle{
		g:        g,
		chains:   chains,
		repDist:  repDist,
		infinity: infinity,
	}
}

// Infinity is the sentinel distance meaning "no path exists".
func (o *DistanceOracle) Infinity() int32 { return o.infinity }

func (o *DistanceOracle) offsetFromRepStart(w Column) int32 {
	n := o.g.NodeOf(w)
	return o.chains.offset[n] + int32(w-o.g.Start(n))
}

// Distance returns the minimum number of graph bases on any path from
// column a to column b. Sentinel columns have distance 1 to everything
// (§4.2.5); a column's distance to itself is 0. Distances are computed from
// chain representatives and offsets, so columns of parallel bubble branches
// merged onto one representative (chain.go) are measured by their offset
// difference as if they lay on the same branch, even though no path joins
// them.
func (o *DistanceOracle) Distance(a, b Column) int32 {
	if a == b {
		return 0
	}
	if o.g.IsSentinel(a) || o.g.IsSentinel(b) {
		return 1
	}
	na, nb := o.g.NodeOf(a), o.g.NodeOf(b)
	ra, rb := o.chains.rep[na], o.chains.rep[nb]
	offA, offB := o.offsetFromRepStart(a), o.offsetFromRepStart(b)
	if ra == rb {
		if offB >= offA {
			return offB - offA
		}
		self := o.repDist[ra][ra]
		if self >= o.infinity {
			return o.infinity
		}
		return self + offB - offA
	}
	base := o.repDist[ra][rb]
	if base >= o.infinity {
		return o.infinity
	}
	return base - offA + offB
}

// BandDistance is the symmetric diagnostic distance used for max-band-
// displacement reporting (§4.2): the smaller of the two directed
// distances between a and b.
func (o *DistanceOracle) BandDistance(a, b Column) int32 {
	d1 := o.Distance(a, b)
	d2 := o.Distance(b, a)
	if d1 < d2 {
		return d1
	}
	return d2
}
