package graph

// chainInfo is the result of the chain-collapse pass (§4.2.1): every
// non-sentinel node is mapped to a representative chain id and its offset
// (in bases) from the start of that chain, plus each representative's
// total chain length. This is the domain-specific layer beneath the
// generic all-pairs shortest-paths pass in distance.go.
type chainInfo struct {
	rep      []int32 // NodeIndex -> representative id
	offset   []int32 // NodeIndex -> bases from chain start to this node's start
	chainLen []int32 // representative id -> total bases in the chain
	numReps  int
}

// buildChains contracts maximal chains (runs of in-degree-1/out-degree-1
// nodes) into single representatives, then merges simple bubbles: pairs
// (or larger groups) of singleton, equal-length branches that share both
// a common predecessor chain and a common successor chain collapse onto
// one representative, since they are interchangeable for distance-costing
// purposes. Bubbles whose branches differ in length are left uncollapsed
// rather than guessed at; this only costs representative-graph size, since
// each uncollapsed branch keeps its own representative and so its own
// distances.
func buildChains(g *FlatGraph) *chainInfo {
	n := g.NumNodes()
	rep := make([]int32, n)
	offset := make([]int32, n)

	continuesFromPred := make([]bool, n)
	for i := 0; i < n; i++ {
		idx := NodeIndex(i)
		if idx == g.dummyStart || idx == g.dummyEnd {
			continue
		}
		in := g.InNeighbours(idx)
		if len(in) != 1 || in[0] == idx {
			continue
		}
		p := in[0]
		if len(g.OutNeighbours(p)) == 1 {
			continuesFromPred[i] = true
		}
	}

	visited := make([]bool, n)
	var chainLen []int32
	type chainMeta struct {
		head, tail NodeIndex
	}
	var meta []chainMeta

	startChain := func(head NodeIndex) {
		id := int32(len(chainLen))
		var running Column
		cur := head
		tail := head
		for {
			visited[cur] = true
			rep[cur] = id
			offset[cur] = int32(running)
			running += g.Len(cur)
			tail = cur
			out := g.OutNeighbours(cur)
			if len(out) != 1 {
				break
			}
			next := out[0]
			if next == g.dummyEnd || next == g.dummyStart {
				break
			}
			if !continuesFromPred[next] || visited[next] {
				break
			}
			cur = next
		}
		chainLen = append(chainLen, int32(running))
		meta = append(meta, chainMeta{head: head, tail: tail})
	}

	markSentinel := func(idx NodeIndex) {
		visited[idx] = true
		rep[idx] = -1
		offset[idx] = 0
	}
	markSentinel(g.dummyStart)
	markSentinel(g.dummyEnd)

	for i := 0; i < n; i++ {
		idx := NodeIndex(i)
		if visited[idx] || continuesFromPred[i] {
			continue
		}
		startChain(idx)
	}
	// Pure cycles where every member has continuesFromPred set (no chain
	// head was ever selected) still need to be assigned a representative.
	for i := 0; i < n; i++ {
		idx := NodeIndex(i)
		if visited[idx] {
			continue
		}
		startChain(idx)
	}

	numRaw := len(chainLen)
	parent := make([]int32, numRaw)
	for i := range parent {
		parent[i] = int32(i)
	}
	var find func(int32) int32
	find = func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int32) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	type bubbleKey struct{ pred, succ int32 }
	groups := make(map[bubbleKey][]int32)
	for id := 0; id < numRaw; id++ {
		h, t := meta[id].head, meta[id].tail
		if h != t {
			continue // not a singleton chain, can't be a bubble branch
		}
		in := g.InNeighbours(h)
		out := g.OutNeighbours(t)
		if len(in) != 1 || len(out) != 1 {
			continue
		}
		key := bubbleKey{rep[in[0]], rep[out[0]]}
		groups[key] = append(groups[key], int32(id))
	}
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids[1:] {
			if chainLen[id] == chainLen[ids[0]] {
				union(ids[0], id)
			}
		}
	}

	denseID := make(map[int32]int32)
	finalLen := make([]int32, 0, numRaw)
	for id := 0; id < numRaw; id++ {
		root := find(int32(id))
		if _, ok := denseID[root]; !ok {
			denseID[root] = int32(len(finalLen))
			finalLen = append(finalLen, chainLen[root])
		}
	}
	for i := 0; i < n; i++ {
		idx := NodeIndex(i)
		if idx == g.dummyStart || idx == g.dummyEnd {
			continue
		}
		rep[i] = denseID[find(rep[i])]
	}

	return &chainInfo{
		rep:      rep,
		offset:   offset,
		chainLen: finalLen,
		numReps:  len(finalLen),
	}
}
