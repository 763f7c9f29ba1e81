package affinity

import (
	"math"
	"sort"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// defaultMinClusterSizes are the candidate minimum-cluster-size values the
// density strategy searches over.
var defaultMinClusterSizes = []int{2, 3, 5, 8, 13}

// DensityBased clusters over mutual-reachability distances, in the HDBSCAN
// family: core distances smooth the metric, a minimum spanning tree is cut at
// the largest edge-weight gap, and components smaller than the minimum
// cluster size become noise (label -1). The minimum cluster size itself is
// chosen by maximizing a relative validity index over the candidates, so the
// cluster count is not caller-supplied.
type DensityBased struct {
	MinClusterSizes []int
}

func (db *DensityBased) Name() string { return StrategyDensityBased }

func (db *DensityBased) Fit(m *Matrix) (*Assignment, error) {
	n := len(m.Data)
	if n == 0 {
		return nil, models.NewEmptyPopulationError("no rows to cluster")
	}

	candidates := db.MinClusterSizes
	if len(candidates) == 0 {
		candidates = defaultMinClusterSizes
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = euclideanDistance(m.Data[i], m.Data[j])
		}
	}

	bestLabels := make([]int, n)
	for i := range bestLabels {
		bestLabels[i] = -1
	}
	bestScore := math.Inf(-1)
	found := false

	for _, mcs := range candidates {
		if mcs < 2 || mcs > n {
			continue
		}
		mreach := mutualReachability(dist, mcs)
		labels := cutClusters(mreach, mcs)
		score := relativeValidity(mreach, labels)
		log.Debugf("density minClusterSize=%d validity=%.4f", mcs, score)
		if score > bestScore {
			bestScore = score
			bestLabels = labels
			found = true
		}
	}
	if !found {
		return nil, models.NewConfigurationError("no usable minimum-cluster-size candidate for %d customers", n)
	}
	return assignmentFromLabels(StrategyDensityBased, m, bestLabels, bestScore), nil
}

// mutualReachability lifts the distance matrix with core distances: the
// distance of each point to its (mcs-1)-th nearest neighbor.
func mutualReachability(dist [][]float64, mcs int) [][]float64 {
	n := len(dist)
	core := make([]float64, n)
	for i := range dist {
		neighbors := make([]float64, 0, n-1)
		for j := range dist[i] {
			if i != j {
				neighbors = append(neighbors, dist[i][j])
			}
		}
		sort.Float64s(neighbors)
		core[i] = neighbors[mcs-2]
	}

	mreach := make([][]float64, n)
	for i := range mreach {
		mreach[i] = make([]float64, n)
		for j := range mreach[i] {
			if i == j {
				continue
			}
			mreach[i][j] = math.Max(dist[i][j], math.Max(core[i], core[j]))
		}
	}
	return mreach
}

type mstEdge struct {
	from, to int
	weight   float64
}

// cutClusters builds the minimum spanning tree of the mutual-reachability
// graph, drops every edge above the largest weight gap, and labels the
// remaining components. Components smaller than mcs are noise.
func cutClusters(mreach [][]float64, mcs int) []int {
	n := len(mreach)
	edges := spanningTree(mreach)

	sort.Slice(edges, func(i, j int) bool { return edges[i].weight < edges[j].weight })
	threshold := math.Inf(1)
	if len(edges) >= 2 {
		gapAt, gap := -1, 0.0
		// Only look for the gap in the upper half of the edge weights; the
		// lower half is intra-cluster structure.
		for e := len(edges) / 2; e < len(edges)-1; e++ {
			if d := edges[e+1].weight - edges[e].weight; d > gap {
				gapAt, gap = e, d
			}
		}
		if gapAt >= 0 && gap > 0 {
			threshold = edges[gapAt].weight
		}
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, e := range edges {
		if e.weight <= threshold {
			parent[find(e.from)] = find(e.to)
		}
	}

	sizes := make(map[int]int)
	for i := 0; i < n; i++ {
		sizes[find(i)]++
	}
	labels := make([]int, n)
	next := 0
	labelByRoot := make(map[int]int)
	for i := 0; i < n; i++ {
		root := find(i)
		if sizes[root] < mcs {
			labels[i] = -1
			continue
		}
		label, ok := labelByRoot[root]
		if !ok {
			label = next
			labelByRoot[root] = label
			next++
		}
		labels[i] = label
	}
	return labels
}

// spanningTree is Prim's algorithm over a dense matrix.
func spanningTree(weights [][]float64) []mstEdge {
	n := len(weights)
	if n < 2 {
		return nil
	}
	inTree := make([]bool, n)
	bestDist := make([]float64, n)
	bestFrom := make([]int, n)
	for i := range bestDist {
		bestDist[i] = math.Inf(1)
	}
	inTree[0] = true
	for j := 1; j < n; j++ {
		bestDist[j] = weights[0][j]
		bestFrom[j] = 0
	}

	edges := make([]mstEdge, 0, n-1)
	for len(edges) < n-1 {
		next, nextDist := -1, math.Inf(1)
		for j := 0; j < n; j++ {
			if !inTree[j] && bestDist[j] < nextDist {
				next, nextDist = j, bestDist[j]
			}
		}
		edges = append(edges, mstEdge{from: bestFrom[next], to: next, weight: nextDist})
		inTree[next] = true
		for j := 0; j < n; j++ {
			if !inTree[j] && weights[next][j] < bestDist[j] {
				bestDist[j] = weights[next][j]
				bestFrom[j] = next
			}
		}
	}
	return edges
}

// relativeValidity is a DBCV-like score in [-1, 1]: per cluster, the gap
// between its separation from other clusters and its internal sparseness,
// weighted by cluster size. Noise points are left out; fewer than two
// clusters scores -1.
func relativeValidity(mreach [][]float64, labels []int) float64 {
	clusterSizes := make(map[int]int)
	for _, label := range labels {
		if label >= 0 {
			clusterSizes[label]++
		}
	}
	if len(clusterSizes) < 2 {
		return -1
	}

	total, weight := 0.0, 0
	for label, size := range clusterSizes {
		sparseness, separation := 0.0, math.Inf(1)
		for i := range mreach {
			if labels[i] != label {
				continue
			}
			for j := range mreach[i] {
				if i == j || labels[j] < 0 {
					continue
				}
				if labels[j] == label {
					if mreach[i][j] > sparseness {
						sparseness = mreach[i][j]
					}
				} else if mreach[i][j] < separation {
					separation = mreach[i][j]
				}
			}
		}
		if denom := math.Max(sparseness, separation); denom > 0 && !math.IsInf(separation, 1) {
			total += float64(size) * (separation - sparseness) / denom
			weight += size
		}
	}
	if weight == 0 {
		return -1
	}
	return total / float64(weight)
}
