package affinity

import (
	"math"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// Agglomerative is bottom-up hierarchical clustering with Ward linkage,
// cut at K clusters. The full dendrogram is not materialized, only the cut.
type Agglomerative struct {
	K int
}

func (ag *Agglomerative) Name() string { return StrategyAgglomerative }

func (ag *Agglomerative) Fit(m *Matrix) (*Assignment, error) {
	if len(m.Data) == 0 {
		return nil, models.NewEmptyPopulationError("no rows to cluster")
	}
	if ag.K < 2 {
		return nil, models.NewConfigurationError("agglomerative clustering needs at least 2 clusters, got %d", ag.K)
	}
	if ag.K > len(m.Data) {
		return nil, models.NewConfigurationError("agglomerative clustering with %d clusters over only %d customers", ag.K, len(m.Data))
	}

	labels := wardCut(m.Data, ag.K)
	score := Silhouette(m.Data, labels)
	log.Debugf("agglomerative k=%d silhouette=%.4f", ag.K, score)
	return assignmentFromLabels(StrategyAgglomerative, m, labels, score), nil
}

// wardCut merges the pair of clusters with minimal Ward distance until k
// clusters remain, updating distances with the Lance-Williams recurrence
// over squared euclidean distances.
func wardCut(data [][]float64, k int) []int {
	n := len(data)
	active := make([]bool, n)
	sizes := make([]int, n)
	members := make([][]int, n)
	for i := range data {
		active[i] = true
		sizes[i] = 1
		members[i] = []int{i}
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = squaredDistance(data[i], data[j])
			}
		}
	}

	for remaining := n; remaining > k; remaining-- {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if dist[i][j] < best {
					bi, bj, best = i, j, dist[i][j]
				}
			}
		}

		// Merge bj into bi, then update distances from bi to every other
		// active cluster.
		ni, nj := float64(sizes[bi]), float64(sizes[bj])
		for l := 0; l < n; l++ {
			if !active[l] || l == bi || l == bj {
				continue
			}
			nl := float64(sizes[l])
			updated := ((ni+nl)*dist[bi][l] + (nj+nl)*dist[bj][l] - nl*dist[bi][bj]) / (ni + nj + nl)
			dist[bi][l] = updated
			dist[l][bi] = updated
		}
		sizes[bi] += sizes[bj]
		members[bi] = append(members[bi], members[bj]...)
		active[bj] = false
	}

	// Number the surviving clusters in row order for a stable labeling.
	labels := make([]int, n)
	next := 0
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for _, row := range members[i] {
			labels[row] = next
		}
		next++
	}
	return labels
}
