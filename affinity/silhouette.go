package affinity

import "math"

// Silhouette computes the mean silhouette coefficient over all samples with
// euclidean distances. Noise points (label -1) are excluded; samples in
// singleton clusters contribute 0. With fewer than two clusters the score
// is 0, there is no separation to measure.
func Silhouette(data [][]float64, labels []int) float64 {
	clusterSizes := make(map[int]int)
	for _, label := range labels {
		if label >= 0 {
			clusterSizes[label]++
		}
	}
	if len(clusterSizes) < 2 {
		return 0
	}

	total, counted := 0.0, 0
	for i, row := range data {
		if labels[i] < 0 {
			continue
		}
		if clusterSizes[labels[i]] == 1 {
			counted++
			continue
		}

		sums := make(map[int]float64)
		for j, other := range data {
			if i == j || labels[j] < 0 {
				continue
			}
			sums[labels[j]] += euclideanDistance(row, other)
		}

		a := sums[labels[i]] / float64(clusterSizes[labels[i]]-1)
		b := math.Inf(1)
		for label, sum := range sums {
			if label == labels[i] {
				continue
			}
			if mean := sum / float64(clusterSizes[label]); mean < b {
				b = mean
			}
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}
