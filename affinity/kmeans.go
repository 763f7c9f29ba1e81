package affinity

import (
	"math"
	"math/rand"

	"github.com/Agence-Glanum/customer-portrait/models"
)

const defaultMaxIterations = 100

// KMeans is Lloyd's algorithm with k-means++ seeding. The seed fixes the
// seeding choices, so a given (matrix, K, Seed) always yields the same
// assignment.
type KMeans struct {
	K             int
	Seed          int64
	MaxIterations int
}

func (km *KMeans) Name() string { return StrategyKMeans }

func (km *KMeans) Fit(m *Matrix) (*Assignment, error) {
	if len(m.Data) == 0 {
		return nil, models.NewEmptyPopulationError("no rows to cluster")
	}
	if km.K < 2 {
		return nil, models.NewConfigurationError("kmeans needs at least 2 clusters, got %d", km.K)
	}
	if km.K > len(m.Data) {
		return nil, models.NewConfigurationError("kmeans with %d clusters over only %d customers", km.K, len(m.Data))
	}

	labels, _ := kmeansFit(m.Data, km.K, km.Seed, km.maxIterations())
	score := Silhouette(m.Data, labels)
	log.Debugf("kmeans k=%d silhouette=%.4f", km.K, score)
	return assignmentFromLabels(StrategyKMeans, m, labels, score), nil
}

func (km *KMeans) maxIterations() int {
	if km.MaxIterations > 0 {
		return km.MaxIterations
	}
	return defaultMaxIterations
}

// ElbowCurve returns the within-cluster sum of squares for k = 1..maxK,
// the series the caller plots to pick a cluster count.
func ElbowCurve(m *Matrix, maxK int, seed int64) ([]float64, error) {
	if len(m.Data) == 0 {
		return nil, models.NewEmptyPopulationError("no rows for the elbow curve")
	}
	if maxK < 1 {
		return nil, models.NewConfigurationError("elbow curve needs maxK >= 1, got %d", maxK)
	}
	sse := make([]float64, 0, maxK)
	for k := 1; k <= maxK && k <= len(m.Data); k++ {
		_, inertia := kmeansFit(m.Data, k, seed, defaultMaxIterations)
		sse = append(sse, inertia)
	}
	return sse, nil
}

func kmeansFit(data [][]float64, k int, seed int64, maxIterations int) ([]int, float64) {
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(data, k, rng)
	labels := make([]int, len(data))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range data {
			best := nearestCentroid(row, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		recomputeCentroids(data, labels, centroids)
	}

	inertia := 0.0
	for i, row := range data {
		inertia += squaredDistance(row, centroids[labels[i]])
	}
	return labels, inertia
}

// seedCentroids is k-means++: each next centroid is drawn with probability
// proportional to the squared distance from the nearest chosen one.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), data[rng.Intn(len(data))]...))

	dists := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, row := range data {
			d := math.Inf(1)
			for _, c := range centroids {
				if sq := squaredDistance(row, c); sq < d {
					d = sq
				}
			}
			dists[i] = d
			total += d
		}
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dists {
				target -= d
				if target <= 0 {
					next = i
					break
				}
			}
		} else {
			next = rng.Intn(len(data))
		}
		centroids = append(centroids, append([]float64(nil), data[next]...))
	}
	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(row, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func recomputeCentroids(data [][]float64, labels []int, centroids [][]float64) {
	counts := make([]int, len(centroids))
	for c := range centroids {
		for j := range centroids[c] {
			centroids[c][j] = 0
		}
	}
	for i, row := range data {
		c := labels[i]
		counts[c]++
		for j, v := range row {
			centroids[c][j] += v
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func euclideanDistance(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}
