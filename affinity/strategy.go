package affinity

import (
	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/models"
)

var log = logging.MustGetLogger("log")

// Assignment maps every customer of a matrix to a cluster label. Labels are
// not comparable across strategies or across reruns with different seeds;
// the label -1 marks noise for density-based clustering.
type Assignment struct {
	Strategy string
	Labels   map[int64]int
	Clusters int
	// Score is a quality signal: silhouette for k-means and agglomerative,
	// a relative validity index for density-based clustering.
	Score float64
}

// Strategy clusters the rows of a spend matrix.
type Strategy interface {
	Name() string
	Fit(m *Matrix) (*Assignment, error)
}

const (
	StrategyKMeans        = "kmeans"
	StrategyAgglomerative = "agglomerative"
	StrategyDensityBased  = "density"
)

// NewStrategy builds a clustering strategy by name. The cluster count k only
// applies to kmeans and agglomerative; density-based clustering selects its
// own cluster count and ignores it.
func NewStrategy(name string, k int, seed int64) (Strategy, error) {
	switch name {
	case StrategyKMeans:
		if k < 2 {
			return nil, models.NewConfigurationError("kmeans needs at least 2 clusters, got %d", k)
		}
		return &KMeans{K: k, Seed: seed}, nil
	case StrategyAgglomerative:
		if k < 2 {
			return nil, models.NewConfigurationError("agglomerative clustering needs at least 2 clusters, got %d", k)
		}
		return &Agglomerative{K: k}, nil
	case StrategyDensityBased:
		return &DensityBased{}, nil
	}
	return nil, models.NewConfigurationError("unknown clustering strategy %q", name)
}

func assignmentFromLabels(strategy string, m *Matrix, labels []int, score float64) *Assignment {
	byCustomer := make(map[int64]int, len(labels))
	clusters := make(map[int]struct{})
	for i, label := range labels {
		byCustomer[m.CustomerIDs[i]] = label
		if label >= 0 {
			clusters[label] = struct{}{}
		}
	}
	return &Assignment{
		Strategy: strategy,
		Labels:   byCustomer,
		Clusters: len(clusters),
		Score:    score,
	}
}
