package affinity

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// twoGroups is six customers in two tight groups far apart.
func twoGroups() *Matrix {
	m := New([]int64{1, 2, 3, 4, 5, 6}, []string{"x", "y"})
	m.Data[0] = []float64{0, 0}
	m.Data[1] = []float64{0, 1}
	m.Data[2] = []float64{1, 0}
	m.Data[3] = []float64{10, 10}
	m.Data[4] = []float64{10, 11}
	m.Data[5] = []float64{11, 10}
	return m
}

func assertGroupsSeparated(t *testing.T, a *Assignment) {
	t.Helper()
	if a.Clusters != 2 {
		t.Fatalf("expected 2 clusters, got %d (labels %v)", a.Clusters, a.Labels)
	}
	if a.Labels[1] != a.Labels[2] || a.Labels[2] != a.Labels[3] {
		t.Errorf("first group split: %v", a.Labels)
	}
	if a.Labels[4] != a.Labels[5] || a.Labels[5] != a.Labels[6] {
		t.Errorf("second group split: %v", a.Labels)
	}
	if a.Labels[1] == a.Labels[4] {
		t.Errorf("groups merged: %v", a.Labels)
	}
}

func TestKMeansSeparatesGroups(t *testing.T) {
	km := &KMeans{K: 2, Seed: 42}
	a, err := km.Fit(twoGroups())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	assertGroupsSeparated(t, a)
	if a.Score <= 0.5 {
		t.Errorf("silhouette for well separated groups = %v", a.Score)
	}
}

func TestKMeansIsDeterministicPerSeed(t *testing.T) {
	km := &KMeans{K: 2, Seed: 7}
	a, err := km.Fit(twoGroups())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	b, err := km.Fit(twoGroups())
	if err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}
	if !reflect.DeepEqual(a.Labels, b.Labels) {
		t.Errorf("same seed produced different labels: %v vs %v", a.Labels, b.Labels)
	}
}

func TestKMeansRejectsTooManyClusters(t *testing.T) {
	km := &KMeans{K: 10, Seed: 1}
	_, err := km.Fit(twoGroups())
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestElbowCurveDecreases(t *testing.T) {
	sse, err := ElbowCurve(twoGroups(), 4, 42)
	if err != nil {
		t.Fatalf("ElbowCurve failed: %v", err)
	}
	if len(sse) != 4 {
		t.Fatalf("expected 4 points, got %d", len(sse))
	}
	if sse[1] >= sse[0] {
		t.Errorf("SSE did not drop from k=1 (%v) to k=2 (%v)", sse[0], sse[1])
	}
}

func TestAgglomerativeSeparatesGroups(t *testing.T) {
	ag := &Agglomerative{K: 2}
	a, err := ag.Fit(twoGroups())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	assertGroupsSeparated(t, a)
}

func TestDensityBasedFindsGroupsOnItsOwn(t *testing.T) {
	db := &DensityBased{}
	a, err := db.Fit(twoGroups())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	assertGroupsSeparated(t, a)
	for id, label := range a.Labels {
		if label < 0 {
			t.Errorf("customer %d marked as noise: %v", id, a.Labels)
		}
	}
}

func TestNewStrategyValidation(t *testing.T) {
	var confErr *models.ConfigurationError

	if _, err := NewStrategy(StrategyKMeans, 1, 0); !errors.As(err, &confErr) {
		t.Errorf("kmeans with k=1: expected ConfigurationError, got %v", err)
	}
	if _, err := NewStrategy(StrategyAgglomerative, 0, 0); !errors.As(err, &confErr) {
		t.Errorf("agglomerative with k=0: expected ConfigurationError, got %v", err)
	}
	if _, err := NewStrategy("voronoi", 4, 0); !errors.As(err, &confErr) {
		t.Errorf("unknown strategy: expected ConfigurationError, got %v", err)
	}
	if _, err := NewStrategy(StrategyDensityBased, 0, 0); err != nil {
		t.Errorf("density-based should ignore the cluster count, got %v", err)
	}
}

func TestSilhouetteDegenerateCases(t *testing.T) {
	data := [][]float64{{0}, {1}, {2}}
	if got := Silhouette(data, []int{0, 0, 0}); got != 0 {
		t.Errorf("single-cluster silhouette = %v, want 0", got)
	}
}
