package recommender

import (
	"math"
	"sort"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/models"
)

// ItemBasedCF recommends the topN items whose normalized customer vectors
// correlate most with the target item's vector (Pearson). An item absent
// from the matrix, or one nothing correlates with, yields the empty
// sentinel, a lookup miss rather than a failure.
func ItemBasedCF(m *affinity.Matrix, item string, topN int) models.Recommendation {
	rec := models.Recommendation{Strategy: StrategyItemBasedCF, Target: item}
	if topN <= 0 {
		topN = DefaultTopN
	}

	norm := m.Normalize()
	target, ok := norm.ColumnIndex(item)
	if !ok {
		return rec
	}
	targetColumn := norm.Column(target)

	type correlated struct {
		name  string
		value float64
	}
	var candidates []correlated
	for j := range norm.Columns {
		if j == target {
			continue
		}
		r, ok := pearson(targetColumn, norm.Column(j))
		if !ok {
			continue
		}
		candidates = append(candidates, correlated{name: norm.Columns[j], value: r})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].value != candidates[b].value {
			return candidates[a].value > candidates[b].value
		}
		return candidates[a].name < candidates[b].name
	})

	for i := 0; i < len(candidates) && i < topN; i++ {
		rec.Items = append(rec.Items, models.ScoredItem{Name: candidates[i].name, Score: candidates[i].value})
	}
	return rec
}

// pearson reports false when either vector has zero variance, where the
// correlation is undefined.
func pearson(a, b []float64) (float64, bool) {
	n := float64(len(a))
	if n == 0 {
		return 0, false
	}
	meanA, meanB := 0.0, 0.0
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	cov, varA, varB := 0.0, 0.0, 0.0
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varA*varB), true
}
