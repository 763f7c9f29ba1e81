package recommender

import (
	"math"
	"sort"
	"strconv"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/models"
)

// UserBasedCF recommends up to topN items the target customer has not
// bought, collected from co-purchasers in order of similarity. The matrix is
// min-max normalized per item; co-purchasers are customers sharing at least
// one bought item, ranked by their cosine similarity to the target weighted
// by how much of the shared items they bought. Already-purchased items are
// never recommended. A customer absent from the matrix or without purchases
// yields the empty sentinel.
func UserBasedCF(m *affinity.Matrix, customerID int64, topN int) models.Recommendation {
	rec := models.Recommendation{Strategy: StrategyUserBasedCF, Target: strconv.FormatInt(customerID, 10)}
	if topN <= 0 {
		topN = DefaultTopN
	}

	norm := m.Normalize()
	target, ok := norm.RowIndex(customerID)
	if !ok {
		return rec
	}

	bought := make([]int, 0)
	boughtSet := make(map[int]struct{})
	for j, v := range norm.Data[target] {
		if v > 0 {
			bought = append(bought, j)
			boughtSet[j] = struct{}{}
		}
	}
	if len(bought) == 0 {
		return rec
	}

	type coPurchaser struct {
		row      int
		weighted float64
	}
	var similar []coPurchaser
	for i, row := range norm.Data {
		if i == target {
			continue
		}
		shared := 0.0
		for _, j := range bought {
			shared += row[j]
		}
		if shared <= 0 {
			continue
		}
		similarity := cosine(norm.Data[target], row)
		weighted := 0.0
		for _, j := range bought {
			weighted += similarity * row[j]
		}
		similar = append(similar, coPurchaser{row: i, weighted: weighted})
	}
	sort.SliceStable(similar, func(a, b int) bool {
		if similar[a].weighted != similar[b].weighted {
			return similar[a].weighted > similar[b].weighted
		}
		return norm.CustomerIDs[similar[a].row] < norm.CustomerIDs[similar[b].row]
	})

	scores := make(map[string]int)
	for _, cp := range similar {
		for j, v := range norm.Data[cp.row] {
			if v <= 0 {
				continue
			}
			if _, alreadyBought := boughtSet[j]; alreadyBought {
				continue
			}
			name := norm.Columns[j]
			if at, seen := scores[name]; seen {
				rec.Items[at].Score += cp.weighted
				continue
			}
			scores[name] = len(rec.Items)
			rec.Items = append(rec.Items, models.ScoredItem{Name: name, Score: cp.weighted})
			if len(rec.Items) >= topN {
				return rec
			}
		}
	}
	return rec
}

func cosine(a, b []float64) float64 {
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
