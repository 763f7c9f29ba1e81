package recommender

import (
	"testing"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/models"
)

// purchases builds a quantity matrix from explicit rows.
func purchases(customerIDs []int64, columns []string, rows [][]float64) *affinity.Matrix {
	m := affinity.New(customerIDs, columns)
	for i := range rows {
		copy(m.Data[i], rows[i])
	}
	return m
}

func TestUserBasedCFNeverRecommendsBoughtItems(t *testing.T) {
	m := purchases(
		[]int64{1, 2, 3},
		[]string{"Bread", "Butter", "Jam"},
		[][]float64{
			{2, 0, 0}, // target: only bread
			{2, 3, 0}, // similar: bread and butter
			{1, 0, 4}, // similar: bread and jam
		},
	)
	rec := UserBasedCF(m, 1, 3)
	if rec.Empty() {
		t.Fatalf("expected recommendations, got the empty sentinel")
	}
	for _, item := range rec.Items {
		if item.Name == "Bread" {
			t.Errorf("recommended an already bought item: %+v", rec.Items)
		}
	}
}

func TestUserBasedCFCapsAtTopN(t *testing.T) {
	m := purchases(
		[]int64{1, 2, 3},
		[]string{"A", "B", "C", "D"},
		[][]float64{
			{5, 0, 0, 0},
			{4, 1, 1, 1},
			{0, 0, 0, 0},
		},
	)
	rec := UserBasedCF(m, 1, 2)
	if len(rec.Items) != 2 {
		t.Errorf("expected 2 recommendations, got %d", len(rec.Items))
	}
}

func TestUserBasedCFTagsTarget(t *testing.T) {
	m := purchases(
		[]int64{1, 2},
		[]string{"A", "B"},
		[][]float64{
			{3, 0},
			{2, 1},
		},
	)
	rec := UserBasedCF(m, 1, 3)
	if rec.Target != "1" || rec.Strategy != StrategyUserBasedCF {
		t.Errorf("recommendation should carry its customer target: %+v", rec)
	}
	if rec := UserBasedCF(m, 99, 3); rec.Target != "99" {
		t.Errorf("miss sentinel should still be tagged: %+v", rec)
	}
}

func TestUserBasedCFMissesYieldEmptySentinel(t *testing.T) {
	m := purchases([]int64{1, 2}, []string{"A"}, [][]float64{{1}, {1}})

	if rec := UserBasedCF(m, 99, 3); !rec.Empty() {
		t.Errorf("unknown customer should yield the empty sentinel, got %+v", rec)
	}

	m2 := purchases([]int64{1, 2}, []string{"A"}, [][]float64{{0}, {1}})
	if rec := UserBasedCF(m2, 1, 3); !rec.Empty() {
		t.Errorf("customer without purchases should yield the empty sentinel, got %+v", rec)
	}
}

func TestItemBasedCFRanksCorrelatedItems(t *testing.T) {
	// Butter follows bread exactly; jam moves against it.
	m := purchases(
		[]int64{1, 2, 3},
		[]string{"Bread", "Butter", "Jam"},
		[][]float64{
			{1, 1, 3},
			{2, 2, 2},
			{3, 3, 1},
		},
	)
	rec := ItemBasedCF(m, "Bread", 2)
	if rec.Empty() {
		t.Fatalf("expected recommendations, got the empty sentinel")
	}
	if rec.Items[0].Name != "Butter" {
		t.Errorf("expected Butter first, got %+v", rec.Items)
	}
}

func TestItemBasedCFSkipsZeroVarianceColumns(t *testing.T) {
	m := purchases(
		[]int64{1, 2},
		[]string{"Bread", "Constant"},
		[][]float64{
			{1, 2},
			{3, 2},
		},
	)
	rec := ItemBasedCF(m, "Bread", 3)
	if !rec.Empty() {
		t.Errorf("a constant column cannot correlate, got %+v", rec)
	}
}

func TestItemBasedCFUnknownItemYieldsEmptySentinel(t *testing.T) {
	m := purchases([]int64{1}, []string{"A"}, [][]float64{{1}})
	if rec := ItemBasedCF(m, "Unknown", 3); !rec.Empty() {
		t.Errorf("unknown item should yield the empty sentinel, got %+v", rec)
	}
}

func TestRuleLookupPicksStrongestRule(t *testing.T) {
	rules := []models.AssociationRule{
		{Antecedents: []string{"Bread"}, Consequents: []string{"Jam"}, Lift: 1.2},
		{Antecedents: []string{"Bread"}, Consequents: []string{"Butter"}, Lift: 2.5},
		{Antecedents: []string{"Milk"}, Consequents: []string{"Cereal"}, Lift: 9.0},
	}
	rec := RuleLookup(rules, "Bread")
	if len(rec.Items) != 1 || rec.Items[0].Name != "Butter" {
		t.Errorf("expected the highest lift consequent, got %+v", rec.Items)
	}
	if rec.Items[0].Score != 2.5 {
		t.Errorf("score should carry the rule lift, got %v", rec.Items[0].Score)
	}
}

func TestRuleLookupMissYieldsEmptySentinel(t *testing.T) {
	rules := []models.AssociationRule{
		{Antecedents: []string{"Bread"}, Consequents: []string{"Butter"}, Lift: 2.5},
	}
	rec := RuleLookup(rules, "Caviar")
	if !rec.Empty() {
		t.Errorf("a miss must be the empty sentinel, got %+v", rec)
	}
	if rec.Target != "Caviar" || rec.Strategy != StrategyRuleLookup {
		t.Errorf("sentinel should still be tagged: %+v", rec)
	}
}

func TestBatchRowsArePadded(t *testing.T) {
	m := purchases(
		[]int64{1, 2, 3},
		[]string{"A", "B"},
		[][]float64{
			{3, 0},
			{2, 1},
			{0, 0},
		},
	)
	rows := BatchUserBased(m)
	if len(rows) != 3 {
		t.Fatalf("expected one row per customer, got %d", len(rows))
	}
	// Customer 1 can only ever be recommended B; the remaining slots stay
	// empty.
	first := rows[0]
	if first.Key != "1" || first.Recommendations[0] != "B" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.Recommendations[1] != "" || first.Recommendations[2] != "" {
		t.Errorf("missing recommendations must stay empty: %+v", first)
	}
}
