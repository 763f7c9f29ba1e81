package mining

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Agence-Glanum/customer-portrait/models"
)

func joinedLine(txID int64, product string) models.JoinedLine {
	return models.JoinedLine{TransactionID: txID, ProductName: product, CategoryName: product + " category"}
}

// fourBaskets is {A,B}, {A,B}, {A,C}, {B}.
func fourBaskets() *TransactionSets {
	joined := []models.JoinedLine{
		joinedLine(1, "A"), joinedLine(1, "B"),
		joinedLine(2, "A"), joinedLine(2, "B"),
		joinedLine(3, "A"), joinedLine(3, "C"),
		joinedLine(4, "B"),
	}
	ts, err := BuildTransactionSets(joined, models.DimensionProduct)
	if err != nil {
		panic(err)
	}
	return ts
}

func findItemSet(itemsets []ItemSet, items ...string) (ItemSet, bool) {
	for _, is := range itemsets {
		if reflect.DeepEqual(is.Items, items) {
			return is, true
		}
	}
	return ItemSet{}, false
}

func TestBuildTransactionSetsDeduplicates(t *testing.T) {
	joined := []models.JoinedLine{
		joinedLine(1, "A"), joinedLine(1, "A"), joinedLine(1, "B"),
	}
	ts, err := BuildTransactionSets(joined, models.DimensionProduct)
	if err != nil {
		t.Fatalf("BuildTransactionSets failed: %v", err)
	}
	itemsets, err := ts.FrequentItemSets(1.0)
	if err != nil {
		t.Fatalf("FrequentItemSets failed: %v", err)
	}
	is, ok := findItemSet(itemsets, "A")
	if !ok || is.Support != 1.0 {
		t.Errorf("repeated item should count once per transaction: %+v", itemsets)
	}
}

func TestSingleItemManyTransactions(t *testing.T) {
	joined := make([]models.JoinedLine, 0, 100)
	for tx := int64(1); tx <= 100; tx++ {
		joined = append(joined, joinedLine(tx, "Coffee"))
	}
	ts, err := BuildTransactionSets(joined, models.DimensionProduct)
	if err != nil {
		t.Fatalf("BuildTransactionSets failed: %v", err)
	}

	itemsets, err := ts.FrequentItemSets(0.5)
	if err != nil {
		t.Fatalf("FrequentItemSets failed: %v", err)
	}
	if len(itemsets) != 1 || itemsets[0].Support != 1.0 {
		t.Fatalf("expected exactly {Coffee} with support 1, got %+v", itemsets)
	}

	// No itemset of size 2 exists, so no rule can be derived.
	rules, err := Rules(itemsets, DefaultRuleMetric, DefaultMinThreshold)
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("expected no rules, got %+v", rules)
	}
}

func TestFrequentItemSetsSupports(t *testing.T) {
	itemsets, err := fourBaskets().FrequentItemSets(0.25)
	if err != nil {
		t.Fatalf("FrequentItemSets failed: %v", err)
	}

	expected := map[string]float64{
		"A": 0.75, "B": 0.75, "C": 0.25,
	}
	for item, support := range expected {
		is, ok := findItemSet(itemsets, item)
		if !ok || is.Support != support {
			t.Errorf("itemset {%s}: got %+v, want support %v", item, is, support)
		}
	}
	if is, ok := findItemSet(itemsets, "A", "B"); !ok || is.Support != 0.5 {
		t.Errorf("itemset {A,B}: got %+v, want support 0.5", is)
	}
	if is, ok := findItemSet(itemsets, "A", "C"); !ok || is.Support != 0.25 {
		t.Errorf("itemset {A,C}: got %+v, want support 0.25", is)
	}
	if _, ok := findItemSet(itemsets, "B", "C"); ok {
		t.Errorf("itemset {B,C} never co-occurs but was mined")
	}
}

func TestFrequentItemSetsValidatesSupport(t *testing.T) {
	var confErr *models.ConfigurationError
	if _, err := fourBaskets().FrequentItemSets(0); !errors.As(err, &confErr) {
		t.Errorf("minSupport 0: expected ConfigurationError, got %v", err)
	}
	if _, err := fourBaskets().FrequentItemSets(1.5); !errors.As(err, &confErr) {
		t.Errorf("minSupport 1.5: expected ConfigurationError, got %v", err)
	}
}

func TestRulesMetrics(t *testing.T) {
	itemsets, err := fourBaskets().FrequentItemSets(0.25)
	if err != nil {
		t.Fatalf("FrequentItemSets failed: %v", err)
	}
	rules, err := Rules(itemsets, "lift", 0.01)
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}

	var aToB, cToA *models.AssociationRule
	for i := range rules {
		r := &rules[i]
		if reflect.DeepEqual(r.Antecedents, []string{"A"}) && reflect.DeepEqual(r.Consequents, []string{"B"}) {
			aToB = r
		}
		if reflect.DeepEqual(r.Antecedents, []string{"C"}) && reflect.DeepEqual(r.Consequents, []string{"A"}) {
			cToA = r
		}
	}
	if aToB == nil || cToA == nil {
		t.Fatalf("expected A=>B and C=>A among %+v", rules)
	}

	if math.Abs(aToB.Confidence-2.0/3.0) > 1e-9 {
		t.Errorf("A=>B confidence = %v, want 2/3", aToB.Confidence)
	}
	if math.Abs(aToB.Lift-8.0/9.0) > 1e-9 {
		t.Errorf("A=>B lift = %v, want 8/9", aToB.Lift)
	}
	if math.Abs(aToB.Leverage-(0.5-0.75*0.75)) > 1e-9 {
		t.Errorf("A=>B leverage = %v", aToB.Leverage)
	}

	// C always implies A, so conviction diverges.
	if cToA.Confidence != 1 {
		t.Errorf("C=>A confidence = %v, want 1", cToA.Confidence)
	}
	if !math.IsInf(cToA.Conviction, 1) {
		t.Errorf("C=>A conviction = %v, want +Inf", cToA.Conviction)
	}
}

func TestRulesAntecedentsDisjointFromConsequents(t *testing.T) {
	itemsets, err := fourBaskets().FrequentItemSets(0.25)
	if err != nil {
		t.Fatalf("FrequentItemSets failed: %v", err)
	}
	rules, err := Rules(itemsets, "support", 0)
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}
	for _, r := range rules {
		for _, a := range r.Antecedents {
			for _, c := range r.Consequents {
				if a == c {
					t.Errorf("rule shares item %q on both sides: %+v", a, r)
				}
			}
		}
	}
}

func TestRulesRejectsUnknownMetric(t *testing.T) {
	var confErr *models.ConfigurationError
	if _, err := Rules(nil, "novelty", 0.1); !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestSortRules(t *testing.T) {
	rules := []models.AssociationRule{
		{Antecedents: []string{"A"}, Lift: 1, Confidence: 0.9},
		{Antecedents: []string{"B"}, Lift: 3, Confidence: 0.1},
		{Antecedents: []string{"C"}, Lift: 2, Confidence: 0.5},
	}
	if err := SortRules(rules, "lift"); err != nil {
		t.Fatalf("SortRules failed: %v", err)
	}
	if rules[0].Antecedents[0] != "B" || rules[2].Antecedents[0] != "A" {
		t.Errorf("rules not sorted by lift: %+v", rules)
	}

	if err := SortRules(rules, "support"); err == nil {
		t.Errorf("expected an error for an unsupported sort key")
	}
}
