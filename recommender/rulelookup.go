package recommender

import (
	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/mining"
	"github.com/Agence-Glanum/customer-portrait/models"
)

var log = logging.MustGetLogger("log")

// DefaultTopN is how many recommendations a strategy returns unless told
// otherwise.
const DefaultTopN = 3

const (
	StrategyRuleLookup  = "rule-lookup"
	StrategyUserBasedCF = "user-based-cf"
	StrategyItemBasedCF = "item-based-cf"
)

// RuleLookup returns the consequents of the strongest rule (by lift) whose
// antecedents contain the given item. An item with no matching rule yields
// the empty-recommendation sentinel, never an error.
func RuleLookup(rules []models.AssociationRule, item string) models.Recommendation {
	rec := models.Recommendation{Strategy: StrategyRuleLookup, Target: item}

	sorted := append([]models.AssociationRule(nil), rules...)
	if err := mining.SortRules(sorted, "lift"); err != nil {
		// "lift" is always a valid sort key.
		log.Errorf("sorting rules for lookup: %v", err)
		return rec
	}
	for _, rule := range sorted {
		if !containsItem(rule.Antecedents, item) {
			continue
		}
		for _, consequent := range rule.Consequents {
			rec.Items = append(rec.Items, models.ScoredItem{Name: consequent, Score: rule.Lift})
		}
		return rec
	}
	return rec
}

func containsItem(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
