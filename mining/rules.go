package mining

import (
	"math"
	"sort"
	"strings"

	"github.com/Agence-Glanum/customer-portrait/models"
)

const (
	DefaultMinSupport   = 0.001
	DefaultRuleMetric   = "lift"
	DefaultMinThreshold = 0.01
)

// metricValue extracts the named strength metric from a rule.
func metricValue(r models.AssociationRule, metric string) (float64, bool) {
	switch metric {
	case "support":
		return r.Support, true
	case "confidence":
		return r.Confidence, true
	case "lift":
		return r.Lift, true
	case "leverage":
		return r.Leverage, true
	case "conviction":
		return r.Conviction, true
	case "zhangs_metric":
		return r.ZhangsMetric, true
	}
	return 0, false
}

// Rules derives directional association rules from the mined itemsets,
// keeping rules whose value for the chosen metric reaches minThreshold.
// Every frequent itemset of size >= 2 contributes one rule per non-empty
// proper subset (antecedent ⇒ complement), so antecedent and consequent are
// disjoint by construction.
func Rules(itemsets []ItemSet, metric string, minThreshold float64) ([]models.AssociationRule, error) {
	if _, ok := metricValue(models.AssociationRule{}, metric); !ok {
		return nil, models.NewConfigurationError("unknown rule metric %q", metric)
	}

	supports := make(map[string]float64, len(itemsets))
	for _, is := range itemsets {
		supports[itemSetKey(is.Items)] = is.Support
	}

	var rules []models.AssociationRule
	for _, is := range itemsets {
		size := len(is.Items)
		if size < 2 {
			continue
		}
		for mask := 1; mask < (1<<size)-1; mask++ {
			var antecedents, consequents []string
			for bit := 0; bit < size; bit++ {
				if mask&(1<<bit) != 0 {
					antecedents = append(antecedents, is.Items[bit])
				} else {
					consequents = append(consequents, is.Items[bit])
				}
			}
			supportA := supports[itemSetKey(antecedents)]
			supportC := supports[itemSetKey(consequents)]
			if supportA == 0 || supportC == 0 {
				// Cannot happen for frequent itemsets: every subset of a
				// frequent itemset is frequent.
				continue
			}
			rule := buildRule(antecedents, consequents, is.Support, supportA, supportC)
			if value, _ := metricValue(rule, metric); value >= minThreshold {
				rules = append(rules, rule)
			}
		}
	}
	return rules, nil
}

func buildRule(antecedents, consequents []string, support, supportA, supportC float64) models.AssociationRule {
	confidence := support / supportA
	rule := models.AssociationRule{
		Antecedents: antecedents,
		Consequents: consequents,
		Support:     support,
		Confidence:  confidence,
		Lift:        confidence / supportC,
		Leverage:    support - supportA*supportC,
	}
	if confidence < 1 {
		rule.Conviction = (1 - supportC) / (1 - confidence)
	} else {
		rule.Conviction = math.Inf(1)
	}
	if denom := math.Max(support*(1-supportA), supportA*(supportC-support)); denom > 0 {
		rule.ZhangsMetric = rule.Leverage / denom
	}
	return rule
}

// SortRules stably orders rules by confidence or lift, descending. Ties keep
// their insertion order.
func SortRules(rules []models.AssociationRule, by string) error {
	switch by {
	case "confidence":
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].Confidence > rules[j].Confidence })
	case "lift":
		sort.SliceStable(rules, func(i, j int) bool { return rules[i].Lift > rules[j].Lift })
	default:
		return models.NewConfigurationError("rules can be sorted by confidence or lift, not %q", by)
	}
	return nil
}

func itemSetKey(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
