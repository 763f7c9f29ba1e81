package pipeline

import (
	"sort"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// statsDepth is how many entries the top and flop rankings keep.
const statsDepth = 10

// BasketSize is the number of line items in one transaction.
type BasketSize struct {
	TransactionID int64
	Items         int
}

// RankedItem is one entry of a top/flop ranking.
type RankedItem struct {
	Name  string
	Value float64
}

// BasketStats are the descriptive tables of the market-basket overview:
// basket sizes and the best and worst selling products and categories, by
// quantity and by revenue.
type BasketStats struct {
	BasketSizes []BasketSize

	TopProductsByQuantity  []RankedItem
	FlopProductsByQuantity []RankedItem
	TopProductsByRevenue   []RankedItem
	FlopProductsByRevenue  []RankedItem

	TopCategoriesByQuantity  []RankedItem
	FlopCategoriesByQuantity []RankedItem
	TopCategoriesByRevenue   []RankedItem
	FlopCategoriesByRevenue  []RankedItem
}

// ComputeBasketStats aggregates the joined view into the basket overview
// tables. Rankings are sorted by value descending, names breaking ties.
func ComputeBasketStats(joined []models.JoinedLine) BasketStats {
	sizes := make(map[int64]int)
	prodQty := make(map[string]float64)
	prodRev := make(map[string]float64)
	catQty := make(map[string]float64)
	catRev := make(map[string]float64)
	for _, line := range joined {
		sizes[line.TransactionID]++
		prodQty[line.ProductName] += line.Quantity
		prodRev[line.ProductName] += line.LineTotal
		catQty[line.CategoryName] += line.Quantity
		catRev[line.CategoryName] += line.LineTotal
	}

	basketSizes := make([]BasketSize, 0, len(sizes))
	for id, n := range sizes {
		basketSizes = append(basketSizes, BasketSize{TransactionID: id, Items: n})
	}
	sort.Slice(basketSizes, func(i, j int) bool { return basketSizes[i].TransactionID < basketSizes[j].TransactionID })

	stats := BasketStats{BasketSizes: basketSizes}
	stats.TopProductsByQuantity, stats.FlopProductsByQuantity = rank(prodQty)
	stats.TopProductsByRevenue, stats.FlopProductsByRevenue = rank(prodRev)
	stats.TopCategoriesByQuantity, stats.FlopCategoriesByQuantity = rank(catQty)
	stats.TopCategoriesByRevenue, stats.FlopCategoriesByRevenue = rank(catRev)
	return stats
}

func rank(values map[string]float64) (top, flop []RankedItem) {
	ranked := make([]RankedItem, 0, len(values))
	for name, value := range values {
		ranked = append(ranked, RankedItem{Name: name, Value: value})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Name < ranked[j].Name
	})

	depth := statsDepth
	if depth > len(ranked) {
		depth = len(ranked)
	}
	top = append(top, ranked[:depth]...)
	flop = append(flop, ranked[len(ranked)-depth:]...)
	return top, flop
}
