package pipeline

import (
	"reflect"
	"testing"

	"github.com/Agence-Glanum/customer-portrait/models"
)

func TestComputeBasketStats(t *testing.T) {
	joined := []models.JoinedLine{
		{TransactionID: 1, ProductName: "Espresso", CategoryName: "Drinks", Quantity: 2, LineTotal: 6},
		{TransactionID: 1, ProductName: "Croissant", CategoryName: "Bakery", Quantity: 1, LineTotal: 4},
		{TransactionID: 2, ProductName: "Espresso", CategoryName: "Drinks", Quantity: 1, LineTotal: 3},
	}
	stats := ComputeBasketStats(joined)

	expectedSizes := []BasketSize{
		{TransactionID: 1, Items: 2},
		{TransactionID: 2, Items: 1},
	}
	if !reflect.DeepEqual(stats.BasketSizes, expectedSizes) {
		t.Errorf("basket sizes mismatch:\ngot  %+v\nwant %+v", stats.BasketSizes, expectedSizes)
	}

	if len(stats.TopProductsByQuantity) != 2 {
		t.Fatalf("expected both products ranked, got %+v", stats.TopProductsByQuantity)
	}
	if stats.TopProductsByQuantity[0] != (RankedItem{Name: "Espresso", Value: 3}) {
		t.Errorf("top product by quantity: %+v", stats.TopProductsByQuantity[0])
	}
	if stats.FlopProductsByQuantity[len(stats.FlopProductsByQuantity)-1] != (RankedItem{Name: "Croissant", Value: 1}) {
		t.Errorf("flop product by quantity: %+v", stats.FlopProductsByQuantity)
	}
	if stats.TopCategoriesByRevenue[0] != (RankedItem{Name: "Drinks", Value: 9}) {
		t.Errorf("top category by revenue: %+v", stats.TopCategoriesByRevenue[0])
	}
}

func TestRankBreaksTiesByName(t *testing.T) {
	top, _ := rank(map[string]float64{"b": 1, "a": 1, "c": 2})
	expected := []RankedItem{{Name: "c", Value: 2}, {Name: "a", Value: 1}, {Name: "b", Value: 1}}
	if !reflect.DeepEqual(top, expected) {
		t.Errorf("ranking mismatch:\ngot  %+v\nwant %+v", top, expected)
	}
}
