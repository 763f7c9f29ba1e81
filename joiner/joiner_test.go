package joiner

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Agence-Glanum/customer-portrait/models"
)

var testDate = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

func testTables() ([]models.SalesHeader, []models.SalesLine, []models.Product, []models.Category) {
	headers := []models.SalesHeader{
		{TransactionID: 1, CustomerID: sql.NullInt64{Int64: 7, Valid: true}, Date: testDate, TotalPrice: 30},
	}
	lines := []models.SalesLine{
		{TransactionID: 1, ProductID: 10, Quantity: 2, TotalPrice: 20},
		{TransactionID: 1, ProductID: 11, Quantity: 1, TotalPrice: 10},
	}
	products := []models.Product{
		{ID: 10, Name: "Espresso", CategoryID: 100},
		{ID: 11, Name: "Croissant", CategoryID: 101},
	}
	categories := []models.Category{
		{ID: 100, Name: "Drinks"},
		{ID: 101, Name: "Bakery", ParentID: sql.NullInt64{Int64: 100, Valid: true}},
	}
	return headers, lines, products, categories
}

func TestJoinEnrichesLines(t *testing.T) {
	headers, lines, products, categories := testTables()
	joined, err := Join(headers, lines, products, categories)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if len(joined) != 2 {
		t.Fatalf("expected 2 joined lines, got %d", len(joined))
	}

	first := joined[0]
	if first.ProductName != "Espresso" || first.CategoryName != "Drinks" {
		t.Errorf("line not enriched: %+v", first)
	}
	if first.CustomerID.Int64 != 7 || first.HeaderTotal != 30 || !first.Date.Equal(testDate) {
		t.Errorf("header attributes not propagated: %+v", first)
	}
}

func TestJoinDropsOrphans(t *testing.T) {
	headers, lines, products, categories := testTables()
	lines = append(lines,
		models.SalesLine{TransactionID: 99, ProductID: 10}, // no header
		models.SalesLine{TransactionID: 1, ProductID: 99},  // no product
	)
	products = append(products, models.Product{ID: 12, Name: "Mystery", CategoryID: 999})
	lines = append(lines, models.SalesLine{TransactionID: 1, ProductID: 12}) // no category

	joined, err := Join(headers, lines, products, categories)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if len(joined) != 2 {
		t.Errorf("expected orphan lines to be dropped, got %d joined lines", len(joined))
	}
}

func TestJoinNilTableIsConfigurationError(t *testing.T) {
	headers, lines, products, _ := testTables()
	_, err := Join(headers, lines, products, nil)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestCategoryTree(t *testing.T) {
	_, _, products, categories := testTables()
	tree := CategoryTree(categories, products)

	expected := []CategoryNode{
		{CategoryName: "Bakery", ParentName: "Drinks", ProductNames: []string{"Croissant"}},
		{CategoryName: "Drinks", ParentName: "", ProductNames: []string{"Espresso"}},
	}
	if !reflect.DeepEqual(tree, expected) {
		t.Errorf("tree mismatch:\ngot  %+v\nwant %+v", tree, expected)
	}
}
