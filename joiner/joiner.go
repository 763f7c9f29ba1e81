package joiner

import (
	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/models"
)

var log = logging.MustGetLogger("log")

// Join builds the flat per-line view of a sales family: every sales line is
// inner-joined with its header on the transaction ID and enriched with the
// product and category it references. Lines without a matching header, and
// headers without lines, are dropped; a line pointing at an unknown product
// or category is dropped the same way.
//
// A nil headers, lines, products or categories table is a configuration
// error: the caller wired the wrong schema, there is nothing to recover.
func Join(
	headers []models.SalesHeader,
	lines []models.SalesLine,
	products []models.Product,
	categories []models.Category,
) ([]models.JoinedLine, error) {
	if headers == nil || lines == nil || products == nil || categories == nil {
		return nil, models.NewConfigurationError("join requires headers, lines, products and categories tables")
	}

	headersByID := make(map[int64]*models.SalesHeader, len(headers))
	for i := range headers {
		headersByID[headers[i].TransactionID] = &headers[i]
	}
	productsByID := make(map[int64]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}
	categoriesByID := make(map[int64]*models.Category, len(categories))
	for i := range categories {
		categoriesByID[categories[i].ID] = &categories[i]
	}

	joined := make([]models.JoinedLine, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		header, ok := headersByID[line.TransactionID]
		if !ok {
			dropped++
			continue
		}
		product, ok := productsByID[line.ProductID]
		if !ok {
			dropped++
			continue
		}
		category, ok := categoriesByID[product.CategoryID]
		if !ok {
			dropped++
			continue
		}
		joined = append(joined, models.JoinedLine{
			TransactionID: line.TransactionID,
			CustomerID:    header.CustomerID,
			Date:          header.Date,
			HeaderTotal:   header.TotalPrice,
			ProductID:     product.ID,
			ProductName:   product.Name,
			CategoryID:    category.ID,
			CategoryName:  category.Name,
			Quantity:      line.Quantity,
			LineTotal:     line.TotalPrice,
		})
	}
	if dropped > 0 {
		log.Debugf("Join dropped %d orphan lines out of %d", dropped, len(lines))
	}
	return joined, nil
}
