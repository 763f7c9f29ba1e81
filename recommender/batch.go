package recommender

import (
	"strconv"

	"github.com/Agence-Glanum/customer-portrait/affinity"
)

// BatchWidth is the fixed number of recommendation slots per batch row.
// Rows with fewer recommendations are padded with the empty marker.
const BatchWidth = 3

// BatchRow is one row of a precomputed recommendation table, keyed by
// customer ID or item name depending on the strategy.
type BatchRow struct {
	Key             string
	Recommendations [BatchWidth]string
}

// BatchUserBased computes the user-based CF table for every customer in the
// matrix, in row order.
func BatchUserBased(m *affinity.Matrix) []BatchRow {
	rows := make([]BatchRow, 0, len(m.CustomerIDs))
	for _, customerID := range m.CustomerIDs {
		rec := UserBasedCF(m, customerID, BatchWidth)
		row := BatchRow{Key: strconv.FormatInt(customerID, 10)}
		for i := 0; i < len(rec.Items) && i < BatchWidth; i++ {
			row.Recommendations[i] = rec.Items[i].Name
		}
		rows = append(rows, row)
	}
	return rows
}

// BatchItemBased computes the item-based CF table for every item column in
// the matrix, in column order.
func BatchItemBased(m *affinity.Matrix) []BatchRow {
	rows := make([]BatchRow, 0, len(m.Columns))
	for _, item := range m.Columns {
		rec := ItemBasedCF(m, item, BatchWidth)
		row := BatchRow{Key: item}
		for i := 0; i < len(rec.Items) && i < BatchWidth; i++ {
			row.Recommendations[i] = rec.Items[i].Name
		}
		rows = append(rows, row)
	}
	return rows
}
