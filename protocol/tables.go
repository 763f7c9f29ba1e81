package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/joiner"
	"github.com/Agence-Glanum/customer-portrait/models"
	"github.com/Agence-Glanum/customer-portrait/pipeline"
	"github.com/Agence-Glanum/customer-portrait/recommender"
)

// TableBatch carries one derived table of a finished report, in the same
// column-oriented shape the rest of the system speaks.
type TableBatch struct {
	JobID       string          `json:"job_id"`
	Name        string          `json:"name"`
	ColumnNames []string        `json:"column_names"`
	Rows        [][]interface{} `json:"rows"`
}

func NewTableBatch(jobID, name string, columnNames []string, rows [][]interface{}) *TableBatch {
	return &TableBatch{
		JobID:       jobID,
		Name:        name,
		ColumnNames: columnNames,
		Rows:        rows,
	}
}

func (tb *TableBatch) Marshal() ([]byte, error) {
	data, err := json.Marshal(tb)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TableBatch: %v", err)
	}
	return data, nil
}

func TableBatchFromBytes(data []byte) (*TableBatch, error) {
	var tb TableBatch
	if err := json.Unmarshal(data, &tb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal TableBatch: %v", err)
	}
	return &tb, nil
}

// ReportTables flattens a finished report into its table batches, one per
// derived table, in a fixed order.
func ReportTables(jobID string, r *pipeline.Report) []*TableBatch {
	tables := []*TableBatch{
		rfmTable(jobID, r.RFM),
		cltvTable(jobID, r.CLTV),
		overviewTable(jobID, r.Overview),
		clustersTable(jobID, "rfm_clusters", r.RFMClusters),
		clustersTable(jobID, "product_clusters", r.ProductClusters),
		clustersTable(jobID, "category_clusters", r.CategoryClusters),
		rulesTable(jobID, "product_rules", r.ProductRules),
		rulesTable(jobID, "category_rules", r.CategoryRules),
		recommendationsTable(jobID, "user_product_recommendations", "customer_id", r.UserProductRecommendations),
		recommendationsTable(jobID, "user_category_recommendations", "customer_id", r.UserCategoryRecommendations),
		recommendationsTable(jobID, "item_product_recommendations", "item", r.ItemProductRecommendations),
		recommendationsTable(jobID, "item_category_recommendations", "item", r.ItemCategoryRecommendations),
		basketSizesTable(jobID, r.BasketStats),
		categoryTreeTable(jobID, r.CategoryTree),
	}
	tables = append(tables, rankingTables(jobID, r.BasketStats)...)
	return tables
}

func rfmTable(jobID string, records []models.RFMRecord) *TableBatch {
	cols := []string{"customer_id", "recency", "frequency", "monetary", "r", "f", "m", "rfm_score", "segment_1", "segment_2"}
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.CustomerID, r.Recency, r.Frequency, r.Monetary,
			r.R, r.F, r.M, r.R*100 + r.F*10 + r.M, r.Segment1, r.Segment2,
		})
	}
	return NewTableBatch(jobID, "rfm", cols, rows)
}

func cltvTable(jobID string, records []models.CLTVRecord) *TableBatch {
	cols := []string{"customer_id", "age", "num_transactions", "quantity", "total_revenue", "aov", "profit_margin", "cltv"}
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.CustomerID, r.Age, r.NumTransactions, r.Quantity, r.TotalRevenue, r.AOV, r.ProfitMargin, r.CLTV,
		})
	}
	return NewTableBatch(jobID, "cltv", cols, rows)
}

func overviewTable(jobID string, records []pipeline.CustomerOverview) *TableBatch {
	cols := []string{"customer_id", "age", "num_transactions", "quantity", "total_revenue", "aov", "profit_margin", "cltv", "segment_1", "segment_2"}
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.CustomerID, r.Age, r.NumTransactions, r.Quantity, r.TotalRevenue, r.AOV, r.ProfitMargin, r.CLTV,
			r.Segment1, r.Segment2,
		})
	}
	return NewTableBatch(jobID, "customer_overview", cols, rows)
}

func clustersTable(jobID, name string, a *affinity.Assignment) *TableBatch {
	cols := []string{"customer_id", "cluster"}
	rows := make([][]interface{}, 0, len(a.Labels))
	ids := make([]int64, 0, len(a.Labels))
	for id := range a.Labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rows = append(rows, []interface{}{id, a.Labels[id]})
	}
	return NewTableBatch(jobID, name, cols, rows)
}

func rulesTable(jobID, name string, rules []models.AssociationRule) *TableBatch {
	cols := []string{"antecedents", "consequents", "support", "confidence", "lift", "leverage", "conviction", "zhangs_metric"}
	rows := make([][]interface{}, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []interface{}{
			strings.Join(r.Antecedents, ", "), strings.Join(r.Consequents, ", "),
			r.Support, r.Confidence, r.Lift, r.Leverage, r.Conviction, r.ZhangsMetric,
		})
	}
	return NewTableBatch(jobID, name, cols, rows)
}

func recommendationsTable(jobID, name, keyColumn string, batch []recommender.BatchRow) *TableBatch {
	cols := []string{keyColumn, "recommendation_1", "recommendation_2", "recommendation_3"}
	rows := make([][]interface{}, 0, len(batch))
	for _, b := range batch {
		rows = append(rows, []interface{}{b.Key, b.Recommendations[0], b.Recommendations[1], b.Recommendations[2]})
	}
	return NewTableBatch(jobID, name, cols, rows)
}

func basketSizesTable(jobID string, stats pipeline.BasketStats) *TableBatch {
	cols := []string{"transaction_id", "items"}
	rows := make([][]interface{}, 0, len(stats.BasketSizes))
	for _, b := range stats.BasketSizes {
		rows = append(rows, []interface{}{b.TransactionID, b.Items})
	}
	return NewTableBatch(jobID, "basket_sizes", cols, rows)
}

func rankingTables(jobID string, stats pipeline.BasketStats) []*TableBatch {
	rankings := []struct {
		name  string
		items []pipeline.RankedItem
	}{
		{"top_products_by_quantity", stats.TopProductsByQuantity},
		{"flop_products_by_quantity", stats.FlopProductsByQuantity},
		{"top_products_by_revenue", stats.TopProductsByRevenue},
		{"flop_products_by_revenue", stats.FlopProductsByRevenue},
		{"top_categories_by_quantity", stats.TopCategoriesByQuantity},
		{"flop_categories_by_quantity", stats.FlopCategoriesByQuantity},
		{"top_categories_by_revenue", stats.TopCategoriesByRevenue},
		{"flop_categories_by_revenue", stats.FlopCategoriesByRevenue},
	}
	tables := make([]*TableBatch, 0, len(rankings))
	for _, ranking := range rankings {
		rows := make([][]interface{}, 0, len(ranking.items))
		for _, item := range ranking.items {
			rows = append(rows, []interface{}{item.Name, item.Value})
		}
		tables = append(tables, NewTableBatch(jobID, ranking.name, []string{"name", "value"}, rows))
	}
	return tables
}

func categoryTreeTable(jobID string, tree []joiner.CategoryNode) *TableBatch {
	cols := []string{"category", "parent", "products"}
	rows := make([][]interface{}, 0, len(tree))
	for _, n := range tree {
		rows = append(rows, []interface{}{n.CategoryName, n.ParentName, strings.Join(n.ProductNames, ", ")})
	}
	return NewTableBatch(jobID, "category_tree", cols, rows)
}
