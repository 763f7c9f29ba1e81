package affinity

import (
	"sort"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// Matrix is a customer × item spend matrix: one row per customer, one column
// per product or category name, cells holding the summed metric. Rows and
// columns are sorted so the same input always pivots to the same matrix.
type Matrix struct {
	CustomerIDs []int64
	Columns     []string
	Data        [][]float64

	rowIndex map[int64]int
	colIndex map[string]int
}

// Build pivots the joined line view into a spend matrix over the requested
// item dimension and metric. Missing (customer, item) pairs are zero-filled.
// Lines without a customer are skipped.
func Build(joined []models.JoinedLine, dim models.Dimension, metric models.Metric) (*Matrix, error) {
	type cell struct {
		customer int64
		item     string
	}
	sums := make(map[cell]float64)
	customerSet := make(map[int64]struct{})
	itemSet := make(map[string]struct{})

	for _, line := range joined {
		if !line.CustomerID.Valid {
			continue
		}
		item := line.ProductName
		if dim == models.DimensionCategory {
			item = line.CategoryName
		}
		value := line.Quantity
		if metric == models.MetricTotalPrice {
			value = line.LineTotal
		}
		sums[cell{line.CustomerID.Int64, item}] += value
		customerSet[line.CustomerID.Int64] = struct{}{}
		itemSet[item] = struct{}{}
	}
	if len(customerSet) == 0 {
		return nil, models.NewEmptyPopulationError("no customer lines to pivot into a spend matrix")
	}

	customerIDs := make([]int64, 0, len(customerSet))
	for id := range customerSet {
		customerIDs = append(customerIDs, id)
	}
	sort.Slice(customerIDs, func(i, j int) bool { return customerIDs[i] < customerIDs[j] })

	columns := make([]string, 0, len(itemSet))
	for item := range itemSet {
		columns = append(columns, item)
	}
	sort.Strings(columns)

	m := New(customerIDs, columns)
	for i, id := range customerIDs {
		for j, item := range columns {
			m.Data[i][j] = sums[cell{id, item}]
		}
	}
	return m, nil
}

// New allocates a zero matrix over the given row and column labels.
func New(customerIDs []int64, columns []string) *Matrix {
	data := make([][]float64, len(customerIDs))
	for i := range data {
		data[i] = make([]float64, len(columns))
	}
	m := &Matrix{CustomerIDs: customerIDs, Columns: columns, Data: data}
	m.buildIndexes()
	return m
}

func (m *Matrix) buildIndexes() {
	m.rowIndex = make(map[int64]int, len(m.CustomerIDs))
	for i, id := range m.CustomerIDs {
		m.rowIndex[id] = i
	}
	m.colIndex = make(map[string]int, len(m.Columns))
	for j, col := range m.Columns {
		m.colIndex[col] = j
	}
}

func (m *Matrix) RowIndex(customerID int64) (int, bool) {
	i, ok := m.rowIndex[customerID]
	return i, ok
}

func (m *Matrix) ColumnIndex(item string) (int, bool) {
	j, ok := m.colIndex[item]
	return j, ok
}

// Normalize returns a copy with every column min-max scaled to [0, 1].
// Constant columns scale to zero.
func (m *Matrix) Normalize() *Matrix {
	out := New(m.CustomerIDs, m.Columns)
	for j := range m.Columns {
		min, max := m.Data[0][j], m.Data[0][j]
		for i := range m.Data {
			if m.Data[i][j] < min {
				min = m.Data[i][j]
			}
			if m.Data[i][j] > max {
				max = m.Data[i][j]
			}
		}
		span := max - min
		for i := range m.Data {
			if span > 0 {
				out.Data[i][j] = (m.Data[i][j] - min) / span
			}
		}
	}
	return out
}

// Column returns a copy of one column vector.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.Data))
	for i := range m.Data {
		col[i] = m.Data[i][j]
	}
	return col
}
