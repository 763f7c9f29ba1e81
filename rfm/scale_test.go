package rfm

import (
	"errors"
	"math"
	"testing"

	"github.com/Agence-Glanum/customer-portrait/models"
)

func TestScaleFeaturesStandardizes(t *testing.T) {
	records := []models.RFMRecord{
		{CustomerID: 1, Recency: 10, Frequency: 2, Monetary: 100},
		{CustomerID: 2, Recency: 20, Frequency: 4, Monetary: 200},
		{CustomerID: 3, Recency: 30, Frequency: 6, Monetary: 300},
	}
	m, err := ScaleFeatures(records)
	if err != nil {
		t.Fatalf("ScaleFeatures failed: %v", err)
	}
	if len(m.CustomerIDs) != 3 || len(m.Columns) != 3 {
		t.Fatalf("unexpected matrix shape: %d x %d", len(m.CustomerIDs), len(m.Columns))
	}

	for j := range m.Columns {
		mean, variance := 0.0, 0.0
		for i := range m.Data {
			mean += m.Data[i][j]
		}
		mean /= float64(len(m.Data))
		for i := range m.Data {
			d := m.Data[i][j] - mean
			variance += d * d
		}
		variance /= float64(len(m.Data))
		if math.Abs(mean) > 1e-9 || math.Abs(variance-1) > 1e-9 {
			t.Errorf("column %s not standardized: mean %v variance %v", m.Columns[j], mean, variance)
		}
	}
}

func TestScaleFeaturesDropsOutliers(t *testing.T) {
	records := make([]models.RFMRecord, 0, 21)
	for i := int64(1); i <= 20; i++ {
		records = append(records, models.RFMRecord{CustomerID: i, Recency: 10, Frequency: 2, Monetary: 100})
	}
	records = append(records, models.RFMRecord{CustomerID: 99, Recency: 10, Frequency: 2, Monetary: 100000})

	m, err := ScaleFeatures(records)
	if err != nil {
		t.Fatalf("ScaleFeatures failed: %v", err)
	}
	if _, ok := m.RowIndex(99); ok {
		t.Errorf("extreme spender should be filtered as an outlier")
	}
	if len(m.CustomerIDs) != 20 {
		t.Errorf("expected 20 customers kept, got %d", len(m.CustomerIDs))
	}
}

func TestScaleFeaturesEmptyInput(t *testing.T) {
	var emptyErr *models.EmptyPopulationError
	if _, err := ScaleFeatures(nil); !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyPopulationError, got %v", err)
	}
}
