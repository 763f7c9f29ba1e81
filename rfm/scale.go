package rfm

import (
	"math"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/models"
)

// ScaleFeatures prepares RFM records for ML clustering: customers whose
// Recency, Frequency or Monetary value lies more than three standard
// deviations from the population mean are dropped as outliers, and the
// surviving features are standardized to zero mean and unit variance. The
// result plugs directly into the affinity clustering strategies.
func ScaleFeatures(records []models.RFMRecord) (*affinity.Matrix, error) {
	if len(records) == 0 {
		return nil, models.NewEmptyPopulationError("no RFM records to scale")
	}

	features := make([][]float64, len(records))
	for i, r := range records {
		features[i] = []float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
	}
	means, stddevs := columnStats(features)

	kept := make([]int, 0, len(records))
	for i, row := range features {
		outlier := false
		for j, v := range row {
			if stddevs[j] > 0 && math.Abs(v-means[j])/stddevs[j] >= 3 {
				outlier = true
				break
			}
		}
		if !outlier {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, models.NewEmptyPopulationError("every RFM record was filtered as an outlier")
	}

	keptFeatures := make([][]float64, len(kept))
	customerIDs := make([]int64, len(kept))
	for i, idx := range kept {
		keptFeatures[i] = features[idx]
		customerIDs[i] = records[idx].CustomerID
	}
	means, stddevs = columnStats(keptFeatures)

	m := affinity.New(customerIDs, []string{"Recency", "Frequency", "Monetary"})
	for i, row := range keptFeatures {
		for j, v := range row {
			if stddevs[j] > 0 {
				m.Data[i][j] = (v - means[j]) / stddevs[j]
			}
		}
	}
	return m, nil
}

func columnStats(rows [][]float64) (means, stddevs []float64) {
	cols := len(rows[0])
	means = make([]float64, cols)
	stddevs = make([]float64, cols)
	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(rows))
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stddevs[j] += d * d
		}
	}
	for j := range stddevs {
		stddevs[j] = math.Sqrt(stddevs[j] / float64(len(rows)))
	}
	return means, stddevs
}
