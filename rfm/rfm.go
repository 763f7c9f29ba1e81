package rfm

import (
	"math"
	"sort"
	"time"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// Compute derives one RFMRecord per customer from the family's header table.
//
// Recency is the integer number of days between the snapshot end date and the
// customer's most recent transaction, Frequency the number of transactions,
// Monetary the sum of transaction totals. R, F and M are quintile scores over
// the whole population: R on an inverted scale (most recent quintile scores
// 5), F and M on a direct one. Boundary values fall into the lower-scoring
// bucket (<= against each ascending cut point).
//
// Headers without a customer are skipped. An input with no remaining
// customers yields an EmptyPopulationError: quintiles over nothing are
// meaningless, and the caller should report "no data" instead.
func Compute(headers []models.SalesHeader, snapshotEnd time.Time) ([]models.RFMRecord, error) {
	type accum struct {
		lastDate time.Time
		count    int
		monetary float64
	}
	accums := make(map[int64]*accum)
	for _, h := range headers {
		if !h.CustomerID.Valid {
			continue
		}
		a, ok := accums[h.CustomerID.Int64]
		if !ok {
			a = &accum{}
			accums[h.CustomerID.Int64] = a
		}
		if h.Date.After(a.lastDate) {
			a.lastDate = h.Date
		}
		a.count++
		a.monetary += h.TotalPrice
	}
	if len(accums) == 0 {
		return nil, models.NewEmptyPopulationError("no customers with transactions for RFM scoring")
	}

	records := make([]models.RFMRecord, 0, len(accums))
	for customerID, a := range accums {
		records = append(records, models.RFMRecord{
			CustomerID: customerID,
			Recency:    int(snapshotEnd.Sub(a.lastDate).Hours() / 24),
			Frequency:  a.count,
			Monetary:   a.monetary,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CustomerID < records[j].CustomerID })

	recency := make([]float64, len(records))
	frequency := make([]float64, len(records))
	monetary := make([]float64, len(records))
	for i, r := range records {
		recency[i] = float64(r.Recency)
		frequency[i] = float64(r.Frequency)
		monetary[i] = r.Monetary
	}
	rCuts := quintiles(recency)
	fCuts := quintiles(frequency)
	mCuts := quintiles(monetary)

	for i := range records {
		records[i].R = rScore(float64(records[i].Recency), rCuts)
		records[i].F = fmScore(float64(records[i].Frequency), fCuts)
		records[i].M = fmScore(records[i].Monetary, mCuts)
		records[i].Segment1 = labelSegment1(records[i].R*100 + records[i].F*10 + records[i].M)
		records[i].Segment2 = labelSegment2(records[i].R, records[i].F)
	}
	return records, nil
}

// quintiles returns the 20th, 40th, 60th and 80th percentile cut points,
// with linear interpolation between order statistics.
func quintiles(values []float64) [4]float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return [4]float64{
		percentile(sorted, 0.2),
		percentile(sorted, 0.4),
		percentile(sorted, 0.6),
		percentile(sorted, 0.8),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// rScore is inverted: the most recent quintile scores 5.
func rScore(x float64, cuts [4]float64) int {
	switch {
	case x <= cuts[0]:
		return 5
	case x <= cuts[1]:
		return 4
	case x <= cuts[2]:
		return 3
	case x <= cuts[3]:
		return 2
	default:
		return 1
	}
}

func fmScore(x float64, cuts [4]float64) int {
	switch {
	case x <= cuts[0]:
		return 1
	case x <= cuts[1]:
		return 2
	case x <= cuts[2]:
		return 3
	case x <= cuts[3]:
		return 4
	default:
		return 5
	}
}
