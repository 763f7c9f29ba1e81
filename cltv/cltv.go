package cltv

import (
	"sort"
	"time"

	"github.com/Agence-Glanum/customer-portrait/models"
)

// DefaultMarginFactor is the provisional profit-margin factor applied to the
// lifetime-value estimate. It is a business assumption, not a derived value,
// and callers may override it per job.
const DefaultMarginFactor = 0.10

// Compute derives one CLTVRecord per customer from the joined line view.
//
// Per customer: Age is the day span between first and last transaction,
// NumTransactions the number of joined line occurrences, Quantity and
// TotalRevenue the summed line quantities and totals. Customers whose total
// quantity is not positive are dropped as data artifacts. Two scalars come
// from the whole population: the purchase frequency (transactions per
// customer) and the churn rate (share of one-off buyers); the per-customer
// estimate is (AOV × purchase frequency / churn rate) × marginFactor.
//
// A churn rate of zero (every customer is a repeat buyer) has no finite
// estimate and surfaces as a DegenerateNumericError instead of NaN.
func Compute(joined []models.JoinedLine, marginFactor float64) ([]models.CLTVRecord, error) {
	if marginFactor <= 0 {
		return nil, models.NewConfigurationError("margin factor must be positive, got %g", marginFactor)
	}

	type accum struct {
		firstDate time.Time
		lastDate  time.Time
		count     int
		quantity  float64
		revenue   float64
	}
	accums := make(map[int64]*accum)
	for _, line := range joined {
		if !line.CustomerID.Valid {
			continue
		}
		a, ok := accums[line.CustomerID.Int64]
		if !ok {
			a = &accum{firstDate: line.Date, lastDate: line.Date}
			accums[line.CustomerID.Int64] = a
		}
		if line.Date.Before(a.firstDate) {
			a.firstDate = line.Date
		}
		if line.Date.After(a.lastDate) {
			a.lastDate = line.Date
		}
		a.count++
		a.quantity += line.Quantity
		a.revenue += line.LineTotal
	}

	records := make([]models.CLTVRecord, 0, len(accums))
	totalTransactions := 0
	repeatCustomers := 0
	for customerID, a := range accums {
		if a.quantity <= 0 {
			continue
		}
		records = append(records, models.CLTVRecord{
			CustomerID:      customerID,
			Age:             int(a.lastDate.Sub(a.firstDate).Hours() / 24),
			NumTransactions: a.count,
			Quantity:        a.quantity,
			TotalRevenue:    a.revenue,
		})
		totalTransactions += a.count
		if a.count > 1 {
			repeatCustomers++
		}
	}
	if len(records) == 0 {
		return nil, models.NewEmptyPopulationError("no customers with positive quantity for CLTV")
	}

	purchaseFrequency := float64(totalTransactions) / float64(len(records))
	churnRate := 1 - float64(repeatCustomers)/float64(len(records))
	if churnRate == 0 {
		return nil, models.NewDegenerateNumericError(
			"churn rate is zero (all %d customers are repeat buyers), CLTV is unbounded", len(records))
	}

	for i := range records {
		r := &records[i]
		r.AOV = r.TotalRevenue / float64(r.NumTransactions)
		r.ProfitMargin = r.TotalRevenue * marginFactor
		r.CLTV = (r.AOV * purchaseFrequency / churnRate) * marginFactor
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CustomerID < records[j].CustomerID })
	return records, nil
}
