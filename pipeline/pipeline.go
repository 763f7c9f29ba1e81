package pipeline

import (
	"sync"

	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/cltv"
	"github.com/Agence-Glanum/customer-portrait/joiner"
	"github.com/Agence-Glanum/customer-portrait/mining"
	"github.com/Agence-Glanum/customer-portrait/models"
	"github.com/Agence-Glanum/customer-portrait/recommender"
	"github.com/Agence-Glanum/customer-portrait/rfm"
)

var log = logging.MustGetLogger("log")

// CustomerOverview merges the lifetime-value record with the customer's RFM
// segments, the table the customer overview is built from.
type CustomerOverview struct {
	models.CLTVRecord
	Segment1 string
	Segment2 string
}

// Report is the full output of one analysis run: every derived table, keyed
// by customer, product or category. It carries no presentation concerns.
type Report struct {
	RFM      []models.RFMRecord
	CLTV     []models.CLTVRecord
	Overview []CustomerOverview

	RFMClusters      *affinity.Assignment
	ProductClusters  *affinity.Assignment
	CategoryClusters *affinity.Assignment

	ProductRules  []models.AssociationRule
	CategoryRules []models.AssociationRule

	UserProductRecommendations  []recommender.BatchRow
	UserCategoryRecommendations []recommender.BatchRow
	ItemProductRecommendations  []recommender.BatchRow
	ItemCategoryRecommendations []recommender.BatchRow

	BasketStats  BasketStats
	CategoryTree []joiner.CategoryNode
}

// Run executes the whole customer analytics pipeline over one dataset. Every
// derivation is a pure function of the dataset and the parameters, so two
// runs with the same inputs produce identical reports.
func Run(ds models.Dataset, params Params) (*Report, error) {
	p, err := params.resolve()
	if err != nil {
		return nil, err
	}

	joined, err := joiner.Join(ds.Headers, ds.Lines, ds.Products, ds.Categories)
	if err != nil {
		return nil, err
	}
	log.Infof("Joined %d lines across %d headers (%s)", len(joined), len(ds.Headers), p.family)

	rfmRecords, err := rfm.Compute(ds.Headers, p.snapshotEnd)
	if err != nil {
		return nil, err
	}
	cltvRecords, err := cltv.Compute(joined, p.marginFactor)
	if err != nil {
		return nil, err
	}

	// The spend matrices and the transaction sets only depend on the joined
	// view, so the four builds run concurrently.
	var (
		wg         sync.WaitGroup
		prodMatrix *affinity.Matrix
		catMatrix  *affinity.Matrix
		prodSets   *mining.TransactionSets
		catSets    *mining.TransactionSets
		buildErrs  [4]error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		prodMatrix, buildErrs[0] = affinity.Build(joined, models.DimensionProduct, p.metric)
	}()
	go func() {
		defer wg.Done()
		catMatrix, buildErrs[1] = affinity.Build(joined, models.DimensionCategory, p.metric)
	}()
	go func() {
		defer wg.Done()
		prodSets, buildErrs[2] = mining.BuildTransactionSets(joined, models.DimensionProduct)
	}()
	go func() {
		defer wg.Done()
		catSets, buildErrs[3] = mining.BuildTransactionSets(joined, models.DimensionCategory)
	}()
	wg.Wait()
	for _, err := range buildErrs {
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		RFM:          rfmRecords,
		CLTV:         cltvRecords,
		Overview:     mergeOverview(cltvRecords, rfmRecords),
		BasketStats:  ComputeBasketStats(joined),
		CategoryTree: joiner.CategoryTree(ds.Categories, ds.Products),
	}

	rfmMatrix, err := rfm.ScaleFeatures(rfmRecords)
	if err != nil {
		return nil, err
	}
	report.RFMClusters, err = cluster(p, rfmMatrix)
	if err != nil {
		return nil, err
	}
	report.ProductClusters, err = cluster(p, prodMatrix)
	if err != nil {
		return nil, err
	}
	report.CategoryClusters, err = cluster(p, catMatrix)
	if err != nil {
		return nil, err
	}

	report.ProductRules, err = mineRules(p, prodSets)
	if err != nil {
		return nil, err
	}
	report.CategoryRules, err = mineRules(p, catSets)
	if err != nil {
		return nil, err
	}

	// Collaborative filtering always works on quantity matrices, whatever
	// metric the clustering ran on.
	cfProdMatrix, cfCatMatrix := prodMatrix, catMatrix
	if p.metric != models.MetricQuantity {
		if cfProdMatrix, err = affinity.Build(joined, models.DimensionProduct, models.MetricQuantity); err != nil {
			return nil, err
		}
		if cfCatMatrix, err = affinity.Build(joined, models.DimensionCategory, models.MetricQuantity); err != nil {
			return nil, err
		}
	}
	report.UserProductRecommendations = recommender.BatchUserBased(cfProdMatrix)
	report.UserCategoryRecommendations = recommender.BatchUserBased(cfCatMatrix)
	report.ItemProductRecommendations = recommender.BatchItemBased(cfProdMatrix)
	report.ItemCategoryRecommendations = recommender.BatchItemBased(cfCatMatrix)

	return report, nil
}

func cluster(p resolvedParams, m *affinity.Matrix) (*affinity.Assignment, error) {
	strategy, err := affinity.NewStrategy(p.strategy, p.clusters, p.seed)
	if err != nil {
		return nil, err
	}
	return strategy.Fit(m)
}

func mineRules(p resolvedParams, sets *mining.TransactionSets) ([]models.AssociationRule, error) {
	itemsets, err := sets.FrequentItemSets(p.minSupport)
	if err != nil {
		return nil, err
	}
	rules, err := mining.Rules(itemsets, p.ruleMetric, p.minThreshold)
	if err != nil {
		return nil, err
	}
	if err := mining.SortRules(rules, "lift"); err != nil {
		return nil, err
	}
	return rules, nil
}

func mergeOverview(cltvRecords []models.CLTVRecord, rfmRecords []models.RFMRecord) []CustomerOverview {
	segments := make(map[int64]models.RFMRecord, len(rfmRecords))
	for _, r := range rfmRecords {
		segments[r.CustomerID] = r
	}
	overview := make([]CustomerOverview, 0, len(cltvRecords))
	for _, c := range cltvRecords {
		r, ok := segments[c.CustomerID]
		if !ok {
			continue
		}
		overview = append(overview, CustomerOverview{
			CLTVRecord: c,
			Segment1:   r.Segment1,
			Segment2:   r.Segment2,
		})
	}
	return overview
}
