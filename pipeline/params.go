package pipeline

import (
	"time"

	"github.com/Agence-Glanum/customer-portrait/affinity"
	"github.com/Agence-Glanum/customer-portrait/cltv"
	"github.com/Agence-Glanum/customer-portrait/mining"
	"github.com/Agence-Glanum/customer-portrait/models"
)

// DefaultClusters is the cluster count used when a job does not pick one.
const DefaultClusters = 4

// Params drives one analysis run. Zero values fall back to the documented
// defaults; everything else is validated before any computation starts.
type Params struct {
	Family       string
	SnapshotEnd  time.Time
	Strategy     string
	Clusters     int
	Seed         int64
	Metric       string
	MinSupport   float64
	RuleMetric   string
	MinThreshold float64
	MarginFactor float64
}

type resolvedParams struct {
	family       models.Family
	snapshotEnd  time.Time
	strategy     string
	clusters     int
	seed         int64
	metric       models.Metric
	minSupport   float64
	ruleMetric   string
	minThreshold float64
	marginFactor float64
}

func (p Params) resolve() (resolvedParams, error) {
	family, err := models.ParseFamily(p.Family)
	if err != nil {
		return resolvedParams{}, err
	}

	strategy := p.Strategy
	if strategy == "" {
		strategy = affinity.StrategyKMeans
	}
	clusters := p.Clusters
	if clusters == 0 {
		clusters = DefaultClusters
	}
	// Validate the strategy/cluster-count combination up front; the actual
	// strategies are constructed per dimension during the run.
	if _, err := affinity.NewStrategy(strategy, clusters, p.Seed); err != nil {
		return resolvedParams{}, err
	}

	metricName := p.Metric
	if metricName == "" {
		metricName = string(models.MetricQuantity)
	}
	metric, err := models.ParseMetric(metricName)
	if err != nil {
		return resolvedParams{}, err
	}

	minSupport := p.MinSupport
	if minSupport == 0 {
		minSupport = mining.DefaultMinSupport
	}
	ruleMetric := p.RuleMetric
	if ruleMetric == "" {
		ruleMetric = mining.DefaultRuleMetric
	}
	minThreshold := p.MinThreshold
	if minThreshold == 0 {
		minThreshold = mining.DefaultMinThreshold
	}
	marginFactor := p.MarginFactor
	if marginFactor == 0 {
		marginFactor = cltv.DefaultMarginFactor
	}

	return resolvedParams{
		family:       family,
		snapshotEnd:  p.SnapshotEnd,
		strategy:     strategy,
		clusters:     clusters,
		seed:         p.Seed,
		metric:       metric,
		minSupport:   minSupport,
		ruleMetric:   ruleMetric,
		minThreshold: minThreshold,
		marginFactor: marginFactor,
	}, nil
}
