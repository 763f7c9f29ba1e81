package models

import (
	"database/sql"
	"time"
)

// Family selects which sales tables an analysis runs on: invoiced sales
// or ordered sales. Every date and transaction-ID column in the source
// schema is suffixed by the family name.
type Family string

const (
	FamilyInvoice Family = "Invoice"
	FamilyOrder   Family = "Order"
)

// ParseFamily validates a family selector coming from config or a job message.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyInvoice, FamilyOrder:
		return Family(s), nil
	}
	return "", NewConfigurationError("unknown sales family %q, expected %q or %q", s, FamilyInvoice, FamilyOrder)
}

// SalesHeader is one transaction (an invoice or an order, depending on the
// family). Headers with a null customer are kept in the table but excluded
// from every per-customer derivation.
type SalesHeader struct {
	TransactionID int64
	CustomerID    sql.NullInt64
	Date          time.Time
	TotalPrice    float64
	Paid          bool
}

// SalesLine is one (transaction, product) occurrence.
type SalesLine struct {
	TransactionID int64
	ProductID     int64
	Quantity      float64
	TotalPrice    float64
}

type Product struct {
	ID         int64
	Name       string
	CategoryID int64
}

// Category may point to a parent category. The tree is only resolved one
// level up (flat parent-name lookup), never traversed recursively.
type Category struct {
	ID       int64
	Name     string
	ParentID sql.NullInt64
}

// JoinedLine is one row of the flat header ⋈ line ⋈ product ⋈ category view
// produced by the joiner. Header attributes are propagated to every line.
type JoinedLine struct {
	TransactionID int64
	CustomerID    sql.NullInt64
	Date          time.Time
	HeaderTotal   float64
	ProductID     int64
	ProductName   string
	CategoryID    int64
	CategoryName  string
	Quantity      float64
	LineTotal     float64
}

// Dataset holds the four input tables of one analysis session, already
// restricted to the requested family and snapshot window.
type Dataset struct {
	Headers    []SalesHeader
	Lines      []SalesLine
	Products   []Product
	Categories []Category
}

// RFMRecord is the per-customer output of the RFM engine.
type RFMRecord struct {
	CustomerID int64
	Recency    int
	Frequency  int
	Monetary   float64
	R          int
	F          int
	M          int
	Segment1   string
	Segment2   string
}

// CLTVRecord is the per-customer output of the lifetime-value engine.
// NumTransactions counts joined line occurrences, matching the upstream
// aggregation it reproduces.
type CLTVRecord struct {
	CustomerID      int64
	Age             int
	NumTransactions int
	Quantity        float64
	TotalRevenue    float64
	AOV             float64
	ProfitMargin    float64
	CLTV            float64
}

// AssociationRule is a directional antecedents ⇒ consequents rule with its
// strength metrics. Antecedents and consequents are always disjoint.
type AssociationRule struct {
	Antecedents  []string
	Consequents  []string
	Support      float64
	Confidence   float64
	Lift         float64
	Leverage     float64
	Conviction   float64
	ZhangsMetric float64
}

// Dimension selects the item axis of a matrix or transaction set.
type Dimension string

const (
	DimensionProduct  Dimension = "Product"
	DimensionCategory Dimension = "Category"
)

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionProduct, DimensionCategory:
		return Dimension(s), nil
	}
	return "", NewConfigurationError("unknown item dimension %q", s)
}

// Metric selects the cell value of a spend matrix.
type Metric string

const (
	MetricQuantity   Metric = "Quantity"
	MetricTotalPrice Metric = "Total_price"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricQuantity, MetricTotalPrice:
		return Metric(s), nil
	}
	return "", NewConfigurationError("unknown matrix metric %q", s)
}

// ScoredItem is one recommended item with the score that ranked it.
type ScoredItem struct {
	Name  string
	Score float64
}

// Recommendation is an ordered list of at most N items for a target customer
// or item, tagged with the strategy that produced it. An empty Items slice is
// the documented "no recommendation" sentinel, not a failure.
type Recommendation struct {
	Strategy string
	Target   string
	Items    []ScoredItem
}

// Empty reports whether the recommendation carries no items.
func (r Recommendation) Empty() bool {
	return len(r.Items) == 0
}
