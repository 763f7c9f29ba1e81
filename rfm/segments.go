package rfm

// Segment1 labels map the combined 3-digit RFM score to one of six coarse
// segments. Range boundaries follow the published segmentation table the
// scoring was built from; anything falling between the listed ranges is
// "Other".
const (
	SegmentRisky          = "Risky"
	SegmentHoldAndImprove = "Hold and improve"
	SegmentPotentialLoyal = "Potential loyal"
	SegmentLoyal          = "Loyal"
	SegmentStar           = "Star"
	SegmentOther          = "Other"
)

func labelSegment1(score int) string {
	switch {
	case score >= 111 && score <= 155:
		return SegmentRisky
	case score >= 211 && score <= 255:
		return SegmentHoldAndImprove
	case score >= 311 && score <= 353:
		return SegmentPotentialLoyal
	case (score >= 354 && score <= 454) || (score >= 511 && score <= 535) || score == 541:
		return SegmentLoyal
	case score == 455 || (score >= 542 && score <= 555):
		return SegmentStar
	default:
		return SegmentOther
	}
}

// Segment2 labels depend on the (R, F) pair only. The rule table is ordered;
// the first matching range wins, and together the ranges cover every pair in
// {1..5}×{1..5} exactly once.
const (
	SegmentHibernating        = "Hibernating"
	SegmentAtRisk             = "At risk"
	SegmentCantLoseThem       = "Can't lose them"
	SegmentAboutToSleep       = "About to sleep"
	SegmentNeedAttention      = "Need attention"
	SegmentLoyalCustomers     = "Loyal customers"
	SegmentPromising          = "Promising"
	SegmentNewCustomers       = "New customers"
	SegmentPotentialLoyalists = "Potential loyalists"
	SegmentChampions          = "Champions"
)

type segment2Rule struct {
	rMin, rMax int
	fMin, fMax int
	label      string
}

var segment2Rules = []segment2Rule{
	{1, 2, 1, 2, SegmentHibernating},
	{1, 2, 3, 4, SegmentAtRisk},
	{1, 2, 5, 5, SegmentCantLoseThem},
	{3, 3, 1, 2, SegmentAboutToSleep},
	{3, 3, 3, 3, SegmentNeedAttention},
	{3, 4, 4, 5, SegmentLoyalCustomers},
	{4, 4, 1, 1, SegmentPromising},
	{5, 5, 1, 1, SegmentNewCustomers},
	{4, 5, 2, 3, SegmentPotentialLoyalists},
	{5, 5, 4, 5, SegmentChampions},
}

func labelSegment2(r, f int) string {
	for _, rule := range segment2Rules {
		if r >= rule.rMin && r <= rule.rMax && f >= rule.fMin && f <= rule.fMax {
			return rule.label
		}
	}
	return SegmentOther
}
