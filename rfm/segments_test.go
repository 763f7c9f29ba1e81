package rfm

import "testing"

func TestLabelSegment1Ranges(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{111, SegmentRisky},
		{155, SegmentRisky},
		{211, SegmentHoldAndImprove},
		{255, SegmentHoldAndImprove},
		{311, SegmentPotentialLoyal},
		{353, SegmentPotentialLoyal},
		{354, SegmentLoyal},
		{454, SegmentLoyal},
		{511, SegmentLoyal},
		{535, SegmentLoyal},
		{541, SegmentLoyal},
		{455, SegmentStar},
		{542, SegmentStar},
		{555, SegmentStar},
		{110, SegmentOther},
		{536, SegmentOther},
	}
	for _, c := range cases {
		if got := labelSegment1(c.score); got != c.want {
			t.Errorf("labelSegment1(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestLabelSegment2CoversEveryPair(t *testing.T) {
	expected := map[[2]int]string{
		{1, 1}: SegmentHibernating, {1, 2}: SegmentHibernating,
		{2, 1}: SegmentHibernating, {2, 2}: SegmentHibernating,
		{1, 3}: SegmentAtRisk, {1, 4}: SegmentAtRisk,
		{2, 3}: SegmentAtRisk, {2, 4}: SegmentAtRisk,
		{1, 5}: SegmentCantLoseThem, {2, 5}: SegmentCantLoseThem,
		{3, 1}: SegmentAboutToSleep, {3, 2}: SegmentAboutToSleep,
		{3, 3}: SegmentNeedAttention,
		{3, 4}: SegmentLoyalCustomers, {3, 5}: SegmentLoyalCustomers,
		{4, 4}: SegmentLoyalCustomers, {4, 5}: SegmentLoyalCustomers,
		{4, 1}: SegmentPromising,
		{5, 1}: SegmentNewCustomers,
		{4, 2}: SegmentPotentialLoyalists, {4, 3}: SegmentPotentialLoyalists,
		{5, 2}: SegmentPotentialLoyalists, {5, 3}: SegmentPotentialLoyalists,
		{5, 4}: SegmentChampions, {5, 5}: SegmentChampions,
	}
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			want, ok := expected[[2]int{r, f}]
			if !ok {
				t.Fatalf("test table misses pair (%d, %d)", r, f)
			}
			if got := labelSegment2(r, f); got != want {
				t.Errorf("labelSegment2(%d, %d) = %q, want %q", r, f, got, want)
			}
		}
	}
}
