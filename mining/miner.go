package mining

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/op/go-logging"

	"github.com/Agence-Glanum/customer-portrait/models"
)

var log = logging.MustGetLogger("log")

// TransactionSets is the boolean transaction × item view used for mining:
// per item, a bitmap of the transactions containing it. Repeated purchases
// of the same item inside one transaction count once.
type TransactionSets struct {
	Items          []string
	TransactionIDs []int64

	bitmaps []*roaring.Bitmap
}

// BuildTransactionSets groups the joined lines by transaction and collects
// the deduplicated set of item names per transaction.
func BuildTransactionSets(joined []models.JoinedLine, dim models.Dimension) (*TransactionSets, error) {
	byTransaction := make(map[int64]map[string]struct{})
	for _, line := range joined {
		item := line.ProductName
		if dim == models.DimensionCategory {
			item = line.CategoryName
		}
		set, ok := byTransaction[line.TransactionID]
		if !ok {
			set = make(map[string]struct{})
			byTransaction[line.TransactionID] = set
		}
		set[item] = struct{}{}
	}
	if len(byTransaction) == 0 {
		return nil, models.NewEmptyPopulationError("no transactions to mine")
	}

	transactionIDs := make([]int64, 0, len(byTransaction))
	for id := range byTransaction {
		transactionIDs = append(transactionIDs, id)
	}
	sort.Slice(transactionIDs, func(i, j int) bool { return transactionIDs[i] < transactionIDs[j] })

	itemSet := make(map[string]struct{})
	for _, set := range byTransaction {
		for item := range set {
			itemSet[item] = struct{}{}
		}
	}
	items := make([]string, 0, len(itemSet))
	for item := range itemSet {
		items = append(items, item)
	}
	sort.Strings(items)

	itemIndex := make(map[string]int, len(items))
	for i, item := range items {
		itemIndex[item] = i
	}
	bitmaps := make([]*roaring.Bitmap, len(items))
	for i := range bitmaps {
		bitmaps[i] = roaring.New()
	}
	for txIdx, id := range transactionIDs {
		for item := range byTransaction[id] {
			bitmaps[itemIndex[item]].Add(uint32(txIdx))
		}
	}

	return &TransactionSets{
		Items:          items,
		TransactionIDs: transactionIDs,
		bitmaps:        bitmaps,
	}, nil
}

// ItemSet is a frequent itemset with its support. Items are sorted.
type ItemSet struct {
	Items   []string
	Support float64
}

// FrequentItemSets mines all itemsets with support >= minSupport using
// level-wise apriori over the item bitmaps. The result is sorted by support
// descending, ties broken by the item names, so the output is stable.
func (ts *TransactionSets) FrequentItemSets(minSupport float64) ([]ItemSet, error) {
	if minSupport <= 0 || minSupport > 1 {
		return nil, models.NewConfigurationError("minimum support must be in (0, 1], got %g", minSupport)
	}

	total := float64(len(ts.TransactionIDs))
	minCount := uint64(minSupport * total)
	if float64(minCount) < minSupport*total {
		minCount++
	}
	if minCount == 0 {
		minCount = 1
	}

	type candidate struct {
		items  []int
		bitmap *roaring.Bitmap
	}

	var frequent []candidate
	var level []candidate
	for i, bm := range ts.bitmaps {
		if bm.GetCardinality() >= minCount {
			level = append(level, candidate{items: []int{i}, bitmap: bm})
		}
	}

	for len(level) > 0 {
		frequent = append(frequent, level...)
		var next []candidate
		// Join pairs sharing all but the last item; level is sorted
		// lexicographically by construction.
		for i := 0; i < len(level); i++ {
			for j := i + 1; j < len(level); j++ {
				a, b := level[i].items, level[j].items
				if !samePrefix(a, b) {
					break
				}
				bm := roaring.And(level[i].bitmap, level[j].bitmap)
				if bm.GetCardinality() >= minCount {
					joined := make([]int, len(a)+1)
					copy(joined, a)
					joined[len(a)] = b[len(b)-1]
					next = append(next, candidate{items: joined, bitmap: bm})
				}
			}
		}
		level = next
	}

	result := make([]ItemSet, len(frequent))
	for i, c := range frequent {
		names := make([]string, len(c.items))
		for j, idx := range c.items {
			names[j] = ts.Items[idx]
		}
		result[i] = ItemSet{Items: names, Support: float64(c.bitmap.GetCardinality()) / total}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Support != result[j].Support {
			return result[i].Support > result[j].Support
		}
		return strings.Join(result[i].Items, "\x1f") < strings.Join(result[j].Items, "\x1f")
	})
	log.Debugf("apriori found %d frequent itemsets over %d transactions (min support %g)",
		len(result), len(ts.TransactionIDs), minSupport)
	return result, nil
}

func samePrefix(a, b []int) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
