package analysis

import (
	"sort"

	"ordersight/internal/errors"
	"ordersight/pkg/contracts/domain"
)

// AggregateProducts computes the product-level summary of a filtered view:
// total quantity, average order size, the top-N popularity ranking, and
// pairwise product co-occurrence counts. A view with no orders yields
// errors.ErrEmptyResult so the average never divides by zero.
func AggregateProducts(v *View, topN int) (domain.ProductSummary, error) {
	if topN <= 0 {
		topN = 10
	}

	total := 0
	perOrder := make(map[string]int)
	for _, r := range v.Records() {
		total += r.Quantity
		perOrder[r.OrderID] += r.Quantity
	}

	if len(perOrder) == 0 {
		return domain.ProductSummary{}, errors.ErrEmptyResult
	}

	orderTotal := 0
	for _, q := range perOrder {
		orderTotal += q
	}

	return domain.ProductSummary{
		TotalQuantitySold: total,
		AverageOrderSize:  float64(orderTotal) / float64(len(perOrder)),
		PopularProducts:   popularProducts(v, topN),
		Cooccurrences:     cooccurrences(v),
	}, nil
}

// popularProducts ranks product references by summed quantity descending,
// keeping first-encountered order on ties, and returns the top N.
func popularProducts(v *View, topN int) []domain.ProductQuantity {
	sums := make(map[string]int)
	order := make([]string, 0)

	for _, r := range v.Records() {
		if _, seen := sums[r.ProductRef]; !seen {
			order = append(order, r.ProductRef)
		}
		sums[r.ProductRef] += r.Quantity
	}

	ranked := make([]domain.ProductQuantity, 0, len(order))
	for _, ref := range order {
		ranked = append(ranked, domain.ProductQuantity{
			ProductRef: ref,
			Quantity:   sums[ref],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// pairKey is a canonicalized unordered product-reference pair.
type pairKey struct {
	first, second string
}

// cooccurrences counts, over all orders, every unordered pair of distinct
// product references appearing together in one order. An order with k
// distinct references contributes C(k,2) pairs, so the cost is O(k²) per
// order; acceptable for typical order sizes but a scaling limit for orders
// with very many distinct references. Orders with fewer than two distinct
// references contribute nothing.
func cooccurrences(v *View) []domain.CooccurrencePair {
	refsByOrder := make(map[string]map[string]bool)
	for _, r := range v.Records() {
		set, ok := refsByOrder[r.OrderID]
		if !ok {
			set = make(map[string]bool)
			refsByOrder[r.OrderID] = set
		}
		set[r.ProductRef] = true
	}

	counts := make(map[pairKey]int)
	for _, set := range refsByOrder {
		if len(set) < 2 {
			continue
		}
		refs := make([]string, 0, len(set))
		for ref := range set {
			refs = append(refs, ref)
		}
		sort.Strings(refs)

		for i := 0; i < len(refs); i++ {
			for j := i + 1; j < len(refs); j++ {
				counts[pairKey{first: refs[i], second: refs[j]}]++
			}
		}
	}

	pairs := make([]domain.CooccurrencePair, 0, len(counts))
	for key, count := range counts {
		pairs = append(pairs, domain.CooccurrencePair{
			First:  key.first,
			Second: key.second,
			Count:  count,
		})
	}
	// Count descending, then canonical pair order for deterministic ties.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})

	return pairs
}
