package analysis

import (
	"sort"

	"ordersight/pkg/contracts/domain"
)

// AggregateCountries computes the country-level summary of a filtered view:
// the distinct order count, the distinct country count, and the per-country
// row distribution ranked by count descending. Ties keep first-encountered
// order, which is deterministic within one run.
func AggregateCountries(v *View) domain.CountrySummary {
	orders := make(map[string]bool)
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, r := range v.Records() {
		orders[r.OrderID] = true
		if _, seen := counts[r.ShipCountry]; !seen {
			order = append(order, r.ShipCountry)
		}
		counts[r.ShipCountry]++
	}

	ranked := make([]domain.CountryCount, 0, len(order))
	for _, country := range order {
		ranked = append(ranked, domain.CountryCount{
			Country: country,
			Orders:  counts[country],
		})
	}
	// Stable sort on count only preserves first-encountered tie order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Orders > ranked[j].Orders
	})

	return domain.CountrySummary{
		TotalOrders:     len(orders),
		UniqueCountries: len(counts),
		OrdersByCountry: ranked,
	}
}
