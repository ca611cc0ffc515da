package domain

import (
	"time"
)

// OrderRecord is one validated row of the canonical order table.
// Every record carries a resolvable order date and a non-negative quantity;
// rows that cannot satisfy that are dropped or coerced during normalization.
type OrderRecord struct {
	OrderID     string    `json:"order_id" validate:"required"`
	OrderDate   time.Time `json:"order_date" validate:"required"`
	Quantity    int       `json:"quantity" validate:"min=0"`
	ShipCountry string    `json:"ship_country"`
	ProductRef  string    `json:"product_ref"`
	// VipFlag keeps the raw integer from the source column. The upstream
	// system matches it with strict equality against 1 and 0, so values
	// outside {0,1} satisfy neither the VIP nor the non-VIP filter.
	VipFlag int `json:"vip_flag"`
}

// IsVip reports whether the record belongs to a VIP customer.
func (r OrderRecord) IsVip() bool {
	return r.VipFlag == 1
}

// CanonicalTable is the normalized, immutable order dataset for one
// analysis session. Records are held in ingestion order; no result depends
// on that order beyond deterministic tie-breaking within a single run.
type CanonicalTable struct {
	records []OrderRecord
}

// NewCanonicalTable builds a table from normalized records. The slice is
// copied so later mutation by the caller cannot reach the table.
func NewCanonicalTable(records []OrderRecord) *CanonicalTable {
	owned := make([]OrderRecord, len(records))
	copy(owned, records)
	return &CanonicalTable{records: owned}
}

// Len returns the number of rows in the table.
func (t *CanonicalTable) Len() int {
	return len(t.records)
}

// Records returns the rows of the table. Callers must treat the returned
// slice as read-only.
func (t *CanonicalTable) Records() []OrderRecord {
	return t.records
}

// Countries returns the distinct ship-country codes in first-encountered order.
func (t *CanonicalTable) Countries() []string {
	return t.distinct(func(r OrderRecord) string { return r.ShipCountry })
}

// ProductRefs returns the distinct product references in first-encountered order.
func (t *CanonicalTable) ProductRefs() []string {
	return t.distinct(func(r OrderRecord) string { return r.ProductRef })
}

// DateBounds returns the earliest and latest order dates in the table.
// Both zero when the table is empty.
func (t *CanonicalTable) DateBounds() (time.Time, time.Time) {
	var min, max time.Time
	for i, r := range t.records {
		if i == 0 {
			min, max = r.OrderDate, r.OrderDate
			continue
		}
		if r.OrderDate.Before(min) {
			min = r.OrderDate
		}
		if r.OrderDate.After(max) {
			max = r.OrderDate
		}
	}
	return min, max
}

func (t *CanonicalTable) distinct(key func(OrderRecord) string) []string {
	seen := make(map[string]bool, len(t.records))
	values := make([]string, 0)
	for _, r := range t.records {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			values = append(values, k)
		}
	}
	return values
}

// VipMode selects the customer-type predicate of a filter.
type VipMode string

const (
	VipModeAll     VipMode = "all"
	VipModeVipOnly VipMode = "vip"
	VipModeNonVip  VipMode = "non_vip"
)

// AllSentinel marks a country or product-reference selection that expands
// to every distinct value observed in the table.
const AllSentinel = "all"

// FilterCriteria is the conjunction of predicates applied to a canonical
// table. Country and product selections containing AllSentinel expand to the
// full observed domain of the field.
type FilterCriteria struct {
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
	Countries   []string  `json:"countries"`
	ProductRefs []string  `json:"product_refs"`
	VipMode     VipMode   `json:"vip_mode"`
}

// AllRecords returns criteria that match every record of the given table.
func AllRecords(t *CanonicalTable) FilterCriteria {
	from, to := t.DateBounds()
	return FilterCriteria{
		DateFrom:    from,
		DateTo:      to,
		Countries:   []string{AllSentinel},
		ProductRefs: []string{AllSentinel},
		VipMode:     VipModeAll,
	}
}
