package domain

// CountryCount is one row of the country distribution ranking.
type CountryCount struct {
	Country string `json:"country"`
	Orders  int    `json:"orders"`
}

// CountrySummary holds the country-level aggregation of a filtered view.
type CountrySummary struct {
	TotalOrders     int            `json:"total_orders"`
	UniqueCountries int            `json:"unique_countries"`
	OrdersByCountry []CountryCount `json:"orders_by_country"`
}

// ProductQuantity is one row of the product popularity ranking.
type ProductQuantity struct {
	ProductRef string `json:"product_ref"`
	Quantity   int    `json:"quantity"`
}

// CooccurrencePair is an unordered pair of distinct product references,
// canonicalized so that First < Second, with the number of orders in which
// both references appear.
type CooccurrencePair struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Count  int    `json:"count"`
}

// ProductSummary holds the product-level aggregation of a filtered view.
// AverageOrderSize is the mean of per-order quantity totals, not per-row.
type ProductSummary struct {
	TotalQuantitySold int                `json:"total_quantity_sold"`
	AverageOrderSize  float64            `json:"average_order_size"`
	PopularProducts   []ProductQuantity  `json:"popular_products"`
	Cooccurrences     []CooccurrencePair `json:"cooccurrences"`
}

// AnalysisResult is the complete output of one analysis run. It is
// recomputed wholesale from the canonical table and the current criteria on
// every request and never cached across filter changes.
type AnalysisResult struct {
	Criteria FilterCriteria `json:"criteria"`
	RowCount int            `json:"row_count"`
	Country  CountrySummary `json:"country"`
	Product  ProductSummary `json:"product"`
}
