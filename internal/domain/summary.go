package domain

// ProductSummary is the listing-page representation of a product before detail
// enrichment. ListPrice is kept as the raw string from the remote payload; parsing
// and conversion happen during product assembly.
type ProductSummary struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Media     []string `json:"media"`
	ListPrice string   `json:"list_price"`
}

// Classification is one specification group from the product detail payload.
type Classification struct {
	Name     string    `json:"name"`
	Features []Feature `json:"features"`
}

// Feature is a named specification inside a classification. The remote API lists
// one or more values per feature; some features legitimately arrive with none.
type Feature struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}
