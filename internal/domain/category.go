package domain

// Category groups products and carries the facet names a storefront can filter on.
// Categories are seeded ahead of ingestion; the pipeline only reads them by name
// and attaches facets during maintenance passes.
type Category struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	PossibleFacets []string `json:"possible_facets,omitempty"`
}

// CategorySpec maps a category display name to its remote code and the number of
// listing pages to traverse. Pipeline input, never persisted.
type CategorySpec struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Pages int    `json:"pages"`
}
