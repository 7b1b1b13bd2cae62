package domain

// SkippedProduct records one per-item skip with the reason it was dropped.
type SkippedProduct struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CategoryReport summarizes the ingestion outcome for a single category.
type CategoryReport struct {
	Category       string           `json:"category"`
	PagesAttempted int              `json:"pages_attempted"`
	PagesSucceeded int              `json:"pages_succeeded"`
	Ingested       int              `json:"ingested"`
	Skipped        []SkippedProduct `json:"skipped,omitempty"`

	// FatalError is set when the category's traversal was aborted, either because
	// the category was never seeded or because a page fetch failed partway.
	FatalError string `json:"fatal_error,omitempty"`
}

// IngestReport is the run-level summary returned by the pipeline. It is always
// returned, even when the run ends early on cancellation or a store failure.
type IngestReport struct {
	Categories []*CategoryReport `json:"categories"`
}

func (r *IngestReport) TotalIngested() int {
	total := 0
	for _, c := range r.Categories {
		total += c.Ingested
	}
	return total
}

func (r *IngestReport) TotalSkipped() int {
	total := 0
	for _, c := range r.Categories {
		total += len(c.Skipped)
	}
	return total
}

// FailedCategories returns the names of categories whose traversal was aborted.
func (r *IngestReport) FailedCategories() []string {
	var failed []string
	for _, c := range r.Categories {
		if c.FatalError != "" {
			failed = append(failed, c.Category)
		}
	}
	return failed
}
