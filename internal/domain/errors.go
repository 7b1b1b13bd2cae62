package domain

import "errors"

// Error taxonomy for the ingestion pipeline. Callers match with errors.Is.
var (
	// ErrRemoteFetch covers transport failures and malformed response envelopes.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrMissingCategory means a configured category was never seeded in the store.
	ErrMissingCategory = errors.New("category not found")

	// ErrExtraction marks a structural anomaly in a single product's data,
	// e.g. an empty media list or an unparseable list price.
	ErrExtraction = errors.New("product extraction failed")

	// ErrStore wraps persistence failures. Fatal for the run when raised on flush.
	ErrStore = errors.New("store operation failed")
)
