package search

import "errors"

var (
	// ErrIndexNotBuilt is returned when querying a nil index or an engine
	// that has not loaded a snapshot yet.
	ErrIndexNotBuilt = errors.New("search index not built")

	// ErrSourceRequired is returned by NewEngine without a corpus source.
	ErrSourceRequired = errors.New("corpus source is required")
)
