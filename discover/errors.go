package discover

import "errors"

var (
	// ErrClientRequired is returned when a discoverer is constructed
	// without an Overpass client.
	ErrClientRequired = errors.New("overpass client is required")

	// ErrNoCandidates indicates no settlement in the country passed
	// the population filter.
	ErrNoCandidates = errors.New("no settlements matched")
)
