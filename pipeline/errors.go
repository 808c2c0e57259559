package pipeline

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoStages is returned when an orchestrator is built with an
	// empty stage list
	ErrNoStages = errors.New("no stages to run")
)
