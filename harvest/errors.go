package harvest

import "errors"

var (
	// ErrLayerStoreRequired is returned when no layer store is provided.
	ErrLayerStoreRequired = errors.New("layer store is required")

	// ErrClientRequired is returned when no Overpass client is provided.
	ErrClientRequired = errors.New("overpass client is required")

	// ErrNoTiles is returned when a city's bounding box is degenerate
	// and produces no tiles.
	ErrNoTiles = errors.New("bounding box yields no tiles")
)
