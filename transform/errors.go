package transform

import "errors"

var (
	// ErrNoName indicates the element carries no name tag at all.
	ErrNoName = errors.New("element has no name")

	// ErrNoCoordinates indicates the element has neither its own
	// position nor a center point.
	ErrNoCoordinates = errors.New("element has no coordinates")

	// ErrNameNotResolvable indicates no English form of the name could
	// be produced.
	ErrNameNotResolvable = errors.New("name could not be resolved to english")

	// ErrLayerStoreRequired is returned when a Processor is constructed
	// without a layer store.
	ErrLayerStoreRequired = errors.New("layer store is required")

	// ErrNoBronzeData indicates the city has no harvested tiles to
	// process.
	ErrNoBronzeData = errors.New("no bronze data for city")
)
