package enrich

import "errors"

var (
	// ErrLayerStoreRequired is returned when a stage is constructed
	// without a layer store.
	ErrLayerStoreRequired = errors.New("layer store is required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrEnricherRequired is returned when a destination enricher is
	// not provided.
	ErrEnricherRequired = errors.New("destination enricher required")

	// ErrNoSilverData indicates the city has no processed POIs to
	// enrich.
	ErrNoSilverData = errors.New("no silver data for city")
)
