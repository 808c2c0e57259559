package ai

import (
	"context"

	"github.com/poiesic/poirit/core"
)

// POIEnricher generates travel metadata for a single POI: description,
// visit duration, best time, price level, persona scores, and tips.
// Implementations must be safe for concurrent use; the parallel
// enricher calls EnrichPOI from many workers.
type POIEnricher interface {
	// EnrichPOI returns the enrichment for one POI. The returned record
	// always carries all six persona scores and a Source naming the
	// model that produced it. Callers fall back to deterministic
	// enrichment on error, so implementations should fail rather than
	// guess.
	EnrichPOI(ctx context.Context, poi *core.POI) (*core.Enrichment, error)
}

// DestinationEnricher generates the city-level destination profile:
// summary, why-go list, monthly insights, persona fit, budget, safety,
// and connectivity.
type DestinationEnricher interface {
	// EnrichDestination fills the content fields of a Destination for
	// the city, plus its identity (slug, name, country) and coordinates
	// at the bounding-box center. External facts such as population or
	// currency are the caller's responsibility.
	EnrichDestination(ctx context.Context, city core.City) (*core.Destination, error)
}

// Provider aggregates the enrichment services for convenient
// initialization and lifecycle management.
type Provider interface {
	// POIEnricher returns the POI enrichment service, safe for
	// concurrent use.
	POIEnricher() POIEnricher

	// DestinationEnricher returns the destination profile service.
	DestinationEnricher() DestinationEnricher

	// Model names the underlying model, recorded in cache entries and
	// enrichment sources.
	Model() string

	// Close releases resources held by the provider and its services.
	Close() error
}
