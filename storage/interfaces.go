package storage

import (
	"context"

	"github.com/poiesic/poirit/core"
)

// LayerStore is the flat-file medallion tree the pipeline stages read
// and write. Implementations must be safe for concurrent use.
type LayerStore interface {
	// TileExists reports whether bronze already holds this tile for the
	// city. The harvester uses it to skip completed downloads.
	TileExists(city, tileKey string) bool

	// WriteTile stores one raw tile atomically. Returns ErrTileExists
	// if the tile is already present; delete the file to refetch.
	WriteTile(city, tileKey string, raw []byte) error

	// TileKeys lists the bronze tile keys present for a city, sorted.
	TileKeys(city string) ([]string, error)

	// ReadTile returns the raw bytes of one bronze tile.
	ReadTile(city, tileKey string) ([]byte, error)

	// WriteHarvestMetadata records the summary of a harvest run.
	WriteHarvestMetadata(city string, meta *core.HarvestMetadata) error

	// ReadHarvestMetadata returns the last harvest summary, or
	// ErrNotFound if the city was never harvested to completion.
	ReadHarvestMetadata(city string) (*core.HarvestMetadata, error)

	// WritePOIs replaces the silver POI set for a city.
	WritePOIs(city string, pois []core.POI) error

	// ReadPOIs returns the silver POI set, or ErrNotFound.
	ReadPOIs(city string) ([]core.POI, error)

	// WriteProcessStats records the processor summary for a city.
	WriteProcessStats(city string, stats *core.ProcessStats) error

	// ReadProcessStats returns the processor summary, or ErrNotFound.
	ReadProcessStats(city string) (*core.ProcessStats, error)

	// WriteEnriched replaces the gold enriched POI set for a city. The
	// enricher calls this repeatedly as its incremental checkpoint.
	WriteEnriched(city string, pois []core.EnrichedPOI) error

	// ReadEnriched returns the gold enriched POI set, or ErrNotFound.
	ReadEnriched(city string) ([]core.EnrichedPOI, error)

	// WriteDestination stores the city-level gold record.
	WriteDestination(city string, dest *core.Destination) error

	// ReadDestination returns the city-level gold record, or
	// ErrNotFound.
	ReadDestination(city string) (*core.Destination, error)

	// Cities lists every city slug present in any layer, sorted.
	Cities() ([]string, error)

	// Status summarizes a city's progress through the layers. Missing
	// layers report zero counts rather than errors.
	Status(city string) (*core.LayerStatus, error)
}

// StateStore is the local key-value store for enrichment caching and
// stage checkpoints.
type StateStore interface {
	// PutEnrichment stores or replaces the cached enrichment for a POI.
	PutEnrichment(ctx context.Context, state *core.EnrichmentState) error

	// GetEnrichment returns the cached enrichment for an OSM ID, or
	// ErrNotFound on a cache miss.
	GetEnrichment(ctx context.Context, osmID string) (*core.EnrichmentState, error)

	// CountEnrichments returns the number of cached enrichments.
	CountEnrichments(ctx context.Context) (int, error)

	// SaveCheckpoint persists stage progress for a city.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves stage progress for a city. Returns
	// nil, nil if the stage has never checkpointed.
	LoadCheckpoint(ctx context.Context, stage, city string) (*core.Checkpoint, error)

	// Close releases the store.
	Close() error
}
