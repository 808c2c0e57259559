package load

import "errors"

var (
	// ErrLayerStoreRequired is returned when no layer store is provided.
	ErrLayerStoreRequired = errors.New("layer store is required")

	// ErrRepositoryRequired is returned when no repository is provided.
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrDatabaseRequired is returned when no database handle is
	// provided.
	ErrDatabaseRequired = errors.New("database is required")

	// ErrNoDestination is returned when gold has no destination record
	// for the city. Activities cannot be loaded without one.
	ErrNoDestination = errors.New("no gold destination for city")

	// ErrNoGoldData is returned when gold has no enriched POIs for the
	// city.
	ErrNoGoldData = errors.New("no gold data for city")

	// ErrNoConflictTarget is returned when the activities table lacks
	// the unique index on osm_id, so ON CONFLICT upserts cannot run.
	ErrNoConflictTarget = errors.New("no unique constraint on osm_id")
)
