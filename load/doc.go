// Package load implements the gold → Postgres stage. It upserts the
// destination by slug, its details keyed by destination ID, and the
// enriched POIs as activity rows in batches, keyed by OSM ID.
//
// Databases that predate the unique index on activities.osm_id reject
// the ON CONFLICT upsert; the loader then falls back to diffing against
// the existing rows and bulk-copying only the new ones. The schema
// ships as embedded goose migrations, applied with Migrate.
package load
