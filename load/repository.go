// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/poiesic/poirit/core"
)

// pgNoConflictTarget is the Postgres error code raised when ON CONFLICT
// names a column set with no unique or exclusion constraint.
const pgNoConflictTarget = "42P10"

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Repository writes gold records to Postgres.
type Repository struct {
	db     DB
	logger *slog.Logger
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository) error

// WithRepositoryLogger sets a custom logger. Default is slog.Default().
func WithRepositoryLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRepository creates a repository over a pgx pool (or compatible
// handle).
func NewRepository(db DB, opts ...RepositoryOption) (*Repository, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	r := &Repository{
		db:     db,
		logger: slog.Default().With("component", "load"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

const upsertDestinationSQL = `INSERT INTO destinations
	(slug, name, country, country_code, timezone, lat, lon, population, currency, image_url, wikidata_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (slug) DO UPDATE SET
	name = EXCLUDED.name,
	country = EXCLUDED.country,
	country_code = EXCLUDED.country_code,
	timezone = EXCLUDED.timezone,
	lat = EXCLUDED.lat,
	lon = EXCLUDED.lon,
	population = EXCLUDED.population,
	currency = EXCLUDED.currency,
	image_url = EXCLUDED.image_url,
	wikidata_id = EXCLUDED.wikidata_id,
	updated_at = now()
RETURNING id`

// UpsertDestination inserts or updates the destination row and returns
// its ID.
func (r *Repository) UpsertDestination(ctx context.Context, dest *core.Destination) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, upsertDestinationSQL,
		dest.Slug, dest.Name, dest.Country, dest.CountryCode, dest.Timezone,
		dest.Lat, dest.Lon, dest.Population, dest.Currency, dest.ImageURL,
		dest.WikidataID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert destination %s: %w", dest.Slug, err)
	}
	return id, nil
}

const upsertDetailsSQL = `INSERT INTO destination_details
	(destination_id, summary, why_go, tags, best_months, monthly_insights, persona_fit, budget, safety, connectivity, source, enriched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (destination_id) DO UPDATE SET
	summary = EXCLUDED.summary,
	why_go = EXCLUDED.why_go,
	tags = EXCLUDED.tags,
	best_months = EXCLUDED.best_months,
	monthly_insights = EXCLUDED.monthly_insights,
	persona_fit = EXCLUDED.persona_fit,
	budget = EXCLUDED.budget,
	safety = EXCLUDED.safety,
	connectivity = EXCLUDED.connectivity,
	source = EXCLUDED.source,
	enriched_at = EXCLUDED.enriched_at,
	updated_at = now()`

// UpsertDestinationDetails inserts or updates the content profile for a
// destination.
func (r *Repository) UpsertDestinationDetails(ctx context.Context, destID int64, dest *core.Destination) error {
	args, err := detailArgs(destID, dest)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, upsertDetailsSQL, args...); err != nil {
		return fmt.Errorf("upsert destination details %s: %w", dest.Slug, err)
	}
	return nil
}

func detailArgs(destID int64, dest *core.Destination) ([]any, error) {
	jsonFields := []any{
		dest.WhyGo, dest.Tags, dest.BestMonths, dest.MonthlyInsights,
		dest.PersonaFit, dest.Budget, dest.Safety, dest.Connectivity,
	}
	encoded := make([]any, len(jsonFields))
	for i, field := range jsonFields {
		data, err := json.Marshal(field)
		if err != nil {
			return nil, fmt.Errorf("encode destination details %s: %w", dest.Slug, err)
		}
		encoded[i] = data
	}

	return []any{
		destID, dest.Summary,
		encoded[0], encoded[1], encoded[2], encoded[3],
		encoded[4], encoded[5], encoded[6], encoded[7],
		dest.Source, nullableTime(dest.EnrichedAt),
	}, nil
}

// activityColumns lists the insertable columns of the activities table,
// in the order activityArgs produces them.
var activityColumns = []string{
	"destination_id", "osm_id", "name", "category", "lat", "lon",
	"description", "duration_min", "best_time", "best_time_reason",
	"price_level", "persona_scores", "tips", "what_to_expect",
	"is_popular", "priority", "tags", "source", "enriched_at",
}

const activityConflictSQL = ` ON CONFLICT (osm_id) DO UPDATE SET
	destination_id = EXCLUDED.destination_id,
	name = EXCLUDED.name,
	category = EXCLUDED.category,
	lat = EXCLUDED.lat,
	lon = EXCLUDED.lon,
	description = EXCLUDED.description,
	duration_min = EXCLUDED.duration_min,
	best_time = EXCLUDED.best_time,
	best_time_reason = EXCLUDED.best_time_reason,
	price_level = EXCLUDED.price_level,
	persona_scores = EXCLUDED.persona_scores,
	tips = EXCLUDED.tips,
	what_to_expect = EXCLUDED.what_to_expect,
	is_popular = EXCLUDED.is_popular,
	priority = EXCLUDED.priority,
	tags = EXCLUDED.tags,
	source = EXCLUDED.source,
	enriched_at = EXCLUDED.enriched_at,
	updated_at = now()`

// UpsertActivities writes one batch of enriched POIs as activity rows,
// updating rows whose osm_id already exists. Returns ErrNoConflictTarget
// when the table lacks the unique index the upsert needs.
func (r *Repository) UpsertActivities(ctx context.Context, destID int64, pois []core.EnrichedPOI) (int64, error) {
	if len(pois) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO activities (")
	sb.WriteString(strings.Join(activityColumns, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(pois)*len(activityColumns))
	for i := range pois {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range activityColumns {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*len(activityColumns)+j+1)
		}
		sb.WriteByte(')')

		row, err := activityArgs(destID, &pois[i])
		if err != nil {
			return 0, err
		}
		args = append(args, row...)
	}
	sb.WriteString(activityConflictSQL)

	tag, err := r.db.Exec(ctx, sb.String(), args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNoConflictTarget {
			return 0, fmt.Errorf("%w: %s", ErrNoConflictTarget, pgErr.Message)
		}
		return 0, fmt.Errorf("upsert activities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExistingOSMIDs returns the osm_ids already present for a destination.
func (r *Repository) ExistingOSMIDs(ctx context.Context, destID int64) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT osm_id FROM activities WHERE destination_id = $1`, destID)
	if err != nil {
		return nil, fmt.Errorf("list existing activities: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan osm_id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list existing activities: %w", err)
	}
	return existing, nil
}

// CopyActivities bulk-inserts activity rows via COPY. Callers must have
// filtered out rows whose osm_id already exists.
func (r *Repository) CopyActivities(ctx context.Context, destID int64, pois []core.EnrichedPOI) (int64, error) {
	if len(pois) == 0 {
		return 0, nil
	}
	copied, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"activities"},
		activityColumns,
		pgx.CopyFromSlice(len(pois), func(i int) ([]any, error) {
			return activityArgs(destID, &pois[i])
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy activities: %w", err)
	}
	return copied, nil
}

func activityArgs(destID int64, poi *core.EnrichedPOI) ([]any, error) {
	personas, err := json.Marshal(poi.Enrichment.PersonaScores)
	if err != nil {
		return nil, fmt.Errorf("encode persona scores %s: %w", poi.OSMID, err)
	}
	tips, err := json.Marshal(poi.Enrichment.Tips)
	if err != nil {
		return nil, fmt.Errorf("encode tips %s: %w", poi.OSMID, err)
	}
	tags, err := json.Marshal(poi.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags %s: %w", poi.OSMID, err)
	}

	return []any{
		destID, poi.OSMID, poi.Name, poi.Category, poi.Lat, poi.Lon,
		poi.Enrichment.Description, poi.Enrichment.DurationMin,
		poi.Enrichment.BestTime, poi.Enrichment.BestTimeReason,
		poi.Enrichment.PriceLevel, personas, tips,
		poi.Enrichment.WhatToExpect, poi.Enrichment.IsPopular,
		poi.Priority, tags, poi.Enrichment.Source,
		nullableTime(poi.Enrichment.EnrichedAt),
	}, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
