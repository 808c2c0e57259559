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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
)

const (
	// CheckpointStage is the stage name load checkpoints are saved
	// under.
	CheckpointStage = "load"

	// DefaultBatchSize is how many activities one INSERT carries.
	DefaultBatchSize = 50
)

// Stats summarizes one load run.
type Stats struct {
	City          string
	DestinationID int64
	Activities    int   // gold records read
	Loaded        int64 // rows written
	Batches       int
	Fallback      bool // manual dedup path was taken
	DryRun        bool
}

// Loader runs the gold → Postgres stage for one city.
type Loader struct {
	store     storage.LayerStore
	repo      *Repository
	state     storage.StateStore
	batchSize int
	dryRun    bool
	logger    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithBatchSize sets how many activities one INSERT carries.
// Default is 50.
func WithBatchSize(n int) LoaderOption {
	return func(l *Loader) error {
		if n < 1 {
			n = 1
		}
		l.batchSize = n
		return nil
	}
}

// WithDryRun makes Run read and validate the gold layer without
// touching the database.
func WithDryRun() LoaderOption {
	return func(l *Loader) error {
		l.dryRun = true
		return nil
	}
}

// WithCheckpoints enables per-batch load checkpoints in the state
// store.
func WithCheckpoints(state storage.StateStore) LoaderOption {
	return func(l *Loader) error {
		l.state = state
		return nil
	}
}

// WithLoaderLogger sets a custom logger. Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates the load stage over a layer store and a repository.
func NewLoader(store storage.LayerStore, repo *Repository, opts ...LoaderOption) (*Loader, error) {
	if store == nil {
		return nil, ErrLayerStoreRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	l := &Loader{
		store:     store,
		repo:      repo,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "load"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Run loads the city's gold layer into Postgres: the destination row,
// its details, then the activities in batches. A missing unique index
// on activities.osm_id switches the remaining rows to the diff-and-copy
// path.
func (l *Loader) Run(ctx context.Context, city core.City) (*Stats, error) {
	dest, err := l.store.ReadDestination(city.Slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoDestination, city.Slug)
		}
		return nil, err
	}

	pois, err := l.store.ReadEnriched(city.Slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoGoldData, city.Slug)
		}
		return nil, err
	}

	stats := &Stats{City: city.Slug, Activities: len(pois), DryRun: l.dryRun}

	if l.dryRun {
		l.logger.Info("dry run, database untouched",
			"city", city.Slug,
			"destination", dest.Name,
			"activities", len(pois))
		return stats, nil
	}

	destID, err := l.repo.UpsertDestination(ctx, dest)
	if err != nil {
		return nil, err
	}
	stats.DestinationID = destID

	if err := l.repo.UpsertDestinationDetails(ctx, destID, dest); err != nil {
		return nil, err
	}

	started := time.Now()
	for start := 0; start < len(pois); start += l.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+l.batchSize, len(pois))

		n, err := l.repo.UpsertActivities(ctx, destID, pois[start:end])
		if errors.Is(err, ErrNoConflictTarget) {
			// The target database predates the osm_id index.
			l.logger.Warn("osm_id index missing, diffing against existing rows",
				"city", city.Slug)
			copied, err := l.copyNewActivities(ctx, destID, pois[start:])
			if err != nil {
				return nil, err
			}
			stats.Loaded += copied
			stats.Fallback = true
			l.checkpoint(ctx, city.Slug, len(pois), len(pois))
			break
		}
		if err != nil {
			return nil, err
		}
		stats.Loaded += n
		stats.Batches++
		l.checkpoint(ctx, city.Slug, end, len(pois))
	}

	l.logger.Info("load complete",
		"city", city.Slug,
		"destination_id", destID,
		"activities", stats.Activities,
		"loaded", stats.Loaded,
		"batches", stats.Batches,
		"fallback", stats.Fallback,
		"duration", time.Since(started).Round(time.Millisecond))
	return stats, nil
}

// copyNewActivities diffs the rows against the database and bulk-copies
// only the missing ones.
func (l *Loader) copyNewActivities(ctx context.Context, destID int64, pois []core.EnrichedPOI) (int64, error) {
	existing, err := l.repo.ExistingOSMIDs(ctx, destID)
	if err != nil {
		return 0, err
	}

	fresh := make([]core.EnrichedPOI, 0, len(pois))
	for i := range pois {
		if !existing[pois[i].OSMID] {
			fresh = append(fresh, pois[i])
		}
	}
	if len(fresh) == 0 {
		l.logger.Info("no new activities to copy", "existing", len(existing))
		return 0, nil
	}
	return l.repo.CopyActivities(ctx, destID, fresh)
}

func (l *Loader) checkpoint(ctx context.Context, city string, position, total int) {
	if l.state == nil || ctx.Err() != nil {
		return
	}
	err := l.state.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage:     CheckpointStage,
		City:      city,
		Position:  position,
		Total:     total,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		l.logger.Warn("checkpoint save failed", "city", city, "err", err)
	}
}
