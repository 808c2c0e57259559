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


package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/pipeline"
	"github.com/poiesic/poirit/storage"
)

const (
	// TileStep is the tile edge length in degrees. 0.05° keeps each
	// Overpass query small enough that busy instances answer it.
	TileStep = 0.05

	// Source is the value recorded in harvest metadata.
	Source = "overpass"

	defaultMaxAttempts = 5
	defaultBaseDelay   = 5 * time.Second
)

// Harvester runs the bronze stage for one city.
type Harvester struct {
	store       storage.LayerStore
	client      *overpass.Client
	maxAttempts int
	baseDelay   time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Harvester.
type Option func(*Harvester) error

// WithMaxAttempts sets how many times a failing tile query is tried.
// Default is 5.
func WithMaxAttempts(n int) Option {
	return func(h *Harvester) error {
		if n < 1 {
			n = 1
		}
		h.maxAttempts = n
		return nil
	}
}

// WithBaseDelay sets the first retry delay; it doubles per attempt.
// Default is 5s.
func WithBaseDelay(d time.Duration) Option {
	return func(h *Harvester) error {
		if d <= 0 {
			return fmt.Errorf("base delay must be positive, got %v", d)
		}
		h.baseDelay = d
		return nil
	}
}

// WithProgressWriter sets where per-tile progress lines are written,
// typically os.Stderr. Default discards them.
func WithProgressWriter(w io.Writer) Option {
	return func(h *Harvester) error {
		if w == nil {
			w = io.Discard
		}
		h.progress = w
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harvester) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewHarvester creates the harvest stage over a layer store and an
// Overpass client.
func NewHarvester(store storage.LayerStore, client *overpass.Client, opts ...Option) (*Harvester, error) {
	if store == nil {
		return nil, ErrLayerStoreRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}

	h := &Harvester{
		store:       store,
		client:      client,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		progress:    io.Discard,
		logger:      slog.Default().With("component", "harvest"),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Run harvests every missing tile of the city's bounding box and
// writes the run metadata. Tiles whose bronze file already exists are
// skipped; tiles that keep failing are counted and left for the next
// run. On cancellation the metadata for the partial run is still
// written before the context error is returned.
func (h *Harvester) Run(ctx context.Context, city core.City) (*core.HarvestMetadata, error) {
	tiles := city.BBox.Tiles(TileStep)
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTiles, city.Slug)
	}

	meta := &core.HarvestMetadata{
		RunID:     uuid.NewString(),
		City:      city.Slug,
		BBox:      city.BBox,
		TileCount: len(tiles),
		Source:    Source,
		StartedAt: time.Now().UTC(),
	}

	h.logger.Info("harvest starting",
		"city", city.Slug,
		"run_id", meta.RunID,
		"tiles", len(tiles))

	tracker := pipeline.NewProgressTracker(h.progress, len(tiles), 1, "tiles")
	tracker.Start()

	for _, tile := range tiles {
		if ctx.Err() != nil {
			break
		}

		key := tile.Key()
		if h.store.TileExists(city.Slug, key) {
			meta.Skipped++
			tracker.Increment(1)
			continue
		}

		result, err := h.fetchTile(ctx, tile)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			meta.Failed++
			h.logger.Warn("tile failed, moving on",
				"city", city.Slug,
				"tile", key,
				"err", err)
			tracker.Increment(1)
			continue
		}

		if err := h.store.WriteTile(city.Slug, key, result.Raw); err != nil {
			// Another process may have raced us to the tile.
			if errors.Is(err, storage.ErrTileExists) {
				meta.Skipped++
				tracker.Increment(1)
				continue
			}
			return nil, fmt.Errorf("write tile %s: %w", key, err)
		}

		meta.Fetched++
		meta.Elements += len(result.Elements)
		tracker.Increment(1)
	}
	tracker.Finish()

	meta.FinishedAt = time.Now().UTC()
	if err := h.store.WriteHarvestMetadata(city.Slug, meta); err != nil {
		return nil, fmt.Errorf("write harvest metadata: %w", err)
	}

	if err := ctx.Err(); err != nil {
		h.logger.Warn("harvest interrupted",
			"city", city.Slug,
			"fetched", meta.Fetched,
			"remaining", meta.TileCount-meta.Fetched-meta.Skipped-meta.Failed)
		return nil, err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(h.progress, "Harvest complete. Fetched %d tiles in %v (%.1f tiles/sec)\n",
		meta.Fetched, elapsed.Round(time.Second), float64(meta.Fetched)/elapsed.Seconds())

	h.logger.Info("harvest complete",
		"city", city.Slug,
		"fetched", meta.Fetched,
		"skipped", meta.Skipped,
		"failed", meta.Failed,
		"elements", meta.Elements,
		"duration", meta.FinishedAt.Sub(meta.StartedAt).Round(time.Millisecond))
	return meta, nil
}

// fetchTile queries one tile with retry/backoff. Rejected queries fail
// immediately; throttling and server trouble back off and try again.
func (h *Harvester) fetchTile(ctx context.Context, tile core.Tile) (*overpass.Result, error) {
	var result *overpass.Result
	err := pipeline.RetryWithBackoffIf(ctx, func() error {
		r, err := h.client.Query(ctx, overpass.TileQuery(tile))
		if err != nil {
			return err
		}
		result = r
		return nil
	}, h.maxAttempts, h.baseDelay, overpass.IsRetryable)
	if err != nil {
		return nil, err
	}
	return result, nil
}
