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


package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
)

// CheckpointStage is the stage name enrichment checkpoints are saved
// under.
const CheckpointStage = "enrich"

// Stats summarizes one enrichment run.
type Stats struct {
	City      string
	Silver    int // POIs read from the silver layer
	Skipped   int // already present in gold
	Selected  int // chosen for this run after priority and limit filters
	FromCache int
	FromModel int
	Fallbacks int
	Written   int // records in the gold layer after the run
}

// Enricher runs the silver → gold stage for one city: it scores POIs,
// asks the model for travel metadata in descending priority order, and
// writes the gold layer incrementally so interrupted runs keep their
// progress.
type Enricher struct {
	store       storage.LayerStore
	state       storage.StateStore
	enricher    ai.POIEnricher
	workers     int
	minPriority int
	limit       int
	saveEvery   int
	noCache     bool
	logger      *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher) error

// WithWorkers sets how many POIs are enriched concurrently.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(e *Enricher) error {
		if n < 1 {
			n = 1
		}
		e.workers = n
		return nil
	}
}

// WithMinPriority skips POIs scoring below the threshold.
func WithMinPriority(n int) Option {
	return func(e *Enricher) error {
		e.minPriority = n
		return nil
	}
}

// WithLimit caps how many new enrichments one run performs.
// Zero means unbounded.
func WithLimit(n int) Option {
	return func(e *Enricher) error {
		if n < 0 {
			n = 0
		}
		e.limit = n
		return nil
	}
}

// WithSaveEvery sets how many completions pass between incremental
// gold-layer writes. Default is 10.
func WithSaveEvery(n int) Option {
	return func(e *Enricher) error {
		if n < 1 {
			n = 1
		}
		e.saveEvery = n
		return nil
	}
}

// WithStateStore enables the enrichment cache and stage checkpoints.
func WithStateStore(state storage.StateStore) Option {
	return func(e *Enricher) error {
		e.state = state
		return nil
	}
}

// WithoutCache bypasses cache reads. Successful enrichments are still
// written to the cache so later runs benefit.
func WithoutCache() Option {
	return func(e *Enricher) error {
		e.noCache = true
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEnricher creates the enrichment stage over a layer store and an
// AI provider.
func NewEnricher(store storage.LayerStore, provider ai.Provider, opts ...Option) (*Enricher, error) {
	if store == nil {
		return nil, ErrLayerStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	e := &Enricher{
		store:     store,
		enricher:  provider.POIEnricher(),
		workers:   1,
		saveEvery: 10,
		logger:    slog.Default().With("component", "enrich"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Run enriches the silver POIs of a city and writes the gold layer.
// POIs already present in gold are skipped, so re-running continues
// where the last run stopped. On cancellation the completed work is
// flushed before the context error is returned.
func (e *Enricher) Run(ctx context.Context, city core.City) (*Stats, error) {
	pois, err := e.store.ReadPOIs(city.Slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSilverData, city.Slug)
		}
		return nil, err
	}
	pois = Prioritize(pois)

	existing, err := e.store.ReadEnriched(city.Slug)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	done := make(map[string]bool, len(existing))
	for i := range existing {
		done[existing[i].OSMID] = true
	}

	stats := &Stats{City: city.Slug, Silver: len(pois)}

	var work []core.POI
	for i := range pois {
		if done[pois[i].OSMID] {
			stats.Skipped++
			continue
		}
		if pois[i].Priority < e.minPriority {
			continue
		}
		if e.limit > 0 && len(work) >= e.limit {
			break
		}
		work = append(work, pois[i])
	}
	stats.Selected = len(work)

	if len(work) == 0 {
		stats.Written = len(existing)
		e.logger.Info("nothing to enrich",
			"city", city.Slug,
			"silver", stats.Silver,
			"existing", len(existing))
		return stats, nil
	}

	e.logger.Info("enriching pois",
		"city", city.Slug,
		"selected", stats.Selected,
		"skipped", stats.Skipped,
		"workers", e.workers)

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	// Slot per work item so output keeps priority order no matter
	// which worker finishes first.
	results := make([]*core.EnrichedPOI, len(work))
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
	)

	for i := range work {
		if ctx.Err() != nil {
			break
		}
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			enriched, origin := e.enrichOne(ctx, &work[i])
			if enriched == nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			results[i] = enriched
			completed++
			switch origin {
			case originCache:
				stats.FromCache++
			case originModel:
				stats.FromModel++
			case originFallback:
				stats.Fallbacks++
			}
			if completed%e.saveEvery == 0 {
				if err := e.flush(city.Slug, existing, results); err != nil {
					e.logger.Error("error writing gold layer", "city", city.Slug, "err", err)
				}
				e.checkpoint(ctx, city.Slug, completed, len(work))
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, submitErr
		}
	}
	wg.Wait()

	out := merge(existing, results)
	if err := e.store.WriteEnriched(city.Slug, out); err != nil {
		return nil, fmt.Errorf("write gold pois: %w", err)
	}
	stats.Written = len(out)
	e.checkpoint(ctx, city.Slug, completed, len(work))

	if err := ctx.Err(); err != nil {
		e.logger.Warn("enrichment interrupted",
			"city", city.Slug,
			"completed", completed,
			"selected", stats.Selected)
		return nil, err
	}

	e.logger.Info("enrichment complete",
		"city", city.Slug,
		"model", stats.FromModel,
		"cache", stats.FromCache,
		"fallback", stats.Fallbacks,
		"written", stats.Written)
	return stats, nil
}

const (
	originModel = iota
	originCache
	originFallback
)

// enrichOne produces the gold record for a single POI: cache first,
// then the model, then the deterministic fallback. It returns nil only
// when the context was cancelled mid-call.
func (e *Enricher) enrichOne(ctx context.Context, poi *core.POI) (*core.EnrichedPOI, int) {
	if enrichment := e.fromCache(ctx, poi); enrichment != nil {
		return &core.EnrichedPOI{POI: *poi, Enrichment: *enrichment}, originCache
	}

	enrichment, err := e.enricher.EnrichPOI(ctx, poi)
	if err != nil {
		if ctx.Err() != nil {
			return nil, originFallback
		}
		e.logger.Warn("enrichment failed, using fallback",
			"osm_id", poi.OSMID,
			"name", poi.Name,
			"err", err)
		return &core.EnrichedPOI{POI: *poi, Enrichment: *Fallback(poi)}, originFallback
	}

	e.toCache(ctx, poi, enrichment)
	return &core.EnrichedPOI{POI: *poi, Enrichment: *enrichment}, originModel
}

// fromCache returns the cached enrichment when the POI's content hash
// still matches; a changed hash means the silver record was edited and
// the cache entry is stale.
func (e *Enricher) fromCache(ctx context.Context, poi *core.POI) *core.Enrichment {
	if e.state == nil || e.noCache {
		return nil
	}
	cached, err := e.state.GetEnrichment(ctx, poi.OSMID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("cache read failed", "osm_id", poi.OSMID, "err", err)
		}
		return nil
	}
	if cached.ContentHash != uint64(poi.ContentHash()) {
		return nil
	}

	var enrichment core.Enrichment
	if err := json.Unmarshal(cached.Payload, &enrichment); err != nil {
		e.logger.Warn("cache payload corrupt", "osm_id", poi.OSMID, "err", err)
		return nil
	}
	return &enrichment
}

// toCache stores a model enrichment. Fallback results are never
// cached; a later run with a healthy endpoint should retry them.
func (e *Enricher) toCache(ctx context.Context, poi *core.POI, enrichment *core.Enrichment) {
	if e.state == nil {
		return
	}
	payload, err := json.Marshal(enrichment)
	if err != nil {
		return
	}
	err = e.state.PutEnrichment(ctx, &core.EnrichmentState{
		OSMID:       poi.OSMID,
		ContentHash: uint64(poi.ContentHash()),
		Model:       enrichment.Source,
		EnrichedAt:  enrichment.EnrichedAt,
		Payload:     payload,
	})
	if err != nil {
		e.logger.Warn("cache write failed", "osm_id", poi.OSMID, "err", err)
	}
}

// flush rewrites the gold layer with everything enriched so far.
// Callers hold the results lock.
func (e *Enricher) flush(city string, existing []core.EnrichedPOI, results []*core.EnrichedPOI) error {
	return e.store.WriteEnriched(city, merge(existing, results))
}

func merge(existing []core.EnrichedPOI, results []*core.EnrichedPOI) []core.EnrichedPOI {
	out := make([]core.EnrichedPOI, 0, len(existing)+len(results))
	out = append(out, existing...)
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Enricher) checkpoint(ctx context.Context, city string, position, total int) {
	if e.state == nil || ctx.Err() != nil {
		return
	}
	err := e.state.SaveCheckpoint(ctx, &core.Checkpoint{
		Stage:     CheckpointStage,
		City:      city,
		Position:  position,
		Total:     total,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		e.logger.Warn("checkpoint save failed", "city", city, "err", err)
	}
}
