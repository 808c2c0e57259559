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


package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/storage"
)

// Processor runs the bronze → silver stage for one city: it reads
// every harvested tile, normalizes elements into POIs, deduplicates,
// applies the data-quality gate, and writes the silver layer.
type Processor struct {
	store  storage.LayerStore
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewProcessor creates a processor over the given layer store.
func NewProcessor(store storage.LayerStore, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, ErrLayerStoreRequired
	}
	p := &Processor{
		store:  store,
		logger: slog.Default().With("component", "process"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run processes all bronze tiles for a city and writes the silver POI
// set plus processing stats. The output is deterministic for a given
// bronze tree: POIs are sorted by OSM ID before writing.
func (p *Processor) Run(ctx context.Context, city core.City) (*core.ProcessStats, error) {
	tileKeys, err := p.store.TileKeys(city.Slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoBronzeData, city.Slug)
		}
		return nil, err
	}
	if len(tileKeys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBronzeData, city.Slug)
	}

	stats := &core.ProcessStats{
		City:            city.Slug,
		RejectionCounts: make(map[string]int),
	}

	var pois []*core.POI
	for _, key := range tileKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := p.store.ReadTile(city.Slug, key)
		if err != nil {
			return nil, fmt.Errorf("read tile %s: %w", key, err)
		}
		elements, err := overpass.ParseElements(raw)
		if err != nil {
			return nil, fmt.Errorf("parse tile %s: %w", key, err)
		}
		stats.RawElements += len(elements)

		for i := range elements {
			poi, source, err := NormalizeElement(&elements[i])
			if err != nil {
				if errors.Is(err, ErrNoName) || errors.Is(err, ErrNameNotResolvable) {
					stats.DroppedNoName++
				}
				continue
			}
			poi.City = city.Name
			stats.Parsed++
			switch source {
			case NameAlreadyEnglish:
				stats.AlreadyEnglish++
			case NameOSMTag:
				stats.OSMEnglish++
			case NameTransliterated:
				stats.Transliterated++
			}
			pois = append(pois, poi)
		}
	}

	p.logger.Info("tiles parsed",
		"city", city.Slug,
		"tiles", len(tileKeys),
		"elements", stats.RawElements,
		"pois", stats.Parsed)

	deduped := Dedupe(pois)
	stats.Deduplicated = len(deduped)

	valid := make([]core.POI, 0, len(deduped))
	for _, poi := range deduped {
		if err := core.ValidatePOIWithin(poi, city.BBox); err != nil {
			stats.Rejected++
			stats.RejectionCounts[rejectionReason(err)]++
			p.logger.Debug("poi rejected", "osm_id", poi.OSMID, "err", err)
			continue
		}
		valid = append(valid, *poi)
	}
	stats.Valid = len(valid)

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].OSMID < valid[j].OSMID
	})

	if err := p.store.WritePOIs(city.Slug, valid); err != nil {
		return nil, fmt.Errorf("write silver pois: %w", err)
	}
	stats.ProcessedAt = time.Now().UTC()
	if err := p.store.WriteProcessStats(city.Slug, stats); err != nil {
		return nil, fmt.Errorf("write process stats: %w", err)
	}

	p.logger.Info("processing complete",
		"city", city.Slug,
		"raw", stats.RawElements,
		"deduplicated", stats.Deduplicated,
		"valid", stats.Valid,
		"rejected", stats.Rejected,
		"transliterated", stats.Transliterated)

	return stats, nil
}

// rejectionReason buckets a validation error for the stats report.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, core.ErrMissingName):
		return "missing_name"
	case errors.Is(err, core.ErrNameTooShort):
		return "name_too_short"
	case errors.Is(err, core.ErrNameTooLong):
		return "name_too_long"
	case errors.Is(err, core.ErrNonEnglishName):
		return "non_english_name"
	case errors.Is(err, core.ErrSuspiciousName):
		return "suspicious_name"
	case errors.Is(err, core.ErrGenericName):
		return "generic_name"
	case errors.Is(err, core.ErrDuplicateMarker):
		return "duplicate_marker"
	case errors.Is(err, core.ErrMissingCategory):
		return "invalid_category"
	case errors.Is(err, core.ErrInvalidCoordinates):
		return "invalid_coordinates"
	case errors.Is(err, core.ErrOutsideBBox):
		return "outside_bbox"
	default:
		return "other"
	}
}
