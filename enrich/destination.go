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
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/poirit/ai"
	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/wikidata"
)

// countryFacts supply the destination fields the city registry does
// not record.
var countryFacts = map[string]struct{ Code, Timezone string }{
	"Georgia": {"GE", "Asia/Tbilisi"},
}

// DestinationEnricher builds the city-level gold record: an LLM
// profile supplemented with Wikidata facts.
type DestinationEnricher struct {
	store    storage.LayerStore
	enricher ai.DestinationEnricher
	wikidata *wikidata.Client
	logger   *slog.Logger
}

// DestinationOption configures a DestinationEnricher.
type DestinationOption func(*DestinationEnricher) error

// WithWikidataClient enables the Wikidata supplement step.
func WithWikidataClient(client *wikidata.Client) DestinationOption {
	return func(d *DestinationEnricher) error {
		d.wikidata = client
		return nil
	}
}

// WithDestinationLogger sets a custom logger. Default is slog.Default().
func WithDestinationLogger(logger *slog.Logger) DestinationOption {
	return func(d *DestinationEnricher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDestinationEnricher creates the destination stage over a layer
// store and a destination enricher.
func NewDestinationEnricher(store storage.LayerStore, enricher ai.DestinationEnricher, opts ...DestinationOption) (*DestinationEnricher, error) {
	if store == nil {
		return nil, ErrLayerStoreRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}

	d := &DestinationEnricher{
		store:    store,
		enricher: enricher,
		logger:   slog.Default().With("component", "enrich-destination"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Run generates the destination profile for a city and writes it to
// the gold layer. A model failure falls back to the canned profile;
// a Wikidata failure just skips the supplement.
func (d *DestinationEnricher) Run(ctx context.Context, city core.City) (*core.Destination, error) {
	dest, err := d.enricher.EnrichDestination(ctx, city)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.logger.Warn("destination enrichment failed, using fallback",
			"city", city.Slug, "err", err)
		dest = FallbackDestination(city)
	}

	if facts, ok := countryFacts[city.Country]; ok {
		dest.CountryCode = facts.Code
		dest.Timezone = facts.Timezone
	} else {
		dest.CountryCode = "XX"
		dest.Timezone = "UTC"
	}

	if d.wikidata != nil {
		d.supplement(ctx, city, dest)
	}

	if err := d.store.WriteDestination(city.Slug, dest); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	d.logger.Info("destination written",
		"city", city.Slug,
		"source", dest.Source,
		"population", dest.Population,
		"wikidata", dest.WikidataID != "")
	return dest, nil
}

// supplement layers Wikidata facts over the profile. Parsed
// coordinates replace the bbox midpoint; everything else fills fields
// the model cannot know.
func (d *DestinationEnricher) supplement(ctx context.Context, city core.City, dest *core.Destination) {
	details, err := d.wikidata.CityDetails(ctx, city.Name)
	if err != nil {
		d.logger.Warn("wikidata lookup failed", "city", city.Name, "err", err)
		return
	}

	dest.WikidataID = details.WikidataID
	dest.Population = details.Population
	dest.Currency = details.Currency
	dest.ImageURL = details.ImageURL
	if details.HasCoords {
		dest.Lat = details.Lat
		dest.Lon = details.Lon
	}
}

// FallbackDestination builds the canned profile used when the model is
// unavailable. Identity and coordinates still come from the city
// record.
func FallbackDestination(city core.City) *core.Destination {
	lat, lon := city.BBox.Center()
	return &core.Destination{
		Slug:       city.Slug,
		Name:       city.Name,
		Country:    city.Country,
		Lat:        lat,
		Lon:        lon,
		Summary:    fmt.Sprintf("%s is a vibrant destination known for its rich history and culture.", city.Name),
		WhyGo:      []string{"Ancient Architecture", "Delicious Cuisine", "Scenic Views"},
		Tags:       []string{"heritage", "culture", "food"},
		BestMonths: []int{4, 5, 9, 10},
		MonthlyInsights: map[int]core.MonthlyInsight{
			1: {Verdict: "Winter chill", AvgTempC: 5, CrowdLevel: "low"},
			7: {Verdict: "Hot summer", AvgTempC: 30, CrowdLevel: "high"},
		},
		PersonaFit: core.NormalizePersonaScores(map[string]int{
			core.PersonaCulturalExplorer:   90,
			core.PersonaCulinaryEnthusiast: 85,
		}),
		Budget: core.Budget{
			Level:     "mid-range",
			DailyCost: map[string]int{"backpacker": 40, "mid_range": 90, "luxury": 200},
		},
		Safety:       core.Safety{Score: 0.9, Notes: "Very safe for tourists."},
		Connectivity: core.Connectivity{WiFi: "Excellent", Mobile: "4G/5G available"},
		Source:       FallbackSource,
		EnrichedAt:   time.Now().UTC(),
	}
}
