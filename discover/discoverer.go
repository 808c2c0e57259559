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


package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/wikidata"
)

const (
	// DefaultMinPopulation excludes villages and hamlets that rarely
	// carry enough tagged POIs to be worth a harvest.
	DefaultMinPopulation = 50000

	// DefaultBBoxMargin is the half-width in degrees of the synthesized
	// bounding box, roughly a 20 km radius at mid latitudes.
	DefaultBBoxMargin = 0.2

	defaultMaxInFlight = 4
)

// defaultPlaceTypes are the OSM place classes treated as destinations.
var defaultPlaceTypes = []string{"city", "town"}

// Candidate is one discovered destination, ordered by population.
type Candidate struct {
	City       core.City
	Population int64
	WikidataID string
	ImageURL   string
}

// Discoverer turns a country code into a list of harvestable cities.
type Discoverer struct {
	client        *overpass.Client
	wikidata      *wikidata.Client
	minPopulation int64
	placeTypes    []string
	margin        float64
	maxInFlight   int
	logger        *slog.Logger
}

// Option configures a Discoverer.
type Option func(*Discoverer) error

// WithWikidataClient enables the Wikidata supplement pass: candidates
// gain entity IDs, images, and authoritative population figures.
func WithWikidataClient(client *wikidata.Client) Option {
	return func(d *Discoverer) error {
		d.wikidata = client
		return nil
	}
}

// WithMinPopulation sets the population floor for candidates.
func WithMinPopulation(n int64) Option {
	return func(d *Discoverer) error {
		if n < 0 {
			return fmt.Errorf("min population must not be negative, got %d", n)
		}
		d.minPopulation = n
		return nil
	}
}

// WithPlaceTypes overrides the OSM place classes queried.
func WithPlaceTypes(types ...string) Option {
	return func(d *Discoverer) error {
		if len(types) == 0 {
			return fmt.Errorf("at least one place type is required")
		}
		d.placeTypes = types
		return nil
	}
}

// WithBBoxMargin sets the half-width in degrees of synthesized
// bounding boxes.
func WithBBoxMargin(deg float64) Option {
	return func(d *Discoverer) error {
		if deg <= 0 {
			return fmt.Errorf("bbox margin must be positive, got %g", deg)
		}
		d.margin = deg
		return nil
	}
}

// WithMaxInFlight bounds concurrent Wikidata lookups.
func WithMaxInFlight(n int) Option {
	return func(d *Discoverer) error {
		if n < 1 {
			return fmt.Errorf("max in flight must be at least 1, got %d", n)
		}
		d.maxInFlight = n
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) error {
		d.logger = logger
		return nil
	}
}

// NewDiscoverer builds a discoverer over an Overpass client.
func NewDiscoverer(client *overpass.Client, opts ...Option) (*Discoverer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	d := &Discoverer{
		client:        client,
		minPopulation: DefaultMinPopulation,
		placeTypes:    defaultPlaceTypes,
		margin:        DefaultBBoxMargin,
		maxInFlight:   defaultMaxInFlight,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "discoverer")
	return d, nil
}

// Run lists settlements in the country identified by its ISO 3166-1
// alpha-2 code, keeps those above the population floor, and returns
// them largest first. countryName fills the Country field of candidates
// Wikidata cannot improve on.
func (d *Discoverer) Run(ctx context.Context, countryName, countryCode string) ([]Candidate, error) {
	d.logger.Info("discovering destinations",
		"country", countryName, "code", countryCode, "min_population", d.minPopulation)

	result, err := d.client.Query(ctx, overpass.PlacesQuery(countryCode, d.placeTypes...))
	if err != nil {
		return nil, fmt.Errorf("list settlements for %s: %w", countryCode, err)
	}

	candidates := d.collect(countryName, result.Elements)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCandidates, countryCode)
	}

	if d.wikidata != nil {
		d.supplement(ctx, candidates)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Population > candidates[j].Population
	})

	d.logger.Info("discovery complete", "country", countryName, "candidates", len(candidates))
	return candidates, nil
}

// collect filters settlement elements down to named, populated,
// located candidates, one per slug.
func (d *Discoverer) collect(country string, elements []overpass.Element) []Candidate {
	seen := make(map[string]bool, len(elements))
	var out []Candidate
	for i := range elements {
		el := &elements[i]

		name := el.Tag("name:en")
		if name == "" {
			name = el.Tag("name")
		}
		if name == "" {
			continue
		}

		// Settlements without a population tag cannot pass the floor.
		pop, err := strconv.ParseInt(el.Tag("population"), 10, 64)
		if err != nil || pop < d.minPopulation {
			continue
		}

		lat, lon, ok := el.Coordinates()
		if !ok {
			continue
		}

		slug := core.Slugify(name)
		if seen[slug] {
			continue
		}
		seen[slug] = true

		out = append(out, Candidate{
			City: core.City{
				Slug:    slug,
				Name:    name,
				Country: country,
				BBox: core.BBox{
					North: lat + d.margin,
					South: lat - d.margin,
					East:  lon + d.margin,
					West:  lon - d.margin,
				},
			},
			Population: pop,
		})
	}
	return out
}

// supplement fans out Wikidata lookups over the candidates. Lookup
// failures leave the Overpass-derived candidate untouched.
func (d *Discoverer) supplement(ctx context.Context, candidates []Candidate) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxInFlight)

	for i := range candidates {
		cand := &candidates[i]
		g.Go(func() error {
			details, err := d.wikidata.CityDetails(ctx, cand.City.Name)
			if err != nil {
				d.logger.Warn("wikidata lookup failed", "city", cand.City.Name, "error", err)
				return nil
			}
			cand.WikidataID = details.WikidataID
			cand.ImageURL = details.ImageURL
			if details.Country != "" {
				cand.City.Country = details.Country
			}
			if details.Population > cand.Population {
				cand.Population = details.Population
			}
			return nil
		})
	}

	// Workers swallow their errors, so Wait only synchronizes.
	_ = g.Wait()
}

// RegistrySnippet renders candidates as a city registry document,
// keyed by slug, that core.LoadRegistry merges over the built-ins.
func RegistrySnippet(candidates []Candidate) ([]byte, error) {
	reg := make(map[string]core.City, len(candidates))
	for _, c := range candidates {
		reg[c.City.Slug] = c.City
	}
	out, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode registry snippet: %w", err)
	}
	return out, nil
}
