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


package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the public Wikidata query service.
	DefaultEndpoint = "https://query.wikidata.org/sparql"

	defaultUserAgent   = "poirit/1.0 (+https://github.com/poiesic/poirit)"
	defaultHTTPTimeout = 30 * time.Second
)

// CityDetails holds the facts Wikidata knows about a city. Optional
// fields are zero when the entity does not record them.
type CityDetails struct {
	WikidataID  string
	Name        string
	Country     string
	Description string
	Currency    string
	ImageURL    string
	Population  int64
	Lat         float64
	Lon         float64
	HasCoords   bool
}

// Client talks to a SPARQL endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithEndpoint sets the SPARQL endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if endpoint == "" {
			return fmt.Errorf("endpoint must not be empty")
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithUserAgent sets the User-Agent header. Wikimedia blocks default
// library agents, so production deployments should identify themselves.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a Wikidata client with the given options.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:   DefaultEndpoint,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     slog.Default().With("component", "wikidata"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("wikidata client option: %w", err)
		}
	}
	return c, nil
}

// cityQuery matches a city entity by its English label and pulls the
// optional facts. P31/P279* keeps the match to cities and their
// subclasses so "Springfield the song" never wins over the place.
const cityQuery = `SELECT ?city ?cityLabel ?countryLabel ?population ?image ?currencyLabel ?coords ?desc WHERE {
  ?city rdfs:label %q@en.
  ?city wdt:P31/wdt:P279* wd:Q515.
  OPTIONAL { ?city wdt:P17 ?country. }
  OPTIONAL { ?city wdt:P1082 ?population. }
  OPTIONAL { ?city wdt:P18 ?image. }
  OPTIONAL { ?city wdt:P38 ?currency. }
  OPTIONAL { ?city wdt:P625 ?coords. }
  OPTIONAL { ?city schema:description ?desc. FILTER(LANG(?desc) = "en") }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 1`

// sparqlValue is one cell of a SPARQL JSON result.
type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

// CityDetails fetches the details for a city by its English name.
// Returns ErrNoResults when Wikidata has no matching city entity.
func (c *Client) CityDetails(ctx context.Context, cityName string) (*CityDetails, error) {
	query := fmt.Sprintf(cityQuery, cityName)

	binding, err := c.queryOne(ctx, query)
	if err != nil {
		return nil, err
	}

	details := &CityDetails{
		Name:        cityName,
		Country:     binding["countryLabel"].Value,
		Description: binding["desc"].Value,
		Currency:    binding["currencyLabel"].Value,
		ImageURL:    binding["image"].Value,
	}

	// Entity URIs look like http://www.wikidata.org/entity/Q994
	if uri := binding["city"].Value; uri != "" {
		parts := strings.Split(uri, "/")
		details.WikidataID = parts[len(parts)-1]
	}

	if pop := binding["population"].Value; pop != "" {
		if n, err := strconv.ParseInt(pop, 10, 64); err == nil {
			details.Population = n
		}
	}

	if wkt := binding["coords"].Value; wkt != "" {
		lat, lon, err := ParseWKTPoint(wkt)
		if err != nil {
			c.logger.Warn("skipping unparseable coordinates", "city", cityName, "wkt", wkt)
		} else {
			details.Lat = lat
			details.Lon = lon
			details.HasCoords = true
		}
	}

	return details, nil
}

// queryOne runs a SPARQL query and returns the first binding.
func (c *Client) queryOne(ctx context.Context, query string) (map[string]sparqlValue, error) {
	params := url.Values{
		"query":  {query},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build wikidata request: %w", err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikidata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w (HTTP %d): %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if len(parsed.Results.Bindings) == 0 {
		return nil, ErrNoResults
	}
	return parsed.Results.Bindings[0], nil
}
