package discover

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/wikidata"
)

// placesBody mixes keepers with settlements that must drop out: too
// small, unnamed, no population tag, and a duplicate of Tbilisi.
const placesBody = `{
  "elements": [
    {"type": "node", "id": 2, "lat": 41.6168, "lon": 41.6367,
     "tags": {"place": "city", "name": "Batumi", "population": "169095"}},
    {"type": "node", "id": 1, "lat": 41.7151, "lon": 44.7925,
     "tags": {"place": "city", "name": "თბილისი", "name:en": "Tbilisi", "population": "1118035"}},
    {"type": "node", "id": 3, "lat": 42.2679, "lon": 42.6946,
     "tags": {"place": "city", "name": "Kutaisi", "population": "135201"}},
    {"type": "node", "id": 4, "lat": 41.9, "lon": 44.9,
     "tags": {"place": "town", "name": "Tsqaltubo", "population": "900"}},
    {"type": "node", "id": 5, "lat": 41.5, "lon": 44.5,
     "tags": {"place": "town", "name": "No Census Town"}},
    {"type": "node", "id": 6, "lat": 41.2, "lon": 44.2,
     "tags": {"place": "town", "population": "80000"}},
    {"type": "node", "id": 7, "lat": 41.7152, "lon": 44.7926,
     "tags": {"place": "city", "name": "Tbilisi", "population": "1118035"}}
  ]
}`

func newOverpassClient(t *testing.T, handler http.HandlerFunc) *overpass.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := overpass.NewClient(
		overpass.WithEndpoint(server.URL),
		overpass.WithRateInterval(0),
	)
	require.NoError(t, err)
	return client
}

func TestDiscoverer_Run_FiltersAndSorts(t *testing.T) {
	var query string
	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query = r.PostFormValue("data")
		w.Write([]byte(placesBody))
	})

	disc, err := NewDiscoverer(client)
	require.NoError(t, err)

	candidates, err := disc.Run(context.Background(), "Georgia", "GE")
	require.NoError(t, err)

	assert.Contains(t, query, `area["ISO3166-1"="GE"]`)
	assert.Contains(t, query, `node["place"="city"]`)
	assert.Contains(t, query, `node["place"="town"]`)

	require.Len(t, candidates, 3)
	assert.Equal(t, "Tbilisi", candidates[0].City.Name, "largest first")
	assert.Equal(t, "Batumi", candidates[1].City.Name)
	assert.Equal(t, "Kutaisi", candidates[2].City.Name)
	assert.Equal(t, int64(1118035), candidates[0].Population)

	tbilisi := candidates[0].City
	assert.Equal(t, "tbilisi", tbilisi.Slug)
	assert.Equal(t, "Georgia", tbilisi.Country)
	assert.InDelta(t, 41.7151+DefaultBBoxMargin, tbilisi.BBox.North, 1e-9)
	assert.InDelta(t, 41.7151-DefaultBBoxMargin, tbilisi.BBox.South, 1e-9)
	assert.InDelta(t, 44.7925+DefaultBBoxMargin, tbilisi.BBox.East, 1e-9)
	assert.InDelta(t, 44.7925-DefaultBBoxMargin, tbilisi.BBox.West, 1e-9)
}

func TestDiscoverer_Run_MinPopulation(t *testing.T) {
	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(placesBody))
	})

	disc, err := NewDiscoverer(client, WithMinPopulation(200000))
	require.NoError(t, err)

	candidates, err := disc.Run(context.Background(), "Georgia", "GE")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Tbilisi", candidates[0].City.Name)
}

func TestDiscoverer_Run_WikidataSupplement(t *testing.T) {
	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(placesBody))
	})

	// Only the Tbilisi lookup succeeds; the rest of the candidates must
	// survive untouched.
	tbilisiSparql := `{
	  "results": {
	    "bindings": [{
	      "city": {"type": "uri", "value": "http://www.wikidata.org/entity/Q994"},
	      "cityLabel": {"type": "literal", "value": "Tbilisi"},
	      "countryLabel": {"type": "literal", "value": "Georgia"},
	      "population": {"type": "literal", "value": "1200000"},
	      "image": {"type": "uri", "value": "https://commons.wikimedia.org/tbilisi.jpg"},
	      "coords": {"type": "literal", "value": "Point(44.7925 41.7151)"}
	    }]
	  }
	}`
	wikiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("query"), "Tbilisi") {
			w.Header().Set("Content-Type", "application/sparql-results+json")
			w.Write([]byte(tbilisiSparql))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(wikiServer.Close)

	wiki, err := wikidata.NewClient(wikidata.WithEndpoint(wikiServer.URL))
	require.NoError(t, err)

	disc, err := NewDiscoverer(client, WithWikidataClient(wiki), WithMaxInFlight(2))
	require.NoError(t, err)

	candidates, err := disc.Run(context.Background(), "Georgia", "GE")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "Q994", candidates[0].WikidataID)
	assert.Equal(t, int64(1200000), candidates[0].Population, "the larger census figure wins")
	assert.Equal(t, "https://commons.wikimedia.org/tbilisi.jpg", candidates[0].ImageURL)

	assert.Empty(t, candidates[1].WikidataID, "failed lookup leaves the candidate as harvested")
	assert.Equal(t, int64(169095), candidates[1].Population)
}

func TestDiscoverer_Run_NoCandidates(t *testing.T) {
	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	})

	disc, err := NewDiscoverer(client)
	require.NoError(t, err)

	_, err = disc.Run(context.Background(), "Georgia", "GE")
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestDiscoverer_Run_RejectedQuery(t *testing.T) {
	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	disc, err := NewDiscoverer(client)
	require.NoError(t, err)

	_, err = disc.Run(context.Background(), "Georgia", "GE")
	assert.ErrorIs(t, err, overpass.ErrBadStatus)
}

func TestRegistrySnippet_MergesIntoRegistry(t *testing.T) {
	candidates := []Candidate{
		{City: core.City{Slug: "gyumri", Name: "Gyumri", Country: "Armenia",
			BBox: core.BBox{North: 40.99, South: 40.59, East: 44.05, West: 43.65}}, Population: 121976},
		{City: core.City{Slug: "vanadzor", Name: "Vanadzor", Country: "Armenia",
			BBox: core.BBox{North: 41.01, South: 40.61, East: 44.69, West: 44.29}}, Population: 90525},
	}

	snippet, err := RegistrySnippet(candidates)
	require.NoError(t, err)

	var decoded map[string]core.City
	require.NoError(t, json.Unmarshal(snippet, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Gyumri", decoded["gyumri"].Name)
	assert.InDelta(t, 40.99, decoded["gyumri"].BBox.North, 1e-9)

	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, snippet, 0o644))

	reg, err := core.LoadRegistry(path)
	require.NoError(t, err)

	city, err := reg.Lookup("vanadzor")
	require.NoError(t, err)
	assert.Equal(t, "Vanadzor", city.Name)
	assert.Equal(t, "Armenia", city.Country)

	_, err = reg.Lookup("tbilisi")
	assert.NoError(t, err, "built-ins survive the merge")
}

func TestNewDiscoverer_Validation(t *testing.T) {
	_, err := NewDiscoverer(nil)
	assert.ErrorIs(t, err, ErrClientRequired)

	client := newOverpassClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err = NewDiscoverer(client, WithMinPopulation(-1))
	assert.Error(t, err)

	_, err = NewDiscoverer(client, WithBBoxMargin(0))
	assert.Error(t, err)

	_, err = NewDiscoverer(client, WithMaxInFlight(0))
	assert.Error(t, err)

	_, err = NewDiscoverer(client, WithPlaceTypes())
	assert.Error(t, err)
}
