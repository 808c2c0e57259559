package harvest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/overpass"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/layerfs"
)

// testCity spans one row and two columns of 0.05° tiles.
var testCity = core.City{
	Slug: "tbilisi", Name: "Tbilisi", Country: "Georgia",
	BBox: core.BBox{North: 41.70, South: 41.65, East: 44.80, West: 44.70},
}

const tileBody = `{"elements":[
	{"type":"node","id":101,"lat":41.69,"lon":44.72,"tags":{"tourism":"museum","name":"Silk Museum"}},
	{"type":"way","id":202,"center":{"lat":41.68,"lon":44.71},"tags":{"historic":"castle","name":"Narikala"}}
]}`

func newTestStore(t *testing.T) storage.LayerStore {
	t.Helper()
	store, err := layerfs.Open(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *overpass.Client {
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

func TestHarvester_Run_FetchesAllTiles(t *testing.T) {
	var queries []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		queries = append(queries, r.PostFormValue("data"))
		w.Write([]byte(tileBody))
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client)
	require.NoError(t, err)

	meta, err := harvester.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, "tbilisi", meta.City)
	assert.Equal(t, Source, meta.Source)
	assert.Equal(t, 2, meta.TileCount)
	assert.Equal(t, 2, meta.Fetched)
	assert.Equal(t, 0, meta.Skipped)
	assert.Equal(t, 0, meta.Failed)
	assert.Equal(t, 4, meta.Elements)
	assert.False(t, meta.FinishedAt.Before(meta.StartedAt))

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], `node["tourism"]`)
	assert.Contains(t, queries[0], "out center")

	assert.True(t, store.TileExists("tbilisi", "tile_0_0"))
	assert.True(t, store.TileExists("tbilisi", "tile_0_1"))

	saved, err := store.ReadHarvestMetadata("tbilisi")
	require.NoError(t, err)
	assert.Equal(t, meta.RunID, saved.RunID)
	assert.Equal(t, 2, saved.Fetched)

	raw, err := store.ReadTile("tbilisi", "tile_0_0")
	require.NoError(t, err)
	elements, err := overpass.ParseElements(raw)
	require.NoError(t, err)
	assert.Len(t, elements, 2, "tiles hold the raw overpass elements")
}

func TestHarvester_Run_SkipsExistingTiles(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(tileBody))
	})
	store := newTestStore(t)
	require.NoError(t, store.WriteTile("tbilisi", "tile_0_0", []byte(`{"elements":[]}`)))

	harvester, err := NewHarvester(store, client)
	require.NoError(t, err)

	meta, err := harvester.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.Equal(t, 1, meta.Skipped)
	assert.Equal(t, 1, meta.Fetched)
	assert.Equal(t, 1, calls, "existing tiles never hit the network")
}

func TestHarvester_Run_RetriesThrottling(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(tileBody))
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client, WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	meta, err := harvester.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.Equal(t, 2, meta.Fetched)
	assert.Equal(t, 0, meta.Failed)
	assert.Equal(t, 3, calls, "first tile takes two attempts")
}

func TestHarvester_Run_CountsFailingTiles(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client,
		WithMaxAttempts(2), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	meta, err := harvester.Run(context.Background(), testCity)
	require.NoError(t, err, "a failing tile does not abort the run")

	assert.Equal(t, 2, meta.Failed)
	assert.Equal(t, 0, meta.Fetched)
	assert.Equal(t, 4, calls, "two attempts per tile")

	saved, err := store.ReadHarvestMetadata("tbilisi")
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Failed, "metadata is written even for a failed run")
}

func TestHarvester_Run_RejectedQueryNotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "parse error", http.StatusBadRequest)
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client,
		WithMaxAttempts(5), WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	meta, err := harvester.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.Equal(t, 2, meta.Failed)
	assert.Equal(t, 2, calls, "one attempt per tile, no backoff on rejection")
}

func TestHarvester_Run_CancelledBeforeStart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = harvester.Run(ctx, testCity)
	assert.ErrorIs(t, err, context.Canceled)

	saved, err := store.ReadHarvestMetadata("tbilisi")
	require.NoError(t, err, "partial runs still record metadata")
	assert.Equal(t, 0, saved.Fetched)
}

func TestHarvester_Run_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			cancel()
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(tileBody))
	})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client, WithBaseDelay(time.Millisecond))
	require.NoError(t, err)

	_, err = harvester.Run(ctx, testCity)
	assert.ErrorIs(t, err, context.Canceled)

	saved, err := store.ReadHarvestMetadata("tbilisi")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Fetched, "completed tiles survive the interrupt")
	assert.True(t, store.TileExists("tbilisi", "tile_0_0"))
}

func TestHarvester_Run_NoTiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	store := newTestStore(t)

	harvester, err := NewHarvester(store, client)
	require.NoError(t, err)

	degenerate := core.City{Slug: "nowhere", BBox: core.BBox{North: 1, South: 1, East: 1, West: 1}}
	_, err = harvester.Run(context.Background(), degenerate)
	assert.ErrorIs(t, err, ErrNoTiles)
}

func TestNewHarvester_Validation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := NewHarvester(nil, client)
	assert.ErrorIs(t, err, ErrLayerStoreRequired)

	store := newTestStore(t)
	_, err = NewHarvester(store, nil)
	assert.ErrorIs(t, err, ErrClientRequired)
}
