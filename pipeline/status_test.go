package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/enrich"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/badger"
	"github.com/poiesic/poirit/storage/layerfs"
)

func seedStatusFixtures(t *testing.T) (storage.LayerStore, storage.StateStore) {
	t.Helper()
	store, err := layerfs.Open(t.TempDir())
	require.NoError(t, err)
	state, err := badger.NewMemoryStateStore()
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })

	require.NoError(t, store.WriteTile("tbilisi", "tile_0_0", []byte(`{"elements":[]}`)))
	require.NoError(t, store.WriteTile("tbilisi", "tile_0_1", []byte(`{"elements":[]}`)))
	require.NoError(t, store.WritePOIs("tbilisi", []core.POI{
		{OSMID: "node/1", Name: "Silk Museum", Category: "museum", Lat: 41.70, Lon: 44.79},
		{OSMID: "node/2", Name: "Narikala", Category: "castle", Lat: 41.69, Lon: 44.81},
	}))
	require.NoError(t, store.WriteEnriched("tbilisi", []core.EnrichedPOI{
		{
			POI:        core.POI{OSMID: "node/1", Name: "Silk Museum", Category: "museum"},
			Enrichment: core.Enrichment{Description: "Worth a look.", Source: "mock"},
		},
	}))
	require.NoError(t, state.SaveCheckpoint(context.Background(), &core.Checkpoint{
		Stage:     enrich.CheckpointStage,
		City:      "tbilisi",
		Position:  1,
		Total:     2,
		UpdatedAt: time.Now().UTC(),
	}))

	// A second city that only reached bronze.
	require.NoError(t, store.WriteTile("batumi", "tile_0_0", []byte(`{"elements":[]}`)))

	return store, state
}

func TestCollectStatus(t *testing.T) {
	store, state := seedStatusFixtures(t)

	status, err := CollectStatus(context.Background(), store, state, "tbilisi")
	require.NoError(t, err)

	assert.Equal(t, "tbilisi", status.City)
	assert.Equal(t, 2, status.BronzeTiles)
	assert.Equal(t, 2, status.SilverPOIs)
	assert.Equal(t, 1, status.GoldEnriched)
	assert.False(t, status.HasDestination)

	require.Len(t, status.Checkpoints, 1)
	assert.Equal(t, enrich.CheckpointStage, status.Checkpoints[0].Stage)
	assert.Equal(t, 1, status.Checkpoints[0].Position)
	assert.Equal(t, 2, status.Checkpoints[0].Total)
}

func TestCollectStatus_UnknownCityIsEmpty(t *testing.T) {
	store, state := seedStatusFixtures(t)

	status, err := CollectStatus(context.Background(), store, state, "atlantis")
	require.NoError(t, err, "a city with no layers is all zeros, not an error")

	assert.Zero(t, status.BronzeTiles)
	assert.Zero(t, status.SilverPOIs)
	assert.Zero(t, status.GoldEnriched)
	assert.Empty(t, status.Checkpoints)
}

func TestCollectStatus_NilStateSkipsCheckpoints(t *testing.T) {
	store, _ := seedStatusFixtures(t)

	status, err := CollectStatus(context.Background(), store, nil, "tbilisi")
	require.NoError(t, err)

	assert.Equal(t, 2, status.BronzeTiles)
	assert.Empty(t, status.Checkpoints)
}

func TestCollectAll(t *testing.T) {
	store, state := seedStatusFixtures(t)

	statuses, err := CollectAll(context.Background(), store, state)
	require.NoError(t, err)

	require.Len(t, statuses, 2)
	assert.Equal(t, "batumi", statuses[0].City, "sorted by slug")
	assert.Equal(t, 1, statuses[0].BronzeTiles)
	assert.Zero(t, statuses[0].SilverPOIs)
	assert.Equal(t, "tbilisi", statuses[1].City)
}
