package load

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/poirit/core"
	"github.com/poiesic/poirit/storage"
	"github.com/poiesic/poirit/storage/badger"
	"github.com/poiesic/poirit/storage/layerfs"
)

var testCity = core.City{
	Slug: "tbilisi", Name: "Tbilisi", Country: "Georgia",
	BBox: core.BBox{North: 41.80, South: 41.65, East: 44.90, West: 44.70},
}

func newTestStore(t *testing.T) storage.LayerStore {
	t.Helper()
	store, err := layerfs.Open(t.TempDir())
	require.NoError(t, err)
	return store
}

// seedGold writes a destination and three enriched POIs for the city.
func seedGold(t *testing.T, store storage.LayerStore) {
	t.Helper()
	require.NoError(t, store.WriteDestination(testCity.Slug, testDestination()))

	pois := testEnrichedPOIs()
	pois = append(pois, core.EnrichedPOI{
		POI:        core.POI{OSMID: "node/3", Name: "Shavi Lomi", Category: "restaurant", Lat: 41.71, Lon: 44.80, Priority: 10},
		Enrichment: pois[0].Enrichment,
	})
	require.NoError(t, store.WriteEnriched(testCity.Slug, pois))
}

func expectDestinationUpsert(mock pgxmock.PgxPoolIface, id int64) {
	mock.ExpectQuery(`INSERT INTO destinations`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectExec(`INSERT INTO destination_details`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestLoader_Run_UpsertPath(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)

	expectDestinationUpsert(mock, 7)
	mock.ExpectExec(`INSERT INTO activities`).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))

	loader, err := NewLoader(store, repo)
	require.NoError(t, err)

	stats, err := loader.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.DestinationID)
	assert.Equal(t, 3, stats.Activities)
	assert.Equal(t, int64(3), stats.Loaded)
	assert.Equal(t, 1, stats.Batches)
	assert.False(t, stats.Fallback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Run_BatchesBySize(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)

	expectDestinationUpsert(mock, 7)
	mock.ExpectExec(`INSERT INTO activities`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(`INSERT INTO activities`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loader, err := NewLoader(store, repo, WithBatchSize(2))
	require.NoError(t, err)

	stats, err := loader.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, int64(3), stats.Loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Run_FallbackOnMissingIndex(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)

	expectDestinationUpsert(mock, 7)
	mock.ExpectExec(`INSERT INTO activities`).
		WillReturnError(&pgconn.PgError{
			Code:    "42P10",
			Message: "there is no unique or exclusion constraint matching the ON CONFLICT specification",
		})
	mock.ExpectQuery(`SELECT osm_id FROM activities`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"osm_id"}).AddRow("node/1"))
	mock.ExpectCopyFrom(pgx.Identifier{"activities"}, activityColumns).
		WillReturnResult(2)

	loader, err := NewLoader(store, repo)
	require.NoError(t, err)

	stats, err := loader.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.True(t, stats.Fallback)
	assert.Equal(t, int64(2), stats.Loaded, "only the rows missing from the database are copied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_Run_DryRun(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)

	loader, err := NewLoader(store, repo, WithDryRun())
	require.NoError(t, err)

	stats, err := loader.Run(context.Background(), testCity)
	require.NoError(t, err)

	assert.True(t, stats.DryRun)
	assert.Equal(t, 3, stats.Activities)
	assert.Zero(t, stats.Loaded)
	assert.NoError(t, mock.ExpectationsWereMet(), "dry run never touches the database")
}

func TestLoader_Run_NoDestination(t *testing.T) {
	store := newTestStore(t)
	repo, _ := newMockRepository(t)

	loader, err := NewLoader(store, repo)
	require.NoError(t, err)

	_, err = loader.Run(context.Background(), testCity)
	assert.ErrorIs(t, err, ErrNoDestination)
}

func TestLoader_Run_NoGoldPOIs(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteDestination(testCity.Slug, testDestination()))
	repo, _ := newMockRepository(t)

	loader, err := NewLoader(store, repo)
	require.NoError(t, err)

	_, err = loader.Run(context.Background(), testCity)
	assert.ErrorIs(t, err, ErrNoGoldData)
}

func TestLoader_Run_SavesCheckpoint(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)
	state, err := badger.NewMemoryStateStore()
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })

	expectDestinationUpsert(mock, 7)
	mock.ExpectExec(`INSERT INTO activities`).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))

	loader, err := NewLoader(store, repo, WithCheckpoints(state))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = loader.Run(ctx, testCity)
	require.NoError(t, err)

	checkpoint, err := state.LoadCheckpoint(ctx, CheckpointStage, testCity.Slug)
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, 3, checkpoint.Position)
	assert.Equal(t, 3, checkpoint.Total)
}

func TestLoader_Run_ContextCancelled(t *testing.T) {
	store := newTestStore(t)
	seedGold(t, store)
	repo, mock := newMockRepository(t)

	expectDestinationUpsert(mock, 7)

	loader, err := NewLoader(store, repo)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = loader.Run(ctx, testCity)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLoader_Validation(t *testing.T) {
	repo, _ := newMockRepository(t)

	_, err := NewLoader(nil, repo)
	assert.ErrorIs(t, err, ErrLayerStoreRequired)

	store := newTestStore(t)
	_, err = NewLoader(store, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}
