package database

import (
	"path/filepath"
	"testing"

	"shiptrack/internal/geo"
	"shiptrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "shiptrack_test.db"))
	require.NoError(t, err)
	require.NotNil(t, db)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func TestNew(t *testing.T) {
	db := setupTestDB(t)
	assert.NotNil(t, db.RouteRepository())
}

func TestInsertAndList(t *testing.T) {
	repo := setupTestDB(t).RouteRepository()

	route := &models.SavedRoute{
		ShipID:    "A1",
		StartPort: "Port A",
		EndPort:   "Port B",
		Path: []geo.Coordinate{
			{Lat: 33.7405, Lon: -118.2519},
			{Lat: 34.7405, Lon: -118.2519},
			{Lat: 34.7405, Lon: -117.2519},
		},
	}

	require.NoError(t, repo.Insert(route))
	assert.NotZero(t, route.ID)

	routes, err := repo.List()
	require.NoError(t, err)
	require.Len(t, routes, 1)

	// Read back verbatim
	got := routes[0]
	assert.Equal(t, route.ShipID, got.ShipID)
	assert.Equal(t, route.StartPort, got.StartPort)
	assert.Equal(t, route.EndPort, got.EndPort)
	assert.Equal(t, route.Path, got.Path)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestList_Empty(t *testing.T) {
	repo := setupTestDB(t).RouteRepository()

	routes, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestListByShip(t *testing.T) {
	repo := setupTestDB(t).RouteRepository()

	for _, shipID := range []string{"A1", "A1", "B2"} {
		require.NoError(t, repo.Insert(&models.SavedRoute{
			ShipID:    shipID,
			StartPort: "Port A",
			EndPort:   "Port D",
			Path:      []geo.Coordinate{{Lat: 33.7405, Lon: -118.2519}},
		}))
	}

	routes, err := repo.ListByShip("A1")
	require.NoError(t, err)
	require.Len(t, routes, 2)
	for _, r := range routes {
		assert.Equal(t, "A1", r.ShipID)
	}

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInsert_EmptyPathRoundTrips(t *testing.T) {
	repo := setupTestDB(t).RouteRepository()

	require.NoError(t, repo.Insert(&models.SavedRoute{
		ShipID:    "A1",
		StartPort: "Port A",
		EndPort:   "Port B",
		Path:      []geo.Coordinate{},
	}))

	routes, err := repo.List()
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, []geo.Coordinate{}, routes[0].Path)
}
