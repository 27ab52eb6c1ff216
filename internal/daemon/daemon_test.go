package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"shiptrack/internal/config"
	"shiptrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, csvContent string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	dataPath := filepath.Join(dir, "ais.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(csvContent), 0o644))

	return &config.Config{
		ListenAddr:  ":0",
		DataPath:    dataPath,
		DBPath:      filepath.Join(dir, "shiptrack.db"),
		TickSeconds: 3,
		ScaleFactor: 0.0002,
		Seed:        42,
		Log:         config.LogConfig{Level: "error", Format: "text"},
	}
}

func TestNew_PopulatesStoreFromDataset(t *testing.T) {
	cfg := testConfig(t, "MMSI,LAT,LON,SOG,COG,Status\n"+
		"111,40.0,-40.0,10.0,90.0,Under way\n"+
		"222,35.0,-20.0,0.0,0.0,Moored\n")

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Stop()

	assert.Equal(t, 2, d.store.Len())

	state, err := d.store.Get("111")
	require.NoError(t, err)
	assert.Equal(t, 40.0, state.Latitude)
}

func TestNew_MissingDataSourceIsFatal(t *testing.T) {
	cfg := testConfig(t, "MMSI,LAT,LON,SOG,COG\n111,40.0,-40.0,10.0,90.0\n")
	cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := New(cfg)
	assert.ErrorIs(t, err, models.ErrDataSource)
}

func TestNew_UnresolvableSchemaIsFatal(t *testing.T) {
	cfg := testConfig(t, "foo,bar\n1,2\n")

	_, err := New(cfg)
	assert.ErrorIs(t, err, models.ErrSchema)
}

func TestNew_RunsWithoutRoutePersistence(t *testing.T) {
	cfg := testConfig(t, "MMSI,LAT,LON,SOG,COG\n111,40.0,-40.0,10.0,90.0\n")
	// A directory path cannot be opened as a SQLite file
	cfg.DBPath = t.TempDir()

	d, err := New(cfg)
	require.NoError(t, err)
	defer d.Stop()

	assert.Nil(t, d.db)
	assert.Equal(t, 1, d.store.Len())
}
