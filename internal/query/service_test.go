package query

import (
	"testing"

	"shiptrack/internal/models"
	"shiptrack/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Service {
	records := []models.VesselRecord{
		{MMSI: "111", ShipType: "Cargo", Status: "Under way"},
		{MMSI: "222", ShipType: "Tanker", Status: "Moored"},
		{MMSI: "333", ShipType: "Cargo", Status: "Under way"},
		{MMSI: "444", ShipType: "Fishing", Status: "Engaged in fishing"},
	}

	st := store.New()
	st.Upsert(models.VesselState{MMSI: "111", Latitude: 10.0, Longitude: -40.0, SOG: 12.0, COG: 90.0, Status: "Under way"})
	st.Upsert(models.VesselState{MMSI: "222", Latitude: 35.0, Longitude: -20.0, SOG: 0.0, COG: 0.0, Status: "Moored"})
	st.Upsert(models.VesselState{MMSI: "333", Latitude: -5.0, Longitude: 100.0, SOG: 18.5, COG: 180.0, Status: "Under way"})
	st.Upsert(models.VesselState{MMSI: "444", Latitude: 12.0, Longitude: -42.0, SOG: 4.0, COG: 270.0, Status: "Engaged in fishing"})

	return New(records, st)
}

func speed(v float64) *float64 { return &v }

func TestVessel(t *testing.T) {
	svc := fixture()

	snap, err := svc.Vessel("111")
	require.NoError(t, err)
	assert.Equal(t, "Cargo", snap.Record.ShipType)
	assert.Equal(t, 12.0, snap.State.SOG)
}

func TestVessel_NotFound(t *testing.T) {
	svc := fixture()

	_, err := svc.Vessel("999")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVessel_NotFoundWithoutLiveState(t *testing.T) {
	// A record without a live state is still not found
	records := []models.VesselRecord{{MMSI: "555", ShipType: "Cargo"}}
	svc := New(records, store.New())

	_, err := svc.Vessel("555")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVessel_BlankIdentifier(t *testing.T) {
	svc := fixture()

	_, err := svc.Vessel("  ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestVessels_Unfiltered(t *testing.T) {
	svc := fixture()

	all, err := svc.Vessels(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	// Ordered by MMSI
	assert.Equal(t, "111", all[0].Record.MMSI)
	assert.Equal(t, "444", all[3].Record.MMSI)
}

func TestVessels_ShipTypeIsCaseInsensitive(t *testing.T) {
	svc := fixture()

	cargo, err := svc.Vessels(Filter{ShipType: "cArGo"})
	require.NoError(t, err)
	require.Len(t, cargo, 2)
	for _, snap := range cargo {
		assert.Equal(t, "Cargo", snap.Record.ShipType)
	}
}

func TestVessels_StatusFilter(t *testing.T) {
	svc := fixture()

	moored, err := svc.Vessels(Filter{Status: "moored"})
	require.NoError(t, err)
	require.Len(t, moored, 1)
	assert.Equal(t, "222", moored[0].Record.MMSI)
}

func TestVessels_SpeedRangeIsInclusive(t *testing.T) {
	svc := fixture()

	ranged, err := svc.Vessels(Filter{MinSpeed: speed(4.0), MaxSpeed: speed(12.0)})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "111", ranged[0].Record.MMSI)
	assert.Equal(t, "444", ranged[1].Record.MMSI)
}

func TestVessels_BoundingBox(t *testing.T) {
	svc := fixture()

	boxed, err := svc.Vessels(Filter{Bounds: &BoundingBox{
		LatMin: 5.0, LatMax: 15.0, LonMin: -45.0, LonMax: -35.0,
	}})
	require.NoError(t, err)
	require.Len(t, boxed, 2)
	for _, snap := range boxed {
		assert.GreaterOrEqual(t, snap.State.Latitude, 5.0)
		assert.LessOrEqual(t, snap.State.Latitude, 15.0)
		assert.GreaterOrEqual(t, snap.State.Longitude, -45.0)
		assert.LessOrEqual(t, snap.State.Longitude, -35.0)
	}
}

func TestVessels_FiltersCompose(t *testing.T) {
	svc := fixture()

	filter := Filter{
		ShipType: "Cargo",
		Status:   "under way",
		MinSpeed: speed(10.0),
		MaxSpeed: speed(15.0),
		Bounds:   &BoundingBox{LatMin: 0.0, LatMax: 20.0, LonMin: -50.0, LonMax: 0.0},
	}
	result, err := svc.Vessels(filter)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "111", result[0].Record.MMSI)
}

func TestVessels_Idempotent(t *testing.T) {
	svc := fixture()
	filter := Filter{ShipType: "Cargo", MinSpeed: speed(0.0), MaxSpeed: speed(20.0)}

	first, err := svc.Vessels(filter)
	require.NoError(t, err)
	second, err := svc.Vessels(filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVessels_FilteredIsSubsetOfUnfiltered(t *testing.T) {
	svc := fixture()

	all, err := svc.Vessels(Filter{})
	require.NoError(t, err)
	filtered, err := svc.Vessels(Filter{Status: "Under way"})
	require.NoError(t, err)

	unfiltered := make(map[string]bool)
	for _, snap := range all {
		unfiltered[snap.Record.MMSI] = true
	}
	for _, snap := range filtered {
		assert.True(t, unfiltered[snap.Record.MMSI])
	}
	assert.LessOrEqual(t, len(filtered), len(all))
}

func TestVessels_InvalidFilter(t *testing.T) {
	svc := fixture()

	_, err := svc.Vessels(Filter{MinSpeed: speed(10.0), MaxSpeed: speed(5.0)})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Vessels(Filter{MinSpeed: speed(-1.0)})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Vessels(Filter{Bounds: &BoundingBox{LatMin: 10.0, LatMax: 5.0}})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
