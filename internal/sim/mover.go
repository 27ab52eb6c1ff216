package sim

import (
	"context"
	"math"
	"math/rand"
	"time"

	"log/slog"

	"shiptrack/internal/geo"
	"shiptrack/internal/models"
	"shiptrack/internal/store"
)

const (
	// DefaultScaleFactor converts speed over ground in knots into degrees
	// of displacement per tick.
	DefaultScaleFactor = 0.0002

	// DefaultInterval is the tick period of the motion update task.
	DefaultInterval = 3 * time.Second

	// courseNudgeDeg bounds the random course change applied when a vessel
	// would otherwise run aground.
	courseNudgeDeg = 10.0
)

// Mover is the motion update task. It is the single writer of the vessel
// state store: each tick it advances every moving vessel along its course,
// holding position and nudging the course when the projected point is not
// navigable.
type Mover struct {
	store    *store.Store
	oracle   *geo.Oracle
	scale    float64
	interval time.Duration
	rng      *rand.Rand
}

// NewMover creates the motion task. The rng drives course nudges only and
// is seeded for reproducible runs.
func NewMover(st *store.Store, oracle *geo.Oracle, scale float64, interval time.Duration, seed int64) *Mover {
	if scale <= 0 {
		scale = DefaultScaleFactor
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Mover{
		store:    st,
		oracle:   oracle,
		scale:    scale,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (m *Mover) Name() string { return "motion-update" }

func (m *Mover) Interval() time.Duration { return m.interval }

// Run executes one tick over a snapshot of the store. A malformed vessel
// state is skipped and logged, never fatal; an empty store is a no-op.
func (m *Mover) Run(ctx context.Context) error {
	for _, state := range m.store.GetAll() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !valid(state) {
			slog.Warn("Skipping vessel with malformed state",
				"mmsi", state.MMSI,
				"lat", state.Latitude,
				"lon", state.Longitude,
			)
			continue
		}

		m.store.Upsert(m.Advance(state))
	}
	return nil
}

// Advance computes one tick for a single vessel. A moored vessel (zero
// speed over ground) holds position exactly. A moving vessel is displaced
// by sog*scale along its course; if the projected point is not navigable
// the vessel keeps its position and turns by a bounded random amount
// instead.
func (m *Mover) Advance(state models.VesselState) models.VesselState {
	if state.SOG == 0 {
		return state
	}

	displacement := state.SOG * m.scale
	angle := state.COG * math.Pi / 180

	lat := geo.ClampLat(state.Latitude + displacement*math.Cos(angle))
	lon := geo.WrapLon(state.Longitude + displacement*math.Sin(angle))

	if m.oracle.Navigable(lat, lon) {
		state.Latitude = lat
		state.Longitude = lon
	} else {
		nudge := m.rng.Float64()*2*courseNudgeDeg - courseNudgeDeg
		state.COG = geo.NormalizeCourse(state.COG + nudge)
	}

	return state
}

// valid filters out states the motion model cannot advance.
func valid(state models.VesselState) bool {
	for _, v := range []float64{state.Latitude, state.Longitude, state.SOG, state.COG} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return state.SOG >= 0
}
