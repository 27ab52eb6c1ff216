package query

import (
	"fmt"
	"sort"
	"strings"

	"shiptrack/internal/models"
	"shiptrack/internal/store"
)

// Snapshot joins a vessel's static record with its live state.
type Snapshot struct {
	Record models.VesselRecord
	State  models.VesselState
}

// BoundingBox is an inclusive latitude/longitude window over live
// positions.
type BoundingBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Filter selects vessels. Zero-valued fields are ignored; the set ones
// compose with logical AND.
type Filter struct {
	ShipType string   // case-insensitive exact match
	Status   string   // case-insensitive exact match
	MinSpeed *float64 // inclusive lower bound on sog
	MaxSpeed *float64 // inclusive upper bound on sog
	Bounds   *BoundingBox
}

// validate rejects malformed filter values before the store is touched.
func (f Filter) validate() error {
	if f.MinSpeed != nil && *f.MinSpeed < 0 {
		return fmt.Errorf("%w: min speed must be non-negative", models.ErrInvalidInput)
	}
	if f.MinSpeed != nil && f.MaxSpeed != nil && *f.MinSpeed > *f.MaxSpeed {
		return fmt.Errorf("%w: speed range is inverted", models.ErrInvalidInput)
	}
	if f.Bounds != nil && (f.Bounds.LatMin > f.Bounds.LatMax || f.Bounds.LonMin > f.Bounds.LonMax) {
		return fmt.Errorf("%w: bounding box is inverted", models.ErrInvalidInput)
	}
	return nil
}

// matches reports whether the snapshot satisfies every set predicate.
func (f Filter) matches(s Snapshot) bool {
	if f.ShipType != "" && !strings.EqualFold(f.ShipType, s.Record.ShipType) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(f.Status, s.State.Status) {
		return false
	}
	if f.MinSpeed != nil && s.State.SOG < *f.MinSpeed {
		return false
	}
	if f.MaxSpeed != nil && s.State.SOG > *f.MaxSpeed {
		return false
	}
	if b := f.Bounds; b != nil {
		if s.State.Latitude < b.LatMin || s.State.Latitude > b.LatMax ||
			s.State.Longitude < b.LonMin || s.State.Longitude > b.LonMax {
			return false
		}
	}
	return true
}

// Service answers read-only vessel queries against the static record set
// and the live state store. It never mutates either.
type Service struct {
	records map[string]models.VesselRecord
	store   *store.Store
}

// New builds a query service over the ingested records and the store.
func New(records []models.VesselRecord, st *store.Store) *Service {
	byMMSI := make(map[string]models.VesselRecord, len(records))
	for _, r := range records {
		byMMSI[r.MMSI] = r
	}
	return &Service{records: byMMSI, store: st}
}

// Vessel looks up a single vessel by MMSI. A blank identifier fails with
// ErrInvalidInput; an identifier absent from either the record set or the
// state store fails with ErrNotFound.
func (s *Service) Vessel(mmsi string) (Snapshot, error) {
	if strings.TrimSpace(mmsi) == "" {
		return Snapshot{}, fmt.Errorf("%w: blank vessel identifier", models.ErrInvalidInput)
	}

	record, ok := s.records[mmsi]
	if !ok {
		return Snapshot{}, models.ErrNotFound
	}
	state, err := s.store.Get(mmsi)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Record: record, State: state}, nil
}

// Vessels returns every vessel matching the filter, ordered by MMSI. The
// result is a pure function of the current store contents and the filter.
func (s *Service) Vessels(f Filter) ([]Snapshot, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	var result []Snapshot
	for mmsi, state := range s.store.GetAll() {
		record, ok := s.records[mmsi]
		if !ok {
			continue
		}
		snapshot := Snapshot{Record: record, State: state}
		if f.matches(snapshot) {
			result = append(result, snapshot)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Record.MMSI < result[j].Record.MMSI
	})
	return result, nil
}
