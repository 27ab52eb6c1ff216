package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"shiptrack/internal/geo"
	"shiptrack/internal/models"
)

// columnAliases maps each logical field onto the column names the
// historical dataset exports have used for it.
var columnAliases = map[string][]string{
	"mmsi":     {"MMSI", "mmsi", "ID"},
	"lat":      {"lat", "LAT", "Latitude"},
	"lon":      {"lon", "LON", "Longitude"},
	"sog":      {"sog", "SOG", "Speed"},
	"cog":      {"cog", "COG", "Course"},
	"status":   {"status", "Status", "ShipStatus"},
	"shiptype": {"shiptype", "ShipType", "VesselType"},
}

// requiredFields must resolve to a column or the load fails with ErrSchema.
// The course column is also required unless the loader runs in
// RandomCourse mode, where a seeded uniform course substitutes for it.
var requiredFields = []string{"mmsi", "lat", "lon", "sog"}

const (
	defaultStatus = "Unknown"
	nudgeOffset   = 0.5 // degrees added to a non-navigable recorded position
)

// Options controls optional ingestion behavior.
type Options struct {
	MaxVessels   int   // bound the working set; 0 means unbounded
	Seed         int64 // seed for sampling and randomized defaults
	RandomCourse bool  // assign a seeded uniform [0,360) course when the course column is absent
	RandomSpeed  bool  // assign a seeded uniform [5,15) kn speed to vessels reported at 0 kn
}

// Loader reads an AIS dataset and produces the static record set together
// with one initial live state per vessel.
type Loader struct {
	oracle *geo.Oracle
	opts   Options
}

// NewLoader creates a loader that resolves initial positions against the
// given oracle.
func NewLoader(oracle *geo.Oracle, opts Options) *Loader {
	return &Loader{oracle: oracle, opts: opts}
}

// parsedRow is one dataset row with its logical fields resolved.
type parsedRow struct {
	mmsi      string
	lat, lon  float64
	sog, cog  float64
	status    string
	shipType  string
	hasCoords bool
	extra     map[string]string
}

// Load reads the CSV at path and returns the vessel records and their
// initial states. A missing or unreadable source fails with ErrDataSource;
// an unresolvable required column fails with ErrSchema. Given the same
// source and seed the result is identical across runs.
func (l *Loader) Load(path string) ([]models.VesselRecord, []models.VesselState, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrDataSource, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true    // Handle malformed quotes in CSV
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading header of %s: %v", models.ErrDataSource, path, err)
	}

	headerMap := make(map[string]int)
	for i, h := range header {
		headerMap[strings.Trim(strings.TrimSpace(h), "'\"")] = i
	}

	columns, err := resolveColumns(headerMap, l.opts.RandomCourse)
	if err != nil {
		return nil, nil, err
	}

	rows, err := l.readRows(reader, headerMap, columns, path)
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(l.opts.Seed))
	rows = sampleRows(rows, l.opts.MaxVessels, rng)

	records := make([]models.VesselRecord, 0, len(rows))
	states := make([]models.VesselState, 0, len(rows))
	for _, row := range rows {
		if _, hasCog := columns["cog"]; !hasCog && l.opts.RandomCourse {
			row.cog = rng.Float64() * 360
		}
		if row.sog == 0 && l.opts.RandomSpeed {
			row.sog = 5 + rng.Float64()*10
		}

		lat, lon := l.resolvePosition(row, rng)

		records = append(records, models.VesselRecord{
			MMSI:     row.mmsi,
			ShipType: row.shipType,
			Status:   row.status,
			Extra:    row.extra,
		})
		states = append(states, models.VesselState{
			MMSI:      row.mmsi,
			Latitude:  lat,
			Longitude: lon,
			SOG:       row.sog,
			COG:       geo.NormalizeCourse(row.cog),
			Status:    row.status,
		})
	}

	return records, states, nil
}

// resolveColumns maps each logical field onto a column index, trying every
// known alias. Required fields that stay unresolved fail the load.
func resolveColumns(headerMap map[string]int, randomCourse bool) (map[string]int, error) {
	columns := make(map[string]int)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx, ok := headerMap[alias]; ok {
				columns[field] = idx
				break
			}
		}
	}

	required := requiredFields
	if !randomCourse {
		required = append(append([]string{}, required...), "cog")
	}
	for _, field := range required {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("%w: no column matches %q (known aliases: %s)",
				models.ErrSchema, field, strings.Join(columnAliases[field], ", "))
		}
	}

	return columns, nil
}

// readRows parses every dataset row, keeping the first occurrence of each
// MMSI in source order.
func (l *Loader) readRows(reader *csv.Reader, headerMap, columns map[string]int, path string) ([]parsedRow, error) {
	canonical := make(map[int]bool)
	for _, idx := range columns {
		canonical[idx] = true
	}

	var rows []parsedRow
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", models.ErrDataSource, path, err)
		}

		mmsi := getField(record, columns, "mmsi")
		if mmsi == "" || seen[mmsi] {
			continue
		}
		seen[mmsi] = true

		latField := getField(record, columns, "lat")
		lonField := getField(record, columns, "lon")

		status := getField(record, columns, "status")
		if status == "" {
			status = defaultStatus
		}

		extra := make(map[string]string)
		for name, idx := range headerMap {
			if !canonical[idx] && idx < len(record) {
				extra[name] = strings.TrimSpace(record[idx])
			}
		}

		rows = append(rows, parsedRow{
			mmsi:      mmsi,
			lat:       parseFloat(latField),
			lon:       parseFloat(lonField),
			sog:       parseFloat(getField(record, columns, "sog")),
			cog:       parseFloat(getField(record, columns, "cog")),
			status:    status,
			shipType:  getField(record, columns, "shiptype"),
			hasCoords: latField != "" && lonField != "",
			extra:     extra,
		})
	}

	return rows, nil
}

// sampleRows bounds the working set to max distinct vessels with a uniform
// sample without replacement, preserving source order among the chosen.
func sampleRows(rows []parsedRow, max int, rng *rand.Rand) []parsedRow {
	if max <= 0 || len(rows) <= max {
		return rows
	}

	chosen := make(map[int]bool, max)
	for _, idx := range rng.Perm(len(rows))[:max] {
		chosen[idx] = true
	}

	sampled := make([]parsedRow, 0, max)
	for i, row := range rows {
		if chosen[i] {
			sampled = append(sampled, row)
		}
	}
	return sampled
}

// resolvePosition picks a vessel's starting coordinate: the recorded one
// if navigable, a nudged recorded one as a second chance, and otherwise a
// random coordinate within full bounds.
func (l *Loader) resolvePosition(row parsedRow, rng *rand.Rand) (float64, float64) {
	if row.hasCoords {
		if l.oracle.Navigable(row.lat, row.lon) {
			return row.lat, row.lon
		}
		lat := geo.ClampLat(row.lat + nudgeOffset)
		lon := geo.WrapLon(row.lon + nudgeOffset)
		if l.oracle.Navigable(lat, lon) {
			return lat, lon
		}
	}

	var lat, lon float64
	for i := 0; i < 100; i++ {
		lat = rng.Float64()*180 - 90
		lon = rng.Float64()*360 - 180
		if l.oracle.Navigable(lat, lon) {
			break
		}
	}
	return lat, lon
}

// parseFloat converts a dataset cell to a float, defaulting to 0.0 for
// empty, malformed, or non-finite values.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// getField safely retrieves a field from a CSV record by logical name.
func getField(record []string, columns map[string]int, field string) string {
	if idx, ok := columns[field]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}
