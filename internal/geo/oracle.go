package geo

// Region is an open axis-aligned latitude/longitude rectangle classified
// as land. Bounds are exclusive, matching the production classification.
type Region struct {
	Name   string
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// contains reports whether the coordinate falls strictly inside the region.
func (r Region) contains(lat, lon float64) bool {
	return lat > r.LatMin && lat < r.LatMax && lon > r.LonMin && lon < r.LonMax
}

// DefaultLandRegions returns the coarse land classification used for the
// live traffic simulation: the polar bands plus rectangles approximating
// continental Africa and North America. This is a heuristic, not a
// geographic authority.
func DefaultLandRegions() []Region {
	return []Region{
		{Name: "arctic", LatMin: 60, LatMax: 90.1, LonMin: -180.1, LonMax: 180.1},
		{Name: "antarctic", LatMin: -90.1, LatMax: -60, LonMin: -180.1, LonMax: 180.1},
		{Name: "africa", LatMin: -20, LatMax: 30, LonMin: -20, LonMax: 50},
		{Name: "north-america", LatMin: 30, LatMax: 60, LonMin: -130, LonMax: -60},
	}
}

// Oracle decides whether a coordinate is navigable open water. It is a
// total, deterministic predicate over its configured land regions; an
// Oracle with no regions treats every coordinate as navigable.
type Oracle struct {
	regions []Region
}

// NewOracle builds an oracle from the given land regions.
func NewOracle(regions []Region) *Oracle {
	return &Oracle{regions: regions}
}

// Navigable reports whether the coordinate lies outside every land region.
func (o *Oracle) Navigable(lat, lon float64) bool {
	for _, r := range o.regions {
		if r.contains(lat, lon) {
			return false
		}
	}
	return true
}
