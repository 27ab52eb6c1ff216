package route

import (
	"sort"

	"shiptrack/internal/geo"
)

// ports is the fixed waypoint registry: named harbor coordinates just off
// the coast, read-only.
var ports = map[string]geo.Coordinate{
	"Port A": {Lat: 33.7405, Lon: -118.2519}, // Los Angeles
	"Port B": {Lat: 40.6728, Lon: -74.1536},  // New York
	"Port C": {Lat: 29.7305, Lon: -95.0892},  // Houston
	"Port D": {Lat: 25.7785, Lon: -80.1826},  // Miami
	"Port E": {Lat: 32.0835, Lon: -81.0998},  // Savannah
	"Port F": {Lat: 47.6019, Lon: -122.3381}, // Seattle
}

// Ports returns the names of all registered waypoints, sorted.
func Ports() []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
