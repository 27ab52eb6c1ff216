package models

// VesselRecord holds the static attributes of a tracked vessel as loaded
// from the AIS dataset. Records are immutable after ingestion.
type VesselRecord struct {
	MMSI     string            // Unique vessel identifier
	ShipType string            // Reported ship type, may be empty
	Status   string            // Navigational status label as reported
	Extra    map[string]string // Remaining dataset columns, carried through unchanged
}

// VesselState is the live position and kinematics of a vessel. States are
// created once at ingestion and mutated only by the motion update task.
type VesselState struct {
	MMSI      string  `json:"mmsi"`
	Latitude  float64 `json:"latitude"`  // degrees, clamped to [-90, 90]
	Longitude float64 `json:"longitude"` // degrees, wrapped to [-180, 180)
	SOG       float64 `json:"sog"`       // speed over ground, knots
	COG       float64 `json:"cog"`       // course over ground, degrees [0, 360)
	Status    string  `json:"status"`
}
