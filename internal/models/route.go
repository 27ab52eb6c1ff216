package models

import (
	"time"

	"shiptrack/internal/geo"
)

// SavedRoute is a computed route a client chose to persist.
type SavedRoute struct {
	ID        int64            `json:"id"`
	ShipID    string           `json:"ship_id"`
	StartPort string           `json:"start"`
	EndPort   string           `json:"end"`
	Path      []geo.Coordinate `json:"path"`
	CreatedAt time.Time        `json:"created_at"`
}
