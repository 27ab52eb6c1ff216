package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"shiptrack/internal/geo"
	"shiptrack/internal/models"
)

// RouteRepository stores accepted routes and reads them back verbatim.
type RouteRepository interface {
	Insert(route *models.SavedRoute) error
	List() ([]*models.SavedRoute, error)
	ListByShip(shipID string) ([]*models.SavedRoute, error)
}

type routeRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a repository over an existing connection.
func NewRouteRepository(db *sql.DB) RouteRepository {
	return &routeRepository{db: db}
}

// Insert persists one route. The path is stored as JSON text.
func (r *routeRepository) Insert(route *models.SavedRoute) error {
	path, err := json.Marshal(route.Path)
	if err != nil {
		return fmt.Errorf("failed to encode route path: %w", err)
	}

	result, err := r.db.Exec(
		`INSERT INTO routes (ship_id, start_port, end_port, path, created_at) VALUES (?, ?, ?, ?, ?)`,
		route.ShipID,
		route.StartPort,
		route.EndPort,
		string(path),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert route: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		route.ID = id
	}
	return nil
}

// List returns every saved route, newest first.
func (r *routeRepository) List() ([]*models.SavedRoute, error) {
	return r.query(`SELECT id, ship_id, start_port, end_port, path, created_at
		FROM routes ORDER BY created_at DESC, id DESC`)
}

// ListByShip returns the saved routes for one ship, newest first.
func (r *routeRepository) ListByShip(shipID string) ([]*models.SavedRoute, error) {
	return r.query(`SELECT id, ship_id, start_port, end_port, path, created_at
		FROM routes WHERE ship_id = ? ORDER BY created_at DESC, id DESC`, shipID)
}

func (r *routeRepository) query(q string, args ...interface{}) ([]*models.SavedRoute, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []*models.SavedRoute
	for rows.Next() {
		var route models.SavedRoute
		var path string
		if err := rows.Scan(&route.ID, &route.ShipID, &route.StartPort, &route.EndPort, &path, &route.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		if err := json.Unmarshal([]byte(path), &route.Path); err != nil {
			return nil, fmt.Errorf("failed to decode route path: %w", err)
		}
		if route.Path == nil {
			route.Path = []geo.Coordinate{}
		}
		routes = append(routes, &route)
	}

	return routes, rows.Err()
}
