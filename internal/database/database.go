package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection holding persisted routes.
type DB struct {
	db *sql.DB
}

// New creates and initializes a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := tuneSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to tune database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// tuneSQLite applies pragmas suited to a single-process writer with
// concurrent readers.
func tuneSQLite(db *sql.DB) error {
	// WAL allows route listings to proceed while a save is in flight
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// RouteRepository returns the saved-route repository backed by this
// connection.
func (d *DB) RouteRepository() RouteRepository {
	return &routeRepository{db: d.db}
}

// initSchema creates the database schema if it doesn't exist
func (d *DB) initSchema() error {
	routesSchema := `CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ship_id TEXT NOT NULL,
		start_port TEXT NOT NULL,
		end_port TEXT NOT NULL,
		path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_routes_ship_id ON routes(ship_id)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_created_at ON routes(created_at)`,
	}

	if _, err := d.db.Exec(routesSchema); err != nil {
		return fmt.Errorf("failed to create routes table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
