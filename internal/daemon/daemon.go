package daemon

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"shiptrack/internal/config"
	"shiptrack/internal/database"
	"shiptrack/internal/geo"
	"shiptrack/internal/ingest"
	"shiptrack/internal/query"
	"shiptrack/internal/route"
	"shiptrack/internal/scheduler"
	"shiptrack/internal/server"
	"shiptrack/internal/sim"
	"shiptrack/internal/store"
)

// Daemon owns the vessel engine: the ingested records, the live state
// store, the motion scheduler and the HTTP server.
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	store     *store.Store
	server    *server.Server
	db        *database.DB
	serveErr  chan error
}

// New ingests the dataset and wires every component. Ingestion failures
// (unreadable source, unresolvable schema) are returned to the caller and
// must abort startup; the service never serves with an unresolved schema.
func New(cfg *config.Config) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	oracle := geo.NewOracle(geo.DefaultLandRegions())

	loader := ingest.NewLoader(oracle, ingest.Options{
		MaxVessels:   cfg.MaxVessels,
		Seed:         cfg.Seed,
		RandomCourse: cfg.RandomCourse,
		RandomSpeed:  cfg.RandomSpeed,
	})
	records, states, err := loader.Load(cfg.DataPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to ingest AIS data: %w", err)
	}
	slog.Info("AIS data ingested", "path", cfg.DataPath, "vessels", len(records))

	st := store.New()
	for _, state := range states {
		st.Upsert(state)
	}

	sched := scheduler.New(ctx)
	mover := sim.NewMover(st, oracle, cfg.ScaleFactor,
		time.Duration(cfg.TickSeconds)*time.Second, cfg.Seed)
	sched.AddTask(mover)

	// Saved routes are best effort: the engine keeps serving without them
	var routeRepo database.RouteRepository
	db, err := database.New(cfg.DBPath)
	if err != nil {
		slog.Warn("Route persistence unavailable", "db_path", cfg.DBPath, "error", err)
		db = nil
	} else {
		routeRepo = db.RouteRepository()
	}

	// The grid search uses a permissive oracle: the production water check
	// for planned routes accepts everything and only the cost model varies
	engine := route.NewEngine(geo.NewOracle(nil), route.WithCost(route.RandomCost(cfg.Seed)))

	srv := server.New(query.New(records, st), engine, routeRepo, cfg.SnapshotLimit)

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		scheduler: sched,
		store:     st,
		server:    srv,
		db:        db,
		serveErr:  make(chan error, 1),
	}, nil
}

// Start launches the motion scheduler and the HTTP server.
func (d *Daemon) Start() error {
	slog.Info("Starting daemon", "listen_addr", d.cfg.ListenAddr, "vessels", d.store.Len())

	d.scheduler.Start()

	go func() {
		if err := d.server.Run(d.cfg.ListenAddr); err != nil {
			d.serveErr <- err
		}
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// ServeErr reports a fatal HTTP server error, if any.
func (d *Daemon) ServeErr() <-chan error {
	return d.serveErr
}

// Stop gracefully stops the daemon.
func (d *Daemon) Stop() error {
	slog.Info("Stopping daemon")
	d.cancel()
	d.scheduler.Stop()

	if d.db != nil {
		if err := d.db.Close(); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}

	slog.Info("Daemon stopped")
	return nil
}
