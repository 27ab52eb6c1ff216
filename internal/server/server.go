package server

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shiptrack/internal/database"
	"shiptrack/internal/geo"
	"shiptrack/internal/models"
	"shiptrack/internal/query"
	"shiptrack/internal/route"
)

// Server exposes the query service and the route engine over HTTP. It
// owns request parsing, CORS policy and error-code mapping; all domain
// logic lives behind it.
type Server struct {
	query         *query.Service
	engine        *route.Engine
	routes        database.RouteRepository // nil when route persistence is unavailable
	snapshotLimit int
}

// New builds a server. A nil route repository disables saving but not
// route computation.
func New(qs *query.Service, engine *route.Engine, routes database.RouteRepository, snapshotLimit int) *Server {
	return &Server{
		query:         qs,
		engine:        engine,
		routes:        routes,
		snapshotLimit: snapshotLimit,
	}
}

// Router assembles the gin router with permissive CORS for the frontend.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"*"}
	r.Use(cors.New(config))

	r.GET("/", s.handleHome)
	r.GET("/health", s.handleHealth)
	r.GET("/ship-traffic", s.handleShipTraffic)
	r.GET("/ship/:mmsi", s.handleShip)
	r.GET("/ports", s.handlePorts)
	r.POST("/route", s.handleRoute)
	r.GET("/routes", s.handleSavedRoutes)

	return r
}

// Run starts serving on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AIS vessel tracking API is running with real-time movement"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// shipResponse flattens a query snapshot for the wire.
type shipResponse struct {
	MMSI      string  `json:"mmsi"`
	ShipType  string  `json:"ship_type,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SOG       float64 `json:"sog"`
	COG       float64 `json:"cog"`
	Status    string  `json:"status"`
}

func toShipResponse(snap query.Snapshot) shipResponse {
	return shipResponse{
		MMSI:      snap.Record.MMSI,
		ShipType:  snap.Record.ShipType,
		Latitude:  snap.State.Latitude,
		Longitude: snap.State.Longitude,
		SOG:       snap.State.SOG,
		COG:       snap.State.COG,
		Status:    snap.State.Status,
	}
}

func (s *Server) handleShipTraffic(c *gin.Context) {
	filter, limit, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if limit < 0 {
		limit = s.snapshotLimit
	}

	snapshots, err := s.query.Vessels(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}

	ships := make([]shipResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		ships = append(ships, toShipResponse(snap))
	}
	c.JSON(http.StatusOK, gin.H{"ships": ships})
}

func (s *Server) handleShip(c *gin.Context) {
	snap, err := s.query.Vessel(c.Param("mmsi"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShipResponse(snap))
}

func (s *Server) handlePorts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ports": route.Ports()})
}

type routeRequest struct {
	ShipID string `json:"ship_id"`
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
	Save   bool   `json:"save"`
}

func (s *Server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := s.engine.Find(req.Start, req.End)
	if err != nil {
		respondError(c, err)
		return
	}
	if path == nil {
		path = []geo.Coordinate{}
	}

	saved := false
	if req.Save && len(path) > 0 {
		if s.routes == nil {
			slog.Warn("Route save requested but persistence is unavailable")
		} else {
			record := &models.SavedRoute{
				ShipID:    req.ShipID,
				StartPort: req.Start,
				EndPort:   req.End,
				Path:      path,
			}
			if err := s.routes.Insert(record); err != nil {
				// Persistence is best effort; the computed route still ships
				slog.Error("Failed to save route", "ship_id", req.ShipID, "error", err)
			} else {
				saved = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ship_id":         req.ShipID,
		"optimized_route": path,
		"saved":           saved,
	})
}

func (s *Server) handleSavedRoutes(c *gin.Context) {
	if s.routes == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "route persistence is unavailable"})
		return
	}

	var (
		routes []*models.SavedRoute
		err    error
	)
	if shipID := c.Query("ship_id"); shipID != "" {
		routes, err = s.routes.ListByShip(shipID)
	} else {
		routes, err = s.routes.List()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if routes == nil {
		routes = []*models.SavedRoute{}
	}

	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// parseFilter builds a query filter from URL parameters. The bounding box
// requires all four bounds; supplying only some is malformed.
func parseFilter(c *gin.Context) (query.Filter, int, error) {
	filter := query.Filter{
		ShipType: c.Query("type"),
		Status:   c.Query("status"),
	}

	var err error
	if filter.MinSpeed, err = floatParam(c, "min_sog"); err != nil {
		return query.Filter{}, 0, err
	}
	if filter.MaxSpeed, err = floatParam(c, "max_sog"); err != nil {
		return query.Filter{}, 0, err
	}

	bounds := make(map[string]*float64, 4)
	set := 0
	for _, name := range []string{"lat_min", "lat_max", "lon_min", "lon_max"} {
		v, err := floatParam(c, name)
		if err != nil {
			return query.Filter{}, 0, err
		}
		bounds[name] = v
		if v != nil {
			set++
		}
	}
	switch set {
	case 0:
	case 4:
		filter.Bounds = &query.BoundingBox{
			LatMin: *bounds["lat_min"],
			LatMax: *bounds["lat_max"],
			LonMin: *bounds["lon_min"],
			LonMax: *bounds["lon_max"],
		}
	default:
		return query.Filter{}, 0, errors.New("bounding box requires lat_min, lat_max, lon_min and lon_max")
	}

	// limit -1 means "not supplied"; the handler substitutes its default
	limit := -1
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query.Filter{}, 0, errors.New("limit must be a non-negative integer")
		}
	}

	return filter, limit, nil
}

// floatParam parses an optional float query parameter.
func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &v, nil
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ship not found"})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
