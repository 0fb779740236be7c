// Package server exposes the grid, zone, access and insight operations over
// HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/access"
	"github.com/sells-group/landscope/internal/grid"
	"github.com/sells-group/landscope/internal/insight"
	"github.com/sells-group/landscope/internal/remediation"
	"github.com/sells-group/landscope/internal/timeline"
	"github.com/sells-group/landscope/internal/zone"
)

// Deps are the collaborators a Server is built from. Registry and Grid are
// required; everything else has a usable zero value.
type Deps struct {
	Registry    *zone.Registry
	Grid        *grid.Cache
	Checkpoints []timeline.Checkpoint
	Store       *remediation.Store
	Insight     *insight.Service
	Metrics     *Metrics
	CORSOrigins []string
}

// Server holds the API state. It is safe for concurrent use.
type Server struct {
	reg         *zone.Registry
	grid        *grid.Cache
	access      *access.Classifier
	checkpoints []timeline.Checkpoint
	operational timeline.Checkpoint
	store       *remediation.Store
	insight     *insight.Service
	metrics     *Metrics
	origins     []string
}

// New validates d and builds a Server.
func New(d Deps) (*Server, error) {
	if d.Registry == nil {
		return nil, eris.New("server: registry is required")
	}
	if d.Grid == nil {
		return nil, eris.New("server: grid cache is required")
	}

	checkpoints := d.Checkpoints
	if len(checkpoints) == 0 {
		checkpoints = timeline.DefaultCheckpoints()
	}
	if err := timeline.Validate(checkpoints); err != nil {
		return nil, eris.Wrap(err, "server: checkpoints")
	}
	op, _ := timeline.Operational(checkpoints)

	classifier := access.FromRegistry(d.Registry)
	store := d.Store
	if store == nil {
		store = remediation.NewStore()
	}
	svc := d.Insight
	if svc == nil {
		svc = insight.NewService(nil, classifier)
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		reg:         d.Registry,
		grid:        d.Grid,
		access:      classifier,
		checkpoints: checkpoints,
		operational: op,
		store:       store,
		insight:     svc,
		metrics:     d.Metrics,
		origins:     origins,
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/grid", s.handleGrid)
		r.Get("/grid.geojson", s.handleGridGeoJSON)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/zones", s.handleZones)
		r.Get("/zones.geojson", s.handleZonesGeoJSON)
		r.Get("/classify", s.handleClassify)
		r.Get("/palette/blend", s.handleBlend)
		r.Post("/reset", s.handleReset)

		r.Get("/cells/{id}", s.handleCell)
		r.Post("/cells/{id}/steps", s.handleStep)

		r.Route("/insight", func(r chi.Router) {
			r.Post("/point", s.handlePointInsight)
			r.Post("/cells/{id}", s.handleCellInsight)
			r.Post("/cells/{id}/guide", s.handleGuide)
			r.Post("/cells/{id}/crisis", s.handleCrisis)
		})
	})

	return r
}

// operationalGrid is the grid that carries live remediation state.
func (s *Server) operationalGrid() []grid.HazardProfile {
	return s.grid.Grid(s.operational.Year, s.operational.RecoveryFactor)
}

// findCell looks id up in the operational grid first and then in every
// other checkpoint grid.
func (s *Server) findCell(id string) (grid.HazardProfile, bool) {
	if c, ok := grid.Find(s.operationalGrid(), id); ok {
		return c, true
	}
	for _, cp := range s.checkpoints {
		if cp == s.operational {
			continue
		}
		if c, ok := grid.Find(s.grid.Grid(cp.Year, cp.RecoveryFactor), id); ok {
			return c, true
		}
	}
	return grid.HazardProfile{}, false
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
