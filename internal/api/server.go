// Package api serves tower batches over HTTP for the dashboard front end.
package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/towerdash/internal/geo"
	"github.com/sells-group/towerdash/internal/metrics"
	"github.com/sells-group/towerdash/internal/model"
	"github.com/sells-group/towerdash/internal/pipeline"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	// RefreshInterval is the minimum time between accepted refreshes.
	// Zero disables the debounce.
	RefreshInterval time.Duration
}

// Server exposes one pipeline session. Every client shares the session, so
// a refresh by one client is seen by all.
type Server struct {
	pipe    *pipeline.Pipeline
	session *pipeline.Session
	limiter *rate.Limiter
	origins []string
}

// New creates a Server.
func New(p *pipeline.Pipeline, s *pipeline.Session, opts Options) *Server {
	limit := rate.Inf
	if opts.RefreshInterval > 0 {
		limit = rate.Every(opts.RefreshInterval)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		pipe:    p,
		session: s,
		limiter: rate.NewLimiter(limit, 1),
		origins: origins,
	}
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
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/towers", s.listTowers)
		r.Get("/towers.geojson", s.towersGeoJSON)
		r.Get("/towers/{id}", s.getTower)
		r.Post("/refresh", s.refresh)
		r.Delete("/cache", s.clearCache)
		r.Get("/diagnostics", s.diagnostics)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTowers(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.ParseBool(r.URL.Query().Get("skip_cache"))
	res := s.pipe.Fetch(r.Context(), s.session, pipeline.Options{SkipCache: skip})
	writeJSON(w, http.StatusOK, res)
}

// towersGeoJSON serves the current batch as point features for the map.
func (s *Server) towersGeoJSON(w http.ResponseWriter, r *http.Request) {
	res := s.pipe.Fetch(r.Context(), s.session, pipeline.Options{})
	data, err := geo.MarshalTowers(res.Towers)
	if err != nil {
		zap.L().Error("api: encode geojson failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode towers")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Batch-Source", string(res.Source))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// towerResponse wraps one tower with the provenance of its batch.
type towerResponse struct {
	Tower   *model.Tower  `json:"tower"`
	Source  string        `json:"source"`
	BatchID string        `json:"batchId"`
	Tier    pipeline.Tier `json:"tier"`
}

func (s *Server) getTower(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tower, res := s.pipe.FindTower(r.Context(), s.session, id)
	if tower == nil {
		writeError(w, http.StatusNotFound, "tower not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, towerResponse{
		Tower:   tower,
		Source:  string(res.Source),
		BatchID: res.BatchID.String(),
		Tier:    res.Tier,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	rsv := s.limiter.Reserve()
	if delay := rsv.Delay(); delay > 0 {
		rsv.Cancel()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		writeError(w, http.StatusTooManyRequests, "refresh already requested, try again shortly")
		return
	}

	res := s.pipe.Refresh(r.Context(), s.session)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.pipe.ClearCache(r.Context(), s.session); err != nil {
		zap.L().Error("api: clear cache failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	d, err := s.pipe.Diagnostics(r.Context(), s.session)
	if err != nil {
		zap.L().Error("api: diagnostics failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read diagnostics")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
