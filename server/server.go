// Package server exposes the engine and the store over a JSON REST API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mfld/folioplan/config"
	"github.com/mfld/folioplan/logger"
	"github.com/mfld/folioplan/store"
)

// Server wires the store and the reporting currency into HTTP handlers.
type Server struct {
	store    *store.Store
	currency string
	limiter  *rate.Limiter
}

// New creates a Server over the given store.
func New(s *store.Store, cfg *config.AppConfig) *Server {
	return &Server{
		store:    s,
		currency: cfg.Currency,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 2*cfg.RateLimitPerSecond),
	}
}

// Router builds the full route tree with its middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(s.rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "folioplan backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/assets", s.handleListAssets)
		r.Put("/assets/{id}", s.handleSaveAsset)
		r.Delete("/assets/{id}", s.handleDeleteAsset)

		r.Get("/policies", s.handleListPolicies)
		r.Get("/policies/{id}", s.handleGetPolicy)
		r.Get("/policies/{id}/rationale", s.handleGetPolicyRationale)
		r.Put("/policies/{id}", s.handleSavePolicy)
		r.Post("/policies/{id}/clone", s.handleClonePolicy)
		r.Delete("/policies/{id}", s.handleDeletePolicy)

		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/{month}", s.handleGetSnapshot)
		r.Post("/snapshots", s.handleSaveSnapshot)
		r.Delete("/snapshots/{month}", s.handleDeleteSnapshot)

		r.Get("/reports/allocation", s.handleAllocationReport)
		r.Get("/reports/trend", s.handleTrendReport)
		r.Get("/reports/breakdown", s.handleBreakdownReport)
		r.Get("/reports/metrics", s.handleMetricsReport)
	})

	return r
}

// ListenAndServe starts an HTTP server on the given port with sane timeouts.
func (s *Server) ListenAndServe(port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	logger.L.Info("server starting", "address", srv.Addr)
	return srv.ListenAndServe()
}

// requestLoggerMiddleware injects a request-scoped logger carrying a request
// id into the context.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctxLogger := logger.L.With(slog.String("requestID", requestID))
		ctxLogger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), ctxLogger)))
	})
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			logger.FromContext(r.Context()).Warn("rate limit exceeded", "path", r.URL.Path)
			sendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error body with the given status code.
func sendJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
