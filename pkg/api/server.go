package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/specstash/specstash/pkg/freetier"
	"github.com/specstash/specstash/pkg/httputil"
	"github.com/specstash/specstash/pkg/metadata"
	"github.com/specstash/specstash/pkg/middleware"
	"github.com/specstash/specstash/pkg/observability"
	"github.com/specstash/specstash/pkg/storage"
)

// Server represents our API server
type Server struct {
	metadata metadata.Store
	storage  storage.Facade
	guard    *freetier.Guard
	logger   *observability.Logger
	metrics  *observability.Metrics
	router   *mux.Router
}

// NewServer creates a new API server
func NewServer(meta metadata.Store, store storage.Facade, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		metadata: meta,
		storage:  store,
		guard:    freetier.NewGuard(meta),
		logger:   logger,
		metrics:  metrics,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(s.loggerMiddleware)
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	s.router.Use(httputil.RecoveryMiddleware(s.logger))
	s.router.Use(middleware.NewAuthMiddleware(false).Handler)

	// Unversioned endpoints act on the latest version.
	s.router.HandleFunc("/specs", s.listSpecs).Methods("GET")
	s.router.HandleFunc("/specs/{id}", s.getSpec).Methods("GET")
	s.router.HandleFunc("/specs/{id}", s.putSpec).Methods("PUT")
	s.router.HandleFunc("/specs/{id}", s.deleteSpec).Methods("DELETE")

	// Versioned endpoints address an explicit version.
	s.router.HandleFunc("/specs/{id}/versions", s.listSpecVersions).Methods("GET")
	s.router.HandleFunc("/specs/{id}/versions/{version}", s.getSpecVersion).Methods("GET")
	s.router.HandleFunc("/specs/{id}/versions/{version}", s.putSpecVersion).Methods("PUT")
	s.router.HandleFunc("/specs/{id}/versions/{version}", s.deleteSpecVersion).Methods("DELETE")
}

// loggerMiddleware seeds the request context with the server logger so
// handlers can pick it up, enriched with request fields, through
// observability.FromContext.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithLogger(r.Context(), s.logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
