package api

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/cip116/pkg/governance"
	"github.com/platinummonkey/cip116/pkg/httputil"
	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/validation"
)

// DefaultMaxBodyBytes bounds validate request bodies
const DefaultMaxBodyBytes = 1 << 20

// Server represents our API server
type Server struct {
	registry     atomic.Pointer[validation.Registry]
	engine       *governance.Engine
	logger       *logrus.Logger
	metrics      *observability.Metrics
	promRegistry *prometheus.Registry
	health       *observability.HealthChecker
	maxBodyBytes int64

	router  *mux.Router
	handler http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics instruments requests and exposes registry on /metrics
func WithMetrics(metrics *observability.Metrics, registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = metrics
		s.promRegistry = registry
	}
}

// WithHealthChecker serves /health/live and /health/ready
func WithHealthChecker(health *observability.HealthChecker) Option {
	return func(s *Server) { s.health = health }
}

// WithGovernance sets the engine used by the governance endpoint
func WithGovernance(engine *governance.Engine) Option {
	return func(s *Server) { s.engine = engine }
}

// WithMaxBodyBytes bounds request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// NewServer creates a new API server over registry
func NewServer(registry *validation.Registry, opts ...Option) *Server {
	s := &Server{
		logger:       observability.NewNopLogger(),
		maxBodyBytes: DefaultMaxBodyBytes,
		router:       mux.NewRouter(),
	}
	s.registry.Store(registry)
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = governance.NewEngine(nil, governance.WithLogger(s.logger), governance.WithMetrics(s.metrics))
	}

	s.setupRoutes()
	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware(s.logger),
		httputil.LoggingMiddleware,
		httputil.RecoveryMiddleware,
		httputil.MaxBytesMiddleware(s.maxBodyBytes),
	)(s.router)
	s.handler = otelhttp.NewHandler(s.handler, "cip116.api",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return operation + " " + r.Method
		}),
	)
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(observability.HTTPMetricsMiddleware(s.metrics, routeTemplate))

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/eras", s.listEras).Methods(http.MethodGet)
	v1.HandleFunc("/eras/{era}/types", s.listTypes).Methods(http.MethodGet)
	v1.HandleFunc("/eras/{era}/types/{type}", s.getDefinition).Methods(http.MethodGet)
	v1.Handle("/eras/{era}/types/{type}/validate",
		httputil.ContentTypeMiddleware(http.HandlerFunc(s.validate))).Methods(http.MethodPost)
	v1.HandleFunc("/eras/{era}/governance", s.governance).Methods(http.MethodGet)

	if s.health != nil {
		s.router.HandleFunc("/health/live", s.health.Liveness).Methods(http.MethodGet)
		s.router.HandleFunc("/health/ready", s.health.Readiness).Methods(http.MethodGet)
	}
	if s.promRegistry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.promRegistry)).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "no route for "+r.URL.Path)
	})
}

// Registry returns the registry currently serving requests
func (s *Server) Registry() *validation.Registry {
	return s.registry.Load()
}

// SetRegistry swaps in a new registry. Requests already in flight finish on
// the previous one.
func (s *Server) SetRegistry(registry *validation.Registry) {
	s.registry.Store(registry)
}

// Ready reports whether the current schema store can serve requests
func (s *Server) Ready(ctx context.Context) error {
	return s.Registry().Store().Ready(ctx)
}

// Router exposes the route table, mainly for tests
func (s *Server) Router() *mux.Router { return s.router }

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// routeTemplate labels requests by route so metric cardinality stays bounded
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
