// Package api serves the wzrd pipeline and graph store over HTTP.
//
// Routes (all request and response bodies are JSON):
//
//	GET    /healthz
//	GET    /metrics                     Prometheus, when configured
//	GET    /api/v1/templates            built-in templates (?picker=true for picker entries)
//	POST   /api/v1/import               script → graph document
//	POST   /api/v1/generate             graph or script → text
//	POST   /api/v1/layout               graph or script → positioned graph
//	POST   /api/v1/render               graph or script → artifacts (?raw=true for one raw artifact)
//	GET    /api/v1/graphs               stored keys
//	POST   /api/v1/graphs               store under a new ID
//	GET    /api/v1/graphs/{id}          stored document
//	PUT    /api/v1/graphs/{id}          replace
//	DELETE /api/v1/graphs/{id}          remove
//	GET    /api/v1/graphs/{id}/text     generate from the stored graph
//
// Errors are reported as {"error": {"code": ..., "message": ...}} with the
// status from errors.HTTPStatus.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Server holds the collaborators shared by all handlers.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler

	// Defaults seeds layout spacing for requests that leave it unset.
	Defaults pipeline.Options

	newID func() string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithDefaults sets the default pipeline options.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.Defaults = opts }
}

// WithIDGenerator overrides the random document IDs, used by tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// New creates a server. A nil logger uses log.Default().
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Runner:   runner,
		Store:    st,
		Logger:   logger,
		Defaults: pipeline.Options{HGap: pipeline.DefaultHGap, VGap: pipeline.DefaultVGap},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", s.listTemplates)
		r.Post("/import", s.importScript)
		r.Post("/generate", s.generate)
		r.Post("/layout", s.layout)
		r.Post("/render", s.render)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.listGraphs)
			r.Post("/", s.createGraph)
			r.Get("/{id}", s.getGraph)
			r.Put("/{id}", s.putGraph)
			r.Delete("/{id}", s.deleteGraph)
			r.Get("/{id}/text", s.graphText)
		})
	})

	return r
}
