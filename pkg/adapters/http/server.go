package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/learn"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Server exposes a workspace manager over HTTP.
type Server struct {
	Manager  *session.Manager
	Comparer *compare.Comparer
	Deck     *learn.Deck

	logger   *slog.Logger
	metrics  http.Handler
	tracer   trace.Tracer
	validate *validator.Validate
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithComparer sets the comparer behind POST /compare.
func WithComparer(c *compare.Comparer) Option {
	return func(s *Server) {
		s.Comparer = c
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Manager:  mgr,
		Deck:     learn.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("github.com/aretw0/stepwise/pkg/adapters/http"),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Comparer == nil {
		s.Comparer = compare.New(compare.WithRegistry(mgr.Registry()), compare.WithLogger(s.logger))
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.trace)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.getHealth)
		r.Get("/info", s.getInfo)
		r.Get("/algorithms", s.listAlgorithms)
		r.Get("/algorithms/{kind}", s.getAlgorithm)
		r.Get("/learn/{kind}", s.getLearningCard)
		r.Post("/compare", s.compare)

		r.Get("/presets", s.listPresets)
		r.Get("/presets/{name}", s.getPreset)
		r.Delete("/presets/{name}", s.deletePreset)

		r.Get("/workspaces", s.listWorkspaces)
		r.Post("/workspaces", s.createWorkspace)
		r.Route("/workspaces/{id}", func(r chi.Router) {
			r.Get("/", s.getWorkspace)
			r.Delete("/", s.deleteWorkspace)
			r.Put("/container", s.setContainer)
			r.Post("/generate", s.generate)
			r.Post("/start", s.start)
			r.Post("/commands", s.command)
			r.Post("/edits", s.edit)
			r.Post("/play", s.play)
			r.Put("/presets/{name}", s.savePreset)
			r.Post("/presets/{name}", s.loadPreset)
			r.Get("/events", s.subscribeEvents)
			r.Get("/ws", s.serveSocket)
		})
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// trace wraps each request in a span named after its route pattern.
func (s *Server) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
			}
		}
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.Int("http.status_code", ww.Status()),
		)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "bytes", ww.BytesWritten())
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "stepwise-http",
		"version":     strings.TrimSpace(stepwise.Version),
		"api_version": apiVersion,
	})
}
