// Package api serves tasks and built Gantt rows over HTTP.
//
// Routes:
//
//	GET    /                         service banner
//	GET    /api/health               liveness
//	GET    /metrics                  Prometheus metrics (when enabled)
//	GET    /api/tasks                list tasks
//	POST   /api/tasks                create a task
//	GET    /api/tasks/{id}           get a task
//	PUT    /api/tasks/{id}           replace a task
//	DELETE /api/tasks/{id}           delete a task
//	POST   /api/tasks/{id}/relocate  apply a drag to a task's dates
//	POST   /api/gantt/rows           build one row group from stored tasks
//	POST   /api/gantt/report         build every row group of a report
//
// Successful responses use the {"success": true, "data": ...} envelope;
// failures use {"success": false, "error", "code", "message"}.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/flexgantt/flexgantt/pkg/buildinfo"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
	"github.com/flexgantt/flexgantt/pkg/store"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// ServiceName is reported by the banner route.
const ServiceName = "FlexibleGantt API Server"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 10 << 20

// Config wires a Server.
type Config struct {
	Store  store.Store
	Runner *pipeline.Runner

	// Options are the row-building defaults; requests may override sizing.
	Options pipeline.Options

	// Registry validates and coerces task attributes. Defaults to
	// task.DefaultRegistry.
	Registry *task.Registry

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	Logger *log.Logger
	Port   int
}

// Server is the HTTP API.
type Server struct {
	store    store.Store
	runner   *pipeline.Runner
	opts     pipeline.Options
	registry *task.Registry
	metrics  http.Handler
	logger   *log.Logger
	port     int
	validate *validator.Validate
	now      func() time.Time

	router chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		store:    cfg.Store,
		runner:   cfg.Runner,
		opts:     cfg.Options,
		registry: cfg.Registry,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		port:     cfg.Port,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	if s.registry == nil {
		s.registry = task.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	s.opts.Registry = s.registry
	s.opts.Logger = s.logger
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(observe)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(corsHandler())

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/", s.handleRoot)
	r.Get("/api/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleCreateTask)
		r.Get("/{id}", s.handleGetTask)
		r.Put("/{id}", s.handleUpdateTask)
		r.Delete("/{id}", s.handleDeleteTask)
		r.Post("/{id}/relocate", s.handleRelocateTask)
	})
	r.Route("/api/gantt", func(r chi.Router) {
		r.Post("/rows", s.handleBuildRows)
		r.Post("/report", s.handleBuildReport)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "version", buildinfo.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": ServiceName,
		"version": buildinfo.Version,
		"status":  "running",
		"port":    s.port,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}
