package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/backend"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/config"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/metrics"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/navigation"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/services"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/storage"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/workflow"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

type Server struct {
	engine *gin.Engine
	api    *API
	cfg    config.Config
	logger *slog.Logger
}

type Option func(*serverOptions)

type serverOptions struct {
	logger     *slog.Logger
	registry   *prometheus.Registry
	httpClient *http.Client
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *serverOptions) { o.logger = logger }
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *serverOptions) { o.registry = reg }
}

// WithBackendHTTPClient sets the client used to reach the automation backend.
func WithBackendHTTPClient(hc *http.Client) Option {
	return func(o *serverOptions) { o.httpClient = hc }
}

func NewServer(cfg config.Config, opts ...Option) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	o := serverOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
		o.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := metrics.New(o.registry)

	clientOpts := []backend.Option{backend.WithLogger(o.logger), backend.WithMetrics(m)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, backend.WithHTTPClient(o.httpClient))
	}
	client := backend.NewClient(cfg.BackendURL, clientOpts...)
	if !client.Configured() {
		o.logger.Warn("backend URL not configured, document generation and lists are disabled")
	}

	orchestrator, err := workflow.New(client, workflow.WithLogger(o.logger), workflow.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("init workflow: %w", err)
	}

	api := NewAPI(apiDeps{
		logger:   o.logger,
		store:    storage.NewStore(),
		catalog:  domain.NewCatalog(cfg.DocumentTemplates),
		backend:  client,
		workflow: orchestrator,
		pdf:      services.NewPDFService(""),
		router:   navigation.NewRouter(),
	})

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(o.logger))
	engine.Use(MaxBodySize(cfg.MaxBodyBytes))
	engine.Use(CORS(cfg.AllowedOrigins))

	registerRoutes(engine, api, o.registry)

	return &Server{engine: engine, api: api, cfg: cfg, logger: o.logger}, nil
}

// Handler exposes the engine, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down and waits for running
// generations to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.sweep(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.api.Wait()
		return nil
	})

	return g.Wait()
}

func (s *Server) sweep(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.api.store.Sweep(s.cfg.SessionTTL); n > 0 {
				s.logger.Info("expired intake sessions removed", "count", n)
			}
		}
	}
}
