package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/foxzi/multiverse/internal/cache"
	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/config"
	"github.com/foxzi/multiverse/internal/metrics"
	"github.com/foxzi/multiverse/internal/query"
	"github.com/foxzi/multiverse/internal/rickmorty"
	"github.com/foxzi/multiverse/internal/viewer"
	"github.com/foxzi/multiverse/internal/web/handlers"
	"github.com/foxzi/multiverse/internal/web/i18n"
	"github.com/foxzi/multiverse/internal/web/middleware"
	"github.com/foxzi/multiverse/internal/web/session"
	"github.com/foxzi/multiverse/internal/web/static"
	"github.com/foxzi/multiverse/internal/web/views"
)

type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	views     *views.Engine
	bundle    *i18n.Bundle
	client    *rickmorty.Client
	sessions  *session.Manager
	storage   *cache.BoltStorage
	cleaner   *cache.Cleaner
	metrics   *metrics.Metrics
	collector *metrics.Collector
	metricsSv *metrics.Server
	http      *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Initialize views
	viewEngine, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	bundle, err := i18n.LoadEmbedded(cfg.UI.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		views:  viewEngine,
		bundle: bundle,
	}

	responses, err := s.setupCache()
	if err != nil {
		return nil, err
	}

	s.client = rickmorty.NewClient(rickmorty.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         cfg.API.UserAgent,
		Cache:             responses,
	})

	viewerLogger := logger.With("component", "viewer")
	s.sessions = session.NewManager(session.Options{
		CookieName:  cfg.Session.CookieName,
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
		Secure:      cfg.HasTLS(),
	}, func(initial catalog.FilterSet) *viewer.Controller {
		return viewer.New(s.client, query.NewStore(initial), viewerLogger)
	}, logger.With("component", "session"))

	if cfg.Metrics.Enabled {
		s.setupMetrics()
	}

	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupCache builds the response cache: memory only, or memory in front
// of a BoltDB file when a cache path is configured
func (s *Server) setupCache() (cache.Cache, error) {
	if !s.cfg.Cache.Enabled {
		return nil, nil
	}

	memory := cache.NewMemory(s.cfg.Cache.MemoryEntries, s.cfg.Cache.TTL)
	if !s.cfg.PersistentCache() {
		return memory, nil
	}

	storage, err := cache.NewBoltStorage(s.cfg.Cache.Path, s.cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	s.storage = storage
	s.cleaner = cache.NewCleaner(storage, s.cfg.Cache.CleanupInterval, s.logger.With("component", "cache"))

	s.logger.Info("persistent response cache enabled", "path", s.cfg.Cache.Path, "ttl", s.cfg.Cache.TTL)
	return cache.NewTiered(memory, storage), nil
}

func (s *Server) setupMetrics() {
	s.metrics = metrics.New()
	metrics.SetGlobal(s.metrics)

	var count metrics.CountFunc
	if s.storage != nil {
		count = s.storage.Count
	}
	s.collector = metrics.NewCollector(s.metrics, count, 0)

	s.metricsSv = metrics.NewServer(s.metrics, s.cfg.Metrics.ListenAddr, s.cfg.Metrics.Path,
		s.cfg.Metrics.AllowedIPs, s.logger.With("component", "metrics"))
}

func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(metrics.HTTPMiddleware)

	// Static files (embedded)
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	// Metrics share the main listener unless a dedicated address is set
	if s.metricsSv != nil && s.cfg.Metrics.ListenAddr == "" {
		r.Handle(s.metricsSv.Path(), s.metricsSv.Handler())
	}

	h := handlers.New(s.logger, s.views, s.bundle, s.sessions, s.client, handlers.Options{
		WaitTimeout: s.cfg.API.Timeout,
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Language(s.bundle))
		h.Register(r)
	})

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Run(ctx context.Context) error {
	// Start background jobs
	if s.cleaner != nil {
		s.cleaner.Start(ctx)
	}
	if s.collector != nil {
		s.collector.Start(ctx)
	}

	errCh := make(chan error, 2)

	if s.metricsSv != nil && s.cfg.Metrics.ListenAddr != "" {
		go func() {
			if err := s.metricsSv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	go func() {
		s.logger.Info("starting web server",
			"addr", s.cfg.Server.ListenAddr,
			"api", s.client.Endpoint(),
			"tls", s.cfg.HasTLS(),
		)
		if s.cfg.HasTLS() {
			errCh <- s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			errCh <- s.http.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		if s.metricsSv != nil {
			if err := s.metricsSv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("metrics shutdown error", "error", err)
			}
		}
		s.Close()
		return nil
	}
}

// Close stops background jobs and releases the cache file
func (s *Server) Close() {
	if s.collector != nil {
		s.collector.Stop()
	}
	if s.cleaner != nil {
		s.cleaner.Stop()
	}
	s.sessions.Close()
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			s.logger.Error("failed to close cache", "error", err)
		}
		s.storage = nil
	}
}
