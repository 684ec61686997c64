// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package webapp wires the StreamlitLike web service together.
//
// The service owns one session.Registry. Every request under /v1 is bound
// to a session scope whose state.Service holds that browser's values.
// A Sweeper evicts scopes that sit idle.
//
// # Usage
//
//	cfg, err := config.Load("", ".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc, err := webapp.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run(ctx))
package webapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/StreamlitLike/services/webapp/config"
	"github.com/AleutianAI/StreamlitLike/services/webapp/middleware"
	"github.com/AleutianAI/StreamlitLike/services/webapp/observability"
	"github.com/AleutianAI/StreamlitLike/services/webapp/routes"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/AleutianAI/StreamlitLike/services/webapp/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// shutdownTimeout bounds graceful HTTP shutdown and telemetry flush.
const shutdownTimeout = 5 * time.Second

// =============================================================================
// Interface Definition
// =============================================================================

// Service is the webapp lifecycle.
//
// # Thread Safety
//
// Run blocks and should be called once per instance.
type Service interface {
	// Run serves HTTP and sweeps idle sessions until ctx is cancelled or
	// the server fails. Resources are released on return.
	Run(ctx context.Context) error

	// Router returns the configured gin engine for testing.
	Router() *gin.Engine

	// Registry returns the session registry.
	Registry() *session.Registry
}

// Options carries optional collaborators. The zero value is usable.
type Options struct {
	// Registry receives the Prometheus collectors and backs /metrics.
	// Default: a fresh registry with Go and process collectors.
	Registry *prometheus.Registry

	// Logger receives access logs. Default: slog.Default()
	Logger *slog.Logger

	// TelemetryWriter receives stdout exporter output. Default: os.Stdout
	TelemetryWriter io.Writer
}

// =============================================================================
// Implementation
// =============================================================================

type service struct {
	config            config.Config
	opts              Options
	router            *gin.Engine
	registry          *session.Registry
	sweeper           *session.Sweeper
	metrics           *observability.Metrics
	telemetryShutdown func(context.Context) error
}

// New builds the webapp from cfg.
//
// # Description
//
// New validates cfg, installs OpenTelemetry providers, registers the
// Prometheus collectors, creates the session registry and sweeper, and
// mounts the routes.
//
// # Inputs
//
//   - cfg: Configuration, usually from config.Load.
//   - opts: Optional collaborators. May be nil.
//
// # Outputs
//
//   - Service: Ready to Run.
//   - error: Non-nil if cfg is invalid or telemetry setup fails.
func New(cfg config.Config, opts *Options) (Service, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	s := &service{config: cfg}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.Registry == nil {
		s.opts.Registry = prometheus.NewRegistry()
		s.opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if s.opts.Logger == nil {
		s.opts.Logger = slog.Default()
	}

	shutdown, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: s.metricExporter(),
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		Registerer:     s.opts.Registry,
		Writer:         s.opts.TelemetryWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s.telemetryShutdown = shutdown

	if cfg.EnableMetrics {
		s.metrics = observability.NewMetrics(s.opts.Registry)
		slog.Info("Initialized Prometheus metrics")
	}

	s.initRegistry()
	s.initRouter()

	return s, nil
}

// Version is reported as service.version and by the CLI.
var Version = "dev"

// Run serves until ctx is done.
func (s *service) Run(ctx context.Context) error {
	defer s.cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := s.sweeper.Start(gctx); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}

	g.Go(func() error {
		slog.Info("Starting webapp server", "port", s.config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down webapp server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *service) Router() *gin.Engine {
	return s.router
}

func (s *service) Registry() *session.Registry {
	return s.registry
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// metricExporter disables the OTel prometheus bridge along with /metrics.
func (s *service) metricExporter() string {
	if s.config.Telemetry.MetricExporter == "prometheus" && !s.config.EnableMetrics {
		return "none"
	}
	return s.config.Telemetry.MetricExporter
}

func (s *service) initRegistry() {
	regOpts := session.Options{MaxSessions: s.config.Session.MaxSessions}
	if s.metrics != nil {
		regOpts.Recorder = s.metrics
		regOpts.Observer = s.metrics
	}
	if s.config.RateLimit.Enabled && s.config.RateLimit.RPS > 0 {
		regOpts.RateLimit = rate.Limit(s.config.RateLimit.RPS)
		regOpts.Burst = s.config.RateLimit.Burst
	}

	s.registry = session.NewRegistry(regOpts)
	s.sweeper = session.NewSweeper(s.registry, session.SweeperConfig{
		Interval:    s.config.Session.SweepInterval,
		IdleTimeout: s.config.Session.IdleTimeout,
	})
}

func (s *service) initRouter() {
	gin.SetMode(s.config.GinMode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware(s.config.Telemetry.ServiceName))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.AccessLog(s.opts.Logger))
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}

	routeOpts := routes.Options{
		Registry: s.registry,
		Session: middleware.SessionOptions{
			CookieName: s.config.Session.CookieName,
			MaxAge:     int(s.config.Session.IdleTimeout / time.Second),
			Secure:     s.config.Session.SecureCookie,
		},
	}
	if s.metrics != nil {
		routeOpts.Gatherer = s.opts.Registry
	}
	routes.SetupRoutes(s.router, routeOpts)
}

// cleanup releases everything Run started.
func (s *service) cleanup() {
	if err := s.sweeper.Stop(); err != nil {
		slog.Warn("Session sweeper stop error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.telemetryShutdown != nil {
		if err := s.telemetryShutdown(ctx); err != nil {
			slog.Warn("Telemetry shutdown error", "error", err)
		}
	}
}
