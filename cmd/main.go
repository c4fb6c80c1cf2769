package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duynhne/profile-web/config"
	"github.com/duynhne/profile-web/internal/core/apiclient"
	"github.com/duynhne/profile-web/internal/core/session"
	"github.com/duynhne/profile-web/internal/core/validation"
	logicv1 "github.com/duynhne/profile-web/internal/logic/v1"
	v1 "github.com/duynhne/profile-web/internal/web/v1"
	"github.com/duynhne/profile-web/middleware"
)

func main() {
	// Load configuration from environment variables (with .env file support for local dev)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize structured logger
	logger, err := middleware.NewLogger(cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Service starting",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("env", cfg.Service.Env),
		zap.String("port", cfg.Service.Port),
	)

	// Initialize OpenTelemetry tracing with centralized config
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			logger.Warn("Failed to initialize tracing", zap.Error(err))
			tp = nil
		} else {
			logger.Info("Tracing initialized",
				zap.String("endpoint", cfg.Tracing.Endpoint),
				zap.Float64("sample_rate", cfg.Tracing.SampleRate),
			)
		}
	} else {
		logger.Info("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg.Profiling); err != nil {
			logger.Warn("Failed to initialize profiling", zap.Error(err))
		} else {
			logger.Info("Profiling initialized",
				zap.String("endpoint", cfg.Profiling.Endpoint),
			)
			defer middleware.StopProfiling()
		}
	} else {
		logger.Info("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Session store for per-browser component state
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := session.Open(startCtx, session.Options{
		Backend:  cfg.Session.Backend,
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
		TTL:      cfg.Session.TTL,
	})
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to open session store", zap.String("backend", cfg.Session.Backend), zap.Error(err))
	}
	logger.Info("Session store ready", zap.String("backend", cfg.Session.Backend))

	validator, err := validation.New(validation.Options{NameLetters: cfg.UI.NameLetterClass})
	if err != nil {
		logger.Fatal("Invalid NAME_LETTER_CLASS", zap.Error(err))
	}

	api := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, logger)
	logger.Info("Profile API client initialized", zap.String("profile_api_url", cfg.API.BaseURL))

	service := logicv1.NewProfileService(api, store, validator, logicv1.Options{
		LoginPath:      cfg.UI.LoginPath,
		NotifyDuration: cfg.UI.NotifyDuration,
	})
	handler := v1.NewProfileHandler(service)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	v1.LoadTemplates(r)

	var isShuttingDown atomic.Bool

	// Tracing middleware (must be first for context propagation)
	r.Use(middleware.TracingMiddleware("/health", "/ready", cfg.Metrics.Path))

	// Logging middleware (must be before Prometheus middleware)
	r.Use(middleware.LoggingMiddleware(logger))

	// Prometheus middleware
	if cfg.Metrics.Enabled {
		r.Use(middleware.PrometheusMiddleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Profile page: every request gets a session and must carry a token
	profile := r.Group("/profile",
		middleware.SessionMiddleware(middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			MaxAge:     int(cfg.Session.TTL.Seconds()),
			Secure:     cfg.IsProduction(),
		}),
		middleware.AuthMiddleware(cfg.UI.LoginPath, logger),
	)
	handler.RegisterRoutes(profile)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown - modern signal handling with context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting profile web", zap.String("port", cfg.Service.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Wait for shutdown signal or a server failure
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("Shutdown signal received")
		}

		// Fail readiness first and wait for propagation.
		isShuttingDown.Store(true)
		drainDelay := cfg.GetReadinessDrainDelayDuration()
		if drainDelay > 0 && ctx.Err() != nil {
			logger.Info("Readiness drain delay started", zap.Duration("delay", drainDelay))
			time.Sleep(drainDelay)
			logger.Info("Readiness drain delay completed", zap.Duration("delay", drainDelay))
		}

		// Shutdown context with configurable timeout
		shutdownTimeout := cfg.GetShutdownTimeoutDuration()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("Shutting down server...", zap.Duration("timeout", shutdownTimeout))

		// Explicit cleanup sequence: HTTP Server → Session store → Tracer

		// 1. Shutdown HTTP server (stop accepting new connections, wait for in-flight requests)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.Error(err))
		} else {
			logger.Info("HTTP server shutdown complete")
		}

		// 2. Close session store connections
		if err := store.Close(); err != nil {
			logger.Error("Session store close error", zap.Error(err))
		} else {
			logger.Info("Session store closed")
		}

		// 3. Shutdown tracer (flush pending spans)
		if tp != nil {
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Tracer shutdown error", zap.Error(err))
			} else {
				logger.Info("Tracer shutdown complete")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Graceful shutdown complete")
}
