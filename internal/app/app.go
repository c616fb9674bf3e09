package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"portsampler/internal/config"
	apierrors "portsampler/internal/errors"
	"portsampler/internal/infrastructure"
	customMiddleware "portsampler/internal/middleware"
	"portsampler/internal/services"
	transport "portsampler/internal/transport/http"
	"portsampler/internal/validation"
)

// Application represents the port sampling web application
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        chi.Router
	Server        *http.Server
	OTelProviders *infrastructure.OTelProviders

	errorHandler    *apierrors.ErrorHandler
	samplingService *services.SamplingService
	healthService   *services.HealthService
}

// NewApplication creates and wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig creates the application from an explicit config
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	otelConfig := infrastructure.DefaultOTelConfig()
	providers, err := infrastructure.InitializeOTel(otelConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := app.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to setup services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	app.createServer()

	logger.Info("application initialized",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", cfg.Server.Port))

	return app, nil
}

func (a *Application) setupServices() error {
	a.errorHandler = apierrors.NewErrorHandler(a.Logger, false)

	metrics, err := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	a.samplingService = services.NewSamplingService(a.Config.Pipeline, metrics, a.Logger)
	a.healthService = services.NewHealthService(config.AppVersion, "", a.Logger)

	return nil
}

func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create otel middleware: %w", err)
	}

	// Request identity first so every downstream log line carries it
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			limiter := customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus scrape endpoint stays outside the API middleware group
	r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	forms := customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)
	uploads := validation.NewUploadValidator(a.Config.Pipeline.MaxUploadBytes)

	samplingHandler := transport.NewSamplingHandler(
		a.samplingService,
		uploads,
		forms,
		a.Config.Pipeline.MaxUploadBytes,
		a.Logger,
		a.errorHandler,
	)
	healthHandler := transport.NewHealthHandler(a.healthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/sampling", samplingHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. The returned context is cancelled when the
// server stops serving for any reason.
func (a *Application) Start(ctx context.Context) (context.Context, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	go func() {
		a.Logger.Info("server starting", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Error("server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return serverCtx, nil
}

// Stop gracefully shuts down the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}

	a.Logger.Info("server stopped")
	return nil
}

// Run starts the application and blocks until an interrupt signal or a
// server failure, then performs a graceful shutdown.
func (a *Application) Run() error {
	serverCtx, err := a.Start(context.Background())
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case <-serverCtx.Done():
		a.Logger.Warn("server context cancelled")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()

	return a.Stop(stopCtx)
}
