package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/infrastructure"
	custommw "github.com/khkk24/projeto-how-final/internal/middleware"
	"github.com/khkk24/projeto-how-final/internal/operations"
	"github.com/khkk24/projeto-how-final/internal/services"
	handlers "github.com/khkk24/projeto-how-final/internal/transport/http"
	ws "github.com/khkk24/projeto-how-final/internal/websocket"
)

// Application is the dependency container for the web server.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Hub           *ws.Hub
	Manager       *operations.Manager
	OTelProviders *infrastructure.OTelProviders

	Data     *services.DataService
	Analysis *services.AnalysisService
	Model    *services.ModelService
	Health   *services.HealthService
}

// NewApplication loads configuration and wires every service.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", services.Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("base_dir", paths.BaseDir))

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices builds the hub, the operation manager and the services.
func (a *Application) initializeServices() {
	a.Hub = ws.NewHub(a.Logger)
	a.Hub.Start()

	a.Manager = operations.NewManager(a.Hub, a.Logger)

	a.Data = services.NewDataService(a.Config, a.Paths, a.Logger)
	a.Analysis = services.NewAnalysisService(a.Config, a.Paths, a.Manager, a.Logger)
	a.Model = services.NewModelService(a.Config, a.Paths, a.Manager, a.Logger)
	a.Health = services.NewHealthService(a.Paths, a.Model)
}

// setupRouter builds the middleware chain and mounts every route. The
// WebSocket endpoint stays outside the logging and timeout middleware so the
// upgraded connection is never wrapped.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/ws", ws.ServeWS(a.Hub, ws.Config{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		PingPeriod:      a.Config.WebSocket.PingPeriod,
		PongWait:        a.Config.WebSocket.PongWait,
	}, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(chimiddleware.Timeout(a.Config.Server.RequestTimeout))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(a.Config.Security.AllowedOrigins))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.RateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			))
		}

		r.Route("/api", func(r chi.Router) {
			r.Mount("/health", handlers.NewHealthHandler(a.Health).Routes())
			r.Get("/version", handlers.Version)
			r.Mount("/data", handlers.NewDataHandler(a.Data, a.Logger).Routes())
			r.Mount("/analysis", handlers.NewAnalysisHandler(a.Analysis, a.Logger).Routes())
			r.Mount("/model", handlers.NewModelHandler(a.Model, a.Logger).Routes())
		})
	})

	a.Router = r
}

// createServer configures the HTTP server.
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

// Run serves until the context is cancelled or an interrupt arrives, then
// shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	a.Hub.Stop()
	if a.OTelProviders != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		if otelErr := a.OTelProviders.Shutdown(shutdownCtx); otelErr != nil {
			a.Logger.Error("telemetry shutdown error", slog.String("error", otelErr.Error()))
		}
		cancel()
	}
	if logErr := infrastructure.CloseLogFile(); logErr != nil && err == nil {
		err = logErr
	}

	a.Logger.Info("application stopped")
	return err
}
