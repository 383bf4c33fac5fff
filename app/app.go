package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/bowling-bot/app/modules/bowling"
	bowlingmetrics "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/metrics"
	"github.com/Black-And-White-Club/bowling-bot/config"
	"github.com/Black-And-White-Club/bowling-bot/internal/eventbus"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

const (
	serviceName     = "bowling-bot"
	shutdownTimeout = 15 * time.Second
)

// App wires configuration, storage, messaging, and HTTP together.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *bun.DB
	EventBus      *eventbus.PubSub
	Router        *message.Router
	Registry      *prometheus.Registry
	HTTPServer    *http.Server
	MetricsServer *http.Server
	BowlingModule *bowling.Module

	wg sync.WaitGroup
}

// NewLogger builds the process logger. Development uses text output,
// every other environment JSON.
func NewLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Environment, "development") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(attr.String("service", serviceName))
}

// NewApp creates an App for cfg. Call Initialize before Run.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = NewLogger(cfg.Observability)
	}
	return &App{Config: cfg, Logger: logger}
}

// Initialize opens every dependency and registers the modules.
func (app *App) Initialize(ctx context.Context) error {
	db, err := OpenDB(ctx, app.Config.Postgres.DSN)
	if err != nil {
		return err
	}
	app.DB = db

	app.EventBus, err = eventbus.NewPubSub(eventbus.Config{NATSURL: app.Config.NATS.URL}, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	app.Router, err = eventbus.NewRouter(app.Logger)
	if err != nil {
		return err
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpRouter := chi.NewRouter()
	httpRouter.Get("/healthz", HealthHandler(app.DB))
	metricsHandler := promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})
	if app.Config.Observability.MetricsAddress == "" {
		httpRouter.Handle("/metrics", metricsHandler)
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		app.MetricsServer = &http.Server{
			Addr:              app.Config.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	app.BowlingModule, err = bowling.NewBowlingModule(ctx, bowling.Dependencies{
		Config:     app.Config,
		Logger:     app.Logger.With(attr.String("module", "bowling")),
		Tracer:     otel.Tracer(serviceName),
		Metrics:    bowlingmetrics.NewPrometheus(app.Registry),
		DB:         app.DB,
		Router:     app.Router,
		Subscriber: app.EventBus,
		Publisher:  app.EventBus,
		HTTPRouter: httpRouter,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize bowling module: %w", err)
	}

	app.HTTPServer = &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return nil
}

// Run starts the message router and HTTP servers and blocks until ctx is
// cancelled or a server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)

	app.wg.Add(1)
	go app.BowlingModule.Run(ctx, &app.wg)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router stopped: %w", err)
		}
	}()

	go func() {
		app.Logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server stopped: %w", err)
		}
	}()

	if app.MetricsServer != nil {
		go func() {
			app.Logger.InfoContext(ctx, "Metrics server listening", attr.String("addr", app.MetricsServer.Addr))
			if err := app.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server stopped: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		app.Logger.Info("Shutdown requested")
		return nil
	case err := <-errCh:
		return err
	}
}

// Close shuts everything down in reverse start order.
func (app *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range []*http.Server{app.HTTPServer, app.MetricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down server %s: %w", srv.Addr, err))
		}
	}
	if app.BowlingModule != nil {
		if err := app.BowlingModule.Close(); err != nil {
			errs = append(errs, err)
		}
		app.wg.Wait()
	} else if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close message router: %w", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	app.Logger.Info("Application stopped")
	return errors.Join(errs...)
}

// OpenDB connects to Postgres and verifies the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
