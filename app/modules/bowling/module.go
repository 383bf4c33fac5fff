package bowling

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	bowlinghandlers "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/handlers"
	bowlingmetrics "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/metrics"
	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	bowlingrouter "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/router"
	"github.com/Black-And-White-Club/bowling-bot/config"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies bundles what the bowling module needs from the application.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Metrics    bowlingmetrics.BowlingMetrics
	DB         *bun.DB
	Router     *message.Router
	Subscriber message.Subscriber
	Publisher  message.Publisher
	HTTPRouter chi.Router
}

// Module represents the bowling module.
type Module struct {
	BowlingService bowlingservice.Service
	BowlingRouter  *bowlingrouter.BowlingRouter
	logger         *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewBowlingModule creates and initializes a new bowling module.
func NewBowlingModule(ctx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "bowling.NewBowlingModule initializing")

	// 1. Initialize Repository
	repo := bowlingdb.NewRepository(deps.DB)

	// 2. Initialize Service
	service := bowlingservice.NewBowlingService(
		repo,
		deps.Publisher,
		logger,
		deps.Metrics,
		deps.Tracer,
		deps.DB,
		bowlingservice.WithDefaultListLimit(deps.Config.Bowling.DefaultListLimit),
	)

	// 3. Initialize Handlers
	handlers := bowlinghandlers.NewBowlingHandlers(service, logger, deps.Tracer)

	// 4. Initialize Router
	router := bowlingrouter.NewBowlingRouter(logger, deps.Router, deps.Subscriber, deps.Publisher)
	if err := router.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure bowling router: %w", err)
	}

	// 5. Register HTTP routes
	if deps.HTTPRouter != nil {
		bowlingrouter.RegisterRoutes(deps.HTTPRouter, handlers, bowlingrouter.HTTPConfig{
			AllowedOrigins: deps.Config.HTTP.AllowedOrigins,
			RateLimitRPS:   deps.Config.HTTP.RateLimitRPS,
			RateLimitBurst: deps.Config.HTTP.RateLimitBurst,
		})
	}

	return &Module{
		BowlingService: service,
		BowlingRouter:  router,
		logger:         logger,
		stop:           make(chan struct{}),
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting bowling module")

	if wg != nil {
		defer wg.Done()
	}

	select {
	case <-ctx.Done():
	case <-m.stop:
	}
	m.logger.InfoContext(ctx, "Bowling module goroutine stopped")
}

// Close shuts down the bowling module.
func (m *Module) Close() error {
	m.logger.Info("Stopping bowling module")

	m.stopOnce.Do(func() { close(m.stop) })

	if m.BowlingRouter != nil {
		if err := m.BowlingRouter.Close(); err != nil {
			m.logger.Error("Error closing BowlingRouter from module", attr.Error(err))
			return fmt.Errorf("error closing BowlingRouter: %w", err)
		}
	}

	m.logger.Info("Bowling module stopped")
	return nil
}
