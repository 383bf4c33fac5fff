package bowlinghandlers

import (
	"log/slog"

	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// BowlingHandlers implements the Handlers interface.
type BowlingHandlers struct {
	service bowlingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	palette bowlingservice.ChartPalette
}

// NewBowlingHandlers creates a new BowlingHandlers instance.
func NewBowlingHandlers(
	service bowlingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("bowling")
	}
	return &BowlingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		palette: bowlingservice.DefaultChartPalette,
	}
}
