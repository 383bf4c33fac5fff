package bowlingservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application/parsers"
	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
	bowlingmetrics "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/metrics"
	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// BowlingService implements the Service interface.
type BowlingService struct {
	repo      bowlingdb.Repository
	publisher message.Publisher
	logger    *slog.Logger
	metrics   bowlingmetrics.BowlingMetrics
	tracer    trace.Tracer
	db        *bun.DB
	parsers   parsers.ParserFactory

	defaultLimit int
}

// Option customizes a BowlingService.
type Option func(*BowlingService)

// WithParserFactory replaces the scorecard parser factory.
func WithParserFactory(f parsers.ParserFactory) Option {
	return func(s *BowlingService) { s.parsers = f }
}

// WithDefaultListLimit sets the page size used when ListGames gets no limit.
func WithDefaultListLimit(limit int) Option {
	return func(s *BowlingService) {
		if limit > 0 {
			s.defaultLimit = min(limit, maxListLimit)
		}
	}
}

// NewBowlingService creates a new BowlingService. publisher may be nil, in
// which case no events are emitted.
func NewBowlingService(
	repo bowlingdb.Repository,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics bowlingmetrics.BowlingMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *BowlingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = bowlingmetrics.NewNoop()
	}
	s := &BowlingService{
		repo:         repo,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
		db:           db,
		parsers:      parsers.NewFactory(),
		defaultLimit: defaultListLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Service = (*BowlingService)(nil)

// publish sends an event, carrying the correlation ID from ctx. Failures are
// logged and do not undo the stored change.
func (s *BowlingService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal event", attr.String("topic", topic), attr.Error(err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	correlationID := bowlingevents.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	if err := s.publisher.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.String("topic", topic),
			attr.String("correlation_id", correlationID),
			attr.Error(err),
		)
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *BowlingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.DebugContext(ctx, "Operation triggered",
		attr.String("correlation_id", bowlingevents.CorrelationIDFromContext(ctx)),
		attr.String("operation", operationName),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	} else {
		s.logger.DebugContext(ctx, "Operation completed successfully",
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *BowlingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// unwrap converts an operation result to the public (value, error) shape.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}
