package bowlingrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
	bowlinghandlers "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/handlers"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// HTTPConfig holds the HTTP route settings for the bowling API.
type HTTPConfig struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// BowlingRouter handles Watermill handler registration for bowling events.
type BowlingRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
}

// NewBowlingRouter creates a new BowlingRouter.
func NewBowlingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
) *BowlingRouter {
	return &BowlingRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
	}
}

// Configure sets up the router with handlers.
func (r *BowlingRouter) Configure(_ context.Context, handlers bowlinghandlers.Handlers) error {
	r.logger.Info("Registering bowling module handlers",
		attr.String("roll_requested_subject", bowlingevents.RollRequestedV1),
	)

	registerHandler(r, bowlingevents.RollRequestedV1, handlers.HandleRollRequested)

	r.logger.Info("Bowling module handlers registered successfully")
	return nil
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	r *BowlingRouter,
	topic string,
	handler func(context.Context, *T) ([]bowlinghandlers.Result, error),
) {
	handlerName := "bowling." + topic

	r.router.AddNoPublisherHandler(
		handlerName,
		topic,
		r.subscriber,
		wrapTyped(r.logger, r.publisher, handlerName, handler),
	)
}

// wrapTyped decodes the message payload, runs the handler, and publishes its
// results to their own topics with the incoming correlation ID.
func wrapTyped[T any](
	logger *slog.Logger,
	publisher message.Publisher,
	handlerName string,
	handler func(context.Context, *T) ([]bowlinghandlers.Result, error),
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := bowlingevents.WithCorrelationID(msg.Context(), correlationID)

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// A malformed payload never decodes; retrying would only delay the ack.
			logger.WarnContext(ctx, "Dropping undecodable message",
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.String("correlation_id", correlationID),
				attr.Error(err),
			)
			return nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			return err
		}

		for _, res := range results {
			data, err := json.Marshal(res.Payload)
			if err != nil {
				return fmt.Errorf("%s: failed to marshal %s: %w", handlerName, res.Topic, err)
			}
			outMsg := message.NewMessage(watermill.NewUUID(), data)
			middleware.SetCorrelationID(correlationID, outMsg)
			if err := publisher.Publish(res.Topic, outMsg); err != nil {
				return fmt.Errorf("%s: failed to publish %s: %w", handlerName, res.Topic, err)
			}
		}
		return nil
	}
}

// Close shuts down the router.
func (r *BowlingRouter) Close() error {
	return r.router.Close()
}

// RegisterRoutes mounts the bowling HTTP API on httpRouter.
func RegisterRoutes(httpRouter chi.Router, handlers bowlinghandlers.Handlers, cfg HTTPConfig) {
	limiter := bowlinghandlers.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	httpRouter.Route("/api", func(r chi.Router) {
		r.Use(bowlinghandlers.CORSMiddleware(cfg.AllowedOrigins))
		r.Use(bowlinghandlers.RateLimitMiddleware(limiter))
		r.Use(bowlinghandlers.CorrelationIDMiddleware)

		r.Post("/score", handlers.HandleHTTPScoreRolls)

		r.Route("/games", func(r chi.Router) {
			r.Post("/", handlers.HandleHTTPStartGame)
			r.Get("/", handlers.HandleHTTPListGames)
			r.Post("/import", handlers.HandleHTTPImportScorecard)

			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", handlers.HandleHTTPGetGame)
				r.Post("/rolls", handlers.HandleHTTPRecordRoll)
				r.Get("/scorecard.xlsx", handlers.HandleHTTPExportScorecard)
				r.Get("/chart.png", handlers.HandleHTTPScoreChart)
			})
		})
	})
}
