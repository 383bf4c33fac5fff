package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
)

const (
	connectionName = "bowling-bot"
	queueGroup     = "bowling"
)

// Config selects the transport. An empty NATSURL keeps every message inside
// the process.
type Config struct {
	NATSURL string
}

// PubSub pairs a publisher and subscriber on one transport.
type PubSub struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	transport  string
}

var (
	_ message.Publisher  = (*PubSub)(nil)
	_ message.Subscriber = (*PubSub)(nil)
)

// NewPubSub connects to NATS when cfg.NATSURL is set and falls back to an
// in-memory gochannel otherwise.
func NewPubSub(cfg Config, logger *slog.Logger) (*PubSub, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		logger.Info("Using in-process event bus")
		return &PubSub{publisher: ch, subscriber: ch, transport: "gochannel"}, nil
	}

	options := connectionOptions(logger)
	marshaler := &wmnats.NATSMarshaler{}
	jetStream := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.NATSURL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   jetStream,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              cfg.NATSURL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: 1,
			CloseTimeout:     30 * time.Second,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			JetStream:        jetStream,
		},
		wmLogger,
	)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Connected event bus to NATS", attr.String("url", cfg.NATSURL))
	return &PubSub{publisher: publisher, subscriber: subscriber, transport: "nats"}, nil
}

// connectionOptions returns the NATS options shared by publisher and
// subscriber connections.
func connectionOptions(logger *slog.Logger) []nats.Option {
	return []nats.Option{
		nats.Name(connectionName),
		nats.RetryOnFailedConnect(true),
		nats.Timeout(30 * time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", attr.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", attr.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				logger.Error("Error in NATS subscription",
					attr.String("subject", s.Subject),
					attr.String("queue", s.Queue),
					attr.Error(err),
				)
				return
			}
			logger.Error("Error in NATS connection", attr.Error(err))
		}),
	}
}

// Transport names the backing transport, "nats" or "gochannel".
func (ps *PubSub) Transport() string {
	return ps.transport
}

// Publish publishes messages to the specified topic.
func (ps *PubSub) Publish(topic string, messages ...*message.Message) error {
	return ps.publisher.Publish(topic, messages...)
}

// Subscribe subscribes to the specified topic.
func (ps *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return ps.subscriber.Subscribe(ctx, topic)
}

// Close closes the subscriber, then the publisher.
func (ps *PubSub) Close() error {
	var errs []error

	if err := ps.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	// gochannel serves both roles and is already closed.
	if ps.transport != "gochannel" {
		if err := ps.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}

	return errors.Join(errs...)
}
