package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/logger"
)

// Config holds the configuration for the NATS JetStream notifier
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	PublishTimeout time.Duration
}

type natsNotifier struct {
	nc         *nats.Conn
	js         jetstream.JetStream
	streamName string
	timeout    time.Duration
}

// NewNATSNotifier creates a notifier publishing to a NATS JetStream stream
func NewNATSNotifier(cfg Config) (Notifier, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	timeout := cfg.PublishTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &natsNotifier{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		timeout:    timeout,
	}, nil
}

// Notify publishes a notification event to the stream subject for its kind
func (n *natsNotifier) Notify(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	subject := fmt.Sprintf("%s.notify.%s", n.streamName, event.Kind)

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if _, err := n.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.Debug("Published notification",
		zap.String("subject", subject),
		zap.String("to", event.ToActorID),
	)
	return nil
}

// Close closes the NATS connection
func (n *natsNotifier) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}
