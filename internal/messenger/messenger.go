// Package messenger consumes notification events from JetStream and
// materializes them into the messages inbox table. The engine publishes
// fire-and-forget; this consumer is what turns those events into something a
// recipient can read later. Delivery is at least once, so every write is
// keyed on the stream sequence and redeliveries collapse into no-ops.
package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/adapter"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/notifier"
	"github.com/campuslink/engage-core/internal/store"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// Config holds the configuration for the message consumer
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWait        time.Duration
	MaxDeliver     int
}

// Messenger defines the interface for the message consumer
type Messenger interface {
	// Run starts consuming notification events until the context is cancelled
	Run(ctx context.Context) error
	// Close closes the NATS connection
	Close()
}

type messenger struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	store  store.Store
	config Config
}

// NewMessenger connects to NATS and creates a message consumer
func NewMessenger(cfg Config, natsJS adapter.NatsJetStream, st store.Store) (Messenger, error) {
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

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &messenger{
		nc:     nc,
		js:     js,
		store:  st,
		config: cfg,
	}, nil
}

// Run starts the message consumer
func (m *messenger) Run(ctx context.Context) error {
	logger.Info("Starting messenger",
		zap.String("stream", m.config.StreamName),
		zap.String("consumer", m.config.ConsumerName),
	)

	subject := m.config.StreamName + ".notify.>"

	// The consumer side owns the stream; publishers only append to it
	err := m.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     m.config.StreamName,
		Subjects: []string{subject},
	})
	if err != nil {
		return fmt.Errorf("failed to create/update stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       m.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       m.config.AckWait,
		MaxDeliver:    m.config.MaxDeliver,
		FilterSubject: subject,
	}

	consumer, err := m.js.CreateOrUpdateConsumer(ctx, m.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.Info("Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming notification events")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down messenger")
			return ctx.Err()
		case msg := <-msgChan:
			m.handleMessage(ctx, msg)
		}
	}
}

// handleMessage materializes one notification event into the inbox
func (m *messenger) handleMessage(ctx context.Context, msg adapter.Message) {
	metadata, err := msg.Metadata()
	if err != nil {
		logger.Error(err, zap.String("message", "Failed to read message metadata"))
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	var event notifier.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.Error(err, zap.String("message", "Failed to unmarshal notification event"))
		// Terminate: redelivering unparseable data cannot help
		if err := msg.Term(); err != nil {
			logger.Error(err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	if event.ToActorID == "" {
		logger.Warn("Dropping notification without recipient", zap.String("kind", string(event.Kind)))
		if err := msg.Term(); err != nil {
			logger.Error(err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	fromID := event.FromActorID
	if fromID == "" {
		fromID = "system"
	}
	content := event.Content
	if content == "" {
		content = string(event.Kind)
	}

	record := &schema.Message{
		// The stream sequence is stable across redeliveries
		ID:              fmt.Sprintf("%s-%d", m.config.StreamName, metadata.Sequence.Stream),
		FromID:          fromID,
		ToID:            event.ToActorID,
		Kind:            event.Kind,
		RelatedEntityID: event.RelatedEntityID,
		Content:         content,
		CreatedAt:       metadata.Timestamp,
	}

	created, err := m.store.CreateMessage(ctx, record)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message_id", record.ID))
		// NAK to retry; the store may be transiently unavailable
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}
	if !created {
		logger.Debug("Skipping redelivered notification", zap.String("message_id", record.ID))
	}

	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

// Close closes the messenger and cleans up resources
func (m *messenger) Close() {
	if m.nc == nil {
		return
	}
	m.nc.Close()
}
