// Package notify hands booking notifications to the notification sink.
// Delivery is best effort: a failed publish is logged and counted but never
// fails the booking operation that produced it.
package notify

import (
	"context"
	"sync"
	"time"

	"petsitter/pkg/kafka"
	"petsitter/pkg/logger"
	"petsitter/pkg/metrics"
	"petsitter/pkg/middleware"
	"petsitter/pkg/model"

	"github.com/google/uuid"
)

const (
	EventTypeNotificationCreated = "notification.created"
	SchemaVersion                = "1"
	publishTimeout               = 10 * time.Second
)

type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
	Close() error
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	publisher Publisher
	source    string
	log       *logger.Logger
	metrics   *metrics.Metrics
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func NewKafkaNotifier(publisher Publisher, source string, log *logger.Logger, m *metrics.Metrics) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		log:       log,
		metrics:   m,
	}
}

// Notify publishes n in the background. The publish outlives the request
// that triggered it.
func (k *KafkaNotifier) Notify(ctx context.Context, n model.Notification) {
	if n.EventID == "" {
		n.EventID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	correlationID := middleware.RequestIDFromContext(ctx)

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		err := k.publish(pubCtx, n, correlationID)
		k.metrics.NotificationDispatched(n.Type, err)
		if err != nil {
			k.log.Error("Notification publish failed",
				"event_id", n.EventID,
				"type", n.Type,
				"recipient_id", n.RecipientID,
				"error", err,
			)
			return
		}
		k.log.Info("Notification published", "event_id", n.EventID, "type", n.Type, "recipient_id", n.RecipientID)
	}()
}

func (k *KafkaNotifier) publish(ctx context.Context, n model.Notification, correlationID string) error {
	msg, err := kafka.NewMessage().
		WithKey(n.RecipientID).
		WithValue(n).
		WithEventID(n.EventID).
		WithEventType(EventTypeNotificationCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(k.source).
		WithCorrelationID(correlationID).
		Build()
	if err != nil {
		return err
	}
	return k.publisher.Publish(ctx, msg)
}

// Close waits for in-flight publishes, then closes the publisher so that
// buffered async writes are flushed. Later calls return the first result.
func (k *KafkaNotifier) Close() error {
	k.closeOnce.Do(func() {
		k.wg.Wait()
		k.closeErr = k.publisher.Close()
	})
	return k.closeErr
}

// NoopNotifier drops every notification. Used when no broker is configured.
type NoopNotifier struct {
	log *logger.Logger
}

func NewNoopNotifier(log *logger.Logger) *NoopNotifier {
	return &NoopNotifier{log: log}
}

func (n *NoopNotifier) Notify(_ context.Context, notification model.Notification) {
	if n.log != nil {
		n.log.Debug("Notification dropped, no sink configured", "type", notification.Type, "recipient_id", notification.RecipientID)
	}
}

func (n *NoopNotifier) Close() error {
	return nil
}
