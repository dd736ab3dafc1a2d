package kafka_middleware

import (
	"context"
	"time"

	"petsitter/pkg/kafka"
	"petsitter/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaDuration(msg.Topic, "publish", time.Since(start))
		m.KafkaPublished(msg.Topic, err)
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaDuration(msg.Topic, "consume", time.Since(start))
		m.KafkaConsumed(msg.Topic, err)
		return err
	}
}
