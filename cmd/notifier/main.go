package main

import (
	"context"
	"errors"

	"petsitter/internal/notifications/consumer"
	"petsitter/internal/notifications/handler"
	"petsitter/internal/notifications/repository"
	"petsitter/internal/notifications/service"
	"petsitter/pkg/app"
	"petsitter/pkg/config"
	"petsitter/pkg/kafka"
	kafka_config "petsitter/pkg/kafka/config"
	kafkamiddleware "petsitter/pkg/kafka/middleware"
	"petsitter/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg.Log.Info("Starting Notifier service")
	notificationService := service.NewNotificationService(repository.NewMongoNotificationRepository(cfg), cfg)

	notificationConsumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.NotificationsTopic,
		kafkaCfg.ConsumerGroupID,
		kafkaCfg.NotificationsDLQTopic,
		consumer.NewHandler(notificationService, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		notificationConsumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
		notificationConsumer.Use(kafkamiddleware.MetricsConsumerMiddleware(m))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := notificationConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Notification consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg, m, registry)
	serverApp.SetApp(handler.NewNotificationHandler(notificationService, cfg.Log))
	serverApp.OnShutdown(func(shutdownCtx context.Context) {
		cancel()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			cfg.Log.Warn("Consumer did not stop before shutdown deadline")
		}
		if err := notificationConsumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
	})
	serverApp.Run()
}
