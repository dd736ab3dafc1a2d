package main

import (
	"context"

	availabilitycache "petsitter/internal/availability/cache"
	availabilityrepo "petsitter/internal/availability/repository"
	availabilityservice "petsitter/internal/availability/service"
	availabilityvalidator "petsitter/internal/availability/validator"
	"petsitter/internal/bookings/handler"
	"petsitter/internal/bookings/repository"
	"petsitter/internal/bookings/service"
	"petsitter/internal/bookings/validator"
	sitterrepo "petsitter/internal/sitters/repository"
	"petsitter/pkg/app"
	"petsitter/pkg/client"
	"petsitter/pkg/config"
	"petsitter/pkg/kafka"
	kafka_config "petsitter/pkg/kafka/config"
	kafkamiddleware "petsitter/pkg/kafka/middleware"
	"petsitter/pkg/metrics"
	"petsitter/pkg/notify"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg.Log.Info("Starting Bookings service")
	notifier := initNotifier(cfg, m)
	bookingService := initServices(cfg, notifier, m)

	serverApp := app.NewApplication(cfg, m, registry)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, validator.NewBookingValidator(cfg.Log), cfg.Log))
	serverApp.OnShutdown(func(context.Context) {
		if err := notifier.Close(); err != nil {
			cfg.Log.Error("Failed to close notifier", "error", err)
		}
	})
	serverApp.Run()
}

func initServices(cfg *config.Config, notifier notify.Notifier, m *metrics.Metrics) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)

	availability := availabilityservice.NewAvailabilityService(
		availabilityrepo.NewMongoBlockRepository(cfg),
		bookingRepo,
		availabilitycache.New(cfg.Client.Redis, cfg.AvailabilityCacheTTL),
		availabilityvalidator.NewBlockValidator(cfg.Log),
		cfg,
		m,
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		availability,
		client.NewPetRegistryClient(cfg.PetRegistryURL, cfg.HTTPClientTimeout),
		sitterrepo.NewMongoSitterRepository(cfg),
		notifier,
		validator.NewBookingValidator(cfg.Log),
		cfg,
		m,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initNotifier publishes to Kafka when it is configured. Without a usable
// Kafka configuration the service keeps running and only logs notifications.
func initNotifier(cfg *config.Config, m *metrics.Metrics) notify.Notifier {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Warn("Kafka not configured, notifications will be logged only", "error", err)
		return notify.NewNoopNotifier(cfg.Log)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, kafkaCfg.NotificationsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, notifications will be logged only", "error", err)
		return notify.NewNoopNotifier(cfg.Log)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))
	}

	return notify.NewKafkaNotifier(producer, ServiceName, cfg.Log, m)
}
