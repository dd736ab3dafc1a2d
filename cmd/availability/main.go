package main

import (
	"petsitter/internal/availability/cache"
	"petsitter/internal/availability/handler"
	"petsitter/internal/availability/repository"
	"petsitter/internal/availability/service"
	"petsitter/internal/availability/validator"
	bookingrepo "petsitter/internal/bookings/repository"
	"petsitter/pkg/app"
	"petsitter/pkg/config"
	"petsitter/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg.Log.Info("Starting Availability service")
	availabilityService := service.NewAvailabilityService(
		repository.NewMongoBlockRepository(cfg),
		bookingrepo.NewMongoBookingRepository(cfg),
		cache.New(cfg.Client.Redis, cfg.AvailabilityCacheTTL),
		validator.NewBlockValidator(cfg.Log),
		cfg,
		m,
	)

	serverApp := app.NewApplication(cfg, m, registry)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}
