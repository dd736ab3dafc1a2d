package main

import (
	"petsitter/internal/sitters/handler"
	"petsitter/internal/sitters/repository"
	"petsitter/internal/sitters/service"
	"petsitter/pkg/app"
	"petsitter/pkg/client"
	"petsitter/pkg/config"
	"petsitter/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "sitters"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	cfg.Log.Info("Starting Sitters service")
	var geocoder service.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = client.NewGeocoderClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.HTTPClientTimeout)
	} else {
		cfg.Log.Warn("Geocoder not configured, location text search disabled")
	}
	sitterService := service.NewSitterService(repository.NewMongoSitterRepository(cfg), geocoder, cfg)

	serverApp := app.NewApplication(cfg, m, registry)
	serverApp.SetApp(handler.NewSitterHandler(sitterService, cfg.Log))
	serverApp.Run()
}
