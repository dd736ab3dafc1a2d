package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "petsitter"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultOperatingTimeZone    = "Europe/Brussels"
	DefaultAvailabilityCacheTTL = 5 * time.Minute
	DefaultSearchPageSize       = 12
	DefaultSearchRadiusKm       = 10.0
	DefaultMaxBookingDays       = 90

	DefaultPetRegistryURL     = "http://localhost:8090"
	DefaultGeocoderURL        = "https://nominatim.openstreetmap.org"
	DefaultGeocoderUserAgent  = "petsitter/1.0"
	DefaultHTTPClientTimeout  = 5 * time.Second
	DefaultNotificationsTopic = "notifications"
)
