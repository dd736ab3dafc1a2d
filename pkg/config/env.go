package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvOperatingTimeZone    = "OPERATING_TIME_ZONE"
	EnvRedisAddr            = "REDIS_ADDR"
	EnvRedisPassword        = "REDIS_PASSWORD"
	EnvAvailabilityCacheTTL = "AVAILABILITY_CACHE_TTL"
	EnvSearchPageSize       = "SEARCH_PAGE_SIZE"
	EnvSearchRadiusKm       = "SEARCH_DEFAULT_RADIUS_KM"
	EnvMaxBookingDays       = "MAX_BOOKING_DAYS"

	EnvPetRegistryURL    = "PET_REGISTRY_URL"
	EnvGeocoderURL       = "GEOCODER_URL"
	EnvGeocoderUserAgent = "GEOCODER_USER_AGENT"
	EnvHTTPClientTimeout = "HTTP_CLIENT_TIMEOUT"

	EnvJWTSecret = "JWT_SECRET"

	EnvNotificationsTopic = "KAFKA_NOTIFICATIONS_TOPIC"
)
