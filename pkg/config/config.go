package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"petsitter/pkg/calendar"
	"petsitter/pkg/client"
	"petsitter/pkg/logger"

	"github.com/joho/godotenv"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`([a-z][a-z0-9+.-]*://)[^:/@]+:[^@]+@`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	OperatingTimeZone    string
	RedisAddr            string
	RedisPassword        string
	AvailabilityCacheTTL time.Duration
	SearchPageSize       int
	SearchRadiusKm       float64
	MaxBookingDays       int

	PetRegistryURL    string
	GeocoderURL       string
	GeocoderUserAgent string
	HTTPClientTimeout time.Duration

	JWTSecret string

	NotificationsTopic string

	Log    *logger.Logger
	Client *client.Client
	Clock  *calendar.Clock
}

// Load reads the environment (and a .env file when present), validates it
// and exits the process on any invalid value.
func Load(serviceName string) *Config {
	dotenvErr := godotenv.Load()

	cfg := FromEnv(serviceName)
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", dotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}

	clock, err := calendar.NewClock(cfg.OperatingTimeZone)
	if err != nil {
		cfg.Log.Fatal("Invalid operating time zone", "error", err)
	}
	cfg.Clock = clock

	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		OperatingTimeZone:    getEnvStr(EnvOperatingTimeZone, DefaultOperatingTimeZone),
		RedisAddr:            getEnvStr(EnvRedisAddr, ""),
		RedisPassword:        getEnvStr(EnvRedisPassword, ""),
		AvailabilityCacheTTL: getEnvDuration(EnvAvailabilityCacheTTL, DefaultAvailabilityCacheTTL),
		SearchPageSize:       getEnvNum(EnvSearchPageSize, DefaultSearchPageSize),
		SearchRadiusKm:       getEnvFloat(EnvSearchRadiusKm, DefaultSearchRadiusKm),
		MaxBookingDays:       getEnvNum(EnvMaxBookingDays, DefaultMaxBookingDays),

		PetRegistryURL:    getEnvStr(EnvPetRegistryURL, DefaultPetRegistryURL),
		GeocoderURL:       getEnvStr(EnvGeocoderURL, DefaultGeocoderURL),
		GeocoderUserAgent: getEnvStr(EnvGeocoderUserAgent, DefaultGeocoderUserAgent),
		HTTPClientTimeout: getEnvDuration(EnvHTTPClientTimeout, DefaultHTTPClientTimeout),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		NotificationsTopic: getEnvStr(EnvNotificationsTopic, DefaultNotificationsTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"AvailabilityCacheTTL", cfg.AvailabilityCacheTTL},
		{"HTTPClientTimeout", cfg.HTTPClientTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.SearchPageSize <= 0 || cfg.SearchPageSize > DefaultPaginationLimit {
		errors = append(errors, fmt.Sprintf("SearchPageSize must be between 1 and %d, got: %d", DefaultPaginationLimit, cfg.SearchPageSize))
	}
	if cfg.SearchRadiusKm < 0 {
		errors = append(errors, fmt.Sprintf("SearchRadiusKm cannot be negative, got: %g", cfg.SearchRadiusKm))
	}
	if cfg.MaxBookingDays <= 0 {
		errors = append(errors, fmt.Sprintf("MaxBookingDays must be positive, got: %d", cfg.MaxBookingDays))
	}

	if _, err := time.LoadLocation(cfg.OperatingTimeZone); err != nil || cfg.OperatingTimeZone == "" {
		errors = append(errors, fmt.Sprintf("OperatingTimeZone must be an IANA zone name, got: %q", cfg.OperatingTimeZone))
	}

	for name, raw := range map[string]string{"PetRegistryURL": cfg.PetRegistryURL, "GeocoderURL": cfg.GeocoderURL} {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s must be an absolute http(s) URL, got: %s", name, raw))
		}
	}

	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		errors = append(errors, "JWTSecret must be at least 32 characters when set")
	}
	if cfg.NotificationsTopic == "" {
		errors = append(errors, "NotificationsTopic cannot be empty")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"operating_time_zone", cfg.OperatingTimeZone,
		"redis_enabled", cfg.RedisAddr != "",
		"availability_cache_ttl", cfg.AvailabilityCacheTTL,
		"search_page_size", cfg.SearchPageSize,
		"search_radius_km", cfg.SearchRadiusKm,
		"max_booking_days", cfg.MaxBookingDays,
		"pet_registry_url", cfg.PetRegistryURL,
		"geocoder_url", cfg.GeocoderURL,
		"jwt_enabled", cfg.JWTSecret != "",
		"notifications_topic", cfg.NotificationsTopic,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
