package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"hallbook/pkg/client"
	"hallbook/pkg/logger"
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

	// Admission knobs.
	SlotLockTTL       time.Duration
	PendingBookingTTL time.Duration
	GamePriority      int
	TrainingPriority  int
	GameBufferMin     int

	// Request workflow.
	RequestExpiryWindow time.Duration

	// Recurrence expansion.
	ExpansionHorizonDays int

	DefaultOpeningTime           string
	DefaultClosingTime           string
	DefaultMinBookingDurationMin int
	DefaultBookingIncrementMin   int

	// Cron specs for the background sweepers.
	RequestExpirySchedule string
	PendingExpirySchedule string
	CompletionSchedule    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
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

		SlotLockTTL:       getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),
		PendingBookingTTL: getEnvDuration(EnvPendingBookingTTL, DefaultPendingBookingTTL),
		GamePriority:      getEnvNum(EnvGamePriority, DefaultGamePriority),
		TrainingPriority:  getEnvNum(EnvTrainingPriority, DefaultTrainingPriority),
		GameBufferMin:     getEnvNum(EnvGameBufferMin, DefaultGameBufferMin),

		RequestExpiryWindow: getEnvDuration(EnvRequestExpiryWindow, DefaultRequestExpiryWindow),

		ExpansionHorizonDays: getEnvNum(EnvExpansionHorizonDays, DefaultExpansionHorizonDays),

		DefaultOpeningTime:           getEnvStr(EnvDefaultOpeningTime, DefaultDefaultOpeningTime),
		DefaultClosingTime:           getEnvStr(EnvDefaultClosingTime, DefaultDefaultClosingTime),
		DefaultMinBookingDurationMin: getEnvNum(EnvDefaultMinBookingDurationMin, DefaultDefaultMinBookingDurationMin),
		DefaultBookingIncrementMin:   getEnvNum(EnvDefaultBookingIncrementMin, DefaultDefaultBookingIncrementMin),

		RequestExpirySchedule: getEnvStr(EnvRequestExpirySchedule, DefaultRequestExpirySchedule),
		PendingExpirySchedule: getEnvStr(EnvPendingExpirySchedule, DefaultPendingExpirySchedule),
		CompletionSchedule:    getEnvStr(EnvCompletionSchedule, DefaultCompletionSchedule),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.DefaultOpeningTime) {
		errors = append(errors, fmt.Sprintf("DefaultOpeningTime must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultOpeningTime))
	}
	if !timeRegex.MatchString(cfg.DefaultClosingTime) {
		errors = append(errors, fmt.Sprintf("DefaultClosingTime must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultClosingTime))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.SlotLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SlotLockTTL must be positive, got: %s", cfg.SlotLockTTL))
	}
	if cfg.PendingBookingTTL <= 0 {
		errors = append(errors, fmt.Sprintf("PendingBookingTTL must be positive, got: %s", cfg.PendingBookingTTL))
	}
	if cfg.RequestExpiryWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RequestExpiryWindow must be positive, got: %s", cfg.RequestExpiryWindow))
	}
	if cfg.GamePriority < cfg.TrainingPriority {
		errors = append(errors, fmt.Sprintf("GamePriority (%d) must be >= TrainingPriority (%d)", cfg.GamePriority, cfg.TrainingPriority))
	}
	if cfg.GameBufferMin < 0 {
		errors = append(errors, fmt.Sprintf("GameBufferMin cannot be negative, got: %d", cfg.GameBufferMin))
	}

	if cfg.ExpansionHorizonDays <= 0 {
		errors = append(errors, fmt.Sprintf("ExpansionHorizonDays must be positive, got: %d", cfg.ExpansionHorizonDays))
	}
	if cfg.DefaultMinBookingDurationMin <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultMinBookingDurationMin must be positive, got: %d", cfg.DefaultMinBookingDurationMin))
	}
	if cfg.DefaultBookingIncrementMin <= 0 {
		errors = append(errors, fmt.Sprintf("DefaultBookingIncrementMin must be positive, got: %d", cfg.DefaultBookingIncrementMin))
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
		"slot_lock_ttl", cfg.SlotLockTTL,
		"pending_booking_ttl", cfg.PendingBookingTTL,
		"game_priority", cfg.GamePriority,
		"training_priority", cfg.TrainingPriority,
		"game_buffer_min", cfg.GameBufferMin,
		"request_expiry_window", cfg.RequestExpiryWindow,
		"expansion_horizon_days", cfg.ExpansionHorizonDays,
		"default_opening_time", cfg.DefaultOpeningTime,
		"default_closing_time", cfg.DefaultClosingTime,
		"default_min_booking_duration_min", cfg.DefaultMinBookingDurationMin,
		"default_booking_increment_min", cfg.DefaultBookingIncrementMin,
		"request_expiry_schedule", cfg.RequestExpirySchedule,
		"pending_expiry_schedule", cfg.PendingExpirySchedule,
		"completion_schedule", cfg.CompletionSchedule,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
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
