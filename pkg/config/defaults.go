package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hallbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL       = 30 * time.Second
	DefaultPendingBookingTTL = 30 * time.Minute
	DefaultGamePriority      = 10
	DefaultTrainingPriority  = 0
	DefaultGameBufferMin     = 30

	DefaultRequestExpiryWindow = 48 * time.Hour

	DefaultExpansionHorizonDays = 180

	DefaultDefaultOpeningTime           = "08:00"
	DefaultDefaultClosingTime           = "22:00"
	DefaultDefaultMinBookingDurationMin = 30
	DefaultDefaultBookingIncrementMin   = 30

	DefaultRequestExpirySchedule = "*/10 * * * *"
	DefaultPendingExpirySchedule = "*/5 * * * *"
	DefaultCompletionSchedule    = "0 * * * *"

	DefaultPaginationLimit = 100
)
