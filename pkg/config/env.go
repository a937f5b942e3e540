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

	EnvSlotLockTTL       = "SLOT_LOCK_TTL"
	EnvPendingBookingTTL = "PENDING_BOOKING_TTL"
	EnvGamePriority      = "GAME_PRIORITY"
	EnvTrainingPriority  = "TRAINING_PRIORITY"
	EnvGameBufferMin     = "GAME_BUFFER_MINUTES"

	EnvRequestExpiryWindow = "REQUEST_EXPIRY_WINDOW"

	EnvExpansionHorizonDays = "EXPANSION_HORIZON_DAYS"

	EnvDefaultOpeningTime           = "DEFAULT_OPENING_TIME"
	EnvDefaultClosingTime           = "DEFAULT_CLOSING_TIME"
	EnvDefaultMinBookingDurationMin = "DEFAULT_MIN_BOOKING_DURATION_MIN"
	EnvDefaultBookingIncrementMin   = "DEFAULT_BOOKING_INCREMENT_MIN"

	EnvRequestExpirySchedule = "REQUEST_EXPIRY_SCHEDULE"
	EnvPendingExpirySchedule = "PENDING_EXPIRY_SCHEDULE"
	EnvCompletionSchedule    = "COMPLETION_SCHEDULE"
)
