package main

import (
	"github.com/julienschmidt/httprouter"

	bookinghandler "hallbook/internal/bookings/handler"
	bookingrepo "hallbook/internal/bookings/repository"
	bookingservice "hallbook/internal/bookings/service"
	bookingvalidator "hallbook/internal/bookings/validator"
	cataloghandler "hallbook/internal/catalog/handler"
	catalogrepo "hallbook/internal/catalog/repository"
	catalogservice "hallbook/internal/catalog/service"
	catalogvalidator "hallbook/internal/catalog/validator"
	"hallbook/internal/events"
	"hallbook/internal/jobs"
	requesthandler "hallbook/internal/requests/handler"
	requestrepo "hallbook/internal/requests/repository"
	requestservice "hallbook/internal/requests/service"
	requestvalidator "hallbook/internal/requests/validator"
	slothandler "hallbook/internal/timeslots/handler"
	slotrepo "hallbook/internal/timeslots/repository"
	slotservice "hallbook/internal/timeslots/service"
	slotvalidator "hallbook/internal/timeslots/validator"
	"hallbook/pkg/app"
	"hallbook/pkg/config"
	"hallbook/pkg/contracts"
	"hallbook/pkg/kafka"
	kafka_config "hallbook/pkg/kafka/config"
	kafka_middleware "hallbook/pkg/kafka/middleware"
)

const ServiceName = "scheduler"

// routes fans RegisterRoutes out over every domain handler so the whole
// engine runs as one HTTP surface.
type routes struct {
	handlers []contracts.Handler
}

func (r routes) RegisterRoutes(router *httprouter.Router) {
	for _, h := range r.handlers {
		h.RegisterRoutes(router)
	}
}

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting scheduling engine")

	publisher := newPublisher(cfg)
	defer publisher.Close()

	hallRepo := catalogrepo.NewMongoHallRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewSlotLockRepository(cfg)
	requestRepo := requestrepo.NewMongoRequestRepository(cfg)
	slotRepo := slotrepo.NewMongoTimeSlotRepository(cfg)

	catalogService := catalogservice.NewCatalogService(
		hallRepo,
		catalogvalidator.NewHallValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		catalogService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	requestService := requestservice.NewRequestService(
		requestRepo,
		bookingService,
		requestvalidator.NewRequestValidator(cfg.Log),
		publisher,
		cfg,
	)
	slotService := slotservice.NewTimeSlotService(
		slotRepo,
		bookingRepo,
		bookingService,
		slotvalidator.NewTimeSlotValidator(cfg.Log),
		cfg,
	)

	sweeper, err := jobs.NewSweeper(bookingService, requestService, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to build lifecycle sweeper", "error", err)
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, routes{handlers: []contracts.Handler{
		cataloghandler.NewHallHandler(catalogService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		requesthandler.NewRequestHandler(requestService, cfg.Log),
		slothandler.NewTimeSlotHandler(slotService, cfg.Log),
	}})
	serverApp.AddWorker(sweeper)
	serverApp.Run()
}

// newPublisher wires the Kafka event stream. A broker outage must never
// block bookings, so failures degrade to the no-op publisher.
func newPublisher(cfg *config.Config) events.Publisher {
	producer, err := kafka.NewProducer(kafka_config.Load(), events.TopicBookings, events.TopicBookingsDLQ)
	if err != nil {
		cfg.Log.Warn("Kafka producer unavailable, domain events disabled", "error", err)
		return events.NoopPublisher{}
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
