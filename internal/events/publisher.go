package events

import (
	"context"
	"time"

	"hallbook/pkg/kafka"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

// Publisher emits domain events after state changes commit. Failures are
// logged, never propagated: a lost event must not roll back a booking.
type Publisher interface {
	BookingEvent(ctx context.Context, eventType string, booking *model.Booking, reason string)
	RequestEvent(ctx context.Context, eventType string, request *model.BookingRequest, reason string)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

// Messages are keyed by hall ID so all events of one hall stay ordered on
// a single partition.
func (p *kafkaPublisher) BookingEvent(ctx context.Context, eventType string, booking *model.Booking, reason string) {
	event := BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		HallID:     booking.HallID,
		TeamID:     booking.TeamID,
		Reason:     reason,
		Booking:    booking,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.HallID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion("1").
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) RequestEvent(ctx context.Context, eventType string, request *model.BookingRequest, reason string) {
	event := RequestEvent{
		Type:       eventType,
		RequestID:  request.ID,
		HallID:     request.HallID,
		TeamID:     request.RequestingTeamID,
		Reason:     reason,
		Request:    request,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(request.HallID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(p.source).
		WithSchemaVersion("1").
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish request event",
			"event_type", eventType,
			"request_id", request.ID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher discards events. Used in tests and when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) BookingEvent(ctx context.Context, eventType string, booking *model.Booking, reason string) {
}

func (NoopPublisher) RequestEvent(ctx context.Context, eventType string, request *model.BookingRequest, reason string) {
}

func (NoopPublisher) Close() error { return nil }
