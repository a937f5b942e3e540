// Package events defines the domain events this engine emits for
// notification and billing collaborators.
package events

import (
	"time"

	"hallbook/pkg/model"
)

const (
	TopicBookings    = "hallbook.booking-events"
	TopicBookingsDLQ = "hallbook.booking-events.dlq"
)

const (
	BookingConfirmed   = "booking.confirmed"
	BookingCancelled   = "booking.cancelled"
	BookingReleased    = "booking.released"
	BookingExpired     = "booking.expired"
	BookingCompleted   = "booking.completed"
	BookingNoShow      = "booking.no_show"
	BookingSubstituted = "booking.substituted"

	RequestSubmitted = "request.submitted"
	RequestApproved  = "request.approved"
	RequestRejected  = "request.rejected"
	RequestCancelled = "request.cancelled"
	RequestExpired   = "request.expired"
)

// BookingEvent carries the full booking snapshot plus the identifiers a
// consumer needs for routing without decoding the snapshot.
type BookingEvent struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"booking_id"`
	HallID     string         `json:"hall_id"`
	TeamID     string         `json:"team_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Booking    *model.Booking `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// RequestEvent mirrors BookingEvent for the request workflow.
type RequestEvent struct {
	Type       string                `json:"type"`
	RequestID  string                `json:"request_id"`
	HallID     string                `json:"hall_id"`
	TeamID     string                `json:"team_id"`
	Reason     string                `json:"reason,omitempty"`
	Request    *model.BookingRequest `json:"request"`
	OccurredAt time.Time             `json:"occurred_at"`
}
