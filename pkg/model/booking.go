package model

import (
	"time"
)

const (
	BookingPending     = "pending"
	BookingConfirmed   = "confirmed"
	BookingCancelled   = "cancelled"
	BookingCompleted   = "completed"
	BookingReleased    = "released"
	BookingNoShow      = "no_show"
	BookingSubstituted = "substituted"
	BookingExpired     = "expired"
)

const (
	BookingTypeRegular    = "regular"
	BookingTypeSubstitute = "substitute"
	BookingTypeAdhoc      = "adhoc"
	BookingTypeEvent      = "event"
)

// ReleaseReasonPreempted marks bookings released to make room for a
// higher-priority conflicting booking.
const ReleaseReasonPreempted = "preempted_by_higher_priority"

// Booking is a concrete, dated reservation of a hall (or a subset of its
// courts), either materialized from a TimeSlot occurrence or created
// ad-hoc. An empty CourtIDs set means the whole hall is taken exclusively.
type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HallID          string    `json:"hall_id" bson:"hall_id" validate:"required,mongodb"`
	TimeSlotID      string    `json:"time_slot_id,omitempty" bson:"time_slot_id,omitempty" validate:"omitempty,mongodb"`
	TeamID          string    `json:"team_id,omitempty" bson:"team_id,omitempty" validate:"omitempty,mongodb"`
	GameID          string    `json:"game_id,omitempty" bson:"game_id,omitempty" validate:"omitempty,mongodb"`
	BookingDate     time.Time `json:"booking_date" bson:"booking_date" validate:"required"`
	StartTime       string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime         string    `json:"end_time" bson:"end_time" validate:"required,clock"`
	DurationMin     int       `json:"duration_min" bson:"duration_min" validate:"omitempty,min=1"`
	Priority        int       `json:"priority" bson:"priority" validate:"min=0"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed released no_show substituted expired"`
	BookingType     string    `json:"booking_type" bson:"booking_type" validate:"required,oneof=regular substitute adhoc event"`
	CourtIDs        []string  `json:"court_ids,omitempty" bson:"court_ids,omitempty" validate:"omitempty,dive,mongodb"`
	IsPartialCourt  bool      `json:"is_partial_court" bson:"is_partial_court"`
	CourtPercentage float64   `json:"court_percentage" bson:"court_percentage" validate:"omitempty,gt=0,lte=100"`

	OriginalTeamID     string     `json:"original_team_id,omitempty" bson:"original_team_id,omitempty" validate:"omitempty,mongodb"`
	SubstituteTeamID   string     `json:"substitute_team_id,omitempty" bson:"substitute_team_id,omitempty" validate:"omitempty,mongodb"`
	ReleaseReason      string     `json:"release_reason,omitempty" bson:"release_reason,omitempty"`
	ReleasedAt         *time.Time `json:"released_at,omitempty" bson:"released_at,omitempty"`
	ReleasedBy         string     `json:"released_by,omitempty" bson:"released_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`

	Cost            float64 `json:"cost,omitempty" bson:"cost,omitempty" validate:"omitempty,min=0"`
	PaymentRequired bool    `json:"payment_required" bson:"payment_required"`
	PaymentStatus   string  `json:"payment_status,omitempty" bson:"payment_status,omitempty" validate:"omitempty,oneof=unpaid pending paid waived"`
	BookingNotes    string  `json:"booking_notes,omitempty" bson:"booking_notes,omitempty" validate:"omitempty,max=500"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// EffectivePercentage is the share of each occupied court this booking
// consumes. Whole-hall bookings occupy every court entirely.
func (b *Booking) EffectivePercentage() float64 {
	if b.IsPartialCourt && b.CourtPercentage > 0 {
		return b.CourtPercentage
	}
	return 100
}

func (b *Booking) IsWholeHall() bool {
	return len(b.CourtIDs) == 0
}

func (b *Booking) IsGameBooking() bool {
	return b.GameID != ""
}

// Holds reports whether the booking currently occupies ledger capacity.
// Pending bookings never hold a reservation until confirmed.
func (b *Booking) Holds() bool {
	return b.Status == BookingConfirmed
}

func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// OverlapsWith reports whether two bookings contest the same instant on
// the same date. Court-set intersection is checked separately.
func (b *Booking) OverlapsWith(other *Booking) bool {
	if !DateOnly(b.BookingDate).Equal(DateOnly(other.BookingDate)) {
		return false
	}
	return ClockOverlaps(b.StartTime, b.EndTime, other.StartTime, other.EndTime)
}

// SharesCourtsWith reports whether two bookings contest at least one
// court. A whole-hall booking contests every court.
func (b *Booking) SharesCourtsWith(other *Booking) bool {
	if b.IsWholeHall() || other.IsWholeHall() {
		return true
	}
	for _, mine := range b.CourtIDs {
		for _, theirs := range other.CourtIDs {
			if mine == theirs {
				return true
			}
		}
	}
	return false
}

// CalculateCost prices the booking against an hourly rate, discounted by
// the court share for partial-court bookings.
func (b *Booking) CalculateCost(hourlyRate float64) float64 {
	hours := float64(b.DurationMin) / 60
	share := 1.0
	if b.IsPartialCourt && b.CourtPercentage > 0 {
		share = b.CourtPercentage / 100
	}
	return hourlyRate * hours * share
}
