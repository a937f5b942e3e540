package model

import (
	"time"
)

const (
	HallTypeSingle = "single"
	HallTypeDouble = "double"
	HallTypeTriple = "triple"
	HallTypeMulti  = "multi"
)

// Hall is a bookable physical venue owned by the club administration. The
// engine treats halls as read-mostly: capability flags drive admission
// decisions but the records themselves are mutated elsewhere.
type Hall struct {
	ID                       string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClubID                   string    `json:"club_id" bson:"club_id" validate:"required,mongodb"`
	Name                     string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	HallType                 string    `json:"hall_type" bson:"hall_type" validate:"required,oneof=single double triple multi"`
	CourtCount               int       `json:"court_count" bson:"court_count" validate:"required,min=1,max=12"`
	SupportsParallelBookings bool      `json:"supports_parallel_bookings" bson:"supports_parallel_bookings"`
	MinBookingDurationMin    int       `json:"min_booking_duration_min" bson:"min_booking_duration_min" validate:"omitempty,min=15,max=480"`
	BookingIncrementMin      int       `json:"booking_increment_min" bson:"booking_increment_min" validate:"omitempty,min=15,max=120"`
	OpeningTime              string    `json:"opening_time,omitempty" bson:"opening_time,omitempty" validate:"omitempty,clock"`
	ClosingTime              string    `json:"closing_time,omitempty" bson:"closing_time,omitempty" validate:"omitempty,clock"`
	Capacity                 int       `json:"capacity,omitempty" bson:"capacity,omitempty" validate:"omitempty,min=1"`
	ContactPhone             string    `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
	HourlyRate               float64   `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty" validate:"omitempty,min=0"`
	FallbackHallID           string    `json:"fallback_hall_id,omitempty" bson:"fallback_hall_id,omitempty" validate:"omitempty,mongodb"`
	FallbackDayOfWeek        Weekday   `json:"fallback_day_of_week,omitempty" bson:"fallback_day_of_week,omitempty" validate:"omitempty,weekday"`
	FallbackStartTime        string    `json:"fallback_start_time,omitempty" bson:"fallback_start_time,omitempty" validate:"omitempty,clock"`
	FallbackEndTime          string    `json:"fallback_end_time,omitempty" bson:"fallback_end_time,omitempty" validate:"omitempty,clock"`
	IsActive                 bool      `json:"is_active" bson:"is_active"`
	CreatedAt                time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (h *Hall) IsMultiCourt() bool {
	return h.CourtCount > 1
}

// AllowsSharing reports whether two bookings may ever coexist in this hall
// at the same time. Single halls are always exclusive.
func (h *Hall) AllowsSharing() bool {
	return h.SupportsParallelBookings && h.IsMultiCourt()
}

// MinDuration returns the minimum booking duration in minutes, defaulting
// to 30 when the hall record leaves it unset.
func (h *Hall) MinDuration() int {
	if h.MinBookingDurationMin > 0 {
		return h.MinBookingDurationMin
	}
	return 30
}

// Increment returns the booking increment in minutes, defaulting to 30.
func (h *Hall) Increment() int {
	if h.BookingIncrementMin > 0 {
		return h.BookingIncrementMin
	}
	return 30
}

// Court is a sub-resource of exactly one Hall, bookable on its own or in
// combination with sibling courts.
type Court struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HallID      string    `json:"hall_id" bson:"hall_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=50"`
	CourtNumber int       `json:"court_number" bson:"court_number" validate:"required,min=1"`
	IsMainCourt bool      `json:"is_main_court" bson:"is_main_court"`
	SortOrder   int       `json:"sort_order" bson:"sort_order" validate:"omitempty,min=0"`
	HourlyRate  float64   `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty" validate:"omitempty,min=0"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
