package model

import (
	"time"
)

const (
	RecurrenceWeekly   = "weekly"
	RecurrenceBiweekly = "biweekly"
	RecurrenceMonthly  = "monthly"
	RecurrenceOnce     = "once"
)

const (
	SlotStatusActive    = "active"
	SlotStatusInactive  = "inactive"
	SlotStatusSuspended = "suspended"
)

const (
	SlotTypeTraining    = "training"
	SlotTypeGame        = "game"
	SlotTypeEvent       = "event"
	SlotTypeMaintenance = "maintenance"
)

// TimeSegment is one bookable window inside a custom-times day.
type TimeSegment struct {
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clock"`
}

// TimeSlot is a standing, typically recurring, claim on a Hall by a Team.
// Exactly one of (DayOfWeek + StartTime/EndTime) or CustomTimes is
// populated; the validator enforces this.
type TimeSlot struct {
	ID                       string                    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HallID                   string                    `json:"hall_id" bson:"hall_id" validate:"required,mongodb"`
	TeamID                   string                    `json:"team_id,omitempty" bson:"team_id,omitempty" validate:"omitempty,mongodb"`
	Title                    string                    `json:"title" bson:"title" validate:"required,min=2,max=100"`
	DayOfWeek                Weekday                   `json:"day_of_week,omitempty" bson:"day_of_week,omitempty" validate:"omitempty,weekday"`
	StartTime                string                    `json:"start_time,omitempty" bson:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime                  string                    `json:"end_time,omitempty" bson:"end_time,omitempty" validate:"omitempty,clock"`
	UsesCustomTimes          bool                      `json:"uses_custom_times" bson:"uses_custom_times"`
	CustomTimes              map[Weekday][]TimeSegment `json:"custom_times,omitempty" bson:"custom_times,omitempty" validate:"omitempty,dive,dive"`
	RecurrenceType           string                    `json:"recurrence_type" bson:"recurrence_type" validate:"required,oneof=weekly biweekly monthly once"`
	ValidFrom                time.Time                 `json:"valid_from" bson:"valid_from" validate:"required"`
	ValidUntil               *time.Time                `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
	ExcludedDates            []string                  `json:"excluded_dates,omitempty" bson:"excluded_dates,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
	Status                   string                    `json:"status" bson:"status" validate:"required,oneof=active inactive suspended"`
	SlotType                 string                    `json:"slot_type" bson:"slot_type" validate:"required,oneof=training game event maintenance"`
	SupportsParallelBookings bool                      `json:"supports_parallel_bookings" bson:"supports_parallel_bookings"`
	AllowsPartialCourt       bool                      `json:"allows_partial_court" bson:"allows_partial_court"`
	AllowsSubstitution       bool                      `json:"allows_substitution" bson:"allows_substitution"`
	CostPerHour              float64                   `json:"cost_per_hour,omitempty" bson:"cost_per_hour,omitempty" validate:"omitempty,min=0"`
	CreatedAt                time.Time                 `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SegmentsForDay returns the bookable windows for a weekday: the custom
// segments when the slot uses them, otherwise the single standard window
// when the day matches DayOfWeek.
func (ts *TimeSlot) SegmentsForDay(day Weekday) []TimeSegment {
	if ts.UsesCustomTimes {
		return ts.CustomTimes[day]
	}
	if ts.DayOfWeek == day && ts.StartTime != "" && ts.EndTime != "" {
		return []TimeSegment{{StartTime: ts.StartTime, EndTime: ts.EndTime}}
	}
	return nil
}

func (ts *TimeSlot) IsExcluded(date time.Time) bool {
	d := FormatDate(date)
	for _, ex := range ts.ExcludedDates {
		if ex == d {
			return true
		}
	}
	return false
}

// CoversDate reports whether date lies inside the slot's validity window.
func (ts *TimeSlot) CoversDate(date time.Time) bool {
	d := DateOnly(date)
	if d.Before(DateOnly(ts.ValidFrom)) {
		return false
	}
	if ts.ValidUntil != nil && d.After(DateOnly(*ts.ValidUntil)) {
		return false
	}
	return true
}

type TimeSlotUpdate struct {
	Title          string                    `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	TeamID         *string                   `json:"team_id,omitempty" validate:"omitempty"`
	DayOfWeek      Weekday                   `json:"day_of_week,omitempty" validate:"omitempty,weekday"`
	StartTime      string                    `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime        string                    `json:"end_time,omitempty" validate:"omitempty,clock"`
	CustomTimes    *map[Weekday][]TimeSegment `json:"custom_times,omitempty" validate:"omitempty"`
	Status         string                    `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	ValidUntil     *time.Time                `json:"valid_until,omitempty"`
	ExcludedDates  *[]string                 `json:"excluded_dates,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
}

// TimeSlotTeamAssignment links a shared TimeSlot to one of the teams
// rotating through it. The (slot, team) pair is unique.
type TimeSlotTeamAssignment struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TimeSlotID string    `json:"time_slot_id" bson:"time_slot_id" validate:"required,mongodb"`
	TeamID     string    `json:"team_id" bson:"team_id" validate:"required,mongodb"`
	Priority   int       `json:"priority" bson:"priority" validate:"min=0"`
	CourtID    string    `json:"court_id,omitempty" bson:"court_id,omitempty" validate:"omitempty,mongodb"`
	AssignedBy string    `json:"assigned_by,omitempty" bson:"assigned_by,omitempty"`
	AssignedAt time.Time `json:"assigned_at" bson:"assigned_at" validate:"omitempty"`
}
