package model

import (
	"time"
)

const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCancelled = "cancelled"
	RequestExpired   = "expired"
)

// ApprovalConditions drive automatic review of a BookingRequest. A request
// auto-approves only when every configured condition holds at submission
// time.
type ApprovalConditions struct {
	MinLeadTimeHours    int  `json:"min_lead_time_hours,omitempty" bson:"min_lead_time_hours,omitempty" validate:"omitempty,min=0"`
	MaxDurationMin      int  `json:"max_duration_min,omitempty" bson:"max_duration_min,omitempty" validate:"omitempty,min=0"`
	RequireAvailability bool `json:"require_availability" bson:"require_availability"`
}

// BookingRequest is a human-initiated ask for an ad-hoc or substitute
// booking. It never holds ledger capacity; only the Booking created on
// approval does.
type BookingRequest struct {
	ID                   string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HallID               string    `json:"hall_id" bson:"hall_id" validate:"required,mongodb"`
	RequestingTeamID     string    `json:"requesting_team_id" bson:"requesting_team_id" validate:"required,mongodb"`
	ReleasedBookingID    string    `json:"released_booking_id,omitempty" bson:"released_booking_id,omitempty" validate:"omitempty,mongodb"`
	RequestedDate        time.Time `json:"requested_date" bson:"requested_date" validate:"required"`
	StartTime            string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime              string    `json:"end_time" bson:"end_time" validate:"required,clock"`
	Purpose              string    `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=200"`
	Message              string    `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=500"`
	ExpectedParticipants int       `json:"expected_participants,omitempty" bson:"expected_participants,omitempty" validate:"omitempty,min=1,max=200"`
	Priority             int       `json:"priority" bson:"priority" validate:"min=0"`
	Status               string    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected cancelled expired"`
	ExpiresAt            time.Time `json:"expires_at" bson:"expires_at" validate:"required"`

	AutoApproved       bool                `json:"auto_approved" bson:"auto_approved"`
	ApprovalConditions *ApprovalConditions `json:"approval_conditions,omitempty" bson:"approval_conditions,omitempty"`

	ReviewedBy      string     `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	ReviewNotes     string     `json:"review_notes,omitempty" bson:"review_notes,omitempty" validate:"omitempty,max=500"`
	RejectionReason string     `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`

	BookingID string    `json:"booking_id,omitempty" bson:"booking_id,omitempty" validate:"omitempty,mongodb"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

func (r *BookingRequest) IsExpired(now time.Time) bool {
	return r.Status == RequestPending && now.After(r.ExpiresAt)
}

// CanBeReviewed reports whether an approve/reject decision is still
// possible.
func (r *BookingRequest) CanBeReviewed(now time.Time) bool {
	return r.Status == RequestPending && !now.After(r.ExpiresAt)
}
