package testutil

import (
	"time"

	"hallbook/pkg/model"
)

type HallBuilder struct {
	hall model.Hall
}

func NewHallBuilder() *HallBuilder {
	return &HallBuilder{
		hall: model.Hall{
			ClubID:                   "656e1f77bcf86cd799439001",
			Name:                     "Main Hall",
			HallType:                 model.HallTypeTriple,
			CourtCount:               3,
			SupportsParallelBookings: true,
			MinBookingDurationMin:    30,
			BookingIncrementMin:      30,
			OpeningTime:              "08:00",
			ClosingTime:              "22:00",
			IsActive:                 true,
			CreatedAt:                time.Now(),
		},
	}
}

func (b *HallBuilder) WithName(name string) *HallBuilder {
	b.hall.Name = name
	return b
}

func (b *HallBuilder) WithType(hallType string, courtCount int) *HallBuilder {
	b.hall.HallType = hallType
	b.hall.CourtCount = courtCount
	return b
}

func (b *HallBuilder) WithParallelBookings(allowed bool) *HallBuilder {
	b.hall.SupportsParallelBookings = allowed
	return b
}

func (b *HallBuilder) WithHours(opening, closing string) *HallBuilder {
	b.hall.OpeningTime = opening
	b.hall.ClosingTime = closing
	return b
}

func (b *HallBuilder) Build() model.Hall {
	return b.hall
}

func SingleCourtHall() model.Hall {
	return NewHallBuilder().
		WithName("Small Hall").
		WithType(model.HallTypeSingle, 1).
		WithParallelBookings(false).
		Build()
}

type BookingBuilder struct {
	booking model.Booking
}

func NewBookingBuilder(hallID, teamID string) *BookingBuilder {
	return &BookingBuilder{
		booking: model.Booking{
			HallID:      hallID,
			TeamID:      teamID,
			BookingDate: time.Now().UTC().AddDate(0, 0, 7),
			StartTime:   "18:00",
			EndTime:     "19:30",
			BookingType: model.BookingTypeRegular,
		},
	}
}

func (b *BookingBuilder) WithWindow(start, end string) *BookingBuilder {
	b.booking.StartTime = start
	b.booking.EndTime = end
	return b
}

func (b *BookingBuilder) WithDate(date time.Time) *BookingBuilder {
	b.booking.BookingDate = date
	return b
}

func (b *BookingBuilder) WithPriority(priority int) *BookingBuilder {
	b.booking.Priority = priority
	return b
}

func (b *BookingBuilder) WithGame(gameID string) *BookingBuilder {
	b.booking.GameID = gameID
	return b
}

func (b *BookingBuilder) WithCourts(courtIDs ...string) *BookingBuilder {
	b.booking.CourtIDs = courtIDs
	return b
}

func (b *BookingBuilder) WithStatus(status string) *BookingBuilder {
	b.booking.Status = status
	return b
}

func (b *BookingBuilder) Build() model.Booking {
	return b.booking
}

type RequestBuilder struct {
	request model.BookingRequest
}

func NewRequestBuilder(hallID, teamID string) *RequestBuilder {
	return &RequestBuilder{
		request: model.BookingRequest{
			HallID:           hallID,
			RequestingTeamID: teamID,
			RequestedDate:    time.Now().UTC().AddDate(0, 0, 7),
			StartTime:        "18:00",
			EndTime:          "19:30",
			Purpose:          "Extra practice session",
		},
	}
}

func (b *RequestBuilder) WithConditions(cond *model.ApprovalConditions) *RequestBuilder {
	b.request.ApprovalConditions = cond
	return b
}

func (b *RequestBuilder) Build() model.BookingRequest {
	return b.request
}

type TimeSlotBuilder struct {
	slot model.TimeSlot
}

func NewTimeSlotBuilder(hallID, teamID string) *TimeSlotBuilder {
	return &TimeSlotBuilder{
		slot: model.TimeSlot{
			HallID:         hallID,
			TeamID:         teamID,
			Title:          "Weekly training",
			DayOfWeek:      model.Tuesday,
			StartTime:      "18:00",
			EndTime:        "19:30",
			RecurrenceType: model.RecurrenceWeekly,
			ValidFrom:      time.Now().UTC(),
			Status:         model.SlotStatusActive,
			SlotType:       model.SlotTypeTraining,
		},
	}
}

func (b *TimeSlotBuilder) WithRecurrence(recurrence string) *TimeSlotBuilder {
	b.slot.RecurrenceType = recurrence
	return b
}

func (b *TimeSlotBuilder) WithValidity(from time.Time, until *time.Time) *TimeSlotBuilder {
	b.slot.ValidFrom = from
	b.slot.ValidUntil = until
	return b
}

func (b *TimeSlotBuilder) Build() model.TimeSlot {
	return b.slot
}
