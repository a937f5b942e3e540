package validator

import (
	"io"
	"testing"
	"time"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

func testValidator() *BookingValidator {
	log := logger.New(logger.Config{Output: io.Discard})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	return &model.Booking{
		HallID:      "656e1f77bcf86cd799439011",
		TeamID:      "656e1f77bcf86cd799439031",
		BookingDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "18:00",
		EndTime:     "19:30",
		Status:      model.BookingPending,
		BookingType: model.BookingTypeRegular,
	}
}

func TestValidate_AcceptsWellFormedBooking(t *testing.T) {
	if err := testValidator().Validate(validBooking()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Times compare as strings everywhere downstream, so an unpadded hour
// like "9:00" would sort after "10:00" and slip past overlap detection.
func TestValidate_RejectsUnpaddedClockTimes(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{name: "unpadded start", start: "9:00", end: "11:00"},
		{name: "unpadded end", start: "08:00", end: "9:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := validBooking()
			booking.StartTime = tt.start
			booking.EndTime = tt.end

			if err := testValidator().Validate(booking); err == nil {
				t.Fatalf("expected validation error for %s-%s", tt.start, tt.end)
			}
		})
	}
}

func TestValidate_RejectsInvertedWindow(t *testing.T) {
	booking := validBooking()
	booking.StartTime = "19:00"
	booking.EndTime = "18:00"

	if err := testValidator().Validate(booking); err == nil {
		t.Fatal("expected validation error for inverted window")
	}
}
