package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if booking.EndTime <= booking.StartTime {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: "end_time must be after start_time",
			},
		}
	}

	if booking.IsPartialCourt && booking.IsWholeHall() {
		return ValidationErrors{
			ValidationError{
				Field:   "CourtIDs",
				Message: "a partial-court booking must name its courts",
			},
		}
	}

	return nil
}

// ValidateAgainstHall checks the candidate's window against the hall's
// booking rules: inside opening hours, at least the minimum duration, and
// both the start time and the duration aligned to the booking increment.
func (v *BookingValidator) ValidateAgainstHall(booking *model.Booking, hall *model.Hall) error {
	duration, err := model.ClockRangeMinutes(booking.StartTime, booking.EndTime)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: err.Error()},
		}
	}

	if hall.OpeningTime != "" && booking.StartTime < hall.OpeningTime {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: fmt.Sprintf("hall opens at %s", hall.OpeningTime),
			},
		}
	}
	if hall.ClosingTime != "" && booking.EndTime > hall.ClosingTime {
		return ValidationErrors{
			ValidationError{
				Field:   "EndTime",
				Message: fmt.Sprintf("hall closes at %s", hall.ClosingTime),
			},
		}
	}

	if duration < hall.MinDuration() {
		return ValidationErrors{
			ValidationError{
				Field:   "DurationMin",
				Message: fmt.Sprintf("booking must last at least %d minutes", hall.MinDuration()),
			},
		}
	}

	increment := hall.Increment()
	if duration%increment != 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "DurationMin",
				Message: fmt.Sprintf("booking duration must be a multiple of %d minutes", increment),
			},
		}
	}

	start, err := model.ParseClock(booking.StartTime)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: err.Error()},
		}
	}
	if start%increment != 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: fmt.Sprintf("start time must align to %d minute increments", increment),
			},
		}
	}

	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM time", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
