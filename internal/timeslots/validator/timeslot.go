package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

const (
	minSegmentMinutes = 30
	maxSegmentMinutes = 18 * 60
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

type TimeSlotValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTimeSlotValidator(log *logger.Logger) *TimeSlotValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}

	log.Info("Time slot validator initialized successfully")

	return &TimeSlotValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	return model.Weekday(fl.Field().String()).Valid()
}

func (v *TimeSlotValidator) Validate(slot *model.TimeSlot) error {
	if err := v.validate.Struct(slot); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := v.validateShape(slot); len(errs) > 0 {
		return errs
	}

	if slot.ValidUntil != nil && !slot.ValidUntil.After(slot.ValidFrom) {
		return ValidationErrors{
			ValidationError{
				Field:   "ValidUntil",
				Message: "valid_until must be after valid_from",
			},
		}
	}

	return nil
}

func (v *TimeSlotValidator) ValidateAssignment(assignment *model.TimeSlotTeamAssignment) error {
	if err := v.validate.Struct(assignment); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// validateShape enforces that a slot defines either a single standard
// window or custom per-day segments, never both and never neither.
func (v *TimeSlotValidator) validateShape(slot *model.TimeSlot) ValidationErrors {
	hasStandard := slot.StartTime != "" && slot.EndTime != ""

	if slot.UsesCustomTimes {
		if hasStandard || slot.DayOfWeek != "" {
			return ValidationErrors{
				ValidationError{
					Field:   "CustomTimes",
					Message: "custom times exclude the standard day_of_week window",
				},
			}
		}
		if len(slot.CustomTimes) == 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "CustomTimes",
					Message: "custom_times must define at least one segment",
				},
			}
		}
		return v.validateCustomTimes(slot.CustomTimes)
	}

	if !hasStandard {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "start_time and end_time are required without custom times",
			},
		}
	}
	if err := validateWindow(slot.StartTime, slot.EndTime, "EndTime"); err != nil {
		return ValidationErrors{*err}
	}

	// Monthly and one-off slots recur by the valid_from anchor, not by
	// weekday.
	weekly := slot.RecurrenceType == model.RecurrenceWeekly || slot.RecurrenceType == model.RecurrenceBiweekly
	if weekly && slot.DayOfWeek == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "DayOfWeek",
				Message: "day_of_week is required for weekly and biweekly slots",
			},
		}
	}

	return nil
}

func (v *TimeSlotValidator) validateCustomTimes(customTimes map[model.Weekday][]model.TimeSegment) ValidationErrors {
	for day, segments := range customTimes {
		if !day.Valid() {
			return ValidationErrors{
				ValidationError{
					Field:   "CustomTimes",
					Message: fmt.Sprintf("%q is not a valid weekday", day),
				},
			}
		}

		for _, seg := range segments {
			if err := validateWindow(seg.StartTime, seg.EndTime, "CustomTimes"); err != nil {
				return ValidationErrors{*err}
			}
		}

		if overlapping(segments) {
			return ValidationErrors{
				ValidationError{
					Field:   "CustomTimes",
					Message: fmt.Sprintf("segments on %s overlap", day),
				},
			}
		}
	}
	return nil
}

func validateWindow(start, end, field string) *ValidationError {
	duration, err := model.ClockRangeMinutes(start, end)
	if err != nil {
		return &ValidationError{
			Field:   field,
			Message: "end_time must be after start_time",
		}
	}
	if duration < minSegmentMinutes {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("window must be at least %d minutes", minSegmentMinutes),
		}
	}
	if duration > maxSegmentMinutes {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("window must be at most %d minutes", maxSegmentMinutes),
		}
	}
	return nil
}

func overlapping(segments []model.TimeSegment) bool {
	if len(segments) < 2 {
		return false
	}
	sorted := make([]model.TimeSegment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartTime < sorted[i-1].EndTime {
			return true
		}
	}
	return false
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "weekday":
			message = fmt.Sprintf("%s must be a lowercase weekday name", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a YYYY-MM-DD date", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
