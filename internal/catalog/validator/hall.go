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

type HallValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHallValidator(log *logger.Logger) *HallValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		log.Fatal("Failed to register 'clock' validator", "error", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}

	log.Info("Hall validator initialized successfully")

	return &HallValidator{
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

func (v *HallValidator) Validate(hall *model.Hall) error {
	if err := v.validate.Struct(hall); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if hall.OpeningTime != "" && hall.ClosingTime != "" && hall.ClosingTime <= hall.OpeningTime {
		return ValidationErrors{
			ValidationError{
				Field:   "ClosingTime",
				Message: "closing_time must be after opening_time",
			},
		}
	}

	if expected := courtCountFor(hall.HallType); expected > 0 && hall.CourtCount != expected {
		return ValidationErrors{
			ValidationError{
				Field:   "CourtCount",
				Message: fmt.Sprintf("court_count must be %d for a %s hall", expected, hall.HallType),
			},
		}
	}

	return nil
}

func (v *HallValidator) ValidateCourt(court *model.Court) error {
	if err := v.validate.Struct(court); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// courtCountFor maps the fixed hall types to their court counts. The
// "multi" type carries an explicit count and is not constrained here.
func courtCountFor(hallType string) int {
	switch hallType {
	case model.HallTypeSingle:
		return 1
	case model.HallTypeDouble:
		return 2
	case model.HallTypeTriple:
		return 3
	default:
		return 0
	}
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
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +972501234567)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM time", err.Field())
		case "weekday":
			message = fmt.Sprintf("%s must be a lowercase weekday name", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
