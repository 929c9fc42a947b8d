package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"schoolride-backend/domain/core/valueobjects"
)

var validate = newValidator()

// newValidator builds the shared validator with domain tags registered
func newValidator() *validator.Validate {
	v := validator.New()

	// gender accepts the Gender enum values
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return valueobjects.Gender(fl.Field().String()).IsValid()
	})

	// grade accepts the Grade enum values
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return valueobjects.Grade(fl.Field().String()).IsValid()
	})

	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var errors []string
		for _, e := range validationErrors {
			errors = append(errors, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gender":
		return fmt.Sprintf("%s must be one of: male, female, other", field)
	case "grade":
		return fmt.Sprintf("%s must be a valid grade", field)
	case "latitude":
		return fmt.Sprintf("%s must be between -90 and 90", field)
	case "longitude":
		return fmt.Sprintf("%s must be between -180 and 180", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, e.Param())
	case "dive":
		return fmt.Sprintf("%s contains invalid values", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
