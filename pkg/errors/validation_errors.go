package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field-level failures so callers see every
// problem in one response instead of the first one found
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationErrors creates an empty collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a failure for a field
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any failure was recorded
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// AsAppError converts the collection into a single validation AppError
func (v *ValidationErrors) AsAppError() *AppError {
	details := make(map[string]interface{}, len(v.Errors))
	for _, e := range v.Errors {
		details[e.Field] = e.Message
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    v.Error(),
		Details:    details,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}
