package validators

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	domainconfig "schoolride-backend/domain/config"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/pkg/errors"
)

// StudentValidator validates student-related domain rules that span
// multiple fields and cannot be expressed on a single value object
type StudentValidator struct {
	rules        *domainconfig.DomainConfig
	emailPattern *regexp.Regexp
}

// NewStudentValidator creates a validator with the registry defaults
func NewStudentValidator() *StudentValidator {
	return NewStudentValidatorWithRules(domainconfig.DefaultDomainConfig())
}

// NewStudentValidatorWithRules creates a validator with custom rules
func NewStudentValidatorWithRules(rules *domainconfig.DomainConfig) *StudentValidator {
	return &StudentValidator{
		rules:        rules,
		emailPattern: regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	}
}

// ValidateStudent runs all cross-field checks against a student record
func (v *StudentValidator) ValidateStudent(student *entities.Student) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.validateAge(student.Age(), student.Birthdate()); err != nil {
		validationErrors.Add("age", err.Error())
	}

	if email := student.Email(); email != "" && !v.emailPattern.MatchString(email) {
		validationErrors.Add("email", "must be a valid email address")
	}

	if n := len(student.Parents()); n < v.rules.MinParentsPerStudent || n > v.rules.MaxParentsPerStudent {
		validationErrors.Add("parents", fmt.Sprintf("student must have between %d and %d parents", v.rules.MinParentsPerStudent, v.rules.MaxParentsPerStudent))
	}

	if len(student.Addresses()) > v.rules.MaxPickupAddresses {
		validationErrors.Add("addresses", fmt.Sprintf("student cannot have more than %d pickup addresses", v.rules.MaxPickupAddresses))
	}

	for _, parent := range student.Parents() {
		if parent.Email != "" && !v.emailPattern.MatchString(parent.Email) {
			validationErrors.Add("parents", fmt.Sprintf("parent %s %s has an invalid email", parent.FirstName, parent.LastName))
		}
	}

	for _, addr := range student.Addresses() {
		if err := v.validatePickupAddress(addr); err != nil {
			validationErrors.Add("addresses", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// ValidateAge checks the declared age against the registry bounds
func (v *StudentValidator) ValidateAge(age int) error {
	if age < v.rules.MinStudentAge || age > v.rules.MaxStudentAge {
		return fmt.Errorf("age must be between %d and %d", v.rules.MinStudentAge, v.rules.MaxStudentAge)
	}
	return nil
}

// validateAge checks bounds and agreement with the birthdate
func (v *StudentValidator) validateAge(age int, birthdate time.Time) error {
	if err := v.ValidateAge(age); err != nil {
		return err
	}
	if birthdate.IsZero() {
		return nil
	}

	derived := yearsSince(birthdate)
	drift := derived - age
	if drift < 0 {
		drift = -drift
	}
	if drift > v.rules.AgeDriftTolerance {
		return fmt.Errorf("declared age %d does not match birthdate (derived age %d)", age, derived)
	}
	return nil
}

// validatePickupAddress requires a geofence, when present, to contain
// the geocoded location
func (v *StudentValidator) validatePickupAddress(addr entities.PickupAddress) error {
	if strings.TrimSpace(addr.Label) == "" {
		return fmt.Errorf("pickup address label cannot be empty")
	}
	if addr.Geofence != nil && addr.Location != nil {
		if !addr.Geofence.Contains(*addr.Location) {
			return fmt.Errorf("pickup address %q location falls outside its geofence", addr.Label)
		}
	}
	return nil
}

// yearsSince computes full years elapsed since a date
func yearsSince(t time.Time) int {
	now := time.Now()
	years := now.Year() - t.Year()
	if now.YearDay() < t.YearDay() {
		years--
	}
	return years
}
