package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollForm struct {
	SchoolID string `validate:"required"`
	Name     string `validate:"required,min=1,max=100"`
	Gender   string `validate:"required,gender"`
	Grade    string `validate:"required,grade"`
	Email    string `validate:"omitempty,email"`
	Age      int    `validate:"min=3,max=20"`
}

func validEnrollForm() enrollForm {
	return enrollForm{
		SchoolID: "school-1",
		Name:     "Asha Rao",
		Gender:   "female",
		Grade:    "KG",
		Age:      5,
	}
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(validEnrollForm()))
}

func TestValidateStructGenderTag(t *testing.T) {
	form := validEnrollForm()
	form.Gender = "robot"

	err := ValidateStruct(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gender must be one of: male, female, other")
}

func TestValidateStructGradeTag(t *testing.T) {
	form := validEnrollForm()
	form.Grade = "13"

	err := ValidateStruct(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grade must be a valid grade")
}

func TestValidateStructJoinsFieldErrors(t *testing.T) {
	form := validEnrollForm()
	form.SchoolID = ""
	form.Age = 25

	err := ValidateStruct(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schoolid is required")
	assert.Contains(t, err.Error(), "age must be at most 20")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidateStructEmail(t *testing.T) {
	form := validEnrollForm()
	form.Email = "not-an-email"

	err := ValidateStruct(form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
}
