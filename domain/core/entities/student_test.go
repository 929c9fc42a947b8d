package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
)

func validStudentParams() StudentParams {
	return StudentParams{
		SchoolID:  "school-1",
		FirstName: "Asha",
		LastName:  "Rao",
		Gender:    valueobjects.GenderFemale,
		Grade:     valueobjects.Grade5,
		Birthdate: time.Date(2015, 6, 12, 0, 0, 0, 0, time.UTC),
		Age:       10,
		Parents: []Parent{
			{FirstName: "Priya", LastName: "Rao", Relation: "mother"},
		},
	}
}

func TestNewStudent(t *testing.T) {
	student, err := NewStudent(validStudentParams())
	require.NoError(t, err)

	assert.False(t, student.ID().IsZero())
	assert.Equal(t, "school-1", student.SchoolID())
	assert.Equal(t, "Asha", student.FirstName())
	assert.Equal(t, StatusActive, student.Status())
	assert.Equal(t, 1, student.Version())
	assert.Len(t, student.GetUncommittedEvents(), 1)
}

func TestNewStudentWithProvidedID(t *testing.T) {
	p := validStudentParams()
	p.ID = "6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f"

	student, err := NewStudent(p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, student.ID().String())

	p.ID = "garbage"
	_, err = NewStudent(p)
	assert.Error(t, err)
}

func TestNewStudentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StudentParams)
	}{
		{"empty school", func(p *StudentParams) { p.SchoolID = " " }},
		{"empty first name", func(p *StudentParams) { p.FirstName = "" }},
		{"empty last name", func(p *StudentParams) { p.LastName = "" }},
		{"invalid gender", func(p *StudentParams) { p.Gender = "robot" }},
		{"invalid grade", func(p *StudentParams) { p.Grade = "13" }},
		{"age below minimum", func(p *StudentParams) { p.Age = 2 }},
		{"age above maximum", func(p *StudentParams) { p.Age = 21 }},
		{"zero birthdate", func(p *StudentParams) { p.Birthdate = time.Time{} }},
		{"future birthdate", func(p *StudentParams) { p.Birthdate = time.Now().Add(24 * time.Hour) }},
		{"no parents", func(p *StudentParams) { p.Parents = nil }},
		{"parent without name", func(p *StudentParams) { p.Parents = []Parent{{FirstName: "", LastName: "Rao"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validStudentParams()
			tt.mutate(&p)

			_, err := NewStudent(p)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestNewStudentRejectsDuplicateAddressLabels(t *testing.T) {
	addr, err := valueobjects.NewAddress(valueobjects.AddressParams{
		Street: "1st Main", City: "Bengaluru", State: "Karnataka", Zip: "560001", Country: "India",
	})
	require.NoError(t, err)

	p := validStudentParams()
	p.Addresses = []PickupAddress{
		{Label: "home", Address: addr},
		{Label: "home", Address: addr},
	}

	_, err = NewStudent(p)
	assert.Error(t, err)
}

func TestStudentMutatorsBumpVersion(t *testing.T) {
	student, err := NewStudent(validStudentParams())
	require.NoError(t, err)

	require.NoError(t, student.Rename("Asha", "Iyer"))
	assert.Equal(t, 2, student.Version())

	require.NoError(t, student.Promote(valueobjects.Grade6))
	assert.Equal(t, 3, student.Version())
	assert.Equal(t, valueobjects.Grade6, student.Grade())

	require.NoError(t, student.UpdateAge(11))
	assert.Equal(t, 11, student.Age())

	require.NoError(t, student.UpdateGender(valueobjects.GenderOther))
	assert.Equal(t, valueobjects.GenderOther, student.Gender())
}

func TestStudentMutatorValidation(t *testing.T) {
	student, err := NewStudent(validStudentParams())
	require.NoError(t, err)

	assert.Error(t, student.Rename("", "Iyer"))
	assert.Error(t, student.Promote("13"))
	assert.Error(t, student.UpdateAge(MaxStudentAge+1))
	assert.Error(t, student.UpdateGender("robot"))
	assert.Error(t, student.UpdateBirthdate(time.Now().Add(time.Hour)))
	assert.Error(t, student.SetParents(nil))
	assert.Error(t, student.SetSpecialNeeds(SpecialNeeds{HasSpecialNeeds: true}))
}

func TestArchivedStudentRejectsUpdates(t *testing.T) {
	student, err := NewStudent(validStudentParams())
	require.NoError(t, err)

	require.NoError(t, student.Archive())
	assert.Equal(t, StatusArchived, student.Status())

	assert.Error(t, student.Rename("New", "Name"))
	assert.Error(t, student.Promote(valueobjects.Grade7))
	assert.Error(t, student.UpdateAge(12))
	assert.Error(t, student.UpdateContact("a@b.com", nil))
	assert.Error(t, student.SetNotes(Notes{SchoolNotes: "x"}))

	// Archiving twice is a no-op
	version := student.Version()
	require.NoError(t, student.Archive())
	assert.Equal(t, version, student.Version())
}

func TestReconstructStudentPreservesState(t *testing.T) {
	id := valueobjects.NewPersonID()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	student, err := ReconstructStudent(id, validStudentParams(), StatusArchived, created, updated, 7)
	require.NoError(t, err)

	assert.True(t, id.Equals(student.ID()))
	assert.Equal(t, StatusArchived, student.Status())
	assert.Equal(t, created, student.CreatedAt())
	assert.Equal(t, updated, student.UpdatedAt())
	assert.Equal(t, 7, student.Version())
	assert.Empty(t, student.GetUncommittedEvents())
}
