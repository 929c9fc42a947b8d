package validators

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
)

func newTestStudent(t *testing.T, mutate func(*entities.StudentParams)) *entities.Student {
	t.Helper()

	p := entities.StudentParams{
		SchoolID:  "school-1",
		FirstName: "Asha",
		LastName:  "Rao",
		Gender:    valueobjects.GenderFemale,
		Grade:     valueobjects.Grade5,
		Birthdate: time.Now().AddDate(-10, 0, 0),
		Age:       10,
		Parents: []entities.Parent{
			{FirstName: "Priya", LastName: "Rao", Relation: "mother"},
		},
	}
	if mutate != nil {
		mutate(&p)
	}

	student, err := entities.NewStudent(p)
	require.NoError(t, err)
	return student
}

func TestValidateStudentAccepts(t *testing.T) {
	v := NewStudentValidator()
	assert.NoError(t, v.ValidateStudent(newTestStudent(t, nil)))
}

func TestValidateStudentAgeDrift(t *testing.T) {
	v := NewStudentValidator()

	// Declared age within one year of the birthdate-derived age passes
	student := newTestStudent(t, func(p *entities.StudentParams) {
		p.Birthdate = time.Now().AddDate(-10, -6, 0)
		p.Age = 10
	})
	assert.NoError(t, v.ValidateStudent(student))

	// Declared age far from the birthdate fails
	student = newTestStudent(t, func(p *entities.StudentParams) {
		p.Birthdate = time.Now().AddDate(-15, 0, -10)
		p.Age = 10
	})
	err := v.ValidateStudent(student)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
}

func TestValidateAgeBounds(t *testing.T) {
	v := NewStudentValidator()

	assert.NoError(t, v.ValidateAge(3))
	assert.NoError(t, v.ValidateAge(20))
	assert.Error(t, v.ValidateAge(2))
	assert.Error(t, v.ValidateAge(21))
}

func TestValidateStudentEmail(t *testing.T) {
	v := NewStudentValidator()

	student := newTestStudent(t, func(p *entities.StudentParams) {
		p.Email = "not-an-email"
	})
	assert.Error(t, v.ValidateStudent(student))

	student = newTestStudent(t, func(p *entities.StudentParams) {
		p.Parents[0].Email = "also not an email"
	})
	assert.Error(t, v.ValidateStudent(student))
}

func TestValidateStudentGeofence(t *testing.T) {
	v := NewStudentValidator()

	addr, err := valueobjects.NewAddress(valueobjects.AddressParams{
		Street: "1st Main", City: "Bengaluru", State: "Karnataka", Zip: "560001", Country: "India",
	})
	require.NoError(t, err)

	sw, _ := valueobjects.NewGeoLocation(12.90, 77.50)
	ne, _ := valueobjects.NewGeoLocation(13.10, 77.70)
	fence, err := valueobjects.NewGeofence(sw, ne)
	require.NoError(t, err)

	inside, _ := valueobjects.NewGeoLocation(13.00, 77.60)
	outside, _ := valueobjects.NewGeoLocation(13.50, 77.60)

	student := newTestStudent(t, func(p *entities.StudentParams) {
		p.Addresses = []entities.PickupAddress{
			{Label: "home", Address: addr, Location: &inside, Geofence: &fence},
		}
	})
	assert.NoError(t, v.ValidateStudent(student))

	student = newTestStudent(t, func(p *entities.StudentParams) {
		p.Addresses = []entities.PickupAddress{
			{Label: "home", Address: addr, Location: &outside, Geofence: &fence},
		}
	})
	err = v.ValidateStudent(student)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geofence")
}

func TestValidateStudentParentLimit(t *testing.T) {
	v := NewStudentValidator()

	var parents []entities.Parent
	for i := 0; i < 5; i++ {
		parents = append(parents, entities.Parent{
			FirstName: fmt.Sprintf("Parent%d", i),
			LastName:  "Rao",
		})
	}

	student := newTestStudent(t, func(p *entities.StudentParams) {
		p.Parents = parents
	})
	err := v.ValidateStudent(student)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parents")
}
