package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// PersonID is a value object representing a unique person identifier.
// Students share the same identifier space since every student is a person.
type PersonID struct {
	value string
}

// NewPersonID creates a new random PersonID
func NewPersonID() PersonID {
	return PersonID{value: uuid.New().String()}
}

// NewPersonIDFromString creates a PersonID from an existing string
func NewPersonIDFromString(id string) (PersonID, error) {
	if id == "" {
		return PersonID{}, errors.New("person ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return PersonID{}, errors.New("person ID must be a valid UUID")
	}
	return PersonID{value: id}, nil
}

// String returns the string representation of the PersonID
func (id PersonID) String() string {
	return id.value
}

// Equals checks if two PersonIDs are equal
func (id PersonID) Equals(other PersonID) bool {
	return id.value == other.value
}

// IsZero checks if the PersonID is the zero value
func (id PersonID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id PersonID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *PersonID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("PersonID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
