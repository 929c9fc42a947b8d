package valueobjects

import "fmt"

// Gender is an enumerated value object
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// NewGender validates and returns a Gender
func NewGender(s string) (Gender, error) {
	g := Gender(s)
	if !g.IsValid() {
		return "", fmt.Errorf("gender must be one of male, female, other: got %q", s)
	}
	return g, nil
}

// IsValid reports whether the value is one of the enumerated genders
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// String returns the wire representation
func (g Gender) String() string {
	return string(g)
}
