package valueobjects

import (
	"errors"
	"strings"
)

// Phone is a phone number with its country dialing code
type Phone struct {
	number      string
	countryCode string
}

// NewPhone validates and returns a Phone
func NewPhone(number, countryCode string) (Phone, error) {
	number = strings.TrimSpace(number)
	countryCode = strings.TrimSpace(countryCode)

	if number == "" {
		return Phone{}, errors.New("phone number cannot be empty")
	}
	if countryCode == "" {
		return Phone{}, errors.New("phone country code cannot be empty")
	}
	for _, r := range number {
		if (r < '0' || r > '9') && r != '-' && r != ' ' {
			return Phone{}, errors.New("phone number contains invalid characters")
		}
	}
	return Phone{number: number, countryCode: countryCode}, nil
}

// Number returns the subscriber number
func (p Phone) Number() string {
	return p.number
}

// CountryCode returns the country dialing code
func (p Phone) CountryCode() string {
	return p.countryCode
}

// IsZero checks if the Phone is the zero value
func (p Phone) IsZero() bool {
	return p.number == ""
}

// Equals checks if two Phones are equal
func (p Phone) Equals(other Phone) bool {
	return p.number == other.number && p.countryCode == other.countryCode
}
