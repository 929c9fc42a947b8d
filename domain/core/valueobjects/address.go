package valueobjects

import (
	"errors"
	"strings"
)

// Address is a postal address. House number, state code, postal code and
// country code are optional; the rest is required.
type Address struct {
	houseNumber string
	street      string
	city        string
	state       string
	stateCode   string
	zip         string
	country     string
	countryCode string
}

// AddressParams carries the raw fields for constructing an Address
type AddressParams struct {
	HouseNumber string
	Street      string
	City        string
	State       string
	StateCode   string
	Zip         string
	Country     string
	CountryCode string
}

// NewAddress validates required fields and returns an Address
func NewAddress(p AddressParams) (Address, error) {
	if strings.TrimSpace(p.Street) == "" {
		return Address{}, errors.New("street cannot be empty")
	}
	if strings.TrimSpace(p.City) == "" {
		return Address{}, errors.New("city cannot be empty")
	}
	if strings.TrimSpace(p.State) == "" {
		return Address{}, errors.New("state cannot be empty")
	}
	if strings.TrimSpace(p.Zip) == "" {
		return Address{}, errors.New("zip cannot be empty")
	}
	if strings.TrimSpace(p.Country) == "" {
		return Address{}, errors.New("country cannot be empty")
	}

	return Address{
		houseNumber: strings.TrimSpace(p.HouseNumber),
		street:      strings.TrimSpace(p.Street),
		city:        strings.TrimSpace(p.City),
		state:       strings.TrimSpace(p.State),
		stateCode:   strings.TrimSpace(p.StateCode),
		zip:         strings.TrimSpace(p.Zip),
		country:     strings.TrimSpace(p.Country),
		countryCode: strings.TrimSpace(p.CountryCode),
	}, nil
}

// HouseNumber returns the house number, if any
func (a Address) HouseNumber() string { return a.houseNumber }

// Street returns the street
func (a Address) Street() string { return a.street }

// City returns the city
func (a Address) City() string { return a.city }

// State returns the state or region
func (a Address) State() string { return a.state }

// StateCode returns the state code, if any
func (a Address) StateCode() string { return a.stateCode }

// Zip returns the zip code
func (a Address) Zip() string { return a.zip }

// Country returns the country
func (a Address) Country() string { return a.country }

// CountryCode returns the country code, if any
func (a Address) CountryCode() string { return a.countryCode }

// IsZero checks if the Address is the zero value
func (a Address) IsZero() bool {
	return a.street == ""
}

// Equals checks if two Addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

// FreeForm renders the address as a single geocodable line
func (a Address) FreeForm() string {
	parts := []string{}
	if a.houseNumber != "" {
		parts = append(parts, a.houseNumber)
	}
	parts = append(parts, a.street, a.city, a.state, a.zip, a.country)
	return strings.Join(parts, ", ")
}
