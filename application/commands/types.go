package commands

import (
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
)

// PhoneInput is the wire shape of a phone number
type PhoneInput struct {
	Number      string `json:"number" validate:"required"`
	CountryCode string `json:"country_code,omitempty"`
}

// AddressInput is the wire shape of a postal address
type AddressInput struct {
	HouseNumber string `json:"house_number,omitempty"`
	Street      string `json:"street" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	StateCode   string `json:"state_code,omitempty"`
	Zip         string `json:"zip" validate:"required"`
	Country     string `json:"country" validate:"required"`
	CountryCode string `json:"country_code,omitempty"`
}

// LocationInput is the wire shape of a coordinate pair
type LocationInput struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// GeofenceInput is the wire shape of a bounding box
type GeofenceInput struct {
	SouthWest LocationInput `json:"south_west"`
	NorthEast LocationInput `json:"north_east"`
}

// PickupAddressInput is the wire shape of a labelled pickup address
type PickupAddressInput struct {
	Label       string         `json:"label" validate:"required"`
	Address     AddressInput   `json:"address"`
	Location    *LocationInput `json:"location,omitempty"`
	Geofence    *GeofenceInput `json:"geofence,omitempty"`
	AMPreferred bool           `json:"am_preferred"`
	PMPreferred bool           `json:"pm_preferred"`
}

// ParentInput is the wire shape of a parent or guardian
type ParentInput struct {
	ParentID  string      `json:"parent_id,omitempty"`
	FirstName string      `json:"first_name" validate:"required"`
	LastName  string      `json:"last_name" validate:"required"`
	Relation  string      `json:"relation,omitempty"`
	Email     string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *PhoneInput `json:"phone,omitempty"`
}

// SpecialNeedsInput is the wire shape of the special needs record
type SpecialNeedsInput struct {
	HasSpecialNeeds  bool   `json:"has_special_needs"`
	SpecialNeedsType string `json:"special_needs_type,omitempty"`
}

// NotesInput is the wire shape of staff and driver notes
type NotesInput struct {
	SchoolNotes string `json:"school_notes,omitempty"`
	DriverNotes string `json:"driver_notes,omitempty"`
}

// toPhone converts an optional phone input to its value object
func toPhone(input *PhoneInput) (*valueobjects.Phone, error) {
	if input == nil {
		return nil, nil
	}

	phone, err := valueobjects.NewPhone(input.Number, input.CountryCode)
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

// toPickupAddresses converts pickup address inputs to domain pickup addresses
func toPickupAddresses(inputs []PickupAddressInput) ([]entities.PickupAddress, error) {
	if inputs == nil {
		return nil, nil
	}

	addresses := make([]entities.PickupAddress, 0, len(inputs))
	for _, input := range inputs {
		address, err := valueobjects.NewAddress(valueobjects.AddressParams{
			HouseNumber: input.Address.HouseNumber,
			Street:      input.Address.Street,
			City:        input.Address.City,
			State:       input.Address.State,
			StateCode:   input.Address.StateCode,
			Zip:         input.Address.Zip,
			Country:     input.Address.Country,
			CountryCode: input.Address.CountryCode,
		})
		if err != nil {
			return nil, err
		}

		pickup := entities.PickupAddress{
			Label:       input.Label,
			Address:     address,
			AMPreferred: input.AMPreferred,
			PMPreferred: input.PMPreferred,
		}

		if input.Location != nil {
			location, err := valueobjects.NewGeoLocation(input.Location.Latitude, input.Location.Longitude)
			if err != nil {
				return nil, err
			}
			pickup.Location = &location
		}

		if input.Geofence != nil {
			southWest, err := valueobjects.NewGeoLocation(input.Geofence.SouthWest.Latitude, input.Geofence.SouthWest.Longitude)
			if err != nil {
				return nil, err
			}
			northEast, err := valueobjects.NewGeoLocation(input.Geofence.NorthEast.Latitude, input.Geofence.NorthEast.Longitude)
			if err != nil {
				return nil, err
			}
			geofence, err := valueobjects.NewGeofence(southWest, northEast)
			if err != nil {
				return nil, err
			}
			pickup.Geofence = &geofence
		}

		addresses = append(addresses, pickup)
	}

	return addresses, nil
}

// toParents converts parent inputs to domain parents
func toParents(inputs []ParentInput) ([]entities.Parent, error) {
	if inputs == nil {
		return nil, nil
	}

	parents := make([]entities.Parent, 0, len(inputs))
	for _, input := range inputs {
		phone, err := toPhone(input.Phone)
		if err != nil {
			return nil, err
		}

		parents = append(parents, entities.Parent{
			ParentID:  input.ParentID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Relation:  input.Relation,
			Email:     input.Email,
			Phone:     phone,
		})
	}

	return parents, nil
}
