package queries

import (
	"time"

	"schoolride-backend/domain/core/entities"
	"schoolride-backend/pkg/utils"
)

// PhoneView is the read model of a phone number
type PhoneView struct {
	Number      string `json:"number"`
	CountryCode string `json:"country_code,omitempty"`
}

// AddressView is the read model of a postal address
type AddressView struct {
	HouseNumber string `json:"house_number,omitempty"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	StateCode   string `json:"state_code,omitempty"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code,omitempty"`
}

// LocationView is the read model of a coordinate pair
type LocationView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeofenceView is the read model of a bounding box
type GeofenceView struct {
	SouthWest LocationView `json:"south_west"`
	NorthEast LocationView `json:"north_east"`
}

// PickupAddressView is the read model of a labelled pickup address
type PickupAddressView struct {
	Label       string        `json:"label"`
	Address     AddressView   `json:"address"`
	Location    *LocationView `json:"location,omitempty"`
	Geofence    *GeofenceView `json:"geofence,omitempty"`
	AMPreferred bool          `json:"am_preferred"`
	PMPreferred bool          `json:"pm_preferred"`
}

// ParentView is the read model of a parent or guardian
type ParentView struct {
	ParentID  string     `json:"parent_id,omitempty"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Relation  string     `json:"relation,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     *PhoneView `json:"phone,omitempty"`
}

// SpecialNeedsView is the read model of the special needs record
type SpecialNeedsView struct {
	HasSpecialNeeds  bool   `json:"has_special_needs"`
	SpecialNeedsType string `json:"special_needs_type,omitempty"`
}

// NotesView is the read model of staff and driver notes
type NotesView struct {
	SchoolNotes string `json:"school_notes,omitempty"`
	DriverNotes string `json:"driver_notes,omitempty"`
}

// StudentView is the read model of a student record
type StudentView struct {
	ID           string              `json:"id"`
	SchoolID     string              `json:"school_id"`
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	Gender       string              `json:"gender"`
	Grade        string              `json:"grade"`
	Birthdate    string              `json:"birthdate"`
	Age          int                 `json:"age"`
	Email        string              `json:"email,omitempty"`
	Phone        *PhoneView          `json:"phone,omitempty"`
	Addresses    []PickupAddressView `json:"addresses"`
	Parents      []ParentView        `json:"parents"`
	SpecialNeeds SpecialNeedsView    `json:"special_needs"`
	Notes        NotesView           `json:"notes"`
	Status       string              `json:"status"`
	Version      int                 `json:"version"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// PersonView is the read model of a person record
type PersonView struct {
	ID        string              `json:"id"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
	Gender    string              `json:"gender"`
	Birthdate string              `json:"birthdate"`
	Email     string              `json:"email,omitempty"`
	Phone     *PhoneView          `json:"phone,omitempty"`
	Addresses []PickupAddressView `json:"addresses"`
	Status    string              `json:"status"`
	Version   int                 `json:"version"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

// StudentListView is a page of student records
type StudentListView struct {
	Items    []StudentView `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// PersonListView is a page of person records
type PersonListView struct {
	Items    []PersonView `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// NewStudentView maps a student entity to its read model
func NewStudentView(student *entities.Student) *StudentView {
	parents := make([]ParentView, 0, len(student.Parents()))
	for _, parent := range student.Parents() {
		view := ParentView{
			ParentID:  parent.ParentID,
			FirstName: parent.FirstName,
			LastName:  parent.LastName,
			Relation:  parent.Relation,
			Email:     parent.Email,
		}
		if parent.Phone != nil {
			view.Phone = &PhoneView{Number: parent.Phone.Number(), CountryCode: parent.Phone.CountryCode()}
		}
		parents = append(parents, view)
	}

	view := &StudentView{
		ID:        student.ID().String(),
		SchoolID:  student.SchoolID(),
		FirstName: student.FirstName(),
		LastName:  student.LastName(),
		Gender:    student.Gender().String(),
		Grade:     student.Grade().String(),
		Birthdate: utils.FormatDate(student.Birthdate()),
		Age:       student.Age(),
		Email:     student.Email(),
		Addresses: newPickupAddressViews(student.Addresses()),
		Parents:   parents,
		SpecialNeeds: SpecialNeedsView{
			HasSpecialNeeds:  student.SpecialNeeds().HasSpecialNeeds,
			SpecialNeedsType: student.SpecialNeeds().SpecialNeedsType,
		},
		Notes: NotesView{
			SchoolNotes: student.Notes().SchoolNotes,
			DriverNotes: student.Notes().DriverNotes,
		},
		Status:    string(student.Status()),
		Version:   student.Version(),
		CreatedAt: student.CreatedAt().Format(time.RFC3339),
		UpdatedAt: student.UpdatedAt().Format(time.RFC3339),
	}

	if phone := student.Phone(); phone != nil {
		view.Phone = &PhoneView{Number: phone.Number(), CountryCode: phone.CountryCode()}
	}

	return view
}

// NewPersonView maps a person entity to its read model
func NewPersonView(person *entities.Person) *PersonView {
	view := &PersonView{
		ID:        person.ID().String(),
		FirstName: person.FirstName(),
		LastName:  person.LastName(),
		Gender:    person.Gender().String(),
		Birthdate: utils.FormatDate(person.Birthdate()),
		Email:     person.Email(),
		Addresses: newPickupAddressViews(person.Addresses()),
		Status:    string(person.Status()),
		Version:   person.Version(),
		CreatedAt: person.CreatedAt().Format(time.RFC3339),
		UpdatedAt: person.UpdatedAt().Format(time.RFC3339),
	}

	if phone := person.Phone(); phone != nil {
		view.Phone = &PhoneView{Number: phone.Number(), CountryCode: phone.CountryCode()}
	}

	return view
}

func newPickupAddressViews(addresses []entities.PickupAddress) []PickupAddressView {
	views := make([]PickupAddressView, 0, len(addresses))
	for _, addr := range addresses {
		view := PickupAddressView{
			Label: addr.Label,
			Address: AddressView{
				HouseNumber: addr.Address.HouseNumber(),
				Street:      addr.Address.Street(),
				City:        addr.Address.City(),
				State:       addr.Address.State(),
				StateCode:   addr.Address.StateCode(),
				Zip:         addr.Address.Zip(),
				Country:     addr.Address.Country(),
				CountryCode: addr.Address.CountryCode(),
			},
			AMPreferred: addr.AMPreferred,
			PMPreferred: addr.PMPreferred,
		}

		if addr.Location != nil {
			view.Location = &LocationView{
				Latitude:  addr.Location.Latitude(),
				Longitude: addr.Location.Longitude(),
			}
		}
		if addr.Geofence != nil {
			view.Geofence = &GeofenceView{
				SouthWest: LocationView{
					Latitude:  addr.Geofence.SouthWest().Latitude(),
					Longitude: addr.Geofence.SouthWest().Longitude(),
				},
				NorthEast: LocationView{
					Latitude:  addr.Geofence.NorthEast().Latitude(),
					Longitude: addr.Geofence.NorthEast().Longitude(),
				},
			}
		}

		views = append(views, view)
	}

	return views
}
