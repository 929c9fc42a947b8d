package mongodb

import (
	"time"

	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
)

// Document shapes stored in MongoDB. The entity ID is stored as the
// document _id, as a UUID string.

type phoneDoc struct {
	Number      string `bson:"number"`
	CountryCode string `bson:"country_code,omitempty"`
}

type addressDoc struct {
	HouseNumber string `bson:"house_number,omitempty"`
	Street      string `bson:"street"`
	City        string `bson:"city"`
	State       string `bson:"state"`
	StateCode   string `bson:"state_code,omitempty"`
	Zip         string `bson:"zip"`
	Country     string `bson:"country"`
	CountryCode string `bson:"country_code,omitempty"`
}

type locationDoc struct {
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

type geofenceDoc struct {
	SouthWest locationDoc `bson:"south_west"`
	NorthEast locationDoc `bson:"north_east"`
}

type pickupAddressDoc struct {
	Label       string       `bson:"label"`
	Address     addressDoc   `bson:"address"`
	Location    *locationDoc `bson:"location,omitempty"`
	Geofence    *geofenceDoc `bson:"geofence,omitempty"`
	AMPreferred bool         `bson:"am_preferred"`
	PMPreferred bool         `bson:"pm_preferred"`
}

type parentDoc struct {
	ParentID  string    `bson:"parent_id,omitempty"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Relation  string    `bson:"relation,omitempty"`
	Email     string    `bson:"email,omitempty"`
	Phone     *phoneDoc `bson:"phone,omitempty"`
}

type specialNeedsDoc struct {
	HasSpecialNeeds  bool   `bson:"has_special_needs"`
	SpecialNeedsType string `bson:"special_needs_type,omitempty"`
}

type notesDoc struct {
	SchoolNotes string `bson:"school_notes,omitempty"`
	DriverNotes string `bson:"driver_notes,omitempty"`
}

type studentDoc struct {
	ID           string             `bson:"_id"`
	SchoolID     string             `bson:"school_id"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Gender       string             `bson:"gender"`
	Grade        string             `bson:"grade"`
	Birthdate    time.Time          `bson:"birthdate"`
	Age          int                `bson:"age"`
	Email        string             `bson:"email,omitempty"`
	Phone        *phoneDoc          `bson:"phone,omitempty"`
	Addresses    []pickupAddressDoc `bson:"addresses"`
	Parents      []parentDoc        `bson:"parents"`
	SpecialNeeds specialNeedsDoc    `bson:"special_needs"`
	Notes        notesDoc           `bson:"notes"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
	Version      int                `bson:"version"`
}

type personDoc struct {
	ID        string             `bson:"_id"`
	FirstName string             `bson:"first_name"`
	LastName  string             `bson:"last_name"`
	Gender    string             `bson:"gender"`
	Birthdate time.Time          `bson:"birthdate"`
	Email     string             `bson:"email,omitempty"`
	Phone     *phoneDoc          `bson:"phone,omitempty"`
	Addresses []pickupAddressDoc `bson:"addresses"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	Version   int                `bson:"version"`
}

func newPhoneDoc(phone *valueobjects.Phone) *phoneDoc {
	if phone == nil {
		return nil
	}
	return &phoneDoc{Number: phone.Number(), CountryCode: phone.CountryCode()}
}

func (d *phoneDoc) toValueObject() (*valueobjects.Phone, error) {
	if d == nil {
		return nil, nil
	}
	phone, err := valueobjects.NewPhone(d.Number, d.CountryCode)
	if err != nil {
		return nil, err
	}
	return &phone, nil
}

func newPickupAddressDocs(addresses []entities.PickupAddress) []pickupAddressDoc {
	docs := make([]pickupAddressDoc, 0, len(addresses))
	for _, addr := range addresses {
		doc := pickupAddressDoc{
			Label: addr.Label,
			Address: addressDoc{
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
			doc.Location = &locationDoc{
				Latitude:  addr.Location.Latitude(),
				Longitude: addr.Location.Longitude(),
			}
		}
		if addr.Geofence != nil {
			doc.Geofence = &geofenceDoc{
				SouthWest: locationDoc{
					Latitude:  addr.Geofence.SouthWest().Latitude(),
					Longitude: addr.Geofence.SouthWest().Longitude(),
				},
				NorthEast: locationDoc{
					Latitude:  addr.Geofence.NorthEast().Latitude(),
					Longitude: addr.Geofence.NorthEast().Longitude(),
				},
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

func toPickupAddresses(docs []pickupAddressDoc) ([]entities.PickupAddress, error) {
	addresses := make([]entities.PickupAddress, 0, len(docs))
	for _, doc := range docs {
		address, err := valueobjects.NewAddress(valueobjects.AddressParams{
			HouseNumber: doc.Address.HouseNumber,
			Street:      doc.Address.Street,
			City:        doc.Address.City,
			State:       doc.Address.State,
			StateCode:   doc.Address.StateCode,
			Zip:         doc.Address.Zip,
			Country:     doc.Address.Country,
			CountryCode: doc.Address.CountryCode,
		})
		if err != nil {
			return nil, err
		}

		pickup := entities.PickupAddress{
			Label:       doc.Label,
			Address:     address,
			AMPreferred: doc.AMPreferred,
			PMPreferred: doc.PMPreferred,
		}

		if doc.Location != nil {
			location, err := valueobjects.NewGeoLocation(doc.Location.Latitude, doc.Location.Longitude)
			if err != nil {
				return nil, err
			}
			pickup.Location = &location
		}
		if doc.Geofence != nil {
			southWest, err := valueobjects.NewGeoLocation(doc.Geofence.SouthWest.Latitude, doc.Geofence.SouthWest.Longitude)
			if err != nil {
				return nil, err
			}
			northEast, err := valueobjects.NewGeoLocation(doc.Geofence.NorthEast.Latitude, doc.Geofence.NorthEast.Longitude)
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

// newStudentDoc maps a student entity to its stored document
func newStudentDoc(student *entities.Student) studentDoc {
	parents := make([]parentDoc, 0, len(student.Parents()))
	for _, parent := range student.Parents() {
		parents = append(parents, parentDoc{
			ParentID:  parent.ParentID,
			FirstName: parent.FirstName,
			LastName:  parent.LastName,
			Relation:  parent.Relation,
			Email:     parent.Email,
			Phone:     newPhoneDoc(parent.Phone),
		})
	}

	return studentDoc{
		ID:        student.ID().String(),
		SchoolID:  student.SchoolID(),
		FirstName: student.FirstName(),
		LastName:  student.LastName(),
		Gender:    student.Gender().String(),
		Grade:     student.Grade().String(),
		Birthdate: student.Birthdate(),
		Age:       student.Age(),
		Email:     student.Email(),
		Phone:     newPhoneDoc(student.Phone()),
		Addresses: newPickupAddressDocs(student.Addresses()),
		Parents:   parents,
		SpecialNeeds: specialNeedsDoc{
			HasSpecialNeeds:  student.SpecialNeeds().HasSpecialNeeds,
			SpecialNeedsType: student.SpecialNeeds().SpecialNeedsType,
		},
		Notes: notesDoc{
			SchoolNotes: student.Notes().SchoolNotes,
			DriverNotes: student.Notes().DriverNotes,
		},
		Status:    string(student.Status()),
		CreatedAt: student.CreatedAt(),
		UpdatedAt: student.UpdatedAt(),
		Version:   student.Version(),
	}
}

// toEntity reconstructs a student entity from its stored document
func (d studentDoc) toEntity() (*entities.Student, error) {
	id, err := valueobjects.NewPersonIDFromString(d.ID)
	if err != nil {
		return nil, err
	}

	phone, err := d.Phone.toValueObject()
	if err != nil {
		return nil, err
	}

	addresses, err := toPickupAddresses(d.Addresses)
	if err != nil {
		return nil, err
	}

	parents := make([]entities.Parent, 0, len(d.Parents))
	for _, doc := range d.Parents {
		parentPhone, err := doc.Phone.toValueObject()
		if err != nil {
			return nil, err
		}
		parents = append(parents, entities.Parent{
			ParentID:  doc.ParentID,
			FirstName: doc.FirstName,
			LastName:  doc.LastName,
			Relation:  doc.Relation,
			Email:     doc.Email,
			Phone:     parentPhone,
		})
	}

	return entities.ReconstructStudent(
		id,
		entities.StudentParams{
			SchoolID:  d.SchoolID,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Gender:    valueobjects.Gender(d.Gender),
			Grade:     valueobjects.Grade(d.Grade),
			Birthdate: d.Birthdate,
			Age:       d.Age,
			Email:     d.Email,
			Phone:     phone,
			Addresses: addresses,
			Parents:   parents,
			SpecialNeeds: entities.SpecialNeeds{
				HasSpecialNeeds:  d.SpecialNeeds.HasSpecialNeeds,
				SpecialNeedsType: d.SpecialNeeds.SpecialNeedsType,
			},
			Notes: entities.Notes{
				SchoolNotes: d.Notes.SchoolNotes,
				DriverNotes: d.Notes.DriverNotes,
			},
		},
		entities.PersonStatus(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
		d.Version,
	)
}

// newPersonDoc maps a person entity to its stored document
func newPersonDoc(person *entities.Person) personDoc {
	return personDoc{
		ID:        person.ID().String(),
		FirstName: person.FirstName(),
		LastName:  person.LastName(),
		Gender:    person.Gender().String(),
		Birthdate: person.Birthdate(),
		Email:     person.Email(),
		Phone:     newPhoneDoc(person.Phone()),
		Addresses: newPickupAddressDocs(person.Addresses()),
		Status:    string(person.Status()),
		CreatedAt: person.CreatedAt(),
		UpdatedAt: person.UpdatedAt(),
		Version:   person.Version(),
	}
}

// toEntity reconstructs a person entity from its stored document
func (d personDoc) toEntity() (*entities.Person, error) {
	id, err := valueobjects.NewPersonIDFromString(d.ID)
	if err != nil {
		return nil, err
	}

	phone, err := d.Phone.toValueObject()
	if err != nil {
		return nil, err
	}

	addresses, err := toPickupAddresses(d.Addresses)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructPerson(
		id,
		d.FirstName,
		d.LastName,
		valueobjects.Gender(d.Gender),
		d.Birthdate,
		d.Email,
		phone,
		addresses,
		entities.PersonStatus(d.Status),
		d.CreatedAt,
		d.UpdatedAt,
		d.Version,
	)
}
