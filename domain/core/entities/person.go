package entities

import (
	"strings"
	"time"

	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
	pkgerrors "schoolride-backend/pkg/errors"
)

// PersonStatus represents the state of a person record
type PersonStatus string

const (
	StatusActive   PersonStatus = "active"
	StatusArchived PersonStatus = "archived"
)

// PickupAddress is a labelled address attached to a person or student,
// optionally geocoded and bounded by a geofence
type PickupAddress struct {
	Label       string
	Address     valueobjects.Address
	Location    *valueobjects.GeoLocation
	Geofence    *valueobjects.Geofence
	AMPreferred bool
	PMPreferred bool
}

// Person is a registry record for a guardian, driver or other contact
// This is a rich domain model with encapsulated business logic
type Person struct {
	// Private fields ensure encapsulation
	id        valueobjects.PersonID
	firstName string
	lastName  string
	gender    valueobjects.Gender
	birthdate time.Time
	email     string
	phone     *valueobjects.Phone
	addresses []PickupAddress
	status    PersonStatus
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// PersonParams carries the fields needed to construct a Person
type PersonParams struct {
	ID        string // optional; generated when empty
	FirstName string
	LastName  string
	Gender    valueobjects.Gender
	Birthdate time.Time
	Email     string
	Phone     *valueobjects.Phone
	Addresses []PickupAddress
}

// NewPerson creates a new person with full business rule validation
func NewPerson(p PersonParams) (*Person, error) {
	if strings.TrimSpace(p.FirstName) == "" {
		return nil, pkgerrors.NewValidationError("first name cannot be empty")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return nil, pkgerrors.NewValidationError("last name cannot be empty")
	}
	if !p.Gender.IsValid() {
		return nil, pkgerrors.NewValidationError("gender must be one of male, female, other")
	}
	if p.Birthdate.IsZero() {
		return nil, pkgerrors.NewValidationError("birthdate is required")
	}
	if p.Birthdate.After(time.Now()) {
		return nil, pkgerrors.NewValidationError("birthdate cannot be in the future")
	}
	if err := validateAddressLabels(p.Addresses); err != nil {
		return nil, err
	}

	id := valueobjects.NewPersonID()
	if p.ID != "" {
		parsed, err := valueobjects.NewPersonIDFromString(p.ID)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		id = parsed
	}

	addresses := p.Addresses
	if addresses == nil {
		addresses = []PickupAddress{}
	}

	now := time.Now()
	person := &Person{
		id:        id,
		firstName: strings.TrimSpace(p.FirstName),
		lastName:  strings.TrimSpace(p.LastName),
		gender:    p.Gender,
		birthdate: p.Birthdate,
		email:     strings.TrimSpace(p.Email),
		phone:     p.Phone,
		addresses: addresses,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	person.addEvent(events.NewPersonCreated(person.id.String(), person.firstName, person.lastName, now))

	return person, nil
}

// ReconstructPerson reconstructs a person from repository data with preserved timestamps
func ReconstructPerson(
	id valueobjects.PersonID,
	firstName, lastName string,
	gender valueobjects.Gender,
	birthdate time.Time,
	email string,
	phone *valueobjects.Phone,
	addresses []PickupAddress,
	status PersonStatus,
	createdAt, updatedAt time.Time,
	version int,
) (*Person, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("person ID cannot be empty")
	}
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.NewValidationError("person name cannot be empty")
	}

	if addresses == nil {
		addresses = []PickupAddress{}
	}
	if version < 1 {
		version = 1
	}

	return &Person{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		gender:    gender,
		birthdate: birthdate,
		email:     email,
		phone:     phone,
		addresses: addresses,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the person's unique identifier
func (p *Person) ID() valueobjects.PersonID {
	return p.id
}

// FirstName returns the first name
func (p *Person) FirstName() string {
	return p.firstName
}

// LastName returns the last name
func (p *Person) LastName() string {
	return p.lastName
}

// Gender returns the gender
func (p *Person) Gender() valueobjects.Gender {
	return p.gender
}

// Birthdate returns the date of birth
func (p *Person) Birthdate() time.Time {
	return p.birthdate
}

// Email returns the email address, if any
func (p *Person) Email() string {
	return p.email
}

// Phone returns the phone number, if any
func (p *Person) Phone() *valueobjects.Phone {
	return p.phone
}

// Status returns the record status
func (p *Person) Status() PersonStatus {
	return p.status
}

// Version returns the record version for optimistic concurrency
func (p *Person) Version() int {
	return p.version
}

// CreatedAt returns when the record was created
func (p *Person) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the record was last updated
func (p *Person) UpdatedAt() time.Time {
	return p.updatedAt
}

// Addresses returns all pickup addresses
func (p *Person) Addresses() []PickupAddress {
	// Return a copy to maintain encapsulation
	addresses := make([]PickupAddress, len(p.addresses))
	copy(addresses, p.addresses)
	return addresses
}

// Rename updates the person's name
func (p *Person) Rename(firstName, lastName string) error {
	if p.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived person")
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return pkgerrors.NewValidationError("name cannot be empty")
	}

	p.firstName = strings.TrimSpace(firstName)
	p.lastName = strings.TrimSpace(lastName)
	p.touch()

	return nil
}

// UpdateContact updates the person's contact details
func (p *Person) UpdateContact(email string, phone *valueobjects.Phone) error {
	if p.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived person")
	}

	p.email = strings.TrimSpace(email)
	p.phone = phone
	p.touch()

	return nil
}

// UpdateGender updates the person's gender
func (p *Person) UpdateGender(gender valueobjects.Gender) error {
	if p.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived person")
	}
	if !gender.IsValid() {
		return pkgerrors.NewValidationError("gender must be one of male, female, other")
	}

	p.gender = gender
	p.touch()

	return nil
}

// UpdateBirthdate updates the person's date of birth
func (p *Person) UpdateBirthdate(birthdate time.Time) error {
	if p.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived person")
	}
	if birthdate.IsZero() || birthdate.After(time.Now()) {
		return pkgerrors.NewValidationError("birthdate must be in the past")
	}

	p.birthdate = birthdate
	p.touch()

	return nil
}

// SetAddresses replaces all pickup addresses, enforcing unique labels
func (p *Person) SetAddresses(addresses []PickupAddress) error {
	if p.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived person")
	}
	if err := validateAddressLabels(addresses); err != nil {
		return err
	}

	p.addresses = addresses
	p.touch()

	return nil
}

// Archive moves the record to archived status
func (p *Person) Archive() error {
	if p.status == StatusArchived {
		return nil // Already archived
	}

	p.status = StatusArchived
	p.touch()

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Person) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Person) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

// MarkUpdated records an update event for the current version.
// Called by command handlers after a successful mutation batch.
func (p *Person) MarkUpdated() {
	p.addEvent(events.NewPersonUpdated(p.id.String(), p.version, p.updatedAt))
}

// touch bumps the version and update timestamp
func (p *Person) touch() {
	p.updatedAt = time.Now()
	p.version++
}

// addEvent adds a domain event to the uncommitted list
func (p *Person) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

// validateAddressLabels enforces non-empty, unique labels and valid entries
func validateAddressLabels(addresses []PickupAddress) error {
	seen := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		label := strings.TrimSpace(addr.Label)
		if label == "" {
			return pkgerrors.NewValidationError("address label cannot be empty")
		}
		if seen[strings.ToLower(label)] {
			return pkgerrors.NewValidationError("duplicate address label: " + label)
		}
		seen[strings.ToLower(label)] = true

		if addr.Address.IsZero() {
			return pkgerrors.NewValidationError("address " + label + " is missing its postal address")
		}
	}
	return nil
}
