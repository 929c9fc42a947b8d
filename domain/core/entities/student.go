package entities

import (
	"strings"
	"time"

	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
	pkgerrors "schoolride-backend/pkg/errors"
)

// Age bounds for registered students
const (
	MinStudentAge = 3
	MaxStudentAge = 20
)

// Parent is a parent or guardian attached to a student
type Parent struct {
	ParentID  string
	FirstName string
	LastName  string
	Relation  string
	Email     string
	Phone     *valueobjects.Phone
}

// SpecialNeeds records whether a student needs special accommodation
type SpecialNeeds struct {
	HasSpecialNeeds  bool
	SpecialNeedsType string
}

// Notes carries free-form annotations for school staff and drivers
type Notes struct {
	SchoolNotes string
	DriverNotes string
}

// Student is a registry record for an enrolled student.
// It carries the person attributes plus academic and transport data.
type Student struct {
	id           valueobjects.PersonID
	schoolID     string
	firstName    string
	lastName     string
	gender       valueobjects.Gender
	grade        valueobjects.Grade
	birthdate    time.Time
	age          int
	email        string
	phone        *valueobjects.Phone
	addresses    []PickupAddress
	parents      []Parent
	specialNeeds SpecialNeeds
	notes        Notes
	status       PersonStatus
	createdAt    time.Time
	updatedAt    time.Time
	version      int

	events []events.DomainEvent
}

// StudentParams carries the fields needed to construct a Student
type StudentParams struct {
	ID           string // optional; generated when empty
	SchoolID     string
	FirstName    string
	LastName     string
	Gender       valueobjects.Gender
	Grade        valueobjects.Grade
	Birthdate    time.Time
	Age          int
	Email        string
	Phone        *valueobjects.Phone
	Addresses    []PickupAddress
	Parents      []Parent
	SpecialNeeds SpecialNeeds
	Notes        Notes
}

// NewStudent creates a new student with full business rule validation
func NewStudent(p StudentParams) (*Student, error) {
	if strings.TrimSpace(p.SchoolID) == "" {
		return nil, pkgerrors.NewValidationError("school ID cannot be empty")
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return nil, pkgerrors.NewValidationError("first name cannot be empty")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return nil, pkgerrors.NewValidationError("last name cannot be empty")
	}
	if !p.Gender.IsValid() {
		return nil, pkgerrors.NewValidationError("gender must be one of male, female, other")
	}
	if !p.Grade.IsValid() {
		return nil, pkgerrors.NewValidationError("invalid grade: " + p.Grade.String())
	}
	if p.Age < MinStudentAge || p.Age > MaxStudentAge {
		return nil, pkgerrors.NewValidationError("age must be between 3 and 20")
	}
	if p.Birthdate.IsZero() || p.Birthdate.After(time.Now()) {
		return nil, pkgerrors.NewValidationError("birthdate must be in the past")
	}
	if len(p.Parents) == 0 {
		return nil, pkgerrors.NewValidationError("at least one parent is required")
	}
	if err := validateParents(p.Parents); err != nil {
		return nil, err
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
	student := &Student{
		id:           id,
		schoolID:     strings.TrimSpace(p.SchoolID),
		firstName:    strings.TrimSpace(p.FirstName),
		lastName:     strings.TrimSpace(p.LastName),
		gender:       p.Gender,
		grade:        p.Grade,
		birthdate:    p.Birthdate,
		age:          p.Age,
		email:        strings.TrimSpace(p.Email),
		phone:        p.Phone,
		addresses:    addresses,
		parents:      p.Parents,
		specialNeeds: p.SpecialNeeds,
		notes:        p.Notes,
		status:       StatusActive,
		createdAt:    now,
		updatedAt:    now,
		version:      1,
		events:       []events.DomainEvent{},
	}

	student.addEvent(events.NewStudentCreated(student.id.String(), student.schoolID, student.grade.String(), now))

	return student, nil
}

// ReconstructStudent reconstructs a student from repository data with preserved timestamps
func ReconstructStudent(
	id valueobjects.PersonID,
	p StudentParams,
	status PersonStatus,
	createdAt, updatedAt time.Time,
	version int,
) (*Student, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("student ID cannot be empty")
	}
	if p.SchoolID == "" {
		return nil, pkgerrors.NewValidationError("school ID cannot be empty")
	}

	addresses := p.Addresses
	if addresses == nil {
		addresses = []PickupAddress{}
	}
	parents := p.Parents
	if parents == nil {
		parents = []Parent{}
	}
	if version < 1 {
		version = 1
	}

	return &Student{
		id:           id,
		schoolID:     p.SchoolID,
		firstName:    p.FirstName,
		lastName:     p.LastName,
		gender:       p.Gender,
		grade:        p.Grade,
		birthdate:    p.Birthdate,
		age:          p.Age,
		email:        p.Email,
		phone:        p.Phone,
		addresses:    addresses,
		parents:      parents,
		specialNeeds: p.SpecialNeeds,
		notes:        p.Notes,
		status:       status,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		version:      version,
		events:       []events.DomainEvent{},
	}, nil
}

// ID returns the student's unique identifier
func (s *Student) ID() valueobjects.PersonID {
	return s.id
}

// SchoolID returns the school the student is enrolled at
func (s *Student) SchoolID() string {
	return s.schoolID
}

// FirstName returns the first name
func (s *Student) FirstName() string {
	return s.firstName
}

// LastName returns the last name
func (s *Student) LastName() string {
	return s.lastName
}

// Gender returns the gender
func (s *Student) Gender() valueobjects.Gender {
	return s.gender
}

// Grade returns the enrolled grade
func (s *Student) Grade() valueobjects.Grade {
	return s.grade
}

// Birthdate returns the date of birth
func (s *Student) Birthdate() time.Time {
	return s.birthdate
}

// Age returns the declared age
func (s *Student) Age() int {
	return s.age
}

// Email returns the email address, if any
func (s *Student) Email() string {
	return s.email
}

// Phone returns the phone number, if any
func (s *Student) Phone() *valueobjects.Phone {
	return s.phone
}

// SpecialNeeds returns the special needs record
func (s *Student) SpecialNeeds() SpecialNeeds {
	return s.specialNeeds
}

// Notes returns the staff and driver notes
func (s *Student) Notes() Notes {
	return s.notes
}

// Status returns the record status
func (s *Student) Status() PersonStatus {
	return s.status
}

// Version returns the record version for optimistic concurrency
func (s *Student) Version() int {
	return s.version
}

// CreatedAt returns when the record was created
func (s *Student) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns when the record was last updated
func (s *Student) UpdatedAt() time.Time {
	return s.updatedAt
}

// Addresses returns all pickup addresses
func (s *Student) Addresses() []PickupAddress {
	addresses := make([]PickupAddress, len(s.addresses))
	copy(addresses, s.addresses)
	return addresses
}

// Parents returns all parents and guardians
func (s *Student) Parents() []Parent {
	parents := make([]Parent, len(s.parents))
	copy(parents, s.parents)
	return parents
}

// Rename updates the student's name
func (s *Student) Rename(firstName, lastName string) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return pkgerrors.NewValidationError("name cannot be empty")
	}

	s.firstName = strings.TrimSpace(firstName)
	s.lastName = strings.TrimSpace(lastName)
	s.touch()

	return nil
}

// Promote moves the student to a new grade
func (s *Student) Promote(grade valueobjects.Grade) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if !grade.IsValid() {
		return pkgerrors.NewValidationError("invalid grade: " + grade.String())
	}

	s.grade = grade
	s.touch()

	return nil
}

// UpdateGender updates the gender
func (s *Student) UpdateGender(gender valueobjects.Gender) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if !gender.IsValid() {
		return pkgerrors.NewValidationError("gender must be one of male, female, other")
	}

	s.gender = gender
	s.touch()

	return nil
}

// UpdateBirthdate updates the date of birth
func (s *Student) UpdateBirthdate(birthdate time.Time) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if birthdate.IsZero() || birthdate.After(time.Now()) {
		return pkgerrors.NewValidationError("birthdate must be in the past")
	}

	s.birthdate = birthdate
	s.touch()

	return nil
}

// UpdateAge updates the declared age within the allowed bounds
func (s *Student) UpdateAge(age int) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if age < MinStudentAge || age > MaxStudentAge {
		return pkgerrors.NewValidationError("age must be between 3 and 20")
	}

	s.age = age
	s.touch()

	return nil
}

// UpdateContact updates the student's contact details
func (s *Student) UpdateContact(email string, phone *valueobjects.Phone) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}

	s.email = strings.TrimSpace(email)
	s.phone = phone
	s.touch()

	return nil
}

// SetAddresses replaces all pickup addresses, enforcing unique labels
func (s *Student) SetAddresses(addresses []PickupAddress) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if err := validateAddressLabels(addresses); err != nil {
		return err
	}

	s.addresses = addresses
	s.touch()

	return nil
}

// SetParents replaces the parent list; a student always keeps at least one
func (s *Student) SetParents(parents []Parent) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if len(parents) == 0 {
		return pkgerrors.NewValidationError("at least one parent is required")
	}
	if err := validateParents(parents); err != nil {
		return err
	}

	s.parents = parents
	s.touch()

	return nil
}

// SetSpecialNeeds updates the special needs record
func (s *Student) SetSpecialNeeds(needs SpecialNeeds) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}
	if needs.HasSpecialNeeds && strings.TrimSpace(needs.SpecialNeedsType) == "" {
		return pkgerrors.NewValidationError("special needs type is required when special needs are flagged")
	}

	s.specialNeeds = needs
	s.touch()

	return nil
}

// SetNotes updates the staff and driver notes
func (s *Student) SetNotes(notes Notes) error {
	if s.status == StatusArchived {
		return pkgerrors.NewValidationError("cannot update archived student")
	}

	s.notes = notes
	s.touch()

	return nil
}

// Archive moves the record to archived status
func (s *Student) Archive() error {
	if s.status == StatusArchived {
		return nil // Already archived
	}

	s.status = StatusArchived
	s.touch()

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (s *Student) GetUncommittedEvents() []events.DomainEvent {
	return s.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (s *Student) MarkEventsAsCommitted() {
	s.events = []events.DomainEvent{}
}

// MarkUpdated records an update event for the current version.
// Called by command handlers after a successful mutation batch.
func (s *Student) MarkUpdated() {
	s.addEvent(events.NewStudentUpdated(s.id.String(), s.schoolID, s.version, s.updatedAt))
}

func (s *Student) touch() {
	s.updatedAt = time.Now()
	s.version++
}

func (s *Student) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

// validateParents requires every parent record to carry a name
func validateParents(parents []Parent) error {
	for _, parent := range parents {
		if strings.TrimSpace(parent.FirstName) == "" || strings.TrimSpace(parent.LastName) == "" {
			return pkgerrors.NewValidationError("parent name cannot be empty")
		}
	}
	return nil
}
