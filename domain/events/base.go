package events

import (
	"time"
)

// SourceBackend identifies this service on the event bus
const SourceBackend = "schoolride.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Person events

// PersonCreated is raised when a new person record is created
type PersonCreated struct {
	BaseEvent
	PersonID  string `json:"person_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewPersonCreated creates a PersonCreated event
func NewPersonCreated(personID, firstName, lastName string, timestamp time.Time) PersonCreated {
	return PersonCreated{
		BaseEvent: BaseEvent{
			AggregateID: personID,
			EventType:   "person.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		PersonID:  personID,
		FirstName: firstName,
		LastName:  lastName,
	}
}

// PersonUpdated is raised when a person record changes
type PersonUpdated struct {
	BaseEvent
	PersonID string `json:"person_id"`
}

// NewPersonUpdated creates a PersonUpdated event
func NewPersonUpdated(personID string, version int, timestamp time.Time) PersonUpdated {
	return PersonUpdated{
		BaseEvent: BaseEvent{
			AggregateID: personID,
			EventType:   "person.updated",
			Timestamp:   timestamp,
			Version:     version,
		},
		PersonID: personID,
	}
}

// PersonDeleted is raised when a person record is removed
type PersonDeleted struct {
	BaseEvent
	PersonID string `json:"person_id"`
}

// NewPersonDeleted creates a PersonDeleted event
func NewPersonDeleted(personID string, timestamp time.Time) PersonDeleted {
	return PersonDeleted{
		BaseEvent: BaseEvent{
			AggregateID: personID,
			EventType:   "person.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		PersonID: personID,
	}
}

// Student events

// StudentCreated is raised when a new student record is created
type StudentCreated struct {
	BaseEvent
	StudentID string `json:"student_id"`
	SchoolID  string `json:"school_id"`
	Grade     string `json:"grade"`
}

// NewStudentCreated creates a StudentCreated event
func NewStudentCreated(studentID, schoolID, grade string, timestamp time.Time) StudentCreated {
	return StudentCreated{
		BaseEvent: BaseEvent{
			AggregateID: studentID,
			EventType:   "student.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		StudentID: studentID,
		SchoolID:  schoolID,
		Grade:     grade,
	}
}

// StudentUpdated is raised when a student record changes
type StudentUpdated struct {
	BaseEvent
	StudentID string `json:"student_id"`
	SchoolID  string `json:"school_id"`
}

// NewStudentUpdated creates a StudentUpdated event
func NewStudentUpdated(studentID, schoolID string, version int, timestamp time.Time) StudentUpdated {
	return StudentUpdated{
		BaseEvent: BaseEvent{
			AggregateID: studentID,
			EventType:   "student.updated",
			Timestamp:   timestamp,
			Version:     version,
		},
		StudentID: studentID,
		SchoolID:  schoolID,
	}
}

// StudentDeleted is raised when a student record is removed
type StudentDeleted struct {
	BaseEvent
	StudentID string `json:"student_id"`
	SchoolID  string `json:"school_id"`
}

// NewStudentDeleted creates a StudentDeleted event
func NewStudentDeleted(studentID, schoolID string, timestamp time.Time) StudentDeleted {
	return StudentDeleted{
		BaseEvent: BaseEvent{
			AggregateID: studentID,
			EventType:   "student.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		StudentID: studentID,
		SchoolID:  schoolID,
	}
}
