package ports

import (
	"context"
	"time"

	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
)

// StudentFilter narrows student listings
type StudentFilter struct {
	SchoolID string
	Grade    string
	Status   string
	Limit    int
	Offset   int
}

// PersonFilter narrows person listings
type PersonFilter struct {
	Status string
	Limit  int
	Offset int
}

// StudentRepository defines the interface for student persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type StudentRepository interface {
	// Save persists a student (create or update)
	Save(ctx context.Context, student *entities.Student) error

	// GetByID retrieves a student by its ID
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Student, error)

	// List retrieves students matching the filter
	List(ctx context.Context, filter StudentFilter) ([]*entities.Student, int, error)

	// Delete removes a student
	Delete(ctx context.Context, id valueobjects.PersonID) error
}

// PersonRepository defines the interface for person persistence
type PersonRepository interface {
	// Save persists a person (create or update)
	Save(ctx context.Context, person *entities.Person) error

	// GetByID retrieves a person by its ID
	GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error)

	// List retrieves persons matching the filter
	List(ctx context.Context, filter PersonFilter) ([]*entities.Person, int, error)

	// Delete removes a person
	Delete(ctx context.Context, id valueobjects.PersonID) error
}

// MirrorStore defines the secondary write-through store. Writes are
// best-effort: callers log failures and continue.
type MirrorStore interface {
	// MirrorStudent writes a student record to the secondary store
	MirrorStudent(ctx context.Context, student *entities.Student) error

	// MirrorPerson writes a person record to the secondary store
	MirrorPerson(ctx context.Context, person *entities.Person) error

	// RemoveStudent removes a student record from the secondary store
	RemoveStudent(ctx context.Context, schoolID string, id valueobjects.PersonID) error

	// RemovePerson removes a person record from the secondary store
	RemovePerson(ctx context.Context, id valueobjects.PersonID) error

	// ListMirroredStudents reads back the mirrored records for a school
	ListMirroredStudents(ctx context.Context, schoolID string) ([]MirroredStudent, error)

	// MirroredStudents reads back the mirror records for specific
	// students. Records absent from the secondary store are omitted.
	MirroredStudents(ctx context.Context, schoolID string, studentIDs []string) ([]MirroredStudent, error)
}

// MirroredStudent summarizes a student record in the secondary store
type MirroredStudent struct {
	StudentID string
	SchoolID  string
	Version   int
	UpdatedAt time.Time
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Geocoder resolves a free-form address to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, address string) (valueobjects.GeoLocation, error)
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
