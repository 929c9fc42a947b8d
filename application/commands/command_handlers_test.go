package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/validators"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
	apperrors "schoolride-backend/pkg/errors"
)

type stubStudentRepo struct {
	students map[string]*entities.Student
	saveErr  error
}

func newStubStudentRepo() *stubStudentRepo {
	return &stubStudentRepo{students: make(map[string]*entities.Student)}
}

func (r *stubStudentRepo) Save(ctx context.Context, student *entities.Student) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.students[student.ID().String()] = student
	return nil
}

func (r *stubStudentRepo) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Student, error) {
	return r.students[id.String()], nil
}

func (r *stubStudentRepo) List(ctx context.Context, filter ports.StudentFilter) ([]*entities.Student, int, error) {
	var out []*entities.Student
	for _, s := range r.students {
		if filter.SchoolID != "" && s.SchoolID() != filter.SchoolID {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *stubStudentRepo) Delete(ctx context.Context, id valueobjects.PersonID) error {
	if _, ok := r.students[id.String()]; !ok {
		return apperrors.NewNotFoundError("student " + id.String())
	}
	delete(r.students, id.String())
	return nil
}

type stubPersonRepo struct {
	persons map[string]*entities.Person
}

func newStubPersonRepo() *stubPersonRepo {
	return &stubPersonRepo{persons: make(map[string]*entities.Person)}
}

func (r *stubPersonRepo) Save(ctx context.Context, person *entities.Person) error {
	r.persons[person.ID().String()] = person
	return nil
}

func (r *stubPersonRepo) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	return r.persons[id.String()], nil
}

func (r *stubPersonRepo) List(ctx context.Context, filter ports.PersonFilter) ([]*entities.Person, int, error) {
	var out []*entities.Person
	for _, p := range r.persons {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *stubPersonRepo) Delete(ctx context.Context, id valueobjects.PersonID) error {
	if _, ok := r.persons[id.String()]; !ok {
		return apperrors.NewNotFoundError("person " + id.String())
	}
	delete(r.persons, id.String())
	return nil
}

type stubMirror struct {
	students map[string]*entities.Student
	persons  map[string]*entities.Person
	err      error

	removedStudents []string
	removedPersons  []string
}

func newStubMirror() *stubMirror {
	return &stubMirror{
		students: make(map[string]*entities.Student),
		persons:  make(map[string]*entities.Person),
	}
}

func (m *stubMirror) MirrorStudent(ctx context.Context, student *entities.Student) error {
	if m.err != nil {
		return m.err
	}
	m.students[student.ID().String()] = student
	return nil
}

func (m *stubMirror) MirrorPerson(ctx context.Context, person *entities.Person) error {
	if m.err != nil {
		return m.err
	}
	m.persons[person.ID().String()] = person
	return nil
}

func (m *stubMirror) RemoveStudent(ctx context.Context, schoolID string, id valueobjects.PersonID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.students, id.String())
	m.removedStudents = append(m.removedStudents, id.String())
	return nil
}

func (m *stubMirror) RemovePerson(ctx context.Context, id valueobjects.PersonID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.persons, id.String())
	m.removedPersons = append(m.removedPersons, id.String())
	return nil
}

func (m *stubMirror) ListMirroredStudents(ctx context.Context, schoolID string) ([]ports.MirroredStudent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ports.MirroredStudent
	for _, s := range m.students {
		if s.SchoolID() != schoolID {
			continue
		}
		out = append(out, ports.MirroredStudent{
			StudentID: s.ID().String(),
			SchoolID:  s.SchoolID(),
			Version:   s.Version(),
			UpdatedAt: s.UpdatedAt(),
		})
	}
	return out, nil
}

func (m *stubMirror) MirroredStudents(ctx context.Context, schoolID string, studentIDs []string) ([]ports.MirroredStudent, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ports.MirroredStudent
	for _, id := range studentIDs {
		s, ok := m.students[id]
		if !ok || s.SchoolID() != schoolID {
			continue
		}
		out = append(out, ports.MirroredStudent{
			StudentID: s.ID().String(),
			SchoolID:  s.SchoolID(),
			Version:   s.Version(),
			UpdatedAt: s.UpdatedAt(),
		})
	}
	return out, nil
}

type stubPublisher struct {
	published []events.DomainEvent
	err       error
}

func (p *stubPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *stubPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, batch...)
	return nil
}

type stubGeocoder struct {
	location valueobjects.GeoLocation
	err      error
	calls    int
}

func (g *stubGeocoder) Geocode(ctx context.Context, address string) (valueobjects.GeoLocation, error) {
	g.calls++
	if g.err != nil {
		return valueobjects.GeoLocation{}, g.err
	}
	return g.location, nil
}

type stubCache struct {
	cleared int
}

func (c *stubCache) Get(ctx context.Context, key string) (interface{}, bool) { return nil, false }

func (c *stubCache) Set(ctx context.Context, key string, v interface{}, ttl int) error { return nil }

func (c *stubCache) Delete(ctx context.Context, key string) error { return nil }

func (c *stubCache) Clear(ctx context.Context) error {
	c.cleared++
	return nil
}

func validCreateStudentCommand() CreateStudentCommand {
	return CreateStudentCommand{
		SchoolID:  "school-1",
		FirstName: "Asha",
		LastName:  "Rao",
		Gender:    "female",
		Grade:     "5",
		Birthdate: time.Now().AddDate(-10, 0, 0).Format("2006-01-02"),
		Age:       10,
		Parents: []ParentInput{
			{FirstName: "Priya", LastName: "Rao", Relation: "mother"},
		},
	}
}

type createStudentFixture struct {
	repo      *stubStudentRepo
	mirror    *stubMirror
	publisher *stubPublisher
	geocoder  *stubGeocoder
	cache     *stubCache
	handler   *CreateStudentHandler
}

func newCreateStudentFixture() *createStudentFixture {
	f := &createStudentFixture{
		repo:      newStubStudentRepo(),
		mirror:    newStubMirror(),
		publisher: &stubPublisher{},
		geocoder:  &stubGeocoder{},
		cache:     &stubCache{},
	}
	f.handler = NewCreateStudentHandler(
		f.repo, f.mirror, f.publisher, f.geocoder,
		validators.NewStudentValidator(), f.cache, zap.NewNop(),
	)
	return f
}

func TestCreateStudentHandler(t *testing.T) {
	f := newCreateStudentFixture()

	student, err := f.handler.Handle(context.Background(), validCreateStudentCommand())
	require.NoError(t, err)
	require.NotNil(t, student)

	assert.Equal(t, "Asha", student.FirstName())
	assert.Contains(t, f.repo.students, student.ID().String())
	assert.Contains(t, f.mirror.students, student.ID().String())
	assert.Len(t, f.publisher.published, 1)
	assert.Empty(t, student.GetUncommittedEvents())
	assert.Equal(t, 1, f.cache.cleared)
}

func TestCreateStudentHandlerUsesProvidedID(t *testing.T) {
	f := newCreateStudentFixture()

	cmd := validCreateStudentCommand()
	cmd.StudentID = "6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f"

	student, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, cmd.StudentID, student.ID().String())
}

func TestCreateStudentHandlerMirrorFailureIsBestEffort(t *testing.T) {
	f := newCreateStudentFixture()
	f.mirror.err = errors.New("dynamodb unavailable")

	student, err := f.handler.Handle(context.Background(), validCreateStudentCommand())
	require.NoError(t, err)
	assert.Contains(t, f.repo.students, student.ID().String())
}

func TestCreateStudentHandlerPublishFailureIsBestEffort(t *testing.T) {
	f := newCreateStudentFixture()
	f.publisher.err = errors.New("eventbridge unavailable")

	student, err := f.handler.Handle(context.Background(), validCreateStudentCommand())
	require.NoError(t, err)
	assert.Contains(t, f.repo.students, student.ID().String())
}

func TestCreateStudentHandlerRejectsInvalidAge(t *testing.T) {
	f := newCreateStudentFixture()

	cmd := validCreateStudentCommand()
	cmd.Age = 25

	_, err := f.handler.Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.Empty(t, f.repo.students)
	assert.Empty(t, f.mirror.students)
}

func TestCreateStudentHandlerRejectsAgeBirthdateMismatch(t *testing.T) {
	f := newCreateStudentFixture()

	cmd := validCreateStudentCommand()
	cmd.Birthdate = time.Now().AddDate(-16, 0, 0).Format("2006-01-02")
	cmd.Age = 10

	_, err := f.handler.Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.Empty(t, f.repo.students)
}

func TestCreateStudentHandlerGeocodesAddresses(t *testing.T) {
	f := newCreateStudentFixture()
	loc, err := valueobjects.NewGeoLocation(12.9716, 77.5946)
	require.NoError(t, err)
	f.geocoder.location = loc

	cmd := validCreateStudentCommand()
	cmd.Addresses = []PickupAddressInput{
		{
			Label: "home",
			Address: AddressInput{
				Street: "1st Main", City: "Bengaluru", State: "Karnataka",
				Zip: "560001", Country: "India",
			},
			AMPreferred: true,
		},
	}

	student, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, f.geocoder.calls)

	addresses := student.Addresses()
	require.Len(t, addresses, 1)
	require.NotNil(t, addresses[0].Location)
	assert.Equal(t, 12.9716, addresses[0].Location.Latitude())
}

func TestCreateStudentHandlerGeocodeFailureLeavesLocationEmpty(t *testing.T) {
	f := newCreateStudentFixture()
	f.geocoder.err = errors.New("no results")

	cmd := validCreateStudentCommand()
	cmd.Addresses = []PickupAddressInput{
		{
			Label: "home",
			Address: AddressInput{
				Street: "1st Main", City: "Bengaluru", State: "Karnataka",
				Zip: "560001", Country: "India",
			},
		},
	}

	student, err := f.handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	addresses := student.Addresses()
	require.Len(t, addresses, 1)
	assert.Nil(t, addresses[0].Location)
}

func TestUpdateStudentHandler(t *testing.T) {
	f := newCreateStudentFixture()
	student, err := f.handler.Handle(context.Background(), validCreateStudentCommand())
	require.NoError(t, err)

	updateHandler := NewUpdateStudentHandler(
		f.repo, f.mirror, f.publisher, f.geocoder,
		validators.NewStudentValidator(), f.cache, zap.NewNop(),
	)

	lastName := "Iyer"
	grade := "6"
	age := 11
	cmd := UpdateStudentCommand{
		StudentID: student.ID().String(),
		LastName:  &lastName,
		Grade:     &grade,
		Age:       &age,
	}

	updated, err := updateHandler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, "Asha", updated.FirstName(), "unset fields are untouched")
	assert.Equal(t, "Iyer", updated.LastName())
	assert.Equal(t, valueobjects.Grade6, updated.Grade())
	assert.Equal(t, 11, updated.Age())
	assert.Greater(t, updated.Version(), 1)

	mirrored := f.mirror.students[student.ID().String()]
	require.NotNil(t, mirrored)
	assert.Equal(t, "Iyer", mirrored.LastName())
}

func TestUpdateStudentHandlerNotFound(t *testing.T) {
	f := newCreateStudentFixture()
	updateHandler := NewUpdateStudentHandler(
		f.repo, f.mirror, f.publisher, f.geocoder,
		validators.NewStudentValidator(), f.cache, zap.NewNop(),
	)

	name := "Ghost"
	_, err := updateHandler.Handle(context.Background(), UpdateStudentCommand{
		StudentID: "6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f",
		FirstName: &name,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteStudentHandler(t *testing.T) {
	f := newCreateStudentFixture()
	student, err := f.handler.Handle(context.Background(), validCreateStudentCommand())
	require.NoError(t, err)

	deleteHandler := NewDeleteStudentHandler(f.repo, f.mirror, f.publisher, f.cache, zap.NewNop())
	err = deleteHandler.Handle(context.Background(), DeleteStudentCommand{StudentID: student.ID().String()})
	require.NoError(t, err)

	assert.Empty(t, f.repo.students)
	assert.Contains(t, f.mirror.removedStudents, student.ID().String())

	err = deleteHandler.Handle(context.Background(), DeleteStudentCommand{StudentID: student.ID().String()})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPersonHandlers(t *testing.T) {
	repo := newStubPersonRepo()
	mirror := newStubMirror()
	publisher := &stubPublisher{}
	geocoder := &stubGeocoder{}
	cache := &stubCache{}

	createHandler := NewCreatePersonHandler(repo, mirror, publisher, geocoder, cache, zap.NewNop())

	person, err := createHandler.Handle(context.Background(), CreatePersonCommand{
		FirstName: "Ravi",
		LastName:  "Kumar",
		Gender:    "male",
		Birthdate: "1988-03-21",
		Email:     "ravi@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.persons, person.ID().String())
	assert.Contains(t, mirror.persons, person.ID().String())

	updateHandler := NewUpdatePersonHandler(repo, mirror, publisher, geocoder, cache, zap.NewNop())
	lastName := "Menon"
	updated, err := updateHandler.Handle(context.Background(), UpdatePersonCommand{
		PersonID: person.ID().String(),
		LastName: &lastName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Menon", updated.LastName())
	assert.Equal(t, "Ravi", updated.FirstName())

	deleteHandler := NewDeletePersonHandler(repo, mirror, publisher, cache, zap.NewNop())
	err = deleteHandler.Handle(context.Background(), DeletePersonCommand{PersonID: person.ID().String()})
	require.NoError(t, err)
	assert.Empty(t, repo.persons)
	assert.Contains(t, mirror.removedPersons, person.ID().String())
}

func TestCommandValidate(t *testing.T) {
	cmd := validCreateStudentCommand()
	assert.NoError(t, cmd.Validate())

	cmd.Gender = "robot"
	assert.Error(t, cmd.Validate())

	cmd = validCreateStudentCommand()
	cmd.Birthdate = "12/06/2015"
	assert.Error(t, cmd.Validate())

	cmd = validCreateStudentCommand()
	cmd.Parents = nil
	assert.Error(t, cmd.Validate())

	assert.Error(t, DeleteStudentCommand{}.Validate())
	assert.NoError(t, DeleteStudentCommand{StudentID: "6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f"}.Validate())
}
