package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolride-backend/application/commands"
	"schoolride-backend/application/commands/bus"
	"schoolride-backend/application/ports"
	"schoolride-backend/application/queries"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/application/services"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/validators"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/domain/events"
)

type memStudentRepo struct {
	students map[string]*entities.Student
}

func (r *memStudentRepo) Save(ctx context.Context, student *entities.Student) error {
	r.students[student.ID().String()] = student
	return nil
}

func (r *memStudentRepo) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Student, error) {
	return r.students[id.String()], nil
}

func (r *memStudentRepo) List(ctx context.Context, filter ports.StudentFilter) ([]*entities.Student, int, error) {
	var all []*entities.Student
	for _, s := range r.students {
		if filter.SchoolID != "" && s.SchoolID() != filter.SchoolID {
			continue
		}
		all = append(all, s)
	}
	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

func (r *memStudentRepo) Delete(ctx context.Context, id valueobjects.PersonID) error {
	delete(r.students, id.String())
	return nil
}

type memPersonRepo struct {
	persons map[string]*entities.Person
}

func (r *memPersonRepo) Save(ctx context.Context, person *entities.Person) error {
	r.persons[person.ID().String()] = person
	return nil
}

func (r *memPersonRepo) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	return r.persons[id.String()], nil
}

func (r *memPersonRepo) List(ctx context.Context, filter ports.PersonFilter) ([]*entities.Person, int, error) {
	var all []*entities.Person
	for _, p := range r.persons {
		all = append(all, p)
	}
	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

func (r *memPersonRepo) Delete(ctx context.Context, id valueobjects.PersonID) error {
	delete(r.persons, id.String())
	return nil
}

type memMirror struct{}

func (memMirror) MirrorStudent(ctx context.Context, student *entities.Student) error { return nil }

func (memMirror) MirrorPerson(ctx context.Context, person *entities.Person) error { return nil }

func (memMirror) RemoveStudent(ctx context.Context, schoolID string, id valueobjects.PersonID) error {
	return nil
}

func (memMirror) RemovePerson(ctx context.Context, id valueobjects.PersonID) error { return nil }

func (memMirror) ListMirroredStudents(ctx context.Context, schoolID string) ([]ports.MirroredStudent, error) {
	return nil, nil
}

func (memMirror) MirroredStudents(ctx context.Context, schoolID string, studentIDs []string) ([]ports.MirroredStudent, error) {
	return nil, nil
}

type memPublisher struct{}

func (memPublisher) Publish(ctx context.Context, event events.DomainEvent) error { return nil }
func (memPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type memCache struct{}

func (memCache) Get(ctx context.Context, key string) (interface{}, bool) { return nil, false }

func (memCache) Set(ctx context.Context, key string, v interface{}, ttl int) error { return nil }

func (memCache) Delete(ctx context.Context, key string) error { return nil }

func (memCache) Clear(ctx context.Context) error { return nil }

type memGeocoder struct{}

func (memGeocoder) Geocode(ctx context.Context, address string) (valueobjects.GeoLocation, error) {
	return valueobjects.NewGeoLocation(12.9716, 77.5946)
}

type testAPI struct {
	router      chi.Router
	studentRepo *memStudentRepo
	personRepo  *memPersonRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	studentRepo := &memStudentRepo{students: make(map[string]*entities.Student)}
	personRepo := &memPersonRepo{persons: make(map[string]*entities.Person)}
	mirror := memMirror{}
	publisher := memPublisher{}
	geocoder := memGeocoder{}
	cache := memCache{}
	logger := zap.NewNop()
	validator := validators.NewStudentValidator()

	createStudent := commands.NewCreateStudentHandler(studentRepo, mirror, publisher, geocoder, validator, cache, logger)
	updateStudent := commands.NewUpdateStudentHandler(studentRepo, mirror, publisher, geocoder, validator, cache, logger)
	deleteStudent := commands.NewDeleteStudentHandler(studentRepo, mirror, publisher, cache, logger)
	createPerson := commands.NewCreatePersonHandler(personRepo, mirror, publisher, geocoder, cache, logger)
	updatePerson := commands.NewUpdatePersonHandler(personRepo, mirror, publisher, geocoder, cache, logger)
	deletePerson := commands.NewDeletePersonHandler(personRepo, mirror, publisher, cache, logger)

	commandBus := bus.NewCommandBus()
	require.NoError(t, commandBus.Register(commands.CreateStudentCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		_, err := createStudent.Handle(ctx, cmd.(commands.CreateStudentCommand))
		return err
	})))
	require.NoError(t, commandBus.Register(commands.UpdateStudentCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		_, err := updateStudent.Handle(ctx, cmd.(commands.UpdateStudentCommand))
		return err
	})))
	require.NoError(t, commandBus.Register(commands.DeleteStudentCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		return deleteStudent.Handle(ctx, cmd.(commands.DeleteStudentCommand))
	})))
	require.NoError(t, commandBus.Register(commands.CreatePersonCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		_, err := createPerson.Handle(ctx, cmd.(commands.CreatePersonCommand))
		return err
	})))
	require.NoError(t, commandBus.Register(commands.UpdatePersonCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		_, err := updatePerson.Handle(ctx, cmd.(commands.UpdatePersonCommand))
		return err
	})))
	require.NoError(t, commandBus.Register(commands.DeletePersonCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		return deletePerson.Handle(ctx, cmd.(commands.DeletePersonCommand))
	})))

	getStudent := queries.NewGetStudentHandler(studentRepo)
	listStudents := queries.NewListStudentsHandler(studentRepo)
	getPerson := queries.NewGetPersonHandler(personRepo)
	listPersons := queries.NewListPersonsHandler(personRepo)

	queryBus := querybus.NewQueryBus()
	require.NoError(t, queryBus.Register(queries.GetStudentQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		return getStudent.Handle(ctx, q.(queries.GetStudentQuery))
	})))
	require.NoError(t, queryBus.Register(queries.ListStudentsQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		return listStudents.Handle(ctx, q.(queries.ListStudentsQuery))
	})))
	require.NoError(t, queryBus.Register(queries.GetPersonQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		return getPerson.Handle(ctx, q.(queries.GetPersonQuery))
	})))
	require.NoError(t, queryBus.Register(queries.ListPersonsQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, q querybus.Query) (interface{}, error) {
		return listPersons.Handle(ctx, q.(queries.ListPersonsQuery))
	})))

	studentHandler := NewStudentHandler(commandBus, queryBus, logger)
	personHandler := NewPersonHandler(commandBus, queryBus, logger)
	adminHandler := NewAdminHandler(services.NewMirrorSyncService(studentRepo, mirror, logger), logger)

	router := chi.NewRouter()
	router.Route("/students", func(r chi.Router) {
		r.Post("/", studentHandler.CreateStudent)
		r.Get("/", studentHandler.ListStudents)
		r.Get("/{studentID}", studentHandler.GetStudent)
		r.Put("/{studentID}", studentHandler.UpdateStudent)
		r.Delete("/{studentID}", studentHandler.DeleteStudent)
	})
	router.Route("/persons", func(r chi.Router) {
		r.Post("/", personHandler.CreatePerson)
		r.Get("/", personHandler.ListPersons)
		r.Get("/{personID}", personHandler.GetPerson)
		r.Put("/{personID}", personHandler.UpdatePerson)
		r.Delete("/{personID}", personHandler.DeletePerson)
	})
	router.Route("/admin/mirror", func(r chi.Router) {
		r.Post("/sync", adminHandler.SyncMirror)
		r.Get("/audit", adminHandler.AuditMirror)
	})

	return &testAPI{router: router, studentRepo: studentRepo, personRepo: personRepo}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Pagination *struct {
			Page       int  `json:"page"`
			PageSize   int  `json:"page_size"`
			Total      int  `json:"total"`
			TotalPages int  `json:"total_pages"`
			HasNext    bool `json:"has_next"`
		} `json:"pagination"`
	} `json:"meta"`
}

func (api *testAPI) do(t *testing.T, method, path string, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

// testBirthdate keeps fixture students ten years old no matter when
// the tests run, so the declared age stays within the drift tolerance.
func testBirthdate() string {
	return time.Now().AddDate(-10, 0, 0).Format("2006-01-02")
}

func createStudentBody() string {
	return fmt.Sprintf(`{
	"school_id": "school-1",
	"first_name": "Asha",
	"last_name": "Rao",
	"gender": "female",
	"grade": "5",
	"birthdate": %q,
	"age": 10,
	"parents": [{"first_name": "Priya", "last_name": "Rao", "relation": "mother"}]
}`, testBirthdate())
}

func createTestStudent(t *testing.T, api *testAPI) string {
	t.Helper()
	rec, resp := api.do(t, http.MethodPost, "/students", createStudentBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestCreateStudentEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodPost, "/students", createStudentBody())
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)

	var view struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		Grade     string `json:"grade"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Asha", view.FirstName)
	assert.Equal(t, "5", view.Grade)
}

func TestCreateStudentEndpointRejectsMalformedBody(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodPost, "/students", `{"school_id": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}

func TestCreateStudentEndpointRejectsInvalidInput(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodPost, "/students", fmt.Sprintf(`{
		"school_id": "school-1",
		"first_name": "Asha",
		"last_name": "Rao",
		"gender": "robot",
		"grade": "5",
		"birthdate": %q,
		"age": 10,
		"parents": [{"first_name": "Priya", "last_name": "Rao"}]
	}`, testBirthdate()))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "gender")
}

func TestGetStudentEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := createTestStudent(t, api)

	rec, resp := api.do(t, http.MethodGet, "/students/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, id, view.ID)
}

func TestGetStudentEndpointNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodGet, "/students/6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
}

func TestUpdateStudentEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := createTestStudent(t, api)

	rec, resp := api.do(t, http.MethodPut, "/students/"+id, `{"last_name": "Iyer", "grade": "6", "age": 11}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		LastName string `json:"last_name"`
		Grade    string `json:"grade"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "Iyer", view.LastName)
	assert.Equal(t, "6", view.Grade)
}

func TestUpdateStudentEndpointNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, http.MethodPut, "/students/6a1f7a52-9f50-4f2f-8a7e-0c5f0b1d2e3f", `{"last_name": "Iyer"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudentEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := createTestStudent(t, api)

	rec, _ := api.do(t, http.MethodDelete, "/students/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/students/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStudentsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	for i := 0; i < 3; i++ {
		createTestStudent(t, api)
	}

	rec, resp := api.do(t, http.MethodGet, "/students?school_id=school-1&page=1&page_size=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 2)

	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, 3, resp.Meta.Pagination.Total)
	assert.Equal(t, 2, resp.Meta.Pagination.TotalPages)
	assert.True(t, resp.Meta.Pagination.HasNext)
}

func TestPersonEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec, resp := api.do(t, http.MethodPost, "/persons", `{
		"first_name": "Ravi",
		"last_name": "Kumar",
		"gender": "male",
		"birthdate": "1988-03-21",
		"email": "ravi@example.com"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.NotEmpty(t, view.ID)

	rec, resp = api.do(t, http.MethodPut, "/persons/"+view.ID, `{"email": "ravi.kumar@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "ravi.kumar@example.com", updated.Email)

	rec, _ = api.do(t, http.MethodDelete, "/persons/"+view.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = api.do(t, http.MethodGet, "/persons/"+view.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminMirrorEndpoints(t *testing.T) {
	api := newTestAPI(t)
	createTestStudent(t, api)

	rec, _ := api.do(t, http.MethodPost, "/admin/mirror/sync", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := api.do(t, http.MethodPost, "/admin/mirror/sync?school_id=school-1", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Scanned  int `json:"scanned"`
		Mirrored int `json:"mirrored"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Mirrored)

	rec, resp = api.do(t, http.MethodGet, "/admin/mirror/audit?school_id=school-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var audit struct {
		Primary int      `json:"primary"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &audit))
	assert.Equal(t, 1, audit.Primary)
	assert.Len(t, audit.Missing, 1)
}

func TestListStudentsEndpointUsesDefaults(t *testing.T) {
	api := newTestAPI(t)
	createTestStudent(t, api)

	rec, resp := api.do(t, http.MethodGet, "/students", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, 1, resp.Meta.Pagination.Page)
	assert.Equal(t, 20, resp.Meta.Pagination.PageSize)
}
