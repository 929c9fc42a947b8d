package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/infrastructure/persistence/mongodb"
)

// These tests run against a real MongoDB. Set MONGO_TEST_URI to enable,
// e.g. MONGO_TEST_URI=mongodb://localhost:27017 go test ./tests/integration/...
func setupStudentRepository(t *testing.T) *mongodb.StudentRepository {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, uri)
	require.NoError(t, err)

	db := client.Database("schoolride_test")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = mongodb.Disconnect(ctx, client)
	})

	return mongodb.NewStudentRepository(db, zap.NewNop())
}

func newIntegrationStudent(t *testing.T, firstName string) *entities.Student {
	t.Helper()
	student, err := entities.NewStudent(entities.StudentParams{
		SchoolID:  "school-1",
		FirstName: firstName,
		LastName:  "Rao",
		Gender:    valueobjects.GenderFemale,
		Grade:     valueobjects.Grade5,
		Birthdate: time.Date(2015, 6, 12, 0, 0, 0, 0, time.UTC),
		Age:       10,
		Parents: []entities.Parent{
			{FirstName: "Priya", LastName: "Rao", Relation: "mother"},
		},
	})
	require.NoError(t, err)
	return student
}

func TestStudentRepositoryCRUD(t *testing.T) {
	repo := setupStudentRepository(t)
	ctx := context.Background()

	student := newIntegrationStudent(t, "Asha")
	require.NoError(t, repo.Save(ctx, student))

	loaded, err := repo.GetByID(ctx, student.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Asha", loaded.FirstName())
	assert.Equal(t, student.Version(), loaded.Version())

	require.NoError(t, loaded.Rename("Asha", "Iyer"))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, student.ID())
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "Iyer", reloaded.LastName())
	assert.Equal(t, loaded.Version(), reloaded.Version())

	require.NoError(t, repo.Delete(ctx, student.ID()))

	gone, err := repo.GetByID(ctx, student.ID())
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStudentRepositoryList(t *testing.T) {
	repo := setupStudentRepository(t)
	ctx := context.Background()

	names := []string{"Asha", "Bina", "Chitra"}
	for _, name := range names {
		require.NoError(t, repo.Save(ctx, newIntegrationStudent(t, name)))
	}

	students, total, err := repo.List(ctx, ports.StudentFilter{
		SchoolID: "school-1",
		Limit:    2,
		Offset:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, students, 2)

	students, total, err = repo.List(ctx, ports.StudentFilter{
		SchoolID: "school-1",
		Limit:    2,
		Offset:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, students, 1)

	students, _, err = repo.List(ctx, ports.StudentFilter{
		SchoolID: "other-school",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Empty(t, students)
}
