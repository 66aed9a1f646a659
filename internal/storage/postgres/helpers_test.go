package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/last-exercise/internal/migrations"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB(), migrationsPath))

	cleanup := func() {
		_ = s.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return s, cleanup
}

// testDataFactory создаёт тестовые данные через репозиторий.
type testDataFactory struct {
	repo *Repository
}

func (f *testDataFactory) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	hash := "$2a$04$hash"
	u, err := f.repo.SaveUser(context.Background(), &models.User{
		Email:     email,
		Firstname: "Test",
		Lastname:  "User",
		Password:  &hash,
	})
	require.NoError(t, err)
	return u
}

func (f *testDataFactory) createExercise(t *testing.T, userID, name string, order int, types ...models.ExerciseType) *models.Exercise {
	t.Helper()
	e, err := f.repo.SaveExercise(context.Background(), &models.Exercise{
		Name:          name,
		UserID:        userID,
		Order:         order,
		ExerciseTypes: types,
	})
	require.NoError(t, err)
	return e
}
