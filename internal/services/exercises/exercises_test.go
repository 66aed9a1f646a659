package exercises

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
	"github.com/magabrotheeeer/last-exercise/internal/storage/memory"
)

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func setup(t *testing.T) (*Service, *memory.Storage, *models.User, *CacheMock) {
	t.Helper()
	store := memory.New()
	u, err := store.SaveUser(context.Background(), &models.User{Email: "a@x.com", Firstname: "A", Lastname: "B"})
	require.NoError(t, err)
	c := new(CacheMock)
	c.On("Invalidate", mock.Anything, "user:"+u.ID).Return(nil)
	return New(store, c, sl.NewDiscardLogger()), store, u, c
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, u, c := setup(t)

	reps := 10
	e, err := svc.Create(ctx, u.ID, models.ExerciseInput{
		Name: "Squats",
		ExerciseTypes: []models.ExerciseType{
			{Name: "warm-up", Order: 1},
			{Name: "work", Order: 2, NumberOfRepetitions: &reps},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, e.UserID)
	assert.Equal(t, models.DefaultCardColor, e.CardColor)
	assert.Equal(t, models.DefaultOrder, e.Order)
	require.Len(t, e.ExerciseTypes, 2)
	assert.Equal(t, "warm-up", e.ExerciseTypes[0].Name)
	assert.NotEmpty(t, e.ExerciseTypes[0].ID)
	c.AssertCalled(t, "Invalidate", mock.Anything, "user:"+u.ID)

	_, err = svc.Create(ctx, u.ID, models.ExerciseInput{Name: " "})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "name_required", models.Code(err))

	_, err = svc.Create(ctx, "missing", models.ExerciseInput{Name: "x"})
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "user_not_found", models.Code(err))
}

func TestService_GetListUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, u, _ := setup(t)

	first, err := svc.Create(ctx, u.ID, models.ExerciseInput{Name: "First", Order: 1,
		ExerciseTypes: []models.ExerciseType{{Name: "set 1", Order: 1}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, models.ExerciseInput{Name: "Second", Order: 2})
	require.NoError(t, err)

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Name)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "exercise_not_found", models.Code(err))

	kept := first.ExerciseTypes[0]
	kept.Name = "set 1 renamed"
	updated, err := svc.Update(ctx, first.ID, models.ExerciseInput{
		Name:          "First renamed",
		Duration:      "15m",
		Order:         3,
		ExerciseTypes: []models.ExerciseType{kept, {ID: "unknown", Name: "set 2", Order: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "First renamed", updated.Name)
	assert.Equal(t, "15m", updated.Duration)
	assert.Equal(t, 3, updated.Order)
	require.Len(t, updated.ExerciseTypes, 2)
	assert.Equal(t, kept.ID, updated.ExerciseTypes[0].ID)
	assert.Equal(t, "set 1 renamed", updated.ExerciseTypes[0].Name)
	assert.NotEqual(t, "unknown", updated.ExerciseTypes[1].ID)

	_, err = svc.Update(ctx, "missing", models.ExerciseInput{Name: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, store, u, _ := setup(t)

	e, err := svc.Create(ctx, u.ID, models.ExerciseInput{Name: "Rows",
		ExerciseTypes: []models.ExerciseType{{Name: "set"}}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteType(ctx, e.ExerciseTypes[0].ID))
	err = svc.DeleteType(ctx, e.ExerciseTypes[0].ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "exercise_type_not_found", models.Code(err))

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err = store.FindExerciseByID(ctx, e.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = svc.Delete(ctx, e.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "exercise_not_found", models.Code(err))
}

func TestService_DeleteInvalidatesBorrowers(t *testing.T) {
	ctx := context.Background()
	svc, store, u, c := setup(t)

	other, err := store.SaveUser(ctx, &models.User{Email: "b@x.com", Firstname: "B", Lastname: "C"})
	require.NoError(t, err)
	c.On("Invalidate", mock.Anything, "user:"+other.ID).Return(nil)

	e, err := svc.Create(ctx, u.ID, models.ExerciseInput{Name: "Burpees"})
	require.NoError(t, err)
	_, err = store.AppendExerciseHistory(ctx, other.ID, models.HistoryEntry{Date: "2024-01-01", ExerciseID: e.ID}, time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, e.ID))

	c.AssertCalled(t, "Invalidate", mock.Anything, "user:"+u.ID)
	c.AssertCalled(t, "Invalidate", mock.Anything, "user:"+other.ID)
	got, err := store.FindUserByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastExerciseID)
	assert.Len(t, got.ExerciseHistory, 1)
}
