package create

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/last-exercise/internal/http/middlewarectx"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID string, in models.ExerciseInput) (*models.Exercise, error) {
	args := m.Called(ctx, userID, in)
	if res := args.Get(0); res != nil {
		return res.(*models.Exercise), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	t.Run("creates with nested types for caller", func(t *testing.T) {
		svc := new(MockService)
		reps := 12
		svc.On("Create", mock.Anything, "u1", mock.MatchedBy(func(in models.ExerciseInput) bool {
			return in.Name == "Squats" && in.UserID == "" && len(in.ExerciseTypes) == 1 &&
				in.ExerciseTypes[0].Name == "warmup" && *in.ExerciseTypes[0].NumberOfRepetitions == reps
		})).Return(&models.Exercise{ID: "e1", Name: "Squats", UserID: "u1"}, nil)

		body := `{"name":"Squats","exerciseTypes":[{"name":"warmup","numberOfRepetitions":12}]}`
		req := httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(body))
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()

		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"id":"e1"`)
		svc.AssertExpectations(t)
	})

	t.Run("name required", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Create", mock.Anything, "u1", mock.Anything).
			Return(nil, models.NewError(models.ErrValidation, "name_required"))

		req := httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(`{}`))
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()

		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"name_required"`)
	})

	t.Run("negative order rejected", func(t *testing.T) {
		svc := new(MockService)

		req := httptest.NewRequest(http.MethodPost, "/exercises", strings.NewReader(`{"name":"x","order":-1}`))
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()

		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}
