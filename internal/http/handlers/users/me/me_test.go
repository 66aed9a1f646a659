package me

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/last-exercise/internal/http/middlewarectx"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMeHandler(t *testing.T) {
	t.Run("returns caller profile", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "a@b.c"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()
		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"a@b.c"`)
		svc.AssertExpectations(t)
	})

	t.Run("deleted user", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, "gone").Return(nil, models.NewError(models.ErrNotFound, "user_not_found"))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), "gone"))
		rec := httptest.NewRecorder()
		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no caller in context", func(t *testing.T) {
		svc := new(MockService)
		rec := httptest.NewRecorder()
		New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
