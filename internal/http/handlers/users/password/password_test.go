package password

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ChangePassword(ctx context.Context, userID string, in models.ChangePasswordInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPasswordHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		input          *models.ChangePasswordInput
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "changed",
			body:           `{"newPassword":"n","newPasswordConfirm":"n"}`,
			input:          &models.ChangePasswordInput{NewPassword: "n", NewPasswordConfirm: "n"},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"u1"`,
		},
		{
			name:           "wrong current password",
			body:           `{"currentPassword":"bad","newPassword":"n","newPasswordConfirm":"n"}`,
			input:          &models.ChangePasswordInput{CurrentPassword: "bad", NewPassword: "n", NewPasswordConfirm: "n"},
			mockErr:        models.NewError(models.ErrUnauthorized, "invalid_current_password"),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid_current_password"`,
		},
		{
			name:           "mismatch",
			body:           `{"newPassword":"a","newPasswordConfirm":"b"}`,
			input:          &models.ChangePasswordInput{NewPassword: "a", NewPasswordConfirm: "b"},
			mockErr:        models.NewError(models.ErrValidation, "passwords_must_match"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"passwords_must_match"`,
		},
		{
			name:           "broken json",
			body:           `[`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.input != nil {
				var res *models.User
				if tt.mockErr == nil {
					res = &models.User{ID: "u1"}
				}
				svc.On("ChangePassword", mock.Anything, "u1", *tt.input).Return(res, tt.mockErr)
			}

			req := httptest.NewRequest(http.MethodPut, "/users/u1/password/update", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "u1")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			New(sl.NewDiscardLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
