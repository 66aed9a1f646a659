package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	valid := Request{
		Email:           "a@b.c",
		Password:        "secret",
		PasswordConfirm: "secret",
		Firstname:       "Ann",
		Lastname:        "Lee",
	}
	validInput := models.RegisterInput{
		Email:           "a@b.c",
		Password:        "secret",
		PasswordConfirm: "secret",
		Firstname:       "Ann",
		Lastname:        "Lee",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockRes        *models.AuthResult
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:        "valid registration",
			requestBody: valid,
			mockRes: &models.AuthResult{
				Token: "tok",
				User:  &models.User{ID: "u1", Email: "a@b.c", ExerciseHistory: []models.HistoryEntry{}},
			},
			callService:    true,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "passwords mismatch",
			requestBody:    valid,
			mockErr:        models.NewError(models.ErrValidation, "passwords_must_match"),
			callService:    true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "passwords_must_match",
			wantStatus:     "Error",
		},
		{
			name:           "email already exists",
			requestBody:    valid,
			mockErr:        models.NewError(models.ErrConflict, "email_already_exist"),
			callService:    true,
			wantStatusCode: http.StatusConflict,
			wantError:      "email_already_exist",
			wantStatus:     "Error",
		},
		{
			name:           "storage failure",
			requestBody:    valid,
			mockErr:        errors.New("db down"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			handler := New(sl.NewDiscardLogger(), svc)
			if tt.callService {
				svc.On("Register", mock.Anything, validInput).Return(tt.mockRes, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				assert.Nil(t, got["data"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "tok", data["token"])
				user, _ := data["user"].(map[string]any)
				assert.Equal(t, "u1", user["id"])
				assert.NotContains(t, user, "password")
			}

			svc.AssertExpectations(t)
		})
	}
}
