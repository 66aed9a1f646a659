package login

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if res := args.Get(0); res != nil {
		return res.(*models.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupMock    func(*ServiceMock)
		expectedCode int
		expectedBody string
	}{
		{
			name: "successful login",
			body: `{"email":"a@b.c","password":"secret"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@b.c", "secret").Return(&models.AuthResult{
					Token: "tok",
					User:  &models.User{ID: "u1", Email: "a@b.c"},
				}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `"token":"tok"`,
		},
		{
			name:         "missing password",
			body:         `{"email":"a@b.c"}`,
			setupMock:    func(*ServiceMock) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `field Password is a required field`,
		},
		{
			name:         "broken json",
			body:         `{"email":`,
			setupMock:    func(*ServiceMock) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `"error":"invalid request body"`,
		},
		{
			name: "unknown email",
			body: `{"email":"x@y.z","password":"secret"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "x@y.z", "secret").
					Return(nil, models.NewError(models.ErrNotFound, "user_not_found"))
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `"error":"user_not_found"`,
		},
		{
			name: "wrong password",
			body: `{"email":"a@b.c","password":"nope"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "a@b.c", "nope").
					Return(nil, models.NewError(models.ErrUnauthorized, "wrong_username_or_password"))
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `"error":"wrong_username_or_password"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			h := New(sl.NewDiscardLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)

			var got map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			svc.AssertExpectations(t)
		})
	}
}
