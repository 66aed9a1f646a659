package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func TestTokenServer_ValidateToken(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		mockSetup    func(*MockValidator)
		expectedID   string
		expectedCode codes.Code
	}{
		{
			name:  "valid token",
			token: "good",
			mockSetup: func(m *MockValidator) {
				m.On("ValidateToken", mock.Anything, "good").Return("user-1", nil)
			},
			expectedID:   "user-1",
			expectedCode: codes.OK,
		},
		{
			name:  "expired token",
			token: "old",
			mockSetup: func(m *MockValidator) {
				m.On("ValidateToken", mock.Anything, "old").Return("", models.ErrInvalidToken)
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:  "validator failure is still unauthenticated",
			token: "x",
			mockSetup: func(m *MockValidator) {
				m.On("ValidateToken", mock.Anything, "x").Return("", errors.New("boom"))
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:         "empty token",
			token:        "",
			mockSetup:    func(*MockValidator) {},
			expectedCode: codes.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := new(MockValidator)
			tt.mockSetup(v)
			srv := NewTokenServer(v, sl.NewDiscardLogger())

			resp, err := srv.ValidateToken(context.Background(), wrapperspb.String(tt.token))

			if tt.expectedCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, status.Code(err))
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, resp.GetValue())
			}
			v.AssertExpectations(t)
		})
	}
}
