package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", models.NewError(models.ErrValidation, "passwords_must_match"), http.StatusBadRequest, "passwords_must_match"},
		{"conflict", fmt.Errorf("op: %w", models.NewError(models.ErrConflict, "email_already_exist")), http.StatusConflict, "email_already_exist"},
		{"unauthorized", models.NewError(models.ErrUnauthorized, "wrong_username_or_password"), http.StatusUnauthorized, "wrong_username_or_password"},
		{"invalid token", fmt.Errorf("jwt: %w", models.ErrInvalidToken), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", models.NewError(models.ErrForbidden, "exercise_not_owned"), http.StatusForbidden, "exercise_not_owned"},
		{"not found", models.NewError(models.ErrNotFound, "user_not_found"), http.StatusNotFound, "user_not_found"},
		{"not found without code", fmt.Errorf("op: %w", models.ErrNotFound), http.StatusNotFound, "not found"},
		{"storage", fmt.Errorf("op: %w: %w", models.ErrStorage, errors.New("connection refused")), http.StatusInternalServerError, "internal error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, body.Status)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestRenderError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RenderError(rr, req, models.NewError(models.ErrNotFound, "exercise_not_found"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "exercise_not_found", body.Error)
}

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]any{"id": "1"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
}
