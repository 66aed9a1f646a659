package sl_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	attr := sl.Err(nil)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "", attr.Value.String())
}

func TestCode(t *testing.T) {
	err := fmt.Errorf("op: %w", models.NewError(models.ErrValidation, "passwords_must_match"))
	assert.Equal(t, "passwords_must_match", sl.Code(err).Value.String())
	assert.Equal(t, "", sl.Code(errors.New("plain")).Value.String())
}

func TestSetupLogger(t *testing.T) {
	ctx := t.Context()
	assert.True(t, sl.SetupLogger(sl.EnvLocal).Enabled(ctx, slog.LevelDebug))
	assert.False(t, sl.SetupLogger(sl.EnvProd).Enabled(ctx, slog.LevelDebug))
	assert.False(t, sl.NewDiscardLogger().Enabled(ctx, slog.LevelDebug))
}
