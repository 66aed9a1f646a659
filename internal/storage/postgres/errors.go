package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

const usersEmailConstraint = "users_email_key"

// wrapErr переводит ошибку драйвера в доменный вид.
func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			code := "already_exists"
			if pgErr.ConstraintName == usersEmailConstraint {
				code = "email_already_exist"
			}
			return fmt.Errorf("%s: %w", op, models.NewError(models.ErrConflict, code))
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "referenced_entity_not_found"))
		}
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStorage, err)
}

// validID сообщает, может ли строка быть первичным ключом (uuid).
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
