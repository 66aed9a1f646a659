package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// Repository реализует storage.Repository поверх DBTX.
type Repository struct {
	db DBTX
}

// NewRepository создаёт репозиторий над соединением или транзакцией.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, google_id, email, firstname, lastname, password,
	last_exercise_id, exercise_history, created, modified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                                  models.User
		googleID, password, lastExerciseID sql.NullString
		history                            []byte
	)
	if err := row.Scan(&u.ID, &googleID, &u.Email, &u.Firstname, &u.Lastname, &password,
		&lastExerciseID, &history, &u.Created, &u.Modified); err != nil {
		return nil, err
	}
	u.GoogleID = nullString(googleID)
	u.Password = nullString(password)
	u.LastExerciseID = nullString(lastExerciseID)

	u.ExerciseHistory = []models.HistoryEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &u.ExerciseHistory); err != nil {
			return nil, fmt.Errorf("decode exercise history: %w", err)
		}
	}
	return &u, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// FindUserByEmail возвращает пользователя по email без упражнений.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.FindUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// FindUserByID возвращает пользователя с его упражнениями и последним упражнением.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgres.FindUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}

	exercises, err := r.ListExercises(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.Exercises = exercises

	if u.LastExerciseID != nil {
		for i := range exercises {
			if exercises[i].ID == *u.LastExerciseID {
				last := exercises[i]
				u.LastExercise = &last
				break
			}
		}
		if u.LastExercise == nil {
			last, err := r.FindExerciseByID(ctx, *u.LastExerciseID)
			if err == nil {
				u.LastExercise = last
			}
		}
	}
	return u, nil
}

// SaveUser вставляет нового пользователя или обновляет существующего.
// При обновлении колонки exercise_history и last_exercise_id не изменяются:
// их пишет только AppendExerciseHistory.
func (r *Repository) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "storage.postgres.SaveUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	} else if !validID(user.ID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if user.Created.IsZero() {
		user.Created = now
	}
	if user.Modified.IsZero() {
		user.Modified = now
	}

	query := `INSERT INTO users (id, google_id, email, firstname, lastname, password,
			      last_exercise_id, created, modified)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (id) DO UPDATE SET
			      google_id = EXCLUDED.google_id,
			      email = EXCLUDED.email,
			      firstname = EXCLUDED.firstname,
			      lastname = EXCLUDED.lastname,
			      password = EXCLUDED.password,
			      modified = EXCLUDED.modified
			  RETURNING ` + userColumns
	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.GoogleID, user.Email, user.Firstname, user.Lastname, user.Password,
		user.LastExerciseID, user.Created, user.Modified))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	saved.Exercises = user.Exercises
	if saved.LastExerciseID != nil {
		if user.LastExercise != nil && user.LastExercise.ID == *saved.LastExerciseID {
			saved.LastExercise = user.LastExercise
		} else if last, err := r.FindExerciseByID(ctx, *saved.LastExerciseID); err == nil {
			saved.LastExercise = last
		}
	}
	return saved, nil
}

// DeleteUser удаляет пользователя. Упражнения удаляются каскадно, ссылки
// на них у других пользователей обнуляются.
func (r *Repository) DeleteUser(ctx context.Context, id string) ([]string, error) {
	const op = "storage.postgres.DeleteUser"
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx,
		`UPDATE users SET last_exercise_id = NULL
		 WHERE id <> $1 AND last_exercise_id IN (SELECT id FROM exercises WHERE user_id = $1)
		 RETURNING id`, id)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	cleared, err := scanIDs(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	if err := checkAffected(op, res); err != nil {
		return nil, err
	}
	return cleared, nil
}

// AppendExerciseHistory дописывает запись в конец истории одним UPDATE,
// поэтому параллельные отметки не теряют друг друга.
func (r *Repository) AppendExerciseHistory(ctx context.Context, userID string, entry models.HistoryEntry, modified time.Time) (*models.User, error) {
	const op = "storage.postgres.AppendExerciseHistory"
	if !validID(userID) || !validID(entry.ExerciseID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	query := `UPDATE users SET
			      exercise_history = COALESCE(exercise_history, '[]'::jsonb) ||
			          jsonb_build_array(jsonb_build_object('date', $2::text, 'exerciseId', $3::text)),
			      last_exercise_id = $4,
			      modified = $5
			  WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, entry.Date, entry.ExerciseID, entry.ExerciseID, modified)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	if err := checkAffected(op, res); err != nil {
		return nil, err
	}
	return r.FindUserByID(ctx, userID)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
