package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

const exerciseQuery = `SELECT e.id, e.name, e.user_id, e.duration, e.card_color, e.text_color,
		e."order", e.created, e.modified,
		t.id, t.name, t.series_card_number, t.series_cards_color, t.card_text_color,
		t."order", t.number_of_repetitions, t.created, t.modified
	FROM exercises e
	LEFT JOIN exercise_types t ON t.exercise_id = e.id
	WHERE %s
	ORDER BY e."order", e.created, e.id, t."order", t.created`

// queryExercises выбирает упражнения вместе с подходами и группирует строки по упражнению,
// сохраняя порядок выдачи.
func (r *Repository) queryExercises(ctx context.Context, where string, arg any) ([]models.Exercise, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(exerciseQuery, where), arg)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Exercise{}
	index := map[string]int{}
	for rows.Next() {
		var (
			e                             models.Exercise
			duration                      sql.NullString
			tID, tName, tColor, tText     sql.NullString
			tSeries, tOrder, tRepetitions sql.NullInt64
			tCreated, tModified           sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.UserID, &duration, &e.CardColor, &e.TextColor,
			&e.Order, &e.Created, &e.Modified,
			&tID, &tName, &tSeries, &tColor, &tText, &tOrder, &tRepetitions, &tCreated, &tModified); err != nil {
			return nil, err
		}

		i, ok := index[e.ID]
		if !ok {
			e.Duration = duration.String
			e.ExerciseTypes = []models.ExerciseType{}
			result = append(result, e)
			i = len(result) - 1
			index[e.ID] = i
		}
		if !tID.Valid {
			continue
		}
		result[i].ExerciseTypes = append(result[i].ExerciseTypes, models.ExerciseType{
			ID:                  tID.String,
			Name:                tName.String,
			ExerciseID:          e.ID,
			SeriesCardNumber:    nullInt(tSeries),
			SeriesCardsColor:    tColor.String,
			CardTextColor:       tText.String,
			Order:               int(tOrder.Int64),
			NumberOfRepetitions: nullInt(tRepetitions),
			Created:             tCreated.Time,
			Modified:            tModified.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// FindExerciseByID возвращает упражнение с подходами.
func (r *Repository) FindExerciseByID(ctx context.Context, id string) (*models.Exercise, error) {
	const op = "storage.postgres.FindExerciseByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	exercises, err := r.queryExercises(ctx, "e.id = $1", id)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return &exercises[0], nil
}

// ListExercises возвращает упражнения пользователя, упорядоченные по order.
func (r *Repository) ListExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	const op = "storage.postgres.ListExercises"
	if !validID(userID) {
		return []models.Exercise{}, nil
	}

	exercises, err := r.queryExercises(ctx, "e.user_id = $1", userID)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return exercises, nil
}

// SaveExercise вставляет или обновляет упражнение и его подходы.
// Владелец упражнения после создания не меняется.
func (r *Repository) SaveExercise(ctx context.Context, exercise *models.Exercise) (*models.Exercise, error) {
	const op = "storage.postgres.SaveExercise"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if !validID(exercise.UserID) {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "user_not_found"))
	}

	now := time.Now().UTC()
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	} else if !validID(exercise.ID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if exercise.Created.IsZero() {
		exercise.Created = now
	}
	if exercise.Modified.IsZero() {
		exercise.Modified = now
	}
	exercise.ApplyDefaults()

	query := `INSERT INTO exercises (id, name, user_id, duration, card_color, text_color, "order", created, modified)
			  VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
			  ON CONFLICT (id) DO UPDATE SET
			      name = EXCLUDED.name,
			      duration = EXCLUDED.duration,
			      card_color = EXCLUDED.card_color,
			      text_color = EXCLUDED.text_color,
			      "order" = EXCLUDED."order",
			      modified = EXCLUDED.modified`
	if _, err := r.db.ExecContext(ctx, query,
		exercise.ID, exercise.Name, exercise.UserID, exercise.Duration, exercise.CardColor,
		exercise.TextColor, exercise.Order, exercise.Created, exercise.Modified); err != nil {
		return nil, wrapErr(op, err)
	}

	typeQuery := `INSERT INTO exercise_types (id, name, exercise_id, series_card_number, series_cards_color,
			          card_text_color, "order", number_of_repetitions, created, modified)
			      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			      ON CONFLICT (id) DO UPDATE SET
			          name = EXCLUDED.name,
			          series_card_number = EXCLUDED.series_card_number,
			          series_cards_color = EXCLUDED.series_cards_color,
			          card_text_color = EXCLUDED.card_text_color,
			          "order" = EXCLUDED."order",
			          number_of_repetitions = EXCLUDED.number_of_repetitions,
			          modified = EXCLUDED.modified`
	for i := range exercise.ExerciseTypes {
		t := &exercise.ExerciseTypes[i]
		if !validID(t.ID) {
			t.ID = uuid.NewString()
		}
		t.ExerciseID = exercise.ID
		if t.Created.IsZero() {
			t.Created = now
		}
		t.Modified = exercise.Modified
		if _, err := r.db.ExecContext(ctx, typeQuery,
			t.ID, t.Name, t.ExerciseID, t.SeriesCardNumber, t.SeriesCardsColor, t.CardTextColor,
			t.Order, t.NumberOfRepetitions, t.Created, t.Modified); err != nil {
			return nil, wrapErr(op, err)
		}
	}

	return r.FindExerciseByID(ctx, exercise.ID)
}

// DeleteExercise удаляет упражнение. Подходы удаляются каскадно,
// а ссылки last_exercise_id обнуляются. Возвращает id пользователей,
// у которых ссылка была обнулена.
func (r *Repository) DeleteExercise(ctx context.Context, id string) ([]string, error) {
	const op = "storage.postgres.DeleteExercise"
	if !validID(id) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	rows, err := r.db.QueryContext(ctx,
		`UPDATE users SET last_exercise_id = NULL WHERE last_exercise_id = $1 RETURNING id`, id)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	cleared, err := scanIDs(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	if err := checkAffected(op, res); err != nil {
		return nil, err
	}
	return cleared, nil
}

// DeleteExerciseType удаляет подход и возвращает id его упражнения.
func (r *Repository) DeleteExerciseType(ctx context.Context, id string) (string, error) {
	const op = "storage.postgres.DeleteExerciseType"
	if !validID(id) {
		return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	var exerciseID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM exercise_types WHERE id = $1 RETURNING exercise_id`, id).Scan(&exerciseID)
	if err != nil {
		return "", wrapErr(op, err)
	}
	return exerciseID, nil
}
