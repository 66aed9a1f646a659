// Package exercises содержит создание, чтение, изменение и удаление упражнений
// и их подходов.
package exercises

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/last-exercise/internal/cache"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
	"github.com/magabrotheeeer/last-exercise/internal/storage"
)

// Cache инвалидирует закэшированный граф владельца упражнения.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service реализует CRUD упражнений.
type Service struct {
	store storage.Store
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый экземпляр Service. nil-кэш заменяется на cache.Nop.
func New(store storage.Store, c Cache, log *slog.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		store: store,
		cache: c,
		log:   log,
		now:   time.Now,
	}
}

func notFound(err error) error {
	if errors.Is(err, models.ErrNotFound) && models.Code(err) == "" {
		return models.NewError(models.ErrNotFound, "exercise_not_found")
	}
	return err
}

// Create создаёт упражнение вместе с подходами.
func (s *Service) Create(ctx context.Context, userID string, in models.ExerciseInput) (*models.Exercise, error) {
	const op = "exercises.Create"
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "name_required"))
	}
	if in.UserID != "" {
		userID = in.UserID
	}

	now := s.now().UTC()
	exercise := &models.Exercise{
		Name:          in.Name,
		UserID:        userID,
		Duration:      in.Duration,
		CardColor:     in.CardColor,
		TextColor:     in.TextColor,
		Order:         in.Order,
		ExerciseTypes: in.ExerciseTypes,
		Created:       now,
		Modified:      now,
	}
	for i := range exercise.ExerciseTypes {
		exercise.ExerciseTypes[i].ID = ""
	}

	var saved *models.Exercise
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		if _, err := repo.FindUserByID(ctx, userID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewError(models.ErrNotFound, "user_not_found")
			}
			return err
		}
		var err error
		saved, err = repo.SaveExercise(ctx, exercise)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, saved.UserID)
	s.log.Info("exercise created", slog.String("exercise_id", saved.ID), slog.String("user_id", saved.UserID))
	return saved, nil
}

// Get возвращает упражнение с подходами.
func (s *Service) Get(ctx context.Context, id string) (*models.Exercise, error) {
	const op = "exercises.Get"
	e, err := s.store.FindExerciseByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return e, nil
}

// List возвращает упражнения пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]models.Exercise, error) {
	const op = "exercises.List"
	list, err := s.store.ListExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update изменяет упражнение. Подходы с известным id обновляются, остальные создаются.
func (s *Service) Update(ctx context.Context, id string, in models.ExerciseInput) (*models.Exercise, error) {
	const op = "exercises.Update"
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "name_required"))
	}

	var saved *models.Exercise
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		existing, err := repo.FindExerciseByID(ctx, id)
		if err != nil {
			return notFound(err)
		}

		existing.Name = in.Name
		existing.Duration = in.Duration
		existing.CardColor = in.CardColor
		existing.TextColor = in.TextColor
		existing.Order = in.Order
		existing.Modified = s.now().UTC()
		if in.ExerciseTypes != nil {
			known := make(map[string]bool, len(existing.ExerciseTypes))
			for _, t := range existing.ExerciseTypes {
				known[t.ID] = true
			}
			types := make([]models.ExerciseType, len(in.ExerciseTypes))
			for i, t := range in.ExerciseTypes {
				if !known[t.ID] {
					t.ID = ""
				}
				types[i] = t
			}
			existing.ExerciseTypes = types
		}

		saved, err = repo.SaveExercise(ctx, existing)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, saved.UserID)
	return saved, nil
}

// Delete удаляет упражнение вместе с подходами.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "exercises.Delete"

	var ownerID string
	var cleared []string
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		e, err := repo.FindExerciseByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		ownerID = e.UserID
		cleared, err = repo.DeleteExercise(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Упражнение могло быть последним и у других пользователей.
	s.invalidate(ctx, ownerID)
	for _, userID := range cleared {
		if userID != ownerID {
			s.invalidate(ctx, userID)
		}
	}
	s.log.Info("exercise deleted", slog.String("exercise_id", id))
	return nil
}

// DeleteType удаляет подход.
func (s *Service) DeleteType(ctx context.Context, id string) error {
	const op = "exercises.DeleteType"

	var ownerID string
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		exerciseID, err := repo.DeleteExerciseType(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewError(models.ErrNotFound, "exercise_type_not_found")
			}
			return err
		}
		e, err := repo.FindExerciseByID(ctx, exerciseID)
		if err != nil {
			return err
		}
		ownerID = e.UserID
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, cache.UserKey(userID)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.Err(err), slog.String("user_id", userID))
	}
}
