// Package users содержит чтение, изменение и удаление профиля пользователя
// с кэшированием графа пользователя в Redis.
package users

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

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш. Нулевой expiration означает TTL по умолчанию.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции над профилем.
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
		return models.NewError(models.ErrNotFound, "user_not_found")
	}
	return err
}

// Get возвращает пользователя с упражнениями, используя кэш.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.Get"
	key := cache.UserKey(id)

	var cached models.User
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	user = user.Sanitized()

	// Запись, прочитанная до коммита параллельной отметки, может попасть в кэш
	// после её инвалидации. Такой граф живёт не дольше TTL кэша.
	if err := s.cache.Set(ctx, key, user, 0); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return user, nil
}

// Update изменяет email, имя и фамилию.
func (s *Service) Update(ctx context.Context, id string, in models.UpdateUserInput) (*models.User, error) {
	const op = "users.Update"

	switch {
	case strings.TrimSpace(in.Email) == "":
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "email_required"))
	case strings.TrimSpace(in.Firstname) == "" || strings.TrimSpace(in.Lastname) == "":
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrValidation, "firstname_and_lastname_required"))
	}

	var saved *models.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		user, err := repo.FindUserByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if in.Email != user.Email {
			other, err := repo.FindUserByEmail(ctx, in.Email)
			switch {
			case err == nil && other.ID != user.ID:
				return models.NewError(models.ErrConflict, "email_already_exist")
			case err != nil && !errors.Is(err, models.ErrNotFound):
				return err
			}
		}
		user.Email = in.Email
		user.Firstname = in.Firstname
		user.Lastname = in.Lastname
		user.Modified = s.now().UTC()
		saved, err = repo.SaveUser(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)
	s.log.Info("user updated", slog.String("user_id", id))
	return saved.Sanitized(), nil
}

// Delete удаляет пользователя вместе с упражнениями.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "users.Delete"
	cleared, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, notFound(err))
	}
	s.invalidate(ctx, id)
	for _, userID := range cleared {
		s.invalidate(ctx, userID)
	}
	s.log.Info("user deleted", slog.String("user_id", id))
	return nil
}

// History возвращает историю отметок пользователя в порядке добавления.
func (s *Service) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ExerciseHistory == nil {
		return []models.HistoryEntry{}, nil
	}
	return user.ExerciseHistory, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, cache.UserKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cache.UserKey(id)), sl.Err(err))
	}
}
