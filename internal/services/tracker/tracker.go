// Package tracker содержит бизнес-логику регистрации, входа, смены пароля
// и отметки последнего выполненного упражнения с ведением истории.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/last-exercise/internal/cache"
	"github.com/magabrotheeeer/last-exercise/internal/lib/jwt"
	"github.com/magabrotheeeer/last-exercise/internal/lib/password"
	"github.com/magabrotheeeer/last-exercise/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
	"github.com/magabrotheeeer/last-exercise/internal/storage"
)

// Hasher хэширует и проверяет пароли.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Cache инвалидирует закэшированный граф пользователя.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Publisher публикует событие об отмеченном упражнении.
type Publisher interface {
	PublishExerciseRecorded(ctx context.Context, event models.ExerciseRecorded) error
}

// Metrics учитывает результаты операций.
type Metrics interface {
	ObserveOperation(operation string, err error)
}

// Service реализует операции трекера.
type Service struct {
	store           storage.Store
	hasher          Hasher
	tokens          jwt.Maker
	log             *slog.Logger
	cache           Cache
	publisher       Publisher
	metrics         Metrics
	now             func() time.Time
	strictOwnership bool
}

// Option настраивает Service.
type Option func(*Service)

// WithCache задаёт кэш, из которого удаляется граф пользователя после изменений.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher задаёт публикатор событий.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics задаёт сборщик метрик.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStrictOwnership запрещает отмечать чужие упражнения.
func WithStrictOwnership(strict bool) Option {
	return func(s *Service) { s.strictOwnership = strict }
}

// New создаёт сервис трекера.
func New(store storage.Store, hasher Hasher, tokens jwt.Maker, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		cache:     cache.Nop{},
		publisher: rabbitmq.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) observe(operation string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, err)
	}
}

func validationErr(code string) error {
	return models.NewError(models.ErrValidation, code)
}

// Register создаёт пользователя и выдаёт ему токен.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (res *models.AuthResult, err error) {
	const op = "tracker.Register"
	defer func() { s.observe("register", err) }()

	switch {
	case in.Password == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("password_required"))
	case in.PasswordConfirm == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("password_confirm_required"))
	case password.TooLong(in.Password) || password.TooLong(in.PasswordConfirm):
		return nil, fmt.Errorf("%s: %w", op, password.ErrTooLong)
	case !password.Matches(in.Password, in.PasswordConfirm):
		return nil, fmt.Errorf("%s: %w", op, validationErr("passwords_must_match"))
	case strings.TrimSpace(in.Firstname) == "" || strings.TrimSpace(in.Lastname) == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("firstname_and_lastname_required"))
	case strings.TrimSpace(in.Email) == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("email_required"))
	}

	_, err = s.store.FindUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrConflict, "email_already_exist"))
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user, err := s.store.SaveUser(ctx, &models.User{
		Email:           in.Email,
		Firstname:       in.Firstname,
		Lastname:        in.Lastname,
		Password:        &hash,
		ExerciseHistory: []models.HistoryEntry{},
		Created:         now,
		Modified:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID))
	return &models.AuthResult{Token: token, User: user.Sanitized()}, nil
}

// Login проверяет пароль и выдаёт токен.
func (s *Service) Login(ctx context.Context, email, plaintext string) (res *models.AuthResult, err error) {
	const op = "tracker.Login"
	defer func() { s.observe("login", err) }()

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "user_not_found"))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Password == nil || !s.hasher.Verify(plaintext, *user.Password) {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrUnauthorized, "wrong_username_or_password"))
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResult{Token: token, User: user.Sanitized()}, nil
}

// ChangePassword меняет пароль пользователя. Текущий пароль проверяется,
// только если он передан.
func (s *Service) ChangePassword(ctx context.Context, userID string, in models.ChangePasswordInput) (res *models.User, err error) {
	const op = "tracker.ChangePassword"
	defer func() { s.observe("change_password", err) }()

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, userNotFound(err))
	}

	if in.CurrentPassword != "" {
		current, err := s.store.FindUserByEmail(ctx, user.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, userNotFound(err))
		}
		if current.Password == nil || !s.hasher.Verify(in.CurrentPassword, *current.Password) {
			return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrUnauthorized, "invalid_current_password"))
		}
	}

	switch {
	case in.NewPassword == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("password_is_required"))
	case in.NewPasswordConfirm == "":
		return nil, fmt.Errorf("%s: %w", op, validationErr("password_confirm_is_required"))
	case password.TooLong(in.NewPassword) || password.TooLong(in.NewPasswordConfirm):
		return nil, fmt.Errorf("%s: %w", op, password.ErrTooLong)
	case !password.Matches(in.NewPassword, in.NewPasswordConfirm):
		return nil, fmt.Errorf("%s: %w", op, validationErr("passwords_must_match"))
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var saved *models.User
	err = s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		fresh, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return userNotFound(err)
		}
		fresh.Password = &hash
		fresh.Modified = s.now().UTC()
		saved, err = repo.SaveUser(ctx, fresh)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	s.log.Info("password changed", slog.String("user_id", userID))
	return saved.Sanitized(), nil
}

// RecordLastExercise отмечает упражнение как последнее выполненное: обновляет его
// длительность, дописывает запись {сегодня, exerciseId} в историю и выставляет
// lastExerciseId. Все изменения выполняются в одной транзакции. Повторный вызов
// с теми же аргументами добавляет в историю вторую такую же запись.
func (s *Service) RecordLastExercise(ctx context.Context, userID, exerciseID, duration string) (res *models.User, err error) {
	const op = "tracker.RecordLastExercise"
	defer func() { s.observe("record_last_exercise", err) }()

	now := s.now()
	entry := models.HistoryEntry{
		Date:       now.UTC().Format(models.HistoryDateLayout),
		ExerciseID: exerciseID,
	}

	var saved *models.User
	err = s.store.WithinTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		user, err := repo.FindUserByID(ctx, userID)
		if err != nil {
			return userNotFound(err)
		}

		exercise, err := repo.FindExerciseByID(ctx, exerciseID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.NewError(models.ErrNotFound, "exercise_not_found")
			}
			return err
		}
		if s.strictOwnership && exercise.UserID != user.ID {
			return models.NewError(models.ErrForbidden, "exercise_not_owned")
		}

		exercise.Duration = duration
		exercise.Modified = now.UTC()
		if _, err = repo.SaveExercise(ctx, exercise); err != nil {
			return err
		}

		saved, err = repo.AppendExerciseHistory(ctx, user.ID, entry, now.UTC())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, userID)
	event := models.ExerciseRecorded{
		UserID:     userID,
		ExerciseID: exerciseID,
		Duration:   duration,
		Date:       entry.Date,
		RecordedAt: now.UTC(),
	}
	if err := s.publisher.PublishExerciseRecorded(ctx, event); err != nil {
		s.log.Warn("failed to publish exercise recorded event", sl.Err(err), slog.String("user_id", userID))
	}

	s.log.Info("last exercise recorded",
		slog.String("user_id", userID),
		slog.String("exercise_id", exerciseID),
		slog.String("date", entry.Date),
	)
	return saved.Sanitized(), nil
}

// ValidateToken возвращает идентификатор пользователя из токена.
func (s *Service) ValidateToken(_ context.Context, token string) (string, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, cache.UserKey(userID)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.Err(err), slog.String("user_id", userID))
	}
}

func userNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) && models.Code(err) == "" {
		return models.NewError(models.ErrNotFound, "user_not_found")
	}
	return err
}
