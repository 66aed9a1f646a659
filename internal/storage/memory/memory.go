// Package memory реализует хранилище в памяти процесса. Используется в тестах
// и при запуске без базы данных (storage.driver: memory).
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/last-exercise/internal/models"
	"github.com/magabrotheeeer/last-exercise/internal/storage"
)

// Storage хранит данные в map-ах. Все операции, включая транзакции,
// выполняются последовательно под одной блокировкой.
type Storage struct {
	mu   sync.Mutex
	repo *repository
}

var _ storage.Store = (*Storage)(nil)

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{repo: newRepository()}
}

// WithinTx выполняет fn под блокировкой хранилища. При ошибке или панике
// состояние возвращается к снимку, сделанному до вызова.
func (s *Storage) WithinTx(ctx context.Context, fn storage.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.repo.clone()
	defer func() {
		if p := recover(); p != nil {
			s.repo = snapshot
			panic(p)
		}
		if err != nil {
			s.repo = snapshot
		}
	}()

	return fn(ctx, s.repo)
}

// Close ничего не делает.
func (s *Storage) Close() error { return nil }

// Ping всегда успешен.
func (s *Storage) Ping(context.Context) error { return nil }

// FindUserByEmail ищет пользователя по точному совпадению email.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.FindUserByEmail(ctx, email)
}

// FindUserByID возвращает пользователя с упражнениями.
func (s *Storage) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.FindUserByID(ctx, id)
}

// SaveUser создаёт или обновляет пользователя.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SaveUser(ctx, user)
}

// DeleteUser удаляет пользователя и его упражнения.
func (s *Storage) DeleteUser(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteUser(ctx, id)
}

// AppendExerciseHistory дописывает запись в историю и выставляет lastExerciseId.
func (s *Storage) AppendExerciseHistory(ctx context.Context, userID string, entry models.HistoryEntry, modified time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.AppendExerciseHistory(ctx, userID, entry, modified)
}

// FindExerciseByID возвращает упражнение с подходами.
func (s *Storage) FindExerciseByID(ctx context.Context, id string) (*models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.FindExerciseByID(ctx, id)
}

// ListExercises возвращает упражнения пользователя в порядке order.
func (s *Storage) ListExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.ListExercises(ctx, userID)
}

// SaveExercise создаёт или обновляет упражнение вместе с подходами.
func (s *Storage) SaveExercise(ctx context.Context, exercise *models.Exercise) (*models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.SaveExercise(ctx, exercise)
}

// DeleteExercise удаляет упражнение и обнуляет ссылки на него.
func (s *Storage) DeleteExercise(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteExercise(ctx, id)
}

// DeleteExerciseType удаляет подход.
func (s *Storage) DeleteExerciseType(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteExerciseType(ctx, id)
}

// repository хранит состояние без собственной синхронизации.
type repository struct {
	users     map[string]models.User
	exercises map[string]models.Exercise
	types     map[string]models.ExerciseType
}

func newRepository() *repository {
	return &repository{
		users:     map[string]models.User{},
		exercises: map[string]models.Exercise{},
		types:     map[string]models.ExerciseType{},
	}
}

func (r *repository) clone() *repository {
	c := newRepository()
	for k, u := range r.users {
		u.ExerciseHistory = slices.Clone(u.ExerciseHistory)
		c.users[k] = u
	}
	for k, e := range r.exercises {
		c.exercises[k] = e
	}
	for k, t := range r.types {
		c.types[k] = t
	}
	return c
}

func validID(id string) bool {
	return uuid.Validate(id) == nil
}

func cloneUser(u models.User) *models.User {
	u.ExerciseHistory = slices.Clone(u.ExerciseHistory)
	if u.ExerciseHistory == nil {
		u.ExerciseHistory = []models.HistoryEntry{}
	}
	u.Password = clonePtr(u.Password)
	u.GoogleID = clonePtr(u.GoogleID)
	u.LastExerciseID = clonePtr(u.LastExerciseID)
	return &u
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (r *repository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage.memory.FindUserByEmail"
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
}

func (r *repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.memory.FindUserByID"
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	res := cloneUser(u)
	res.Exercises, _ = r.ListExercises(ctx, id)
	if res.LastExerciseID != nil {
		if last, err := r.FindExerciseByID(ctx, *res.LastExerciseID); err == nil {
			res.LastExercise = last
		}
	}
	return res, nil
}

func (r *repository) SaveUser(_ context.Context, user *models.User) (*models.User, error) {
	const op = "storage.memory.SaveUser"
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	} else if !validID(user.ID) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	for id, other := range r.users {
		if id != user.ID && other.Email == user.Email {
			return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrConflict, "email_already_exist"))
		}
	}
	existing, exists := r.users[user.ID]
	if !exists && user.LastExerciseID != nil {
		if _, ok := r.exercises[*user.LastExerciseID]; !ok {
			return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "referenced_entity_not_found"))
		}
	}
	if user.Created.IsZero() {
		user.Created = now
	}
	if user.Modified.IsZero() {
		user.Modified = now
	}

	stored := *user
	stored.Exercises = nil
	stored.LastExercise = nil
	stored.ExerciseHistory = []models.HistoryEntry{}
	stored.Password = clonePtr(user.Password)
	stored.GoogleID = clonePtr(user.GoogleID)
	stored.LastExerciseID = clonePtr(user.LastExerciseID)
	if exists {
		stored.Created = existing.Created
		stored.ExerciseHistory = existing.ExerciseHistory
		stored.LastExerciseID = clonePtr(existing.LastExerciseID)
	}
	r.users[user.ID] = stored

	res := cloneUser(stored)
	res.Exercises = user.Exercises
	if res.LastExerciseID != nil {
		if last, ok := r.exercises[*res.LastExerciseID]; ok {
			res.LastExercise = r.withTypes(last)
		}
	}
	return res, nil
}

func (r *repository) DeleteUser(ctx context.Context, id string) ([]string, error) {
	const op = "storage.memory.DeleteUser"
	if _, ok := r.users[id]; !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	cleared := []string{}
	for eid, e := range r.exercises {
		if e.UserID != id {
			continue
		}
		ids, _ := r.DeleteExercise(ctx, eid)
		for _, uid := range ids {
			if uid != id && !slices.Contains(cleared, uid) {
				cleared = append(cleared, uid)
			}
		}
	}
	delete(r.users, id)
	slices.Sort(cleared)
	return cleared, nil
}

func (r *repository) AppendExerciseHistory(ctx context.Context, userID string, entry models.HistoryEntry, modified time.Time) (*models.User, error) {
	const op = "storage.memory.AppendExerciseHistory"
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if _, ok := r.exercises[entry.ExerciseID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, models.NewError(models.ErrNotFound, "referenced_entity_not_found"))
	}

	u.ExerciseHistory = append(slices.Clone(u.ExerciseHistory), entry)
	id := entry.ExerciseID
	u.LastExerciseID = &id
	u.Modified = modified
	r.users[userID] = u
	return r.FindUserByID(ctx, userID)
}

func (r *repository) FindExerciseByID(_ context.Context, id string) (*models.Exercise, error) {
	const op = "storage.memory.FindExerciseByID"
	e, ok := r.exercises[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return r.withTypes(e), nil
}

func (r *repository) withTypes(e models.Exercise) *models.Exercise {
	e.ExerciseTypes = []models.ExerciseType{}
	for _, t := range r.types {
		if t.ExerciseID == e.ID {
			t.SeriesCardNumber = clonePtr(t.SeriesCardNumber)
			t.NumberOfRepetitions = clonePtr(t.NumberOfRepetitions)
			e.ExerciseTypes = append(e.ExerciseTypes, t)
		}
	}
	slices.SortFunc(e.ExerciseTypes, func(a, b models.ExerciseType) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), a.Created.Compare(b.Created), cmp.Compare(a.ID, b.ID))
	})
	return &e
}

func (r *repository) ListExercises(_ context.Context, userID string) ([]models.Exercise, error) {
	res := []models.Exercise{}
	for _, e := range r.exercises {
		if e.UserID == userID {
			res = append(res, *r.withTypes(e))
		}
	}
	slices.SortFunc(res, func(a, b models.Exercise) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), a.Created.Compare(b.Created), cmp.Compare(a.ID, b.ID))
	})
	return res, nil
}

func (r *repository) SaveExercise(ctx context.Context, exercise *models.Exercise) (*models.Exercise, error) {
	const op = "storage.memory.SaveExercise"
	if _, ok := r.users[exercise.UserID]; !ok {
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

	stored := *exercise
	stored.ExerciseTypes = nil
	if existing, ok := r.exercises[exercise.ID]; ok {
		stored.UserID = existing.UserID
		stored.Created = existing.Created
	}
	r.exercises[exercise.ID] = stored

	for i := range exercise.ExerciseTypes {
		t := exercise.ExerciseTypes[i]
		if !validID(t.ID) {
			t.ID = uuid.NewString()
		}
		t.ExerciseID = exercise.ID
		if existing, ok := r.types[t.ID]; ok {
			t.Created = existing.Created
		} else if t.Created.IsZero() {
			t.Created = now
		}
		t.Modified = exercise.Modified
		t.SeriesCardNumber = clonePtr(t.SeriesCardNumber)
		t.NumberOfRepetitions = clonePtr(t.NumberOfRepetitions)
		exercise.ExerciseTypes[i] = t
		r.types[t.ID] = t
	}

	return r.FindExerciseByID(ctx, exercise.ID)
}

func (r *repository) DeleteExercise(_ context.Context, id string) ([]string, error) {
	const op = "storage.memory.DeleteExercise"
	if _, ok := r.exercises[id]; !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	for tid, t := range r.types {
		if t.ExerciseID == id {
			delete(r.types, tid)
		}
	}
	cleared := []string{}
	for uid, u := range r.users {
		if u.LastExerciseID != nil && *u.LastExerciseID == id {
			u.LastExerciseID = nil
			r.users[uid] = u
			cleared = append(cleared, uid)
		}
	}
	delete(r.exercises, id)
	slices.Sort(cleared)
	return cleared, nil
}

func (r *repository) DeleteExerciseType(_ context.Context, id string) (string, error) {
	const op = "storage.memory.DeleteExerciseType"
	t, ok := r.types[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	delete(r.types, id)
	return t.ExerciseID, nil
}
