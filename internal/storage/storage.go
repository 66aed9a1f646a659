// Package storage описывает контракт хранилища пользователей, упражнений
// и их подходов, который используют сервисы. Реализации находятся в
// подпакетах postgres и memory.
package storage

import (
	"context"
	"time"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// Repository — операции над сущностями. Отсутствующая сущность даёт models.ErrNotFound,
// любая ошибка нижележащего хранилища оборачивает models.ErrStorage.
type Repository interface {
	// FindUserByEmail ищет пользователя по email с учётом регистра.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindUserByID возвращает пользователя вместе с упражнениями и последним упражнением.
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	// SaveUser создаёт или обновляет пользователя. История упражнений и
	// lastExerciseId при обновлении не перезаписываются.
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	// DeleteUser удаляет пользователя вместе с его упражнениями и возвращает id
	// других пользователей, у которых одно из этих упражнений было последним.
	DeleteUser(ctx context.Context, id string) ([]string, error)
	// AppendExerciseHistory атомарно дописывает запись в историю и выставляет lastExerciseId.
	AppendExerciseHistory(ctx context.Context, userID string, entry models.HistoryEntry, modified time.Time) (*models.User, error)

	// FindExerciseByID возвращает упражнение вместе с подходами.
	FindExerciseByID(ctx context.Context, id string) (*models.Exercise, error)
	// ListExercises возвращает упражнения пользователя.
	ListExercises(ctx context.Context, userID string) ([]models.Exercise, error)
	// SaveExercise создаёт или обновляет упражнение и его подходы.
	SaveExercise(ctx context.Context, exercise *models.Exercise) (*models.Exercise, error)
	// DeleteExercise удаляет упражнение вместе с подходами и возвращает id
	// пользователей, у которых оно было последним.
	DeleteExercise(ctx context.Context, id string) ([]string, error)
	// DeleteExerciseType удаляет отдельный подход и возвращает id его упражнения.
	DeleteExerciseType(ctx context.Context, id string) (string, error)
}

// TxFunc выполняется внутри транзакции с репозиторием, привязанным к ней.
type TxFunc func(ctx context.Context, repo Repository) error

// Store — репозиторий с поддержкой транзакций.
type Store interface {
	Repository
	// WithinTx выполняет fn в одной транзакции: commit при успехе, rollback при ошибке или панике.
	WithinTx(ctx context.Context, fn TxFunc) error
	Close() error
}
