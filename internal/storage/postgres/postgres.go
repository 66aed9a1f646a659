// Package postgres реализует хранилище на основе PostgreSQL (database/sql + драйвер pgx).
// Предоставляет методы создания, чтения, обновления и удаления пользователей,
// упражнений и подходов, а также выполнение нескольких операций в одной транзакции.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/last-exercise/internal/storage"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Встроенный Repository работает вне транзакции.
type Storage struct {
	db *sql.DB
	*Repository
}

var _ storage.Store = (*Storage)(nil)

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDB(db), nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{
		db:         db,
		Repository: NewRepository(db),
	}
}

// DB возвращает соединение, например для миграций.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// WithinTx выполняет fn с репозиторием, привязанным к одной транзакции.
func (s *Storage) WithinTx(ctx context.Context, fn storage.TxFunc) error {
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewRepository(tx))
	})
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.db.Close()
}
