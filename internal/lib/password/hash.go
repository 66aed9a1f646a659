// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hasher создает bcrypt-хеш пароля с настраиваемой стоимостью и проверяет
// введённый пароль против сохранённого хеша. Matches сравнивает пароль
// с подтверждением.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// DefaultCost — стоимость bcrypt по умолчанию (10 раундов).
const DefaultCost = bcrypt.DefaultCost

// MaxLength — наибольшая длина пароля в байтах, которую принимает bcrypt.
const MaxLength = 72

// ErrTooLong возвращается для паролей длиннее MaxLength.
var ErrTooLong = models.NewError(models.ErrValidation, "password_too_long")

// TooLong сообщает, что пароль не поместится в bcrypt.
func TooLong(plaintext string) bool {
	return len(plaintext) > MaxLength
}

// Hasher хеширует и проверяет пароли с фиксированной стоимостью.
type Hasher struct {
	cost int
}

// NewHasher создает Hasher. Нулевая стоимость означает DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	const op = "password.NewHasher"
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s: cost %d out of range [%d, %d]", op, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func (h *Hasher) Hash(plaintext string) (string, error) {
	const op = "password.Hash"
	if TooLong(plaintext) {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает введённый пароль с bcrypt‑хэшем.
//
// Никогда не возвращает ошибку: при несовпадении или повреждённом хэше возвращает false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Matches проверяет, что пароль совпадает с подтверждением.
// Пустой пароль никогда не совпадает.
func Matches(candidate, confirmation string) bool {
	if candidate == "" {
		return false
	}
	return candidate == confirmation
}
