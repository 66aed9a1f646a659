// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, указатель на последнее
// упражнение и историю тренировок. Структура используется в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// HistoryDateLayout формат календарного дня в записях истории.
const HistoryDateLayout = "2006-01-02"

// HistoryEntry — неизменяемая запись истории: день и упражнение, отмеченное в этот день.
type HistoryEntry struct {
	Date       string `json:"date"`
	ExerciseID string `json:"exerciseId"`
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID              string         `json:"id"`                 // Уникальный идентификатор пользователя
	GoogleID        *string        `json:"googleId,omitempty"` // Идентификатор Google (не используется в логике)
	Email           string         `json:"email"`              // Электронная почта (уникальная, с учётом регистра)
	Firstname       string         `json:"firstname"`
	Lastname        string         `json:"lastname"`
	Password        *string        `json:"-"`                  // bcrypt-хэш, nil для OAuth-аккаунтов
	LastExerciseID  *string        `json:"lastExerciseId"`     // Последнее отмеченное упражнение
	LastExercise    *Exercise      `json:"lastExercise,omitempty"`
	Exercises       []Exercise     `json:"exercises,omitempty"`
	ExerciseHistory []HistoryEntry `json:"exerciseHistory"` // Только дописывается
	Created         time.Time      `json:"created"`
	Modified        time.Time      `json:"modified"`
}

// Sanitized возвращает копию пользователя без хэша пароля.
// Все операции чтения отдают наружу только такие копии.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Password = nil
	if c.ExerciseHistory == nil {
		c.ExerciseHistory = []HistoryEntry{}
	}
	return &c
}

// AuthResult — результат регистрации или входа.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterInput — данные для регистрации нового пользователя.
type RegisterInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Firstname       string
	Lastname        string
}

// ChangePasswordInput — данные для смены пароля.
// CurrentPassword пустой, если проверка текущего пароля не требуется.
type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
}

// UpdateUserInput — изменяемые поля профиля.
type UpdateUserInput struct {
	Email     string
	Firstname string
	Lastname  string
}
