package models

import "errors"

// Виды ошибок. Сравнивать через errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage error")
	ErrInvalidToken = errors.New("invalid token")
)

// Error — доменная ошибка с машиночитаемым кодом (например "passwords_must_match").
// Разворачивается в свой вид, поэтому errors.Is(err, ErrValidation) работает.
type Error struct {
	Kind error
	Code string
}

// NewError создает ошибку заданного вида с кодом.
func NewError(kind error, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Code
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Code возвращает код доменной ошибки, либо пустую строку.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
