// Package middlewarectx содержит HTTP middleware для проверки access-токена,
// ограничения частоты запросов, сбора метрик и контроля доступа к профилю.
//
// Auth читает токен из заголовка access_token, проверяет его через TokenValidator
// (сервис трекера или gRPC-клиент) и в случае успеха кладёт идентификатор
// пользователя в контекст запроса.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/last-exercise/internal/http/response"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserID — ключ идентификатора пользователя в контексте.
const UserID Key = "user_id"

// TokenHeader заголовок, в котором клиент передаёт токен.
const TokenHeader = "access_token"

// TokenValidator проверяет токен и возвращает идентификатор пользователя.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// Auth возвращает middleware, который пропускает только запросы с валидным токеном.
func Auth(validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := r.Header.Get(TokenHeader)
			if token == "" {
				log.Info("missing access token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			userID, err := validator.ValidateToken(r.Context(), token)
			if err != nil || userID == "" {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID кладёт идентификатор пользователя в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserID, userID)
}

// UserIDFromContext достаёт идентификатор пользователя, положенный Auth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}
