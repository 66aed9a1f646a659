// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Обработчик декодирует JSON, передаёт данные сервису трекера и при успехе
// возвращает токен доступа вместе с профилем пользователя.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/last-exercise/internal/http/response"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// Request — входные данные для регистрации.
// Обязательность полей проверяет сервис, здесь только ограничения длины.
type Request struct {
	Email           string `json:"email" validate:"max=254"`
	Password        string `json:"password" validate:"max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"max=72"`
	Firstname       string `json:"firstname" validate:"max=100"`
	Lastname        string `json:"lastname" validate:"max=100"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error)
}

// Handler обрабатывает запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP регистрирует пользователя.
//
// @Summary Регистрация
// @Tags auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Register(r.Context(), models.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Firstname:       req.Firstname,
		Lastname:        req.Lastname,
	})
	if err != nil {
		log.Info("registration failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
