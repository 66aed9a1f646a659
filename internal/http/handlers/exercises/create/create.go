// Package create реализует HTTP-обработчик создания упражнения.
//
// Владелец упражнения берётся из токена, если в теле не указан userId.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/last-exercise/internal/http/handlers/exercises"
	"github.com/magabrotheeeer/last-exercise/internal/http/middlewarectx"
	"github.com/magabrotheeeer/last-exercise/internal/http/response"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// Service описывает создание упражнения.
type Service interface {
	Create(ctx context.Context, userID string, in models.ExerciseInput) (*models.Exercise, error)
}

// Handler обрабатывает запросы на создание упражнения.
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

// ServeHTTP создаёт упражнение.
//
// @Summary Создать упражнение
// @Tags exercises
// @Accept json
// @Produce json
// @Param access_token header string true "Токен доступа"
// @Param request body exercises.Request true "Упражнение"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /exercises [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.exercises.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req exercises.Request
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

	exercise, err := h.service.Create(r.Context(), userID, req.Input())
	if err != nil {
		log.Info("failed to create exercise", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("exercise created", slog.String("exercise_id", exercise.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(exercise))
}
