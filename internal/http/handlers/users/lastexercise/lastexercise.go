// Package lastexercise реализует HTTP-обработчик отметки последнего выполненного
// упражнения. Каждый успешный вызов дописывает запись в историю пользователя.
package lastexercise

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/last-exercise/internal/http/response"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
	"github.com/magabrotheeeer/last-exercise/internal/models"
)

// Request содержит упражнение и его длительность.
type Request struct {
	ExerciseID string `json:"exerciseId" validate:"required"`
	Duration   string `json:"duration" validate:"max=64"`
}

// Service описывает отметку последнего упражнения.
type Service interface {
	RecordLastExercise(ctx context.Context, userID, exerciseID, duration string) (*models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP отмечает последнее упражнение пользователя.
//
// @Summary Отметить последнее упражнение
// @Tags users
// @Accept json
// @Produce json
// @Param access_token header string true "Токен доступа"
// @Param id path string true "ID пользователя"
// @Param request body Request true "Упражнение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/{id}/lastexercise [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.lastexercise"

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
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id := chi.URLParam(r, "id")
	user, err := h.service.RecordLastExercise(r.Context(), id, req.ExerciseID, req.Duration)
	if err != nil {
		log.Info("failed to record last exercise", sl.Err(err),
			slog.String("user_id", id),
			slog.String("exercise_id", req.ExerciseID),
		)
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(user))
}
