// Package create реализует HTTP-обработчик подачи верификационной
// или валидационной заявки стартапа.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс подачи заявки на проверку.
type Service interface {
	SubmitReview(ctx context.Context, kind models.RequestKind, st *models.Startup) (int, error)
}

// StartupReader находит стартап-предмет заявки.
type StartupReader interface {
	Get(ctx context.Context, id int) (*models.Startup, error)
}

// Request — вид заявки из JSON-запроса.
type Request struct {
	Kind string `json:"kind" validate:"required,oneof=verification validation"`
}

// Handler управляет HTTP-запросами подачи заявок на проверку.
type Handler struct {
	log      *slog.Logger
	service  Service
	startups StartupReader
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, startups StartupReader) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		startups: startups,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подать заявку на проверку стартапа
// @Description Создает верификационную или валидационную заявку в статусе pending.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Param request body Request true "Вид заявки"
// @Success 200 {object} map[string]any "Идентификатор заявки"
// @Failure 404 {object} response.ErrorResponse "Стартап не найден"
// @Security BearerAuth
// @Router /startups/{id}/reviews [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid startup id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("startup id must be an integer"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	st, err := h.startups.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
			return
		}
		log.Error("failed to read startup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit review request"))
		return
	}

	reviewID, err := h.service.SubmitReview(r.Context(), models.RequestKind(req.Kind), st)
	if err != nil {
		log.Error("failed to submit review request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit review request"))
		return
	}

	log.Info("review request submitted", slog.Int("id", reviewID), slog.String("kind", req.Kind))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"review_id": reviewID,
	}))
}
