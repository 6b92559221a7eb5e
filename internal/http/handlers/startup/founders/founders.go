// Package founders реализует HTTP-обработчик замены списка основателей.
package founders

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
	startupservice "github.com/trackmystartup/platform/internal/services/startup"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс замены основателей.
type Service interface {
	ReplaceFounders(ctx context.Context, startupID int, founders []models.Founder) (*models.Startup, error)
}

// Request — новый список основателей. Порядок значим и сохраняется.
type Request struct {
	Founders []models.Founder `json:"founders" validate:"required,dive"`
}

// Handler управляет HTTP-запросами замены основателей.
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

// ServeHTTP godoc
// @Summary Заменить основателей стартапа
// @Description Заменяет список основателей целиком. Сумма акций основателей и резерва ESOP не может превышать общее число акций.
// @Tags Startups
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Param request body Request true "Новый список основателей"
// @Success 200 {object} models.Startup
// @Failure 409 {object} response.ErrorResponse "Распределение акций некорректно"
// @Security BearerAuth
// @Router /startups/{id}/founders [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.startup.founders"
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

	st, err := h.service.ReplaceFounders(r.Context(), id, req.Founders)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
		case errors.Is(err, startupservice.ErrShareOverflow):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to replace founders", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not replace founders"))
		}
		return
	}

	log.Info("founders replaced", slog.Int("startup_id", id), slog.Int("count", len(req.Founders)))
	render.JSON(w, r, response.OKWithData(st))
}
