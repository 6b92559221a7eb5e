// Package read реализует HTTP-обработчик чтения стартапа с основателями.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс чтения стартапа.
type Service interface {
	Get(ctx context.Context, id int) (*models.Startup, error)
}

// Handler управляет HTTP-запросами чтения стартапа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить стартап
// @Description Возвращает стартап по идентификатору вместе со списком основателей.
// @Tags Startups
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Success 200 {object} models.Startup
// @Failure 404 {object} response.ErrorResponse "Стартап не найден"
// @Security BearerAuth
// @Router /startups/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.startup.read"
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

	st, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
			return
		}
		log.Error("failed to read startup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read startup"))
		return
	}

	render.JSON(w, r, response.OKWithData(st))
}
