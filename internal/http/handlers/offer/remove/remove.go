// Package remove реализует HTTP-обработчик отмены оффера.
// Отмена допустима только пока оффер в статусе pending.
package remove

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
	offerservice "github.com/trackmystartup/platform/internal/services/offer"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс отмены оффера.
type Service interface {
	Cancel(ctx context.Context, id int) error
}

// Handler управляет HTTP-запросами отмены оффера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить оффер
// @Description Безвозвратно удаляет оффер в статусе pending. После решения отмена невозможна — 409.
// @Tags Offers
// @Produce  json
// @Param id path int true "Идентификатор оффера"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Оффер не найден"
// @Failure 409 {object} response.ErrorResponse "Оффер уже не в статусе pending"
// @Security BearerAuth
// @Router /offers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid offer id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("offer id must be an integer"))
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("offer not found"))
		case errors.Is(err, offerservice.ErrNotPending):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("offer can be cancelled only while pending"))
		default:
			log.Error("failed to cancel offer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel offer"))
		}
		return
	}

	log.Info("offer cancelled", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
