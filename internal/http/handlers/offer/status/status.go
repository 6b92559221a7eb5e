// Package status реализует HTTP-обработчик перевода оффера в новый статус.
//
// Машина статусов однонаправленная, недопустимые переходы отклоняются
// до записи в хранилище.
package status

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
	offerservice "github.com/trackmystartup/platform/internal/services/offer"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс смены статуса оффера.
type Service interface {
	Transition(ctx context.Context, id int, next models.OfferStatus) (*models.InvestmentOffer, error)
}

// Request — целевой статус из JSON-запроса.
type Request struct {
	Status string `json:"status" validate:"required,oneof=pending_investor_advisor_approval pending_startup_advisor_approval approved accepted completed rejected"`
}

// Handler управляет HTTP-запросами смены статуса оффера.
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
// @Summary Перевести оффер в новый статус
// @Description Выполняет переход по машине статусов и возвращает авторитетную обновлённую запись. Недопустимый переход — 409.
// @Tags Offers
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор оффера"
// @Param request body Request true "Целевой статус"
// @Success 200 {object} models.InvestmentOffer
// @Failure 404 {object} response.ErrorResponse "Оффер не найден"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход"
// @Security BearerAuth
// @Router /offers/{id}/status [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.status"
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

	offer, err := h.service.Transition(r.Context(), id, models.OfferStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Error("offer not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("offer not found"))
		case errors.Is(err, offerservice.ErrInvalidTransition):
			log.Error("invalid status transition", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to change offer status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not change offer status"))
		}
		return
	}

	log.Info("offer status changed", slog.Int("id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.OKWithData(offer))
}
