// Package update реализует HTTP-обработчик правки условий оффера.
// Правка допустима только пока оффер в статусе pending.
package update

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

// Service описывает интерфейс правки условий оффера.
type Service interface {
	UpdateTerms(ctx context.Context, id int, amount, equity float64) (*models.InvestmentOffer, error)
}

// Request — новые условия оффера из JSON-запроса.
type Request struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Equity float64 `json:"equity" validate:"required,gt=0,lte=100"`
}

// Handler управляет HTTP-запросами правки оффера.
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
// @Summary Изменить условия оффера
// @Description Правит сумму и долю оффера в статусе pending и возвращает обновлённую запись. После решения оффер неизменяем — 409.
// @Tags Offers
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор оффера"
// @Param request body Request true "Новые условия"
// @Success 200 {object} models.InvestmentOffer
// @Failure 404 {object} response.ErrorResponse "Оффер не найден"
// @Failure 409 {object} response.ErrorResponse "Оффер уже не в статусе pending"
// @Security BearerAuth
// @Router /offers/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.update"
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

	offer, err := h.service.UpdateTerms(r.Context(), id, req.Amount, req.Equity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("offer not found"))
		case errors.Is(err, offerservice.ErrNotPending):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("offer can be edited only while pending"))
		default:
			log.Error("failed to update offer", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update offer"))
		}
		return
	}

	log.Info("offer terms updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(offer))
}
