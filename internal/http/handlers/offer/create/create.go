// Package create реализует HTTP-обработчик подачи инвестиционного оффера.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// Service описывает интерфейс подачи оффера.
type Service interface {
	Submit(ctx context.Context, investorEmail, startupName string, amount, equity float64) (*models.InvestmentOffer, error)
}

// Request — условия оффера из JSON-запроса.
type Request struct {
	StartupName string  `json:"startup_name" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Equity      float64 `json:"equity" validate:"required,gt=0,lte=100"`
}

// Handler управляет HTTP-запросами подачи оффера.
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
// @Summary Подать инвестиционный оффер
// @Description Создает оффер текущего инвестора выбранному стартапу. Начальный статус всегда pending.
// @Tags Offers
// @Accept  json
// @Produce  json
// @Param request body Request true "Условия оффера"
// @Success 200 {object} models.InvestmentOffer
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /offers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	session, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		log.Error("session missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
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

	offer, err := h.service.Submit(r.Context(), session.Email, req.StartupName, req.Amount, req.Equity)
	if err != nil {
		log.Error("failed to submit offer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit offer"))
		return
	}

	log.Info("offer submitted", slog.Int("id", offer.ID))
	render.JSON(w, r, response.OKWithData(offer))
}
