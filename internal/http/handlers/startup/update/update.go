// Package update реализует HTTP-обработчик правки профиля стартапа.
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
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// Service описывает интерфейс правки стартапа.
type Service interface {
	Get(ctx context.Context, id int) (*models.Startup, error)
	Update(ctx context.Context, st models.Startup) (*models.Startup, error)
}

// Request — изменяемые поля профиля стартапа.
type Request struct {
	InvestmentType     string  `json:"investment_type"`
	InvestmentValue    float64 `json:"investment_value" validate:"gte=0"`
	EquityAllocation   float64 `json:"equity_allocation" validate:"gte=0,lte=100"`
	CurrentValuation   float64 `json:"current_valuation" validate:"gte=0"`
	Sector             string  `json:"sector"`
	TotalFunding       float64 `json:"total_funding" validate:"gte=0"`
	TotalRevenue       float64 `json:"total_revenue" validate:"gte=0"`
	CountryCode        string  `json:"country_code"`
	CompanyType        string  `json:"company_type"`
	CACode             string  `json:"ca_code"`
	CSCode             string  `json:"cs_code"`
	TotalShares        int64   `json:"total_shares" validate:"gte=0"`
	ESOPReservedShares int64   `json:"esop_reserved_shares" validate:"gte=0"`
	PricePerShare      float64 `json:"price_per_share" validate:"gte=0"`
}

// Handler управляет HTTP-запросами правки стартапа.
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
// @Summary Изменить профиль стартапа
// @Description Правит поля профиля и возвращает авторитетную обновлённую запись.
// @Tags Startups
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Param request body Request true "Новые значения полей"
// @Success 200 {object} models.Startup
// @Failure 404 {object} response.ErrorResponse "Стартап не найден"
// @Security BearerAuth
// @Router /startups/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.startup.update"
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

	current, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
			return
		}
		log.Error("failed to read startup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update startup"))
		return
	}

	current.InvestmentType = req.InvestmentType
	current.InvestmentValue = req.InvestmentValue
	current.EquityAllocation = req.EquityAllocation
	current.CurrentValuation = req.CurrentValuation
	current.Sector = req.Sector
	current.TotalFunding = req.TotalFunding
	current.TotalRevenue = req.TotalRevenue
	current.CountryCode = req.CountryCode
	current.CompanyType = req.CompanyType
	current.CACode = req.CACode
	current.CSCode = req.CSCode
	current.TotalShares = req.TotalShares
	current.ESOPReservedShares = req.ESOPReservedShares
	current.PricePerShare = req.PricePerShare

	updated, err := h.service.Update(r.Context(), *current)
	if err != nil {
		log.Error("failed to update startup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update startup"))
		return
	}

	log.Info("startup updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
