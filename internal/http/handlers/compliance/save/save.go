// Package save реализует HTTP-обработчик администрирования правил комплаенса.
package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
)

// Service описывает интерфейс сохранения набора правил.
type Service interface {
	Upsert(ctx context.Context, rs models.ComplianceRuleSet) error
}

// Handler управляет HTTP-запросами сохранения правил.
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
// @Summary Сохранить набор правил комплаенса
// @Description Создает или заменяет набор правил для страны и организационно-правовой формы. Только для администратора.
// @Tags Compliance
// @Accept  json
// @Produce  json
// @Param request body models.ComplianceRuleSet true "Набор правил"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /compliance-rules [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.compliance.save"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var rs models.ComplianceRuleSet
	if err := json.NewDecoder(r.Body).Decode(&rs); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(rs); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Upsert(r.Context(), rs); err != nil {
		log.Error("failed to save rule set", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save rule set"))
		return
	}

	log.Info("rule set saved", slog.String("country", rs.CountryCode),
		slog.String("company_type", rs.CompanyType))
	render.JSON(w, r, response.OK())
}
