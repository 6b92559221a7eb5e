// Package fundraise реализует HTTP-обработчик запуска раунда привлечения капитала.
//
// Если стартап указывает код инвестора, вместе с сохранением условий раунда
// подается заявка на видимость стартапа в портфеле этого инвестора.
package fundraise

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

// Service описывает интерфейс запуска раунда.
type Service interface {
	LaunchFundraising(ctx context.Context, startupID int, fd models.FundraisingDetails) (int, error)
}

// Request — условия раунда из JSON-запроса.
type Request struct {
	Active        bool    `json:"active"`
	FundingType   string  `json:"funding_type" validate:"required"`
	AskAmount     float64 `json:"ask_amount" validate:"required,gt=0"`
	AskEquity     float64 `json:"ask_equity" validate:"required,gt=0,lte=100"`
	PitchDeckURL  string  `json:"pitch_deck_url,omitempty"`
	PitchVideoURL string  `json:"pitch_video_url,omitempty"`
	InvestorCode  string  `json:"investor_code,omitempty"`
}

// Handler управляет HTTP-запросами запуска раунда.
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
// @Summary Запустить раунд привлечения капитала
// @Description Сохраняет условия раунда стартапа. При указании кода инвестора подается заявка на добавление в его портфель.
// @Tags Startups
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Param request body Request true "Условия раунда"
// @Success 200 {object} map[string]any "Идентификатор записи раунда"
// @Failure 404 {object} response.ErrorResponse "Стартап не найден"
// @Security BearerAuth
// @Router /startups/{id}/fundraising [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.startup.fundraise"
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

	recordID, err := h.service.LaunchFundraising(r.Context(), id, models.FundraisingDetails{
		Active:        req.Active,
		FundingType:   req.FundingType,
		AskAmount:     req.AskAmount,
		AskEquity:     req.AskEquity,
		PitchDeckURL:  req.PitchDeckURL,
		PitchVideoURL: req.PitchVideoURL,
		InvestorCode:  req.InvestorCode,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
			return
		}
		log.Error("failed to launch fundraising", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not launch fundraising"))
		return
	}

	log.Info("fundraising launched", slog.Int("startup_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"fundraising_id": recordID,
	}))
}
