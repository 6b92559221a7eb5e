// Package read реализует HTTP-обработчик чтения правил комплаенса стартапа.
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

// Service описывает интерфейс выборки применимых правил.
type Service interface {
	RulesFor(ctx context.Context, st *models.Startup) ([]models.ComplianceRule, error)
}

// StartupReader находит стартап, для которого запрашиваются правила.
type StartupReader interface {
	Get(ctx context.Context, id int) (*models.Startup, error)
}

// Handler управляет HTTP-запросами чтения правил комплаенса.
type Handler struct {
	log      *slog.Logger
	service  Service
	startups StartupReader
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, startups StartupReader) *Handler {
	return &Handler{log: log, service: service, startups: startups}
}

// ServeHTTP godoc
// @Summary Получить правила комплаенса стартапа
// @Description Возвращает применимые правила: в первый год после регистрации — первогодние и ежегодные, далее только ежегодные.
// @Tags Compliance
// @Produce  json
// @Param id path int true "Идентификатор стартапа"
// @Success 200 {array} models.ComplianceRule
// @Failure 404 {object} response.ErrorResponse "Стартап или набор правил не найден"
// @Security BearerAuth
// @Router /startups/{id}/compliance [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.compliance.read"
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

	st, err := h.startups.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("startup not found"))
			return
		}
		log.Error("failed to read startup", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read compliance rules"))
		return
	}

	rules, err := h.service.RulesFor(r.Context(), st)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no rules for this country and company type"))
			return
		}
		log.Error("failed to read compliance rules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read compliance rules"))
		return
	}

	render.JSON(w, r, response.OKWithData(rules))
}
