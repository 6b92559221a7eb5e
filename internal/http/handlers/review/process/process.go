// Package process реализует HTTP-обработчик решения администратора
// по верификационной или валидационной заявке.
package process

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

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	requestservice "github.com/trackmystartup/platform/internal/services/request"
)

// Service описывает интерфейс решения по заявке на проверку.
type Service interface {
	DecideReview(ctx context.Context, id int, approve bool, adminNotes string) (*models.ReviewRequest, error)
}

// Request — решение администратора из JSON-запроса.
type Request struct {
	Approve    bool   `json:"approve"`
	AdminNotes string `json:"admin_notes,omitempty"`
}

// Handler управляет HTTP-запросами решений по заявкам на проверку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Решить заявку на проверку
// @Description Одобряет или отклоняет заявку с заметками администратора. Решённая заявка повторно не обрабатывается — 409.
// @Tags Reviews
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор заявки"
// @Param request body Request true "Решение и заметки"
// @Success 200 {object} models.ReviewRequest
// @Failure 409 {object} response.ErrorResponse "Заявка уже решена"
// @Security BearerAuth
// @Router /reviews/{id}/decision [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.process"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid review id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("review id must be an integer"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.DecideReview(r.Context(), id, req.Approve, req.AdminNotes)
	if err != nil {
		if errors.Is(err, requestservice.ErrAlreadyDecided) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("review request already decided"))
			return
		}
		log.Error("failed to decide review request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not decide review request"))
		return
	}

	log.Info("review request decided", slog.Int("id", id), slog.Bool("approved", req.Approve))
	render.JSON(w, r, response.OKWithData(updated))
}
