// Package confirm реализует HTTP-обработчик подтверждения почты по ссылке из письма.
package confirm

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
)

// Service описывает интерфейс подтверждения почты по токену.
type Service interface {
	ConfirmEmail(ctx context.Context, token string) error
}

// Handler управляет HTTP-запросами подтверждения почты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтвердить почту
// @Description Отмечает почту пользователя подтверждённой по токену из письма.
// @Tags Auth
// @Produce  json
// @Param token query string true "Токен подтверждения"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует или невалиден"
// @Router /auth/confirm [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("confirmation token missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("confirmation token required"))
		return
	}

	if err := h.service.ConfirmEmail(r.Context(), token); err != nil {
		log.Error("failed to confirm email", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid or expired confirmation token"))
		return
	}

	log.Info("email confirmed")
	render.JSON(w, r, response.OK())
}
