// Package session реализует HTTP-обработчик восстановления сессии.
//
// Запрос с валидным токеном трактуется как событие INITIAL_SESSION:
// оркестратор синтезирует базового пользователя и запускает догрузку
// полного профиля, если состояние ещё не установлено.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
)

// Orchestrator описывает интерфейс обработки событий сессии.
type Orchestrator interface {
	HandleEvent(ctx context.Context, ev models.SessionEvent) (sessionservice.AuthState, error)
}

// Handler управляет HTTP-запросами восстановления сессии.
type Handler struct {
	log          *slog.Logger
	orchestrator Orchestrator
}

// New создает новый Handler.
func New(log *slog.Logger, orchestrator Orchestrator) *Handler {
	return &Handler{log: log, orchestrator: orchestrator}
}

// ServeHTTP godoc
// @Summary Восстановить сессию
// @Description Пропускает событие INITIAL_SESSION через оркестратор и возвращает состояние аутентификации.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Состояние аутентификации"
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует"
// @Security BearerAuth
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"
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

	state, err := h.orchestrator.HandleEvent(r.Context(), models.SessionEvent{
		Type:    models.EventInitialSession,
		Session: session,
		At:      time.Now(),
	})
	if err != nil {
		if errors.Is(err, sessionservice.ErrEmailNotConfirmed) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("confirm your email before signing in"))
			return
		}
		log.Error("session event failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not restore session"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
