// Package refresh реализует HTTP-обработчик обновления токена сессии.
//
// Обновление токена намеренно не трогает загруженные данные: оркестратор
// получает событие TOKEN_REFRESHED и возвращает состояние без изменений.
package refresh

import (
	"context"
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

// TokenIssuer описывает интерфейс выпуска нового токена по сессии.
type TokenIssuer interface {
	GenerateToken(session *models.Session) (string, error)
}

// Orchestrator описывает интерфейс обработки событий сессии.
type Orchestrator interface {
	HandleEvent(ctx context.Context, ev models.SessionEvent) (sessionservice.AuthState, error)
}

// Handler управляет HTTP-запросами обновления токена.
type Handler struct {
	log          *slog.Logger
	issuer       TokenIssuer
	orchestrator Orchestrator
}

// New создает новый Handler.
func New(log *slog.Logger, issuer TokenIssuer, orchestrator Orchestrator) *Handler {
	return &Handler{log: log, issuer: issuer, orchestrator: orchestrator}
}

// ServeHTTP godoc
// @Summary Обновить токен сессии
// @Description Выпускает новый токен по текущей сессии. Состояние аутентификации и загруженные данные не меняются.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Новый токен и неизменённое состояние"
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует"
// @Security BearerAuth
// @Router /refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"
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

	token, err := h.issuer.GenerateToken(session)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not refresh token"))
		return
	}

	state, err := h.orchestrator.HandleEvent(r.Context(), models.SessionEvent{
		Type:    models.EventTokenRefreshed,
		Session: session,
		At:      time.Now(),
	})
	if err != nil {
		log.Error("session event failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not refresh token"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"state": state,
	}))
}
