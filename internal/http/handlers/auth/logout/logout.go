// Package logout реализует HTTP-обработчик выхода из системы.
package logout

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

// Orchestrator описывает интерфейс обработки событий сессии.
type Orchestrator interface {
	HandleEvent(ctx context.Context, ev models.SessionEvent) (sessionservice.AuthState, error)
}

// SnapshotInvalidator сбрасывает кешированный снимок дашборда пользователя.
type SnapshotInvalidator interface {
	ForceInvalidate(userUID string) error
}

// Handler управляет HTTP-запросами выхода.
type Handler struct {
	log          *slog.Logger
	orchestrator Orchestrator
	snapshots    SnapshotInvalidator
}

// New создает новый Handler.
func New(log *slog.Logger, orchestrator Orchestrator, snapshots SnapshotInvalidator) *Handler {
	return &Handler{log: log, orchestrator: orchestrator, snapshots: snapshots}
}

// ServeHTTP godoc
// @Summary Выйти из системы
// @Description Сбрасывает состояние аутентификации и кешированный снимок дашборда.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует"
// @Security BearerAuth
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
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

	if _, err := h.orchestrator.HandleEvent(r.Context(), models.SessionEvent{
		Type:    models.EventSignedOut,
		Session: session,
		At:      time.Now(),
	}); err != nil {
		log.Error("session event failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign out"))
		return
	}

	if err := h.snapshots.ForceInvalidate(session.UserUID); err != nil {
		// Несброшенный снимок не мешает выходу, истечет по TTL.
		log.Warn("failed to invalidate dashboard snapshot", sl.Err(err))
	}

	log.Info("user signed out", slog.String("uid", session.UserUID))
	render.JSON(w, r, response.OK())
}
