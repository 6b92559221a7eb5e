// Package route реализует HTTP-обработчик выбора вида приложения.
//
// Вид вычисляется детерминированно из состояния аутентификации и
// параметров запроса; выбор всегда однозначен.
package route

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
	viewservice "github.com/trackmystartup/platform/internal/services/view"
)

// Loader отдает снимок дашборда, из которого берется выбранный стартап.
type Loader interface {
	Load(ctx context.Context, user *models.User, forceRefresh bool) (*models.DashboardData, error)
}

// StateProvider отдает текущее состояние аутентификации пользователя.
type StateProvider interface {
	State(userUID string) sessionservice.AuthState
}

// Handler управляет HTTP-запросами выбора вида.
type Handler struct {
	log    *slog.Logger
	loader Loader
	states StateProvider
}

// New создает новый Handler.
func New(log *slog.Logger, loader Loader, states StateProvider) *Handler {
	return &Handler{log: log, loader: loader, states: states}
}

// ServeHTTP godoc
// @Summary Выбрать вид приложения
// @Description Возвращает ровно один вид по состоянию аутентификации, роли и режиму просмотра.
// @Tags Dashboard
// @Produce  json
// @Param view_mode query string false "Режим просмотра, например startupHealth"
// @Param selected_startup_id query int false "Идентификатор выбранного стартапа"
// @Success 200 {object} map[string]any "Вид и флаг режима только для чтения"
// @Security BearerAuth
// @Router /dashboard/route [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.route"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	in := viewservice.Input{}
	session, ok := middlewarectx.SessionFromContext(r.Context())
	if ok {
		state := h.states.State(session.UserUID)
		if state.Phase != sessionservice.PhaseUnauthenticated && state.User != nil {
			in.Authenticated = true
			in.Role = state.User.Role
			in.StartupMatched = h.startupMatched(r.Context(), state, log)
		}
	}

	in.ViewMode = r.URL.Query().Get("view_mode")
	if raw := r.URL.Query().Get("selected_startup_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid selected_startup_id", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("selected_startup_id must be an integer"))
			return
		}
		in.SelectedStartupID = id
	}

	route := viewservice.Resolve(in)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"view":         route.View,
		"is_view_only": route.IsViewOnly,
	}))
}

// startupMatched проверяет по снимку дашборда, найден ли собственный
// стартап пользователя роли Startup. Для остальных ролей не имеет значения.
func (h *Handler) startupMatched(ctx context.Context, state sessionservice.AuthState, log *slog.Logger) bool {
	if state.User.Role != models.RoleStartup {
		return false
	}
	data, err := h.loader.Load(ctx, state.User, false)
	if err != nil {
		log.Warn("failed to load dashboard snapshot for routing", sl.Err(err))
		return false
	}
	return data.SelectedStartupID != 0
}
