// Package load реализует HTTP-обработчик загрузки коллекций дашборда.
//
// Повторный запрос той же сессии отдается из кеша снимков; параметр
// force=true принудительно выполняет полный fan-out заново.
package load

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
)

// Service описывает интерфейс загрузчика дашборда.
type Service interface {
	Load(ctx context.Context, user *models.User, forceRefresh bool) (*models.DashboardData, error)
}

// StateProvider отдает текущее состояние аутентификации пользователя.
type StateProvider interface {
	State(userUID string) sessionservice.AuthState
	ForceRefresh(userUID string)
}

// Handler управляет HTTP-запросами загрузки дашборда.
type Handler struct {
	log     *slog.Logger
	service Service
	states  StateProvider
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, states StateProvider) *Handler {
	return &Handler{log: log, service: service, states: states}
}

// ServeHTTP godoc
// @Summary Загрузить коллекции дашборда
// @Description Загружает стартапы, предложения, заявки, пользователей и запросы на проверку с учётом роли пользователя. Частичные отказы деградируют до пустых списков.
// @Tags Dashboard
// @Produce  json
// @Param force query bool false "Принудительная перезагрузка мимо кеша снимков"
// @Success 200 {object} models.DashboardData
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует"
// @Failure 409 {object} response.ErrorResponse "Состояние аутентификации не установлено"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.load"
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

	state := h.states.State(session.UserUID)
	if state.Phase == sessionservice.PhaseUnauthenticated || state.User == nil {
		log.Warn("dashboard requested before session established", slog.String("uid", session.UserUID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("session not established, restore it first"))
		return
	}

	force := r.URL.Query().Get("force") == "true"
	if force {
		h.states.ForceRefresh(session.UserUID)
	}

	data, err := h.service.Load(r.Context(), state.User, force)
	if err != nil {
		log.Error("dashboard load failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load dashboard"))
		return
	}

	log.Info("dashboard loaded", slog.String("uid", session.UserUID))
	render.JSON(w, r, response.OKWithData(data))
}
