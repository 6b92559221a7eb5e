// Package login реализует HTTP-обработчик входа в систему.
//
// Успешный вход проверяется оркестратором сессий как событие SIGNED_IN:
// вход с неподтверждённой почтой отклоняется целиком.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/models"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
)

// AuthService описывает интерфейс проверки пароля и выпуска токена.
type AuthService interface {
	Login(ctx context.Context, email, rawPassword string) (string, *models.Session, error)
}

// Orchestrator описывает интерфейс обработки событий сессии.
type Orchestrator interface {
	HandleEvent(ctx context.Context, ev models.SessionEvent) (sessionservice.AuthState, error)
}

// Request — данные входа из JSON-запроса.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler управляет HTTP-запросами на вход.
type Handler struct {
	log          *slog.Logger
	auth         AuthService
	orchestrator Orchestrator
	validate     *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, auth AuthService, orchestrator Orchestrator) *Handler {
	return &Handler{
		log:          log,
		auth:         auth,
		orchestrator: orchestrator,
		validate:     validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Войти в систему
// @Description Проверяет пароль, выпускает токен сессии и пропускает событие SIGNED_IN через оркестратор. Неподтверждённая почта отклоняется.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта и пароль"
// @Success 200 {object} map[string]any "Токен и состояние аутентификации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Почта не подтверждена"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	token, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	state, err := h.orchestrator.HandleEvent(r.Context(), models.SessionEvent{
		Type:    models.EventSignedIn,
		Session: session,
		At:      time.Now(),
	})
	if err != nil {
		if errors.Is(err, sessionservice.ErrEmailNotConfirmed) {
			log.Warn("sign-in rejected: email not confirmed", slog.String("email", req.Email))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("confirm your email before signing in"))
			return
		}
		log.Error("session event failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not establish session"))
		return
	}

	log.Info("user signed in", slog.String("uid", session.UserUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"state": state,
	}))
}
