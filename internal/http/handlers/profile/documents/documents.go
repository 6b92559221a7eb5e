// Package documents реализует HTTP-обработчик дозаполнения профиля:
// загрузки ссылок на верификационные документы пользователя.
package documents

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/lib/sl"
)

// Service описывает интерфейс сохранения верификационных документов.
type Service interface {
	CompleteProfile(ctx context.Context, userUID, governmentIDURL, licenseURL string) error
}

// Refresher перезапускает гидрацию профиля после дозаполнения.
type Refresher interface {
	ForceRefresh(userUID string)
}

// Request — ссылки на документы из JSON-запроса. Лицензия обязательна
// только для профессиональных ролей, поэтому опциональна на этом уровне.
type Request struct {
	GovernmentIDURL string `json:"government_id_url" validate:"required,url"`
	LicenseURL      string `json:"license_url,omitempty" validate:"omitempty,url"`
}

// Handler управляет HTTP-запросами дозаполнения профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions Refresher
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, sessions Refresher) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Загрузить верификационные документы
// @Description Сохраняет ссылки на документы пользователя и помечает профиль заполненным.
// @Tags Profile
// @Accept  json
// @Produce  json
// @Param request body Request true "Ссылки на документы"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Сессия отсутствует"
// @Security BearerAuth
// @Router /profile/documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.documents"
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

	if err := h.service.CompleteProfile(r.Context(), session.UserUID, req.GovernmentIDURL, req.LicenseURL); err != nil {
		log.Error("failed to save documents", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save documents"))
		return
	}

	// Следующее восстановление сессии перечитает профиль и выйдет
	// из состояния дозаполнения.
	h.sessions.ForceRefresh(session.UserUID)

	log.Info("profile documents saved", slog.String("uid", session.UserUID))
	render.JSON(w, r, response.OK())
}
