package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/trackmystartup/platform/internal/http/response"
	"github.com/trackmystartup/platform/internal/models"
)

// RequireRoles создает middleware, пропускающий только перечисленные роли.
// Роль берется из проекции сессии, положенной SessionMiddleware.
func RequireRoles(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				log.Error("session missing in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !allowed[models.Role(session.Meta.Role)] {
				log.Error("role not permitted", slog.String("role", session.Meta.Role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden for this role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
