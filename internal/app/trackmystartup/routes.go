package trackmystartup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	additionprocess "github.com/trackmystartup/platform/internal/http/handlers/addition/process"
	authconfirm "github.com/trackmystartup/platform/internal/http/handlers/auth/confirm"
	authforgot "github.com/trackmystartup/platform/internal/http/handlers/auth/forgot"
	authlogin "github.com/trackmystartup/platform/internal/http/handlers/auth/login"
	authlogout "github.com/trackmystartup/platform/internal/http/handlers/auth/logout"
	authrefresh "github.com/trackmystartup/platform/internal/http/handlers/auth/refresh"
	authregister "github.com/trackmystartup/platform/internal/http/handlers/auth/register"
	authreset "github.com/trackmystartup/platform/internal/http/handlers/auth/reset"
	authsession "github.com/trackmystartup/platform/internal/http/handlers/auth/session"
	complianceread "github.com/trackmystartup/platform/internal/http/handlers/compliance/read"
	compliancesave "github.com/trackmystartup/platform/internal/http/handlers/compliance/save"
	dashboardload "github.com/trackmystartup/platform/internal/http/handlers/dashboard/load"
	dashboardroute "github.com/trackmystartup/platform/internal/http/handlers/dashboard/route"
	"github.com/trackmystartup/platform/internal/http/handlers/healthcheck"
	offercreate "github.com/trackmystartup/platform/internal/http/handlers/offer/create"
	offerremove "github.com/trackmystartup/platform/internal/http/handlers/offer/remove"
	offerstatus "github.com/trackmystartup/platform/internal/http/handlers/offer/status"
	offerupdate "github.com/trackmystartup/platform/internal/http/handlers/offer/update"
	profiledocuments "github.com/trackmystartup/platform/internal/http/handlers/profile/documents"
	reviewcreate "github.com/trackmystartup/platform/internal/http/handlers/review/create"
	reviewprocess "github.com/trackmystartup/platform/internal/http/handlers/review/process"
	startupfounders "github.com/trackmystartup/platform/internal/http/handlers/startup/founders"
	startupfundraise "github.com/trackmystartup/platform/internal/http/handlers/startup/fundraise"
	startupread "github.com/trackmystartup/platform/internal/http/handlers/startup/read"
	startupupdate "github.com/trackmystartup/platform/internal/http/handlers/startup/update"
	"github.com/trackmystartup/platform/internal/http/middlewarectx"
	"github.com/trackmystartup/platform/internal/lib/jwt"
	"github.com/trackmystartup/platform/internal/models"
	authservice "github.com/trackmystartup/platform/internal/services/auth"
	complianceservice "github.com/trackmystartup/platform/internal/services/compliance"
	loaderservice "github.com/trackmystartup/platform/internal/services/loader"
	offerservice "github.com/trackmystartup/platform/internal/services/offer"
	requestservice "github.com/trackmystartup/platform/internal/services/request"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
	startupservice "github.com/trackmystartup/platform/internal/services/startup"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

type handlerDeps struct {
	auth         *authservice.AuthService
	orchestrator *sessionservice.Orchestrator
	jwtMaker     jwt.Maker
	loader       *loaderservice.Loader
	offers       *offerservice.OfferService
	requests     *requestservice.RequestService
	startups     *startupservice.StartupService
	compliance   *complianceservice.ComplianceService
	storage      *repository.Storage
}

// setupRoutes собирает все маршруты платформы под /api/v1.
func setupRoutes(log *slog.Logger, deps *handlerDeps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/docs/*", httpSwagger.WrapHandler)
	router.Method(http.MethodGet, "/health", healthcheck.New(log, deps.storage))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(log))

		r.Method(http.MethodPost, "/register", authregister.New(log, deps.auth))
		r.Method(http.MethodPost, "/login", authlogin.New(log, deps.auth, deps.orchestrator))
		r.Method(http.MethodGet, "/auth/confirm", authconfirm.New(log, deps.auth))
		r.Method(http.MethodPost, "/password/forgot", authforgot.New(log, deps.auth))
		r.Method(http.MethodPost, "/password/reset", authreset.New(log, deps.auth))

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(deps.auth, log))

			r.Method(http.MethodGet, "/session", authsession.New(log, deps.orchestrator))
			r.Method(http.MethodPost, "/refresh", authrefresh.New(log, deps.jwtMaker, deps.orchestrator))
			r.Method(http.MethodPost, "/logout", authlogout.New(log, deps.orchestrator, deps.loader))
			r.Method(http.MethodPost, "/profile/documents", profiledocuments.New(log, deps.auth, deps.orchestrator))

			r.Method(http.MethodGet, "/dashboard", dashboardload.New(log, deps.loader, deps.orchestrator))
			r.Method(http.MethodGet, "/dashboard/route", dashboardroute.New(log, deps.loader, deps.orchestrator))

			r.Method(http.MethodGet, "/startups/{id}", startupread.New(log, deps.startups))
			r.Method(http.MethodGet, "/startups/{id}/compliance", complianceread.New(log, deps.compliance, deps.startups))

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(log, models.RoleStartup, models.RoleAdmin))
				r.Method(http.MethodPut, "/startups/{id}", startupupdate.New(log, deps.startups))
				r.Method(http.MethodPut, "/startups/{id}/founders", startupfounders.New(log, deps.startups))
				r.Method(http.MethodPost, "/startups/{id}/fundraising", startupfundraise.New(log, deps.startups))
				r.Method(http.MethodPost, "/startups/{id}/reviews", reviewcreate.New(log, deps.requests, deps.startups))
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(log, models.RoleInvestor))
				r.Method(http.MethodPost, "/offers", offercreate.New(log, deps.offers))
				r.Method(http.MethodPut, "/offers/{id}", offerupdate.New(log, deps.offers))
				r.Method(http.MethodDelete, "/offers/{id}", offerremove.New(log, deps.offers))
			})

			// Статусы офферов меняют администратор, стартап и советники.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(log,
					models.RoleAdmin, models.RoleStartup, models.RoleAdvisor))
				r.Method(http.MethodPost, "/offers/{id}/status", offerstatus.New(log, deps.offers))
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(log, models.RoleAdmin))
				r.Method(http.MethodPost, "/additions/{id}/decision", additionprocess.New(log, deps.requests))
				r.Method(http.MethodPost, "/reviews/{id}/decision", reviewprocess.New(log, deps.requests))
				r.Method(http.MethodPut, "/compliance-rules", compliancesave.New(log, deps.compliance))
			})
		})
	})
	return router
}
