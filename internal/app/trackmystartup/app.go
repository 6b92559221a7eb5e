// Package trackmystartup собирает HTTP-приложение платформы:
// хранилище, кэш, очередь уведомлений, сервисы и маршруты.
package trackmystartup

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/trackmystartup/platform/internal/cache"
	"github.com/trackmystartup/platform/internal/config"
	"github.com/trackmystartup/platform/internal/lib/jwt"
	"github.com/trackmystartup/platform/internal/lib/rabbitmq"
	"github.com/trackmystartup/platform/internal/lib/sl"
	"github.com/trackmystartup/platform/internal/migrations"
	authservice "github.com/trackmystartup/platform/internal/services/auth"
	complianceservice "github.com/trackmystartup/platform/internal/services/compliance"
	loaderservice "github.com/trackmystartup/platform/internal/services/loader"
	offerservice "github.com/trackmystartup/platform/internal/services/offer"
	requestservice "github.com/trackmystartup/platform/internal/services/request"
	sessionservice "github.com/trackmystartup/platform/internal/services/session"
	startupservice "github.com/trackmystartup/platform/internal/services/startup"
	"github.com/trackmystartup/platform/internal/storage/repository"
)

// App инкапсулирует зависимости HTTP-приложения платформы.
type App struct {
	log    *slog.Logger
	cfg    *config.Config
	server *http.Server
}

// New собирает приложение: подключает хранилище, применяет миграции,
// поднимает кэш и очередь, связывает сервисы и маршруты.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	storage, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(storage.DB, "./migrations"); err != nil {
		return nil, err
	}
	log.Info("storage initialized, migrations applied")

	redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	notifier := rabbitmq.NewNotifier(rabbitChannel)
	log.Info("notification queue connected")

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	auth := authservice.NewAuthService(storage, jwtMaker, notifier, log)
	orchestrator := sessionservice.NewOrchestrator(storage, storage, redisCache, log)
	loader := loaderservice.NewLoader(storage, redisCache, orchestrator, log,
		cfg.FanOutTimeout, cfg.SnapshotTTL)
	offers := offerservice.NewOfferService(storage, storage, storage, notifier, log)
	requests := requestservice.NewRequestService(storage, notifier, log)
	startups := startupservice.NewStartupService(storage, requests, log)
	compliance := complianceservice.NewComplianceService(storage, log)

	router := setupRoutes(log, &handlerDeps{
		auth:         auth,
		orchestrator: orchestrator,
		jwtMaker:     jwtMaker,
		loader:       loader,
		offers:       offers,
		requests:     requests,
		startups:     startups,
		compliance:   compliance,
		storage:      storage,
	})

	server := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		log:    log,
		cfg:    cfg,
		server: server,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	const op = "app.Run"

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server started", slog.String("address", a.cfg.AddressHTTP))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("graceful shutdown failed", sl.Err(err))
		return err
	}
	a.log.Info("http server stopped")
	return nil
}
