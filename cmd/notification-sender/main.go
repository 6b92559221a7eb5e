// Сервис отправки почтовых уведомлений TrackMyStartup: потребляет
// очереди подтверждений почты и решений по офферам и заявкам.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/trackmystartup/platform/internal/app/sender"
	"github.com/trackmystartup/platform/internal/config"
	"github.com/trackmystartup/platform/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("starting notification sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := sender.New(ctx, log, cfg)
	if err != nil {
		log.Error("failed to initialize sender", sl.Err(err))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		log.Error("sender stopped with error", sl.Err(err))
		os.Exit(1)
	}
}
