// Package sender собирает приложение почтовых уведомлений: подключение
// к RabbitMQ, потребители очередей уведомлений и SMTP транспорт.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/trackmystartup/platform/internal/config"
	"github.com/trackmystartup/platform/internal/lib/rabbitmq"
	"github.com/trackmystartup/platform/internal/lib/smtp"
	senderservice "github.com/trackmystartup/platform/internal/services/sender"
)

// App инкапсулирует зависимости приложения отправки уведомлений.
type App struct {
	log     *slog.Logger
	channel *amqp.Channel
	service *senderservice.SenderService
}

// New собирает приложение: подключается к очереди и SMTP транспорту
// и запускает потребителей всех очередей уведомлений.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	transport := smtp.NewTransport(&cfg.SMTPConnection, log)
	service := senderservice.NewSenderService(transport, cfg.BaseURL, log)

	if err := rabbitmq.ConsumeMessages(ctx, ch, "notification.confirm", service.SendEmailConfirmation); err != nil {
		return nil, err
	}
	if err := rabbitmq.ConsumeMessages(ctx, ch, "notification.recovery", service.SendPasswordRecovery); err != nil {
		return nil, err
	}
	if err := rabbitmq.ConsumeMessages(ctx, ch, "notification.offer", service.SendOfferDecision); err != nil {
		return nil, err
	}
	if err := rabbitmq.ConsumeMessages(ctx, ch, "notification.review", service.SendReviewDecision); err != nil {
		return nil, err
	}
	log.Info("notification consumers started")

	return &App{
		log:     log,
		channel: ch,
		service: service,
	}, nil
}

// Run блокируется до отмены контекста и закрывает канал очереди.
func (a *App) Run(ctx context.Context) error {
	<-ctx.Done()
	a.log.Info("notification sender stopping")
	return a.channel.Close()
}
