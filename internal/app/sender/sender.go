// Package sender собирает процесс, который читает очереди напоминаний
// и пересылает их оператору по почте.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/tv-manager/internal/services/sender"
)

// App представляет приложение отправителя напоминаний.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к брокеру и готовит SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"
	if cfg.OperatorEmail == "" {
		return nil, fmt.Errorf("%s: %w", op, senderservice.ErrNoRecipient)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.GetNotificationQueues())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", sl.Err(cerr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewService(transport, cfg.OperatorEmail, logger),
		logger:        logger,
	}, nil
}

// Run слушает все очереди напоминаний до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	var errs []error
	for _, q := range rabbitmq.GetNotificationQueues() {
		if err := rabbitmq.ConsumeMessages(ctx, a.ch, q.QueueName, a.senderService.HandleReminder, a.logger); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		<-ctx.Done()
		a.logger.Info("sender service shutting down gracefully")
	}

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return errors.Join(errs...)
}
