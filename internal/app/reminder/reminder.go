// Package reminder собирает отдельный процесс планировщика напоминаний.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tv-manager/internal/app/backend"
	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
	reminderservice "github.com/magabrotheeeer/tv-manager/internal/services/reminder"
	"github.com/magabrotheeeer/tv-manager/internal/storage"
)

// ErrEmbeddedStorage возвращается для badger: его каталог может открыть только один процесс.
var ErrEmbeddedStorage = errors.New("badger storage is single-process, enable scheduler inside the HTTP service instead")

// App представляет приложение планировщика.
type App struct {
	service  *reminderservice.Service
	interval time.Duration
	store    *storage.Store
	conn     *amqp.Connection
	ch       *amqp.Channel
	logger   *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.reminder.New"

	if cfg.Storage.Driver == config.DriverBadger {
		return nil, fmt.Errorf("%s: %w", op, ErrEmbeddedStorage)
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mgr := manager.New(store, logger, loc)
	service := reminderservice.NewService(mgr, ch, cfg.RabbitMQ.Exchange, cfg.Scheduler.UpcomingDays, logger,
		reminderservice.WithReload(), reminderservice.WithJournal(store))

	return &App{
		service:  service,
		interval: cfg.Scheduler.Interval,
		store:    store,
		conn:     conn,
		ch:       ch,
		logger:   logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.service.Run(ctx, a.interval)

	a.logger.Info("shutting down reminder scheduler")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
