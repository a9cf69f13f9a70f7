package tvmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/tv-manager/internal/app/backend"
	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/tv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	authservice "github.com/magabrotheeeer/tv-manager/internal/services/auth"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
	"github.com/magabrotheeeer/tv-manager/internal/services/reminder"
	"github.com/magabrotheeeer/tv-manager/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App: HTTP-сервис менеджера с необязательным встроенным планировщиком напоминаний.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	store     *storage.Store
	scheduler *reminder.Service
	interval  time.Duration
	closers   []func() error
}

// New открывает хранилище, загружает состояние и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "tvmanager.New"

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrEmptySecret)
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mgr := manager.New(store, logger, loc)
	if err := mgr.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authservice.NewAuthService(authservice.Credentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, tokens)
	if cfg.Admin.PasswordHash == "" {
		logger.Warn("admin.password_hash is empty, login is disabled")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, mgr, auth, tokens)

	app := &App{
		server: &http.Server{
			Addr:         cfg.AddressHTTP,
			Handler:      router,
			ReadTimeout:  cfg.TimeoutHTTP,
			WriteTimeout: cfg.TimeoutHTTP,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger:   logger,
		store:    store,
		interval: cfg.Scheduler.Interval,
	}

	if cfg.Scheduler.Enabled {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.GetNotificationQueues())
		if err != nil {
			_ = conn.Close()
			_ = store.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.scheduler = reminder.NewService(mgr, ch, cfg.RabbitMQ.Exchange, cfg.Scheduler.UpcomingDays, logger,
			reminder.WithJournal(store))
		app.closers = append(app.closers, ch.Close, conn.Close)
	}

	return app, nil
}

// Run запускает HTTP-сервер и ждёт отмены ctx, после чего корректно останавливает его.
func (a *App) Run(ctx context.Context) error {
	if a.scheduler != nil {
		go a.scheduler.Run(ctx, a.interval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return runErr
}

// Handler возвращает корневой обработчик; используется в тестах.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
