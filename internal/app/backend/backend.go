// Package backend открывает хранилище, выбранное в конфигурации.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/migrations"
	"github.com/magabrotheeeer/tv-manager/internal/storage"
	"github.com/magabrotheeeer/tv-manager/internal/storage/badger"
	"github.com/magabrotheeeer/tv-manager/internal/storage/postgresql"
	"github.com/magabrotheeeer/tv-manager/internal/storage/redis"
)

const (
	dbReadyRetries = 10
	dbReadyDelay   = 3 * time.Second
)

// Open создаёт хранилище по cfg.Driver. Для PostgreSQL перед началом работы
// применяются миграции.
func Open(ctx context.Context, cfg config.Storage, log *slog.Logger) (*storage.Store, error) {
	const op = "backend.Open"

	var (
		b   storage.Backend
		err error
	)
	switch cfg.Driver {
	case config.DriverBadger:
		b, err = badger.Open(badger.Config{
			Path:       cfg.BadgerPath,
			SyncWrites: true,
			Logger:     log.With(slog.String("component", "badger")),
		})
	case config.DriverRedis:
		b, err = redis.InitServer(ctx, cfg.RedisConnection)
	case config.DriverPostgres:
		b, err = openPostgres(ctx, cfg, log)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("storage opened", slog.String("driver", cfg.Driver))
	return storage.New(b), nil
}

func openPostgres(ctx context.Context, cfg config.Storage, log *slog.Logger) (*postgresql.Storage, error) {
	db, err := postgresql.New(ctx, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := waitForDB(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func waitForDB(ctx context.Context, db *postgresql.Storage, log *slog.Logger) error {
	var err error
	for range dbReadyRetries {
		if err = postgresql.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		log.Warn("database not ready, retrying", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}
