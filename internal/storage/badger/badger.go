// Package badger реализует бэкенд хранилища на встроенной базе BadgerDB.
// Это хранилище по умолчанию: не требует внешних сервисов и живёт в одном каталоге.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/magabrotheeeer/tv-manager/internal/storage"
)

// Config настраивает открытие базы.
type Config struct {
	// Path: каталог базы. Игнорируется для InMemory.
	Path string
	// InMemory держит данные только в памяти, используется в тестах.
	InMemory bool
	// SyncWrites сбрасывает каждую запись на диск до возврата из Put.
	SyncWrites bool
	// Logger получает внутренние сообщения Badger; nil отключает их.
	Logger *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Backend хранит значения в BadgerDB.
type Backend struct {
	db *badger.DB
}

// Open открывает или создаёт базу.
func Open(cfg Config) (*Backend, error) {
	const op = "storage.badger.Open"
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("path is required for persistent database"))
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("%s: create directory %s: %w", op, cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Backend{db: db}, nil
}

// Get возвращает значение ключа или storage.ErrNotFound.
func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	const op = "storage.badger.Get"
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Put записывает значение ключа.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	const op = "storage.badger.Put"
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает базу.
func (b *Backend) Close() error {
	return b.db.Close()
}
