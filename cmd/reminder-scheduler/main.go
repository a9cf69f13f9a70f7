// Package main содержит точку входа для отдельного планировщика напоминаний.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/tv-manager/internal/app/reminder"
	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env, os.Stdout)

	logger.Info("starting reminder-scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := reminder.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize reminder app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("reminder app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("reminder-scheduler stopped gracefully")
}
