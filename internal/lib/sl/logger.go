package sl

import (
	"io"
	"log/slog"
)

// SetupLogger создает логгер под окружение: текстовый вывод с debug-уровнем
// для local и dev, JSON с уровнем info для prod.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "dev":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
