// Package jsonexport реализует HTTP-обработчик выгрузки полной резервной копии.
package jsonexport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Handler отдаёт резервную копию как JSON-вложение.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает получение резервной копии.
type Service interface {
	ExportBackup() models.Backup
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     time.Now,
	}
}

// ServeHTTP godoc
// @Summary Резервная копия в JSON
// @Tags Backup
// @Produce json
// @Success 200 {object} models.Backup
// @Security BearerAuth
// @Router /export/json [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.backup.jsonexport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	backup := h.service.ExportBackup()
	filename := fmt.Sprintf("backup_tv_%s.json", h.now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		log.Error("failed to write backup", sl.Err(err))
		return
	}
	log.Info("backup exported", slog.Int("clients", len(backup.Clients)))
}
