// Package csvexport реализует HTTP-обработчик выгрузки клиентов в CSV.
package csvexport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
)

// Handler отдаёт CSV-файл как вложение.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service описывает выгрузку CSV.
type Service interface {
	ExportCSV() ([]byte, error)
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
// @Summary Экспорт клиентов в CSV
// @Tags Backup
// @Produce text/csv
// @Success 200 {file} file
// @Failure 500 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /export/csv [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.backup.csvexport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, err := h.service.ExportCSV()
	if err != nil {
		log.Error("failed to export csv", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export csv"))
		return
	}

	filename := fmt.Sprintf("clientes_tv_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write csv", sl.Err(err))
		return
	}
	log.Info("csv exported", slog.Int("bytes", len(data)))
}
