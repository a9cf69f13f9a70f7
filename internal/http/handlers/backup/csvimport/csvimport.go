// Package csvimport реализует HTTP-обработчик импорта клиентов из CSV.
//
// Без параметра confirm=true файл только разбирается, и в ответе возвращается
// число клиентов, которые будут добавлены. С подтверждением клиенты сохраняются.
// Файл принимается телом запроса или полем file формы multipart.
package csvimport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/csvcodec"
	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// MaxFileSize: предельный размер загружаемого файла.
const MaxFileSize = 10 << 20

// Handler обрабатывает загрузку CSV.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает импорт CSV.
type Service interface {
	CommitImport(ctx context.Context, data []byte, confirm bool) (csvcodec.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Импорт клиентов из CSV
// @Tags Backup
// @Accept text/csv
// @Produce json
// @Param confirm query bool false "Сохранить импортированных клиентов"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /import/csv [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.backup.csvimport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data, err := readUpload(w, r)
	if err != nil {
		log.Error("failed to read upload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read file"))
		return
	}

	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	res, err := h.service.CommitImport(r.Context(), data, confirm)
	switch {
	case errors.Is(err, manager.ErrConfirmationRequired):
		log.Info("csv import previewed", slog.Int("clients", len(res.Clients)), slog.Int("skipped", res.Skipped))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"confirmed": false,
			"count":     len(res.Clients),
			"skipped":   res.Skipped,
		}))
		return
	case errors.Is(err, csvcodec.ErrNoData):
		log.Warn("csv has no data rows")
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("csv has no data rows"))
		return
	case err != nil:
		log.Error("failed to import csv", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not import csv"))
		return
	}

	log.Info("csv imported", slog.Int("clients", len(res.Clients)), slog.Int("skipped", res.Skipped))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"confirmed": true,
		"count":     len(res.Clients),
		"skipped":   res.Skipped,
	}))
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return io.ReadAll(r.Body)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
