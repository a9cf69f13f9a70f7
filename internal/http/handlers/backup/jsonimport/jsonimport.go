// Package jsonimport реализует HTTP-обработчик восстановления из резервной копии.
//
// Восстановление полностью заменяет клиентов и настройки, поэтому без
// confirm=true обработчик только сообщает, сколько клиентов в копии.
package jsonimport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// MaxBackupSize: предельный размер резервной копии.
const MaxBackupSize = 32 << 20

// Handler обрабатывает загрузку резервной копии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает восстановление из копии.
type Service interface {
	RestoreBackup(ctx context.Context, b models.Backup, confirm bool) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Восстановить из резервной копии
// @Tags Backup
// @Accept json
// @Produce json
// @Param confirm query bool true "Подтверждение замены данных"
// @Param request body models.Backup true "Резервная копия"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 428 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /import/json [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.backup.jsonimport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var backup models.Backup
	r.Body = http.MaxBytesReader(w, r.Body, MaxBackupSize)
	if err := render.DecodeJSON(r.Body, &backup); err != nil {
		log.Error("failed to decode backup", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid backup file"))
		return
	}

	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	err := h.service.RestoreBackup(r.Context(), backup, confirm)
	switch {
	case errors.Is(err, manager.ErrInvalidBackup):
		log.Warn("backup rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("backup has no clients list"))
		return
	case errors.Is(err, manager.ErrConfirmationRequired):
		log.Info("restore not confirmed", slog.Int("clients", len(backup.Clients)))
		render.Status(r, http.StatusPreconditionRequired)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "confirmation required: this replaces all data, repeat with confirm=true",
			Data:   map[string]any{"count": len(backup.Clients)},
		})
		return
	case err != nil:
		log.Error("failed to restore backup", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not restore backup"))
		return
	}

	log.Info("backup restored", slog.Int("clients", len(backup.Clients)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count": len(backup.Clients),
	}))
}
