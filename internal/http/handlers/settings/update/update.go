// Package update реализует HTTP-обработчик сохранения шаблонов сообщений.
// Пустой шаблон заменяется стандартным.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Handler сохраняет настройки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сохранение настроек.
type Service interface {
	UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сохранить шаблоны сообщений
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body models.Settings true "Шаблоны"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /settings [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Settings
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	saved, err := h.service.UpdateSettings(r.Context(), req)
	if err != nil {
		log.Error("failed to save settings", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save settings"))
		return
	}

	log.Info("settings saved")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"settings": saved,
	}))
}
