// Package read реализует HTTP-обработчик получения шаблонов сообщений.
package read

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Handler отдаёт текущие настройки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение настроек.
type Service interface {
	Settings() models.Settings
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Шаблоны сообщений
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.read"

	h.log.Debug("settings requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"settings": h.service.Settings(),
	}))
}
