// Package toggle реализует HTTP-обработчик архивации клиента и возврата из архива.
package toggle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// Handler переключает признак активности клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает переключение активности.
type Service interface {
	ToggleActive(ctx context.Context, id string) (models.ClientView, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Архивировать или восстановить клиента
// @Tags Clients
// @Produce json
// @Param id path string true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id}/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.toggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	res, err := h.service.ToggleActive(r.Context(), id)
	if errors.Is(err, manager.ErrClientNotFound) {
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	}
	if err != nil {
		log.Error("failed to toggle client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle client"))
		return
	}

	log.Info("client toggled", slog.String("id", id), slog.Bool("active", res.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": res,
	}))
}
