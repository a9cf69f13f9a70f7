// Package remove реализует HTTP-обработчик удаления клиента.
// Удаление необратимо, поэтому требует параметра confirm=true.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// Handler обрабатывает запросы на удаление клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление клиента.
type Service interface {
	Delete(ctx context.Context, id string, confirm bool) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить клиента
// @Tags Clients
// @Produce json
// @Param id path string true "ID клиента"
// @Param confirm query bool true "Подтверждение удаления"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 428 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	err := h.service.Delete(r.Context(), id, confirm)
	switch {
	case errors.Is(err, manager.ErrConfirmationRequired):
		log.Info("delete not confirmed", slog.String("id", id))
		render.Status(r, http.StatusPreconditionRequired)
		render.JSON(w, r, response.Error("confirmation required: repeat with confirm=true"))
		return
	case errors.Is(err, manager.ErrClientNotFound):
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	case err != nil:
		log.Error("failed to delete client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete client"))
		return
	}

	log.Info("client deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted_id": id,
	}))
}
