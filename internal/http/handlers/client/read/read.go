// Package read реализует HTTP-обработчик получения клиента по ID
// вместе со статусом и числом дней до окончания.
package read

import (
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

// Handler обрабатывает запросы на получение клиента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение клиента.
type Service interface {
	Get(id string) (models.ClientView, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Клиент по ID
// @Tags Clients
// @Produce json
// @Param id path string true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	res, err := h.service.Get(id)
	if errors.Is(err, manager.ErrClientNotFound) {
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	}
	if err != nil {
		log.Error("failed to read client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read client"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": res,
	}))
}
