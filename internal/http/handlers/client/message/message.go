// Package message реализует HTTP-обработчик отправки напоминания клиенту.
//
// Обработчик собирает текст по шаблону, соответствующему текущему статусу,
// возвращает ссылку для WhatsApp и отмечает, что сообщение отправлено сегодня.
package message

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

// Handler готовит сообщение и отмечает отправку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает отметку об отправленном сообщении.
type Service interface {
	MarkMessageSent(ctx context.Context, id string) (models.Outreach, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сообщение клиенту
// @Description Возвращает текст и ссылку wa.me и отмечает дату отправки.
// @Tags Clients
// @Produce json
// @Param id path string true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id}/message [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.message"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	res, err := h.service.MarkMessageSent(r.Context(), id)
	if errors.Is(err, manager.ErrClientNotFound) {
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	}
	if err != nil {
		log.Error("failed to mark message sent", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not prepare message"))
		return
	}

	log.Info("message prepared", slog.String("id", id), slog.String("status", string(res.Status)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": res,
	}))
}
