// Package update реализует HTTP-обработчик редактирования данных клиента.
// Даты подписки и история оплат через него не меняются.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// Handler обрабатывает запросы на изменение клиента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает изменение клиента.
type Service interface {
	Update(ctx context.Context, id string, upd models.ClientUpdate) (models.ClientView, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить клиента
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "ID клиента"
// @Param request body models.ClientUpdate true "Новые данные"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ClientUpdate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id := chi.URLParam(r, "id")
	res, err := h.service.Update(r.Context(), id, req)
	switch {
	case errors.Is(err, manager.ErrClientNotFound):
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	case errors.Is(err, ledger.ErrNegativeValue):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(ledger.ErrNegativeValue.Error()))
		return
	case err != nil:
		log.Error("failed to update client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update client"))
		return
	}

	log.Info("client updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": res,
	}))
}
