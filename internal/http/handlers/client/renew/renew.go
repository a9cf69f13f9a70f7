// Package renew реализует HTTP-обработчик продления подписки клиента.
//
// Новый цикл начинается с сегодняшнего дня, если подписка уже закончилась,
// иначе продолжается от текущей даты окончания. Оплата добавляется в историю.
package renew

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

// Handler обрабатывает запросы на продление.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает продление подписки.
type Service interface {
	Renew(ctx context.Context, id string, in models.RenewInput) (models.ClientView, error)
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
// @Summary Продлить подписку
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "ID клиента"
// @Param request body models.RenewInput true "Длительность и сумма"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id}/renew [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.renew"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RenewInput
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
	res, err := h.service.Renew(r.Context(), id, req)
	switch {
	case errors.Is(err, manager.ErrClientNotFound):
		log.Warn("client not found", slog.String("id", id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("client not found"))
		return
	case errors.Is(err, ledger.ErrInvalidDuration):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(ledger.ErrInvalidDuration.Error()))
		return
	case errors.Is(err, ledger.ErrNegativeValue):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(ledger.ErrNegativeValue.Error()))
		return
	case err != nil:
		log.Error("failed to renew client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not renew subscription"))
		return
	}

	log.Info("subscription renewed",
		slog.String("id", id),
		slog.String("expiration", res.ExpirationDate),
		slog.String("value", req.Value.String()),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": res,
	}))
}
