// Package create реализует HTTP-обработчик регистрации нового клиента.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Handler принимает данные клиента, валидирует их и передаёт сервису.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает добавление клиента.
type Service interface {
	Add(ctx context.Context, in models.ClientInput) (models.ClientView, error)
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
// @Summary Добавить клиента
// @Description Создаёт клиента с первой записью в истории оплат.
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body models.ClientInput true "Данные клиента"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /clients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ClientInput
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Add(r.Context(), req)
	switch {
	case errors.Is(err, ledger.ErrInvalidDuration):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(ledger.ErrInvalidDuration.Error()))
		return
	case errors.Is(err, ledger.ErrNegativeValue):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(ledger.ErrNegativeValue.Error()))
		return
	case err != nil:
		log.Error("failed to add client", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add client"))
		return
	}

	log.Info("client added", slog.String("id", res.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"client": res,
	}))
}
