// Package history реализует HTTP-обработчик истории оплат,
// сгруппированной по дням, неделям или месяцам.
package history

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
)

// Handler отдаёт сгруппированную историю оплат.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает построение истории.
type Service interface {
	History(g ledger.Granularity) ledger.HistoryView
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История оплат
// @Tags Finance
// @Produce json
// @Param group query string false "day, week или month" Enums(day, week, month)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.finance.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	g, err := ledger.ParseGranularity(r.URL.Query().Get("group"))
	if err != nil {
		log.Error("invalid group parameter", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("group must be day, week or month"))
		return
	}

	view := h.service.History(g)
	log.Info("history built", slog.String("group", string(g)), slog.Int("groups", len(view.Groups)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"history": view,
	}))
}
