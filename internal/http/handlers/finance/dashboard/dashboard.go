// Package dashboard реализует HTTP-обработчик сводных показателей:
// счётчики клиентов по статусам, выручка и прогноз на ближайшие 30 дней.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/ledger"
	"github.com/magabrotheeeer/tv-manager/internal/outreach"
)

// Handler отдаёт показатели дашборда.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает расчёт показателей.
type Service interface {
	Dashboard() ledger.Summary
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Дашборд
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.finance.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s := h.service.Dashboard()
	log.Info("dashboard computed", slog.Int("active", s.Active), slog.Int("expired", s.Expired))

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"summary": s,
		"formatted": map[string]string{
			"totalRevenue":      outreach.FormatCurrency(s.TotalRevenue),
			"last30DaysRevenue": outreach.FormatCurrency(s.Last30DaysRevenue),
			"currentMonthTotal": outreach.FormatCurrency(s.CurrentMonthTotal),
			"forecast":          outreach.FormatCurrency(s.Forecast),
		},
	}))
}
