// Package list реализует HTTP-обработчик списка клиентов.
//
// По умолчанию возвращаются только активные клиенты, у которых до окончания
// осталось не больше трёх дней, включая просроченных. Параметр all=true
// снимает это ограничение, а непустой q ищет по имени и логину среди всех клиентов.
package list

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tv-manager/internal/http/response"
	"github.com/magabrotheeeer/tv-manager/internal/models"
)

// Handler отдаёт отфильтрованный список клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку клиентов.
type Service interface {
	List(query string, showAll bool) []models.ClientView
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Tags Clients
// @Produce json
// @Param q query string false "Поиск по имени или логину"
// @Param all query bool false "Показать всех клиентов"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("q")
	showAll, err := strconv.ParseBool(r.URL.Query().Get("all"))
	if err != nil {
		showAll = false
	}

	res := h.service.List(query, showAll)
	if res == nil {
		res = []models.ClientView{}
	}

	log.Info("list clients", slog.Int("count", len(res)), slog.Bool("all", showAll))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"clients":    res,
	}))
}
