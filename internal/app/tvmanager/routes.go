// Package tvmanager собирает HTTP-приложение менеджера подписок.
package tvmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tv-manager/internal/config"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/backup/csvexport"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/backup/csvimport"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/backup/jsonexport"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/backup/jsonimport"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/create"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/list"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/message"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/read"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/remove"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/renew"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/toggle"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/client/update"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/finance/dashboard"
	"github.com/magabrotheeeer/tv-manager/internal/http/handlers/finance/history"
	settingsread "github.com/magabrotheeeer/tv-manager/internal/http/handlers/settings/read"
	settingsupdate "github.com/magabrotheeeer/tv-manager/internal/http/handlers/settings/update"
	"github.com/magabrotheeeer/tv-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/tv-manager/internal/services/auth"
	"github.com/magabrotheeeer/tv-manager/internal/services/manager"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	cfg config.HTTPServer,
	mgr *manager.Manager,
	auth *authservice.AuthService,
	tokens middlewarectx.TokenParser,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		// Открытые конечные точки
		r.Post("/login", login.New(logger, auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))

			r.Get("/clients", list.New(logger, mgr).ServeHTTP)
			r.Post("/clients", create.New(logger, mgr).ServeHTTP)
			r.Get("/clients/{id}", read.New(logger, mgr).ServeHTTP)
			r.Put("/clients/{id}", update.New(logger, mgr).ServeHTTP)
			r.Delete("/clients/{id}", remove.New(logger, mgr).ServeHTTP)
			r.Post("/clients/{id}/renew", renew.New(logger, mgr).ServeHTTP)
			r.Post("/clients/{id}/toggle", toggle.New(logger, mgr).ServeHTTP)
			r.Post("/clients/{id}/message", message.New(logger, mgr).ServeHTTP)

			r.Get("/dashboard", dashboard.New(logger, mgr).ServeHTTP)
			r.Get("/history", history.New(logger, mgr).ServeHTTP)

			r.Get("/settings", settingsread.New(logger, mgr).ServeHTTP)
			r.Put("/settings", settingsupdate.New(logger, mgr).ServeHTTP)

			r.Get("/export/csv", csvexport.New(logger, mgr).ServeHTTP)
			r.Post("/import/csv", csvimport.New(logger, mgr).ServeHTTP)
			r.Get("/export/json", jsonexport.New(logger, mgr).ServeHTTP)
			r.Post("/import/json", jsonimport.New(logger, mgr).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
