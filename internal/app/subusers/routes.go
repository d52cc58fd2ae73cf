// Package subusers собирает HTTP и gRPC серверы сервиса субаккаунтов.
package subusers

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/panel-subusers/internal/config"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/health"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/create"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/key"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/list"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/read"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/remove"
	"github.com/magabrotheeeer/panel-subusers/internal/http/handlers/subuser/update"
	"github.com/magabrotheeeer/panel-subusers/internal/http/middlewarectx"
)

// Service: всё, что HTTP слою нужно от сервиса субаккаунтов.
type Service interface {
	middlewarectx.Authorizer
	middlewarectx.SubuserFinder
	create.Service
	list.Service
	update.Service
	remove.Service
	key.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, service Service, tokens middlewarectx.TokenParser, db health.Pinger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, db).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(tokens, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		r.Route("/servers/{server}/users", func(r chi.Router) {
			r.Use(middlewarectx.ServerAccess(service, logger))
			r.Get("/", list.New(logger, service).ServeHTTP)
			r.Post("/", create.New(logger, service).ServeHTTP)

			r.Route("/{subuser}", func(r chi.Router) {
				r.Use(middlewarectx.SubuserAccess(service, logger))
				r.Get("/", read.New(logger, service).ServeHTTP)
				r.Put("/", update.New(logger, service).ServeHTTP)
				r.Delete("/", remove.New(logger, service).ServeHTTP)
				r.Get("/key", key.New(logger, service).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
