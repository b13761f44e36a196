package library

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/library-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/library-service/internal/http/handlers/auth/register"
	bookcreate "github.com/magabrotheeeer/library-service/internal/http/handlers/book/create"
	bookfind "github.com/magabrotheeeer/library-service/internal/http/handlers/book/find"
	bookread "github.com/magabrotheeeer/library-service/internal/http/handlers/book/read"
	bookremove "github.com/magabrotheeeer/library-service/internal/http/handlers/book/remove"
	bookupdate "github.com/magabrotheeeer/library-service/internal/http/handlers/book/update"
	loanborrow "github.com/magabrotheeeer/library-service/internal/http/handlers/loan/borrow"
	loanlist "github.com/magabrotheeeer/library-service/internal/http/handlers/loan/list"
	loanreturn "github.com/magabrotheeeer/library-service/internal/http/handlers/loan/returnloan"
	"github.com/magabrotheeeer/library-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/library-service/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/library-service/internal/services/catalog"
	loanservice "github.com/magabrotheeeer/library-service/internal/services/loan"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.Service, catalogService *catalogservice.Service, loanService *loanservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/books", bookcreate.New(logger, catalogService).ServeHTTP)
			r.Get("/books", bookfind.New(logger, catalogService).ServeHTTP)
			r.Get("/books/{id}", bookread.New(logger, catalogService).ServeHTTP)
			r.Put("/books/{id}", bookupdate.New(logger, catalogService).ServeHTTP)
			r.Delete("/books/{id}", bookremove.New(logger, catalogService).ServeHTTP)
			r.Post("/loans", loanborrow.New(logger, loanService).ServeHTTP)
			r.Post("/loans/return", loanreturn.New(logger, loanService).ServeHTTP)
			r.Get("/loans", loanlist.New(logger, loanService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
