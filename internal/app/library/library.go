// Package library собирает приложение библиотеки: хранилище, кеш,
// сервисы, маршруты и HTTP-сервер с корректным завершением.
package library

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/library-service/internal/cache"
	"github.com/magabrotheeeer/library-service/internal/config"
	"github.com/magabrotheeeer/library-service/internal/lib/jwt"
	"github.com/magabrotheeeer/library-service/internal/migrations"
	authservice "github.com/magabrotheeeer/library-service/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/library-service/internal/services/catalog"
	loanservice "github.com/magabrotheeeer/library-service/internal/services/loan"
	"github.com/magabrotheeeer/library-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и зависимости приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает приложение: подключает базу данных, применяет миграции,
// инициализирует кеш и сервисы, регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	loanService := loanservice.New(db, cacheRedis, loanservice.Policy{
		MaxOpenLoans: cfg.MaxOpenLoans,
		MaxLoanDays:  cfg.MaxLoanDays,
	}, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, authService, catalogService, loanService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста
// или ошибки сервера. При отмене выполняет graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
