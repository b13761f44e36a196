// Package list реализует HTTP-обработчик получения истории займов читателя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-service/internal/http/response"
	"github.com/magabrotheeeer/library-service/internal/lib/sl"
	"github.com/magabrotheeeer/library-service/internal/models"
)

// Handler обрабатывает запросы на получение займов читателя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка займов.
type Service interface {
	ListByUser(ctx context.Context, userUID string) ([]*models.LoanInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мои займы
// @Description Возвращает историю займов текущего читателя, открытые займы первыми.
// @Tags Loans
// @Produce  json
// @Success 200 {object} map[string]any "Список займов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /loans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("useruid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	loans, err := h.service.ListByUser(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list loans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list loans"))
		return
	}

	log.Info("list loans", "count", len(loans))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(loans),
		"loans":      loans,
	}))
}
