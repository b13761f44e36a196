// Package borrow реализует HTTP-обработчик выдачи книги читателю.
//
// Handler принимает JSON с ID книги и датой возврата, валидирует их,
// извлекает uid читателя из контекста и вызывает бизнес-логику займа.
// Нарушения политики выдачи возвращаются со статусом 422.
package borrow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-service/internal/http/response"
	"github.com/magabrotheeeer/library-service/internal/lib/sl"
	"github.com/magabrotheeeer/library-service/internal/models"
)

// Handler управляет HTTP-запросами на выдачу книг.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики займов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выдачи книги.
type Service interface {
	Borrow(ctx context.Context, userUID string, req models.DummyLoan) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Взять книгу
// @Description Выдает книгу текущему читателю до указанной даты. Дата возврата должна быть позже сегодняшнего дня и не дальше максимального срока займа.
// @Tags Loans
// @Accept  json
// @Produce  json
// @Param request body models.DummyLoan true "ID книги и дата возврата"
// @Success 200 {object} map[string]any "Успешная выдача книги"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Читатель или книга не найдены"
// @Failure 422 {object} response.ErrorResponse "Нарушение политики выдачи"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /loans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.borrow"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLoan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("useruid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Borrow(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to borrow book", sl.Err(err))
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case models.IsNotFound(err):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case models.IsPolicyViolation(err):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not borrow book"))
		}
		return
	}

	log.Info("success to borrow book", slog.Int("loan_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"loan_id": id,
	}))
}
