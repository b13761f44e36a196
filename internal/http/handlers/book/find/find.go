// Package find реализует HTTP-обработчик просмотра и поиска по каталогу.
//
// Без параметров поиска возвращается страница каталога с пагинацией.
// Параметры title, author и genre фильтруют книги по подстроке без
// учёта регистра, условия объединяются через AND.
package find

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-service/internal/http/response"
	"github.com/magabrotheeeer/library-service/internal/lib/sl"
	"github.com/magabrotheeeer/library-service/internal/models"
)

// Handler обрабатывает запросы просмотра и поиска каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	Find(ctx context.Context, title, author, genre string) ([]*models.Book, error)
	List(ctx context.Context, limit, offset int) ([]*models.Book, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Просмотр и поиск по каталогу
// @Description Возвращает книги каталога. С параметрами title, author, genre выполняет поиск, без них — постраничный список.
// @Tags Books
// @Produce  json
// @Param title query string false "Фильтр по названию"
// @Param author query string false "Фильтр по автору"
// @Param genre query string false "Фильтр по жанру"
// @Param limit query int false "Размер страницы (по умолчанию 10)"
// @Param offset query int false "Смещение страницы"
// @Success 200 {object} map[string]any "Список книг"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.find"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")
	genre := r.URL.Query().Get("genre")

	var books []*models.Book
	var err error

	if title != "" || author != "" || genre != "" {
		books, err = h.service.Find(r.Context(), title, author, genre)
	} else {
		limit, convErr := strconv.Atoi(r.URL.Query().Get("limit"))
		if convErr != nil || limit <= 0 {
			limit = 10
		}
		offset, convErr := strconv.Atoi(r.URL.Query().Get("offset"))
		if convErr != nil || offset < 0 {
			offset = 0
		}
		books, err = h.service.List(r.Context(), limit, offset)
	}
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list books"))
		return
	}

	log.Info("list books", "count", len(books))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(books),
		"books":      books,
	}))
}
