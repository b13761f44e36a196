// Package catalog содержит бизнес-логику каталога книг с кешированием.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-service/internal/models"
)

// BookRepository определяет методы для работы с книгами в хранилище.
type BookRepository interface {
	// CreateBook добавляет новую книгу и возвращает её ID.
	CreateBook(ctx context.Context, book models.Book) (int, error)
	// ReadBook возвращает книгу по ID.
	ReadBook(ctx context.Context, id int) (*models.Book, error)
	// ReadBookByTitle возвращает книгу по точному названию.
	ReadBookByTitle(ctx context.Context, title string) (*models.Book, error)
	// FindBooks возвращает книги, подходящие под фильтр.
	FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error)
	// ListBooks возвращает страницу каталога.
	ListBooks(ctx context.Context, limit, offset int) ([]*models.Book, error)
	// UpdateBook обновляет описательные поля книги и возвращает число обновлённых записей.
	UpdateBook(ctx context.Context, id int, book models.Book) (int64, error)
	// RemoveBook удаляет книгу и возвращает число удалённых записей.
	RemoveBook(ctx context.Context, id int) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует операции каталога, включая кеширование карточек книг.
type Service struct {
	repo  BookRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo BookRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create добавляет книгу в каталог. Название должно быть уникальным,
// новая книга сразу доступна для выдачи.
func (s *Service) Create(ctx context.Context, req models.DummyBook) (int, error) {
	publicationDate, err := time.Parse("02-01-2006", req.PublicationDate)
	if err != nil {
		return 0, fmt.Errorf("invalid publication date: %w", err)
	}

	// Уникальный индекс в БД остаётся последней линией защиты при гонке.
	if _, err := s.repo.ReadBookByTitle(ctx, req.Title); err == nil {
		return 0, models.ErrTitleTaken
	} else if !errors.Is(err, models.ErrBookNotFound) {
		return 0, err
	}

	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationDate: publicationDate,
		Availability:    true,
	}

	id, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return 0, err
	}

	s.log.Info("created new book", slog.Int("id", id))

	cacheKey := fmt.Sprintf("book:%d", id)
	book.ID = id
	if err := s.cache.Set(cacheKey, book, time.Hour); err != nil {
		s.log.Warn("failed to cache book", slog.String("key", cacheKey), slog.Any("err", err))
	}

	return id, nil
}

// Read возвращает книгу по ID, используя кеш или репозиторий.
func (s *Service) Read(ctx context.Context, id int) (*models.Book, error) {
	var result *models.Book
	cacheKey := fmt.Sprintf("book:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ReadBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if result != nil {
		if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
			s.log.Warn("failed to add to cache", slog.String("key", cacheKey),
				slog.Any("err", err))
		}
	}
	return result, nil
}

// Find возвращает книги, подходящие под фильтры поиска. Пустые фильтры
// не ограничивают выборку.
func (s *Service) Find(ctx context.Context, title, author, genre string) ([]*models.Book, error) {
	filter := models.BookFilter{}
	if title != "" {
		filter.Title = &title
	}
	if author != "" {
		filter.Author = &author
	}
	if genre != "" {
		filter.Genre = &genre
	}
	return s.repo.FindBooks(ctx, filter)
}

// List возвращает страницу каталога с пагинацией.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	return s.repo.ListBooks(ctx, limit, offset)
}

// Update обновляет описательные поля книги и инвалидирует кеш.
// Доступность книги этим методом не меняется.
func (s *Service) Update(ctx context.Context, id int, req models.DummyBook) error {
	publicationDate, err := time.Parse("02-01-2006", req.PublicationDate)
	if err != nil {
		return fmt.Errorf("invalid publication date: %w", err)
	}

	book := models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationDate: publicationDate,
	}

	counter, err := s.repo.UpdateBook(ctx, id, book)
	if err != nil {
		return err
	}
	if counter == 0 {
		return models.ErrBookNotFound
	}

	cacheKey := fmt.Sprintf("book:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return nil
}

// Remove удаляет книгу из каталога и инвалидирует кеш.
// Книгу с записями о выдаче удалить не получится, ссылочная
// целостность в БД это запрещает.
func (s *Service) Remove(ctx context.Context, id int) error {
	cacheKey := fmt.Sprintf("book:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	counter, err := s.repo.RemoveBook(ctx, id)
	if err != nil {
		return err
	}
	if counter == 0 {
		return models.ErrBookNotFound
	}
	return nil
}
