package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/library-service/internal/models"
)

// CreateBook сохраняет новую книгу и возвращает её идентификатор.
// При конфликте уникальности названия возвращает models.ErrTitleTaken.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (int, error) {
	const op = "storage.CreateBook"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO books (title, author, genre, publication_date, availability)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id`,
		book.Title, book.Author, book.Genre, book.PublicationDate,
		book.Availability).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "title") {
			return 0, fmt.Errorf("%s: %w", op, models.ErrTitleTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ReadBook возвращает книгу по идентификатору.
func (s *Storage) ReadBook(ctx context.Context, id int) (*models.Book, error) {
	const op = "storage.ReadBook"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var book models.Book
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, author, genre, publication_date, availability
         FROM books
         WHERE id = $1`, id).Scan(
		&book.ID, &book.Title, &book.Author, &book.Genre,
		&book.PublicationDate, &book.Availability)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrBookNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &book, nil
}

// ReadBookByTitle возвращает книгу по точному названию без учёта регистра.
func (s *Storage) ReadBookByTitle(ctx context.Context, title string) (*models.Book, error) {
	const op = "storage.ReadBookByTitle"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var book models.Book
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, title, author, genre, publication_date, availability
         FROM books
         WHERE lower(title) = lower($1)`, title).Scan(
		&book.ID, &book.Title, &book.Author, &book.Genre,
		&book.PublicationDate, &book.Availability)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrBookNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &book, nil
}

// FindBooks возвращает книги, подходящие под фильтр. Пустые поля фильтра
// не ограничивают выборку, непустые сопоставляются по подстроке без
// учёта регистра. Условия объединяются через AND.
func (s *Storage) FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	const op = "storage.FindBooks"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, author, genre, publication_date, availability
         FROM books
         WHERE ($1::text IS NULL OR title ILIKE '%' || $1 || '%')
           AND ($2::text IS NULL OR author ILIKE '%' || $2 || '%')
           AND ($3::text IS NULL OR genre ILIKE '%' || $3 || '%')
         ORDER BY title`,
		filter.Title, filter.Author, filter.Genre)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var books []*models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Genre,
			&book.PublicationDate, &book.Availability); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return books, nil
}

// ListBooks возвращает страницу каталога, отсортированную по названию.
func (s *Storage) ListBooks(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	const op = "storage.ListBooks"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, author, genre, publication_date, availability
         FROM books
         ORDER BY title
         LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var books []*models.Book
	for rows.Next() {
		var book models.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Genre,
			&book.PublicationDate, &book.Availability); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		books = append(books, &book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return books, nil
}

// UpdateBook обновляет описательные поля книги. Доступность книги
// этим методом не меняется, ею управляет жизненный цикл займа.
// Возвращает число обновлённых строк.
func (s *Storage) UpdateBook(ctx context.Context, id int, book models.Book) (int64, error) {
	const op = "storage.UpdateBook"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE books
         SET title = $1, author = $2, genre = $3, publication_date = $4
         WHERE id = $5`,
		book.Title, book.Author, book.Genre, book.PublicationDate, id)
	if err != nil {
		if isUniqueViolation(err, "title") {
			return 0, fmt.Errorf("%s: %w", op, models.ErrTitleTaken)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	counter, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return counter, nil
}

// RemoveBook удаляет книгу из каталога и возвращает число удалённых строк.
func (s *Storage) RemoveBook(ctx context.Context, id int) (int64, error) {
	const op = "storage.RemoveBook"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	counter, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return counter, nil
}
