// Package loan содержит бизнес-логику выдачи и возврата книг,
// включая проверку лимита займов и окна даты возврата.
package loan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/library-service/internal/models"
)

// LoanRepository определяет методы для работы с займами в хранилище.
type LoanRepository interface {
	// GetUser возвращает читателя по uid.
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// CountOpenLoans возвращает число незакрытых займов читателя.
	CountOpenLoans(ctx context.Context, userUID string) (int, error)
	// FindOpenLoan возвращает незакрытый займ читателя по книге.
	FindOpenLoan(ctx context.Context, userUID string, bookID int) (*models.Loan, error)
	// CreateLoan записывает займ и помечает книгу занятой в одной транзакции.
	CreateLoan(ctx context.Context, loan models.Loan) (int, error)
	// CloseLoan закрывает займ и возвращает книгу в каталог в одной транзакции.
	CloseLoan(ctx context.Context, loanID, bookID int) error
	// ListLoansByUser возвращает историю займов читателя.
	ListLoansByUser(ctx context.Context, userUID string) ([]*models.LoanInfo, error)
	// ReadBook возвращает книгу по ID.
	ReadBook(ctx context.Context, id int) (*models.Book, error)
}

// Cache описывает методы для инвалидации кеша карточек книг.
type Cache interface {
	Invalidate(key string) error
}

// Policy задаёт ограничения на выдачу книг.
type Policy struct {
	MaxOpenLoans int // Максимум незакрытых займов у читателя
	MaxLoanDays  int // Максимальный срок займа в днях
}

// Service реализует жизненный цикл займа.
type Service struct {
	repo   LoanRepository
	cache  Cache
	policy Policy
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo LoanRepository, cache Cache, policy Policy, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		policy: policy,
		log:    log,
	}
}

// Borrow выдаёт книгу читателю. Дата возврата должна быть строго позже
// сегодняшнего дня и не дальше максимального срока займа. Читатель
// не может держать больше установленного числа книг одновременно.
func (s *Service) Borrow(ctx context.Context, userUID string, req models.DummyLoan) (int, error) {
	returnDate, err := time.Parse("02-01-2006", req.ReturnDate)
	if err != nil {
		return 0, fmt.Errorf("invalid return date: %w", models.ErrInvalidReturnDate)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return 0, err
	}
	book, err := s.repo.ReadBook(ctx, req.BookID)
	if err != nil {
		return 0, err
	}

	counter, err := s.repo.CountOpenLoans(ctx, user.UID)
	if err != nil {
		return 0, err
	}
	if counter >= s.policy.MaxOpenLoans {
		return 0, fmt.Errorf("user has %d open loans: %w", counter, models.ErrLoanLimitReached)
	}

	if !book.Availability {
		return 0, fmt.Errorf("book %d: %w", book.ID, models.ErrBookUnavailable)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !returnDate.After(today) {
		return 0, fmt.Errorf("return date must be after today: %w", models.ErrInvalidReturnDate)
	}
	if returnDate.After(today.AddDate(0, 0, s.policy.MaxLoanDays)) {
		return 0, fmt.Errorf("return date exceeds %d days: %w",
			s.policy.MaxLoanDays, models.ErrInvalidReturnDate)
	}

	loan := models.Loan{
		UserUID:    userUID,
		BookID:     req.BookID,
		BorrowDate: today,
		ReturnDate: returnDate,
	}
	id, err := s.repo.CreateLoan(ctx, loan)
	if err != nil {
		return 0, err
	}

	s.log.Info("book borrowed",
		slog.Int("loan_id", id),
		slog.Int("book_id", req.BookID),
		slog.String("user_uid", userUID))

	s.invalidateBook(req.BookID)
	return id, nil
}

// Return закрывает займ читателя по книге и возвращает её в каталог.
func (s *Service) Return(ctx context.Context, userUID string, bookID int) error {
	loan, err := s.repo.FindOpenLoan(ctx, userUID, bookID)
	if err != nil {
		return err
	}

	if err := s.repo.CloseLoan(ctx, loan.ID, loan.BookID); err != nil {
		return err
	}

	s.log.Info("book returned",
		slog.Int("loan_id", loan.ID),
		slog.Int("book_id", loan.BookID),
		slog.String("user_uid", userUID))

	s.invalidateBook(loan.BookID)
	return nil
}

// ListByUser возвращает историю займов читателя, открытые займы первыми.
func (s *Service) ListByUser(ctx context.Context, userUID string) ([]*models.LoanInfo, error) {
	return s.repo.ListLoansByUser(ctx, userUID)
}

// invalidateBook сбрасывает кеш карточки книги после смены доступности.
func (s *Service) invalidateBook(bookID int) {
	cacheKey := fmt.Sprintf("book:%d", bookID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}
