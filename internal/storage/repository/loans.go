package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/library-service/internal/models"
)

// CountOpenLoans возвращает количество незакрытых займов читателя.
func (s *Storage) CountOpenLoans(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountOpenLoans"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var counter int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loans
         WHERE user_uid = $1 AND returned = FALSE`, userUID).Scan(&counter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return counter, nil
}

// FindOpenLoan возвращает незакрытый займ читателя по книге.
func (s *Storage) FindOpenLoan(ctx context.Context, userUID string, bookID int) (*models.Loan, error) {
	const op = "storage.FindOpenLoan"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var loan models.Loan
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, user_uid, book_id, borrow_date, return_date, returned
         FROM loans
         WHERE user_uid = $1 AND book_id = $2 AND returned = FALSE`,
		userUID, bookID).Scan(
		&loan.ID, &loan.UserUID, &loan.BookID,
		&loan.BorrowDate, &loan.ReturnDate, &loan.Returned)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrLoanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &loan, nil
}

// CreateLoan в одной транзакции записывает займ и помечает книгу занятой.
// Обновление доступности защищено условием availability = TRUE, поэтому
// при гонке за одну книгу проигравшая транзакция получает ноль строк
// и займ не создаётся, возвращается models.ErrBookUnavailable.
func (s *Storage) CreateLoan(ctx context.Context, loan models.Loan) (int, error) {
	const op = "storage.CreateLoan"

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE books SET availability = FALSE
         WHERE id = $1 AND availability = TRUE`, loan.BookID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	counter, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if counter == 0 {
		return 0, fmt.Errorf("%s: %w", op, models.ErrBookUnavailable)
	}

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO loans (user_uid, book_id, borrow_date, return_date, returned)
         VALUES ($1, $2, $3, $4, FALSE)
         RETURNING id`,
		loan.UserUID, loan.BookID, loan.BorrowDate, loan.ReturnDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// CloseLoan в одной транзакции закрывает займ и возвращает книгу в каталог.
func (s *Storage) CloseLoan(ctx context.Context, loanID, bookID int) error {
	const op = "storage.CloseLoan"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE loans SET returned = TRUE
         WHERE id = $1 AND returned = FALSE`, loanID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	counter, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if counter == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrLoanNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE books SET availability = TRUE WHERE id = $1`, bookID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLoansByUser возвращает историю займов читателя вместе с названиями
// книг. Сначала идут незакрытые займы, внутри групп свежие выше.
func (s *Storage) ListLoansByUser(ctx context.Context, userUID string) ([]*models.LoanInfo, error) {
	const op = "storage.ListLoansByUser"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT l.id, u.email, u.username, l.book_id, b.title,
                l.borrow_date, l.return_date, l.returned
         FROM loans l
         JOIN users u ON u.uid = l.user_uid
         JOIN books b ON b.id = l.book_id
         WHERE l.user_uid = $1
         ORDER BY l.returned, l.borrow_date DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var loans []*models.LoanInfo
	for rows.Next() {
		var info models.LoanInfo
		if err := rows.Scan(&info.ID, &info.Email, &info.Username,
			&info.BookID, &info.BookTitle, &info.BorrowDate,
			&info.ReturnDate, &info.Returned); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		loans = append(loans, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// FindLoansDueTomorrow возвращает незакрытые займы, срок которых
// истекает завтра. Используется планировщиком напоминаний.
func (s *Storage) FindLoansDueTomorrow(ctx context.Context) ([]*models.LoanInfo, error) {
	const op = "storage.FindLoansDueTomorrow"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT l.id, u.email, u.username, l.book_id, b.title,
                l.borrow_date, l.return_date, l.returned
         FROM loans l
         JOIN users u ON u.uid = l.user_uid
         JOIN books b ON b.id = l.book_id
         WHERE l.returned = FALSE
           AND l.return_date = CURRENT_DATE + INTERVAL '1 day'`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var loans []*models.LoanInfo
	for rows.Next() {
		var info models.LoanInfo
		if err := rows.Scan(&info.ID, &info.Email, &info.Username,
			&info.BookID, &info.BookTitle, &info.BorrowDate,
			&info.ReturnDate, &info.Returned); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		loans = append(loans, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}
