package loan_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-service/internal/models"
	"github.com/magabrotheeeer/library-service/internal/services/loan"
)

type LoanRepoMock struct {
	mock.Mock
}

func (m *LoanRepoMock) GetUser(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *LoanRepoMock) CountOpenLoans(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *LoanRepoMock) FindOpenLoan(ctx context.Context, userUID string, bookID int) (*models.Loan, error) {
	args := m.Called(ctx, userUID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *LoanRepoMock) CreateLoan(ctx context.Context, l models.Loan) (int, error) {
	args := m.Called(ctx, l)
	return args.Int(0), args.Error(1)
}

func (m *LoanRepoMock) CloseLoan(ctx context.Context, loanID, bookID int) error {
	args := m.Called(ctx, loanID, bookID)
	return args.Error(0)
}

func (m *LoanRepoMock) ListLoansByUser(ctx context.Context, userUID string) ([]*models.LoanInfo, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoanInfo), args.Error(1)
}

func (m *LoanRepoMock) ReadBook(ctx context.Context, id int) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newService(repo *LoanRepoMock, cacheMock *CacheMock) *loan.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return loan.New(repo, cacheMock, loan.Policy{MaxOpenLoans: 6, MaxLoanDays: 30}, log)
}

func dateIn(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("02-01-2006")
}

func TestService_Borrow(t *testing.T) {
	const userUID = "550e8400-e29b-41d4-a716-446655440000"

	reader := &models.User{UID: userUID, Username: "reader", Role: "user"}
	availableBook := &models.Book{ID: 10, Title: "Dune", Availability: true}

	tests := []struct {
		name       string
		req        models.DummyLoan
		setupMocks func(r *LoanRepoMock, c *CacheMock)
		wantID     int
		wantErr    error
	}{
		{
			name: "successful borrow",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, c *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(2, nil).Once()
				r.On("CreateLoan", mock.Anything, mock.MatchedBy(func(l models.Loan) bool {
					return l.UserUID == userUID && l.BookID == 10 && !l.Returned
				})).Return(77, nil).Once()
				c.On("Invalidate", "book:10").Return(nil).Once()
			},
			wantID: 77,
		},
		{
			name: "borrow on the last allowed day",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(30)},
			setupMocks: func(r *LoanRepoMock, c *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(0, nil).Once()
				r.On("CreateLoan", mock.Anything, mock.Anything).Return(78, nil).Once()
				c.On("Invalidate", "book:10").Return(nil).Once()
			},
			wantID: 78,
		},
		{
			name:       "unparsable return date",
			req:        models.DummyLoan{BookID: 10, ReturnDate: "2026-01-15"},
			setupMocks: func(_ *LoanRepoMock, _ *CacheMock) {},
			wantErr:    models.ErrInvalidReturnDate,
		},
		{
			name: "return date is today",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(0)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(0, nil).Once()
			},
			wantErr: models.ErrInvalidReturnDate,
		},
		{
			name: "return date beyond the window",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(31)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(0, nil).Once()
			},
			wantErr: models.ErrInvalidReturnDate,
		},
		{
			name: "unknown user",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).
					Return(nil, models.ErrUserNotFound).Once()
			},
			wantErr: models.ErrUserNotFound,
		},
		{
			name: "loan limit reached",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(6, nil).Once()
			},
			wantErr: models.ErrLoanLimitReached,
		},
		{
			name: "book not found",
			req:  models.DummyLoan{BookID: 99, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 99).Return(nil, models.ErrBookNotFound).Once()
			},
			wantErr: models.ErrBookNotFound,
		},
		{
			// Несуществующая книга важнее лимита: читатель с полной полкой
			// всё равно получает "не найдено", счётчик займов не запрашивается
			name: "unknown book for a reader at the limit",
			req:  models.DummyLoan{BookID: 99, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 99).Return(nil, models.ErrBookNotFound).Once()
			},
			wantErr: models.ErrBookNotFound,
		},
		{
			name: "book unavailable",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).
					Return(&models.Book{ID: 10, Availability: false}, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(0, nil).Once()
			},
			wantErr: models.ErrBookUnavailable,
		},
		{
			name: "lost race for the book",
			req:  models.DummyLoan{BookID: 10, ReturnDate: dateIn(14)},
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("GetUser", mock.Anything, userUID).Return(reader, nil).Once()
				r.On("ReadBook", mock.Anything, 10).Return(availableBook, nil).Once()
				r.On("CountOpenLoans", mock.Anything, userUID).Return(0, nil).Once()
				r.On("CreateLoan", mock.Anything, mock.Anything).
					Return(0, models.ErrBookUnavailable).Once()
			},
			wantErr: models.ErrBookUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(LoanRepoMock)
			cacheMock := new(CacheMock)
			svc := newService(repo, cacheMock)

			tt.setupMocks(repo, cacheMock)

			id, err := svc.Borrow(context.Background(), userUID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			repo.AssertExpectations(t)
			cacheMock.AssertExpectations(t)
		})
	}
}

func TestService_Return(t *testing.T) {
	const userUID = "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name       string
		bookID     int
		setupMocks func(r *LoanRepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:   "successful return",
			bookID: 10,
			setupMocks: func(r *LoanRepoMock, c *CacheMock) {
				r.On("FindOpenLoan", mock.Anything, userUID, 10).
					Return(&models.Loan{ID: 77, UserUID: userUID, BookID: 10}, nil).Once()
				r.On("CloseLoan", mock.Anything, 77, 10).Return(nil).Once()
				c.On("Invalidate", "book:10").Return(nil).Once()
			},
		},
		{
			name:   "no open loan",
			bookID: 10,
			setupMocks: func(r *LoanRepoMock, _ *CacheMock) {
				r.On("FindOpenLoan", mock.Anything, userUID, 10).
					Return(nil, models.ErrLoanNotFound).Once()
			},
			wantErr: models.ErrLoanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(LoanRepoMock)
			cacheMock := new(CacheMock)
			svc := newService(repo, cacheMock)

			tt.setupMocks(repo, cacheMock)

			err := svc.Return(context.Background(), userUID, tt.bookID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cacheMock.AssertExpectations(t)
		})
	}
}

func TestService_ListByUser(t *testing.T) {
	const userUID = "550e8400-e29b-41d4-a716-446655440000"

	repo := new(LoanRepoMock)
	svc := newService(repo, new(CacheMock))

	loans := []*models.LoanInfo{
		{ID: 1, BookID: 10, BookTitle: "Dune", Returned: false},
		{ID: 2, BookID: 11, BookTitle: "Solaris", Returned: true},
	}
	repo.On("ListLoansByUser", mock.Anything, userUID).Return(loans, nil).Once()

	got, err := svc.ListByUser(context.Background(), userUID)
	require.NoError(t, err)
	assert.Equal(t, loans, got)

	repo.AssertExpectations(t)
}
