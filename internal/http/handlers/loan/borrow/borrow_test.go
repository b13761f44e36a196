package borrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-service/internal/models"
)

type LoanServiceMock struct {
	mock.Mock
}

func (m *LoanServiceMock) Borrow(ctx context.Context, userUID string, req models.DummyLoan) (int, error) {
	args := m.Called(ctx, userUID, req)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestBorrowHandler_ServeHTTP(t *testing.T) {
	const userUID = "550e8400-e29b-41d4-a716-446655440000"
	returnDate := time.Now().AddDate(0, 0, 14).Format("02-01-2006")

	tests := []struct {
		name           string
		requestBody    interface{}
		withUser       bool
		mockID         int
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "successful borrow",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       true,
			mockID:         77,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withUser:       true,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - missing book id",
			requestBody:    models.DummyLoan{ReturnDate: returnDate},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field BookID is a required field",
		},
		{
			name:           "validation error - bad date format",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: "2026/01/15"},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field ReturnDate can contain only date in format 02-01-2006",
		},
		{
			name:           "no user in context",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "book not found",
			requestBody:    models.DummyLoan{BookID: 99, ReturnDate: returnDate},
			withUser:       true,
			mockErr:        models.ErrBookNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "book not found",
		},
		{
			name:           "user not found",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       true,
			mockErr:        models.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
		{
			name:           "loan limit reached",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       true,
			mockErr:        fmt.Errorf("user has 6 open loans: %w", models.ErrLoanLimitReached),
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "book unavailable",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       true,
			mockErr:        models.ErrBookUnavailable,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "internal error",
			requestBody:    models.DummyLoan{BookID: 10, ReturnDate: returnDate},
			withUser:       true,
			mockErr:        assert.AnError,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not borrow book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcMock := new(LoanServiceMock)
			handler := New(newNoopLogger(), svcMock)

			if tt.mockID != 0 || tt.mockErr != nil {
				svcMock.On("Borrow", mock.Anything, userUID, mock.Anything).
					Return(tt.mockID, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/loans", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, userUID)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.wantStatusCode == http.StatusOK {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(77), data["loan_id"])
			}

			svcMock.AssertExpectations(t)
		})
	}
}
