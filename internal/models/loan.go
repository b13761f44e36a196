package models

import "time"

// Loan представляет запись о выдаче книги читателю.
// ReturnDate — согласованная дата возврата, не фактическая.
// Запись никогда не удаляется: возврат переводит Returned в true.
type Loan struct {
	ID         int       // Идентификатор займа
	UserUID    string    // Идентификатор читателя
	BookID     int       // Идентификатор книги
	BorrowDate time.Time // Дата выдачи
	ReturnDate time.Time // Согласованная дата возврата
	Returned   bool      // Возвращена ли книга
}

// DummyLoan используется для приёма данных займа из JSON-запроса.
// Дата возврата приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummyLoan struct {
	BookID     int    `json:"book_id" validate:"required,gt=0"`                        // Идентификатор книги
	ReturnDate string `json:"return_date" validate:"required,datetime=02-01-2006"` // Дата возврата в формате 02-01-2006
}

// LoanInfo — займ с развёрнутыми данными читателя и книги.
// Используется в списках займов и в напоминаниях о возврате.
type LoanInfo struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	BookID     int       `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BorrowDate time.Time `json:"borrow_date"`
	ReturnDate time.Time `json:"return_date"`
	Returned   bool      `json:"returned"`
}
