package models

import "errors"

// Ошибки уровня домена. Хранилище переводит ошибки БД в эти значения,
// сервисы оборачивают их через %w, обработчики выбирают HTTP-статус
// по классу ошибки (см. IsNotFound, IsDuplicate, IsPolicyViolation).
var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrBookNotFound — книга не найдена.
	ErrBookNotFound = errors.New("book not found")
	// ErrLoanNotFound — открытый займ не найден.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken — имя пользователя уже занято.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrTitleTaken — книга с таким названием уже есть в каталоге.
	ErrTitleTaken = errors.New("book title already exists")

	// ErrLoanLimitReached — у читателя уже максимум открытых займов.
	ErrLoanLimitReached = errors.New("loan limit reached")
	// ErrBookUnavailable — книга занята другим открытым займом.
	ErrBookUnavailable = errors.New("book is unavailable")
	// ErrInvalidReturnDate — дата возврата вне допустимого окна.
	ErrInvalidReturnDate = errors.New("invalid return date")
)

// IsNotFound сообщает, относится ли ошибка к классу "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrLoanNotFound)
}

// IsDuplicate сообщает, вызвана ли ошибка нарушением уникальности при создании.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrTitleTaken)
}

// IsPolicyViolation сообщает, вызвана ли ошибка нарушением бизнес-правила займа.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, ErrLoanLimitReached) ||
		errors.Is(err, ErrBookUnavailable) ||
		errors.Is(err, ErrInvalidReturnDate)
}
