// Package models содержит доменные структуры каталога книг,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Book представляет книгу каталога.
// Availability равно true, когда по книге нет открытого займа,
// и меняется только движком займов.
type Book struct {
	ID              int       // Идентификатор книги
	Title           string    // Название
	Author          string    // Автор
	Genre           string    // Жанр
	PublicationDate time.Time // Дата публикации
	Availability    bool      // Доступна ли книга для выдачи
}

// DummyBook используется для приёма данных книги из JSON-запроса,
// прежде чем конвертировать их в Book.
// Дата приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummyBook struct {
	Title           string `json:"title" validate:"required"`                               // Название
	Author          string `json:"author" validate:"required"`                              // Автор
	Genre           string `json:"genre" validate:"required"`                               // Жанр
	PublicationDate string `json:"publication_date" validate:"required,datetime=02-01-2006"` // Дата публикации в формате 02-01-2006
}

// BookFilter описывает необязательные фильтры поиска по каталогу.
// nil означает, что фильтр не применяется; непустые фильтры
// комбинируются через AND, совпадение — по подстроке без учёта регистра.
type BookFilter struct {
	Title  *string
	Author *string
	Genre  *string
}
