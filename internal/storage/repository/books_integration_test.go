package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-service/internal/models"
)

func TestStorage_CreateBook(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	book := GetTestBookData("Война и мир")

	id, err := storage.CreateBook(ctx, book)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	got, err := storage.ReadBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Author, got.Author)
	assert.True(t, got.Availability)
}

func TestStorage_CreateBook_DuplicateTitle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	book := GetTestBookData("Анна Каренина")

	_, err := storage.CreateBook(ctx, book)
	require.NoError(t, err)

	// Индекс построен по lower(title), регистр не спасает от дубликата
	book.Title = "АННА КАРЕНИНА"
	_, err = storage.CreateBook(ctx, book)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTitleTaken)
}

func TestStorage_ReadBook_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	got, err := storage.ReadBook(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBookNotFound)
	assert.Nil(t, got)
}

func TestStorage_ReadBookByTitle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	id := factory.CreateBook(t, "Мастер и Маргарита", "Михаил Булгаков", "Роман",
		time.Date(1967, 1, 1, 0, 0, 0, 0, time.UTC), true)

	got, err := storage.ReadBookByTitle(ctx, "мастер и маргарита")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = storage.ReadBookByTitle(ctx, "Котлован")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBookNotFound)
}

func TestStorage_FindBooks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	published := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	factory := NewTestDataFactory(storage)
	factory.CreateBook(t, "Преступление и наказание", "Фёдор Достоевский", "Роман", published, true)
	factory.CreateBook(t, "Идиот", "Фёдор Достоевский", "Роман", published, true)
	factory.CreateBook(t, "Вишнёвый сад", "Антон Чехов", "Пьеса", published, true)

	author := "достоевский"
	got, err := storage.FindBooks(ctx, models.BookFilter{Author: &author})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Результат упорядочен по названию
	assert.Equal(t, "Идиот", got[0].Title)
	assert.Equal(t, "Преступление и наказание", got[1].Title)

	title := "сад"
	genre := "Пьеса"
	got, err = storage.FindBooks(ctx, models.BookFilter{Title: &title, Genre: &genre})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Вишнёвый сад", got[0].Title)

	missing := "нет такой"
	got, err = storage.FindBooks(ctx, models.BookFilter{Title: &missing})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorage_ListBooks(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	published := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	factory := NewTestDataFactory(storage)
	factory.CreateBook(t, "Аэлита", "Алексей Толстой", "Фантастика", published, true)
	factory.CreateBook(t, "Бесы", "Фёдор Достоевский", "Роман", published, true)
	factory.CreateBook(t, "Вий", "Николай Гоголь", "Повесть", published, true)

	got, err := storage.ListBooks(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Аэлита", got[0].Title)
	assert.Equal(t, "Бесы", got[1].Title)

	got, err = storage.ListBooks(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Вий", got[0].Title)
}

func TestStorage_UpdateBook(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	id := factory.CreateBook(t, "Обломов", "Иван Гончаров", "Роман",
		time.Date(1859, 1, 1, 0, 0, 0, 0, time.UTC), false)

	updated := GetTestBookData("Обломов (переиздание)")
	rowsAffected, err := storage.UpdateBook(ctx, id, updated)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowsAffected)

	got, err := storage.ReadBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, updated.Title, got.Title)
	// Доступность обновлением каталога не меняется
	assert.False(t, got.Availability)

	rowsAffected, err = storage.UpdateBook(ctx, 999, updated)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rowsAffected)
}

func TestStorage_RemoveBook(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	id := factory.CreateBook(t, "Котлован", "Андрей Платонов", "Повесть",
		time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC), true)

	rowsAffected, err := storage.RemoveBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowsAffected)
	verification.VerifyBookDeleted(t, id)

	rowsAffected, err = storage.RemoveBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rowsAffected)
}
