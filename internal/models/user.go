package models

// User представляет зарегистрированного читателя библиотеки.
type User struct {
	UID          string  // Уникальный идентификатор пользователя
	Username     string  // Имя пользователя (уникальное, используется для входа)
	Email        string  // Электронная почта (уникальная)
	Phone        *string // Телефон, необязательное поле
	PasswordHash string  // Хэш пароля пользователя
	Role         string  // Роль пользователя, admin или user
}
