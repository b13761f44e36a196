package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/library-service/internal/models"
)

// RegisterUser сохраняет нового читателя и возвращает его uid.
// При конфликте уникальности email или username возвращает
// models.ErrEmailTaken или models.ErrUsernameTaken соответственно.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var uid string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (username, email, phone, password_hash, role)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING uid`,
		user.Username, user.Email, user.Phone, user.PasswordHash, user.Role).Scan(&uid)
	if err != nil {
		switch {
		case isUniqueViolation(err, "email"):
			return "", fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
		case isUniqueViolation(err, "username"):
			return "", fmt.Errorf("%s: %w", op, models.ErrUsernameTaken)
		default:
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}
	return uid, nil
}

// GetUserByUsername возвращает читателя по имени пользователя.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var user models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT uid, username, email, phone, password_hash, role
         FROM users
         WHERE username = $1`, username).Scan(
		&user.UID, &user.Username, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// GetUser возвращает читателя по uid.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var user models.User
	err := s.DB.QueryRowContext(ctx,
		`SELECT uid, username, email, phone, password_hash, role
         FROM users
         WHERE uid = $1`, uid).Scan(
		&user.UID, &user.Username, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
