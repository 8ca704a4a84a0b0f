package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"creperie/api/models"
)

// ErrUserNotFound is returned when no admin account matches the email.
var ErrUserNotFound = errors.New("admin user not found")

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new admin account.
func (s *UserStore) CreateUser(ctx context.Context, email string, hashedPassword []byte) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := `
		INSERT INTO admin_users (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return user, nil
}

// GetUserByEmail fetches an admin account by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user := &models.AdminUser{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM admin_users
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get admin user by email: %w", err)
	}
	return user, nil
}
