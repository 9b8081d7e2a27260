package users

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, name, type, is_active, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		var createdAt, updatedAt pgtype.Timestamptz
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Type, &user.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = createdAt.Time
		user.UpdatedAt = updatedAt.Time
		users = append(users, user)
	}
	return users, rows.Err()
}

// UserType returns the stored account type for the access guard's secondary
// lookup. The id arrives as the session's string claim.
func (r *Repository) UserType(ctx context.Context, userID string) (string, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", httpx.ErrNotFound
	}
	var userType string
	err = r.pool.QueryRow(ctx, `SELECT type FROM users WHERE id = $1 AND is_active`, id).Scan(&userType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", httpx.ErrNotFound
		}
		return "", err
	}
	return userType, nil
}
