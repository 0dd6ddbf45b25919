package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by Repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence for the users table.
type Repository struct {
	db DBTX
}

// NewRepository constructs a repository.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// RoleOf returns the role stored for principalID.
func (r *Repository) RoleOf(ctx context.Context, principalID string) (string, error) {
	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, principalID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("users: role of %s: %w", principalID, err)
	}
	return role, nil
}

// SetStatusByEmail updates the status of the account registered with email.
func (r *Repository) SetStatusByEmail(ctx context.Context, email string, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET status = $1, updated_at = NOW() WHERE lower(email) = lower($2)`, string(status), strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("users: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
