package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vtube-api/internal/domain"
	"vtube-api/pkg/database"
)

type PostgresUserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetByID gets a user by id
func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT id, username, full_name, avatar_url, created_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.AvatarURL,
		&user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Exists reports whether a user exists
func (r *PostgresUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	if err := r.db.Pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}
