package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach-backend/internal/domain"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

// Upsert inserts a new user or refreshes an existing one. Null timestamps never
// overwrite stored ones.
func (r *userRepo) Upsert(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, created_at, updated_at, last_login_at, email_verified_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (id) DO UPDATE
              SET email = EXCLUDED.email, updated_at = EXCLUDED.updated_at,
                  last_login_at = COALESCE(EXCLUDED.last_login_at, users.last_login_at),
                  email_verified_at = COALESCE(EXCLUDED.email_verified_at, users.email_verified_at)
              RETURNING created_at, email_verified_at`
	return r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.CreatedAt, user.UpdatedAt, user.LastLoginAt, user.EmailVerifiedAt,
	).Scan(&user.CreatedAt, &user.EmailVerifiedAt)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, created_at, updated_at, last_login_at, email_verified_at FROM users WHERE id = $1`
	var user domain.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt, &user.EmailVerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
