package kv

import (
	"context"
	"errors"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/kvstore"
)

const userKeyPrefix = "user:"

type userRepo struct {
	kv kvstore.Store
}

// NewUserRepository stores users in the key-value store. Used when no database is configured.
func NewUserRepository(kv kvstore.Store) domain.UserRepository {
	return &userRepo{kv: kv}
}

func (r *userRepo) Upsert(ctx context.Context, user *domain.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		user.CreatedAt = existing.CreatedAt
		if user.LastLoginAt == nil {
			user.LastLoginAt = existing.LastLoginAt
		}
		if user.EmailVerifiedAt == nil {
			user.EmailVerifiedAt = existing.EmailVerifiedAt
		}
	case !errors.Is(err, domain.ErrUserNotFound):
		return err
	}
	return kvstore.SetJSON(ctx, r.kv, userKeyPrefix+user.ID, user, 0)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := kvstore.GetJSON(ctx, r.kv, userKeyPrefix+id, &user); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
