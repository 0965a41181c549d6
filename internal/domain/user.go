package domain

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID              string     `json:"id"` // first 16 hex chars of sha256(lowercase email)
	Email           string     `json:"email"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
}

// IsVerified reports whether the user has confirmed an emailed code.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,max=254,no_emoji"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenInfo is the decoded identity carried by a valid token.
type TokenInfo struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerificationRequest struct {
	Email string `json:"email" binding:"required,max=254"`
}

type VerificationConfirmRequest struct {
	Email string `json:"email" binding:"required,max=254"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// VerificationCode is a pending one-time code kept in the KV store until it expires.
type VerificationCode struct {
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserRepository persists users. Upsert keeps an existing EmailVerifiedAt
// when the incoming user has none.
type UserRepository interface {
	Upsert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
}

type AuthUsecase interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	VerifyToken(ctx context.Context, token string) (*TokenInfo, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	RequestVerification(ctx context.Context, req *VerificationRequest) error
	ConfirmVerification(ctx context.Context, req *VerificationConfirmRequest) error
}
