package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/auth"
	"interview-coach-backend/pkg/email"
	"interview-coach-backend/pkg/kvstore"
	"interview-coach-backend/pkg/logger"
	"interview-coach-backend/pkg/security"
)

const (
	maxEmailLength          = 254
	verificationCodeTTL     = 10 * time.Minute
	maxVerificationAttempts = 3
	verificationKeyPrefix   = "verification:"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var disposableDomains = map[string]bool{
	"tempmail.com":      true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"throwaway.email":   true,
	"mailinator.com":    true,
	"yopmail.com":       true,
}

// VerificationSender delivers one-time codes to a mailbox.
type VerificationSender interface {
	SendVerificationCode(to string, data email.VerificationEmailData) error
	IsConfigured() bool
}

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenService
	kv       kvstore.Store
	mailer   VerificationSender
	now      func() time.Time
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens *auth.TokenService, kv kvstore.Store, mailer VerificationSender) domain.AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		kv:       kv,
		mailer:   mailer,
		now:      time.Now,
	}
}

// GenerateUserID derives the stable user ID from an email address.
func GenerateUserID(emailAddr string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(emailAddr)))
	return hex.EncodeToString(sum[:])[:16]
}

// IsValidEmail checks the address shape and length.
func IsValidEmail(emailAddr string) bool {
	return len(emailAddr) <= maxEmailLength && emailRegex.MatchString(emailAddr)
}

// IsDisposableEmail reports whether the address uses a known throwaway domain.
func IsDisposableEmail(emailAddr string) bool {
	at := strings.LastIndex(emailAddr, "@")
	if at < 0 {
		return false
	}
	return disposableDomains[strings.ToLower(emailAddr[at+1:])]
}

func normalizeEmail(emailAddr string) (string, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !IsValidEmail(emailAddr) {
		return "", apperror.BadRequest("Invalid email format")
	}
	if IsDisposableEmail(emailAddr) {
		return "", apperror.BadRequest("Disposable email addresses are not allowed")
	}
	return emailAddr, nil
}

func (u *authUsecase) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	emailAddr, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := u.now()
	user := &domain.User{
		ID:          GenerateUserID(emailAddr),
		Email:       emailAddr,
		CreatedAt:   now,
		UpdatedAt:   now,
		LastLoginAt: &now,
	}

	// With mail delivery available an address must be confirmed before its first token.
	if u.mailer != nil && u.mailer.IsConfigured() {
		existing, err := u.userRepo.GetByID(ctx, user.ID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.Internal(err)
		}
		if existing == nil || !existing.IsVerified() {
			return nil, apperror.Forbidden("Email not verified. Request a verification code first")
		}
	}

	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	token, expiresAt, err := u.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.LoginResponse{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

func (u *authUsecase) VerifyToken(ctx context.Context, token string) (*domain.TokenInfo, error) {
	claims, err := u.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}
	info := &domain.TokenInfo{UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if ctxID := domain.UserIDFromContext(ctx); ctxID != "" && ctxID != id {
		return nil, apperror.Forbidden("You can only view your own account")
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *authUsecase) RequestVerification(ctx context.Context, req *domain.VerificationRequest) error {
	emailAddr, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return apperror.Internal(err)
	}

	record := domain.VerificationCode{Code: code, ExpiresAt: u.now().Add(verificationCodeTTL)}
	if err := kvstore.SetJSON(ctx, u.kv, verificationKeyPrefix+emailAddr, record, verificationCodeTTL); err != nil {
		return apperror.Internal(err)
	}

	if u.mailer == nil || !u.mailer.IsConfigured() {
		logger.Log.Warn("SMTP not configured, verification code not delivered", "email_hash", security.HashValue(emailAddr))
		return nil
	}
	data := email.VerificationEmailData{Code: code, ExpiresMinutes: int(verificationCodeTTL.Minutes())}
	if err := u.mailer.SendVerificationCode(emailAddr, data); err != nil {
		return apperror.ServiceUnavailable("Unable to send verification email", err)
	}
	return nil
}

func (u *authUsecase) ConfirmVerification(ctx context.Context, req *domain.VerificationConfirmRequest) error {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	key := verificationKeyPrefix + emailAddr

	var record domain.VerificationCode
	err := kvstore.GetJSON(ctx, u.kv, key, &record)
	if errors.Is(err, kvstore.ErrNotFound) {
		return apperror.BadRequest("Verification code expired or not found. Request a new code").
			WithDetails(map[string]int{"remaining": 0})
	}
	if err != nil {
		return apperror.Internal(err)
	}

	now := u.now()
	if now.After(record.ExpiresAt) {
		_ = u.kv.Delete(ctx, key)
		return apperror.BadRequest("Verification code expired or not found. Request a new code").
			WithDetails(map[string]int{"remaining": 0})
	}
	if record.Attempts >= maxVerificationAttempts {
		_ = u.kv.Delete(ctx, key)
		return apperror.TooManyRequests("Too many failed verification attempts. Request a new code")
	}

	record.Attempts++
	if record.Code == req.Code {
		if err := u.kv.Delete(ctx, key); err != nil {
			return apperror.Internal(err)
		}
		return u.markVerified(ctx, emailAddr, now)
	}

	remaining := maxVerificationAttempts - record.Attempts
	if remaining <= 0 {
		_ = u.kv.Delete(ctx, key)
		return apperror.TooManyRequests("Too many failed verification attempts. Request a new code")
	}
	if err := kvstore.SetJSON(ctx, u.kv, key, record, record.ExpiresAt.Sub(now)); err != nil {
		return apperror.Internal(err)
	}
	return apperror.BadRequest("Invalid verification code").WithDetails(map[string]int{"remaining": remaining})
}

// markVerified records the confirmation on the user, creating the user when the
// address has never signed in.
func (u *authUsecase) markVerified(ctx context.Context, emailAddr string, now time.Time) error {
	user, err := u.userRepo.GetByID(ctx, GenerateUserID(emailAddr))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{ID: GenerateUserID(emailAddr), Email: emailAddr, CreatedAt: now}
	case err != nil:
		return apperror.Internal(err)
	}
	user.UpdatedAt = now
	user.EmailVerifiedAt = &now
	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
