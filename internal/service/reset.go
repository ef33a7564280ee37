package service

import (
	"context"
	"strings"
	"time"

	"github.com/curasense/auth-service/internal/constants"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

// PasswordResetService issues and spends single-use, time-boxed reset
// tokens. All invalid-token outcomes (expired, consumed, never existed)
// collapse into ErrResetTokenInvalid so a caller cannot probe which it was.
type PasswordResetService struct {
	tokens *repository.ResetTokenRepository
	users  *repository.UserRepository
	hasher *PasswordHasher
	audit  *AuditService
	ttl    time.Duration
}

func NewPasswordResetService(tokens *repository.ResetTokenRepository, users *repository.UserRepository, hasher *PasswordHasher, audit *AuditService, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		tokens: tokens,
		users:  users,
		hasher: hasher,
		audit:  audit,
		ttl:    ttl,
	}
}

// ResetTokenIssued is returned to the caller that delivers the reset link.
type ResetTokenIssued struct {
	Token string
	User  *model.User
}

// CreateToken issues a reset token for the account behind the email. An
// unknown email returns (nil, nil): the handler reports generic success
// either way, so registered addresses cannot be enumerated.
func (s *PasswordResetService) CreateToken(ctx context.Context, email string) (*ResetTokenIssued, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateResetToken")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.InfoWithContext(ctx, "Reset requested for unknown email").
				Log()
			return nil, nil
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	raw, err := generateOpaqueToken()
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token := &model.PasswordResetToken{
		TokenHash: hashOpaqueToken(raw),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password reset token issued").
		Uint("user_id", user.ID).
		Time("expires_at", token.ExpiresAt).
		Log()

	return &ResetTokenIssued{Token: raw, User: user}, nil
}

// VerifyToken is the read-only validity check behind the reset-link landing
// page. It returns the owner's masked email without consuming the token.
func (s *PasswordResetService) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "VerifyResetToken")

	token, err := s.tokens.GetByTokenHash(ctx, hashOpaqueToken(rawToken))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", apperrors.ErrResetTokenInvalid
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if token.IsExpired(time.Now()) {
		return "", apperrors.ErrResetTokenInvalid
	}

	return MaskEmail(token.User.Email), nil
}

// Consume spends the token: validates it, re-hashes the new password,
// deletes the token, and revokes every session of the owner, all in one
// transaction. A second call with the same token fails with
// ErrResetTokenInvalid.
func (s *PasswordResetService) Consume(ctx context.Context, rawToken, newPassword string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ConsumeResetToken")

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	userID, err := s.tokens.Consume(ctx, hashOpaqueToken(rawToken), passwordHash)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "Reset attempted with invalid token").
				Log()
			return apperrors.ErrResetTokenInvalid
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.audit.Record(ctx, &userID, constants.AuditActionPasswordReset, "User", "", nil)

	logger.InfoWithContext(ctx, "Password reset completed").
		Uint("user_id", userID).
		Log()

	return nil
}

// MaskEmail hides most of the local part of an address for display on the
// reset form: "jane@example.com" becomes "ja***@example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 2 {
		if at < 0 {
			return "***"
		}
		return "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
