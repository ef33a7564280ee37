package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

// generateOpaqueToken returns 32 bytes of crypto/rand entropy, base64url
// encoded. The value carries no decodable claims; validity is a server-side
// lookup by digest only.
func generateOpaqueToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashOpaqueToken digests a raw token for storage and lookup. SHA-256 is
// enough here: the input already has 256 bits of entropy, so an offline
// attack against the digest buys nothing.
func hashOpaqueToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// SessionMetadata is the device context recorded alongside a refresh token.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// SessionService owns the refresh-token lifecycle: creation at login,
// rotation on every refresh, destruction on logout, and bulk revocation.
type SessionService struct {
	sessions *repository.SessionRepository
	tokens   *TokenService
	ttl      time.Duration
}

func NewSessionService(sessions *repository.SessionRepository, tokens *TokenService, ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
	}
}

// TTL returns the refresh-token lifetime; the handler uses it as the cookie
// max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create persists a new session and returns the raw opaque token. The raw
// value is returned exactly once; only its digest is stored.
func (s *SessionService) Create(ctx context.Context, user *model.User, meta SessionMetadata) (string, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateSession")

	raw, err := generateOpaqueToken()
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to generate refresh token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := time.Now()
	session := &model.Session{
		TokenHash:    hashOpaqueToken(raw),
		UserID:       user.ID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		ExpiresAt:    now.Add(s.ttl),
		LastActiveAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return raw, nil
}

// Refresh exchanges a valid opaque token for a new access token and a
// rotated opaque token. Unknown and expired sessions fail closed with
// ErrInvalidRefreshToken; the caller forces a re-login. Rotation narrows
// the replay window: the presented token is dead the moment the swap
// commits.
func (s *SessionService) Refresh(ctx context.Context, rawToken string) (*dto.RefreshResult, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "RefreshSession")

	oldHash := hashOpaqueToken(rawToken)
	session, err := s.sessions.GetByTokenHash(ctx, oldHash)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.WarnWithContext(ctx, "Refresh with unknown session token").
				Log()
			return nil, apperrors.ErrInvalidRefreshToken
		}
		// Lookup failures (including timeouts) are "cannot verify": fail
		// closed, never open.
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if session.IsExpired(time.Now()) {
		logger.InfoWithContext(ctx, "Refresh with expired session").
			Uint("user_id", session.UserID).
			Time("expired_at", session.ExpiresAt).
			Log()
		_ = s.sessions.DeleteByTokenHash(ctx, oldHash)
		return nil, apperrors.ErrInvalidRefreshToken
	}

	newRaw, err := generateOpaqueToken()
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sessions.Rotate(ctx, oldHash, hashOpaqueToken(newRaw), time.Now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			// Lost a race with a concurrent refresh or a logout
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	accessToken, err := s.tokens.Issue(&session.User)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue access token on refresh").
			Uint("user_id", session.UserID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Session refreshed").
		Uint("user_id", session.UserID).
		Log()

	return &dto.RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: newRaw,
		ExpiresIn:    int(s.tokens.TTL().Seconds()),
	}, nil
}

// Destroy deletes the session for the given raw token. Idempotent: a token
// that maps to nothing is already logged out.
func (s *SessionService) Destroy(ctx context.Context, rawToken string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DestroySession")
	return s.sessions.DeleteByTokenHash(ctx, hashOpaqueToken(rawToken))
}

// CountActive returns the number of unexpired sessions the user holds.
func (s *SessionService) CountActive(ctx context.Context, userID uint) (int64, error) {
	return s.sessions.CountForUser(ctx, userID)
}

// DestroyAll revokes every session the user holds.
func (s *SessionService) DestroyAll(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DestroyAllSessions")
	_, err := s.sessions.DeleteAllForUser(ctx, userID)
	return err
}
