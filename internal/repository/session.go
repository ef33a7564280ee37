package repository

import (
	"context"
	"time"

	"github.com/curasense/auth-service/internal/model"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateSession")

	start := time.Now()
	result := r.db.WithContext(ctx).Create(session)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to create session").
			Uint("user_id", session.UserID).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "Session created").
		Uint("user_id", session.UserID).
		Time("expires_at", session.ExpiresAt).
		Duration(time.Since(start)).
		Log()

	return nil
}

// GetByTokenHash looks a session up by the digest of its opaque token,
// preloading the owning user for token minting.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetSessionByTokenHash")

	var session model.Session
	result := r.db.WithContext(ctx).Preload("User").Where("token_hash = ?", tokenHash).First(&session)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to look up session").
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &session, nil
}

// Rotate swaps the session's token digest and touches last-active inside one
// transaction. The conditional WHERE means a concurrent refresh of the same
// session loses cleanly: the second caller sees no rows updated.
func (r *SessionRepository) Rotate(ctx context.Context, oldHash, newHash string, lastActiveAt time.Time) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "RotateSession")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Session{}).Where("token_hash = ?", oldHash).Updates(map[string]interface{}{
			"token_hash":     newHash,
			"last_active_at": lastActiveAt,
		})
		if result.Error != nil {
			logger.ErrorWithContext(ctx, "Failed to rotate session token").
				Err(result.Error).
				Log()
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteByTokenHash removes a session. Deleting an already-gone session is
// not an error; logout must be idempotent.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteSession")

	result := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete session").
			Err(result.Error).
			Log()
		return result.Error
	}

	return nil
}

// DeleteAllForUser revokes every session belonging to the user.
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteAllSessionsForUser")

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user sessions").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "User sessions revoked").
		Uint("user_id", userID).
		Int64("revoked_count", result.RowsAffected).
		Log()

	return result.RowsAffected, nil
}

// DeleteExpired sweeps sessions whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteExpiredSessions")

	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&model.Session{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to sweep expired sessions").
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		logger.InfoWithContext(ctx, "Expired sessions swept").
			Int64("swept_count", result.RowsAffected).
			Log()
	}

	return result.RowsAffected, nil
}

// CountForUser returns the number of live sessions a user holds.
func (r *SessionRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Count(&count)
	return count, result.Error
}
