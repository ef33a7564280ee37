package repository

import (
	"context"
	"time"

	"github.com/curasense/auth-service/internal/model"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

type ResetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create stores a new reset token, replacing any earlier outstanding token
// for the same user. One live token per user keeps the attack surface small.
func (r *ResetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateResetToken")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Create(token).Error; err != nil {
			logger.ErrorWithContext(ctx, "Failed to create reset token").
				Uint("user_id", token.UserID).
				Err(err).
				Log()
			return err
		}
		return nil
	})
}

// GetByTokenHash returns the token row with its owner preloaded. Expiry is
// checked by the caller so the read stays usable for both the non-consuming
// verify and the consuming reset.
func (r *ResetTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetResetTokenByHash")

	var token model.PasswordResetToken
	result := r.db.WithContext(ctx).Preload("User").Where("token_hash = ?", tokenHash).First(&token)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to look up reset token").
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &token, nil
}

// Consume atomically spends the token: the row is deleted, the password hash
// replaced, and every session of the owner revoked in a single transaction.
// The conditional delete is the single-use guarantee; a second caller racing
// on the same token sees zero rows and the transaction fails with
// ErrRecordNotFound.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenHash, newPasswordHash string) (uint, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "ConsumeResetToken")

	var userID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token model.PasswordResetToken
		if err := tx.Where("token_hash = ? AND expires_at > ?", tokenHash, time.Now()).First(&token).Error; err != nil {
			return err
		}
		userID = token.UserID

		result := tx.Where("id = ?", token.ID).Delete(&model.PasswordResetToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&model.User{}).Where("id = ?", token.UserID).Updates(map[string]interface{}{
			"password_hash":      newPasswordHash,
			"failed_login_count": 0,
			"locked_until":       nil,
		}).Error; err != nil {
			return err
		}

		// Close the window for anyone still holding a stolen session
		if err := tx.Where("user_id = ?", token.UserID).Delete(&model.Session{}).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to consume reset token").
				Err(err).
				Log()
		}
		return 0, err
	}

	logger.InfoWithContext(ctx, "Reset token consumed").
		Uint("user_id", userID).
		Log()

	return userID, nil
}

// DeleteExpired sweeps reset tokens whose validity window has passed.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteExpiredResetTokens")

	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to sweep expired reset tokens").
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
