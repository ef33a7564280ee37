package repository

import (
	"context"

	"github.com/curasense/auth-service/internal/model"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit entry. Callers treat this as best-effort; a failed
// write is logged but never propagated into the user-facing outcome.
func (r *AuditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateAuditLog")

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to write audit log entry").
			String("action", entry.Action).
			Err(err).
			Log()
		return err
	}

	return nil
}

// ListForUser returns the most recent entries for an actor, newest first.
func (r *AuditLogRepository) ListForUser(ctx context.Context, userID uint, limit int) ([]model.AuditLog, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "ListAuditLogsForUser")

	if limit <= 0 {
		limit = 50
	}

	var entries []model.AuditLog
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		logger.ErrorWithContext(ctx, "Failed to list audit log entries").
			Uint("user_id", userID).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	return entries, nil
}
