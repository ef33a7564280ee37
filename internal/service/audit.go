package service

import (
	"context"
	"encoding/json"

	"github.com/curasense/auth-service/internal/dto"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/datatypes"
)

// AuditService appends entries to the audit trail. Every write is
// best-effort: a failed entry is logged and swallowed so it can never block
// a login or logout.
type AuditService struct {
	entries *repository.AuditLogRepository
}

func NewAuditService(entries *repository.AuditLogRepository) *AuditService {
	return &AuditService{entries: entries}
}

// Record writes one entry, pulling the request IP and user agent off the
// context.
func (s *AuditService) Record(ctx context.Context, userID *uint, action, resource, resourceID string, metadata map[string]any) {
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ctxutil.GetClientIP(ctx),
		UserAgent:  ctxutil.GetUserAgent(ctx),
	}

	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		logger.WarnWithContext(ctx, "Audit entry dropped").
			String("action", action).
			Err(err).
			Log()
	}
}

// RecentActivity returns the user's latest entries, newest first, mapped to
// the client-safe projection.
func (s *AuditService) RecentActivity(ctx context.Context, userID uint, limit int) ([]dto.ActivityEntry, error) {
	rows, err := s.entries.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	activity := make([]dto.ActivityEntry, 0, len(rows))
	for _, row := range rows {
		activity = append(activity, dto.ActivityEntry{
			Action:    row.Action,
			Resource:  row.Resource,
			IPAddress: row.IPAddress,
			UserAgent: row.UserAgent,
			CreatedAt: row.CreatedAt,
		})
	}

	return activity, nil
}
