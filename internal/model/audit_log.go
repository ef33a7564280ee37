package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an append-only record of a sensitive action. Rows are written
// best-effort and never updated or deleted by the auth core.
type AuditLog struct {
	ID         uint           `gorm:"primarykey"`
	UserID     *uint          `gorm:"column:user_id;index"`
	Action     string         `gorm:"column:action;not null"`
	Resource   string         `gorm:"column:resource;not null"`
	ResourceID string         `gorm:"column:resource_id"`
	IPAddress  string         `gorm:"column:ip_address"`
	UserAgent  string         `gorm:"column:user_agent"`
	Metadata   datatypes.JSON `gorm:"column:metadata"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
}
