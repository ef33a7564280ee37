package database

import (
	"fmt"

	"github.com/curasense/auth-service/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the auth tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.PasswordResetToken{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
