package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitNop()

	dsn := fmt.Sprintf("file:test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.PasswordResetToken{},
		&model.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return db
}

// fastHasher keeps bcrypt cheap in tests.
func fastHasher() *PasswordHasher {
	return NewPasswordHasher(4)
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) *model.User {
	t.Helper()

	hash, err := fastHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Jane",
		LastName:     "Doe",
		DisplayName:  "Jane Doe",
		Role:         model.RolePatient,
		Status:       model.StatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	audits := repository.NewAuditLogRepository(db)

	tokens := NewTokenService("test-secret", 15*time.Minute)
	sessionSvc := NewSessionService(sessions, tokens, 24*time.Hour)
	lockout := NewLockoutGuard(users, 5, 15*time.Minute)
	audit := NewAuditService(audits)

	return NewAuthService(users, fastHasher(), tokens, sessionSvc, lockout, audit)
}

func countSessions(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Session{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return count
}

var testCtx = context.Background()
