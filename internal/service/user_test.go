package service

import (
	"errors"
	"testing"
	"time"

	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/repository"
	"github.com/curasense/auth-service/pkg/redis"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()

	users := repository.NewUserRepository(db)
	sessions := newTestSessionService(t, db, 24*time.Hour)
	cache := NewProfileCache(redis.NewClient(redis.Config{Enabled: false}))
	audit := NewAuditService(repository.NewAuditLogRepository(db))

	return NewUserService(users, fastHasher(), sessions, cache, audit)
}

func TestUserService_GetProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	profile, err := svc.GetProfile(testCtx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.Email != "jane@example.com" {
		t.Errorf("Expected email jane@example.com, got %q", profile.Email)
	}

	if _, err := svc.GetProfile(testCtx, 9999); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for missing user, got %v", err)
	}
}

func TestUserService_UpdateProfileAllowList(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	profile, err := svc.UpdateProfile(testCtx, user.ID, &dto.UpdateProfileRequest{
		FirstName:   "Janet",
		Phone:       "+15551234567",
		Preferences: map[string]any{"theme": "dark"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if profile.FirstName != "Janet" {
		t.Errorf("Expected first name Janet, got %q", profile.FirstName)
	}
	if profile.Phone != "+15551234567" {
		t.Errorf("Expected phone updated, got %q", profile.Phone)
	}
	// Untouched fields keep their values
	if profile.LastName != "Doe" {
		t.Errorf("Expected last name unchanged, got %q", profile.LastName)
	}
	if profile.Email != "jane@example.com" {
		t.Errorf("Expected email unchanged, got %q", profile.Email)
	}
}

func TestUserService_UpdateProfileEmptyRequest(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	profile, err := svc.UpdateProfile(testCtx, user.ID, &dto.UpdateProfileRequest{})
	if err != nil {
		t.Fatalf("UpdateProfile with no fields returned error: %v", err)
	}
	if profile.FirstName != "Jane" {
		t.Errorf("Expected profile untouched, got first name %q", profile.FirstName)
	}
}

func TestUserService_AccountActivity(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	sessions := newTestSessionService(t, db, 24*time.Hour)
	if _, err := sessions.Create(testCtx, user, SessionMetadata{}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Mutations leave an audit trail the user can inspect
	if _, err := svc.UpdateProfile(testCtx, user.ID, &dto.UpdateProfileRequest{FirstName: "Janet"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	result, err := svc.AccountActivity(testCtx, user.ID, 20)
	if err != nil {
		t.Fatalf("AccountActivity returned error: %v", err)
	}

	if result.ActiveSessions != 1 {
		t.Errorf("Expected 1 active session, got %d", result.ActiveSessions)
	}
	if len(result.Activity) == 0 {
		t.Fatal("Expected at least one activity entry")
	}
	if result.Activity[0].Action != "PROFILE_UPDATE" {
		t.Errorf("Expected PROFILE_UPDATE entry, got %q", result.Activity[0].Action)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	sessions := newTestSessionService(t, db, 24*time.Hour)
	if _, err := sessions.Create(testCtx, user, SessionMetadata{}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	err := svc.ChangePassword(testCtx, user.ID, &dto.UpdatePasswordRequest{
		CurrentPassword: "OldPassw0rd",
		NewPassword:     "NewPassw0rd",
		ConfirmPassword: "NewPassw0rd",
	})
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	after := reloadUser(t, db, user.ID)
	if !fastHasher().Verify("NewPassw0rd", after.PasswordHash) {
		t.Error("Expected new password to verify")
	}

	// Every session is revoked so stolen browsers are logged out
	if n := countSessions(t, db, user.ID); n != 0 {
		t.Errorf("Expected sessions revoked after password change, found %d", n)
	}
}

func TestUserService_ChangePasswordWrongCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	err := svc.ChangePassword(testCtx, user.ID, &dto.UpdatePasswordRequest{
		CurrentPassword: "NotMyPassw0rd",
		NewPassword:     "NewPassw0rd",
		ConfirmPassword: "NewPassw0rd",
	})
	if !errors.Is(err, apperrors.ErrIncorrectPassword) {
		t.Errorf("Expected ErrIncorrectPassword, got %v", err)
	}

	// Password must be unchanged
	after := reloadUser(t, db, user.ID)
	if !fastHasher().Verify("OldPassw0rd", after.PasswordHash) {
		t.Error("Expected old password to still verify")
	}
}

func TestUserService_ChangePasswordMismatchedConfirmation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(t, db)
	user := createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	err := svc.ChangePassword(testCtx, user.ID, &dto.UpdatePasswordRequest{
		CurrentPassword: "OldPassw0rd",
		NewPassword:     "NewPassw0rd",
		ConfirmPassword: "DifferentPassw0rd",
	})
	if !errors.Is(err, apperrors.ErrPasswordMismatch) {
		t.Errorf("Expected ErrPasswordMismatch, got %v", err)
	}
}
