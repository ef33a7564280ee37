package service

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/repository"
	"gorm.io/gorm"
)

func newTestResetService(t *testing.T, db *gorm.DB, ttl time.Duration) *PasswordResetService {
	t.Helper()
	return NewPasswordResetService(
		repository.NewResetTokenRepository(db),
		repository.NewUserRepository(db),
		fastHasher(),
		NewAuditService(repository.NewAuditLogRepository(db)),
		ttl,
	)
}

func TestPasswordResetService_CreateAndVerify(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	issued, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}
	if issued == nil || issued.Token == "" {
		t.Fatal("Expected a token for a registered email")
	}
	if issued.User.ID != user.ID {
		t.Errorf("Expected token owner %d, got %d", user.ID, issued.User.ID)
	}

	masked, err := svc.VerifyToken(testCtx, issued.Token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if masked != "ja***@example.com" {
		t.Errorf("Expected masked email ja***@example.com, got %q", masked)
	}

	// Verify is non-consuming
	if _, err := svc.VerifyToken(testCtx, issued.Token); err != nil {
		t.Errorf("Expected second verify to succeed, got %v", err)
	}
}

func TestPasswordResetService_UnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, time.Hour)

	issued, err := svc.CreateToken(testCtx, "nobody@example.com")
	if err != nil {
		t.Fatalf("Expected nil error for unknown email, got %v", err)
	}
	if issued != nil {
		t.Error("Expected nil result for unknown email")
	}
}

func TestPasswordResetService_ConsumeChangesPasswordAndRevokesSessions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, time.Hour)
	user := createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	sessions := newTestSessionService(t, db, 24*time.Hour)
	if _, err := sessions.Create(testCtx, user, SessionMetadata{}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	issued, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if err := svc.Consume(testCtx, issued.Token, "NewPassw0rd"); err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}

	after := reloadUser(t, db, user.ID)
	if !fastHasher().Verify("NewPassw0rd", after.PasswordHash) {
		t.Error("Expected new password to verify after reset")
	}
	if fastHasher().Verify("OldPassw0rd", after.PasswordHash) {
		t.Error("Expected old password to stop working after reset")
	}

	if n := countSessions(t, db, user.ID); n != 0 {
		t.Errorf("Expected all sessions revoked on reset, found %d", n)
	}
}

func TestPasswordResetService_ConsumeIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, time.Hour)
	createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	issued, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if err := svc.Consume(testCtx, issued.Token, "NewPassw0rd"); err != nil {
		t.Fatalf("first Consume returned error: %v", err)
	}

	err = svc.Consume(testCtx, issued.Token, "AnotherPassw0rd")
	if !errors.Is(err, apperrors.ErrResetTokenInvalid) {
		t.Errorf("Expected ErrResetTokenInvalid on second consume, got %v", err)
	}
}

func TestPasswordResetService_ExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, -time.Minute)
	createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	issued, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := svc.VerifyToken(testCtx, issued.Token); !errors.Is(err, apperrors.ErrResetTokenInvalid) {
		t.Errorf("Expected ErrResetTokenInvalid for expired token on verify, got %v", err)
	}

	if err := svc.Consume(testCtx, issued.Token, "NewPassw0rd"); !errors.Is(err, apperrors.ErrResetTokenInvalid) {
		t.Errorf("Expected ErrResetTokenInvalid for expired token on consume, got %v", err)
	}
}

func TestPasswordResetService_NewTokenReplacesOld(t *testing.T) {
	db := newTestDB(t)
	svc := newTestResetService(t, db, time.Hour)
	createTestUser(t, db, "jane@example.com", "OldPassw0rd")

	first, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}
	second, err := svc.CreateToken(testCtx, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateToken returned error: %v", err)
	}

	if _, err := svc.VerifyToken(testCtx, first.Token); !errors.Is(err, apperrors.ErrResetTokenInvalid) {
		t.Errorf("Expected first token to be replaced, got %v", err)
	}
	if _, err := svc.VerifyToken(testCtx, second.Token); err != nil {
		t.Errorf("Expected second token to verify, got %v", err)
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane@example.com", "ja***@example.com"},
		{"jo@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"longlocalpart@x.io", "lo***@x.io"},
		{"not-an-email", "***"},
	}

	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
