package service

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	"gorm.io/gorm"
)

func newTestSessionService(t *testing.T, db *gorm.DB, ttl time.Duration) *SessionService {
	t.Helper()
	tokens := NewTokenService("test-secret", 15*time.Minute)
	return NewSessionService(repository.NewSessionRepository(db), tokens, ttl)
}

func TestSessionService_CreateAndRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, 24*time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	raw, err := svc.Create(testCtx, user, SessionMetadata{IPAddress: "10.0.0.1", UserAgent: "go-test"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if raw == "" {
		t.Fatal("Expected a non-empty opaque token")
	}

	// The raw token must not be stored verbatim
	var session model.Session
	if err := db.Where("user_id = ?", user.ID).First(&session).Error; err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.TokenHash == raw {
		t.Error("Expected stored token hash to differ from the raw token")
	}
	if session.IPAddress != "10.0.0.1" || session.UserAgent != "go-test" {
		t.Errorf("Expected session metadata to be recorded, got %q %q", session.IPAddress, session.UserAgent)
	}

	result, err := svc.Refresh(testCtx, raw)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("Expected an access token from refresh")
	}
	if result.RefreshToken == "" || result.RefreshToken == raw {
		t.Error("Expected refresh to rotate the opaque token")
	}
}

func TestSessionService_RefreshRotationInvalidatesOldToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, 24*time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	raw, err := svc.Create(testCtx, user, SessionMetadata{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first, err := svc.Refresh(testCtx, raw)
	if err != nil {
		t.Fatalf("first Refresh returned error: %v", err)
	}

	// Replaying the already-rotated token must fail
	if _, err := svc.Refresh(testCtx, raw); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Expected ErrInvalidRefreshToken for replayed token, got %v", err)
	}

	// The rotated token keeps working
	if _, err := svc.Refresh(testCtx, first.RefreshToken); err != nil {
		t.Errorf("Expected rotated token to refresh, got %v", err)
	}

	// Rotation reuses the session row instead of growing the table
	if n := countSessions(t, db, user.ID); n != 1 {
		t.Errorf("Expected 1 session row after rotations, got %d", n)
	}
}

func TestSessionService_RefreshUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, 24*time.Hour)

	if _, err := svc.Refresh(testCtx, "never-issued"); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestSessionService_RefreshExpiredSession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, -time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	raw, err := svc.Create(testCtx, user, SessionMetadata{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Refresh(testCtx, raw); !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("Expected ErrInvalidRefreshToken for expired session, got %v", err)
	}

	// The expired row is gone after the failed refresh
	if n := countSessions(t, db, user.ID); n != 0 {
		t.Errorf("Expected expired session to be deleted, found %d rows", n)
	}
}

func TestSessionService_DestroyIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, 24*time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	raw, err := svc.Create(testCtx, user, SessionMetadata{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Destroy(testCtx, raw); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if err := svc.Destroy(testCtx, raw); err != nil {
		t.Errorf("Expected second Destroy to succeed, got %v", err)
	}
	if err := svc.Destroy(testCtx, "never-issued"); err != nil {
		t.Errorf("Expected Destroy of unknown token to succeed, got %v", err)
	}
}

func TestSessionService_DestroyAll(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSessionService(t, db, 24*time.Hour)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")
	other := createTestUser(t, db, "john@example.com", "Sup3rSecret")

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(testCtx, user, SessionMetadata{}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	otherRaw, err := svc.Create(testCtx, other, SessionMetadata{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.DestroyAll(testCtx, user.ID); err != nil {
		t.Fatalf("DestroyAll returned error: %v", err)
	}

	if n := countSessions(t, db, user.ID); n != 0 {
		t.Errorf("Expected 0 sessions after DestroyAll, got %d", n)
	}

	// Other users are untouched
	if _, err := svc.Refresh(testCtx, otherRaw); err != nil {
		t.Errorf("Expected other user's session to survive, got %v", err)
	}
}
