package service

import (
	"context"
	"testing"
	"time"

	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
)

func TestCleanupWorker_SweepRemovesOnlyExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "jane@example.com", "Sup3rSecret")

	now := time.Now()
	rows := []model.Session{
		{TokenHash: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour), LastActiveAt: now},
		{TokenHash: "dead-1", UserID: user.ID, ExpiresAt: now.Add(-time.Hour), LastActiveAt: now},
		{TokenHash: "dead-2", UserID: user.ID, ExpiresAt: now.Add(-time.Minute), LastActiveAt: now},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	tokens := []model.PasswordResetToken{
		{TokenHash: "fresh", UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
	}
	for i := range tokens {
		if err := db.Create(&tokens[i]).Error; err != nil {
			t.Fatalf("create reset token: %v", err)
		}
	}
	stale := model.PasswordResetToken{TokenHash: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	// Insert directly; the repository Create would delete the fresh token
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("create stale token: %v", err)
	}

	worker := NewCleanupWorker(
		repository.NewSessionRepository(db),
		repository.NewResetTokenRepository(db),
		time.Hour,
	)

	result := worker.Sweep(testCtx)

	if result.SessionsDeleted != 2 {
		t.Errorf("Expected 2 sessions swept, got %d", result.SessionsDeleted)
	}
	if result.ResetTokensDeleted != 1 {
		t.Errorf("Expected 1 reset token swept, got %d", result.ResetTokensDeleted)
	}

	if n := countSessions(t, db, user.ID); n != 1 {
		t.Errorf("Expected the live session to survive, found %d rows", n)
	}

	var tokenCount int64
	if err := db.Model(&model.PasswordResetToken{}).Count(&tokenCount).Error; err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if tokenCount != 1 {
		t.Errorf("Expected the fresh token to survive, found %d rows", tokenCount)
	}

	// A second sweep finds nothing
	again := worker.Sweep(testCtx)
	if again.SessionsDeleted != 0 || again.ResetTokensDeleted != 0 {
		t.Errorf("Expected idempotent sweep, got %+v", again)
	}
}

func TestCleanupWorker_RunStopsOnCancel(t *testing.T) {
	db := newTestDB(t)

	worker := NewCleanupWorker(
		repository.NewSessionRepository(db),
		repository.NewResetTokenRepository(db),
		time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected worker to stop after context cancellation")
	}
}
