package service

import (
	"context"
	"time"

	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
)

// CleanupResult reports one sweep of expired rows.
type CleanupResult struct {
	SessionsDeleted    int64 `json:"sessions_deleted"`
	ResetTokensDeleted int64 `json:"reset_tokens_deleted"`
}

// CleanupWorker sweeps expired sessions and reset tokens on an interval.
// Expiry is always enforced at read time; the sweep only keeps the tables
// from growing without bound.
type CleanupWorker struct {
	sessions *repository.SessionRepository
	tokens   *repository.ResetTokenRepository
	interval time.Duration
}

func NewCleanupWorker(sessions *repository.SessionRepository, tokens *repository.ResetTokenRepository, interval time.Duration) *CleanupWorker {
	return &CleanupWorker{
		sessions: sessions,
		tokens:   tokens,
		interval: interval,
	}
}

// Run sweeps once immediately and then on every tick until the context is
// cancelled. Intended to be launched as a goroutine from main.
func (w *CleanupWorker) Run(ctx context.Context) {
	ctx = ctxutil.WithOperation(ctx, "worker", "Cleanup")

	logger.InfoWithContext(ctx, "Cleanup worker started").
		Duration(w.interval).
		Log()

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoWithContext(ctx, "Cleanup worker stopped").
				Log()
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the counts. Also reachable through the
// admin endpoint for an on-demand sweep.
func (w *CleanupWorker) Sweep(ctx context.Context) CleanupResult {
	ctx = ctxutil.WithOperation(ctx, "worker", "Sweep")
	return w.sweep(ctx)
}

func (w *CleanupWorker) sweep(ctx context.Context) CleanupResult {
	var result CleanupResult

	sessions, err := w.sessions.DeleteExpired(ctx)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sweep expired sessions").
			Err(err).
			Log()
	} else {
		result.SessionsDeleted = sessions
	}

	tokens, err := w.tokens.DeleteExpired(ctx)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to sweep expired reset tokens").
			Err(err).
			Log()
	} else {
		result.ResetTokensDeleted = tokens
	}

	if result.SessionsDeleted > 0 || result.ResetTokensDeleted > 0 {
		logger.InfoWithContext(ctx, "Cleanup sweep finished").
			Int64("sessions_deleted", result.SessionsDeleted).
			Int64("reset_tokens_deleted", result.ResetTokensDeleted).
			Log()
	}

	return result
}
