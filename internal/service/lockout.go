package service

import (
	"context"
	"time"

	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
)

// LockoutGuard bounds online brute-force guessing: after threshold
// consecutive failures the account refuses logins for the lock window,
// regardless of credential correctness. Successful login resets the
// counter, so legitimate users are never locked out permanently.
type LockoutGuard struct {
	users     *repository.UserRepository
	threshold int
	duration  time.Duration
}

func NewLockoutGuard(users *repository.UserRepository, threshold int, duration time.Duration) *LockoutGuard {
	return &LockoutGuard{
		users:     users,
		threshold: threshold,
		duration:  duration,
	}
}

// Check rejects the attempt up front while the account is inside an active
// lock window, before any password work happens. The returned error is
// ErrAccountLocked: internally distinguishable for the audit trail, but it
// carries the same user-facing message as ErrInvalidCredentials.
func (g *LockoutGuard) Check(ctx context.Context, user *model.User) error {
	if user.IsLocked(time.Now()) {
		logger.WarnWithContext(ctx, "Login attempt on locked account").
			Uint("user_id", user.ID).
			Time("locked_until", *user.LockedUntil).
			Log()
		return apperrors.ErrAccountLocked
	}
	return nil
}

// RecordFailure increments the failed-attempt counter and locks the account
// once the threshold is crossed. Two concurrent failures may under-count by
// one; the bound is soft by design and the write stays a single statement.
func (g *LockoutGuard) RecordFailure(ctx context.Context, user *model.User) {
	ctx = ctxutil.WithOperation(ctx, "service", "RecordLoginFailure")

	if err := g.users.RecordLoginFailure(ctx, user.ID, g.threshold, g.duration); err != nil {
		// A failed bookkeeping write must not change the login outcome
		logger.ErrorWithContext(ctx, "Failed to record login failure").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return
	}

	if user.FailedLoginCount+1 >= g.threshold {
		logger.WarnWithContext(ctx, "Account locked after repeated failures").
			Uint("user_id", user.ID).
			Int("failed_count", user.FailedLoginCount+1).
			Duration(g.duration).
			Log()
	}
}

// Reset clears the lockout state and stamps the successful login.
func (g *LockoutGuard) Reset(ctx context.Context, user *model.User, ipAddress string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ResetLockout")
	return g.users.RecordLoginSuccess(ctx, user.ID, ipAddress)
}
