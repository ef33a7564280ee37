package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserService serves the authenticated self-service surface: reading the
// profile, updating allow-listed fields, and changing the password.
type UserService struct {
	users    *repository.UserRepository
	hasher   *PasswordHasher
	sessions *SessionService
	cache    *ProfileCache
	audit    *AuditService
}

func NewUserService(
	users *repository.UserRepository,
	hasher *PasswordHasher,
	sessions *SessionService,
	cache *ProfileCache,
	audit *AuditService,
) *UserService {
	return &UserService{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		cache:    cache,
		audit:    audit,
	}
}

// GetProfile returns the current state of the account, preferring the cache.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetProfile")

	if cached := s.cache.Get(ctx, userID); cached != nil {
		logger.DebugWithContext(ctx, "Profile served from cache").
			Uint("user_id", userID).
			Log()
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	profile := dto.NewUserResponse(user)
	s.cache.Set(ctx, profile)

	return profile, nil
}

// UpdateProfile applies the allow-listed fields and returns the updated
// projection. Empty strings mean "leave unchanged"; there is no way to blank
// a field through this endpoint.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateProfile")

	fields := map[string]interface{}{}
	if v := strings.TrimSpace(req.FirstName); v != "" {
		fields["first_name"] = v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		fields["last_name"] = v
	}
	if v := strings.TrimSpace(req.DisplayName); v != "" {
		fields["display_name"] = v
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.TrimSpace(req.AvatarURL); v != "" {
		fields["avatar_url"] = v
	}
	if len(req.Preferences) > 0 {
		raw, err := json.Marshal(req.Preferences)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInvalidInput, err)
		}
		fields["preferences"] = datatypes.JSON(raw)
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, fields); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		s.cache.Invalidate(ctx, userID)

		changed := make([]string, 0, len(fields))
		for name := range fields {
			changed = append(changed, name)
		}
		s.audit.Record(ctx, &userID, constants.AuditActionProfileUpdate, "User", "", map[string]any{
			"fields": changed,
		})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	profile := dto.NewUserResponse(user)
	s.cache.Set(ctx, profile)

	return profile, nil
}

// AccountActivity returns the caller's live session count and recent audit
// trail, so a user can spot a login they do not recognize.
func (s *UserService) AccountActivity(ctx context.Context, userID uint, limit int) (*dto.ActivityResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "AccountActivity")

	active, err := s.sessions.CountActive(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	activity, err := s.audit.RecentActivity(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.ActivityResponse{
		ActiveSessions: active,
		Activity:       activity,
	}, nil
}

// ChangePassword verifies the current password before accepting the new
// one, so a stolen access token alone cannot take over the account.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, req *dto.UpdatePasswordRequest) error {
	ctx = ctxutil.WithOperation(ctx, "service", "ChangePassword")

	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		logger.WarnWithContext(ctx, "Password change with wrong current password").
			Uint("user_id", userID).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Any session opened before the change may be in a stolen browser;
	// revoke them all and force a fresh login everywhere.
	if err := s.sessions.DestroyAll(ctx, userID); err != nil {
		logger.WarnWithContext(ctx, "Failed to revoke sessions after password change").
			Uint("user_id", userID).
			Err(err).
			Log()
	}

	s.audit.Record(ctx, &userID, constants.AuditActionPasswordChange, "User", "", nil)

	logger.InfoWithContext(ctx, "Password changed").
		Uint("user_id", userID).
		Log()

	return nil
}
