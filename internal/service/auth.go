package service

import (
	"context"
	"strings"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/repository"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"gorm.io/gorm"
)

// AuthService orchestrates registration, login, refresh, logout, and the
// password-reset flow. It is the only entry point the HTTP layer calls;
// the hasher, signer, session store, and lockout guard are internal
// collaborators.
type AuthService struct {
	users    *repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
	sessions *SessionService
	lockout  *LockoutGuard
	audit    *AuditService
}

func NewAuthService(
	users *repository.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	sessions *SessionService,
	lockout *LockoutGuard,
	audit *AuditService,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		lockout:  lockout,
		audit:    audit,
	}
}

// Register creates a new account in the non-privileged patient role.
// Duplicate emails (case-insensitive) are the one enumeration the API
// accepts: registration cannot work without revealing them.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")

	email := strings.ToLower(strings.TrimSpace(req.Email))

	logger.InfoWithContext(ctx, "Registering new user").
		String("email", email).
		Log()

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		logger.WarnWithContext(ctx, "Registration with existing email").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	} else if err != gorm.ErrRecordNotFound {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		DisplayName:  strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RolePatient,
		Status:       model.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.audit.Record(ctx, &user.ID, constants.AuditActionRegister, "User", "", nil)

	logger.InfoWithContext(ctx, "User registered").
		Uint("user_id", user.ID).
		String("email", email).
		Log()

	return dto.NewUserResponse(user), nil
}

// Login authenticates the credentials and, on success, opens a session and
// issues an access token. Every failure path (unknown email, wrong
// password, locked account, inactive account) surfaces the same generic
// message; only the audit trail and logs know which it was.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, meta SessionMetadata) (*dto.LoginResult, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.InfoWithContext(ctx, "Login failed: unknown email").
				Log()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Lockout first: a locked account rejects before any password work,
	// so probing during the window costs the attacker nothing to learn
	if err := s.lockout.Check(ctx, user); err != nil {
		return nil, err
	}

	if user.Status != model.StatusActive {
		logger.WarnWithContext(ctx, "Login on non-active account").
			Uint("user_id", user.ID).
			String("status", string(user.Status)).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.lockout.RecordFailure(ctx, user)
		logger.WarnWithContext(ctx, "Login failed: wrong password").
			Uint("user_id", user.ID).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.lockout.Reset(ctx, user, meta.IPAddress); err != nil {
		// Login still succeeds; the stale counter clears on the next pass
		logger.WarnWithContext(ctx, "Failed to reset lockout state").
			Uint("user_id", user.ID).
			Err(err).
			Log()
	}

	refreshToken, err := s.sessions.Create(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue access token").
			Uint("user_id", user.ID).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.audit.Record(ctx, &user.ID, constants.AuditActionLogin, "Session", "", nil)

	logger.InfoWithContext(ctx, "User logged in").
		Uint("user_id", user.ID).
		Log()

	return &dto.LoginResult{
		User:         dto.NewUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.tokens.TTL().Seconds()),
	}, nil
}

// RefreshAccessToken delegates to the session store.
func (s *AuthService) RefreshAccessToken(ctx context.Context, rawToken string) (*dto.RefreshResult, error) {
	return s.sessions.Refresh(ctx, rawToken)
}

// Logout destroys the presented session. Best-effort: an unknown token is
// already logged out and reports success.
func (s *AuthService) Logout(ctx context.Context, rawToken string, userID *uint) {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.sessions.Destroy(ctx, rawToken); err != nil {
		logger.WarnWithContext(ctx, "Failed to destroy session on logout").
			Err(err).
			Log()
	}

	s.audit.Record(ctx, userID, constants.AuditActionLogout, "Session", "", nil)
}

// LogoutAll revokes every session the user holds.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "LogoutAll")

	if err := s.sessions.DestroyAll(ctx, userID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.audit.Record(ctx, &userID, constants.AuditActionLogoutAll, "Session", "", nil)
	return nil
}

// VerifyAccessToken exposes token verification to the HTTP layer: nil means
// unauthenticated, with no distinction between expired and tampered.
func (s *AuthService) VerifyAccessToken(tokenString string) *AccessClaims {
	return s.tokens.Verify(tokenString)
}
