package handler

import (
	"net/http"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/service"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/curasense/auth-service/pkg/validation"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth         *service.AuthService
	reset        *service.PasswordResetService
	sessions     *service.SessionService
	users        *service.UserService
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, reset *service.PasswordResetService, sessions *service.SessionService, users *service.UserService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		reset:        reset,
		sessions:     sessions,
		users:        users,
		cookieSecure: cookieSecure,
	}
}

// setRefreshCookie writes the opaque refresh token as an HTTP-only cookie
// scoped to the auth endpoints. Script cannot read it, and it is never sent
// to /users or anywhere else.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		constants.RefreshCookieName,
		token,
		int(h.sessions.TTL().Seconds()),
		constants.RefreshCookiePath,
		"",
		h.cookieSecure,
		true,
	)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.RefreshCookieName, "", -1, constants.RefreshCookiePath, "", h.cookieSecure, true)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid register request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	user, err := h.auth.Register(ctx, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful",
		"user":    user,
	})
}

// Login handles POST /auth/login. On success the refresh token travels as a
// cookie and the access token in the body.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	meta := service.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result, err := h.auth.Login(ctx, &req, meta)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Message:     "login successful",
		User:        result.User,
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

// Refresh handles POST /auth/refresh. The presented cookie is rotated: the
// response carries a new cookie and the old token is dead.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Refresh")

	rawToken, err := c.Cookie(constants.RefreshCookieName)
	if err != nil || rawToken == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(apperrors.ErrInvalidRefreshToken.Message, nil))
		return
	}

	result, err := h.auth.RefreshAccessToken(ctx, rawToken)
	if err != nil {
		// A rejected token is useless; drop the cookie so the client stops
		// retrying it.
		h.clearRefreshCookie(c)
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)

	c.JSON(http.StatusOK, dto.RefreshResponse{
		Message:     "token refreshed",
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

// Logout handles POST /auth/logout. Succeeds whether or not a valid session
// cookie is presented; the cookie is always cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Logout")

	var userID *uint
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	if rawToken, err := c.Cookie(constants.RefreshCookieName); err == nil && rawToken != "" {
		h.auth.Logout(ctx, rawToken, userID)
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("logout successful"))
}

// LogoutAll handles POST /auth/logout-all. Requires authentication; revokes
// every session of the caller.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "LogoutAll")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	if err := h.auth.LogoutAll(ctx, userID); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("all sessions revoked"))
}

// ForgotPassword handles POST /auth/forgot-password. The response is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ForgotPassword")

	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	issued, err := h.reset.CreateToken(ctx, req.Email)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	if issued != nil {
		// Mail delivery is owned by a separate service; until it is wired
		// up the token reaches the operator through the log.
		// TODO: publish the reset token to the notification service
		logger.InfoWithContext(ctx, "Password reset link ready for delivery").
			Uint("user_id", issued.User.ID).
			String("token", issued.Token).
			Log()
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("if the email is registered, a reset link has been sent"))
}

// VerifyResetToken handles GET /auth/reset-password?token=... It is the
// check behind the reset form: valid tokens reveal only a masked email.
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "VerifyResetToken")

	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(apperrors.ErrResetTokenInvalid.Message, nil))
		return
	}

	maskedEmail, err := h.reset.VerifyToken(ctx, rawToken)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResetTokenResponse{
		Valid: true,
		Email: maskedEmail,
	})
}

// ResetPassword handles POST /auth/reset-password. Consuming the token also
// revokes every session of the account.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	if err := h.reset.Consume(ctx, req.Token, req.Password); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("password has been reset, please log in again"))
}

// Verify handles GET /auth/verify. The token already proved who the caller
// is; this returns the account as it stands now, so a suspension or role
// change since the token was signed is visible immediately.
func (h *AuthHandler) Verify(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Verify")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	profile, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  profile,
	})
}

// currentUserID reads the authenticated user from the gin context set by
// the JWT middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(constants.GinKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
