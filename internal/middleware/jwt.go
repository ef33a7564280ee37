package middleware

import (
	"net/http"
	"strings"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/internal/model"
	"github.com/curasense/auth-service/internal/service"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type JWTMiddleware struct {
	auth *service.AuthService
}

func NewJWTMiddleware(auth *service.AuthService) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// RequireAuth validates the bearer token and sets the caller's identity on
// the gin context and the request context. Every rejection is the same 401;
// the reason lives only in the logs.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WarnWithContext(c.Request.Context(), "Missing Authorization header").
				String("path", c.Request.URL.Path).
				String("method", c.Request.Method).
				Log()
			unauthorized(c)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.WarnWithContext(c.Request.Context(), "Malformed Authorization header").
				String("path", c.Request.URL.Path).
				String("method", c.Request.Method).
				Log()
			unauthorized(c)
			return
		}

		claims := m.auth.VerifyAccessToken(tokenParts[1])
		if claims == nil {
			logger.WarnWithContext(c.Request.Context(), "Invalid or expired access token").
				String("path", c.Request.URL.Path).
				String("method", c.Request.Method).
				Log()
			unauthorized(c)
			return
		}

		c.Set(constants.GinKeyUserID, claims.UserID)
		c.Set(constants.GinKeyEmail, claims.Email)
		c.Set(constants.GinKeyRole, claims.Role)
		c.Set(constants.GinKeyFirstName, claims.FirstName)
		c.Set(constants.GinKeyLastName, claims.LastName)

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole gates a route group on the role claim. Must run after
// RequireAuth.
func (m *JWTMiddleware) RequireRole(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(constants.GinKeyRole)
		if !exists || value != role {
			logger.WarnWithContext(c.Request.Context(), "Role check failed").
				String("path", c.Request.URL.Path).
				String("required_role", string(role)).
				Log()
			c.JSON(http.StatusForbidden, constants.BuildErrorResponse("forbidden", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
	c.Abort()
}
