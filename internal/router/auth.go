package router

import (
	"github.com/curasense/auth-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authRoutes defines the authentication endpoints. The credential routes
// carry their own tighter rate limit on top of the general API bound.
func (r *Router) authRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		limited := auth.Group("")
		limited.Use(middleware.RateLimit(r.config.RateLimit.AuthRequest, r.config.RateLimit.AuthDuration))
		{
			limited.POST("/register", r.authHandler.Register)
			limited.POST("/login", r.authHandler.Login)
			limited.POST("/forgot-password", r.authHandler.ForgotPassword)
			limited.POST("/reset-password", r.authHandler.ResetPassword)
		}

		auth.GET("/reset-password", r.authHandler.VerifyResetToken)
		auth.POST("/refresh", r.authHandler.Refresh)

		// Logout works without a valid access token: an expired token must
		// not trap the user in a session they cannot end
		auth.POST("/logout", r.authHandler.Logout)

		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout-all", r.authHandler.LogoutAll)
			protected.GET("/verify", r.authHandler.Verify)
		}
	}
}
