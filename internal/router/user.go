package router

import (
	"github.com/curasense/auth-service/internal/model"
	"github.com/gin-gonic/gin"
)

// userRoutes defines the authenticated self-service endpoints.
func (r *Router) userRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(r.jwtMw.RequireAuth())
	{
		users.GET("/me", r.userHandler.Me)
		users.GET("/me/activity", r.userHandler.Activity)
		users.PUT("/me", r.userHandler.UpdateProfile)
		users.PUT("/me/password", r.userHandler.UpdatePassword)
	}
}

// adminRoutes defines operator endpoints behind the admin role.
func (r *Router) adminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(r.jwtMw.RequireAuth(), r.jwtMw.RequireRole(model.RoleAdmin))
	{
		admin.POST("/maintenance/cleanup", r.adminHandler.Cleanup)
	}
}
