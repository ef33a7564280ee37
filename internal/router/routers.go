package router

import (
	"github.com/curasense/auth-service/config"
	"github.com/curasense/auth-service/internal/handler"
	"github.com/curasense/auth-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	adminHandler  *handler.AdminHandler
	healthHandler *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	admin *handler.AdminHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		userHandler:   user,
		adminHandler:  admin,
		healthHandler: health,
		jwtMw:         jwtMw,
		config:        cfg,
	}
}

// SetupRoutes builds the gin engine with the full middleware stack. Release
// mode is set by main before this runs.
func (r *Router) SetupRoutes() *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestContext())
	engine.Use(middleware.CORS(r.config.App.CORSOrigin))

	api := engine.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/detail", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.config.RateLimit.Request, r.config.RateLimit.Duration))

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.adminRoutes(v1)
		}
	}

	return engine
}
