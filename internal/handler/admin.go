package handler

import (
	"net/http"

	"github.com/curasense/auth-service/internal/service"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operator endpoints; the router guards them with the
// admin role.
type AdminHandler struct {
	cleanup *service.CleanupWorker
}

func NewAdminHandler(cleanup *service.CleanupWorker) *AdminHandler {
	return &AdminHandler{cleanup: cleanup}
}

// Cleanup handles POST /admin/maintenance/cleanup: an on-demand sweep of expired
// sessions and reset tokens, same pass the background worker runs.
func (h *AdminHandler) Cleanup(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Cleanup")

	result := h.cleanup.Sweep(ctx)

	logger.InfoWithContext(ctx, "Manual cleanup sweep requested").
		Int64("sessions_deleted", result.SessionsDeleted).
		Int64("reset_tokens_deleted", result.ResetTokensDeleted).
		Log()

	c.JSON(http.StatusOK, gin.H{
		"message": "cleanup completed",
		"result":  result,
	})
}
