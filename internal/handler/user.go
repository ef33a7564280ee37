package handler

import (
	"net/http"
	"strconv"

	"github.com/curasense/auth-service/internal/constants"
	"github.com/curasense/auth-service/internal/dto"
	apperrors "github.com/curasense/auth-service/internal/errors"
	"github.com/curasense/auth-service/internal/service"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/validation"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /users/me. Unlike the token claims, this reflects the
// current database state, so a role or status change shows up here first.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Me")

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

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile handles PUT /users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateProfile")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	profile, err := h.users.UpdateProfile(ctx, userID, &req)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "profile updated",
		"user":    profile,
	})
}

// Activity handles GET /users/me/activity: the caller's live session count
// and recent account actions.
func (h *UserHandler) Activity(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "Activity")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := h.users.AccountActivity(ctx, userID, limit)
	if err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdatePassword handles PUT /users/me/password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdatePassword")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("validation failed", validation.FormatErrors(err)))
		return
	}

	if err := h.users.ChangePassword(ctx, userID, &req); err != nil {
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("password changed, please log in again"))
}
