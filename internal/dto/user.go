package dto

import (
	"time"

	"github.com/curasense/auth-service/internal/model"
)

// UserResponse is the safe projection of a user record; the password hash
// and lockout bookkeeping never leave the service layer.
type UserResponse struct {
	ID          uint             `json:"id"`
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	DisplayName string           `json:"display_name"`
	Phone       string           `json:"phone,omitempty"`
	AvatarURL   string           `json:"avatar_url,omitempty"`
	Role        model.UserRole   `json:"role"`
	Status      model.UserStatus `json:"status"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewUserResponse maps a model onto the safe projection.
func NewUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		AvatarURL:   user.AvatarURL,
		Role:        user.Role,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// UpdateProfileRequest is the allow-list of caller-editable fields. Email,
// role, and status are absent on purpose: this endpoint must not be a
// privilege-escalation path.
type UpdateProfileRequest struct {
	FirstName   string         `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName    string         `json:"last_name" binding:"omitempty,min=1,max=50"`
	DisplayName string         `json:"display_name" binding:"omitempty,max=100"`
	Phone       string         `json:"phone" binding:"omitempty,min=7,max=20"`
	AvatarURL   string         `json:"avatar_url" binding:"omitempty,url,max=500"`
	Preferences map[string]any `json:"preferences" binding:"omitempty"`
}

// ActivityEntry is one row of the caller's own audit trail. Only actions
// recorded against the caller are visible; there is no cross-user access.
type ActivityEntry struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityResponse struct {
	ActiveSessions int64           `json:"active_sessions"`
	Activity       []ActivityEntry `json:"activity"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100,strongpassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}
