package dto

// RegisterRequest is validated at the boundary; nothing reaches the auth
// service until binding succeeds. The password rule is registered in the
// router setup (uppercase + lowercase + digit, min 8).
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=100,strongpassword"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Phone     string `json:"phone" binding:"omitempty,min=7,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is what the auth facade hands back to the handler. The raw
// refresh token is set as a cookie by the handler and never serialized into
// the response body.
type LoginResult struct {
	User         *UserResponse
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type LoginResponse struct {
	Message     string        `json:"message"`
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"`
}

// RefreshResult mirrors LoginResult for the refresh flow; RefreshToken holds
// the rotated opaque token.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=100,strongpassword"`
}

type VerifyResetTokenResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}
