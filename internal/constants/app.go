package constants

// Gin context keys set by the JWT middleware
const (
	GinKeyUserID    = "user_id"
	GinKeyEmail     = "email"
	GinKeyRole      = "role"
	GinKeyFirstName = "first_name"
	GinKeyLastName  = "last_name"
)

// RefreshCookieName is the HTTP-only cookie carrying the opaque refresh
// token. The raw token never appears in a response body.
const RefreshCookieName = "refresh_token"

// RefreshCookiePath restricts the cookie to the auth endpoints.
const RefreshCookiePath = "/api/v1/auth"

// Audit actions recorded by the auth core
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionLogoutAll      = "LOGOUT_ALL"
	AuditActionRegister       = "REGISTER"
	AuditActionPasswordReset  = "PASSWORD_RESET"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionProfileUpdate  = "PROFILE_UPDATE"
)
