package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRole enumerates the account roles. New registrations always start as
// a patient; elevation happens through administrative tooling, never through
// the profile endpoints.
type UserRole string

const (
	RolePatient UserRole = "PATIENT"
	RoleDoctor  UserRole = "DOCTOR"
	RoleAdmin   UserRole = "ADMIN"
)

// UserStatus enumerates account lifecycle states. Only ACTIVE accounts may
// log in.
type UserStatus string

const (
	StatusActive              UserStatus = "ACTIVE"
	StatusPendingVerification UserStatus = "PENDING_VERIFICATION"
	StatusSuspended           UserStatus = "SUSPENDED"
	StatusDeactivated         UserStatus = "DEACTIVATED"
)

// User is the identity record. Emails are stored lower-cased so uniqueness
// is case-insensitive. The failed-login counter and locked_until drive the
// lockout guard; they are only ever mutated through the user repository.
type User struct {
	gorm.Model
	Email        string     `gorm:"column:email;unique;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	DisplayName  string     `gorm:"column:display_name"`
	Phone        string     `gorm:"column:phone"`
	AvatarURL    string     `gorm:"column:avatar_url"`
	Role         UserRole   `gorm:"column:role;type:varchar(16);default:'PATIENT';not null"`
	Status       UserStatus `gorm:"column:status;type:varchar(24);default:'ACTIVE';not null"`

	FailedLoginCount int        `gorm:"column:failed_login_count;default:0;not null"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
	LastLoginIP      string     `gorm:"column:last_login_ip"`

	Preferences datatypes.JSON `gorm:"column:preferences"`
}

// IsLocked reports whether the account is inside an active lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
