package model

import "time"

// Session is one issued refresh token. Only the SHA-256 digest of the opaque
// token is persisted; the raw value lives in the client's HTTP-only cookie
// and is never recoverable from the database.
type Session struct {
	ID           uint      `gorm:"primarykey"`
	TokenHash    string    `gorm:"column:token_hash;unique;not null"`
	UserID       uint      `gorm:"column:user_id;index;not null"`
	User         User      `gorm:"foreignKey:UserID"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index;not null"`
	LastActiveAt time.Time `gorm:"column:last_active_at"`
}

// IsExpired reports whether the session can no longer mint access tokens.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
