package model

import "time"

// PasswordResetToken is a single-use credential authorizing one password
// change. The row is deleted inside the consuming transaction, so a token
// can never authorize twice. As with sessions, only the digest is stored.
type PasswordResetToken struct {
	ID        uint      `gorm:"primarykey"`
	TokenHash string    `gorm:"column:token_hash;unique;not null"`
	UserID    uint      `gorm:"column:user_id;index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
}

// IsExpired reports whether the token is past its validity window.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
