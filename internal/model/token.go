package model

import (
	"time"
)

// ResetTokenTTL is the fixed validity window of a password reset token.
const ResetTokenTTL = 10 * time.Minute

type ResetToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Consumed  bool      `db:"consumed"`
	CreatedAt time.Time `db:"created_at"`
}

// ExpiresAt is derived from CreatedAt and never stored.
func (t *ResetToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(ResetTokenTTL)
}

func (t *ResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt())
}

func (t *ResetToken) IsValid(now time.Time) bool {
	return !t.Consumed && !t.IsExpired(now)
}
