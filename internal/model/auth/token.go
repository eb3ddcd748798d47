package auth

import (
	"time"

	"github.com/google/uuid"
)

// Token is a persisted session. The access token is usable while ExpiredAt
// lies in the future. Logging out moves ExpiredAt to the logout time and sets
// RevokedAt, which also retires the refresh token.
type Token struct {
	AccessToken  string     `db:"access_token"`
	RefreshToken string     `db:"refresh_token"`
	UserID       uuid.UUID  `db:"user_id"`
	IP           *string    `db:"ip"`
	UserAgent    *string    `db:"user_agent"`
	ExpiredAt    time.Time  `db:"expired_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiredAt)
}

func (t *Token) Revoked() bool {
	return t.RevokedAt != nil
}
