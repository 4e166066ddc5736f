// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// BlacklistedToken is one revoked bearer token. The exact signed string is
// stored, and rows stop matching once expires_at passes, which keeps the
// table self-limiting without a cleanup dependency.
type BlacklistedToken struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

func (t *BlacklistedToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
