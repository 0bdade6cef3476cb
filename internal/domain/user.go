package domain

import "time"

// UserInfo caches profile data for an identity issued by the auth provider.
type UserInfo struct {
	UserID    string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExternalToken is the stored calendar credential of a user.
// There is at most one per user.
type ExternalToken struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenStaleAfter is how long before expiry a token stops being used.
const TokenStaleAfter = 5 * time.Minute

// Stale reports whether the access token must be refreshed before use at now.
func (t ExternalToken) Stale(now time.Time) bool {
	return !now.Before(t.ExpiresAt.Add(-TokenStaleAfter))
}
