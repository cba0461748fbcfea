package models

import (
	"crypto/subtle"
	"time"
)

// RefreshTokenMatches reports whether token equals the stored refresh token
// and that token has not expired at now. An expiry equal to now counts as
// expired.
func (u *User) RefreshTokenMatches(token string, now time.Time) bool {
	if u.RefreshToken == "" || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(token)) != 1 {
		return false
	}
	return u.RefreshTokenExpiry.After(now)
}

// ClearRefreshToken empties the session slot.
func (u *User) ClearRefreshToken() {
	u.RefreshToken = ""
	u.RefreshTokenExpiry = time.Time{}
}
