// Package models holds the persistent records of the session service.
package models

import "time"

// User is an identity in the credential store. UserName and Email are
// unique across the store. The refresh token slot holds at most one live
// session credential; an empty RefreshToken means no session.
type User struct {
	ID                 string
	Name               string
	UserName           string
	Email              string
	PasswordHash       string
	RefreshToken       string
	RefreshTokenExpiry time.Time
	CreatedAt          time.Time
}
