// Package common defines shared constants and sentinel errors used across
// the gophersocial server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUserNameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already taken")
	ErrStaleRefreshToken = errors.New("refresh token does not match or has expired")
	ErrInvalidTicket     = errors.New("invalid reset ticket")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
