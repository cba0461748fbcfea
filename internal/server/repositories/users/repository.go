// Package users is the credential store: identities keyed by username and
// email, each holding a password hash and a single refresh token slot.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/server/models"
)

// Repository persists identities. Username and email lookups are
// case-insensitive. Missing identities yield common.ErrorNotFound.
type Repository interface {
	// Create stores a new identity and fills in ID and CreatedAt. Duplicate
	// usernames or emails yield common.ErrUserNameTaken / common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// SetRefreshToken overwrites the refresh token slot unconditionally.
	SetRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error

	// RotateRefreshToken replaces current with next atomically, provided
	// current is the stored token and has not expired at now. Otherwise it
	// returns common.ErrStaleRefreshToken and leaves the slot untouched.
	RotateRefreshToken(ctx context.Context, userID, current, next string, nextExpiry, now time.Time) error

	// ChangePasswordHash stores a new password hash and clears the refresh
	// token slot.
	ChangePasswordHash(ctx context.Context, userID, passwordHash string) error
}
