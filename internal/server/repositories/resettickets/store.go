// Package resettickets mints and redeems one-time password reset tickets.
// Only a SHA-256 digest of a ticket is stored; the plaintext travels to the
// user by mail. Each identity has at most one outstanding ticket: minting a
// new one replaces the previous.
package resettickets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/gophersocial/internal/common"
)

const ticketSize = 32

// Store is the token-generation capability of the credential store.
type Store interface {
	// Generate mints a ticket for userID, valid for the store's TTL.
	Generate(ctx context.Context, userID string) (string, error)
	// Consume redeems ticket for userID exactly once. Unknown, expired,
	// already used or foreign tickets yield common.ErrInvalidTicket.
	Consume(ctx context.Context, userID, ticket string) error
	// Revoke drops any outstanding ticket of userID.
	Revoke(ctx context.Context, userID string) error
}

func newTicket() (string, error) {
	t, err := common.MakeRandHexString(ticketSize)
	if err != nil {
		return "", fmt.Errorf("generate reset ticket: %w", err)
	}
	return t, nil
}

func digest(ticket string) string {
	sum := sha256.Sum256([]byte(ticket))
	return hex.EncodeToString(sum[:])
}
