package resettickets

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
)

type memoryTicket struct {
	digest  string
	expires time.Time
}

// MemoryStore keeps tickets in process memory. It backs development setups
// without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	tickets map[string]memoryTicket
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{tickets: map[string]memoryTicket{}, ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Generate(ctx context.Context, userID string) (string, error) {
	ticket, err := newTicket()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[userID] = memoryTicket{digest: digest(ticket), expires: s.now().Add(s.ttl)}
	return ticket, nil
}

func (s *MemoryStore) Consume(ctx context.Context, userID, ticket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[userID]
	if !ok {
		return common.ErrInvalidTicket
	}
	if !stored.expires.After(s.now()) {
		delete(s.tickets, userID)
		return common.ErrInvalidTicket
	}
	if subtle.ConstantTimeCompare([]byte(stored.digest), []byte(digest(ticket))) != 1 {
		return common.ErrInvalidTicket
	}

	delete(s.tickets, userID)
	return nil
}

func (s *MemoryStore) Revoke(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, userID)
	return nil
}
