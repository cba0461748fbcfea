package resettickets

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "gophersocial:reset"
	maxRetries    = 4
)

var ErrRedisUnavailable = errors.New("reset ticket store unavailable")

type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisStore{redis: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

func (s *RedisStore) Generate(ctx context.Context, userID string) (string, error) {
	ticket, err := newTicket()
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, s.key(userID), digest(ticket), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return ticket, nil
}

// Consume compares and deletes under WATCH so two concurrent redemptions of
// the same ticket cannot both succeed.
func (s *RedisStore) Consume(ctx context.Context, userID, ticket string) error {
	key := s.key(userID)
	provided := digest(ticket)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			stored, err := tx.Get(ctx, key).Result()
			if err != nil {
				return err
			}

			if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
				return common.ErrInvalidTicket
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil), errors.Is(err, common.ErrInvalidTicket):
			return common.ErrInvalidTicket
		default:
			return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
		}
	}

	return common.ErrInvalidTicket
}

func (s *RedisStore) Revoke(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}
