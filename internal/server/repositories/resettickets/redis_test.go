package resettickets

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "", time.Hour), mr
}

func TestRedisStore_GenerateStoresDigestWithTTL(t *testing.T) {
	s, mr := newRedisStore(t)

	ticket, err := s.Generate(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Len(t, ticket, 64)

	stored, err := mr.Get("gophersocial:reset:u-1")
	require.NoError(t, err)
	assert.Equal(t, digest(ticket), stored)
	assert.NotEqual(t, ticket, stored, "plaintext ticket is never stored")
	assert.Equal(t, time.Hour, mr.TTL("gophersocial:reset:u-1"))
}

func TestRedisStore_ConsumeOnce(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	ticket, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)

	require.NoError(t, s.Consume(ctx, "u-1", ticket))
	assert.ErrorIs(t, s.Consume(ctx, "u-1", ticket), common.ErrInvalidTicket)
}

func TestRedisStore_ConsumeRejects(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	ticket, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Consume(ctx, "u-1", "forged"), common.ErrInvalidTicket)
	assert.ErrorIs(t, s.Consume(ctx, "u-2", ticket), common.ErrInvalidTicket, "tickets are bound to one identity")

	// a failed attempt leaves the genuine ticket usable
	assert.True(t, mr.Exists("gophersocial:reset:u-1"))

	mr.FastForward(time.Hour + time.Second)
	assert.ErrorIs(t, s.Consume(ctx, "u-1", ticket), common.ErrInvalidTicket)
}

func TestRedisStore_NewTicketReplacesOld(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	first, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)
	second, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Consume(ctx, "u-1", first), common.ErrInvalidTicket)
	assert.NoError(t, s.Consume(ctx, "u-1", second))
}

func TestRedisStore_Revoke(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	ticket, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, "u-1"))

	assert.ErrorIs(t, s.Consume(ctx, "u-1", ticket), common.ErrInvalidTicket)
}

func TestRedisStore_ConcurrentConsumeSingleWinner(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	ticket, err := s.Generate(ctx, "u-1")
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Consume(ctx, "u-1", ticket) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Generate(context.Background(), "u-1")
	assert.ErrorIs(t, err, ErrRedisUnavailable)

	err = s.Consume(context.Background(), "u-1", "x")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
	assert.NotErrorIs(t, err, common.ErrInvalidTicket)
}
