package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// outboxMaxLen caps the stream so an absent consumer cannot grow it forever.
const outboxMaxLen = 10000

// RedisOutbox appends messages to a Redis stream consumed by a mail relay.
type RedisOutbox struct {
	client redis.UniversalClient
	stream string
	from   string
	now    func() time.Time
}

func NewRedisOutbox(client redis.UniversalClient, stream, from string) *RedisOutbox {
	return &RedisOutbox{client: client, stream: stream, from: from, now: time.Now}
}

func (o *RedisOutbox) Send(ctx context.Context, msg Message) error {
	err := o.client.XAdd(ctx, &redis.XAddArgs{
		Stream: o.stream,
		MaxLen: outboxMaxLen,
		Approx: true,
		Values: map[string]any{
			"from":      o.from,
			"to":        msg.To,
			"subject":   msg.Subject,
			"body":      msg.Body,
			"queued_at": o.now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("queue mail to %s: %w", o.stream, err)
	}
	return nil
}
