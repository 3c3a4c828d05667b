package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "rentinout:relay"

// RedisBackplane shares relay broadcasts through a Redis pub/sub channel.
type RedisBackplane struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBackplane(rdb *redis.Client, channel string) *RedisBackplane {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBackplane{rdb: rdb, channel: channel}
}

func (b *RedisBackplane) Publish(ctx context.Context, msg Broadcast) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBackplane) Subscribe(ctx context.Context, fn func(Broadcast)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg Broadcast
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			fn(msg)
		}
	}
}
