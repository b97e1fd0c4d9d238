package store

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const cartSyncChannelPrefix = "cartsync:"

// RedisBackend stores envelopes in Redis and broadcasts change notifications
// over pub/sub, so carts stay in sync across devices sharing the same
// account. TTL management is left to the envelope's own expiry stamp.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return err
	}
	if err := b.client.Publish(ctx, cartSyncChannelPrefix+key, value).Err(); err != nil {
		log.Printf("[Store] Redis publish failed for %s: %v", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	if err := b.client.Publish(ctx, cartSyncChannelPrefix+key, nil).Err(); err != nil {
		log.Printf("[Store] Redis publish failed for %s: %v", key, err)
	}
	return nil
}

// Watch subscribes to the key's pub/sub channel and forwards messages until
// the returned cancel function is called or ctx is done.
func (b *RedisBackend) Watch(ctx context.Context, key string, fn func(Update)) (func(), error) {
	sub := b.client.Subscribe(ctx, cartSyncChannelPrefix+key)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var value []byte
				if msg.Payload != "" {
					value = []byte(msg.Payload)
				}
				fn(Update{Key: key, Value: value})
			}
		}
	}()

	return func() {
		close(done)
		sub.Close()
	}, nil
}
