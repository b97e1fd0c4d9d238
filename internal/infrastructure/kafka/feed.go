// Package kafka publishes cart updates to a change feed so other devices on
// the same account (and downstream consumers) can follow along. It is the
// cross-device companion to the storage backend's cross-tab watch.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dreamcoffee/storefront/internal/domain/cart"
)

// CartUpdated is the feed event emitted after every persisted cart write.
type CartUpdated struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"` // storage key the write landed on
	Cart      cart.Cart `json:"cart"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartFeed writes and reads CartUpdated events on a Kafka topic.
type CartFeed struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

// NewCartFeed creates a feed producer for the topic. groupID enables the
// consumer side; pass "" for a publish-only feed.
func NewCartFeed(brokers []string, topic, groupID string) *CartFeed {
	f := &CartFeed{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
	if groupID != "" {
		f.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
	}
	return f
}

// PublishUpdate emits a CartUpdated event keyed by the storage key, so all
// updates for one scope land in order on one partition.
func (f *CartFeed) PublishUpdate(ctx context.Context, key string, c cart.Cart) error {
	event := CartUpdated{
		ID:        uuid.New().String(),
		Key:       key,
		Cart:      c,
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  event.UpdatedAt,
	})
}

// Watch consumes the feed until ctx is done, passing each decoded event to
// handler. Undecodable messages are logged and skipped.
func (f *CartFeed) Watch(ctx context.Context, handler func(ctx context.Context, event CartUpdated) error) error {
	if f.reader == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := f.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Feed] Error reading message: %v", err)
				continue
			}

			var event CartUpdated
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("[Feed] Skipping undecodable message: %v", err)
				continue
			}
			if err := handler(ctx, event); err != nil {
				log.Printf("[Feed] Handler error for %s: %v", event.Key, err)
			}
		}
	}
}

// Close releases the underlying writer and reader.
func (f *CartFeed) Close() error {
	err := f.writer.Close()
	if f.reader != nil {
		if cerr := f.reader.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
