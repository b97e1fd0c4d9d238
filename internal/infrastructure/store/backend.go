package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by a Backend when a write does not fit the
// storage budget. CartStore reacts with a single clear-and-retry.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is the platform storage primitive the cart store runs on: a flat
// key-value space shared by every tab/device of the same identity.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Update is a change notification for a watched key. Value is nil when the
// key was deleted.
type Update struct {
	Key   string
	Value []byte
}

// Watcher is implemented by backends that can deliver change notifications
// for a key (other tabs, other devices). Watch returns a cancel function;
// backends without a notification primitive simply don't implement it.
type Watcher interface {
	Watch(ctx context.Context, key string, fn func(Update)) (cancel func(), err error)
}
