package store

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend with an optional byte quota and
// in-process change fan-out. It stands in for browser local storage and is
// the backend used throughout the tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string][]byte
	maxBytes int
	watchers map[string]map[int]func(Update)
	nextID   int
}

// NewMemoryBackend creates a memory backend. maxBytes <= 0 means unlimited.
func NewMemoryBackend(maxBytes int) *MemoryBackend {
	return &MemoryBackend{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
		watchers: make(map[string]map[int]func(Update)),
	}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	if b.maxBytes > 0 {
		// Replacing a key needs headroom for both copies while the write
		// lands, like the platform storage it stands in for. Clearing the
		// key first is what makes a retry fit.
		used := 0
		for _, v := range b.data {
			used += len(v)
		}
		if used+len(value) > b.maxBytes {
			b.mu.Unlock()
			return ErrQuotaExceeded
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[key] = stored
	fns := b.watcherList(key)
	b.mu.Unlock()

	notify(fns, Update{Key: key, Value: stored})
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	_, existed := b.data[key]
	delete(b.data, key)
	fns := b.watcherList(key)
	b.mu.Unlock()

	if existed {
		notify(fns, Update{Key: key, Value: nil})
	}
	return nil
}

// notify delivers updates asynchronously, matching the platform behavior
// where storage events never interrupt the mutating call.
func notify(fns []func(Update), u Update) {
	for _, fn := range fns {
		go fn(u)
	}
}

// Watch registers fn for changes to key, including writes made through this
// same backend instance. Self-originated updates are filtered by the caller
// via value comparison, not here.
func (b *MemoryBackend) Watch(ctx context.Context, key string, fn func(Update)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.watchers[key] == nil {
		b.watchers[key] = make(map[int]func(Update))
	}
	id := b.nextID
	b.nextID++
	b.watchers[key][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.watchers[key], id)
	}, nil
}

func (b *MemoryBackend) watcherList(key string) []func(Update) {
	fns := make([]func(Update), 0, len(b.watchers[key]))
	for _, fn := range b.watchers[key] {
		fns = append(fns, fn)
	}
	return fns
}
