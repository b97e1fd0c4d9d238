package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/dreamcoffee/storefront/internal/domain/cart"
)

// CartStore persists one cart per identity scope on top of a Backend. Every
// failure path degrades to "no data": nothing in here may crash a caller
// that is just trying to render a cart.
type CartStore struct {
	backend Backend
}

func NewCartStore(backend Backend) *CartStore {
	return &CartStore{backend: backend}
}

// Save wraps the cart in a stamped envelope and writes it to the scope's
// key. On a write failure it clears the key and retries once; a second
// failure is reported as false and the cart stays memory-only.
func (s *CartStore) Save(ctx context.Context, scope Scope, c cart.Cart) bool {
	env := newEnvelope(c, scope, time.Now())
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[Store] Failed to encode cart for %s: %v", scope.Key(), err)
		return false
	}

	if err := s.backend.Set(ctx, scope.Key(), data); err != nil {
		log.Printf("[Store] Write failed for %s (%v), clearing and retrying", scope.Key(), err)
		if err := s.backend.Delete(ctx, scope.Key()); err != nil {
			return false
		}
		if err := s.backend.Set(ctx, scope.Key(), data); err != nil {
			log.Printf("[Store] Retry write failed for %s: %v", scope.Key(), err)
			return false
		}
	}
	return true
}

// Load reads the scope's envelope. It returns nil when the key is absent,
// unparsable, expired or structurally invalid; corrupt and expired keys are
// removed on the way out. Stored aggregates are never returned verbatim:
// items are filtered and totals recomputed.
func (s *CartStore) Load(ctx context.Context, scope Scope) *cart.Cart {
	raw, ok, err := s.backend.Get(ctx, scope.Key())
	if err != nil {
		log.Printf("[Store] Read failed for %s: %v", scope.Key(), err)
		return nil
	}
	if !ok {
		return nil
	}

	env := decodeEnvelope(raw)
	if env == nil {
		log.Printf("[Store] Corrupt envelope at %s, clearing", scope.Key())
		s.Clear(ctx, scope)
		return nil
	}
	if env.expired(time.Now()) {
		log.Printf("[Store] Expired envelope at %s, clearing", scope.Key())
		s.Clear(ctx, scope)
		return nil
	}

	restored := env.restore()
	return &restored
}

// Clear removes the scope's key. Missing keys and backend errors are both
// fine; clearing is idempotent and never reported as a failure.
func (s *CartStore) Clear(ctx context.Context, scope Scope) {
	if err := s.backend.Delete(ctx, scope.Key()); err != nil {
		log.Printf("[Store] Clear failed for %s: %v", scope.Key(), err)
	}
}

// Info is a read-only diagnostic view of what is persisted for a scope.
type Info struct {
	Size      int       `json:"size"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expires_at"`
	Version   string    `json:"version"`
	ItemCount int       `json:"item_count"`
}

// GetStorageInfo inspects the stored envelope without restoring it. Returns
// nil when nothing usable is stored.
func (s *CartStore) GetStorageInfo(ctx context.Context, scope Scope) *Info {
	raw, ok, err := s.backend.Get(ctx, scope.Key())
	if err != nil || !ok {
		return nil
	}
	env := decodeEnvelope(raw)
	if env == nil {
		return nil
	}
	return &Info{
		Size:      len(raw),
		Timestamp: env.Timestamp,
		ExpiresAt: env.ExpiresAt,
		Version:   env.Version,
		ItemCount: env.ItemCount,
	}
}

// Watch subscribes to change notifications for the scope's key when the
// backend supports them. The second return is false otherwise.
func (s *CartStore) Watch(ctx context.Context, scope Scope, fn func(Update)) (func(), bool) {
	w, ok := s.backend.(Watcher)
	if !ok {
		return nil, false
	}
	cancel, err := w.Watch(ctx, scope.Key(), fn)
	if err != nil {
		log.Printf("[Store] Watch failed for %s: %v", scope.Key(), err)
		return nil, false
	}
	return cancel, true
}

// SavePending stores the best-effort pending-items list captured when an
// unauthenticated user adds to cart outside the guest-cart flow.
func (s *CartStore) SavePending(ctx context.Context, items []cart.CartItem) bool {
	data, err := json.Marshal(items)
	if err != nil {
		return false
	}
	if err := s.backend.Set(ctx, pendingItemsKey, data); err != nil {
		log.Printf("[Store] Failed to save pending items: %v", err)
		return false
	}
	return true
}

// LoadPending returns the pending-items list, or nil when absent or corrupt.
func (s *CartStore) LoadPending(ctx context.Context) []cart.CartItem {
	raw, ok, err := s.backend.Get(ctx, pendingItemsKey)
	if err != nil || !ok {
		return nil
	}
	var items []cart.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.ClearPending(ctx)
		return nil
	}
	return items
}

// ClearPending removes the pending-items key.
func (s *CartStore) ClearPending(ctx context.Context) {
	if err := s.backend.Delete(ctx, pendingItemsKey); err != nil {
		log.Printf("[Store] Failed to clear pending items: %v", err)
	}
}
