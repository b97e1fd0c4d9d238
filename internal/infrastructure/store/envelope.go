package store

import (
	"encoding/json"
	"time"

	"github.com/dreamcoffee/storefront/internal/domain/cart"
)

// EnvelopeVersion tags the stored schema so future migrations can detect old
// payloads instead of misparsing them.
const EnvelopeVersion = "1.0"

// ExpiryWindow is how long a persisted cart stays loadable.
const ExpiryWindow = 7 * 24 * time.Hour

// Envelope wraps a cart for persistence. Total and ItemCount are stored for
// diagnostics but are recomputed from the surviving items on every load; the
// envelope never trusts its own aggregates.
type Envelope struct {
	Items     []cart.CartItem `json:"items"`
	Total     float64         `json:"total"`
	ItemCount int             `json:"item_count"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	ExpiresAt time.Time       `json:"expires_at"`
	UserID    string          `json:"user_id,omitempty"` // empty for the guest scope
}

func newEnvelope(c cart.Cart, scope Scope, now time.Time) Envelope {
	return Envelope{
		Items:     c.Items,
		Total:     c.Total,
		ItemCount: c.ItemCount,
		Version:   EnvelopeVersion,
		Timestamp: now,
		ExpiresAt: now.Add(ExpiryWindow),
		UserID:    scope.UserID,
	}
}

// expired reports whether the envelope is past its expiry stamp.
func (e Envelope) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// restore rebuilds a cart from the envelope, silently dropping items that
// fail structural validation and recomputing totals from the survivors.
func (e Envelope) restore() cart.Cart {
	items := make([]cart.CartItem, 0, len(e.Items))
	for _, item := range e.Items {
		if !validItem(item) {
			continue
		}
		if item.ID == "" {
			item.ID = item.Key()
		}
		items = append(items, item)
	}
	return cart.Recompute(cart.Cart{Items: items})
}

// validItem is the per-item structural check applied on load: a product ID,
// a positive quantity within bounds and a non-negative price.
func validItem(item cart.CartItem) bool {
	if item.Product.ID == "" {
		return false
	}
	if item.Quantity <= 0 || item.Quantity > cart.MaxQuantity {
		return false
	}
	if item.Price < 0 {
		return false
	}
	return true
}

// decodeEnvelope parses raw storage bytes. A nil envelope with a nil error
// means "structurally unusable, treat as absent".
func decodeEnvelope(raw []byte) *Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Items == nil {
		return nil
	}
	return &env
}
