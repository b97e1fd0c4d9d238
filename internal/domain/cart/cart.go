package cart

import (
	"github.com/dreamcoffee/storefront/internal/domain/product"
)

const (
	// MaxQuantity is the hard per-item cap; mutations clamp to it.
	MaxQuantity = 99
	// HighQuantityThreshold marks the advisory level surfaced in the UI.
	HighQuantityThreshold = 20

	defaultSizeKey = "default"
)

// CartItem is one line of the cart. Price is snapshotted at add time and is
// never recomputed from a live product record afterwards.
type CartItem struct {
	ID       string           `json:"id"`
	Product  product.Snapshot `json:"product"`
	Quantity int              `json:"quantity"`
	Size     string           `json:"size,omitempty"` // empty means "no size variant"
	Price    float64          `json:"price"`
}

// HighQuantity reports the advisory state for unusually large quantities.
// It is informational only and never blocks a mutation.
func (i CartItem) HighQuantity() bool {
	return i.Quantity >= HighQuantityThreshold
}

// Key returns the (product, size) uniqueness key for the item.
func (i CartItem) Key() string {
	return ItemID(i.Product.ID, i.Size)
}

// ItemID derives the deterministic cart item ID from a product ID and size.
func ItemID(productID, size string) string {
	if size == "" {
		size = defaultSizeKey
	}
	return productID + "-" + size
}

// Cart holds the in-memory cart state. Total and ItemCount are derived and
// recomputed on every mutation; they are never trusted from storage.
type Cart struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// Empty returns a fresh empty cart.
func Empty() Cart {
	return Cart{Items: []CartItem{}}
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the item with the given ID, if present.
func (c Cart) Find(itemID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Subtotal is the raw sum of line prices before discounts and tax.
func (c Cart) Subtotal() float64 {
	return c.Total
}

// Recompute returns a copy of the cart with Total and ItemCount derived from
// the items. Every mutation path goes through this.
func Recompute(c Cart) Cart {
	var total float64
	var count int
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
		count += item.Quantity
	}
	c.Total = total
	c.ItemCount = count
	return c
}

func clampQuantity(q int) int {
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
