package cart

import "github.com/dreamcoffee/storefront/internal/domain/product"

// Command is the closed set of cart state transitions. Apply processes each
// variant as a pure function; no command ever errors, unknown item IDs are
// no-ops and quantities are clamped rather than rejected.
type Command interface {
	isCommand()
}

// AddItem inserts a product into the cart or, when an item with the same
// (product, size) key already exists, increments its quantity.
type AddItem struct {
	Product  product.Snapshot
	Quantity int
	Size     string
}

// RemoveItem drops the item with the given ID.
type RemoveItem struct {
	ItemID string
}

// UpdateQuantity replaces an item's quantity. Zero or negative removes the
// item; there is no such thing as a zero-quantity line.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

// Clear empties the cart.
type Clear struct{}

// Load replaces the whole cart state, used when restoring from storage.
type Load struct {
	Cart Cart
}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (Clear) isCommand()          {}
func (Load) isCommand()           {}

// Apply executes a command against a cart and returns the next state with
// totals recomputed. The input cart is never modified.
func Apply(c Cart, cmd Command) Cart {
	switch cmd := cmd.(type) {
	case AddItem:
		return applyAdd(c, cmd)
	case RemoveItem:
		return applyRemove(c, cmd.ItemID)
	case UpdateQuantity:
		if cmd.Quantity <= 0 {
			return applyRemove(c, cmd.ItemID)
		}
		return applyUpdate(c, cmd.ItemID, cmd.Quantity)
	case Clear:
		return Empty()
	case Load:
		return Recompute(cloneItems(cmd.Cart))
	}
	return c
}

func applyAdd(c Cart, cmd AddItem) Cart {
	qty := cmd.Quantity
	if qty <= 0 {
		qty = 1
	}

	next := cloneItems(c)
	id := ItemID(cmd.Product.ID, cmd.Size)
	for i, item := range next.Items {
		if item.ID == id {
			next.Items[i].Quantity = clampQuantity(item.Quantity + qty)
			return Recompute(next)
		}
	}

	next.Items = append(next.Items, CartItem{
		ID:       id,
		Product:  cmd.Product,
		Quantity: clampQuantity(qty),
		Size:     cmd.Size,
		Price:    cmd.Product.PriceFor(cmd.Size),
	})
	return Recompute(next)
}

func applyRemove(c Cart, itemID string) Cart {
	next := Cart{Items: make([]CartItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if item.ID != itemID {
			next.Items = append(next.Items, item)
		}
	}
	return Recompute(next)
}

func applyUpdate(c Cart, itemID string, quantity int) Cart {
	next := cloneItems(c)
	for i, item := range next.Items {
		if item.ID == itemID {
			next.Items[i].Quantity = clampQuantity(quantity)
			break
		}
	}
	return Recompute(next)
}

// PruneMissing drops items whose product no longer exists according to the
// catalog existence oracle, recomputing totals from the survivors.
func PruneMissing(c Cart, exists func(productID string) bool) Cart {
	next := Cart{Items: make([]CartItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if exists(item.Product.ID) {
			next.Items = append(next.Items, item)
		}
	}
	return Recompute(next)
}

func cloneItems(c Cart) Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
