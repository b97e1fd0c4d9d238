package session

import (
	"context"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/dreamcoffee/storefront/internal/auth"
	"github.com/dreamcoffee/storefront/internal/domain/cart"
	"github.com/dreamcoffee/storefront/internal/domain/product"
	"github.com/dreamcoffee/storefront/internal/infrastructure/store"
)

// Feed receives a copy of every cart state this coordinator persists, for
// cross-device sync or analytics. Implemented by kafka.CartFeed.
type Feed interface {
	PublishUpdate(ctx context.Context, key string, c cart.Cart) error
}

// ExistenceOracle answers whether a product is still in the catalog.
type ExistenceOracle interface {
	Exists(ctx context.Context, productID string) (bool, error)
}

// Coordinator keeps the in-memory cart consistent with the correct storage
// scope across auth transitions, cross-tab storage updates and visibility
// changes. All external signals funnel through its methods; the mutex makes
// each transition atomic even though signals arrive from timer and watcher
// goroutines.
type Coordinator struct {
	mu sync.Mutex

	store     *store.CartStore
	cart      cart.Cart
	scope     store.Scope
	started   bool
	authedUID string // "" while unauthenticated

	debouncer   *Debouncer
	watchCancel func()
	feed        Feed
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounceInterval overrides the persistence debounce window.
func WithDebounceInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.debouncer = NewDebouncer(d) }
}

// WithFeed attaches a change feed publisher.
func WithFeed(feed Feed) Option {
	return func(c *Coordinator) { c.feed = feed }
}

func NewCoordinator(cartStore *store.CartStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     cartStore,
		cart:      cart.Empty(),
		scope:     store.GuestScope(),
		debouncer: NewDebouncer(DefaultDebounceInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cart returns a snapshot of the current in-memory cart.
func (c *Coordinator) Cart() cart.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart
}

// Scope returns the active storage scope.
func (c *Coordinator) Scope() store.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// HandleAuthChange drives the (previous, current) auth state machine.
// identity is nil while unauthenticated. Any pending debounced write is
// flushed before the scope switches, so it lands in the old scope.
func (c *Coordinator) HandleAuthChange(ctx context.Context, identity *auth.Identity) {
	c.debouncer.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()

	wasAuthed := c.authedUID != ""
	switch {
	case identity == nil && !wasAuthed:
		if !c.started {
			c.restoreGuest(ctx)
		}
	case identity != nil && !wasAuthed:
		c.loginMerge(ctx, identity.UserID)
	case identity != nil && wasAuthed && identity.UserID != c.authedUID:
		c.switchUser(ctx, identity.UserID)
	case identity == nil && wasAuthed:
		c.logout(ctx)
	}
	c.started = true
	c.rewatch(ctx)
}

// restoreGuest is the first-load path for an unauthenticated visitor.
func (c *Coordinator) restoreGuest(ctx context.Context) {
	c.scope = store.GuestScope()
	c.authedUID = ""
	if loaded := c.store.Load(ctx, c.scope); loaded != nil {
		c.cart = *loaded
	} else {
		c.cart = cart.Empty()
	}
}

// loginMerge folds the guest cart (and any pending items captured before
// login) into the user's stored cart, persists the result to the user scope
// and clears the guest-side keys.
func (c *Coordinator) loginMerge(ctx context.Context, userID string) {
	guestScope := store.GuestScope()
	userScope := store.UserScope(userID)

	userCart := cart.Empty()
	if loaded := c.store.Load(ctx, userScope); loaded != nil {
		userCart = *loaded
	}

	guestCart := cart.Empty()
	if loaded := c.store.Load(ctx, guestScope); loaded != nil {
		guestCart = *loaded
	}

	merged := cart.Merge(userCart, guestCart)
	merged = cart.MergePending(merged, c.store.LoadPending(ctx))

	c.scope = userScope
	c.authedUID = userID
	c.cart = merged

	if !guestCart.IsEmpty() || !merged.IsEmpty() {
		if !c.store.Save(ctx, userScope, merged) {
			log.Printf("[Session] Failed to persist merged cart for %s; continuing in memory", userID)
		}
	}
	c.store.Clear(ctx, guestScope)
	c.store.ClearPending(ctx)
	c.publish(ctx)
}

// switchUser moves directly between two authenticated scopes. No guest
// merge applies; the new user's stored cart is simply restored.
func (c *Coordinator) switchUser(ctx context.Context, userID string) {
	c.scope = store.UserScope(userID)
	c.authedUID = userID
	if loaded := c.store.Load(ctx, c.scope); loaded != nil {
		c.cart = *loaded
	} else {
		c.cart = cart.Empty()
	}
}

// logout clears the in-memory cart and the guest scope. The former user's
// stored cart stays put for their next login.
func (c *Coordinator) logout(ctx context.Context) {
	c.scope = store.GuestScope()
	c.authedUID = ""
	c.cart = cart.Empty()
	c.store.Clear(ctx, store.GuestScope())
}

// Dispatch validates and applies a cart command, then schedules a debounced
// persist. Validation errors are returned before any state changes.
func (c *Coordinator) Dispatch(ctx context.Context, cmd cart.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validate(cmd); err != nil {
		return err
	}

	c.cart = cart.Apply(c.cart, cmd)
	c.schedulePersist()
	return nil
}

func (c *Coordinator) validate(cmd cart.Command) error {
	switch cmd := cmd.(type) {
	case cart.AddItem:
		existing := 0
		if item, ok := c.cart.Find(cart.ItemID(cmd.Product.ID, cmd.Size)); ok {
			existing = item.Quantity
		}
		qty := cmd.Quantity
		if qty == 0 {
			qty = 1
		}
		return cart.ValidateQuantity(cmd.Product, cmd.Size, qty, existing)
	case cart.UpdateQuantity:
		item, ok := c.cart.Find(cmd.ItemID)
		if !ok || cmd.Quantity <= 0 {
			// Unknown items are no-ops and zero means removal; both are
			// handled by the engine without validation.
			return nil
		}
		return cart.ValidateQuantity(item.Product, item.Size, cmd.Quantity, 0)
	}
	return nil
}

// schedulePersist arms the debouncer with a snapshot of the current state.
// Rapid mutations supersede one another and coalesce into a single write.
// Caller holds c.mu.
func (c *Coordinator) schedulePersist() {
	snapshot := c.cart
	scope := c.scope
	c.debouncer.Schedule(func() {
		ctx := context.Background()
		if !c.store.Save(ctx, scope, snapshot) {
			log.Printf("[Session] Persist failed for %s; cart is memory-only", scope.Key())
			return
		}
		c.publishSnapshot(ctx, scope, snapshot)
	})
}

// CapturePendingItem records an add-to-cart attempt made while the visitor
// is unauthenticated and outside the guest-cart flow. The pending list is
// folded in on the next successful login.
func (c *Coordinator) CapturePendingItem(ctx context.Context, p product.Snapshot, quantity int, size string) error {
	if err := cart.ValidateQuantity(p, size, quantity, 0); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.store.LoadPending(ctx)
	pending = append(pending, cart.CartItem{
		ID:       cart.ItemID(p.ID, size),
		Product:  p,
		Quantity: quantity,
		Size:     size,
		Price:    p.PriceFor(size),
	})
	if !c.store.SavePending(ctx, pending) {
		log.Printf("[Session] Failed to capture pending item %s", p.ID)
	}
	return nil
}

// HandleStorageUpdate reacts to a change notification for the active
// scope's key. Self-originated writes arrive here too; they produce a no-op
// diff and are skipped.
func (c *Coordinator) HandleStorageUpdate(u store.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.Key != c.scope.Key() {
		return
	}
	c.resync(context.Background())
}

// HandleVisible resynchronizes from storage when the page becomes visible
// again, guarding against edits made in other tabs while hidden.
func (c *Coordinator) HandleVisible(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resync(ctx)
}

// resync reloads the active scope and replaces in-memory state only when
// the stored content actually differs. Caller holds c.mu.
func (c *Coordinator) resync(ctx context.Context) {
	loaded := c.store.Load(ctx, c.scope)
	next := cart.Empty()
	if loaded != nil {
		next = *loaded
	}
	if reflect.DeepEqual(next, c.cart) {
		return
	}
	log.Printf("[Session] Storage changed for %s, reloading %d item(s)", c.scope.Key(), len(next.Items))
	c.cart = next
}

// Revalidate prunes items whose product no longer exists in the catalog.
// Oracle failures leave the cart untouched rather than dropping items on a
// flaky network.
func (c *Coordinator) Revalidate(ctx context.Context, oracle ExistenceOracle) {
	current := c.Cart()
	verdicts := make(map[string]bool, len(current.Items))
	for _, item := range current.Items {
		id := item.Product.ID
		if _, seen := verdicts[id]; seen {
			continue
		}
		exists, err := oracle.Exists(ctx, id)
		if err != nil {
			log.Printf("[Session] Existence check failed for %s: %v", id, err)
			exists = true
		}
		verdicts[id] = exists
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	pruned := cart.PruneMissing(c.cart, func(id string) bool {
		exists, ok := verdicts[id]
		return !ok || exists
	})
	if len(pruned.Items) == len(c.cart.Items) {
		return
	}
	c.cart = pruned
	c.schedulePersist()
}

// ClearCart empties the cart and persists the empty state immediately, used
// after a fully successful checkout.
func (c *Coordinator) ClearCart(ctx context.Context) {
	c.debouncer.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = cart.Empty()
	c.store.Clear(ctx, c.scope)
	c.publish(ctx)
}

// rewatch moves the storage watch to the active scope. Caller holds c.mu.
func (c *Coordinator) rewatch(ctx context.Context) {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	if cancel, ok := c.store.Watch(ctx, c.scope, c.HandleStorageUpdate); ok {
		c.watchCancel = cancel
	}
}

// publish pushes the current cart to the feed. Caller holds c.mu.
func (c *Coordinator) publish(ctx context.Context) {
	c.publishSnapshot(ctx, c.scope, c.cart)
}

func (c *Coordinator) publishSnapshot(ctx context.Context, scope store.Scope, snapshot cart.Cart) {
	if c.feed == nil {
		return
	}
	if err := c.feed.PublishUpdate(ctx, scope.Key(), snapshot); err != nil {
		log.Printf("[Session] Feed publish failed for %s: %v", scope.Key(), err)
	}
}

// Close flushes any pending write and releases the watch subscription.
func (c *Coordinator) Close() {
	c.debouncer.Flush()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
}
