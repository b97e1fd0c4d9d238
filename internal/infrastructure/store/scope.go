package store

const (
	guestCartKey    = "dreamcoffee_cart"
	userCartKeyBase = "dreamcoffee_cart_"
	pendingItemsKey = "dreamcoffee_pending_items"
)

// Scope identifies whose cart a key belongs to: the anonymous guest scope or
// a specific authenticated user.
type Scope struct {
	UserID string
}

// GuestScope is the shared anonymous scope.
func GuestScope() Scope {
	return Scope{}
}

// UserScope scopes storage to one authenticated user.
func UserScope(userID string) Scope {
	return Scope{UserID: userID}
}

// IsGuest reports whether this is the anonymous scope.
func (s Scope) IsGuest() bool {
	return s.UserID == ""
}

// Key returns the storage key for the scope.
func (s Scope) Key() string {
	if s.UserID == "" {
		return guestCartKey
	}
	return userCartKeyBase + s.UserID
}
